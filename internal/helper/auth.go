package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing token")
)

type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Auth signs access and refresh tokens with separate secrets and lifetimes,
// so a token of one kind never verifies as the other.
type Auth struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration

	now func() time.Time
}

func SetupAuth(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) Auth {
	return Auth{
		AccessSecret:  accessSecret,
		AccessTTL:     accessTTL,
		RefreshSecret: refreshSecret,
		RefreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (a Auth) GenerateAccessToken(user *domain.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errors.New("required inputs are missing to generate token")
	}
	return a.sign(AccessToken, TokenClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	})
}

func (a Auth) GenerateRefreshToken(userID uint) (string, error) {
	if userID == 0 {
		return "", errors.New("required inputs are missing to generate token")
	}
	return a.sign(RefreshToken, TokenClaims{UserID: userID})
}

func (a Auth) sign(kind TokenKind, claims TokenClaims) (string, error) {
	secret, ttl := a.settings(kind)
	if secret == "" {
		return "", errors.New("token secret is not configured")
	}

	now := a.clock()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

// StripBearer trims whitespace and an optional case-insensitive "Bearer"
// scheme, returning the bare token.
func StripBearer(s string) string {
	s = strings.TrimSpace(s)
	const scheme = "bearer"
	if len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme) &&
		(len(s) == len(scheme) || s[len(scheme)] == ' ') {
		return strings.TrimSpace(s[len(scheme):])
	}
	return s
}

// VerifyToken accepts "<token>" or "Bearer <token>".
func (a Auth) VerifyToken(tokenString string, kind TokenKind) (dto.AuthResponse, error) {
	tokenString = StripBearer(tokenString)
	if tokenString == "" {
		return dto.AuthResponse{}, ErrMissingToken
	}

	secret, _ := a.settings(kind)
	if secret == "" {
		return dto.AuthResponse{}, ErrInvalidToken
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock),
	)
	if err != nil || !token.Valid || claims.UserID == 0 {
		return dto.AuthResponse{}, ErrInvalidToken
	}

	res := dto.AuthResponse{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
		Expiry:   claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		res.Iat = claims.IssuedAt.Unix()
	}
	return res, nil
}

func (a Auth) settings(kind TokenKind) (string, time.Duration) {
	switch kind {
	case AccessToken:
		return a.AccessSecret, a.AccessTTL
	case RefreshToken:
		return a.RefreshSecret, a.RefreshTTL
	default:
		return "", 0
	}
}

func (a Auth) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}
