package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/helper"
	"github.com/SundayYogurt/channel_service/internal/helper/utils"
	"github.com/SundayYogurt/channel_service/internal/interfaces"
	"github.com/SundayYogurt/channel_service/internal/repository"
)

const invalidCredentials = "Invalid user credentials"

// fallbackDummyHash is a cost-10 bcrypt hash of a throwaway password, used
// when the configured hasher cannot produce one at startup.
const fallbackDummyHash = "$2b$10$abcdefghijklmnopqrstuuWZOWHCdnuOVFb9VpY4mOQM06pyJg9PK"

// SessionService owns the refresh-token field of an account: one active
// refresh token per user, rotated on every refresh.
type SessionService interface {
	Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, input dto.ChangePasswordRequest) error
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type SessionOptions struct {
	RevokeOnPasswordChange bool
}

type sessionService struct {
	repo     repository.UserRepository
	auth     helper.Auth
	hasher   helper.PasswordHasher
	producer interfaces.ProducerHandler
	log      *slog.Logger
	opts     SessionOptions

	// compared against when the identifier is unknown so both failure
	// paths pay for one bcrypt comparison
	dummyHash string
}

func NewSessionService(
	repo repository.UserRepository,
	auth helper.Auth,
	hasher helper.PasswordHasher,
	producer interfaces.ProducerHandler,
	logger *slog.Logger,
	opts SessionOptions,
) SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "session")

	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil || dummy == "" {
		logger.Warn("dummy password hash failed, using fallback", "error", err)
		dummy = fallbackDummyHash
	}
	return &sessionService{
		repo:      repo,
		auth:      auth,
		hasher:    hasher,
		producer:  producer,
		log:       logger,
		opts:      opts,
		dummyHash: dummy,
	}
}

func (s *sessionService) Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error) {
	username := utils.NormalizeIdentity(input.Username)
	email := utils.NormalizeIdentity(input.Email)

	if username == "" && email == "" {
		return nil, domain.InvalidArgument("username or email is required")
	}
	if input.Password == "" {
		return nil, domain.InvalidArgument("password is required")
	}

	user, err := s.repo.FindUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, domain.Internal("failed to look up user", err)
	}
	if user == nil {
		_ = s.hasher.Verify(input.Password, s.dummyHash)
		return nil, domain.Unauthorized(invalidCredentials)
	}

	if err := s.hasher.Verify(input.Password, user.Password); err != nil {
		return nil, domain.Unauthorized(invalidCredentials)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, domain.Internal("failed to persist session", err)
	}

	s.log.Info("user logged in", "user_id", user.ID)
	return &dto.LoginResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	// the stored token is bare, so compare against the same form VerifyToken parses
	presented := helper.StripBearer(refreshToken)
	if presented == "" {
		return nil, domain.Unauthorized("unauthorized request")
	}

	claims, err := s.auth.VerifyToken(presented, helper.RefreshToken)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidToken, "Invalid refresh token", err)
	}

	user, err := s.repo.FindUserById(ctx, claims.UserID)
	if err != nil {
		return nil, domain.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NotFound("user not found")
	}

	if !user.HasSession() || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		s.log.Warn("refresh token mismatch", "user_id", user.ID)
		return nil, domain.NewError(domain.KindTokenMismatch, "Refresh token is expired or used")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	// conditional write: a concurrent refresh or logout that already replaced
	// the token makes this one lose
	rotated, err := s.repo.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return nil, domain.Internal("failed to persist session", err)
	}
	if !rotated {
		return nil, domain.NewError(domain.KindTokenMismatch, "Refresh token is expired or used")
	}

	return pair, nil
}

func (s *sessionService) Logout(ctx context.Context, userID uint) error {
	if userID == 0 {
		return domain.Unauthorized("unauthorized request")
	}
	if err := s.repo.SetRefreshToken(ctx, userID, nil); err != nil {
		return domain.Internal("failed to clear session", err)
	}
	s.log.Info("user logged out", "user_id", userID)
	return nil
}

func (s *sessionService) ChangePassword(ctx context.Context, userID uint, input dto.ChangePasswordRequest) error {
	if input.OldPassword == "" || strings.TrimSpace(input.NewPassword) == "" {
		return domain.InvalidArgument("oldPassword and newPassword are required")
	}

	user, err := s.repo.FindUserById(ctx, userID)
	if err != nil {
		return domain.Internal("failed to look up user", err)
	}
	if user == nil {
		return domain.NotFound("user not found")
	}

	if err := s.hasher.Verify(input.OldPassword, user.Password); err != nil {
		return domain.Unauthorized("Invalid old password")
	}

	hashed, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return domain.Internal("failed to hash password", err)
	}

	fields := map[string]interface{}{"password": hashed}
	if s.opts.RevokeOnPasswordChange {
		fields["refresh_token"] = nil
	}
	if err := s.repo.UpdateUserFields(ctx, user.ID, fields); err != nil {
		return domain.Internal("failed to update password", err)
	}

	publishAccountEvent(s.producer, s.log, dto.EventUserPasswordChanged, user)
	return nil
}

func (s *sessionService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.auth.VerifyToken(accessToken, helper.AccessToken)
	if err != nil {
		if errors.Is(err, helper.ErrMissingToken) {
			return nil, domain.Unauthorized("Unauthorized request")
		}
		return nil, domain.Unauthorized("Invalid access token")
	}

	user, err := s.repo.FindUserById(ctx, claims.UserID)
	if err != nil {
		return nil, domain.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.Unauthorized("Invalid access token")
	}
	return user, nil
}

func (s *sessionService) issueTokens(user *domain.User) (*dto.TokenPair, error) {
	access, err := s.auth.GenerateAccessToken(user)
	if err != nil {
		return nil, domain.Internal("Something went wrong while generating access token", err)
	}
	refresh, err := s.auth.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, domain.Internal("Something went wrong while generating refresh token", err)
	}
	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
