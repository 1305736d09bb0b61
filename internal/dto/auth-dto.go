package dto

type RegisterRequest struct {
	Username   string      `json:"username" form:"username"`
	Email      string      `json:"email" form:"email"`
	Password   string      `json:"password" form:"password"`
	FullName   string      `json:"fullName" form:"fullName"`
	Avatar     *FileUpload `json:"-" form:"-"`
	CoverImage *FileUpload `json:"-" form:"-"`
}

// UserLogin accepts either identifier; at least one is required.
type UserLogin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// AuthResponse is what a verified token carries.
type AuthResponse struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Iat      int64  `json:"iat"`
	Expiry   int64  `json:"expiry"`
}
