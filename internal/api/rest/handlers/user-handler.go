package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/SundayYogurt/channel_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/helper/utils"
	"github.com/SundayYogurt/channel_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

const RefreshTokenCookie = "refreshToken"

type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type UserHandler struct {
	sessions  services.SessionService
	profiles  services.ProfileService
	subs      services.SubscriptionService
	cookies   CookieConfig
	maxUpload int64
}

func NewUserHandler(
	sessions services.SessionService,
	profiles services.ProfileService,
	subs services.SubscriptionService,
	cookies CookieConfig,
	maxUpload int64,
) *UserHandler {
	return &UserHandler{
		sessions:  sessions,
		profiles:  profiles,
		subs:      subs,
		cookies:   cookies,
		maxUpload: maxUpload,
	}
}

func (h *UserHandler) Routes() []Route {
	return []Route{
		// Auth
		{Method: fiber.MethodPost, Path: "/users/register", Auth: Public, Handler: h.Register},
		{Method: fiber.MethodPost, Path: "/users/login", Auth: Public, Handler: h.Login},
		{Method: fiber.MethodPost, Path: "/users/logout", Auth: Required, Handler: h.Logout},
		{Method: fiber.MethodPost, Path: "/users/refresh-token", Auth: Public, Handler: h.RefreshAccessToken},
		{Method: fiber.MethodPost, Path: "/users/change-password", Auth: Required, Handler: h.ChangePassword},

		// Profile
		{Method: fiber.MethodGet, Path: "/users/me", Auth: Required, Handler: h.GetCurrentUser},
		{Method: fiber.MethodPatch, Path: "/users/me", Auth: Required, Handler: h.UpdateAccountDetails},
		{Method: fiber.MethodPatch, Path: "/users/avatar", Auth: Required, Handler: h.UpdateAvatar},
		{Method: fiber.MethodPatch, Path: "/users/cover-image", Auth: Required, Handler: h.UpdateCoverImage},
		{Method: fiber.MethodGet, Path: "/users/channel/:username", Auth: Optional, Handler: h.GetChannelProfile},
		{Method: fiber.MethodGet, Path: "/users/history", Auth: Required, Handler: h.GetWatchHistory},

		// Subscriptions
		{Method: fiber.MethodPost, Path: "/subscriptions/c/:channelId", Auth: Required, Handler: h.ToggleSubscription},
	}
}

// SetupRoutes mounts the user API under /api/v1.
func (h *UserHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")
	Mount(api, h.Routes(), middleware.AuthMiddleware(h.sessions), middleware.OptionalAuth(h.sessions))
}

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept multipart/form-data
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param fullName formData string true "Full name"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.APIError
// @Failure 409 {object} dto.APIError
// @Router /api/v1/users/register [post]
func (h *UserHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	avatar, err := formImage(ctx, "avatar", h.maxUpload)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	cover, err := formImage(ctx, "coverImage", h.maxUpload)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	requestBody.Avatar = avatar
	requestBody.CoverImage = cover

	user, err := h.profiles.Register(ctx.UserContext(), requestBody)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, user, "User registered successfully")
}

// Login godoc
// @Summary Login with username or email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.UserLogin true "Credentials"
// @Success 200 {object} dto.APISuccessLogin
// @Failure 400 {object} dto.APIError
// @Failure 401 {object} dto.APIError
// @Router /api/v1/users/login [post]
func (h *UserHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "username or email and password are required")
	}

	res, err := h.sessions.Login(ctx.UserContext(), requestBody)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	h.setSessionCookies(ctx, res.AccessToken, res.RefreshToken)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res, "User logged in successfully")
}

// Logout godoc
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIError
// @Router /api/v1/users/logout [post]
func (h *UserHandler) Logout(ctx *fiber.Ctx) error {
	if err := h.sessions.Logout(ctx.UserContext(), middleware.UserID(ctx)); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	h.clearSessionCookies(ctx)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{}, "User logged out")
}

// RefreshAccessToken godoc
// @Summary Rotate the refresh token and issue a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest false "Refresh token when no cookie is sent"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIError
// @Router /api/v1/users/refresh-token [post]
func (h *UserHandler) RefreshAccessToken(ctx *fiber.Ctx) error {
	presented := strings.TrimSpace(ctx.Cookies(RefreshTokenCookie))
	if presented == "" {
		var requestBody dto.RefreshTokenRequest
		// an empty or non-JSON body just means no token
		_ = ctx.BodyParser(&requestBody)
		presented = requestBody.RefreshToken
	}

	pair, err := h.sessions.Refresh(ctx.UserContext(), presented)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	h.setSessionCookies(ctx, pair.AccessToken, pair.RefreshToken)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, pair, "Access token refreshed")
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIError
// @Failure 401 {object} dto.APIError
// @Router /api/v1/users/change-password [post]
func (h *UserHandler) ChangePassword(ctx *fiber.Ctx) error {
	var requestBody dto.ChangePasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.sessions.ChangePassword(ctx.UserContext(), middleware.UserID(ctx), requestBody); err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{}, "Password changed successfully")
}

// GetCurrentUser godoc
// @Summary Current user
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIError
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetCurrentUser(ctx *fiber.Ctx) error {
	user, err := h.profiles.GetCurrentUser(ctx.UserContext(), middleware.UserID(ctx))
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user, "User fetched successfully")
}

// UpdateAccountDetails godoc
// @Summary Update full name and email
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpdateUserProfile true "Profile fields"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIError
// @Failure 409 {object} dto.APIError
// @Router /api/v1/users/me [patch]
func (h *UserHandler) UpdateAccountDetails(ctx *fiber.Ctx) error {
	var requestBody dto.UpdateUserProfile
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, err := h.profiles.UpdateProfile(ctx.UserContext(), middleware.UserID(ctx), requestBody)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar godoc
// @Summary Replace avatar
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIError
// @Router /api/v1/users/avatar [patch]
func (h *UserHandler) UpdateAvatar(ctx *fiber.Ctx) error {
	file, err := formImage(ctx, "avatar", h.maxUpload)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	user, err := h.profiles.UpdateAvatar(ctx.UserContext(), middleware.UserID(ctx), file)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user, "Avatar image updated successfully")
}

// UpdateCoverImage godoc
// @Summary Replace cover image
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIError
// @Router /api/v1/users/cover-image [patch]
func (h *UserHandler) UpdateCoverImage(ctx *fiber.Ctx) error {
	file, err := formImage(ctx, "coverImage", h.maxUpload)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	user, err := h.profiles.UpdateCoverImage(ctx.UserContext(), middleware.UserID(ctx), file)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user, "Cover image updated successfully")
}

// GetChannelProfile godoc
// @Summary Channel profile with subscription counts
// @Tags Profile
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIError
// @Router /api/v1/users/channel/{username} [get]
func (h *UserHandler) GetChannelProfile(ctx *fiber.Ctx) error {
	channel, err := h.profiles.GetChannelProfile(ctx.UserContext(), ctx.Params("username"), middleware.UserID(ctx))
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, channel, "User channel fetched successfully")
}

// GetWatchHistory godoc
// @Summary Watch history of the current user
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Router /api/v1/users/history [get]
func (h *UserHandler) GetWatchHistory(ctx *fiber.Ctx) error {
	history, err := h.profiles.GetWatchHistory(ctx.UserContext(), middleware.UserID(ctx))
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, history, "Watch history fetched successfully")
}

// ToggleSubscription godoc
// @Summary Subscribe to or unsubscribe from a channel
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param channelId path int true "Channel user id"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIError
// @Failure 404 {object} dto.APIError
// @Router /api/v1/subscriptions/c/{channelId} [post]
func (h *UserHandler) ToggleSubscription(ctx *fiber.Ctx) error {
	channelID, err := strconv.ParseUint(ctx.Params("channelId"), 10, 64)
	if err != nil || channelID == 0 {
		return utils.ResponseFromError(ctx, domain.InvalidArgument("invalid channel id"))
	}

	status, err := h.subs.ToggleSubscription(ctx.UserContext(), middleware.UserID(ctx), uint(channelID))
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, status, "Subscription updated")
}

func (h *UserHandler) setSessionCookies(ctx *fiber.Ctx, access, refresh string) {
	ctx.Cookie(h.cookie(middleware.AccessTokenCookie, access, h.cookies.AccessTTL))
	ctx.Cookie(h.cookie(RefreshTokenCookie, refresh, h.cookies.RefreshTTL))
}

func (h *UserHandler) clearSessionCookies(ctx *fiber.Ctx) {
	ctx.Cookie(h.cookie(middleware.AccessTokenCookie, "", -time.Hour))
	ctx.Cookie(h.cookie(RefreshTokenCookie, "", -time.Hour))
}

func (h *UserHandler) cookie(name, value string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
