package middleware

import (
	"strings"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/helper/utils"
	"github.com/SundayYogurt/channel_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

const AccessTokenCookie = "accessToken"

// AuthMiddleware rejects the request unless it carries a valid access token
// for an existing account.
func AuthMiddleware(sessions services.SessionService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, err := sessions.Authenticate(ctx.UserContext(), bearer(ctx))
		if err != nil {
			return utils.ResponseFromError(ctx, err)
		}

		setUser(ctx, user)
		return ctx.Next()
	}
}

// OptionalAuth attaches the viewer when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(sessions services.SessionService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearer(ctx)
		if token == "" {
			return ctx.Next()
		}

		user, err := sessions.Authenticate(ctx.UserContext(), token)
		if err != nil {
			if domain.KindOf(err) == domain.KindInternal {
				return utils.ResponseFromError(ctx, err)
			}
			return ctx.Next()
		}

		setUser(ctx, user)
		return ctx.Next()
	}
}

// UserID is 0 for anonymous requests.
func UserID(ctx *fiber.Ctx) uint {
	id, _ := ctx.Locals("userID").(uint)
	return id
}

func bearer(ctx *fiber.Ctx) string {
	// cookie first, then Authorization header
	token := strings.TrimSpace(ctx.Cookies(AccessTokenCookie))
	if token == "" {
		token = strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
	}
	return token
}

func setUser(ctx *fiber.Ctx, user *domain.User) {
	ctx.Locals("userID", user.ID)
	ctx.Locals("user", user)
}
