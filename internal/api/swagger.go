package api

import (
	docs "github.com/SundayYogurt/channel_service/docs"
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

// RegisterSwagger fixes the advertised host and schemes before any request is
// served. An empty host lets the UI fall back to the host it was loaded from.
func RegisterSwagger(app *fiber.App, host string, schemes []string) {
	if schemes == nil {
		schemes = []string{}
	}
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = schemes

	app.Get("/swagger/*", fiberSwagger.WrapHandler)
}
