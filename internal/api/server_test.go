package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SundayYogurt/channel_service/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	app := NewApp(config.Config{CorsOrigin: "*", UploadMaxBytes: 1024})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "health", path: "/", status: http.StatusOK},
		{name: "swagger doc", path: "/swagger/doc.json", status: http.StatusOK},
		{name: "unknown route", path: "/nope", status: http.StatusNotFound},
		{name: "recovered panic", path: "/boom", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status >= http.StatusBadRequest {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, false, body["success"])
				assert.Equal(t, float64(tt.status), body["statusCode"])
			}
		})
	}
}
