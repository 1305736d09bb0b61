package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type AuthMode int

const (
	Public AuthMode = iota
	Required
	Optional
)

// Route is one row of the HTTP surface.
type Route struct {
	Method  string
	Path    string
	Auth    AuthMode
	Handler fiber.Handler
}

// Mount registers routes on r, wrapping each with the guard its Auth mode asks for.
func Mount(r fiber.Router, routes []Route, required, optional fiber.Handler) {
	for _, rt := range routes {
		chain := make([]fiber.Handler, 0, 2)
		switch rt.Auth {
		case Required:
			chain = append(chain, required)
		case Optional:
			chain = append(chain, optional)
		}
		chain = append(chain, rt.Handler)
		r.Add(rt.Method, rt.Path, chain...)
	}
}
