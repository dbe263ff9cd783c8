package handlers

import (
	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/dgapp/middleware"
)

// Register mounts the API under /api and the health check. Reads are
// public; writes require a token when the handler has a signing key.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")

	var guard []echo.MiddlewareFunc
	if len(h.JWTKey) > 0 {
		guard = append(guard, mw.JWT(h.JWTKey))
		api.POST("/signin", h.Signin)
	}

	api.GET("/courses", h.Courses)
	api.GET("/courses/:id", h.Course)
	api.POST("/courses", h.CreateCourse, guard...)
	api.PUT("/courses/:id", h.UpdateCourse, guard...)
	api.DELETE("/courses/:id", h.DeleteCourse, guard...)

	api.GET("/players", h.Players)
	api.GET("/players/:id", h.Player)
	api.POST("/players", h.CreatePlayer, guard...)
	api.PUT("/players/:id", h.UpdatePlayer, guard...)
	api.DELETE("/players/:id", h.DeletePlayer, guard...)

	api.GET("/rounds", h.Rounds)
	api.GET("/rounds/player/:playerId", h.RoundsByPlayer)
	api.GET("/rounds/course/:courseId", h.RoundsByCourse)
	api.GET("/rounds/:id", h.Round)
	api.POST("/rounds", h.CreateRound, guard...)
	api.PUT("/rounds/:id", h.UpdateRound, guard...)
	api.DELETE("/rounds/:id", h.DeleteRound, guard...)
}
