package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db           *bun.DB
	log          *zap.Logger
	JWTKey       []byte
	deletePolicy domain.DeletePolicy
}

// New creates a Handler. A nil jwtKey leaves the write routes open.
func New(db *bun.DB, log *zap.Logger, jwtKey []byte, policy domain.DeletePolicy) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == "" {
		policy = domain.DeleteRestrict
	}
	return &Handler{db: db, log: log, JWTKey: jwtKey, deletePolicy: policy}
}

// storeError logs an unexpected store failure and maps it to a 500.
func (h *Handler) storeError(op string, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	h.log.Error(op, zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func notFound(msg string) error {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}

type messageResponse struct {
	Message string `json:"message"`
}

// Health answers 204 while the store responds to a ping.
func (h *Handler) Health(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		h.log.Warn("health check", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
