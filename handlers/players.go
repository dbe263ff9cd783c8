package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/models"
)

type createPlayerRequest struct {
	Name       string  `json:"name"`
	PDGANumber *int    `json:"pdgaNumber"`
	Email      *string `json:"email"`
}

type updatePlayerRequest struct {
	Name       *string `json:"name"`
	PDGANumber *int    `json:"pdgaNumber"`
	Email      *string `json:"email"`
}

// Players returns every player ordered by name.
func (h *Handler) Players(c echo.Context) error {
	players := []models.Player{}
	if err := h.db.NewSelect().Model(&players).OrderExpr("p.name ASC").Scan(c.Request().Context()); err != nil {
		return h.storeError("list players", err)
	}
	return c.JSON(http.StatusOK, players)
}

func (h *Handler) Player(c echo.Context) error {
	player, err := h.findPlayer(c.Request().Context(), h.db, c.Param("id"))
	if err != nil {
		return h.storeError("get player", err)
	}
	return c.JSON(http.StatusOK, player)
}

func (h *Handler) CreatePlayer(c echo.Context) error {
	var req createPlayerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	player := &models.Player{
		Name:       strings.TrimSpace(req.Name),
		PDGANumber: req.PDGANumber,
		Email:      req.Email,
	}
	if err := player.Validate(); err != nil {
		return badRequest(err)
	}

	if _, err := h.db.NewInsert().Model(player).Exec(c.Request().Context()); err != nil {
		return h.storeError("create player", err)
	}
	return c.JSON(http.StatusCreated, player)
}

func (h *Handler) UpdatePlayer(c echo.Context) error {
	var req updatePlayerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	player, err := h.findPlayer(ctx, h.db, c.Param("id"))
	if err != nil {
		return h.storeError("get player", err)
	}

	if req.Name != nil {
		player.Name = strings.TrimSpace(*req.Name)
	}
	if req.PDGANumber != nil {
		player.PDGANumber = req.PDGANumber
	}
	if req.Email != nil {
		player.Email = req.Email
	}
	if err := player.Validate(); err != nil {
		return badRequest(err)
	}

	if _, err := h.db.NewUpdate().Model(player).WherePK().Exec(ctx); err != nil {
		return h.storeError("update player", err)
	}
	return c.JSON(http.StatusOK, player)
}

// DeletePlayer removes a player together with their rounds.
func (h *Handler) DeletePlayer(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Round)(nil)).Where("player_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Player)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("Player not found")
		}
		return nil
	})
	if err != nil {
		return h.storeError("delete player", err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Player deleted"})
}

func (h *Handler) findPlayer(ctx context.Context, idb bun.IDB, id string) (*models.Player, error) {
	player := &models.Player{}
	err := idb.NewSelect().Model(player).Where("p.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Player not found")
	}
	return player, err
}
