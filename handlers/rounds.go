package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/models"
)

type createRoundRequest struct {
	Player string     `json:"player"`
	Course string     `json:"course"`
	Scores []int      `json:"scores"`
	Date   *time.Time `json:"date"`
}

type updateRoundRequest struct {
	Scores []int      `json:"scores"`
	Date   *time.Time `json:"date"`
}

type roundIDResponse struct {
	ID string `json:"id"`
}

// Rounds returns every round, newest first, with player and course joined.
func (h *Handler) Rounds(c echo.Context) error {
	return h.listRounds(c, "", "")
}

// RoundsByPlayer returns the rounds recorded by one player.
func (h *Handler) RoundsByPlayer(c echo.Context) error {
	return h.listRounds(c, "r.player_id = ?", c.Param("playerId"))
}

// RoundsByCourse returns the rounds played on one course.
func (h *Handler) RoundsByCourse(c echo.Context) error {
	return h.listRounds(c, "r.course_id = ?", c.Param("courseId"))
}

func (h *Handler) listRounds(c echo.Context, where, arg string) error {
	rounds := []models.Round{}
	q := h.db.NewSelect().
		Model(&rounds).
		Relation("Player").
		Relation("Course").
		OrderExpr("r.date DESC")
	if where != "" {
		q = q.Where(where, arg)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return h.storeError("list rounds", err)
	}
	for i := range rounds {
		rounds[i].FillTotals()
	}
	return c.JSON(http.StatusOK, rounds)
}

func (h *Handler) Round(c echo.Context) error {
	round, err := h.findRound(c.Request().Context(), h.db, c.Param("id"))
	if err != nil {
		return h.storeError("get round", err)
	}
	return c.JSON(http.StatusOK, round)
}

// CreateRound records a round after checking its course and player exist and
// that there is one positive score per hole.
func (h *Handler) CreateRound(c echo.Context) error {
	var req createRoundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Player = strings.TrimSpace(req.Player)
	req.Course = strings.TrimSpace(req.Course)
	if req.Course == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "course is required")
	}
	if req.Player == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "player is required")
	}

	ctx := c.Request().Context()
	round := &models.Round{
		PlayerID: req.Player,
		CourseID: req.Course,
		Scores:   req.Scores,
		Date:     models.DefaultRoundDate(),
	}
	if req.Date != nil {
		round.Date = req.Date.UTC()
	}

	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		course, err := h.findCourse(ctx, tx, req.Course)
		if err != nil {
			return err
		}
		if err := domain.ValidateScores(course.NumberOfHoles, req.Scores); err != nil {
			return badRequest(err)
		}
		player, err := h.findPlayer(ctx, tx, req.Player)
		if err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(round).Exec(ctx); err != nil {
			return err
		}
		round.Course, round.Player = course, player
		return nil
	})
	if err != nil {
		return h.storeError("create round", err)
	}

	round.FillTotals()
	return c.JSON(http.StatusCreated, round)
}

// UpdateRound replaces the scores and/or date of a round. Replaced scores are
// checked against the round's own course. Only the id is returned.
func (h *Handler) UpdateRound(c echo.Context) error {
	var req updateRoundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	ctx := c.Request().Context()
	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		round, err := h.findRound(ctx, tx, id)
		if err != nil {
			return err
		}

		columns := []string{"updated_at"}
		if req.Scores != nil {
			if round.Course == nil {
				return notFound("Course not found")
			}
			if err := domain.ValidateScores(round.Course.NumberOfHoles, req.Scores); err != nil {
				return badRequest(err)
			}
			round.Scores = req.Scores
			columns = append(columns, "scores")
		}
		if req.Date != nil {
			round.Date = req.Date.UTC()
			columns = append(columns, "date")
		}

		_, err = tx.NewUpdate().Model(round).Column(columns...).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return h.storeError("update round", err)
	}
	return c.JSON(http.StatusOK, roundIDResponse{ID: id})
}

func (h *Handler) DeleteRound(c echo.Context) error {
	res, err := h.db.NewDelete().Model((*models.Round)(nil)).
		Where("id = ?", c.Param("id")).
		Exec(c.Request().Context())
	if err != nil {
		return h.storeError("delete round", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Round not found")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Round deleted"})
}

func (h *Handler) findRound(ctx context.Context, idb bun.IDB, id string) (*models.Round, error) {
	round := &models.Round{}
	err := idb.NewSelect().
		Model(round).
		Relation("Player").
		Relation("Course").
		Where("r.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Round not found")
	}
	if err != nil {
		return nil, err
	}
	round.FillTotals()
	return round, nil
}
