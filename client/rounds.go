package client

import (
	"context"
	"net/http"

	"github.com/padraicbc/dgapp/domain"
)

// Rounds lists every round, newest first.
func (c *Client) Rounds(ctx context.Context) ([]domain.Round, error) {
	return c.rounds(ctx, "rounds")
}

func (c *Client) RoundsByPlayer(ctx context.Context, playerID string) ([]domain.Round, error) {
	return c.rounds(ctx, "rounds", "player", playerID)
}

func (c *Client) RoundsByCourse(ctx context.Context, courseID string) ([]domain.Round, error) {
	return c.rounds(ctx, "rounds", "course", courseID)
}

func (c *Client) rounds(ctx context.Context, elems ...string) ([]domain.Round, error) {
	var out []roundDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, elems...), nil, &out); err != nil {
		return nil, err
	}
	return mapSlice(out, roundDTO.toDomain), nil
}

func (c *Client) Round(ctx context.Context, id string) (domain.Round, error) {
	var out roundDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "rounds", id), nil, &out); err != nil {
		return domain.Round{}, err
	}
	return out.toDomain(), nil
}

// CreateRound records round for its player and course. A zero date lets
// the server pick the current minute.
func (c *Client) CreateRound(ctx context.Context, round domain.Round) (domain.Round, error) {
	in := createRoundRequest{Player: round.Player.ID, Course: round.Course.ID, Scores: round.Scores}
	if !round.Date.IsZero() {
		d := round.Date
		in.Date = &d
	}
	var out roundDTO
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "rounds"), in, &out); err != nil {
		return domain.Round{}, err
	}
	return out.toDomain(), nil
}

// UpdateRound replaces the scores and date of a round. The API answers with
// the id only.
func (c *Client) UpdateRound(ctx context.Context, round domain.Round) (string, error) {
	in := updateRoundRequest{Scores: round.Scores}
	if !round.Date.IsZero() {
		d := round.Date
		in.Date = &d
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPut, c.endpoint(nil, "rounds", round.ID), in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) DeleteRound(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(nil, "rounds", id), nil, &messageResponse{})
}
