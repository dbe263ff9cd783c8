package client

import (
	"context"
	"net/http"

	"github.com/padraicbc/dgapp/domain"
)

func (c *Client) Players(ctx context.Context) ([]domain.Player, error) {
	var out []playerDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "players"), nil, &out); err != nil {
		return nil, err
	}
	return mapSlice(out, playerDTO.toDomain), nil
}

func (c *Client) Player(ctx context.Context, id string) (domain.Player, error) {
	var out playerDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "players", id), nil, &out); err != nil {
		return domain.Player{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	in := fromPlayer(player)
	in.ID = ""
	var out playerDTO
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "players"), in, &out); err != nil {
		return domain.Player{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) UpdatePlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	var out playerDTO
	if err := c.do(ctx, http.MethodPut, c.endpoint(nil, "players", player.ID), fromPlayer(player), &out); err != nil {
		return domain.Player{}, err
	}
	return out.toDomain(), nil
}

// DeletePlayer removes the player; the server drops their rounds too.
func (c *Client) DeletePlayer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(nil, "players", id), nil, &messageResponse{})
}
