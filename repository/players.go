package repository

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
)

type PlayerRemote interface {
	Players(ctx context.Context) ([]domain.Player, error)
	Player(ctx context.Context, id string) (domain.Player, error)
	CreatePlayer(ctx context.Context, p domain.Player) (domain.Player, error)
	UpdatePlayer(ctx context.Context, p domain.Player) (domain.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

type PlayerLocal interface {
	Players(ctx context.Context) ([]domain.Player, error)
	Player(ctx context.Context, id string) (domain.Player, error)
	PlayerByName(ctx context.Context, name string) (domain.Player, error)
	SavePlayer(ctx context.Context, p domain.Player) error
	SavePlayers(ctx context.Context, players []domain.Player) error
	DeletePlayer(ctx context.Context, id string) error
}

type Players struct {
	syncState
	remote PlayerRemote
	local  PlayerLocal
}

func NewPlayers(remote PlayerRemote, local PlayerLocal, log *zap.Logger) *Players {
	r := &Players{remote: remote, local: local}
	r.log = nopIfNil(log).Named("players")
	return r
}

// GetPlayers is cache-first. A refresh upserts rather than replaces, since
// dropping a cached player would take their cached rounds with it.
func (r *Players) GetPlayers(ctx context.Context, forceRefresh bool) ([]domain.Player, error) {
	if !forceRefresh {
		cached, err := r.local.Players(ctx)
		switch {
		case err != nil:
			r.log.Warn("read cached players", zap.Error(err))
		case len(cached) > 0:
			return cached, nil
		}
	}

	fetched, err := r.remote.Players(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.local.SavePlayers(ctx, fetched); err != nil {
		return fetched, r.markStale("refresh players", err)
	}
	r.refreshed()
	return fetched, nil
}

func (r *Players) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	p, err := r.local.Player(ctx, id)
	if err == nil {
		return p, nil
	}
	if !isMiss(err) {
		r.log.Warn("read cached player", zap.String("id", id), zap.Error(err))
	}

	p, err = r.remote.Player(ctx, id)
	if err != nil {
		return domain.Player{}, err
	}
	if err := r.local.SavePlayer(ctx, p); err != nil {
		return p, r.markStale("cache player", err)
	}
	return p, nil
}

func (r *Players) CreatePlayer(ctx context.Context, p domain.Player) (domain.Player, error) {
	created, err := r.remote.CreatePlayer(ctx, p)
	if err != nil {
		return domain.Player{}, err
	}
	if err := r.local.SavePlayer(ctx, created); err != nil {
		return created, r.markStale("create player", err)
	}
	return created, nil
}

func (r *Players) UpdatePlayer(ctx context.Context, p domain.Player) (domain.Player, error) {
	updated, err := r.remote.UpdatePlayer(ctx, p)
	if err != nil {
		return domain.Player{}, err
	}
	if err := r.local.SavePlayer(ctx, updated); err != nil {
		return updated, r.markStale("update player", err)
	}
	return updated, nil
}

func (r *Players) DeletePlayer(ctx context.Context, id string) error {
	if err := r.remote.DeletePlayer(ctx, id); err != nil {
		return err
	}
	if err := r.local.DeletePlayer(ctx, id); err != nil {
		return r.markStale("delete player", err)
	}
	return nil
}

// FindOrCreate resolves a player by name, ignoring case and accents. It
// looks in the cache, then in the API's list, and creates the player
// remotely when nobody matches.
func (r *Players) FindOrCreate(ctx context.Context, name string) (domain.Player, error) {
	name = strings.TrimSpace(name)
	if _, err := domain.ValidatePlayer(name, ""); err != nil {
		return domain.Player{}, err
	}

	p, err := r.local.PlayerByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !isMiss(err) {
		r.log.Warn("find cached player", zap.String("name", name), zap.Error(err))
	}

	players, err := r.remote.Players(ctx)
	if err != nil {
		return domain.Player{}, err
	}
	want := domain.FoldName(name)
	for _, candidate := range players {
		if domain.FoldName(candidate.Name) == want {
			if err := r.local.SavePlayers(ctx, players); err != nil {
				return candidate, r.markStale("cache players", err)
			}
			return candidate, nil
		}
	}

	return r.CreatePlayer(ctx, domain.Player{Name: name})
}
