package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
)

type RoundRemote interface {
	Rounds(ctx context.Context) ([]domain.Round, error)
	Round(ctx context.Context, id string) (domain.Round, error)
	CreateRound(ctx context.Context, r domain.Round) (domain.Round, error)
	// UpdateRound answers with the round id only.
	UpdateRound(ctx context.Context, r domain.Round) (string, error)
	DeleteRound(ctx context.Context, id string) error
}

// RoundLocal saves rounds together with their player and course rows.
type RoundLocal interface {
	Rounds(ctx context.Context) ([]domain.Round, error)
	Round(ctx context.Context, id string) (domain.Round, error)
	SaveRound(ctx context.Context, r domain.Round) error
	ReplaceRounds(ctx context.Context, rounds []domain.Round) error
	DeleteRound(ctx context.Context, id string) error
}

type Rounds struct {
	syncState
	remote RoundRemote
	local  RoundLocal
}

func NewRounds(remote RoundRemote, local RoundLocal, log *zap.Logger) *Rounds {
	r := &Rounds{remote: remote, local: local}
	r.log = nopIfNil(log).Named("rounds")
	return r
}

// GetRounds follows the same cache-first policy as GetCourses.
func (r *Rounds) GetRounds(ctx context.Context, forceRefresh bool) ([]domain.Round, error) {
	if !forceRefresh {
		cached, err := r.local.Rounds(ctx)
		switch {
		case err != nil:
			r.log.Warn("read cached rounds", zap.Error(err))
		case len(cached) > 0:
			return cached, nil
		}
	}

	fetched, err := r.remote.Rounds(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.local.ReplaceRounds(ctx, fetched); err != nil {
		return fetched, r.markStale("replace rounds", err)
	}
	r.refreshed()
	return fetched, nil
}

func (r *Rounds) GetRound(ctx context.Context, id string) (domain.Round, error) {
	round, err := r.local.Round(ctx, id)
	if err == nil {
		return round, nil
	}
	if !isMiss(err) {
		r.log.Warn("read cached round", zap.String("id", id), zap.Error(err))
	}

	round, err = r.remote.Round(ctx, id)
	if err != nil {
		return domain.Round{}, err
	}
	if err := r.local.SaveRound(ctx, round); err != nil {
		return round, r.markStale("cache round", err)
	}
	return round, nil
}

func (r *Rounds) CreateRound(ctx context.Context, round domain.Round) (domain.Round, error) {
	created, err := r.remote.CreateRound(ctx, round)
	if err != nil {
		return domain.Round{}, err
	}
	if err := r.local.SaveRound(ctx, created); err != nil {
		return created, r.markStale("create round", err)
	}
	return created, nil
}

// UpdateRound sends round to the API and, since the API only echoes the id,
// mirrors the caller's copy into the cache.
func (r *Rounds) UpdateRound(ctx context.Context, round domain.Round) (domain.Round, error) {
	id, err := r.remote.UpdateRound(ctx, round)
	if err != nil {
		return domain.Round{}, err
	}
	if id != round.ID {
		return domain.Round{}, fmt.Errorf("update round %s: server answered for %q", round.ID, id)
	}

	saved := domain.RestoreRound(round.ID, round.Player, round.Course, round.Scores, round.Date)
	if err := r.local.SaveRound(ctx, saved); err != nil {
		return saved, r.markStale("update round", err)
	}
	return saved, nil
}

func (r *Rounds) DeleteRound(ctx context.Context, id string) error {
	if err := r.remote.DeleteRound(ctx, id); err != nil {
		return err
	}
	if err := r.local.DeleteRound(ctx, id); err != nil {
		return r.markStale("delete round", err)
	}
	return nil
}
