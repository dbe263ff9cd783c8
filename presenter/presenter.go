// Package presenter holds the state a screen renders and turns user actions
// into repository calls. Every failure ends up as a single message in the
// state; the rest of the state is left as it was.
package presenter

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/repository"
)

type CourseRepository interface {
	GetCourses(ctx context.Context, query string, forceRefresh bool) ([]domain.Course, error)
	GetCourse(ctx context.Context, id string) (domain.Course, error)
	CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error)
	UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

type RoundRepository interface {
	GetRounds(ctx context.Context, forceRefresh bool) ([]domain.Round, error)
	GetRound(ctx context.Context, id string) (domain.Round, error)
	UpdateRound(ctx context.Context, r domain.Round) (domain.Round, error)
	DeleteRound(ctx context.Context, id string) error
}

type PlayerRepository interface {
	GetPlayers(ctx context.Context, forceRefresh bool) ([]domain.Player, error)
}

// settle separates a stale-cache result, where the API call succeeded, from
// a real failure.
func settle(err error) (stale bool, failed error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, repository.ErrCacheStale):
		return true, nil
	default:
		return false, err
	}
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
