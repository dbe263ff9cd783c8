package presenter

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/state"
)

type DashboardState struct {
	Loading      bool
	Courses      []domain.Course
	Players      []domain.Player
	Rounds       []domain.Round
	ErrorMessage string
	CacheStale   bool
}

// Best returns the round with the lowest par score, if any.
func (s DashboardState) Best() (domain.Round, bool) {
	if len(s.Rounds) == 0 {
		return domain.Round{}, false
	}
	best := s.Rounds[0]
	for _, r := range s.Rounds[1:] {
		if r.ParScore < best.ParScore {
			best = r
		}
	}
	return best, true
}

// Dashboard loads every entity at once.
type Dashboard struct {
	courses CourseRepository
	players PlayerRepository
	rounds  RoundRepository
	state   *state.Store[DashboardState]
	log     *zap.Logger
}

func NewDashboard(courses CourseRepository, players PlayerRepository, rounds RoundRepository, log *zap.Logger) *Dashboard {
	return &Dashboard{
		courses: courses,
		players: players,
		rounds:  rounds,
		state:   state.New(DashboardState{}),
		log:     nopIfNil(log).Named("dashboard"),
	}
}

func (p *Dashboard) State() DashboardState { return p.state.Get() }

func (p *Dashboard) Subscribe(fn func(DashboardState)) func() { return p.state.Subscribe(fn) }

// Refresh fetches courses, players and rounds concurrently. The first
// failure cancels the others and leaves the previous lists in place.
func (p *Dashboard) Refresh(ctx context.Context, forceRefresh bool) error {
	p.state.Update(func(st DashboardState) DashboardState {
		st.Loading = true
		st.ErrorMessage = ""
		return st
	})

	var (
		courses []domain.Course
		players []domain.Player
		rounds  []domain.Round
		stale   [3]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = p.courses.GetCourses(gctx, "", forceRefresh)
		stale[0], err = settle(err)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = p.players.GetPlayers(gctx, forceRefresh)
		stale[1], err = settle(err)
		return err
	})
	g.Go(func() error {
		var err error
		rounds, err = p.rounds.GetRounds(gctx, forceRefresh)
		stale[2], err = settle(err)
		return err
	})

	if err := g.Wait(); err != nil {
		p.log.Warn("refresh dashboard", zap.Error(err))
		p.state.Update(func(st DashboardState) DashboardState {
			st.Loading = false
			st.ErrorMessage = "Failed to refresh: " + err.Error()
			return st
		})
		return err
	}

	p.state.Set(DashboardState{
		Courses: courses,
		Players: players,
		Rounds:  rounds,
		CacheStale: stale[0] || stale[1] || stale[2] ||
			repoStale(p.courses) || repoStale(p.players) || repoStale(p.rounds),
	})
	return nil
}
