// Package session runs a hole-by-hole scoring session for one player on one
// course and submits the finished round.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/repository"
	"github.com/padraicbc/dgapp/state"
)

// DefaultPar seeds holes whose course has no par value.
const DefaultPar = 3

type Status int

const (
	Uninitialized Status = iota
	Loading
	Active
	Finished
	Error
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Active:
		return "active"
	case Finished:
		return "finished"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ErrNotActive is returned by FinishRound outside an active session.
var ErrNotActive = errors.New("session: no active round")

// State is a snapshot of the session. Slices are never mutated after
// publication.
type State struct {
	Status       Status
	Course       *domain.Course
	PlayerName   string
	HoleIndex    int
	Scores       []int
	Saving       bool
	ErrorMessage string

	// Set once the round is saved.
	Round      *domain.Round
	CacheStale bool
}

func (s State) TotalPar() int {
	if s.Course == nil {
		return 0
	}
	return s.Course.TotalPar()
}

func (s State) TotalScore() int {
	total := 0
	for _, v := range s.Scores {
		total += v
	}
	return total
}

func (s State) ParScore() int { return s.TotalScore() - s.TotalPar() }

// CurrentPar is the par of the hole being played.
func (s State) CurrentPar() int {
	if s.Course == nil || s.HoleIndex >= len(s.Course.ParValues) {
		return DefaultPar
	}
	return s.Course.ParValues[s.HoleIndex]
}

func (s State) CurrentScore() int {
	if s.HoleIndex >= len(s.Scores) {
		return 0
	}
	return s.Scores[s.HoleIndex]
}

// CourseSource loads the course being played.
type CourseSource interface {
	GetCourse(ctx context.Context, id string) (domain.Course, error)
}

// RoundSink stores the finished round.
type RoundSink interface {
	CreateRound(ctx context.Context, r domain.Round) (domain.Round, error)
}

// PlayerResolver turns the typed player name into a stored player.
type PlayerResolver interface {
	FindOrCreate(ctx context.Context, name string) (domain.Player, error)
}

type Option func(*Scoring)

// WithClock overrides time.Now for the round date.
func WithClock(now func() time.Time) Option {
	return func(s *Scoring) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Scoring) { s.log = log }
}

// Scoring is the session state machine.
type Scoring struct {
	courses CourseSource
	rounds  RoundSink
	players PlayerResolver
	state   *state.Store[State]
	now     func() time.Time
	log     *zap.Logger
}

func New(courses CourseSource, rounds RoundSink, players PlayerResolver, opts ...Option) *Scoring {
	s := &Scoring{
		courses: courses,
		rounds:  rounds,
		players: players,
		state:   state.New(State{}),
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scoring) State() State { return s.state.Get() }

// Subscribe is called with the current state and after every change.
func (s *Scoring) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Initialize loads the course and seeds every hole with its par. Calling it
// again for the course already in play only updates the player name.
func (s *Scoring) Initialize(ctx context.Context, courseID, playerName string) error {
	playerName = strings.TrimSpace(playerName)
	cur := s.state.Get()
	if cur.Status == Active && cur.Course != nil && cur.Course.ID == courseID {
		s.state.Update(func(st State) State {
			st.PlayerName = playerName
			return st
		})
		return nil
	}

	s.state.Set(State{Status: Loading, PlayerName: playerName})

	course, err := s.courses.GetCourse(ctx, courseID)
	if err == nil && course.NumberOfHoles <= 0 {
		err = fmt.Errorf("course %s has no holes", courseID)
	}
	if err != nil {
		s.log.Warn("load course for session", zap.String("course", courseID), zap.Error(err))
		s.state.Set(State{Status: Error, PlayerName: playerName, ErrorMessage: err.Error()})
		return err
	}

	scores := make([]int, course.NumberOfHoles)
	for i := range scores {
		scores[i] = DefaultPar
		if i < len(course.ParValues) && course.ParValues[i] > 0 {
			scores[i] = course.ParValues[i]
		}
	}
	s.state.Set(State{
		Status:     Active,
		Course:     &course,
		PlayerName: playerName,
		Scores:     scores,
	})
	return nil
}

// UpdateCurrentHoleScore adds delta to the current hole, never going below
// one stroke.
func (s *Scoring) UpdateCurrentHoleScore(delta int) {
	s.state.Update(func(st State) State {
		if st.Status != Active || st.HoleIndex >= len(st.Scores) {
			return st
		}
		scores := slices.Clone(st.Scores)
		scores[st.HoleIndex] = max(1, scores[st.HoleIndex]+delta)
		st.Scores = scores
		return st
	})
}

func (s *Scoring) NextHole() {
	s.state.Update(func(st State) State {
		if st.Status == Active && st.HoleIndex < len(st.Scores)-1 {
			st.HoleIndex++
		}
		return st
	})
}

func (s *Scoring) PreviousHole() {
	s.state.Update(func(st State) State {
		if st.Status == Active && st.HoleIndex > 0 {
			st.HoleIndex--
		}
		return st
	})
}

// FinishRound submits the round. On failure the session stays active with
// an error message so it can be retried; nothing partial is kept.
func (s *Scoring) FinishRound(ctx context.Context) (domain.Round, error) {
	var (
		snapshot State
		started  bool
	)
	s.state.Update(func(st State) State {
		if st.Status != Active || st.Saving || st.Course == nil {
			return st
		}
		started = true
		st.Saving = true
		st.ErrorMessage = ""
		snapshot = st
		return st
	})
	if !started {
		return domain.Round{}, ErrNotActive
	}

	saved, err := s.submit(ctx, snapshot)
	stale := errors.Is(err, repository.ErrCacheStale)
	if err != nil && !stale {
		s.log.Warn("finish round", zap.Error(err))
		s.state.Update(func(st State) State {
			st.Saving = false
			st.ErrorMessage = "Failed to save round: " + err.Error()
			return st
		})
		return domain.Round{}, err
	}

	s.state.Update(func(st State) State {
		st.Status = Finished
		st.Saving = false
		st.Round = &saved
		st.CacheStale = stale
		return st
	})
	return saved, err
}

func (s *Scoring) submit(ctx context.Context, st State) (domain.Round, error) {
	player, playerErr := s.players.FindOrCreate(ctx, st.PlayerName)
	if playerErr != nil && !errors.Is(playerErr, repository.ErrCacheStale) {
		return domain.Round{}, playerErr
	}
	round, err := domain.NewRound("", player, *st.Course, st.Scores, s.now().UTC().Truncate(time.Minute))
	if err != nil {
		return domain.Round{}, err
	}
	saved, err := s.rounds.CreateRound(ctx, round)
	if err == nil {
		err = playerErr
	}
	return saved, err
}

// Reset discards the session.
func (s *Scoring) Reset() {
	s.state.Set(State{})
}
