package presenter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/repository"
)

var errDown = errors.New("connection refused")

func staleErr(op string) error {
	return &repository.StaleError{Op: op, Err: errors.New("disk I/O error")}
}

type fakeCourses struct {
	mu      sync.Mutex
	courses []domain.Course
	nextID  int
	err     error // returned by every call when set
	saveErr error // returned alongside successful writes
	forced  int
	queries []string
}

func (f *fakeCourses) GetCourses(_ context.Context, query string, force bool) ([]domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if force {
		f.forced++
	}
	if f.err != nil {
		return nil, f.err
	}
	if query == "" {
		return slices.Clone(f.courses), nil
	}
	var out []domain.Course
	for _, c := range f.courses {
		if c.Name == query {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourses) GetCourse(_ context.Context, id string) (domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Course{}, f.err
	}
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Course{}, errors.New("Course not found")
}

func (f *fakeCourses) CreateCourse(_ context.Context, c domain.Course) (domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Course{}, f.err
	}
	f.nextID++
	c.ID = fmt.Sprintf("c%d", f.nextID)
	f.courses = append(f.courses, c)
	return c, f.saveErr
}

func (f *fakeCourses) UpdateCourse(_ context.Context, c domain.Course) (domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Course{}, f.err
	}
	for i := range f.courses {
		if f.courses[i].ID == c.ID {
			f.courses[i] = c
			return c, f.saveErr
		}
	}
	return domain.Course{}, errors.New("Course not found")
}

func (f *fakeCourses) DeleteCourse(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.courses = slices.DeleteFunc(f.courses, func(c domain.Course) bool { return c.ID == id })
	return f.saveErr
}

type fakeRounds struct {
	mu      sync.Mutex
	rounds  []domain.Round
	err     error
	saveErr error
	forced  int
	updated []domain.Round
}

func (f *fakeRounds) GetRounds(_ context.Context, force bool) ([]domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if force {
		f.forced++
	}
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.rounds), nil
}

func (f *fakeRounds) GetRound(_ context.Context, id string) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Round{}, f.err
	}
	for _, r := range f.rounds {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Round{}, errors.New("Round not found")
}

func (f *fakeRounds) UpdateRound(_ context.Context, r domain.Round) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Round{}, f.err
	}
	f.updated = append(f.updated, r)
	for i := range f.rounds {
		if f.rounds[i].ID == r.ID {
			f.rounds[i] = r
		}
	}
	return r, f.saveErr
}

func (f *fakeRounds) DeleteRound(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rounds = slices.DeleteFunc(f.rounds, func(r domain.Round) bool { return r.ID == id })
	return f.saveErr
}

type fakePlayers struct {
	players []domain.Player
	err     error
}

func (f *fakePlayers) GetPlayers(context.Context, bool) ([]domain.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.players), nil
}

var (
	_ CourseRepository = (*repository.Courses)(nil)
	_ RoundRepository  = (*repository.Rounds)(nil)
	_ PlayerRepository = (*repository.Players)(nil)
)

func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func laguna() domain.Course {
	return domain.Course{ID: "laguna", Name: "Laguna", Location: "Zlin", NumberOfHoles: 3, ParValues: []int{3, 4, 3}}
}

func sampleRound(t *testing.T, id string, scores ...int) domain.Round {
	t.Helper()
	r, err := domain.NewRound(id, domain.Player{ID: "p1", Name: "Ada"}, laguna(), scores, fixedDate)
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	return r
}
