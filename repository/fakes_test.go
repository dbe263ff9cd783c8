package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/padraicbc/dgapp/cache"
	"github.com/padraicbc/dgapp/client"
	"github.com/padraicbc/dgapp/domain"
)

var (
	_ CourseRemote = (*client.Client)(nil)
	_ RoundRemote  = (*client.Client)(nil)
	_ PlayerRemote = (*client.Client)(nil)
	_ CourseLocal  = (*cache.Store)(nil)
	_ RoundLocal   = (*cache.Store)(nil)
	_ PlayerLocal  = (*cache.Store)(nil)
)

var errBroken = errors.New("disk full")

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"), domain.DeleteCascade, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// fakeAPI is an in-memory stand-in for the REST API that counts calls.
type fakeAPI struct {
	mu      sync.Mutex
	calls   map[string]int
	courses map[string]domain.Course
	players map[string]domain.Player
	rounds  map[string]domain.Round
	nextID  int
	fail    error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:   map[string]int{},
		courses: map[string]domain.Course{},
		players: map[string]domain.Player{},
		rounds:  map[string]domain.Round{},
	}
}

func (f *fakeAPI) hit(op string) error {
	f.calls[op]++
	return f.fail
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeAPI) Courses(_ context.Context, search string) ([]domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Courses"); err != nil {
		return nil, err
	}
	var out []domain.Course
	for _, c := range f.courses {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) Course(_ context.Context, id string) (domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Course"); err != nil {
		return domain.Course{}, err
	}
	c, ok := f.courses[id]
	if !ok {
		return domain.Course{}, &client.APIError{StatusCode: 404, Message: "Course not found"}
	}
	return c, nil
}

func (f *fakeAPI) CreateCourse(_ context.Context, c domain.Course) (domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("CreateCourse"); err != nil {
		return domain.Course{}, err
	}
	c.ID = f.id("c")
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeAPI) UpdateCourse(_ context.Context, c domain.Course) (domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("UpdateCourse"); err != nil {
		return domain.Course{}, err
	}
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeAPI) DeleteCourse(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("DeleteCourse"); err != nil {
		return err
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeAPI) Players(_ context.Context) ([]domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Players"); err != nil {
		return nil, err
	}
	var out []domain.Player
	for _, p := range f.players {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) Player(_ context.Context, id string) (domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Player"); err != nil {
		return domain.Player{}, err
	}
	p, ok := f.players[id]
	if !ok {
		return domain.Player{}, &client.APIError{StatusCode: 404, Message: "Player not found"}
	}
	return p, nil
}

func (f *fakeAPI) CreatePlayer(_ context.Context, p domain.Player) (domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("CreatePlayer"); err != nil {
		return domain.Player{}, err
	}
	p.ID = f.id("p")
	f.players[p.ID] = p
	return p, nil
}

func (f *fakeAPI) UpdatePlayer(_ context.Context, p domain.Player) (domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("UpdatePlayer"); err != nil {
		return domain.Player{}, err
	}
	f.players[p.ID] = p
	return p, nil
}

func (f *fakeAPI) DeletePlayer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("DeletePlayer"); err != nil {
		return err
	}
	delete(f.players, id)
	return nil
}

func (f *fakeAPI) Rounds(_ context.Context) ([]domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Rounds"); err != nil {
		return nil, err
	}
	var out []domain.Round
	for _, r := range f.rounds {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAPI) Round(_ context.Context, id string) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Round"); err != nil {
		return domain.Round{}, err
	}
	r, ok := f.rounds[id]
	if !ok {
		return domain.Round{}, &client.APIError{StatusCode: 404, Message: "Round not found"}
	}
	return r, nil
}

func (f *fakeAPI) CreateRound(_ context.Context, r domain.Round) (domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("CreateRound"); err != nil {
		return domain.Round{}, err
	}
	created, err := domain.NewRound(f.id("r"), r.Player, r.Course, r.Scores, r.Date)
	if err != nil {
		return domain.Round{}, &client.APIError{StatusCode: 400, Message: err.Error()}
	}
	f.rounds[created.ID] = created
	return created, nil
}

// UpdateRound deliberately does not store anything: the repository must not
// depend on the server echoing the round back.
func (f *fakeAPI) UpdateRound(_ context.Context, r domain.Round) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("UpdateRound"); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (f *fakeAPI) DeleteRound(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("DeleteRound"); err != nil {
		return err
	}
	delete(f.rounds, id)
	return nil
}

// brokenLocal wraps a real store and fails every write while broken is set.
type brokenLocal struct {
	*cache.Store
	broken bool
}

func (b *brokenLocal) SaveCourse(ctx context.Context, c domain.Course) error {
	if b.broken {
		return errBroken
	}
	return b.Store.SaveCourse(ctx, c)
}

func (b *brokenLocal) ReplaceCourses(ctx context.Context, cs []domain.Course) error {
	if b.broken {
		return errBroken
	}
	return b.Store.ReplaceCourses(ctx, cs)
}

func (b *brokenLocal) DeleteCourse(ctx context.Context, id string) error {
	if b.broken {
		return errBroken
	}
	return b.Store.DeleteCourse(ctx, id)
}

func (b *brokenLocal) SaveRound(ctx context.Context, r domain.Round) error {
	if b.broken {
		return errBroken
	}
	return b.Store.SaveRound(ctx, r)
}
