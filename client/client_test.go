package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/handlers"
)

func newTestAPI(t *testing.T, policy domain.DeletePolicy) *Client {
	t.Helper()
	ctx := context.Background()
	bdb, err := db.Open(ctx, db.DriverSQLite, db.SQLiteDSN(filepath.Join(t.TempDir(), "api.db")), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { bdb.Close() })
	if err := db.CreateTables(ctx, bdb); err != nil {
		t.Fatalf("create tables: %v", err)
	}

	e := echo.New()
	handlers.New(bdb, zaptest.NewLogger(t), nil, policy).Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithHTTPClient(srv.Client()), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func nine() domain.Course {
	return domain.Course{
		Name:          "Laguna",
		Location:      "Brno",
		NumberOfHoles: 9,
		ParValues:     []int{3, 3, 3, 3, 3, 3, 3, 3, 3},
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("ftp://example.com"); err == nil {
		t.Fatal("expected scheme error")
	}
	c, err := New("")
	if err != nil {
		t.Fatalf("default url: %v", err)
	}
	assertEq(t, c.endpoint(nil, "courses", "x"), "https://dgapp-api.onrender.com/api/courses/x")
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t, domain.DeleteRestrict)

	created, err := c.CreateCourse(ctx, nine())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server id")
	}

	got, err := c.Course(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	assertEq(t, got.Location, "Brno")
	assertEq(t, got.TotalPar(), 27)

	got.Location = ""
	got.Name = "Laguna Park"
	updated, err := c.UpdateCourse(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertEq(t, updated.Name, "Laguna Park")
	assertEq(t, updated.Location, "")

	found, err := c.Courses(ctx, "  Lágúna ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	assertEq(t, len(found), 1)

	if err := c.DeleteCourse(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.Course(ctx, created.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	assertEq(t, apiErr.Message, "Course not found")
}

func TestCreateCourseValidation(t *testing.T) {
	c := newTestAPI(t, domain.DeleteRestrict)
	bad := nine()
	bad.ParValues = bad.ParValues[:3]
	_, err := c.CreateCourse(context.Background(), bad)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestRounds(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t, domain.DeleteRestrict)

	course, err := c.CreateCourse(ctx, nine())
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	player, err := c.CreatePlayer(ctx, domain.Player{Name: "Ada", Email: "ADA@example.com"})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	assertEq(t, player.Email, "ada@example.com")

	round, err := c.CreateRound(ctx, domain.Round{
		Player: player,
		Course: course,
		Scores: []int{3, 4, 3, 3, 3, 3, 3, 3, 3},
	})
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	assertEq(t, round.TotalScore, 28)
	assertEq(t, round.TotalPar, 27)
	assertEq(t, round.ParScore, 1)
	assertEq(t, round.Player.Name, "Ada")

	_, err = c.CreateRound(ctx, domain.Round{Player: player, Course: course, Scores: []int{3, 3, 3, 3, 3, 3, 3, 3}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
	assertEq(t, apiErr.Message, "Scores array must contain 9 scores, but received 8.")

	round.Scores = []int{2, 2, 3, 3, 3, 3, 3, 3, 3}
	round.Date = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	id, err := c.UpdateRound(ctx, round)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertEq(t, id, round.ID)

	fetched, err := c.Round(ctx, round.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	assertEq(t, fetched.TotalScore, 25)
	assertEq(t, fetched.Date.Equal(round.Date), true)

	byPlayer, err := c.RoundsByPlayer(ctx, player.ID)
	if err != nil {
		t.Fatalf("by player: %v", err)
	}
	assertEq(t, len(byPlayer), 1)

	byCourse, err := c.RoundsByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("by course: %v", err)
	}
	assertEq(t, len(byCourse), 1)

	if err := c.DeleteCourse(ctx, course.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	if err := c.DeleteRound(ctx, round.ID); err != nil {
		t.Fatalf("delete round: %v", err)
	}
	all, err := c.Rounds(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertEq(t, len(all), 0)
}

func TestPlayers(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t, domain.DeleteRestrict)

	pdga := 4242
	p, err := c.CreatePlayer(ctx, domain.Player{Name: "Bob", PDGANumber: &pdga})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertEq(t, *p.PDGANumber, 4242)

	p.Name = "Bobby"
	p, err = c.UpdatePlayer(ctx, p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertEq(t, p.Name, "Bobby")

	list, err := c.Players(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertEq(t, len(list), 1)

	if err := c.DeletePlayer(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Player(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("tok"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Courses(context.Background(), "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	assertEq(t, apiErr.StatusCode, http.StatusBadGateway)
	assertEq(t, apiErr.Message, "Bad Gateway")

	c.SetToken("")
	_, err = c.Courses(context.Background(), "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
