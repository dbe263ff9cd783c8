package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap/zaptest"

	"github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/models"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	bdb, err := db.Open(ctx, db.DriverSQLite, db.SQLiteDSN(path), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { bdb.Close() })
	if err := db.CreateTables(ctx, bdb); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return bdb
}

func newTestServer(t *testing.T, policy domain.DeletePolicy, key []byte) (*echo.Echo, *bun.DB) {
	t.Helper()
	bdb := newTestDB(t)
	e := echo.New()
	New(bdb, zaptest.NewLogger(t), key, policy).Register(e)
	return e, bdb
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body.String())
	}
}

func assertMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	assertEq(t, decode[messageResponse](t, rec).Message, want)
}

func laguna() map[string]any {
	return map[string]any{
		"name":          "Laguna",
		"location":      "Brno",
		"numberOfHoles": 9,
		"parValues":     []int{3, 3, 3, 3, 3, 3, 3, 3, 3},
	}
}

func createCourse(t *testing.T, e *echo.Echo, body map[string]any) models.Course {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/courses", body, "")
	assertStatus(t, rec, http.StatusCreated)
	return decode[models.Course](t, rec)
}

func createPlayer(t *testing.T, e *echo.Echo, name string) models.Player {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/players", map[string]any{"name": name}, "")
	assertStatus(t, rec, http.StatusCreated)
	return decode[models.Player](t, rec)
}

func createRound(t *testing.T, e *echo.Echo, player, course string, scores []int) models.Round {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/rounds", map[string]any{
		"player": player, "course": course, "scores": scores,
	}, "")
	assertStatus(t, rec, http.StatusCreated)
	return decode[models.Round](t, rec)
}

func TestCourseLifecycle(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)

	course := createCourse(t, e, laguna())
	if course.ID == "" {
		t.Fatal("expected generated id")
	}
	assertEq(t, len(course.ParValues), course.NumberOfHoles)

	first := doJSON(t, e, http.MethodGet, "/api/courses/"+course.ID, nil, "")
	second := doJSON(t, e, http.MethodGet, "/api/courses/"+course.ID, nil, "")
	assertStatus(t, first, http.StatusOK)
	assertEq(t, first.Body.String(), second.Body.String())

	rec := doJSON(t, e, http.MethodPut, "/api/courses/"+course.ID, map[string]any{"name": "Laguna Park"}, "")
	assertStatus(t, rec, http.StatusOK)
	updated := decode[models.Course](t, rec)
	assertEq(t, updated.Name, "Laguna Park")
	assertEq(t, *updated.Location, "Brno")
	assertEq(t, updated.NumberOfHoles, 9)

	rec = doJSON(t, e, http.MethodPut, "/api/courses/"+course.ID, map[string]any{"numberOfHoles": 18}, "")
	assertStatus(t, rec, http.StatusBadRequest)
	assertMessage(t, rec, "The number of par values must match numberOfHoles.")

	rec = doJSON(t, e, http.MethodDelete, "/api/courses/"+course.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
	assertMessage(t, rec, "Course deleted successfully")

	rec = doJSON(t, e, http.MethodDelete, "/api/courses/"+course.ID, nil, "")
	assertStatus(t, rec, http.StatusNotFound)
}

func TestCourseValidation(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)

	cases := []struct {
		name string
		body map[string]any
		msg  string
	}{
		{"par mismatch", map[string]any{"name": "X", "numberOfHoles": 9, "parValues": []int{3, 3}}, "The number of par values must match numberOfHoles."},
		{"missing name", map[string]any{"numberOfHoles": 1, "parValues": []int{3}}, "name is required"},
		{"zero holes", map[string]any{"name": "X", "numberOfHoles": 0, "parValues": []int{}}, "numberOfHoles must be a positive integer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/courses", tc.body, "")
			assertStatus(t, rec, http.StatusBadRequest)
			assertMessage(t, rec, tc.msg)
		})
	}
}

func TestCourseNotFound(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)

	rec := doJSON(t, e, http.MethodGet, "/api/courses/does-not-exist", nil, "")
	assertStatus(t, rec, http.StatusNotFound)
	assertMessage(t, rec, "Course not found")

	rec = doJSON(t, e, http.MethodPut, "/api/courses/does-not-exist", map[string]any{"name": "x"}, "")
	assertStatus(t, rec, http.StatusNotFound)
}

func TestCourseSearch(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	createCourse(t, e, laguna())
	createCourse(t, e, map[string]any{"name": "Hvezda", "location": "Praha", "numberOfHoles": 1, "parValues": []int{4}})

	rec := doJSON(t, e, http.MethodGet, "/api/courses?search=brno", nil, "")
	assertStatus(t, rec, http.StatusOK)
	found := decode[[]models.Course](t, rec)
	assertEq(t, len(found), 1)
	assertEq(t, found[0].Name, "Laguna")

	rec = doJSON(t, e, http.MethodGet, "/api/courses", nil, "")
	assertEq(t, len(decode[[]models.Course](t, rec)), 2)
}

func TestCreateRound(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	course := createCourse(t, e, laguna())
	player := createPlayer(t, e, "Ada")

	round := createRound(t, e, player.ID, course.ID, []int{3, 4, 3, 3, 3, 3, 3, 3, 3})
	assertEq(t, round.TotalScore, 28)
	assertEq(t, round.TotalPar, 27)
	assertEq(t, round.ParScore, 1)
	assertEq(t, round.TotalPar+round.ParScore, round.TotalScore)
	assertEq(t, round.Player.Name, "Ada")
	assertEq(t, round.Course.Name, "Laguna")
	assertEq(t, round.Date.Second(), 0)

	rec := doJSON(t, e, http.MethodGet, "/api/rounds/"+round.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
	again := decode[models.Round](t, rec)
	assertEq(t, again.TotalScore, 28)
	assertEq(t, again.Date.Equal(round.Date), true)

	cases := []struct {
		name   string
		body   map[string]any
		status int
		msg    string
	}{
		{"short score card", map[string]any{"player": player.ID, "course": course.ID, "scores": []int{3, 3, 3, 3, 3, 3, 3, 3}},
			http.StatusBadRequest, "Scores array must contain 9 scores, but received 8."},
		{"zero score", map[string]any{"player": player.ID, "course": course.ID, "scores": []int{3, 0, 3, 3, 3, 3, 3, 3, 3}},
			http.StatusBadRequest, "All scores must be positive integers."},
		{"unknown course", map[string]any{"player": player.ID, "course": "nope", "scores": []int{3}},
			http.StatusNotFound, "Course not found"},
		{"unknown player", map[string]any{"player": "nope", "course": course.ID, "scores": []int{3, 3, 3, 3, 3, 3, 3, 3, 3}},
			http.StatusNotFound, "Player not found"},
		{"missing course", map[string]any{"player": player.ID, "scores": []int{3}},
			http.StatusBadRequest, "course is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/rounds", tc.body, "")
			assertStatus(t, rec, tc.status)
			assertMessage(t, rec, tc.msg)
		})
	}

	rec = doJSON(t, e, http.MethodGet, "/api/rounds", nil, "")
	assertEq(t, len(decode[[]models.Round](t, rec)), 1)
}

func TestCreateRoundWithDate(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	course := createCourse(t, e, map[string]any{"name": "Tiny", "numberOfHoles": 1, "parValues": []int{3}})
	player := createPlayer(t, e, "Ada")

	rec := doJSON(t, e, http.MethodPost, "/api/rounds", map[string]any{
		"player": player.ID, "course": course.ID, "scores": []int{2}, "date": "2024-05-01T10:30:15Z",
	}, "")
	assertStatus(t, rec, http.StatusCreated)
	round := decode[models.Round](t, rec)
	assertEq(t, round.Date.Format("2006-01-02T15:04:05Z07:00"), "2024-05-01T10:30:15Z")
	assertEq(t, round.ParScore, -1)
}

func TestUpdateRound(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	course := createCourse(t, e, laguna())
	player := createPlayer(t, e, "Ada")
	round := createRound(t, e, player.ID, course.ID, []int{3, 3, 3, 3, 3, 3, 3, 3, 3})

	rec := doJSON(t, e, http.MethodPut, "/api/rounds/"+round.ID, map[string]any{
		"scores": []int{2, 3, 3, 3, 3, 3, 3, 3, 5},
	}, "")
	assertStatus(t, rec, http.StatusOK)
	assertEq(t, decode[roundIDResponse](t, rec).ID, round.ID)

	rec = doJSON(t, e, http.MethodGet, "/api/rounds/"+round.ID, nil, "")
	updated := decode[models.Round](t, rec)
	assertEq(t, updated.TotalScore, 28)
	assertEq(t, updated.Scores[8], 5)

	rec = doJSON(t, e, http.MethodPut, "/api/rounds/"+round.ID, map[string]any{"scores": []int{3, 3}}, "")
	assertStatus(t, rec, http.StatusBadRequest)
	assertMessage(t, rec, "Scores array must contain 9 scores, but received 2.")

	rec = doJSON(t, e, http.MethodPut, "/api/rounds/missing", map[string]any{"scores": []int{3}}, "")
	assertStatus(t, rec, http.StatusNotFound)
	assertMessage(t, rec, "Round not found")
}

func TestRoundFilters(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	course := createCourse(t, e, map[string]any{"name": "Tiny", "numberOfHoles": 1, "parValues": []int{3}})
	other := createCourse(t, e, map[string]any{"name": "Other", "numberOfHoles": 1, "parValues": []int{4}})
	ada := createPlayer(t, e, "Ada")
	bob := createPlayer(t, e, "Bob")

	createRound(t, e, ada.ID, course.ID, []int{3})
	createRound(t, e, ada.ID, other.ID, []int{4})
	createRound(t, e, bob.ID, course.ID, []int{5})

	rec := doJSON(t, e, http.MethodGet, "/api/rounds/player/"+ada.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
	assertEq(t, len(decode[[]models.Round](t, rec)), 2)

	rec = doJSON(t, e, http.MethodGet, "/api/rounds/course/"+course.ID, nil, "")
	assertEq(t, len(decode[[]models.Round](t, rec)), 2)

	rec = doJSON(t, e, http.MethodDelete, "/api/rounds/missing", nil, "")
	assertStatus(t, rec, http.StatusNotFound)
}

func TestDeleteCourseRestrict(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	course := createCourse(t, e, map[string]any{"name": "Tiny", "numberOfHoles": 1, "parValues": []int{3}})
	player := createPlayer(t, e, "Ada")
	round := createRound(t, e, player.ID, course.ID, []int{3})

	rec := doJSON(t, e, http.MethodDelete, "/api/courses/"+course.ID, nil, "")
	assertStatus(t, rec, http.StatusConflict)
	assertMessage(t, rec, "Course has recorded rounds")

	rec = doJSON(t, e, http.MethodDelete, "/api/rounds/"+round.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
	assertMessage(t, rec, "Round deleted")

	rec = doJSON(t, e, http.MethodDelete, "/api/courses/"+course.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
}

func TestUpdateCourseHolesLockedByRounds(t *testing.T) {
	e, _ := newTestServer(t, domain.DeleteRestrict, nil)
	course := createCourse(t, e, map[string]any{"name": "Tiny", "numberOfHoles": 1, "parValues": []int{3}})
	player := createPlayer(t, e, "Ada")
	round := createRound(t, e, player.ID, course.ID, []int{3})

	rec := doJSON(t, e, http.MethodPut, "/api/courses/"+course.ID, map[string]any{
		"numberOfHoles": 2, "parValues": []int{3, 3},
	}, "")
	assertStatus(t, rec, http.StatusConflict)
	assertMessage(t, rec, "Course has recorded rounds")

	rec = doJSON(t, e, http.MethodPut, "/api/courses/"+course.ID, map[string]any{
		"numberOfHoles": 1, "parValues": []int{4},
	}, "")
	assertStatus(t, rec, http.StatusOK)
	assertEq(t, decode[models.Course](t, rec).ParValues[0], 4)

	rec = doJSON(t, e, http.MethodDelete, "/api/rounds/"+round.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
	rec = doJSON(t, e, http.MethodPut, "/api/courses/"+course.ID, map[string]any{
		"numberOfHoles": 2, "parValues": []int{3, 3},
	}, "")
	assertStatus(t, rec, http.StatusOK)
	assertEq(t, decode[models.Course](t, rec).NumberOfHoles, 2)
}

func TestDeleteCourseCascade(t *testing.T) {
	e, bdb := newTestServer(t, domain.DeleteCascade, nil)
	course := createCourse(t, e, map[string]any{"name": "Tiny", "numberOfHoles": 1, "parValues": []int{3}})
	player := createPlayer(t, e, "Ada")
	createRound(t, e, player.ID, course.ID, []int{3})

	rec := doJSON(t, e, http.MethodDelete, "/api/courses/"+course.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)

	n, err := bdb.NewSelect().Model((*models.Round)(nil)).Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	assertEq(t, n, 0)
}

func TestPlayers(t *testing.T) {
	e, bdb := newTestServer(t, domain.DeleteRestrict, nil)

	rec := doJSON(t, e, http.MethodPost, "/api/players", map[string]any{"name": "Ada", "email": "not-an-email"}, "")
	assertStatus(t, rec, http.StatusBadRequest)
	assertMessage(t, rec, "not-an-email is not a valid email")

	rec = doJSON(t, e, http.MethodPost, "/api/players", map[string]any{"name": "Ada", "email": " Ada@Example.COM ", "pdgaNumber": 12345}, "")
	assertStatus(t, rec, http.StatusCreated)
	player := decode[models.Player](t, rec)
	assertEq(t, *player.Email, "ada@example.com")
	assertEq(t, *player.PDGANumber, 12345)

	rec = doJSON(t, e, http.MethodPut, "/api/players/"+player.ID, map[string]any{"name": "Ada L"}, "")
	assertStatus(t, rec, http.StatusOK)
	assertEq(t, decode[models.Player](t, rec).Name, "Ada L")

	rec = doJSON(t, e, http.MethodGet, "/api/players/missing", nil, "")
	assertStatus(t, rec, http.StatusNotFound)
	assertMessage(t, rec, "Player not found")

	course := createCourse(t, e, map[string]any{"name": "Tiny", "numberOfHoles": 1, "parValues": []int{3}})
	createRound(t, e, player.ID, course.ID, []int{3})

	rec = doJSON(t, e, http.MethodDelete, "/api/players/"+player.ID, nil, "")
	assertStatus(t, rec, http.StatusOK)
	assertMessage(t, rec, "Player deleted")

	n, err := bdb.NewSelect().Model((*models.Round)(nil)).Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	assertEq(t, n, 0)

	rec = doJSON(t, e, http.MethodDelete, "/api/players/"+player.ID, nil, "")
	assertStatus(t, rec, http.StatusNotFound)
}

func TestWriteRoutesRequireToken(t *testing.T) {
	key := []byte("secret")
	e, bdb := newTestServer(t, domain.DeleteRestrict, key)

	hash, err := HashPasswordForUser("ada", "pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := bdb.NewInsert().Model(&models.User{Username: "ada", Password: hash}).Exec(context.Background()); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	rec := doJSON(t, e, http.MethodPost, "/api/courses", laguna(), "")
	assertStatus(t, rec, http.StatusUnauthorized)

	rec = doJSON(t, e, http.MethodGet, "/api/courses", nil, "")
	assertStatus(t, rec, http.StatusOK)

	rec = doJSON(t, e, http.MethodPost, "/api/signin", credentials{Username: "ada", Password: "wrong"}, "")
	assertStatus(t, rec, http.StatusUnauthorized)

	rec = doJSON(t, e, http.MethodPost, "/api/signin", credentials{Username: " ada ", Password: "pw"}, "")
	assertStatus(t, rec, http.StatusOK)
	token := decode[map[string]string](t, rec)["token"]

	rec = doJSON(t, e, http.MethodPost, "/api/courses", laguna(), token)
	assertStatus(t, rec, http.StatusCreated)
}

func TestHashPasswordForUser(t *testing.T) {
	if _, err := HashPasswordForUser(" ", "pw"); err == nil {
		t.Fatal("expected username error")
	}
	if _, err := HashPasswordForUser("ada", ""); err == nil {
		t.Fatal("expected password error")
	}
}

func TestHealth(t *testing.T) {
	e, bdb := newTestServer(t, domain.DeleteRestrict, nil)

	rec := doJSON(t, e, http.MethodGet, "/healthz", nil, "")
	assertStatus(t, rec, http.StatusNoContent)

	bdb.Close()
	rec = doJSON(t, e, http.MethodGet, "/healthz", nil, "")
	assertStatus(t, rec, http.StatusServiceUnavailable)
}
