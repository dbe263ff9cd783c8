package presenter

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/state"
)

var (
	ErrNoPlayerName = errors.New("Player name is required.")
	ErrNoCourse     = errors.New("Select a course to play.")
)

type NewGameState struct {
	Loading      bool
	Courses      []domain.Course
	ErrorMessage string

	// StartedCourseID is set once a round may begin; the caller hands it to
	// a scoring session and then calls ClearStart.
	StartedCourseID string
	PlayerName      string
}

type NewGameForm struct {
	PlayerName       string
	SelectedCourseID string
}

// NewGame lists the courses a round can be played on.
type NewGame struct {
	courses CourseRepository
	state   *state.Store[NewGameState]
	log     *zap.Logger
}

func NewNewGame(courses CourseRepository, log *zap.Logger) *NewGame {
	return &NewGame{
		courses: courses,
		state:   state.New(NewGameState{}),
		log:     nopIfNil(log).Named("new_game"),
	}
}

func (p *NewGame) State() NewGameState { return p.state.Get() }

func (p *NewGame) Subscribe(fn func(NewGameState)) func() { return p.state.Subscribe(fn) }

func (p *NewGame) Load(ctx context.Context) error {
	p.state.Update(func(st NewGameState) NewGameState {
		st.Loading = true
		st.ErrorMessage = ""
		return st
	})

	courses, err := p.courses.GetCourses(ctx, "", false)
	if _, err = settle(err); err != nil {
		p.log.Warn("load courses", zap.Error(err))
		p.state.Update(func(st NewGameState) NewGameState {
			st.Loading = false
			st.ErrorMessage = "Failed to load courses: " + err.Error()
			return st
		})
		return err
	}

	p.state.Update(func(st NewGameState) NewGameState {
		st.Loading = false
		st.Courses = courses
		return st
	})
	return nil
}

// Start checks the form and returns the course id to score on.
func (p *NewGame) Start(form NewGameForm) (string, error) {
	name := strings.TrimSpace(form.PlayerName)
	var err error
	switch {
	case name == "":
		err = ErrNoPlayerName
	case form.SelectedCourseID == "" || !slices.ContainsFunc(p.state.Get().Courses, func(c domain.Course) bool {
		return c.ID == form.SelectedCourseID
	}):
		err = ErrNoCourse
	}
	if err != nil {
		p.state.Update(func(st NewGameState) NewGameState {
			st.ErrorMessage = err.Error()
			return st
		})
		return "", err
	}

	p.state.Update(func(st NewGameState) NewGameState {
		st.ErrorMessage = ""
		st.StartedCourseID = form.SelectedCourseID
		st.PlayerName = name
		return st
	})
	return form.SelectedCourseID, nil
}

// ClearStart is called once the scoring session has taken over.
func (p *NewGame) ClearStart() {
	p.state.Update(func(st NewGameState) NewGameState {
		st.StartedCourseID = ""
		return st
	})
}
