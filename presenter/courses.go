package presenter

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/state"
)

const (
	DefaultHoles = 9
	DefaultPar   = 3
	MinPar       = 3
	MaxPar       = 5
)

type CourseListState struct {
	Loading        bool
	Courses        []domain.Course
	ErrorMessage   string
	SearchQuery    string
	Saving         bool
	SuccessMessage string
	// CacheStale is set while the local cache may disagree with the API.
	CacheStale bool
}

type CourseDetailState struct {
	Loading      bool
	Course       *domain.Course
	ErrorMessage string
}

// NewCourseForm creates a course with DefaultPar on every hole. A zero
// NumberOfHoles means DefaultHoles.
type NewCourseForm struct {
	Name          string
	Location      string
	Description   string
	NumberOfHoles int
}

func (f NewCourseForm) Holes() int {
	if f.NumberOfHoles == 0 {
		return DefaultHoles
	}
	return f.NumberOfHoles
}

func (f NewCourseForm) ParValues() []int {
	n := max(f.Holes(), 0)
	pars := make([]int, n)
	for i := range pars {
		pars[i] = DefaultPar
	}
	return pars
}

// CourseEditForm edits an existing course. Par values are kept as typed.
type CourseEditForm struct {
	CourseID      string
	Name          string
	Location      string
	Description   string
	NumberOfHoles int
	ParValues     []string
}

// EditCourseForm fills a form from c.
func EditCourseForm(c domain.Course) CourseEditForm {
	pars := make([]string, len(c.ParValues))
	for i, v := range c.ParValues {
		pars[i] = strconv.Itoa(v)
	}
	return CourseEditForm{
		CourseID:      c.ID,
		Name:          c.Name,
		Location:      c.Location,
		Description:   c.Description,
		NumberOfHoles: c.NumberOfHoles,
		ParValues:     pars,
	}
}

// Course converts the form, checking each par is a whole number from
// MinPar to MaxPar.
func (f CourseEditForm) Course() (domain.Course, error) {
	pars := make([]int, len(f.ParValues))
	for i, s := range f.ParValues {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v < MinPar || v > MaxPar {
			return domain.Course{}, fmt.Errorf("%w: par for hole %d must be between %d and %d", domain.ErrValidation, i+1, MinPar, MaxPar)
		}
		pars[i] = v
	}
	if err := domain.ValidateCourse(f.Name, f.NumberOfHoles, pars); err != nil {
		return domain.Course{}, err
	}
	return domain.Course{
		ID:            f.CourseID,
		Name:          strings.TrimSpace(f.Name),
		Location:      strings.TrimSpace(f.Location),
		Description:   strings.TrimSpace(f.Description),
		NumberOfHoles: f.NumberOfHoles,
		ParValues:     pars,
	}, nil
}

// Courses drives the course list and course detail screens.
type Courses struct {
	repo   CourseRepository
	list   *state.Store[CourseListState]
	detail *state.Store[CourseDetailState]
	log    *zap.Logger
}

func NewCourses(repo CourseRepository, log *zap.Logger) *Courses {
	return &Courses{
		repo:   repo,
		list:   state.New(CourseListState{}),
		detail: state.New(CourseDetailState{}),
		log:    nopIfNil(log).Named("courses"),
	}
}

func (p *Courses) List() CourseListState     { return p.list.Get() }
func (p *Courses) Detail() CourseDetailState { return p.detail.Get() }

func (p *Courses) SubscribeList(fn func(CourseListState)) func() {
	return p.list.Subscribe(fn)
}

func (p *Courses) SubscribeDetail(fn func(CourseDetailState)) func() {
	return p.detail.Subscribe(fn)
}

// Load shows the courses for the current search query.
func (p *Courses) Load(ctx context.Context) error {
	return p.load(ctx, p.list.Get().SearchQuery, false)
}

// Search replaces the query and reloads.
func (p *Courses) Search(ctx context.Context, query string) error {
	p.list.Update(func(st CourseListState) CourseListState {
		st.SearchQuery = query
		return st
	})
	return p.load(ctx, query, false)
}

// Refresh bypasses the cache. A search already goes to the API, so it is
// only repeated.
func (p *Courses) Refresh(ctx context.Context) error {
	q := p.list.Get().SearchQuery
	return p.load(ctx, q, strings.TrimSpace(q) == "")
}

func (p *Courses) load(ctx context.Context, query string, force bool) error {
	p.list.Update(func(st CourseListState) CourseListState {
		st.Loading = true
		st.ErrorMessage = ""
		return st
	})

	courses, err := p.repo.GetCourses(ctx, query, force)
	stale, err := settle(err)
	if err != nil {
		p.log.Warn("load courses", zap.String("query", query), zap.Error(err))
		p.list.Update(func(st CourseListState) CourseListState {
			st.Loading = false
			st.ErrorMessage = "Failed to load courses: " + err.Error()
			return st
		})
		return err
	}

	p.list.Update(func(st CourseListState) CourseListState {
		st.Loading = false
		st.Courses = courses
		st.SearchQuery = query
		st.CacheStale = stale || repoStale(p.repo)
		return st
	})
	return nil
}

// Open loads one course into the detail state.
func (p *Courses) Open(ctx context.Context, id string) error {
	p.detail.Set(CourseDetailState{Loading: true})

	c, err := p.repo.GetCourse(ctx, id)
	if _, err = settle(err); err != nil {
		p.detail.Set(CourseDetailState{ErrorMessage: "Failed to load course details: " + err.Error()})
		return err
	}
	p.detail.Set(CourseDetailState{Course: &c})
	return nil
}

// Create saves a new course and returns it with its server id.
func (p *Courses) Create(ctx context.Context, form NewCourseForm) (domain.Course, error) {
	course := domain.Course{
		Name:          strings.TrimSpace(form.Name),
		Location:      strings.TrimSpace(form.Location),
		Description:   strings.TrimSpace(form.Description),
		NumberOfHoles: form.Holes(),
		ParValues:     form.ParValues(),
	}
	return p.write(ctx, "Failed to save course: ", func() (domain.Course, string, error) {
		if err := domain.ValidateCourse(course.Name, course.NumberOfHoles, course.ParValues); err != nil {
			return domain.Course{}, "", err
		}
		created, err := p.repo.CreateCourse(ctx, course)
		return created, fmt.Sprintf("Course '%s' was created successfully.", created.Name), err
	})
}

func (p *Courses) Update(ctx context.Context, form CourseEditForm) (domain.Course, error) {
	return p.write(ctx, "Failed to update course: ", func() (domain.Course, string, error) {
		course, err := form.Course()
		if err != nil {
			return domain.Course{}, "", err
		}
		updated, err := p.repo.UpdateCourse(ctx, course)
		return updated, "Course updated successfully.", err
	})
}

func (p *Courses) Delete(ctx context.Context, id string) error {
	p.list.Update(func(st CourseListState) CourseListState {
		st.Loading = true
		st.ErrorMessage = ""
		st.SuccessMessage = ""
		return st
	})

	stale, err := settle(p.repo.DeleteCourse(ctx, id))
	if err != nil {
		p.log.Warn("delete course", zap.String("id", id), zap.Error(err))
		p.list.Update(func(st CourseListState) CourseListState {
			st.Loading = false
			st.ErrorMessage = "Failed to delete course: " + err.Error()
			return st
		})
		return err
	}

	p.list.Update(func(st CourseListState) CourseListState {
		st.Loading = false
		st.SuccessMessage = "Course deleted successfully."
		st.Courses = slices.DeleteFunc(slices.Clone(st.Courses), func(c domain.Course) bool { return c.ID == id })
		st.CacheStale = st.CacheStale || stale
		return st
	})
	p.reload(ctx)
	return nil
}

// ClearSuccess drops the success message once it has been shown.
func (p *Courses) ClearSuccess() {
	p.list.Update(func(st CourseListState) CourseListState {
		st.SuccessMessage = ""
		return st
	})
}

// write runs a save under the Saving flag. fn returns the saved course and
// the message to show on success.
func (p *Courses) write(ctx context.Context, failPrefix string, fn func() (domain.Course, string, error)) (domain.Course, error) {
	p.list.Update(func(st CourseListState) CourseListState {
		st.Saving = true
		st.ErrorMessage = ""
		st.SuccessMessage = ""
		return st
	})

	saved, msg, err := fn()
	stale, err := settle(err)
	if err != nil {
		p.log.Warn("save course", zap.Error(err))
		p.list.Update(func(st CourseListState) CourseListState {
			st.Saving = false
			st.ErrorMessage = failPrefix + err.Error()
			return st
		})
		return domain.Course{}, err
	}

	p.list.Update(func(st CourseListState) CourseListState {
		st.Saving = false
		st.SuccessMessage = msg
		st.CacheStale = st.CacheStale || stale
		return st
	})
	p.reload(ctx)
	return saved, nil
}

// reload refreshes the list after a write. Its failure only shows in the
// state; the write itself succeeded.
func (p *Courses) reload(ctx context.Context) {
	q := p.list.Get().SearchQuery
	_ = p.load(ctx, q, strings.TrimSpace(q) == "")
}

// repoStale reports the repository's own stale flag when it keeps one.
func repoStale(repo any) bool {
	s, ok := repo.(interface{ Stale() bool })
	return ok && s.Stale()
}
