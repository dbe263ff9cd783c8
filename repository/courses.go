package repository

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
)

// CourseRemote is the API side of the course repository.
type CourseRemote interface {
	Courses(ctx context.Context, search string) ([]domain.Course, error)
	Course(ctx context.Context, id string) (domain.Course, error)
	CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error)
	UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// CourseLocal is the cache side. Course returns cache.ErrNotFound on a miss.
type CourseLocal interface {
	Courses(ctx context.Context) ([]domain.Course, error)
	Course(ctx context.Context, id string) (domain.Course, error)
	SaveCourse(ctx context.Context, c domain.Course) error
	ReplaceCourses(ctx context.Context, courses []domain.Course) error
	DeleteCourse(ctx context.Context, id string) error
}

type Courses struct {
	syncState
	remote CourseRemote
	local  CourseLocal
}

func NewCourses(remote CourseRemote, local CourseLocal, log *zap.Logger) *Courses {
	r := &Courses{remote: remote, local: local}
	r.log = nopIfNil(log).Named("courses")
	return r
}

// GetCourses returns courses. A non-blank query always searches the API and
// leaves the cache alone. Otherwise the cache answers unless it is empty or
// forceRefresh is set, in which case the API's full list replaces it.
func (r *Courses) GetCourses(ctx context.Context, query string, forceRefresh bool) ([]domain.Course, error) {
	if strings.TrimSpace(query) != "" {
		return r.remote.Courses(ctx, query)
	}

	if !forceRefresh {
		cached, err := r.local.Courses(ctx)
		switch {
		case err != nil:
			r.log.Warn("read cached courses", zap.Error(err))
		case len(cached) > 0:
			return cached, nil
		}
	}

	fetched, err := r.remote.Courses(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := r.local.ReplaceCourses(ctx, fetched); err != nil {
		return fetched, r.markStale("replace courses", err)
	}
	r.refreshed()
	return fetched, nil
}

// GetCourse is cache-first; a miss is fetched and cached.
func (r *Courses) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	c, err := r.local.Course(ctx, id)
	if err == nil {
		return c, nil
	}
	if !isMiss(err) {
		r.log.Warn("read cached course", zap.String("id", id), zap.Error(err))
	}

	c, err = r.remote.Course(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}
	if err := r.local.SaveCourse(ctx, c); err != nil {
		return c, r.markStale("cache course", err)
	}
	return c, nil
}

// CreateCourse returns the server's course, including its new id.
func (r *Courses) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	created, err := r.remote.CreateCourse(ctx, c)
	if err != nil {
		return domain.Course{}, err
	}
	if err := r.local.SaveCourse(ctx, created); err != nil {
		return created, r.markStale("create course", err)
	}
	return created, nil
}

func (r *Courses) UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	updated, err := r.remote.UpdateCourse(ctx, c)
	if err != nil {
		return domain.Course{}, err
	}
	if err := r.local.SaveCourse(ctx, updated); err != nil {
		return updated, r.markStale("update course", err)
	}
	return updated, nil
}

func (r *Courses) DeleteCourse(ctx context.Context, id string) error {
	if err := r.remote.DeleteCourse(ctx, id); err != nil {
		return err
	}
	if err := r.local.DeleteCourse(ctx, id); err != nil {
		return r.markStale("delete course", err)
	}
	return nil
}
