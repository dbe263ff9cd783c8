package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/models"
)

type createCourseRequest struct {
	Name          string  `json:"name"`
	Location      *string `json:"location"`
	Description   *string `json:"description"`
	NumberOfHoles int     `json:"numberOfHoles"`
	ParValues     []int   `json:"parValues"`
}

// Absent fields keep their stored value.
type updateCourseRequest struct {
	Name          *string `json:"name"`
	Location      *string `json:"location"`
	Description   *string `json:"description"`
	NumberOfHoles *int    `json:"numberOfHoles"`
	ParValues     []int   `json:"parValues"`
}

// Courses returns all courses, or those matching ?search= on name or location.
func (h *Handler) Courses(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))

	courses := []models.Course{}
	q := h.db.NewSelect().Model(&courses).OrderExpr("c.name ASC")
	if search != "" {
		q = db.CourseSearch(q, h.db, search)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return h.storeError("list courses", err)
	}
	return c.JSON(http.StatusOK, courses)
}

// Course returns one course by id.
func (h *Handler) Course(c echo.Context) error {
	course, err := h.findCourse(c.Request().Context(), h.db, c.Param("id"))
	if err != nil {
		return h.storeError("get course", err)
	}
	return c.JSON(http.StatusOK, course)
}

// CreateCourse inserts a new course.
func (h *Handler) CreateCourse(c echo.Context) error {
	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	course := &models.Course{
		Name:          strings.TrimSpace(req.Name),
		Location:      trimmedOrNil(req.Location),
		Description:   trimmedOrNil(req.Description),
		NumberOfHoles: req.NumberOfHoles,
		ParValues:     req.ParValues,
	}
	if err := course.Validate(); err != nil {
		return badRequest(err)
	}

	if _, err := h.db.NewInsert().Model(course).Exec(c.Request().Context()); err != nil {
		return h.storeError("create course", err)
	}
	return c.JSON(http.StatusCreated, course)
}

// UpdateCourse overwrites the supplied fields and re-validates the result.
// The hole count is fixed once rounds have been recorded on the course.
func (h *Handler) UpdateCourse(c echo.Context) error {
	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	course, err := h.findCourse(ctx, h.db, c.Param("id"))
	if err != nil {
		return h.storeError("get course", err)
	}

	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		course.Location = trimmedOrNil(req.Location)
	}
	if req.Description != nil {
		course.Description = trimmedOrNil(req.Description)
	}
	if req.NumberOfHoles != nil && *req.NumberOfHoles != course.NumberOfHoles {
		// Recorded rounds keep one score per hole.
		rounds, err := h.db.NewSelect().Model((*models.Round)(nil)).Where("course_id = ?", course.ID).Count(ctx)
		if err != nil {
			return h.storeError("count course rounds", err)
		}
		if rounds > 0 {
			return echo.NewHTTPError(http.StatusConflict, "Course has recorded rounds")
		}
		course.NumberOfHoles = *req.NumberOfHoles
	}
	if req.ParValues != nil {
		course.ParValues = req.ParValues
	}
	if err := course.Validate(); err != nil {
		return badRequest(err)
	}

	if _, err := h.db.NewUpdate().Model(course).WherePK().Exec(ctx); err != nil {
		return h.storeError("update course", err)
	}
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course. Rounds played on it either block the delete
// or go with it, depending on the configured policy.
func (h *Handler) DeleteCourse(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Course)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("Course not found")
		}

		rounds, err := tx.NewSelect().Model((*models.Round)(nil)).Where("course_id = ?", id).Count(ctx)
		if err != nil {
			return err
		}
		if rounds > 0 {
			if h.deletePolicy != domain.DeleteCascade {
				return echo.NewHTTPError(http.StatusConflict, "Course has recorded rounds")
			}
			if _, err := tx.NewDelete().Model((*models.Round)(nil)).Where("course_id = ?", id).Exec(ctx); err != nil {
				return err
			}
		}

		_, err = tx.NewDelete().Model((*models.Course)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return h.storeError("delete course", err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Course deleted successfully"})
}

func (h *Handler) findCourse(ctx context.Context, idb bun.IDB, id string) (*models.Course, error) {
	course := &models.Course{}
	err := idb.NewSelect().Model(course).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Course not found")
	}
	return course, err
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
