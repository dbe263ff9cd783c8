package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/padraicbc/dgapp/domain"
)

// Courses lists courses. A non-blank search is sent with its accents removed.
func (c *Client) Courses(ctx context.Context, search string) ([]domain.Course, error) {
	var query url.Values
	if s := strings.TrimSpace(search); s != "" {
		query = url.Values{"search": {domain.StripAccents(s)}}
	}
	var out []courseDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint(query, "courses"), nil, &out); err != nil {
		return nil, err
	}
	return mapSlice(out, courseDTO.toDomain), nil
}

func (c *Client) Course(ctx context.Context, id string) (domain.Course, error) {
	var out courseDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "courses", id), nil, &out); err != nil {
		return domain.Course{}, err
	}
	return out.toDomain(), nil
}

// CreateCourse posts a new course and returns it with its server id.
func (c *Client) CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	in := fromCourse(course)
	in.ID = ""
	var out courseDTO
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "courses"), in, &out); err != nil {
		return domain.Course{}, err
	}
	return out.toDomain(), nil
}

// UpdateCourse sends every field of course.
func (c *Client) UpdateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	in := fromCourse(course)
	// An empty optional field must reach the server to clear it.
	in.Location, in.Description = &course.Location, &course.Description
	var out courseDTO
	if err := c.do(ctx, http.MethodPut, c.endpoint(nil, "courses", course.ID), in, &out); err != nil {
		return domain.Course{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(nil, "courses", id), nil, &messageResponse{})
}
