package client

import (
	"time"

	"github.com/padraicbc/dgapp/domain"
)

type courseDTO struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	Location      *string `json:"location,omitempty"`
	Description   *string `json:"description,omitempty"`
	NumberOfHoles int     `json:"numberOfHoles"`
	ParValues     []int   `json:"parValues"`
}

type playerDTO struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	PDGANumber *int    `json:"pdgaNumber,omitempty"`
	Email      *string `json:"email,omitempty"`
}

type roundDTO struct {
	ID     string     `json:"id"`
	Player *playerDTO `json:"player"`
	Course *courseDTO `json:"course"`
	Scores []int      `json:"scores"`
	Date   time.Time  `json:"date"`
}

type createRoundRequest struct {
	Player string     `json:"player"`
	Course string     `json:"course"`
	Scores []int      `json:"scores"`
	Date   *time.Time `json:"date,omitempty"`
}

type updateRoundRequest struct {
	Scores []int      `json:"scores,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fromCourse(c domain.Course) courseDTO {
	pars := c.ParValues
	if pars == nil {
		pars = []int{}
	}
	return courseDTO{
		ID:            c.ID,
		Name:          c.Name,
		Location:      optional(c.Location),
		Description:   optional(c.Description),
		NumberOfHoles: c.NumberOfHoles,
		ParValues:     pars,
	}
}

func (d courseDTO) toDomain() domain.Course {
	return domain.Course{
		ID:            d.ID,
		Name:          d.Name,
		Location:      deref(d.Location),
		Description:   deref(d.Description),
		NumberOfHoles: d.NumberOfHoles,
		ParValues:     d.ParValues,
	}
}

func fromPlayer(p domain.Player) playerDTO {
	return playerDTO{ID: p.ID, Name: p.Name, PDGANumber: p.PDGANumber, Email: optional(p.Email)}
}

func (d playerDTO) toDomain() domain.Player {
	return domain.Player{ID: d.ID, Name: d.Name, PDGANumber: d.PDGANumber, Email: deref(d.Email)}
}

func (d roundDTO) toDomain() domain.Round {
	var player domain.Player
	if d.Player != nil {
		player = d.Player.toDomain()
	}
	var course domain.Course
	if d.Course != nil {
		course = d.Course.toDomain()
	}
	return domain.RestoreRound(d.ID, player, course, d.Scores, d.Date)
}

func mapSlice[T any, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
