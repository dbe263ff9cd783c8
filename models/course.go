package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
)

// Course represents a disc-golf course.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Location      *string   `bun:"location" json:"location,omitempty"`
	Description   *string   `bun:"description" json:"description,omitempty"`
	NumberOfHoles int       `bun:"number_of_holes,notnull" json:"numberOfHoles"`
	ParValues     []int     `bun:"par_values,notnull" json:"parValues"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Course)(nil)

// BeforeAppendModel assigns the id on insert and bumps updated_at.
func (c *Course) BeforeAppendModel(_ context.Context, query bun.Query) error {
	stamp(query, &c.ID, &c.CreatedAt, &c.UpdatedAt)
	return nil
}

// Validate enforces one par value per hole.
func (c *Course) Validate() error {
	return domain.ValidateCourse(c.Name, c.NumberOfHoles, c.ParValues)
}

// TotalPar sums the par values.
func (c *Course) TotalPar() int {
	total := 0
	for _, p := range c.ParValues {
		total += p
	}
	return total
}

func stamp(query bun.Query, id *string, createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if *id == "" {
			*id = uuid.NewString()
		}
		if createdAt.IsZero() {
			*createdAt = now
		}
		if updatedAt.IsZero() {
			*updatedAt = now
		}
	case *bun.UpdateQuery:
		*updatedAt = now
	}
}
