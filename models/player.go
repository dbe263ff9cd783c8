package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
)

// Player is somebody who records rounds.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	PDGANumber *int      `bun:"pdga_number" json:"pdgaNumber,omitempty"`
	Email      *string   `bun:"email" json:"email,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Player)(nil)

func (p *Player) BeforeAppendModel(_ context.Context, query bun.Query) error {
	stamp(query, &p.ID, &p.CreatedAt, &p.UpdatedAt)
	return nil
}

// Validate checks the name and normalises the email in place.
func (p *Player) Validate() error {
	email := ""
	if p.Email != nil {
		email = *p.Email
	}
	normalized, err := domain.ValidatePlayer(p.Name, email)
	if err != nil {
		return err
	}
	if normalized == "" {
		p.Email = nil
	} else {
		p.Email = &normalized
	}
	return nil
}
