package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Round is one recorded play-through of a course. Reads join the player and
// course so clients need no secondary fetches.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID        string    `bun:"id,pk" json:"id"`
	PlayerID  string    `bun:"player_id,notnull" json:"-"`
	CourseID  string    `bun:"course_id,notnull" json:"-"`
	Date      time.Time `bun:"date,notnull" json:"date"`
	Scores    []int     `bun:"scores,notnull" json:"scores"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Player *Player `bun:"rel:belongs-to,join:player_id=id" json:"player,omitempty"`
	Course *Course `bun:"rel:belongs-to,join:course_id=id" json:"course,omitempty"`

	TotalScore int `bun:"-" json:"totalScore"`
	TotalPar   int `bun:"-" json:"totalPar"`
	ParScore   int `bun:"-" json:"parScore"`
}

var _ bun.BeforeAppendModelHook = (*Round)(nil)

func (r *Round) BeforeAppendModel(_ context.Context, query bun.Query) error {
	stamp(query, &r.ID, &r.CreatedAt, &r.UpdatedAt)
	return nil
}

// FillTotals derives the score totals. The course must be joined for the par
// side to be meaningful.
func (r *Round) FillTotals() {
	r.TotalScore, r.TotalPar = 0, 0
	for _, s := range r.Scores {
		r.TotalScore += s
	}
	if r.Course != nil {
		r.TotalPar = r.Course.TotalPar()
	}
	r.ParScore = r.TotalScore - r.TotalPar
}

// DefaultRoundDate is the current time truncated to the minute.
func DefaultRoundDate() time.Time {
	return time.Now().UTC().Truncate(time.Minute)
}
