package cache

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
)

type courseRow struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID            string `bun:"id,pk"`
	Name          string `bun:"name"`
	Location      string `bun:"location"`
	Description   string `bun:"description"`
	NumberOfHoles int    `bun:"number_of_holes"`
	ParValues     []int  `bun:"par_values_json"`
}

type playerRow struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID         string `bun:"id,pk"`
	Name       string `bun:"name"`
	NameFold   string `bun:"name_fold"`
	PDGANumber *int   `bun:"pdga_number"`
	Email      string `bun:"email"`
}

type roundRow struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID       string    `bun:"id,pk"`
	PlayerID string    `bun:"player_id"`
	CourseID string    `bun:"course_id"`
	Date     time.Time `bun:"date"`
	Scores   []int     `bun:"scores_json"`

	Player *playerRow `bun:"rel:belongs-to,join:player_id=id"`
	Course *courseRow `bun:"rel:belongs-to,join:course_id=id"`
}

func toCourseRow(c domain.Course) *courseRow {
	pars := c.ParValues
	if pars == nil {
		pars = []int{}
	}
	return &courseRow{
		ID:            c.ID,
		Name:          c.Name,
		Location:      c.Location,
		Description:   c.Description,
		NumberOfHoles: c.NumberOfHoles,
		ParValues:     append([]int(nil), pars...),
	}
}

func (r *courseRow) toDomain() domain.Course {
	return domain.Course{
		ID:            r.ID,
		Name:          r.Name,
		Location:      r.Location,
		Description:   r.Description,
		NumberOfHoles: r.NumberOfHoles,
		ParValues:     r.ParValues,
	}
}

func toPlayerRow(p domain.Player) *playerRow {
	return &playerRow{
		ID:         p.ID,
		Name:       p.Name,
		NameFold:   domain.FoldName(p.Name),
		PDGANumber: p.PDGANumber,
		Email:      p.Email,
	}
}

func (r *playerRow) toDomain() domain.Player {
	return domain.Player{ID: r.ID, Name: r.Name, PDGANumber: r.PDGANumber, Email: r.Email}
}

func toRoundRow(r domain.Round) *roundRow {
	scores := r.Scores
	if scores == nil {
		scores = []int{}
	}
	return &roundRow{
		ID:       r.ID,
		PlayerID: r.Player.ID,
		CourseID: r.Course.ID,
		Date:     r.Date.UTC(),
		Scores:   append([]int(nil), scores...),
	}
}

func (r *roundRow) toDomain() domain.Round {
	var player domain.Player
	if r.Player != nil {
		player = r.Player.toDomain()
	}
	var course domain.Course
	if r.Course != nil {
		course = r.Course.toDomain()
	}
	return domain.RestoreRound(r.ID, player, course, r.Scores, r.Date)
}
