package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
)

// Rounds returns cached rounds joined with their player and course, newest first.
func (s *Store) Rounds(ctx context.Context) ([]domain.Round, error) {
	return s.rounds(ctx, "", "")
}

func (s *Store) RoundsByPlayer(ctx context.Context, playerID string) ([]domain.Round, error) {
	return s.rounds(ctx, "r.player_id = ?", playerID)
}

func (s *Store) RoundsByCourse(ctx context.Context, courseID string) ([]domain.Round, error) {
	return s.rounds(ctx, "r.course_id = ?", courseID)
}

func (s *Store) rounds(ctx context.Context, where, arg string) ([]domain.Round, error) {
	var rows []roundRow
	q := s.db.NewSelect().
		Model(&rows).
		Relation("Player").
		Relation("Course").
		OrderExpr("r.date DESC")
	if where != "" {
		q = q.Where(where, arg)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select rounds: %w", err)
	}
	out := make([]domain.Round, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) Round(ctx context.Context, id string) (domain.Round, error) {
	row := &roundRow{}
	err := s.db.NewSelect().
		Model(row).
		Relation("Player").
		Relation("Course").
		Where("r.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Round{}, ErrNotFound
	}
	if err != nil {
		return domain.Round{}, fmt.Errorf("select round %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// SaveRound upserts a round together with its player and course rows.
func (s *Store) SaveRound(ctx context.Context, r domain.Round) error {
	return s.SaveRounds(ctx, []domain.Round{r})
}

// SaveRounds upserts rounds and the players and courses they reference in
// one transaction.
func (s *Store) SaveRounds(ctx context.Context, rounds []domain.Round) error {
	if len(rounds) == 0 {
		return nil
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return saveRounds(ctx, tx, rounds)
	})
}

// ReplaceRounds makes the cached round set match rounds.
func (s *Store) ReplaceRounds(ctx context.Context, rounds []domain.Round) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := saveRounds(ctx, tx, rounds); err != nil {
			return err
		}
		q := tx.NewDelete().Model((*roundRow)(nil))
		if len(rounds) > 0 {
			ids := make([]string, 0, len(rounds))
			for _, r := range rounds {
				ids = append(ids, r.ID)
			}
			q = q.Where("id NOT IN (?)", bun.In(ids))
		} else {
			q = q.Where("1 = 1")
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("prune rounds: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteRound(ctx context.Context, id string) error {
	if _, err := s.db.NewDelete().Model((*roundRow)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("delete round: %w", err)
	}
	return nil
}

func saveRounds(ctx context.Context, tx bun.Tx, rounds []domain.Round) error {
	if len(rounds) == 0 {
		return nil
	}
	players := make([]domain.Player, 0, len(rounds))
	courses := make([]domain.Course, 0, len(rounds))
	rows := make([]*roundRow, 0, len(rounds))
	roundsSeen := make(map[string]int, len(rounds))
	for _, r := range rounds {
		if r.ID == "" {
			return errors.New("cache round: missing id")
		}
		players = append(players, r.Player)
		courses = append(courses, r.Course)
		if i, ok := roundsSeen[r.ID]; ok {
			rows[i] = toRoundRow(r)
			continue
		}
		roundsSeen[r.ID] = len(rows)
		rows = append(rows, toRoundRow(r))
	}

	if err := upsertPlayers(ctx, tx, players); err != nil {
		return err
	}
	if err := upsertCourses(ctx, tx, courses); err != nil {
		return err
	}
	if _, err := tx.NewInsert().Model(&rows).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
		return fmt.Errorf("upsert rounds: %w", err)
	}
	return nil
}
