package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
)

func (s *Store) Players(ctx context.Context) ([]domain.Player, error) {
	var rows []playerRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("p.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	out := make([]domain.Player, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) Player(ctx context.Context, id string) (domain.Player, error) {
	return s.player(ctx, "p.id = ?", id)
}

// PlayerByName finds a player ignoring case, accents and extra spaces.
func (s *Store) PlayerByName(ctx context.Context, name string) (domain.Player, error) {
	return s.player(ctx, "p.name_fold = ?", domain.FoldName(name))
}

func (s *Store) player(ctx context.Context, where string, arg any) (domain.Player, error) {
	row := &playerRow{}
	err := s.db.NewSelect().Model(row).Where(where, arg).OrderExpr("p.id ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, ErrNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("select player: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) SavePlayer(ctx context.Context, p domain.Player) error {
	return upsertPlayers(ctx, s.db, []domain.Player{p})
}

func (s *Store) SavePlayers(ctx context.Context, players []domain.Player) error {
	return upsertPlayers(ctx, s.db, players)
}

// DeletePlayer removes a cached player; their rounds cascade.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	if _, err := s.db.NewDelete().Model((*playerRow)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

func upsertPlayers(ctx context.Context, idb bun.IDB, players []domain.Player) error {
	if len(players) == 0 {
		return nil
	}
	seen := make(map[string]int, len(players))
	rows := make([]*playerRow, 0, len(players))
	for _, p := range players {
		if p.ID == "" {
			return fmt.Errorf("cache player %q: missing id", p.Name)
		}
		// A multi-row upsert may not touch the same id twice.
		if i, ok := seen[p.ID]; ok {
			rows[i] = toPlayerRow(p)
			continue
		}
		seen[p.ID] = len(rows)
		rows = append(rows, toPlayerRow(p))
	}
	if _, err := idb.NewInsert().Model(&rows).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}
	return nil
}
