package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/domain"
)

// Courses returns the cached courses ordered by name.
func (s *Store) Courses(ctx context.Context) ([]domain.Course, error) {
	var rows []courseRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("c.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select courses: %w", err)
	}
	out := make([]domain.Course, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Course returns one cached course or ErrNotFound.
func (s *Store) Course(ctx context.Context, id string) (domain.Course, error) {
	row := &courseRow{}
	err := s.db.NewSelect().Model(row).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Course{}, ErrNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("select course %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// SaveCourse inserts or overwrites a course.
func (s *Store) SaveCourse(ctx context.Context, c domain.Course) error {
	return upsertCourses(ctx, s.db, []domain.Course{c})
}

// ReplaceCourses makes the cached course set match courses. Cached courses
// missing from the set are dropped unless a cached round still points at them.
func (s *Store) ReplaceCourses(ctx context.Context, courses []domain.Course) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := upsertCourses(ctx, tx, courses); err != nil {
			return err
		}

		q := tx.NewDelete().
			Model((*courseRow)(nil)).
			Where("id NOT IN (SELECT DISTINCT course_id FROM rounds)")
		if ids := courseIDs(courses); len(ids) > 0 {
			q = q.Where("id NOT IN (?)", bun.In(ids))
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return fmt.Errorf("prune courses: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.log.Debug("pruned cached courses")
		}
		return nil
	})
}

// DeleteCourse removes a cached course. With the restrict policy a course
// that cached rounds reference is kept and ErrCourseInUse returned; with
// cascade the rounds go too. Deleting a missing course is not an error.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().Model((*roundRow)(nil)).Where("course_id = ?", id).Count(ctx)
		if err != nil {
			return fmt.Errorf("count rounds: %w", err)
		}
		if n > 0 {
			if s.policy != domain.DeleteCascade {
				return ErrCourseInUse
			}
			if _, err := tx.NewDelete().Model((*roundRow)(nil)).Where("course_id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("delete rounds: %w", err)
			}
		}
		if _, err := tx.NewDelete().Model((*courseRow)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return nil
	})
}

func upsertCourses(ctx context.Context, idb bun.IDB, courses []domain.Course) error {
	if len(courses) == 0 {
		return nil
	}
	seen := make(map[string]int, len(courses))
	rows := make([]*courseRow, 0, len(courses))
	for _, c := range courses {
		if c.ID == "" {
			return fmt.Errorf("cache course %q: missing id", c.Name)
		}
		if i, ok := seen[c.ID]; ok {
			rows[i] = toCourseRow(c)
			continue
		}
		seen[c.ID] = len(rows)
		rows = append(rows, toCourseRow(c))
	}
	if _, err := idb.NewInsert().Model(&rows).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
		return fmt.Errorf("upsert courses: %w", err)
	}
	return nil
}

func courseIDs(courses []domain.Course) []string {
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	return ids
}
