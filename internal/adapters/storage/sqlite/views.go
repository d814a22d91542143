package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/statusboard/internal/domain"
)

// View is one stored view definition.
type View struct {
	ID         string
	EntityType string
	Name       string
	Columns    []domain.ViewColumn
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UpsertView creates or replaces a view and its columns.
func (r *Repository) UpsertView(ctx context.Context, view View) error {
	view.ID = strings.TrimSpace(view.ID)
	view.EntityType = strings.TrimSpace(view.EntityType)
	if view.ID == "" || view.EntityType == "" {
		return fmt.Errorf("upsert view: %w", domain.ErrInvalidName)
	}
	now := r.now()
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO views(id, entity_type, name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET entity_type = excluded.entity_type, name = excluded.name, updated_at = excluded.updated_at
		`, view.ID, view.EntityType, view.Name, ts(now), ts(now)); err != nil {
			return fmt.Errorf("upsert view %s: %w", view.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM view_columns WHERE view_id = ?`, view.ID); err != nil {
			return fmt.Errorf("reset view columns %s: %w", view.ID, err)
		}
		for _, column := range view.Columns {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO view_columns(view_id, name, display_name, data_type, position)
				VALUES (?, ?, ?, ?, ?)
			`, view.ID, column.Name, column.DisplayName, column.DataType, column.Order); err != nil {
				return fmt.Errorf("insert view column %s.%s: %w", view.ID, column.Name, err)
			}
		}
		return nil
	})
}

// GetView returns one view with its columns in position order.
func (r *Repository) GetView(ctx context.Context, id string) (View, error) {
	var (
		view       View
		createdRaw string
		updatedRaw string
	)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, entity_type, name, created_at, updated_at
		FROM views
		WHERE id = ?
	`, id)
	if err := row.Scan(&view.ID, &view.EntityType, &view.Name, &createdRaw, &updatedRaw); err != nil {
		return View{}, translateErrNoRows(err)
	}
	view.CreatedAt = parseTS(createdRaw)
	view.UpdatedAt = parseTS(updatedRaw)

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, display_name, data_type, position
		FROM view_columns
		WHERE view_id = ?
		ORDER BY position ASC, name ASC
	`, id)
	if err != nil {
		return View{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var column domain.ViewColumn
		if err := rows.Scan(&column.Name, &column.DisplayName, &column.DataType, &column.Order); err != nil {
			return View{}, err
		}
		view.Columns = append(view.Columns, column)
	}
	return view, rows.Err()
}

// ListViews lists view ids and names, oldest first.
func (r *Repository) ListViews(ctx context.Context) ([]View, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entity_type, name, created_at, updated_at
		FROM views
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]View, 0)
	for rows.Next() {
		var (
			view       View
			createdRaw string
			updatedRaw string
		)
		if err := rows.Scan(&view.ID, &view.EntityType, &view.Name, &createdRaw, &updatedRaw); err != nil {
			return nil, err
		}
		view.CreatedAt = parseTS(createdRaw)
		view.UpdatedAt = parseTS(updatedRaw)
		out = append(out, view)
	}
	return out, rows.Err()
}
