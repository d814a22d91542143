package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hylla/statusboard/internal/app"
)

// UpsertOptionSet replaces the stored metadata of one option-typed field.
func (r *Repository) UpsertOptionSet(ctx context.Context, entity string, set app.OptionSetMetadata) error {
	entity = strings.ToLower(strings.TrimSpace(entity))
	field := strings.ToLower(strings.TrimSpace(set.LogicalName))
	if entity == "" || field == "" {
		return fmt.Errorf("upsert option set: entity and logical name are required")
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		// Foreign keys are enforced per connection, so children are cleared explicitly.
		for _, table := range []string{"option_labels", "attribute_options", "attribute_labels", "attributes"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE entity_type = ? AND logical_name = ?`, entity, field); err != nil {
				return fmt.Errorf("reset %s for %s.%s: %w", table, entity, field, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attributes(entity_type, logical_name, user_label) VALUES (?, ?, ?)
		`, entity, field, set.UserLabel); err != nil {
			return fmt.Errorf("insert attribute %s.%s: %w", entity, field, err)
		}
		for _, label := range set.DisplayLabels {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO attribute_labels(entity_type, logical_name, language_code, label) VALUES (?, ?, ?, ?)
			`, entity, field, label.LanguageCode, label.Label); err != nil {
				return fmt.Errorf("insert attribute label %s.%s: %w", entity, field, err)
			}
		}
		for position, opt := range set.Options {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO attribute_options(entity_type, logical_name, position, value, state, color, user_label)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, entity, field, position, opt.Value, nullableInt(opt.State), opt.Color, opt.UserLabel); err != nil {
				return fmt.Errorf("insert option %s.%s[%d]: %w", entity, field, position, err)
			}
			for _, label := range opt.Labels {
				if _, err := tx.ExecContext(ctx, `
					INSERT OR REPLACE INTO option_labels(entity_type, logical_name, position, language_code, label) VALUES (?, ?, ?, ?, ?)
				`, entity, field, position, label.LanguageCode, label.Label); err != nil {
					return fmt.Errorf("insert option label %s.%s[%d]: %w", entity, field, position, err)
				}
			}
		}
		return nil
	})
}

// QueryOptions returns the stored metadata of one option-typed field.
func (r *Repository) QueryOptions(ctx context.Context, entity, field string) (app.OptionSetMetadata, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	field = strings.ToLower(strings.TrimSpace(field))

	set := app.OptionSetMetadata{}
	row := r.db.QueryRowContext(ctx, `
		SELECT logical_name, user_label FROM attributes WHERE entity_type = ? AND logical_name = ?
	`, entity, field)
	if err := row.Scan(&set.LogicalName, &set.UserLabel); err != nil {
		return app.OptionSetMetadata{}, fmt.Errorf("attribute %s.%s: %w", entity, field, translateErrNoRows(err))
	}

	labels, err := r.db.QueryContext(ctx, `
		SELECT language_code, label FROM attribute_labels
		WHERE entity_type = ? AND logical_name = ?
		ORDER BY language_code ASC
	`, entity, field)
	if err != nil {
		return app.OptionSetMetadata{}, err
	}
	for labels.Next() {
		var label app.LocalizedLabel
		if err := labels.Scan(&label.LanguageCode, &label.Label); err != nil {
			_ = labels.Close()
			return app.OptionSetMetadata{}, err
		}
		set.DisplayLabels = append(set.DisplayLabels, label)
	}
	if err := labels.Close(); err != nil {
		return app.OptionSetMetadata{}, err
	}

	opts, err := r.db.QueryContext(ctx, `
		SELECT position, value, state, color, user_label FROM attribute_options
		WHERE entity_type = ? AND logical_name = ?
		ORDER BY position ASC
	`, entity, field)
	if err != nil {
		return app.OptionSetMetadata{}, err
	}
	positions := make([]int, 0)
	for opts.Next() {
		var (
			position int
			opt      app.OptionMetadata
			state    sql.NullInt64
		)
		if err := opts.Scan(&position, &opt.Value, &state, &opt.Color, &opt.UserLabel); err != nil {
			_ = opts.Close()
			return app.OptionSetMetadata{}, err
		}
		opt.State = parseNullInt(state)
		positions = append(positions, position)
		set.Options = append(set.Options, opt)
	}
	if err := opts.Close(); err != nil {
		return app.OptionSetMetadata{}, err
	}

	optLabels, err := r.db.QueryContext(ctx, `
		SELECT position, language_code, label FROM option_labels
		WHERE entity_type = ? AND logical_name = ?
		ORDER BY position ASC, language_code ASC
	`, entity, field)
	if err != nil {
		return app.OptionSetMetadata{}, err
	}
	defer optLabels.Close()
	byPosition := make(map[int]int, len(positions))
	for idx, position := range positions {
		byPosition[position] = idx
	}
	for optLabels.Next() {
		var (
			position int
			label    app.LocalizedLabel
		)
		if err := optLabels.Scan(&position, &label.LanguageCode, &label.Label); err != nil {
			return app.OptionSetMetadata{}, err
		}
		if idx, ok := byPosition[position]; ok {
			set.Options[idx].Labels = append(set.Options[idx].Labels, label)
		}
	}
	return set, optLabels.Err()
}
