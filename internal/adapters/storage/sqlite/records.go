package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// PutRecord inserts or replaces one record.
func (r *Repository) PutRecord(ctx context.Context, rec domain.Record) error {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.EntityType = strings.ToLower(strings.TrimSpace(rec.EntityType))
	if rec.ID == "" || rec.EntityType == "" {
		return fmt.Errorf("put record: %w", domain.ErrInvalidName)
	}
	valuesJSON, err := encodeValues(rec.Values)
	if err != nil {
		return err
	}
	now := ts(r.now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records(id, entity_type, values_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET entity_type = excluded.entity_type, values_json = excluded.values_json, updated_at = excluded.updated_at
	`, rec.ID, rec.EntityType, valuesJSON, now, now)
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.ID, err)
	}
	return nil
}

// GetRecord returns one record with raw values only.
func (r *Repository) GetRecord(ctx context.Context, ref domain.EntityReference) (domain.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, entity_type, values_json FROM records WHERE id = ? AND entity_type = ?
	`, ref.ID, strings.ToLower(ref.EntityType))
	rec, err := scanRecord(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("record %s: %w", ref.ID, translateErrNoRows(err))
	}
	return rec, nil
}

// ListRecords returns one page of records of an entity type and the total count.
func (r *Repository) ListRecords(ctx context.Context, entityType string, limit, offset int) ([]domain.Record, int, error) {
	entityType = strings.ToLower(strings.TrimSpace(entityType))
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE entity_type = ?`, entityType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entity_type, values_json
		FROM records
		WHERE entity_type = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`, entityType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// UpdateRecord merges fields into one record. Option values are checked against
// stored metadata; a status reason must belong to the written state. The merge
// itself is a single json_patch statement.
func (r *Repository) UpdateRecord(ctx context.Context, ref domain.EntityReference, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	current, err := r.GetRecord(ctx, ref)
	if err != nil {
		return err
	}
	patch := make(map[string]any, len(fields))
	for key, value := range fields {
		patch[strings.ToLower(key)] = value
	}
	merged := make(map[string]any, len(current.Values)+len(patch))
	maps.Copy(merged, current.Values)
	maps.Copy(merged, patch)
	if err := r.validateOptionValues(ctx, ref.EntityType, patch, merged); err != nil {
		return err
	}
	patchJSON, err := encodeValues(patch)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE records SET values_json = json_patch(values_json, ?), updated_at = ? WHERE id = ? AND entity_type = ?
	`, patchJSON, ts(r.now()), ref.ID, strings.ToLower(ref.EntityType))
	if err != nil {
		return fmt.Errorf("update record %s: %w", ref.ID, err)
	}
	return translateNoRows(res)
}

func (r *Repository) validateOptionValues(ctx context.Context, entity string, fields, merged map[string]any) error {
	for field := range fields {
		if field == domain.StateCodeField {
			continue
		}
		set, err := r.QueryOptions(ctx, entity, field)
		if errors.Is(err, app.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("validate %s: %w", field, err)
		}
		code, ok := domain.NumericValue(merged[field])
		if !ok {
			return &domain.UpdateError{Message: fmt.Sprintf("%s must be a numeric option value", field)}
		}
		var state *int64
		if domain.IsCompositeField(field) {
			if s, ok := domain.NumericValue(merged[domain.StateCodeField]); ok {
				state = &s
			}
		}
		if !optionAllowed(set, code, state) {
			if state != nil {
				return &domain.UpdateError{Message: fmt.Sprintf("%s %d is not valid for %s %d", field, code, domain.StateCodeField, *state)}
			}
			return &domain.UpdateError{Message: fmt.Sprintf("%s %d is not a valid option", field, code)}
		}
	}
	return nil
}

func optionAllowed(set app.OptionSetMetadata, code int64, state *int64) bool {
	for _, opt := range set.Options {
		if int64(opt.Value) != code {
			continue
		}
		if state == nil || opt.State == nil || int64(*opt.State) == *state {
			return true
		}
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (domain.Record, error) {
	var (
		rec        domain.Record
		valuesJSON string
	)
	if err := s.Scan(&rec.ID, &rec.EntityType, &valuesJSON); err != nil {
		return domain.Record{}, err
	}
	values, err := decodeValues(valuesJSON)
	if err != nil {
		return domain.Record{}, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	rec.Values = values
	return rec, nil
}

func encodeValues(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode record values: %w", err)
	}
	return string(raw), nil
}

func decodeValues(raw string) (map[string]any, error) {
	values := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return values, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}
