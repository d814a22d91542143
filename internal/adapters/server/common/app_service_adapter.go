package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto one board session and the option metadata service.
type AppServiceAdapter struct {
	session *app.Session
	options *app.OptionMetadataService
}

// NewAppServiceAdapter builds one common adapter over app services. Either service may be nil.
func NewAppServiceAdapter(session *app.Session, options *app.OptionMetadataService) *AppServiceAdapter {
	return &AppServiceAdapter{session: session, options: options}
}

// OptionMetadata resolves the ordered options of one entity field.
func (a *AppServiceAdapter) OptionMetadata(ctx context.Context, in OptionMetadataRequest) (OptionMetadata, error) {
	if a == nil || a.options == nil {
		return OptionMetadata{}, fmt.Errorf("option metadata service is not configured: %w", ErrNotFound)
	}
	req := OptionMetadataRequest{
		Entity: strings.ToLower(strings.TrimSpace(in.Entity)),
		Field:  strings.ToLower(strings.TrimSpace(in.Field)),
	}
	if req.Entity == "" {
		return OptionMetadata{}, fmt.Errorf("entity is required: %w", ErrInvalidRequest)
	}
	if req.Field == "" {
		return OptionMetadata{}, fmt.Errorf("field is required: %w", ErrInvalidRequest)
	}

	models, err := a.options.RetrieveOptionSetMetadata(ctx, req.Entity, req.Field)
	if err != nil {
		return OptionMetadata{}, mapAppError("option metadata", err)
	}
	out := OptionMetadata{
		Entity:  req.Entity,
		Field:   req.Field,
		Options: make([]OptionModel, 0, len(models)),
	}
	for _, model := range models {
		out.Options = append(out.Options, OptionModel{
			StatusCode: model.StatusCode,
			StateCode:  model.StateCode,
			Label:      model.Label,
			Color:      model.Color,
		})
	}
	return out, nil
}

// Board renders the session board after applying the requested attribute, refresh, and page moves.
func (a *AppServiceAdapter) Board(ctx context.Context, in BoardRequest) (BoardSnapshot, error) {
	if a == nil || a.session == nil {
		return BoardSnapshot{}, fmt.Errorf("board session is not configured: %w", ErrNotFound)
	}
	req, err := normalizeBoardRequest(in)
	if err != nil {
		return BoardSnapshot{}, err
	}

	board, err := a.session.Board(ctx)
	if err != nil {
		return BoardSnapshot{}, mapAppError("load board", err)
	}
	if req.Refresh {
		if board, err = a.session.Refresh(ctx); err != nil {
			return BoardSnapshot{}, mapAppError("refresh board", err)
		}
	}
	if req.Attribute != "" && !strings.EqualFold(req.Attribute, board.Selected) {
		if board, err = a.session.Select(ctx, req.Attribute); err != nil {
			return BoardSnapshot{}, mapAppError("select attribute", err)
		}
	}
	switch req.Page {
	case PageNext:
		board, err = a.session.NextPage(ctx)
	case PagePrevious:
		board, err = a.session.PreviousPage(ctx)
	}
	if err != nil {
		return BoardSnapshot{}, mapAppError("change page", err)
	}
	return convertBoard(board)
}

// MoveCard drops one record onto one column and reports the board after the write.
func (a *AppServiceAdapter) MoveCard(ctx context.Context, in MoveCardRequest) (MoveCardResult, error) {
	if a == nil || a.session == nil {
		return MoveCardResult{}, fmt.Errorf("board session is not configured: %w", ErrNotFound)
	}
	req := MoveCardRequest{
		RecordID:  strings.TrimSpace(in.RecordID),
		TargetKey: strings.TrimSpace(in.TargetKey),
	}
	if req.RecordID == "" {
		return MoveCardResult{}, fmt.Errorf("record_id is required: %w", ErrInvalidRequest)
	}
	if req.TargetKey == "" {
		return MoveCardResult{}, fmt.Errorf("target_key is required: %w", ErrInvalidRequest)
	}

	result, board, err := a.session.MoveCard(ctx, req.RecordID, req.TargetKey)
	out := MoveCardResult{
		Outcome:   string(result.Outcome),
		RecordID:  result.RecordID,
		SourceKey: result.SourceKey,
		TargetKey: result.TargetKey,
		Payload:   result.Payload,
		Message:   result.Message,
	}
	if err != nil {
		return out, mapAppError("move card", err)
	}
	snapshot, err := convertBoard(board)
	if err != nil {
		return MoveCardResult{}, err
	}
	out.Board = snapshot
	return out, nil
}

// normalizeBoardRequest validates and canonicalizes one board request.
func normalizeBoardRequest(in BoardRequest) (BoardRequest, error) {
	out := BoardRequest{
		Attribute: strings.TrimSpace(in.Attribute),
		Page:      strings.ToLower(strings.TrimSpace(in.Page)),
		Refresh:   in.Refresh,
	}
	switch out.Page {
	case "", PageNext, PagePrevious:
		return out, nil
	default:
		return BoardRequest{}, fmt.Errorf("page must be %q or %q: %w", PageNext, PagePrevious, ErrInvalidRequest)
	}
}

// convertBoard maps one app board into its transport snapshot.
func convertBoard(board app.Board) (BoardSnapshot, error) {
	out := BoardSnapshot{
		EntityType: board.EntityType,
		ViewID:     board.ViewID,
		Attribute:  board.Selected,
		Attributes: make([]AttributeSummary, 0, len(board.Attributes)),
		Columns:    make([]ColumnSummary, 0, len(board.Layout.Columns)),
		Counter:    board.Counter(),
		Paging:     board.Paging,
		Loading:    board.Loading,
		DragState:  string(board.DragState),
	}
	for _, attr := range board.Attributes {
		out.Attributes = append(out.Attributes, AttributeSummary{
			LogicalName: attr.LogicalName,
			Label:       attr.Label,
			Composite:   attr.Composite,
			OptionCount: len(attr.Options),
		})
	}
	for _, column := range board.Layout.Columns {
		summary := ColumnSummary{
			Key:        column.Key,
			Label:      column.Label,
			Color:      column.Color,
			Unassigned: column.Unassigned,
			Collapsed:  column.Collapsed,
			DropTarget: column.DropTarget(),
			Count:      len(column.Cards),
			Cards:      make([]CardSummary, 0, len(column.Cards)),
		}
		for _, card := range column.Cards {
			summary.Cards = append(summary.Cards, CardSummary{
				RecordID: card.RecordID,
				Title:    card.Title(),
				Fields:   card.Fields,
			})
		}
		out.Columns = append(out.Columns, summary)
	}

	hash, err := computeBoardHash(board)
	if err != nil {
		return BoardSnapshot{}, err
	}
	out.StateHash = hash
	return out, nil
}

// computeBoardHash fingerprints record placement so clients can detect board changes.
func computeBoardHash(board app.Board) (string, error) {
	type placement struct {
		RecordID  string `json:"record_id"`
		ColumnKey string `json:"column_key"`
	}
	placements := make([]placement, 0, board.Layout.TotalCards())
	for _, column := range board.Layout.Columns {
		for _, card := range column.Cards {
			placements = append(placements, placement{RecordID: card.RecordID, ColumnKey: column.Key})
		}
	}
	slices.SortFunc(placements, func(a, b placement) int {
		return strings.Compare(a.RecordID, b.RecordID)
	})
	payload := struct {
		EntityType string      `json:"entity_type"`
		ViewID     string      `json:"view_id"`
		Attribute  string      `json:"attribute"`
		Page       int         `json:"page"`
		Placements []placement `json:"placements"`
	}{
		EntityType: board.EntityType,
		ViewID:     board.ViewID,
		Attribute:  board.Selected,
		Page:       board.Paging.Page,
		Placements: placements,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal board placement: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrAmbiguousOption):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidMetadata, err))
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, domain.ErrMetadataUnavailable):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrUpdateRejected):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrRejected, err))
	case errors.Is(err, app.ErrWriteInFlight),
		errors.Is(err, app.ErrNoActiveDrag):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, app.ErrInvalidRequest),
		errors.Is(err, app.ErrNotSelectable),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidColumnKey),
		errors.Is(err, domain.ErrInvalidDropTarget):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
