package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hylla/statusboard/internal/domain"
)

// DefaultUpdateTimeout bounds one record write.
const DefaultUpdateTimeout = 30 * time.Second

// DragState represents the drag-drop controller state.
type DragState string

// DragIdle and related constants enumerate controller states.
const (
	DragIdle     DragState = "idle"
	DragDragging DragState = "dragging"
	DragPending  DragState = "pending"
)

// DropOutcome describes how a drop resolved.
type DropOutcome string

// DropApplied and related constants enumerate drop outcomes.
const (
	DropApplied  DropOutcome = "applied"
	DropNoop     DropOutcome = "noop"
	DropIgnored  DropOutcome = "ignored"
	DropRejected DropOutcome = "rejected"
)

// DropResult reports the outcome of one drop.
type DropResult struct {
	Outcome   DropOutcome    `json:"outcome"`
	RecordID  string         `json:"record_id"`
	SourceKey string         `json:"source_key"`
	TargetKey string         `json:"target_key"`
	Payload   map[string]any `json:"payload,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// DragDropConfig holds configuration for drag-drop writes.
type DragDropConfig struct {
	UpdateTimeout time.Duration
}

// DragDropController tracks the active drag and the records with a write in flight.
type DragDropController struct {
	updater RecordUpdater
	logger  Logger
	timeout time.Duration

	mu       sync.Mutex
	active   *domain.Card
	inFlight map[string]struct{}
}

// NewDragDropController constructs a controller over one updater.
func NewDragDropController(updater RecordUpdater, logger Logger, cfg DragDropConfig) *DragDropController {
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = DefaultUpdateTimeout
	}
	return &DragDropController{
		updater:  updater,
		logger:   loggerOrNop(logger),
		timeout:  cfg.UpdateTimeout,
		inFlight: map[string]struct{}{},
	}
}

// State returns the current controller state.
func (c *DragDropController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.active != nil:
		return DragDragging
	case len(c.inFlight) > 0:
		return DragPending
	default:
		return DragIdle
	}
}

// Active returns the dragged card, if any.
func (c *DragDropController) Active() (domain.Card, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.Card{}, false
	}
	return *c.active, true
}

// Pending reports whether one record has a write in flight.
func (c *DragDropController) Pending(recordID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[recordID]
	return ok
}

// BeginDrag starts a drag session, replacing any idle one.
func (c *DragDropController) BeginDrag(card domain.Card) error {
	if card.RecordID == "" {
		return fmt.Errorf("begin drag: %w", domain.ErrInvalidName)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[card.RecordID]; busy {
		return fmt.Errorf("begin drag %s: %w", card.RecordID, ErrWriteInFlight)
	}
	card.Fields = append([]domain.CardField(nil), card.Fields...)
	c.active = &card
	return nil
}

// Cancel ends the drag session without writing.
func (c *DragDropController) Cancel() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

// Drop resolves the active drag onto one target column. The layout card only
// moves after the updater confirms the write.
func (c *DragDropController) Drop(ctx context.Context, layout *domain.ColumnLayout, targetKey string) (DropResult, error) {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return DropResult{}, ErrNoActiveDrag
	}
	card := *c.active
	c.active = nil
	c.mu.Unlock()
	return c.DropCard(ctx, layout, card, targetKey)
}

// DropCard resolves one card onto one target column without touching the
// active drag.
func (c *DragDropController) DropCard(ctx context.Context, layout *domain.ColumnLayout, card domain.Card, targetKey string) (DropResult, error) {
	if card.RecordID == "" {
		return DropResult{}, fmt.Errorf("drop: %w", domain.ErrInvalidName)
	}
	c.mu.Lock()
	result := DropResult{RecordID: card.RecordID, SourceKey: card.ColumnKey, TargetKey: targetKey}
	if layout == nil {
		c.mu.Unlock()
		result.Outcome = DropIgnored
		return result, nil
	}
	if current, ok := layout.ColumnOf(card.RecordID); ok {
		result.SourceKey = current
	}
	target, _, ok := layout.Column(targetKey)
	if !ok || !target.DropTarget() {
		c.mu.Unlock()
		result.Outcome = DropIgnored
		c.logger.Debug("drop ignored", "record_id", card.RecordID, "target", targetKey)
		return result, nil
	}
	if result.SourceKey == targetKey {
		c.mu.Unlock()
		result.Outcome = DropNoop
		return result, nil
	}
	if _, busy := c.inFlight[card.RecordID]; busy {
		c.mu.Unlock()
		return result, fmt.Errorf("drop %s: %w", card.RecordID, ErrWriteInFlight)
	}
	c.inFlight[card.RecordID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, card.RecordID)
		c.mu.Unlock()
	}()

	result.Payload = UpdatePayload(layout.Attribute, *target.Option)
	writeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.updater.UpdateRecord(writeCtx, card.Reference(), result.Payload); err != nil {
		result.Outcome = DropRejected
		updateErr := asUpdateError(err)
		result.Message = updateErr.Error()
		c.logger.Warn("record update rejected", "record_id", card.RecordID, "target", targetKey, "err", err)
		return result, fmt.Errorf("update %s: %w", card.RecordID, updateErr)
	}
	layout.Move(card.RecordID, targetKey)
	result.Outcome = DropApplied
	c.logger.Info("record moved", "record_id", card.RecordID, "from", result.SourceKey, "to", targetKey)
	return result, nil
}

// UpdatePayload builds the field map written for one target option.
func UpdatePayload(logicalName string, target domain.Option) map[string]any {
	if target.StateCode != nil {
		return map[string]any{
			domain.StateCodeField:  *target.StateCode,
			domain.StatusCodeField: target.Code,
		}
	}
	return map[string]any{logicalName: target.Code}
}

func asUpdateError(err error) *domain.UpdateError {
	var updateErr *domain.UpdateError
	if errors.As(err, &updateErr) {
		return updateErr
	}
	return &domain.UpdateError{Message: err.Error(), Err: err}
}
