package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/statusboard/internal/domain"
)

// SessionConfig holds configuration for one board session.
type SessionConfig struct {
	EntityType string
	Attribute  string
	PageSize   int
}

// Board is the rendered state of one session.
type Board struct {
	EntityType string              `json:"entity_type"`
	ViewID     string              `json:"view_id"`
	Attributes []domain.Attribute  `json:"attributes"`
	Selected   string              `json:"selected"`
	Layout     domain.ColumnLayout `json:"layout"`
	Loaded     int                 `json:"loaded"`
	Total      int                 `json:"total"`
	Paging     domain.Paging       `json:"paging"`
	Loading    bool                `json:"loading"`
	DragState  DragState           `json:"drag_state"`
	Dragging   string              `json:"dragging,omitempty"`
}

// SelectedAttribute returns the attribute the board is grouped by.
func (b Board) SelectedAttribute() (domain.Attribute, bool) {
	return findAttribute(b.Attributes, b.Selected)
}

// Counter formats the loaded/total record count.
func (b Board) Counter() string {
	if b.Total < 0 {
		return fmt.Sprintf("%d/?", b.Loaded)
	}
	return fmt.Sprintf("%d/%d", b.Loaded, b.Total)
}

// Session binds a data provider, metadata loader, and drag-drop controller to one board.
type Session struct {
	provider   DataProvider
	loader     *MetadataLoader
	selector   *AttributeSelector
	controller *DragDropController
	logger     Logger

	entityType string
	preferred  string

	loadMu sync.Mutex

	mu       sync.Mutex
	viewID   string
	attrs    []domain.Attribute
	selected string
	layout   domain.ColumnLayout
	paging   domain.Paging
	loading  bool
	loaded   bool
}

// NewSession constructs a session and applies the provider page size.
func NewSession(provider DataProvider, loader *MetadataLoader, controller *DragDropController, logger Logger, cfg SessionConfig) *Session {
	logger = loggerOrNop(logger)
	entityType := strings.TrimSpace(cfg.EntityType)
	if entityType == "" {
		entityType = provider.TargetEntityType()
	}
	provider.SetPageSize(ClampPageSize(cfg.PageSize))
	return &Session{
		provider:   provider,
		loader:     loader,
		selector:   NewAttributeSelector(loader, provider, logger),
		controller: controller,
		logger:     logger,
		entityType: entityType,
		preferred:  strings.TrimSpace(cfg.Attribute),
	}
}

// EntityType returns the bound entity type.
func (s *Session) EntityType() string {
	return s.entityType
}

// Load reads the provider, reloads attributes on a view change, and re-renders.
func (s *Session) Load(ctx context.Context) (Board, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	snapshot, err := s.provider.Snapshot(ctx)
	if err != nil {
		return Board{}, fmt.Errorf("load board snapshot: %w", err)
	}

	s.mu.Lock()
	attrs := s.attrs
	selected := s.selected
	s.mu.Unlock()

	viewChanged := s.loader.SetView(snapshot.ViewID)
	if viewChanged || attrs == nil {
		attrs = s.selector.ListSelectable(ctx, s.entityType, snapshot.Columns)
		s.logger.Debug("attributes loaded", "entity", s.entityType, "view_id", snapshot.ViewID, "count", len(attrs))
	}
	attr, ok := findAttribute(attrs, selected)
	if !ok {
		attr, ok = findAttribute(attrs, s.preferred)
	}
	if !ok && len(attrs) > 0 {
		attr = attrs[0]
	}

	layout := BoardRenderer{EntityType: s.entityType}.Render(attr, snapshot.Columns, snapshot.Records)

	s.mu.Lock()
	s.viewID = snapshot.ViewID
	s.attrs = attrs
	s.selected = attr.LogicalName
	s.layout = layout
	s.paging = snapshot.Paging
	s.loading = snapshot.Loading
	s.loaded = true
	board := s.boardLocked()
	s.mu.Unlock()
	return board, nil
}

// Board returns the last rendered board, loading it first when needed.
func (s *Session) Board(ctx context.Context) (Board, error) {
	s.mu.Lock()
	if s.loaded {
		board := s.boardLocked()
		s.mu.Unlock()
		return board, nil
	}
	s.mu.Unlock()
	return s.Load(ctx)
}

// Select changes the grouping attribute and re-renders from fresh records.
func (s *Session) Select(ctx context.Context, logicalName string) (Board, error) {
	if _, err := s.Board(ctx); err != nil {
		return Board{}, err
	}
	s.mu.Lock()
	attrs := s.attrs
	s.mu.Unlock()
	attr, err := s.selector.Select(ctx, attrs, logicalName)
	if err != nil {
		return Board{}, err
	}
	s.mu.Lock()
	s.selected = attr.LogicalName
	s.mu.Unlock()
	return s.Load(ctx)
}

// Refresh asks the provider for fresh records and re-renders.
func (s *Session) Refresh(ctx context.Context) (Board, error) {
	if err := s.provider.Refresh(ctx); err != nil {
		return Board{}, fmt.Errorf("refresh board: %w", err)
	}
	return s.Load(ctx)
}

// NextPage moves to the next provider page.
func (s *Session) NextPage(ctx context.Context) (Board, error) {
	if err := s.provider.NextPage(ctx); err != nil {
		return Board{}, fmt.Errorf("next page: %w", err)
	}
	return s.Load(ctx)
}

// PreviousPage moves to the previous provider page.
func (s *Session) PreviousPage(ctx context.Context) (Board, error) {
	if err := s.provider.PreviousPage(ctx); err != nil {
		return Board{}, fmt.Errorf("previous page: %w", err)
	}
	return s.Load(ctx)
}

// BeginDrag starts dragging one card of the current layout.
func (s *Session) BeginDrag(recordID string) error {
	s.mu.Lock()
	card, ok := s.layout.Card(recordID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("card %q: %w", recordID, ErrNotFound)
	}
	return s.controller.BeginDrag(card)
}

// CancelDrag ends the active drag without writing.
func (s *Session) CancelDrag() {
	s.controller.Cancel()
}

// Drop resolves the active drag. Applied drops refresh the provider.
func (s *Session) Drop(ctx context.Context, targetKey string) (DropResult, Board, error) {
	s.mu.Lock()
	working := s.layout.Clone()
	s.mu.Unlock()

	result, err := s.controller.Drop(ctx, &working, targetKey)
	return s.settleDrop(ctx, result, targetKey, err)
}

// MoveCard drops one record onto one column in a single call. It leaves the
// interactive drag untouched.
func (s *Session) MoveCard(ctx context.Context, recordID, targetKey string) (DropResult, Board, error) {
	if _, err := s.Board(ctx); err != nil {
		return DropResult{}, Board{}, err
	}
	s.mu.Lock()
	card, ok := s.layout.Card(recordID)
	working := s.layout.Clone()
	s.mu.Unlock()
	if !ok {
		return DropResult{}, Board{}, fmt.Errorf("card %q: %w", recordID, ErrNotFound)
	}

	result, err := s.controller.DropCard(ctx, &working, card, targetKey)
	return s.settleDrop(ctx, result, targetKey, err)
}

func (s *Session) settleDrop(ctx context.Context, result DropResult, targetKey string, err error) (DropResult, Board, error) {
	if err != nil || result.Outcome != DropApplied {
		return result, s.snapshotBoard(), err
	}

	s.mu.Lock()
	s.layout.Move(result.RecordID, targetKey)
	s.mu.Unlock()

	board, refreshErr := s.Refresh(ctx)
	if refreshErr != nil {
		s.logger.Warn("refresh after move failed", "record_id", result.RecordID, "err", refreshErr)
		board = s.snapshotBoard()
	}
	return result, board, nil
}

// OpenRecord opens one card's record through the provider.
func (s *Session) OpenRecord(ctx context.Context, recordID string) (string, error) {
	s.mu.Lock()
	card, ok := s.layout.Card(recordID)
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("card %q: %w", recordID, ErrNotFound)
	}
	return s.provider.OpenRecord(ctx, card.Reference())
}

func (s *Session) snapshotBoard() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardLocked()
}

func (s *Session) boardLocked() Board {
	board := Board{
		EntityType: s.entityType,
		ViewID:     s.viewID,
		Attributes: append([]domain.Attribute(nil), s.attrs...),
		Selected:   s.selected,
		Layout:     s.layout.Clone(),
		Loaded:     s.layout.TotalCards(),
		Total:      s.paging.TotalResultCount,
		Paging:     s.paging,
		Loading:    s.loading,
		DragState:  s.controller.State(),
	}
	if card, ok := s.controller.Active(); ok {
		board.Dragging = card.RecordID
	}
	return board
}
