// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/hylla/statusboard/internal/domain"
)

// PageNext requests the next provider page before rendering the board.
const PageNext = "next"

// PagePrevious requests the previous provider page before rendering the board.
const PagePrevious = "previous"

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConflict reports requests that collide with in-flight board state.
var ErrConflict = errors.New("conflict")

// ErrRejected reports record writes the backing store refused.
var ErrRejected = errors.New("update rejected")

// ErrInvalidMetadata reports option metadata the provider served in an unusable shape.
var ErrInvalidMetadata = errors.New("invalid metadata")

// OptionMetadataRequest identifies one option field of one entity.
type OptionMetadataRequest struct {
	Entity string
	Field  string
}

// OptionModel is one option entry in option metadata responses.
type OptionModel struct {
	StatusCode int    `json:"StatusCode"`
	StateCode  *int   `json:"StateCode"`
	Label      string `json:"Label"`
	Color      string `json:"Color"`
}

// OptionMetadata is the ordered option list of one field.
type OptionMetadata struct {
	Entity  string        `json:"entity"`
	Field   string        `json:"field"`
	Options []OptionModel `json:"options"`
}

// OptionMetadataReader resolves option metadata for one field.
type OptionMetadataReader interface {
	OptionMetadata(context.Context, OptionMetadataRequest) (OptionMetadata, error)
}

// BoardRequest selects the grouping attribute and page of one board read.
type BoardRequest struct {
	Attribute string
	Page      string
	Refresh   bool
}

// AttributeSummary describes one selectable grouping attribute.
type AttributeSummary struct {
	LogicalName string `json:"logical_name"`
	Label       string `json:"label"`
	Composite   bool   `json:"composite"`
	OptionCount int    `json:"option_count"`
}

// CardSummary is one record card in board responses.
type CardSummary struct {
	RecordID string             `json:"record_id"`
	Title    string             `json:"title"`
	Fields   []domain.CardField `json:"fields,omitempty"`
}

// ColumnSummary is one board column in board responses.
type ColumnSummary struct {
	Key        string        `json:"key"`
	Label      string        `json:"label"`
	Color      string        `json:"color,omitempty"`
	Unassigned bool          `json:"unassigned,omitempty"`
	Collapsed  bool          `json:"collapsed,omitempty"`
	DropTarget bool          `json:"drop_target"`
	Count      int           `json:"count"`
	Cards      []CardSummary `json:"cards"`
}

// BoardSnapshot is the rendered board returned to HTTP and MCP callers.
type BoardSnapshot struct {
	EntityType string             `json:"entity_type"`
	ViewID     string             `json:"view_id,omitempty"`
	Attribute  string             `json:"attribute"`
	Attributes []AttributeSummary `json:"attributes"`
	Columns    []ColumnSummary    `json:"columns"`
	Counter    string             `json:"counter"`
	Paging     domain.Paging      `json:"paging"`
	Loading    bool               `json:"loading,omitempty"`
	DragState  string             `json:"drag_state"`
	StateHash  string             `json:"state_hash"`
}

// MoveCardRequest drops one record onto one column.
type MoveCardRequest struct {
	RecordID  string `json:"record_id"`
	TargetKey string `json:"target_key"`
}

// MoveCardResult reports the drop outcome and the board after it.
type MoveCardResult struct {
	Outcome   string         `json:"outcome"`
	RecordID  string         `json:"record_id"`
	SourceKey string         `json:"source_key"`
	TargetKey string         `json:"target_key"`
	Payload   map[string]any `json:"payload,omitempty"`
	Message   string         `json:"message,omitempty"`
	Board     BoardSnapshot  `json:"board"`
}

// BoardService reads the board and moves cards across columns.
type BoardService interface {
	Board(context.Context, BoardRequest) (BoardSnapshot, error)
	MoveCard(context.Context, MoveCardRequest) (MoveCardResult, error)
}
