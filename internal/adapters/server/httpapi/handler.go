// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/statusboard/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	boards  common.BoardService
	options common.OptionMetadataReader
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter. Either service may be nil.
func NewHandler(boards common.BoardService, options common.OptionMetadataReader) *Handler {
	return &Handler{
		boards:  boards,
		options: options,
	}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch path {
	case "option_metadata":
		switch r.Method {
		case http.MethodGet:
			h.handleOptionMetadataQuery(w, r)
		case http.MethodPost:
			h.handleOptionMetadataAction(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case "board":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleBoard(w, r)
	case "board/drop":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleDrop(w, r)
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// optionMetadataAction is the POST body accepted by `/option_metadata`.
type optionMetadataAction struct {
	EntityLogicalName    string `json:"EntityLogicalName"`
	AttributeLogicalName string `json:"AttributeLogicalName"`
}

// optionMetadataActionResult mirrors the action output, a JSON-encoded option list.
type optionMetadataActionResult struct {
	OptionSetMetadata string `json:"OptionSetMetadata"`
}

// handleOptionMetadataQuery serves GET `/option_metadata?entity=&field=`.
func (h *Handler) handleOptionMetadataQuery(w http.ResponseWriter, r *http.Request) {
	if h.options == nil {
		writeOptionsUnavailable(w)
		return
	}
	metadata, err := h.options.OptionMetadata(r.Context(), common.OptionMetadataRequest{
		Entity: r.URL.Query().Get("entity"),
		Field:  r.URL.Query().Get("field"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metadata)
}

// handleOptionMetadataAction serves POST `/option_metadata` in the server action shape.
func (h *Handler) handleOptionMetadataAction(w http.ResponseWriter, r *http.Request) {
	if h.options == nil {
		writeOptionsUnavailable(w)
		return
	}
	var req optionMetadataAction
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	metadata, err := h.options.OptionMetadata(r.Context(), common.OptionMetadataRequest{
		Entity: req.EntityLogicalName,
		Field:  req.AttributeLogicalName,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	encoded, err := json.Marshal(metadata.Options)
	if err != nil {
		writeErrorFrom(w, fmt.Errorf("encode option metadata: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, optionMetadataActionResult{OptionSetMetadata: string(encoded)})
}

// handleBoard serves GET `/board?attribute=&page=&refresh=`.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	if h.boards == nil {
		writeBoardUnavailable(w)
		return
	}
	req := common.BoardRequest{
		Attribute: strings.TrimSpace(r.URL.Query().Get("attribute")),
		Page:      strings.TrimSpace(r.URL.Query().Get("page")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("refresh")); raw != "" {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "refresh must be a boolean",
			})
			return
		}
		req.Refresh = refresh
	}
	board, err := h.boards.Board(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleDrop serves POST `/board/drop`.
func (h *Handler) handleDrop(w http.ResponseWriter, r *http.Request) {
	if h.boards == nil {
		writeBoardUnavailable(w)
		return
	}
	var req common.MoveCardRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.boards.MoveCard(r.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrRejected) {
			writeJSONError(w, http.StatusUnprocessableEntity, APIError{
				Code:    "update_rejected",
				Message: firstNonEmpty(result.Message, err.Error()),
				Context: map[string]any{
					"record_id":  result.RecordID,
					"source_key": result.SourceKey,
					"target_key": result.TargetKey,
				},
			})
			return
		}
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeOptionsUnavailable reports a missing option metadata service.
func writeOptionsUnavailable(w http.ResponseWriter) {
	writeJSONError(w, http.StatusServiceUnavailable, APIError{
		Code:    "service_unavailable",
		Message: "option metadata service is not configured",
	})
}

// writeBoardUnavailable reports a missing board service.
func writeBoardUnavailable(w http.ResponseWriter) {
	writeJSONError(w, http.StatusNotImplemented, APIError{
		Code:    "not_implemented",
		Message: "board APIs are not available",
		Hint:    "Configure board.view or board.entity before serving.",
	})
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// firstNonEmpty returns the first non-blank value.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrConflict):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "conflict",
			Message: err.Error(),
			Hint:    "Wait for the pending write on this record to finish.",
		})
	case errors.Is(err, common.ErrRejected):
		writeJSONError(w, http.StatusUnprocessableEntity, APIError{
			Code:    "update_rejected",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidMetadata):
		writeJSONError(w, http.StatusBadGateway, APIError{
			Code:    "invalid_metadata",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
