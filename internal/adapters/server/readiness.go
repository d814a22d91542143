package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/hylla/statusboard/internal/adapters/server/common"
)

// readinessTimeout bounds the board load a readiness check may trigger.
const readinessTimeout = 10 * time.Second

// healthStatus is the JSON body of /healthz and /readyz.
type healthStatus struct {
	Status     string `json:"status"`
	EntityType string `json:"entity_type,omitempty"`
	Attribute  string `json:"attribute,omitempty"`
	Error      string `json:"error,omitempty"`
}

// readiness turns ready once any board read succeeds and stays ready.
type readiness struct {
	boards  common.BoardService
	timeout time.Duration

	mu      sync.Mutex
	ready   bool
	entity  string
	attr    string
	lastErr error
}

func newReadiness(boards common.BoardService, timeout time.Duration) *readiness {
	return &readiness{boards: boards, timeout: timeout}
}

// track wraps boards so every board read served to clients feeds the gate.
func (r *readiness) track(boards common.BoardService) common.BoardService {
	if boards == nil {
		return nil
	}
	return trackedBoards{BoardService: boards, ready: r}
}

func (r *readiness) observe(board common.BoardSnapshot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		if !r.ready {
			r.lastErr = err
		}
		return
	}
	if !r.ready {
		r.ready = true
		r.entity = board.EntityType
		r.attr = board.Attribute
	}
	r.lastErr = nil
}

func (r *readiness) status() (healthStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return healthStatus{Status: "ready", EntityType: r.entity, Attribute: r.attr}, true
	}
	out := healthStatus{Status: "not_ready"}
	if r.lastErr != nil {
		out.Error = r.lastErr.Error()
	}
	return out, false
}

// check loads the board once when the gate is still closed.
func (r *readiness) check(ctx context.Context) (healthStatus, bool) {
	if r.boards == nil {
		return healthStatus{Status: "unavailable", Error: "board service is not configured"}, false
	}
	if out, ok := r.status(); ok {
		return out, true
	}
	loadCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	board, err := r.boards.Board(loadCtx, common.BoardRequest{})
	r.observe(board, err)
	return r.status()
}

// ServeHTTP answers /readyz.
func (r *readiness) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	out, ok := r.check(req.Context())
	if !ok {
		writeHealth(w, http.StatusServiceUnavailable, out)
		return
	}
	writeHealth(w, http.StatusOK, out)
}

type trackedBoards struct {
	common.BoardService
	ready *readiness
}

func (t trackedBoards) Board(ctx context.Context, req common.BoardRequest) (common.BoardSnapshot, error) {
	board, err := t.BoardService.Board(ctx, req)
	t.ready.observe(board, err)
	return board, err
}

func writeHealth(w http.ResponseWriter, status int, body healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
