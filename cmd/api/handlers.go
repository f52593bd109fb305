package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/circuitsmith/boardlint/engine/boardgraph"
	"github.com/circuitsmith/boardlint/engine/netlist"
	"github.com/circuitsmith/boardlint/engine/pipeline"
	"github.com/circuitsmith/boardlint/engine/rules"
	"github.com/circuitsmith/boardlint/engine/schema"
	"github.com/circuitsmith/boardlint/engine/store"
	"github.com/circuitsmith/boardlint/pkg/auth"
	"github.com/circuitsmith/boardlint/pkg/natsutil"
	"github.com/circuitsmith/boardlint/pkg/resilience"
)

// maxPayload caps uploaded netlist documents at 10 MiB.
const maxPayload = 10 << 20

type server struct {
	pipeline *pipeline.Pipeline
	store    *store.SQLiteStore
	verifier *auth.Verifier
	logger   *slog.Logger

	// optional collaborators, nil when disabled
	events   *nats.Conn
	subject  string
	exporter *boardgraph.Exporter
	breaker  *resilience.Breaker
}

// ValidateResponse is the JSON response for POST /api/netlists.
type ValidateResponse struct {
	ID         string            `json:"id"`
	CreatedAt  string            `json:"createdAt"`
	Status     string            `json:"status"`
	Violations []rules.Violation `json:"violations"`
}

// ListResponse is the JSON response for GET /api/netlists.
type ListResponse struct {
	Total int             `json:"total"`
	Items []store.Summary `json:"items"`
}

// ValidatedEvent is published on each stored submission.
type ValidatedEvent struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	userID, err := s.verifier.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	raw, err := readPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.pipeline.Validate(r.Context(), raw)
	if err != nil {
		var schemaErr *schema.Error
		if errors.As(err, &schemaErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":  "document does not match the netlist schema",
				"detail": schemaErr.Message,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "malformed JSON document")
		return
	}

	sub, err := s.store.Insert(r.Context(), userID, raw, report)
	if err != nil {
		s.logger.Error("store submission", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.fanOut(sub, raw)

	writeJSON(w, http.StatusCreated, ValidateResponse{
		ID:         sub.ID,
		CreatedAt:  sub.CreatedAt,
		Status:     report.Status,
		Violations: report.Violations,
	})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, err := s.verifier.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	limit := intQuery(r, "limit", 20)
	skip := intQuery(r, "skip", 0)

	total, items, err := s.store.List(r.Context(), userID, limit, skip)
	if err != nil {
		s.logger.Error("list submissions", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Total: total, Items: items})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := s.verifier.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	sub, err := s.store.Get(r.Context(), r.PathValue("id"), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		s.logger.Error("get submission", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// StatsResponse is the JSON response for GET /api/stats.
type StatsResponse struct {
	Nodes map[string]int64 `json:"nodes"`
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotFound, "board graph projection disabled")
		return
	}
	var counts map[string]int64
	err := s.breaker.Call(r.Context(), func(ctx context.Context) error {
		var err error
		counts, err = s.exporter.NodeCounts(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("board graph stats", "err", err)
		writeError(w, http.StatusServiceUnavailable, "board graph unavailable")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Nodes: counts})
}

// fanOut notifies the optional collaborators. Both are best-effort: a
// down broker or graph store never fails the upload.
func (s *server) fanOut(sub store.Submission, raw []byte) {
	if s.events == nil && s.exporter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.events != nil {
			evt := ValidatedEvent{ID: sub.ID, Status: sub.Report.Status, CreatedAt: sub.CreatedAt}
			if err := natsutil.Publish(ctx, s.events, s.subject, evt); err != nil {
				s.logger.Warn("publish validated event", "id", sub.ID, "err", err)
			}
		}

		if s.exporter != nil {
			doc, err := netlist.Decode(raw)
			if err != nil {
				return
			}
			err = s.breaker.Call(ctx, func(ctx context.Context) error {
				return s.exporter.Project(ctx, sub.ID, doc)
			})
			if err != nil {
				s.logger.Warn("project board graph", "id", sub.ID, "err", err)
			}
		}
	}()
}

// readPayload accepts the document either as the raw request body or as a
// multipart "file" field.
func readPayload(r *http.Request) ([]byte, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxPayload); err != nil {
			return nil, errors.New("invalid multipart form")
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New(`multipart upload requires a "file" field`)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.New("read upload")
		}
		if len(raw) == 0 {
			return nil, errors.New("empty document")
		}
		return raw, nil
	}

	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxPayload))
	if err != nil {
		return nil, errors.New("read request body")
	}
	if len(raw) == 0 {
		return nil, errors.New("empty document")
	}
	return raw, nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
