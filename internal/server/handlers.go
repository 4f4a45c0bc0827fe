package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
	"github.com/avdeenko/cryptoflow/backend/internal/flowgraph"
	"github.com/avdeenko/cryptoflow/backend/internal/service"
	"github.com/avdeenko/cryptoflow/backend/internal/store"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger         *slog.Logger
	analyzer       *service.Analyzer
	store          *store.WorkbookStore
	maxUploadBytes int64
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, analyzer *service.Analyzer, workbooks *store.WorkbookStore, maxUploadBytes int64) *APIHandlers {
	return &APIHandlers{
		logger:         logger,
		analyzer:       analyzer,
		store:          workbooks,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *APIHandlers) handleWorkbooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	h.uploadWorkbook(w, r)
}

// handleWorkbook dispatches /workbooks/{id} and /workbooks/{id}/graph.
func (h *APIHandlers) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/workbooks/"), "/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "workbook ID is required")
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.getWorkbook(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.deleteWorkbook(w, r, id)
	case sub == "graph" && r.Method == http.MethodGet:
		h.getGraph(w, r, id)
	case sub == "" || sub == "graph":
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	default:
		http.NotFound(w, r)
	}
}

type uploadRequest struct {
	Sheets []service.Sheet `json:"sheets"`
}

type uploadResponse struct {
	ID       string            `json:"id"`
	Workbook *service.Workbook `json:"workbook"`
}

func (h *APIHandlers) uploadWorkbook(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	workbook, err := h.analyzer.Parse(r.Context(), req.Sheets)
	if err != nil {
		if errors.Is(err, service.ErrEmptyWorkbook) {
			writeError(w, http.StatusBadRequest, "workbook contains no sheets")
			return
		}
		h.logger.Error("failed to parse workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to parse workbook")
		return
	}

	id := h.store.Put(workbook)
	respondJSON(w, http.StatusCreated, uploadResponse{ID: id, Workbook: workbook})
}

func (h *APIHandlers) getWorkbook(w http.ResponseWriter, _ *http.Request, id string) {
	workbook, err := h.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "workbook not found")
		return
	}
	respondJSON(w, http.StatusOK, workbook)
}

func (h *APIHandlers) deleteWorkbook(w http.ResponseWriter, _ *http.Request, id string) {
	if err := h.store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "workbook not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *APIHandlers) getGraph(w http.ResponseWriter, r *http.Request, id string) {
	workbook, err := h.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "workbook not found")
		return
	}

	query := r.URL.Query()
	stages, err := domain.ParseStages(query.Get("stages"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.analyzer.BuildGraph(workbook, service.BuildParams{
		Case:           query.Get("case"),
		Exchange:       query.Get("exchange"),
		Stages:         stages,
		CurrencyFilter: query.Get("currency"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCase), errors.Is(err, flowgraph.ErrUnknownExchange):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("failed to build graph", "error", err, "workbookId", id)
			writeError(w, http.StatusInternalServerError, "failed to build graph")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// decodeJSON reads the request body into dst, enforcing the upload size cap.
// It writes the error response itself and reports whether decoding succeeded.
func (h *APIHandlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	defer body.Close()

	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
