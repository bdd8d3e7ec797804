package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oraculx/financewise/internal/core"
	"github.com/oraculx/financewise/internal/services"
	"github.com/oraculx/financewise/internal/storage"
)

type (
	submitRequest struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		Recurring   bool   `json:"recurring"`
	}

	submitResponse struct {
		Status         services.SubmitStatus `json:"status"`
		Classification core.Classification   `json:"classification,omitempty"`
		Transaction    core.Transaction      `json:"transaction"`
	}

	stateResponse struct {
		Transactions []core.Transaction `json:"transactions"`
		Recurring    []string           `json:"recurring"`
		Totals       core.Totals        `json:"totals"`
	}

	importRequest struct {
		Data     string `json:"data"` // base64-encoded file bytes
		MimeType string `json:"mimeType"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Transactions: s.tracker.Transactions(),
		Recurring:    s.tracker.Recurring(),
		Totals:       s.tracker.Totals(),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.tracker.Submit(r.Context(), services.SubmitInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    core.Category(req.Category),
		Type:        core.TxType(req.Type),
		Recurring:   req.Recurring,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	status := http.StatusOK
	if res.Status == services.Committed {
		status = http.StatusCreated
	}
	writeJSON(w, status, submitResponse{
		Status:         res.Status,
		Classification: res.Classification,
		Transaction:    res.Transaction,
	})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	tx, err := s.tracker.Confirm(r.Context())
	if errors.Is(err, services.ErrNothingPending) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Confirm failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Status: services.Committed, Transaction: tx})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	if err := s.tracker.Cancel(); errors.Is(err, services.ErrNothingPending) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	id := r.PathValue("id")
	err := s.tracker.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string][]string{"descriptions": s.tracker.Recurring()})
	case http.MethodDelete:
		desc := strings.TrimSpace(r.URL.Query().Get("desc"))
		if desc == "" {
			writeError(w, http.StatusBadRequest, "missing desc parameter")
			return
		}
		if err := s.tracker.RemoveRecurring(r.Context(), desc); err != nil {
			slog.ErrorContext(r.Context(), "Remove recurring failed", "error", err, "description", desc)
			writeError(w, http.StatusInternalServerError, "could not remove description")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	analysis, err := s.tracker.Analyze(r.Context())
	switch {
	case errors.Is(err, services.ErrNoTransactions):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrAnalysisInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		slog.ErrorContext(r.Context(), "Analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	default:
		writeJSON(w, http.StatusOK, analysis)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req importRequest
	body := io.LimitReader(r.Body, s.maxImportBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Data == "" || req.MimeType == "" {
		writeError(w, http.StatusBadRequest, "data and mimeType are required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data is not valid base64")
		return
	}

	imported, err := s.tracker.Import(r.Context(), data, req.MimeType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Import failed", "error", err, "mime_type", req.MimeType)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}
