package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/isbaseurl/internal/store"
)

type ResultsHandler struct {
	store store.Store
}

func NewResultsHandler(s store.Store) *ResultsHandler {
	return &ResultsHandler{store: s}
}

// Get returns one recorded evaluation.
// GET /api/v1/results/{id}
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	e, err := h.store.GetEvaluation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// List returns the most recent evaluations.
// GET /api/v1/results?limit=n
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.store.ListEvaluations(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*store.Evaluation{}
	}
	writeJSON(w, http.StatusOK, list)
}
