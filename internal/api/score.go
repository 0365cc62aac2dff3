package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
	"github.com/MikeSquared-Agency/isbaseurl/internal/store"
)

const errNotApplicable = "not applicable"

type ScoreHandler struct {
	scorer   *scoring.Scorer
	store    store.Store
	validate *validator.Validate
	maxBatch int
	record   bool
	logger   *slog.Logger
}

func NewScoreHandler(sc *scoring.Scorer, s store.Store, maxBatch int, record bool, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scorer:   sc,
		store:    s,
		validate: validator.New(),
		maxBatch: maxBatch,
		record:   record,
		logger:   logger,
	}
}

// ScoreOptions are shared by single and batch requests.
type ScoreOptions struct {
	CheckURLValid *bool            `json:"checkUrlValid,omitempty"`
	Weights       *scoring.Weights `json:"weights,omitempty"`
	Record        *bool            `json:"record,omitempty"`
	Explain       bool             `json:"explain,omitempty"`
}

// ScoreRequest carries the candidate undecoded so that any JSON value is
// accepted and non-strings are reported as not applicable.
type ScoreRequest struct {
	URL json.RawMessage `json:"url"`
	ScoreOptions
}

type BatchScoreRequest struct {
	URLs []json.RawMessage `json:"urls" validate:"required,min=1"`
	ScoreOptions
}

type ScoreResponse struct {
	ID string `json:"id,omitempty"`
	scoring.Result
	Signals []scoring.SignalResult `json:"signals,omitempty"`
}

type BatchScoreResponse struct {
	Results []*ScoreResponse `json:"results"`
}

// Post scores one candidate.
// POST /api/v1/score
func (h *ScoreHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.overrides(req.ScoreOptions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidate, err := decodeCandidate(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid url value")
		return
	}
	res, ok := h.scorer.Score(candidate, o)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, errNotApplicable)
		return
	}

	resp, err := h.respond(r, res, o, req.ScoreOptions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get scores the url query parameter with the scorer's default weights.
// GET /api/v1/score?url=...&checkUrlValid=false&explain=true
func (h *ScoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("url") {
		writeError(w, http.StatusBadRequest, "url query parameter required")
		return
	}

	var opts ScoreOptions
	if v := q.Get("checkUrlValid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid checkUrlValid")
			return
		}
		opts.CheckURLValid = &b
	}
	if v := q.Get("explain"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid explain")
			return
		}
		opts.Explain = b
	}
	noRecord := false
	opts.Record = &noRecord

	o, _ := h.overrides(opts)
	res, ok := h.scorer.Score(q.Get("url"), o)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, errNotApplicable)
		return
	}
	resp, err := h.respond(r, res, o, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Batch scores candidates in order. Entries that are not applicable are null.
// POST /api/v1/score/batch
func (h *ScoreHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "urls must be a non-empty array")
		return
	}
	if len(req.URLs) > h.maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many urls (max %d)", h.maxBatch))
		return
	}
	o, err := h.overrides(req.ScoreOptions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates := make([]any, len(req.URLs))
	for i, raw := range req.URLs {
		c, err := decodeCandidate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid url value at index %d", i))
			return
		}
		candidates[i] = c
	}

	results, err := h.scorer.ScoreAll(r.Context(), candidates, o)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	out := BatchScoreResponse{Results: make([]*ScoreResponse, len(results))}
	for i, res := range results {
		if res == nil {
			continue
		}
		resp, err := h.respond(r, *res, o, req.ScoreOptions)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Results[i] = resp
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ScoreHandler) overrides(opts ScoreOptions) (scoring.Overrides, error) {
	o := scoring.Overrides{CheckURLValid: opts.CheckURLValid}
	if opts.Weights != nil {
		if err := h.validate.Struct(opts.Weights); err != nil {
			return o, fmt.Errorf("invalid weights: %w", err)
		}
		if err := opts.Weights.Validate(); err != nil {
			return o, err
		}
		o.Weights = *opts.Weights
	}
	return o, nil
}

func (h *ScoreHandler) respond(r *http.Request, res scoring.Result, o scoring.Overrides, opts ScoreOptions) (*ScoreResponse, error) {
	weights := h.scorer.Options(o).Weights
	resp := &ScoreResponse{Result: res}
	if opts.Explain {
		resp.Signals = scoring.Breakdown(res.Features, weights)
	}

	record := h.record
	if opts.Record != nil {
		record = *opts.Record
	}
	if !record || h.store == nil {
		return resp, nil
	}

	e := store.NewEvaluation(res, weights, store.SourceAPI)
	if err := h.store.SaveEvaluation(r.Context(), e); err != nil {
		h.logger.Error("failed to record evaluation", "candidate", res.CandidateURL, "error", err)
		return nil, fmt.Errorf("record evaluation: %w", err)
	}
	resp.ID = e.ID.String()
	return resp, nil
}

func decodeCandidate(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
