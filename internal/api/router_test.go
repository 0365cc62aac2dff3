package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/isbaseurl/internal/config"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
	"github.com/MikeSquared-Agency/isbaseurl/internal/store"
)

// MockStore implements store.Store for failure paths.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveEvaluation(ctx context.Context, e *store.Evaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockStore) GetEvaluation(ctx context.Context, id uuid.UUID) (*store.Evaluation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Evaluation), args.Error(1)
}

func (m *MockStore) ListEvaluations(ctx context.Context, limit int) ([]*store.Evaluation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Evaluation), args.Error(1)
}

func (m *MockStore) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               8610,
			MetricsPort:        8611,
			AdminToken:         "admin-secret",
			MaxBatch:           3,
			RateLimitPerMinute: 1000,
		},
		Scoring: config.ScoringConfig{
			CheckURLValid: true,
			Weights:       scoring.DefaultWeights(),
		},
	}
}

func newTestRouter(s store.Store, cfg *config.Config) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := scoring.NewScorer(cfg.Scoring.Weights, cfg.Scoring.CheckURLValid, logger)
	return NewRouter(sc, s, cfg, logger)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer admin-secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestScorePost(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score", `{"url":"http://api.twitter.com/v1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[ScoreResponse](t, w)
	assert.Equal(t, "http://api.twitter.com/v1", resp.CandidateURL)
	assert.Equal(t, 1.0, resp.Score)
	assert.True(t, resp.Features.Positive.EndsWithNumber)
	assert.Empty(t, resp.ID)
	assert.Empty(t, resp.Signals)
}

func TestScorePostFixedFeatureKeys(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score", `{"url":"http://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw struct {
		Features struct {
			Positive map[string]bool `json:"positive"`
			Negative map[string]bool `json:"negative"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Len(t, raw.Features.Positive, 4)
	assert.Len(t, raw.Features.Negative, 7)
}

func TestScorePostNotApplicable(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	tests := map[string]string{
		"array":     `{"url":[1,2,3]}`,
		"number":    `{"url":42}`,
		"missing":   `{}`,
		"not a url": `{"url":"not a url"}`,
		"private":   `{"url":"http://192.168.1.1/api"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, h, "POST", "/api/v1/score", body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, errNotApplicable, decodeBody[map[string]string](t, w)["error"])
		})
	}
}

func TestScorePostSkipCheck(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score", `{"url":"not a url","checkUrlValid":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not a url", decodeBody[ScoreResponse](t, w).CandidateURL)
}

func TestScorePostMalformed(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScorePostWeights(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score",
		`{"url":"http://api.twitter.com/v1","weights":{"positive":{"containsApiSubstring":2}},"explain":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[ScoreResponse](t, w)
	assert.InDelta(t, 1.25, resp.Score, 1e-9)
	require.Len(t, resp.Signals, 11)
	assert.Equal(t, 2.0, resp.Signals[0].Weight)
	assert.InDelta(t, 0.5, resp.Signals[0].Contribution, 1e-9)
}

func TestScorePostNegativeWeightRejected(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score",
		`{"url":"http://api.twitter.com/v1","weights":{"negative":{"hasFragment":-1}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScorePostRecords(t *testing.T) {
	ms := store.NewMemoryStore()
	h := newTestRouter(ms, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score", `{"url":"https://api.example.com/v2","record":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[ScoreResponse](t, w)
	require.NotEmpty(t, resp.ID)

	w = doRequest(t, h, "GET", "/api/v1/results/"+resp.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	e := decodeBody[store.Evaluation](t, w)
	assert.Equal(t, "https://api.example.com/v2", e.CandidateURL)
	assert.Equal(t, store.SourceAPI, e.Source)
	assert.Equal(t, resp.Score, e.Score)
}

func TestScorePostRecordFailure(t *testing.T) {
	ms := new(MockStore)
	ms.On("SaveEvaluation", mock.Anything, mock.Anything).Return(errors.New("db down"))
	h := newTestRouter(ms, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score", `{"url":"https://api.example.com/v2","record":true}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	ms.AssertExpectations(t)
}

func TestScoreGet(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "GET", "/api/v1/score?url=http://www.example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[ScoreResponse](t, w)
	assert.True(t, resp.Features.Negative.IsHomepage)
	assert.InDelta(t, -1.0/7, resp.Score, 1e-9)

	w = doRequest(t, h, "GET", "/api/v1/score?url=nope", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(t, h, "GET", "/api/v1/score?url=nope&checkUrlValid=false&explain=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[ScoreResponse](t, w).Signals, 11)

	w = doRequest(t, h, "GET", "/api/v1/score", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, "GET", "/api/v1/score?url=x&checkUrlValid=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreBatch(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score/batch",
		`{"urls":["http://api.twitter.com/v1",[1,2,3],"http://www.example.com"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[BatchScoreResponse](t, w)
	require.Len(t, resp.Results, 3)
	require.NotNil(t, resp.Results[0])
	assert.Equal(t, 1.0, resp.Results[0].Score)
	assert.Nil(t, resp.Results[1])
	require.NotNil(t, resp.Results[2])
	assert.True(t, resp.Results[2].Features.Negative.IsHomepage)
}

func TestScoreBatchLimits(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "POST", "/api/v1/score/batch", `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, "POST", "/api/v1/score/batch", `{"urls":["a","b","c","d"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeaturesList(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.Weights.Negative.IsHomepage = 3
	h := newTestRouter(nil, cfg)

	w := doRequest(t, h, "GET", "/api/v1/features", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Features      []FeatureInfo `json:"features"`
		PositiveCount int           `json:"positiveCount"`
		NegativeCount int           `json:"negativeCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.PositiveCount)
	assert.Equal(t, 7, body.NegativeCount)
	require.Len(t, body.Features, 11)
	last := body.Features[len(body.Features)-1]
	assert.Equal(t, "isHomepage", string(last.Name))
	assert.Equal(t, 3.0, last.Weight)
	assert.NotEmpty(t, last.Description)
}

func TestResults(t *testing.T) {
	ms := store.NewMemoryStore()
	h := newTestRouter(ms, testConfig())

	for _, u := range []string{"http://api.twitter.com/v1", "https://api.example.com/v2"} {
		w := doRequest(t, h, "POST", "/api/v1/score", `{"url":"`+u+`","record":true}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(t, h, "GET", "/api/v1/results?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]store.Evaluation](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "https://api.example.com/v2", list[0].CandidateURL)

	w = doRequest(t, h, "GET", "/api/v1/results?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, "GET", "/api/v1/results/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, "GET", "/api/v1/results/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultsRequireAdminToken(t *testing.T) {
	h := newTestRouter(store.NewMemoryStore(), testConfig())

	req := httptest.NewRequest("GET", "/api/v1/results", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResultsStoreError(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListEvaluations", mock.Anything, store.DefaultListLimit).Return(nil, errors.New("db down"))
	h := newTestRouter(ms, testConfig())

	w := doRequest(t, h, "GET", "/api/v1/results", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	ms.AssertExpectations(t)
}

func TestResultsNotMountedWithoutStore(t *testing.T) {
	h := newTestRouter(nil, testConfig())

	w := doRequest(t, h, "GET", "/api/v1/results", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsRouter(t *testing.T) {
	h := NewMetricsRouter()

	w := doRequest(t, h, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])

	w = doRequest(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
