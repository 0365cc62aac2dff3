package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/isbaseurl/internal/hermes"
	"github.com/MikeSquared-Agency/isbaseurl/internal/metrics"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
	"github.com/MikeSquared-Agency/isbaseurl/internal/store"
)

// Rejection reasons published on SubjectRejected.
const (
	ReasonInvalidEvent   = "invalid_event"
	ReasonInvalidWeights = "invalid_weights"
	ReasonNotApplicable  = "not_applicable"
)

const eventKindCandidate = "candidate"

// ErrNotApplicable is returned by HandleCandidate when the candidate was
// rejected rather than scored.
var ErrNotApplicable = errors.New("candidate not applicable")

// Broker scores candidates that arrive over hermes and publishes the results.
type Broker struct {
	store  store.Store
	hermes hermes.Client
	scorer *scoring.Scorer
	record bool
	logger *slog.Logger
}

// New creates a Broker. s may be nil, in which case nothing is recorded.
func New(s store.Store, h hermes.Client, sc *scoring.Scorer, record bool, logger *slog.Logger) *Broker {
	return &Broker{
		store:  s,
		hermes: h,
		scorer: sc,
		record: record,
		logger: logger,
	}
}

func (b *Broker) SetupSubscriptions() error {
	if b.hermes == nil {
		return nil
	}
	return b.hermes.Subscribe(hermes.SubjectCandidate, func(_ string, data []byte) {
		if _, err := b.HandleCandidate(context.Background(), data); err != nil && !errors.Is(err, ErrNotApplicable) {
			b.logger.Warn("candidate event failed", "error", err)
		}
	})
}

// HandleCandidate scores one CandidateEvent payload, records it when asked
// to and publishes either a scored or a rejected event.
func (b *Broker) HandleCandidate(ctx context.Context, data []byte) (*hermes.ScoredEvent, error) {
	var evt hermes.CandidateEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		b.reject(hermes.RejectedEvent{Reason: ReasonInvalidEvent})
		metrics.ObserveEvent(eventKindCandidate, "invalid")
		return nil, fmt.Errorf("decode candidate event: %w", err)
	}

	var candidate any
	if len(evt.URL) > 0 {
		if err := json.Unmarshal(evt.URL, &candidate); err != nil {
			b.reject(hermes.RejectedEvent{Reason: ReasonInvalidEvent, Source: evt.Source})
			metrics.ObserveEvent(eventKindCandidate, "invalid")
			return nil, fmt.Errorf("decode candidate url: %w", err)
		}
	}

	o := scoring.Overrides{CheckURLValid: evt.CheckURLValid}
	if evt.Weights != nil {
		if err := evt.Weights.Validate(); err != nil {
			b.reject(hermes.RejectedEvent{Reason: ReasonInvalidWeights, URL: evt.URL, Source: evt.Source})
			metrics.ObserveEvent(eventKindCandidate, "invalid")
			return nil, err
		}
		o.Weights = *evt.Weights
	}

	res, ok := b.scorer.Score(candidate, o)
	if !ok {
		b.reject(hermes.RejectedEvent{Reason: ReasonNotApplicable, URL: evt.URL, Source: evt.Source})
		metrics.ObserveEvent(eventKindCandidate, "rejected")
		return nil, ErrNotApplicable
	}

	out := &hermes.ScoredEvent{
		EvaluationID: uuid.New().String(),
		CandidateURL: res.CandidateURL,
		Score:        res.Score,
		Features:     res.Features,
		Source:       evt.Source,
	}

	record := b.record
	if evt.Record != nil {
		record = *evt.Record
	}
	if record && b.store != nil {
		e := store.NewEvaluation(res, b.scorer.Options(o).Weights, store.SourceHermes)
		if err := b.store.SaveEvaluation(ctx, e); err != nil {
			b.logger.Error("failed to record evaluation", "candidate", res.CandidateURL, "error", err)
		} else {
			out.EvaluationID = e.ID.String()
			out.Recorded = true
		}
	}

	if b.hermes != nil {
		if err := b.hermes.Publish(hermes.SubjectScored(out.EvaluationID), out); err != nil {
			b.logger.Warn("failed to publish scored event", "error", err)
		}
		if evt.ReplyTo != "" {
			if err := b.hermes.Publish(evt.ReplyTo, out); err != nil {
				b.logger.Warn("failed to publish reply", "subject", evt.ReplyTo, "error", err)
			}
		}
	}
	metrics.ObserveEvent(eventKindCandidate, "scored")
	b.logger.Info("candidate scored via hermes", "candidate", res.CandidateURL, "score", res.Score, "recorded", out.Recorded)
	return out, nil
}

func (b *Broker) reject(evt hermes.RejectedEvent) {
	if b.hermes == nil {
		return
	}
	if err := b.hermes.Publish(hermes.SubjectRejected, evt); err != nil {
		b.logger.Warn("failed to publish rejected event", "error", err)
	}
}
