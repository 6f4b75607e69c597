package insights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store"
)

// Service coordinates the explain flow: cache lookup, per-key in-flight
// de-duplication, grounding payload assembly, rate-limited reasoning call,
// strict response validation, and the cache write on success. Reasoning
// failures propagate as typed errors and are never written to the cache, so
// the next request retries the call in full.
type Service struct {
	repo   store.Repository
	gen    Generator
	cache  *Cache
	spacer *CallSpacer
	group  singleflight.Group
	log    zerolog.Logger
}

// NewService wires the explain flow components together.
func NewService(repo store.Repository, gen Generator, cache *Cache, spacer *CallSpacer, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		gen:    gen,
		cache:  cache,
		spacer: spacer,
		log:    log,
	}
}

// Payload assembles the grounding payload for one (dataset, horizon) pair
// from the repository's current transaction snapshot.
func (s *Service) Payload(ctx context.Context, datasetID string, horizon int) (GroundingPayload, error) {
	txs, err := s.repo.ListTransactions(ctx, datasetID)
	if err != nil {
		return GroundingPayload{}, err
	}
	return BuildGroundingPayload(datasetID, txs, horizon), nil
}

// Explain returns the narrative insights for one (dataset, horizon) pair,
// serving from the cache when possible. Concurrent misses for the same key
// share a single outbound call and a single cache write.
func (s *Service) Explain(ctx context.Context, datasetID string, horizon int) (*domain.AiInsights, error) {
	key := Key(datasetID, horizon)

	if ins, ok := s.cache.Get(key); ok {
		s.log.Debug().Str("key", key).Msg("Insight cache hit")
		return ins, nil
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while this caller
		// was queued behind the flight group.
		if ins, ok := s.cache.Get(key); ok {
			return ins, nil
		}

		payload, err := s.Payload(ctx, datasetID, horizon)
		if err != nil {
			return nil, err
		}

		grounded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("Explain: marshal payload: %w", err)
		}

		if err := s.spacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("Explain: waiting for call slot: %w", err)
		}

		raw, err := s.gen.Generate(ctx, string(grounded))
		if err != nil {
			return nil, err
		}

		ins, err := ParseInsights(raw)
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, ins)
		return ins, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.log.Debug().Str("key", key).Msg("Explain call de-duplicated")
	}
	return v.(*domain.AiInsights), nil
}
