// Package selection implements the anti-repetition draw: priority offers are
// consumed like a queue, general offers rotate forever, and the recently
// dispatched fingerprints are avoided on a best-effort basis.
package selection

import (
	"math/rand/v2"

	"offerbot/internal/catalog"
	"offerbot/logger"
)

// Source tags which pool a pick came from.
type Source string

const (
	// SourcePriority marks a consumed must-show-once offer
	SourcePriority Source = "priority"
	// SourceGeneral marks a reusable rotation offer
	SourceGeneral Source = "general"
)

// Pick is the result of one draw.
type Pick struct {
	Offer  catalog.Offer
	Source Source
}

// Store persists catalog mutations made by the engine.
type Store interface {
	Save(catalog.Catalog) error
}

// Engine performs the draw. It mutates the catalog it is handed and persists
// priority consumption immediately, so a crash after a draw never replays a
// priority offer.
type Engine struct {
	store   Store
	history History
	log     *logger.Logger
}

// NewEngine creates a selection engine.
func NewEngine(store Store, history History) *Engine {
	return &Engine{
		store:   store,
		history: history,
		log:     logger.ForSelection(),
	}
}

// SelectAndConsume draws one offer. The priority pool is scanned first from
// a random start index, wrapping around, for the first entry not in the
// recent history; the entry is removed and the catalog saved before
// returning. When the priority pool is empty the general pool is scanned the
// same way but never mutated. When every candidate is in the history the
// entry at the random start index is taken anyway; repetition beats
// blocking. A nil pick means both pools are empty.
//
// The returned error reports a failed save-back; the pick is still valid.
func (e *Engine) SelectAndConsume(cat *catalog.Catalog) (*Pick, error) {
	if len(cat.Priority) > 0 {
		idx := e.scan(cat.Priority)
		offer := cat.Priority[idx]
		cat.Priority = append(cat.Priority[:idx], cat.Priority[idx+1:]...)

		e.remember(offer)
		err := e.store.Save(*cat)
		return &Pick{Offer: offer, Source: SourcePriority}, err
	}

	if len(cat.General) > 0 {
		idx := e.scan(cat.General)
		offer := cat.General[idx]

		e.remember(offer)
		return &Pick{Offer: offer, Source: SourceGeneral}, nil
	}

	return nil, nil
}

// scan walks the pool from a random start looking for a non-recent entry,
// falling back to the start index when all candidates are recent.
func (e *Engine) scan(pool []catalog.Offer) int {
	start := rand.IntN(len(pool))
	for i := 0; i < len(pool); i++ {
		idx := (start + i) % len(pool)
		if !e.history.Contains(Fingerprint(pool[idx])) {
			return idx
		}
	}
	return start
}

// remember records a fingerprint; history failures are logged, never fatal.
func (e *Engine) remember(offer catalog.Offer) {
	if err := e.history.Add(Fingerprint(offer)); err != nil {
		e.log.Warn().Err(err).Msg("failed to record selection history")
	}
}
