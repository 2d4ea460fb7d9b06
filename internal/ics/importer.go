package ics

import (
	"context"
	"errors"
	"sync"

	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
)

// Adder receives imported sessions. *store.Store satisfies it.
type Adder interface {
	AddSession(model.Session)
}

// Importer appends sessions from ICS subscriptions to the store. The store
// is append-only, so the importer remembers what it already added and only
// appends new events; changed or removed upstream events are not reflected.
type Importer struct {
	fetcher *Fetcher
	sources []Source
	adder   Adder

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewImporter(fetcher *Fetcher, sources []Source, adder Adder) *Importer {
	return &Importer{
		fetcher: fetcher,
		sources: sources,
		adder:   adder,
		seen:    make(map[string]struct{}),
	}
}

// Refresh fetches and parses every source and appends unseen events. It
// returns how many sessions were added; per-source failures are joined into
// the error without stopping the other sources.
func (im *Importer) Refresh(ctx context.Context) (int, error) {
	if len(im.sources) == 0 {
		return 0, nil
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	results, fetchErrs := im.fetcher.FetchAll(ctx, im.sources)
	errs := append([]error(nil), fetchErrs...)

	added := 0
	for _, res := range results {
		items, err := ParseSessions(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics import: parse failed", err, "id", res.Source.ID)
			errs = append(errs, err)
			continue
		}
		for _, it := range items {
			if _, dup := im.seen[it.Key]; dup {
				continue
			}
			im.seen[it.Key] = struct{}{}
			im.adder.AddSession(it.Session)
			added++
		}
	}

	appLog.Info("ics import completed", "sources", len(im.sources), "added", added, "errors", len(errs))
	return added, errors.Join(errs...)
}
