package usecase

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/domain/models"
	"github.com/baolabs/bao-deploy/internal/session"
)

// ShowEntryParams contains parameters for showing one registry entry
type ShowEntryParams struct {
	// Query is an exact key or a fuzzy fragment, e.g. "token".
	Query string
}

// ShowEntryResult contains the matched entry
type ShowEntryResult struct {
	Entry *models.Entry
}

// ShowEntry is the use case for displaying a single deployment. Exact key
// matches win; otherwise the query is fuzzy-matched against all keys and
// ambiguity is resolved interactively or rejected.
type ShowEntry struct {
	config   *config.RuntimeConfig
	sess     *session.Session
	selector EntrySelector
	sink     ProgressSink
}

// NewShowEntry creates a new ShowEntry use case
func NewShowEntry(cfg *config.RuntimeConfig, sess *session.Session, selector EntrySelector, sink ProgressSink) *ShowEntry {
	return &ShowEntry{config: cfg, sess: sess, selector: selector, sink: sink}
}

// Run executes the show entry use case
func (uc *ShowEntry) Run(ctx context.Context, params ShowEntryParams) (*ShowEntryResult, error) {
	entries := uc.sess.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("no deployments recorded")
	}

	// Exact match first
	for _, e := range entries {
		if e.Key == params.Query {
			return &ShowEntryResult{Entry: e}, nil
		}
	}

	keys := lo.Map(entries, func(e *models.Entry, _ int) string { return e.Key })
	matches := fuzzy.Find(params.Query, keys)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no deployment matching %q", params.Query)
	}
	if len(matches) == 1 {
		return &ShowEntryResult{Entry: entries[matches[0].Index]}, nil
	}

	candidates := lo.Map(matches, func(m fuzzy.Match, _ int) *models.Entry {
		return entries[m.Index]
	})
	if uc.config.NonInteractive {
		names := lo.Map(candidates, func(e *models.Entry, _ int) string { return e.Key })
		return nil, fmt.Errorf("ambiguous query %q, matches: %v", params.Query, names)
	}
	selected, err := uc.selector.SelectEntry(ctx, candidates, fmt.Sprintf("Multiple matches for %q", params.Query))
	if err != nil {
		return nil, err
	}
	return &ShowEntryResult{Entry: selected}, nil
}
