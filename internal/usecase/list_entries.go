package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/domain/models"
	"github.com/baolabs/bao-deploy/internal/session"
)

// ListEntriesParams contains parameters for listing registry entries
type ListEntriesParams struct {
	// Category filters to one category when set.
	Category domain.Category
}

// EntryListResult contains the result of listing entries
type EntryListResult struct {
	Entries []*models.Entry
	Summary EntrySummary
}

// EntrySummary provides summary statistics
type EntrySummary struct {
	Total      int
	ByCategory map[domain.Category]int
}

// ListEntries is the use case for listing deployed registry entries
type ListEntries struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewListEntries creates a new ListEntries use case
func NewListEntries(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *ListEntries {
	return &ListEntries{config: cfg, sess: sess, sink: sink}
}

// Run executes the list entries use case
func (uc *ListEntries) Run(ctx context.Context, params ListEntriesParams) (*EntryListResult, error) {
	entries := uc.sess.Entries()
	if params.Category != "" {
		entries = lo.Filter(entries, func(e *models.Entry, _ int) bool {
			return e.Category == params.Category
		})
	}

	// Sort for consistent output
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Key < entries[j].Key
	})

	grouped := lo.GroupBy(entries, func(e *models.Entry) domain.Category {
		return e.Category
	})
	summary := EntrySummary{
		Total:      len(entries),
		ByCategory: lo.MapValues(grouped, func(es []*models.Entry, _ domain.Category) int { return len(es) }),
	}

	return &EntryListResult{Entries: entries, Summary: summary}, nil
}
