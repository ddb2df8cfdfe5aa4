package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/domain/models"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectEntry selects a registry entry from a list
func (s *SelectorAdapter) SelectEntry(ctx context.Context, entries []*models.Entry, prompt string) (*models.Entry, error) {
	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries provided for selection")
	}
	if len(entries) == 1 {
		return entries[0], nil
	}

	options := formatEntryOptions(entries)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return entries[index], nil
}

// formatEntryOptions creates display strings for entry selection
func formatEntryOptions(entries []*models.Entry) []string {
	options := make([]string, len(entries))
	for i, e := range entries {
		name := color.New(color.FgWhite, color.Bold).Sprint(e.Key)
		options[i] = fmt.Sprintf("%s %s (%s)", name, e.Address.Hex(), e.Category)
	}
	return options
}

// createFuzzySearchFunc builds the promptui search callback
func createFuzzySearchFunc(options []string) func(string, int) bool {
	return func(input string, index int) bool {
		if strings.TrimSpace(input) == "" {
			return true
		}
		matches := fuzzy.Find(input, options)
		for _, m := range matches {
			if m.Index == index {
				return true
			}
		}
		return false
	}
}

var _ usecase.EntrySelector = (*SelectorAdapter)(nil)
