package usecase

import (
	"context"

	"github.com/baolabs/bao-deploy/internal/domain/models"
)

// ArtifactRepository loads compiled contract artifacts by reference.
type ArtifactRepository interface {
	// Load resolves an artifact reference, e.g. a contract name.
	Load(ctx context.Context, ref string) (*models.Artifact, error)
	// List returns the available artifact names.
	List(ctx context.Context) ([]string, error)
}

// EntrySelector handles interactive selection when a query matches more
// than one registry entry.
type EntrySelector interface {
	SelectEntry(ctx context.Context, entries []*models.Entry, prompt string) (*models.Entry, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
