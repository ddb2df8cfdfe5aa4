package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	// DeploymentsDirEnv overrides where deployment documents land.
	DeploymentsDirEnv = "BAO_DEPLOYMENTS_DIR"

	deploymentsDir = "deployments"
	resultsDir     = "results"
)

// FilePersister writes the deployment document to disk after every
// registry mutation. Production layout is
// deployments/<salt>/<network>/<timestamp>.json so reruns of the same
// salt on the same network sit next to each other; test runs use a flat
// results/ directory instead.
type FilePersister struct {
	mu   sync.Mutex
	dir  string
	name string

	// snapshot counter for optional sequence captures
	seq int
}

// FileOptions configures a FilePersister.
type FileOptions struct {
	// Root is the project root. The deployments directory is created
	// beneath it unless DeploymentsDirEnv overrides the location.
	Root string
	// SaltString and Network select the production subdirectory.
	SaltString string
	Network    string
	// Timestamp names the document file (unix seconds of session start).
	Timestamp uint64
	// TestRun switches to the flat results/ layout.
	TestRun bool
}

// NewFilePersister creates the target directory and returns a persister
// bound to one document path.
func NewFilePersister(opts FileOptions) (*FilePersister, error) {
	base := filepath.Join(opts.Root, deploymentsDir)
	if env := os.Getenv(DeploymentsDirEnv); env != "" {
		base = env
	}

	var dir, name string
	if opts.TestRun {
		dir = filepath.Join(base, resultsDir)
		name = fmt.Sprintf("%s-%s-%d.json", pathSafe(opts.SaltString), pathSafe(opts.Network), opts.Timestamp)
	} else {
		dir = filepath.Join(base, pathSafe(opts.SaltString), pathSafe(opts.Network))
		name = fmt.Sprintf("%d.json", opts.Timestamp)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create deployments directory: %w", err)
	}
	return &FilePersister{dir: dir, name: name}, nil
}

// Path returns the document path this persister writes to.
func (p *FilePersister) Path() string {
	return filepath.Join(p.dir, p.name)
}

// Save writes the document atomically: temp file in the same directory,
// then rename.
func (p *FilePersister) Save(ctx context.Context, doc []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path := p.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0644); err != nil {
		return fmt.Errorf("failed to write deployment document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize deployment document: %w", err)
	}
	return nil
}

// Snapshot writes an additional numbered copy of the document alongside
// the main one. Useful when diagnosing which step produced which state.
func (p *FilePersister) Snapshot(ctx context.Context, doc []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	base := strings.TrimSuffix(p.name, ".json")
	path := filepath.Join(p.dir, fmt.Sprintf("%s.%04d.json", base, p.seq))
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// LoadLatest reads the newest document in the persister's directory.
// Timestamps name the files, so lexicographic order on the zero-free
// numeric names matches chronological order within a directory.
func (p *FilePersister) LoadLatest(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployments directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || isSnapshotName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocument, p.dir)
	}
	sort.Slice(names, func(i, j int) bool {
		// longer numeric names are larger timestamps
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
	latest := names[len(names)-1]
	data, err := os.ReadFile(filepath.Join(p.dir, latest))
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment document: %w", err)
	}
	return data, nil
}

// isSnapshotName reports whether a file name carries the numbered
// sequence segment Snapshot appends. Snapshot copies must never shadow
// the main document when picking the latest.
func isSnapshotName(name string) bool {
	base := strings.TrimSuffix(name, ".json")
	i := strings.LastIndexByte(base, '.')
	if i < 0 || len(base)-i-1 != 4 {
		return false
	}
	for _, c := range base[i+1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// pathSafe flattens a salt or network string into a single path segment.
func pathSafe(s string) string {
	if s == "" {
		return "default"
	}
	r := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "_")
	return r.Replace(s)
}
