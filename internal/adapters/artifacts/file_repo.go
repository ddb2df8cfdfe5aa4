package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/domain/models"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// ArtifactsDir is where compiled init-code blobs live, relative to the
// project root. Each artifact is one <name>.hex file containing 0x-hex
// creation bytecode.
const ArtifactsDir = "artifacts"

// FileRepository loads artifacts from the project's artifacts directory
type FileRepository struct {
	dir string
}

// NewFileRepository creates a repository rooted at the project
func NewFileRepository(cfg *config.RuntimeConfig) *FileRepository {
	return &FileRepository{dir: filepath.Join(cfg.ProjectRoot, ArtifactsDir)}
}

// Load implements usecase.ArtifactRepository
func (r *FileRepository) Load(ctx context.Context, ref string) (*models.Artifact, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty artifact reference")
	}
	path := filepath.Join(r.dir, ref+".hex")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %q: %w", ref, err)
	}
	hex := strings.TrimSpace(string(data))
	initCode := common.FromHex(hex)
	if len(initCode) == 0 {
		return nil, fmt.Errorf("artifact %q contains no bytecode", ref)
	}
	return &models.Artifact{
		Name:       ref,
		SourcePath: filepath.Join(ArtifactsDir, ref+".hex"),
		InitCode:   initCode,
	}, nil
}

// List implements usecase.ArtifactRepository
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read artifacts directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hex") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".hex"))
	}
	sort.Strings(names)
	return names, nil
}

var _ usecase.ArtifactRepository = (*FileRepository)(nil)
