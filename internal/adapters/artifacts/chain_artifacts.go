package artifacts

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/chain"
)

// Well-known artifact names the harness itself depends on.
const (
	BootstrapStubArtifact = "BootstrapStub"
	ERC1967ProxyArtifact  = "ERC1967Proxy"
)

// ChainArtifacts implements chain.Artifacts on top of the artifact
// repository: base creation bytecode from disk, constructor arguments
// ABI-appended here.
type ChainArtifacts struct {
	repo *FileRepository
}

// NewChainArtifacts creates the artifact source for real networks.
func NewChainArtifacts(repo *FileRepository) *ChainArtifacts {
	return &ChainArtifacts{repo: repo}
}

// BootstrapStub implements chain.Artifacts. The stub takes its owner as
// the single constructor argument.
func (a *ChainArtifacts) BootstrapStub(owner common.Address) []byte {
	base := a.mustLoad(BootstrapStubArtifact)
	return append(base, padAddress(owner)...)
}

// ERC1967Proxy implements chain.Artifacts. Constructor signature is
// (address implementation, bytes data).
func (a *ChainArtifacts) ERC1967Proxy(implementation common.Address, data []byte) []byte {
	base := a.mustLoad(ERC1967ProxyArtifact)
	out := append(base, padAddress(implementation)...)
	out = append(out, padUint(64)...) // offset of bytes after two words
	out = append(out, padUint(uint64(len(data)))...)
	out = append(out, data...)
	if rem := len(data) % 32; rem != 0 {
		out = append(out, make([]byte, 32-rem)...)
	}
	return out
}

// mustLoad panics on a missing harness artifact. These two artifacts are
// part of the tool's own distribution; their absence is a packaging bug,
// not a runtime condition.
func (a *ChainArtifacts) mustLoad(name string) []byte {
	art, err := a.repo.Load(context.Background(), name)
	if err != nil {
		panic(fmt.Sprintf("missing required artifact %s: %v", name, err))
	}
	return append([]byte(nil), art.InitCode...)
}

func padAddress(a common.Address) []byte {
	word := make([]byte, 32)
	copy(word[12:], a.Bytes())
	return word
}

func padUint(n uint64) []byte {
	word := make([]byte, 32)
	for i := 0; n > 0; i++ {
		word[31-i] = byte(n & 0xff)
		n >>= 8
	}
	return word
}

var _ chain.Artifacts = (*ChainArtifacts)(nil)
