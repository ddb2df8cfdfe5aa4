package chain

import "github.com/ethereum/go-ethereum/common"

// Artifacts supplies the init code for the two fixed contracts the harness
// deploys itself: the one-time UUPS bootstrap stub and the ERC1967 proxy
// shell. Real networks load compiled Foundry artifacts; the simulator
// synthesizes recognizable blobs.
type Artifacts interface {
	// BootstrapStub returns init code for the throwaway UUPS implementation
	// whose owner() answers with the given address.
	BootstrapStub(owner common.Address) []byte

	// ERC1967Proxy returns init code for a proxy pointing at implementation,
	// optionally calling it with data after construction.
	ERC1967Proxy(implementation common.Address, data []byte) []byte
}
