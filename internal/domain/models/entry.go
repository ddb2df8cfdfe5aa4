package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/domain"
)

// Entry is a registry row read back out of the typed data store for
// display and for the finish-time ownership sweep. It is a projection,
// not the storage format: the store itself holds the flattened dotted
// keys.
type Entry struct {
	Key          string          `json:"key"`
	Address      common.Address  `json:"address"`
	ContractType string          `json:"contractType"`
	ContractPath string          `json:"contractPath"`
	Deployer     common.Address  `json:"deployer"`
	BlockNumber  uint64          `json:"blockNumber"`
	Category     domain.Category `json:"category"`

	// Proxy-only fields
	Factory        common.Address `json:"factory,omitempty"`
	Salt           common.Hash    `json:"salt,omitempty"`
	SaltString     string         `json:"saltString,omitempty"`
	Implementation common.Address `json:"implementation,omitempty"`
}

// DisplayName returns the short key with its category for human output.
func (e *Entry) DisplayName() string {
	return fmt.Sprintf("%s (%s)", e.Key, e.Category)
}

// IsProxy reports whether the entry should be considered by the finish sweep.
func (e *Entry) IsProxy() bool {
	return e.Category.IsProxy()
}
