package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// SessionMetadata is the session-level singleton recorded at Start and
// completed at Finish. Identity fields never change after creation.
type SessionMetadata struct {
	Deployer        common.Address `json:"deployer"`
	Owner           common.Address `json:"owner"`
	Network         string         `json:"network"`
	Version         string         `json:"version"`
	SaltString      string         `json:"saltString"`
	StartTimestamp  uint64         `json:"startTimestamp"`
	StartBlock      uint64         `json:"startBlock"`
	FinishTimestamp uint64         `json:"finishTimestamp"`
	FinishBlock     uint64         `json:"finishBlock"`
}
