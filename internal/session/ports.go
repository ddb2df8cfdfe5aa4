package session

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/factory"
)

// Persister stores and reloads the serialized deployment document. The
// session saves after every registry mutation and once more at finish.
type Persister interface {
	Save(ctx context.Context, doc []byte) error
	LoadLatest(ctx context.Context) ([]byte, error)
}

// OperatorProvisioner grants the harness its operator slot on the factory.
// Production uses the factory owner's key; tests substitute their own.
type OperatorProvisioner interface {
	Provision(ctx context.Context, api factory.API, operator common.Address) error
}

// OwnerProvisioner provisions operators with the factory owner's
// authority and a fixed grant duration.
type OwnerProvisioner struct {
	Delay uint64
}

// Provision implements OperatorProvisioner.
func (p *OwnerProvisioner) Provision(ctx context.Context, api factory.API, operator common.Address) error {
	delay := p.Delay
	if delay == 0 {
		delay = DefaultOperatorDelay
	}
	return api.SetOperator(ctx, api.Owner(), operator, delay)
}

// DefaultOperatorDelay is how long a session's operator grant lives when
// the provisioner does not override it.
const DefaultOperatorDelay = 24 * 60 * 60
