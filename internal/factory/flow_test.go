package factory

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baolabs/bao-deploy/internal/chain"
	"github.com/baolabs/bao-deploy/internal/domain"
)

func TestSaltDerivation(t *testing.T) {
	t.Run("contract and proxy salts differ", func(t *testing.T) {
		c := ContractSalt("prod", "contracts.vault")
		p := ProxySalt("prod", "contracts.vault")
		assert.NotEqual(t, c, p)
	})

	t.Run("salts are plain keccak of the derivation string", func(t *testing.T) {
		assert.Equal(t, chain.Keccak([]byte("prod/contracts.vault/contract")),
			ContractSalt("prod", "contracts.vault"))
		assert.Equal(t, chain.Keccak([]byte("prod/contracts.vault/UUPS/proxy")),
			ProxySalt("prod", "contracts.vault"))
	})

	t.Run("system salt separates deployments", func(t *testing.T) {
		assert.NotEqual(t, ContractSalt("prod", "k"), ContractSalt("staging", "k"))
	})
}

func TestCommitmentHash(t *testing.T) {
	op := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	salt := common.Hash{1}
	codeHash := common.Hash{2}

	base := CommitmentHash(op, big.NewInt(5), salt, codeHash)

	t.Run("binds every input", func(t *testing.T) {
		assert.NotEqual(t, base, CommitmentHash(common.Address{}, big.NewInt(5), salt, codeHash))
		assert.NotEqual(t, base, CommitmentHash(op, big.NewInt(6), salt, codeHash))
		assert.NotEqual(t, base, CommitmentHash(op, big.NewInt(5), common.Hash{9}, codeHash))
		assert.NotEqual(t, base, CommitmentHash(op, big.NewInt(5), salt, common.Hash{9}))
	})

	t.Run("is stable", func(t *testing.T) {
		assert.Equal(t, base, CommitmentHash(op, big.NewInt(5), salt, codeHash))
	})
}

func TestCommitRequestValidate(t *testing.T) {
	valid := func() *CommitRequest {
		return &CommitRequest{
			Operator:   testOperator,
			SaltString: "prod",
			Key:        "contracts.vault",
			InitCode:   []byte{0x01},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing fields", func(t *testing.T) {
		for name, mutate := range map[string]func(*CommitRequest){
			"operator":    func(r *CommitRequest) { r.Operator = common.Address{} },
			"salt string": func(r *CommitRequest) { r.SaltString = "" },
			"key":         func(r *CommitRequest) { r.Key = "" },
			"init code":   func(r *CommitRequest) { r.InitCode = nil },
		} {
			t.Run(name, func(t *testing.T) {
				req := valid()
				mutate(req)
				assert.Error(t, req.Validate())
			})
		}
	})

	t.Run("proxy flag selects the proxy salt", func(t *testing.T) {
		req := valid()
		assert.Equal(t, ContractSalt("prod", "contracts.vault"), req.Salt())
		req.Proxy = true
		assert.Equal(t, ProxySalt("prod", "contracts.vault"), req.Salt())
	})
}

func TestFlow(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Flow, *CommitRequest) {
		_, fact := newFactory(t)
		require.NoError(t, fact.SetOperator(ctx, testOwner, testOperator, 86400))
		req := &CommitRequest{
			Operator:   testOperator,
			SaltString: "prod",
			Key:        "contracts.vault",
			InitCode:   chain.SimOwnableInitCode(testOperator),
		}
		return NewFlow(fact), req
	}

	t.Run("predict agrees with deployment", func(t *testing.T) {
		flow, req := setup(t)
		predicted := flow.Predict(req)
		addr, err := flow.CommitAndReveal(ctx, req, ValueModeMatch)
		require.NoError(t, err)
		assert.Equal(t, predicted, addr)
	})

	t.Run("commit only leaves the reveal pending", func(t *testing.T) {
		flow, req := setup(t)
		commitment, err := flow.CommitOnly(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, common.Hash{}, commitment)

		// Committing again collides: the commitment is still pending.
		_, err = flow.CommitOnly(ctx, req)
		var derr *domain.CommitmentAlreadyExistsError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("zero value mode trips the mismatch check", func(t *testing.T) {
		flow, req := setup(t)
		req.Value = big.NewInt(1234)
		_, err := flow.CommitAndReveal(ctx, req, ValueModeZero)
		var verr *domain.ValueMismatchError
		require.ErrorAs(t, err, &verr)
		assert.Zero(t, verr.Expected.Cmp(big.NewInt(1234)))
		assert.Zero(t, verr.Actual.Sign())

		// The failed attempt leaves no pending commitment behind, so the
		// properly funded retry recommits and deploys.
		addr, err := flow.CommitAndReveal(ctx, req, ValueModeMatch)
		require.NoError(t, err)
		assert.Equal(t, flow.Predict(req), addr)
	})

	t.Run("invalid request never reaches the factory", func(t *testing.T) {
		flow, req := setup(t)
		req.Key = ""
		_, err := flow.CommitAndReveal(ctx, req, ValueModeMatch)
		assert.Error(t, err)
	})
}
