package chain

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	simDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	simOther    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func TestSimBackendCreates(t *testing.T) {
	ctx := context.Background()
	sim := NewSimBackend(31337)

	t.Run("chain id and genesis state", func(t *testing.T) {
		id, err := sim.ChainID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(31337), id)

		block, err := sim.BlockNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), block)

		ts, err := sim.Timestamp(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_700_000_000), ts)
	})

	t.Run("create follows sender nonce", func(t *testing.T) {
		code := SimOwnableInitCode(simDeployer)
		first, err := sim.Create(ctx, simDeployer, code, nil)
		require.NoError(t, err)
		assert.Equal(t, crypto.CreateAddress(simDeployer, 0), first)

		second, err := sim.Create(ctx, simDeployer, SimOwnableInitCode(simOther), nil)
		require.NoError(t, err)
		assert.Equal(t, crypto.CreateAddress(simDeployer, 1), second)
	})

	t.Run("create2 is deterministic and collision-safe", func(t *testing.T) {
		salt := Keccak([]byte("salted"))
		code := SimOwnableInitCode(simDeployer)
		addr, err := sim.Create2(ctx, simDeployer, salt, code, nil)
		require.NoError(t, err)
		assert.Equal(t, crypto.CreateAddress2(simDeployer, salt, crypto.Keccak256(code)), addr)

		_, err = sim.Create2(ctx, simDeployer, salt, code, nil)
		assert.ErrorIs(t, err, ErrExecutionReverted)
	})

	t.Run("code hash at", func(t *testing.T) {
		code := SimOwnableInitCode(simDeployer)
		addr, err := sim.Create2(ctx, simDeployer, Keccak([]byte("hashprobe")), code, nil)
		require.NoError(t, err)

		hash, err := sim.CodeHashAt(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, crypto.Keccak256Hash(code), hash)

		empty, err := sim.CodeHashAt(ctx, common.HexToAddress("0x9999999999999999999999999999999999999999"))
		require.NoError(t, err)
		assert.Equal(t, common.Hash{}, empty)
	})

	t.Run("advance time", func(t *testing.T) {
		before, _ := sim.Timestamp(ctx)
		sim.AdvanceTime(3600)
		after, _ := sim.Timestamp(ctx)
		assert.Equal(t, before+3600, after)
	})
}

func TestSimOwnable(t *testing.T) {
	ctx := context.Background()
	sim := NewSimBackend(31337)

	addr, err := sim.Create(ctx, simDeployer, SimOwnableInitCode(simDeployer), nil)
	require.NoError(t, err)

	t.Run("owner probe", func(t *testing.T) {
		ret, err := sim.StaticCall(ctx, addr, PackOwner())
		require.NoError(t, err)
		owner, ok := UnpackAddress(ret)
		require.True(t, ok)
		assert.Equal(t, simDeployer, owner)
	})

	t.Run("transfer requires current owner", func(t *testing.T) {
		_, err := sim.Call(ctx, simOther, addr, PackTransferOwnership(simOther), nil)
		assert.ErrorIs(t, err, ErrExecutionReverted)

		_, err = sim.Call(ctx, simDeployer, addr, PackTransferOwnership(simOther), nil)
		require.NoError(t, err)

		ret, err := sim.StaticCall(ctx, addr, PackOwner())
		require.NoError(t, err)
		owner, _ := UnpackAddress(ret)
		assert.Equal(t, simOther, owner)
	})

	t.Run("unknown selector reverts", func(t *testing.T) {
		_, err := sim.Call(ctx, simDeployer, addr, []byte{0xde, 0xad, 0xbe, 0xef}, nil)
		assert.ErrorIs(t, err, ErrExecutionReverted)
	})

	t.Run("call to empty account reverts", func(t *testing.T) {
		_, err := sim.Call(ctx, simDeployer,
			common.HexToAddress("0x8888888888888888888888888888888888888888"), PackOwner(), nil)
		assert.ErrorIs(t, err, ErrExecutionReverted)
	})
}

func TestSimProxyUpgrade(t *testing.T) {
	ctx := context.Background()
	sim := NewSimBackend(31337)
	art := SimArtifacts{}

	stub, err := sim.Create(ctx, simDeployer, art.BootstrapStub(simDeployer), nil)
	require.NoError(t, err)
	impl, err := sim.Create(ctx, simDeployer, SimOwnableInitCode(simOther), nil)
	require.NoError(t, err)
	proxy, err := sim.Create(ctx, simDeployer, art.ERC1967Proxy(stub, nil), nil)
	require.NoError(t, err)

	t.Run("proxiableUUID answers on the stub only", func(t *testing.T) {
		ret, err := sim.StaticCall(ctx, stub, SelectorProxiableUUID[:])
		require.NoError(t, err)
		assert.Equal(t, erc1967ImplementationSlot.Bytes(), ret)

		_, err = sim.StaticCall(ctx, proxy, SelectorProxiableUUID[:])
		assert.ErrorIs(t, err, ErrExecutionReverted)
	})

	t.Run("fresh proxy delegates owner to the stub", func(t *testing.T) {
		ret, err := sim.StaticCall(ctx, proxy, PackOwner())
		require.NoError(t, err)
		owner, _ := UnpackAddress(ret)
		assert.Equal(t, simDeployer, owner)
	})

	t.Run("only the resolved owner may upgrade", func(t *testing.T) {
		_, err := sim.Call(ctx, simOther, proxy, PackUpgradeTo(impl), nil)
		assert.ErrorIs(t, err, ErrExecutionReverted)
	})

	t.Run("upgradeToAndCall with initializer claims ownership", func(t *testing.T) {
		init := []byte{0x01, 0x02}
		_, err := sim.Call(ctx, simDeployer, proxy, PackUpgradeToAndCall(impl, init), nil)
		require.NoError(t, err)

		// The initializer ran with msg.sender == caller, so the proxy's own
		// owner storage is now the caller rather than the implementation's.
		ret, err := sim.StaticCall(ctx, proxy, PackOwner())
		require.NoError(t, err)
		owner, _ := UnpackAddress(ret)
		assert.Equal(t, simDeployer, owner)
	})

	t.Run("upgradeTo without initializer keeps ownership", func(t *testing.T) {
		next, err := sim.Create(ctx, simDeployer, SimOwnableInitCode(simOther), nil)
		require.NoError(t, err)
		_, err = sim.Call(ctx, simDeployer, proxy, PackUpgradeTo(next), nil)
		require.NoError(t, err)

		ret, err := sim.StaticCall(ctx, proxy, PackOwner())
		require.NoError(t, err)
		owner, _ := UnpackAddress(ret)
		assert.Equal(t, simDeployer, owner)
	})

	t.Run("upgradeTo on a non-proxy reverts", func(t *testing.T) {
		_, err := sim.Call(ctx, simDeployer, impl, PackUpgradeTo(stub), nil)
		assert.ErrorIs(t, err, ErrExecutionReverted)
	})
}
