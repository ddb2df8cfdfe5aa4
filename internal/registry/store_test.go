package registry

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baolabs/bao-deploy/internal/domain"
)

func fullSchema(t *testing.T) *Schema {
	t.Helper()
	s := NewSchema()
	require.NoError(t, s.AddAddressKey("treasury"))
	require.NoError(t, s.AddStringKey("label"))
	require.NoError(t, s.AddUintKey("supply", 18))
	require.NoError(t, s.AddIntKey("offset", 0))
	require.NoError(t, s.AddBoolKey("paused"))
	require.NoError(t, s.AddAddressArrayKey("signers"))
	require.NoError(t, s.AddStringArrayKey("tags"))
	require.NoError(t, s.AddUintArrayKey("tranches", 18))
	require.NoError(t, s.AddBoolArrayKey("flags"))
	require.NoError(t, s.AddContract("contracts.token"))
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(fullSchema(t))

	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	t.Run("address", func(t *testing.T) {
		require.NoError(t, store.SetAddress("treasury", addr))
		got, err := store.GetAddress("treasury")
		require.NoError(t, err)
		assert.Equal(t, addr, got)
	})

	t.Run("string", func(t *testing.T) {
		require.NoError(t, store.SetString("label", "mainnet-v2"))
		got, err := store.GetString("label")
		require.NoError(t, err)
		assert.Equal(t, "mainnet-v2", got)
	})

	t.Run("uint", func(t *testing.T) {
		require.NoError(t, store.SetUint("supply", big.NewInt(1_000_000)))
		got, err := store.GetUint("supply")
		require.NoError(t, err)
		assert.Zero(t, got.Cmp(big.NewInt(1_000_000)))
	})

	t.Run("int", func(t *testing.T) {
		require.NoError(t, store.SetInt("offset", big.NewInt(-42)))
		got, err := store.GetInt("offset")
		require.NoError(t, err)
		assert.Zero(t, got.Cmp(big.NewInt(-42)))
	})

	t.Run("bool", func(t *testing.T) {
		require.NoError(t, store.SetBool("paused", true))
		got, err := store.GetBool("paused")
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("address array", func(t *testing.T) {
		require.NoError(t, store.SetAddressArray("signers", []common.Address{addr}))
		got, err := store.GetAddressArray("signers")
		require.NoError(t, err)
		assert.Equal(t, []common.Address{addr}, got)
	})

	t.Run("empty arrays survive", func(t *testing.T) {
		require.NoError(t, store.SetStringArray("tags", nil))
		got, err := store.GetStringArray("tags")
		require.NoError(t, err)
		assert.Len(t, got, 0)
	})

	t.Run("uint array", func(t *testing.T) {
		require.NoError(t, store.SetUintArray("tranches", []*big.Int{big.NewInt(1), big.NewInt(2)}))
		got, err := store.GetUintArray("tranches")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Zero(t, got[1].Cmp(big.NewInt(2)))
	})

	t.Run("bool array", func(t *testing.T) {
		require.NoError(t, store.SetBoolArray("flags", []bool{true, false}))
		got, err := store.GetBoolArray("flags")
		require.NoError(t, err)
		assert.Equal(t, []bool{true, false}, got)
	})
}

func TestStoreValidation(t *testing.T) {
	store := NewStore(fullSchema(t))

	t.Run("unset read", func(t *testing.T) {
		_, err := store.GetString("label")
		var verr *domain.ValueNotSetError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("write to unknown key", func(t *testing.T) {
		err := store.SetString("nope", "x")
		var kerr *domain.KeyNotRegisteredError
		assert.ErrorAs(t, err, &kerr)
	})

	t.Run("write with wrong type", func(t *testing.T) {
		err := store.SetString("supply", "not a number")
		var merr *domain.TypeMismatchError
		assert.ErrorAs(t, err, &merr)
	})

	t.Run("read with wrong accessor", func(t *testing.T) {
		require.NoError(t, store.SetUint("supply", big.NewInt(7)))
		_, err := store.GetString("supply")
		var rerr *domain.ReadTypeMismatchError
		assert.ErrorAs(t, err, &rerr)
	})

	t.Run("negative uint rejected", func(t *testing.T) {
		err := store.SetUint("supply", big.NewInt(-1))
		var terr *domain.TypeMismatchError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, domain.TypeUint, terr.Want)
		assert.Equal(t, domain.TypeInt, terr.Got)
	})

	t.Run("negative element in uint array rejected", func(t *testing.T) {
		err := store.SetUintArray("tranches", []*big.Int{big.NewInt(1), big.NewInt(-2)})
		var terr *domain.TypeMismatchError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, domain.TypeUintArray, terr.Want)
	})
}

func TestStoreObjectShorthand(t *testing.T) {
	store := NewStore(fullSchema(t))
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	require.NoError(t, store.SetAddress("contracts.token.address", addr))

	got, err := store.Get("contracts.token")
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	direct, err := store.Get("contracts.token.address")
	require.NoError(t, err)
	assert.Equal(t, addr, direct)
}

func TestStoreAppend(t *testing.T) {
	store := NewStore(fullSchema(t))

	t.Run("append treats unset as empty", func(t *testing.T) {
		require.NoError(t, store.AppendStringToArray("tags", "a"))
		require.NoError(t, store.AppendStringToArray("tags", "b"))
		got, err := store.GetStringArray("tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("append address", func(t *testing.T) {
		a := common.HexToAddress("0x3333333333333333333333333333333333333333")
		require.NoError(t, store.AppendAddressToArray("signers", a))
		got, err := store.GetAddressArray("signers")
		require.NoError(t, err)
		assert.Equal(t, []common.Address{a}, got)
	})
}

func TestStoreOrderAndHooks(t *testing.T) {
	store := NewStore(fullSchema(t))

	var fired []string
	store.OnValueChanged(func(key string) { fired = append(fired, key) })

	require.NoError(t, store.SetString("label", "one"))
	require.NoError(t, store.SetBool("paused", false))
	require.NoError(t, store.SetString("label", "two")) // overwrite keeps position

	assert.Equal(t, []string{"label", "paused"}, store.Keys())
	assert.Equal(t, []string{"label", "paused", "label"}, fired)

	t.Run("bulk load suspends hooks", func(t *testing.T) {
		fired = nil
		err := store.BulkLoad(func() error {
			return store.SetUint("supply", big.NewInt(9))
		})
		require.NoError(t, err)
		assert.Empty(t, fired)

		// Hooks resume after the bulk load returns.
		require.NoError(t, store.SetBool("paused", true))
		assert.Equal(t, []string{"paused"}, fired)
	})
}
