package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrCreate2RequiresFactory is returned by the RPC backend for direct
// CREATE2 attempts: an externally owned account cannot execute CREATE2,
// only the deployed factory contract can. The remote factory transport is
// the supported path.
var ErrCreate2RequiresFactory = errors.New("create2 requires the on-chain factory; use the remote factory transport")

// receiptPollInterval is how often mined-transaction polling runs.
const receiptPollInterval = 500 * time.Millisecond

// RPCBackend talks to a real node through go-ethereum's ethclient, signing
// state-changing transactions with a configured deployer key.
type RPCBackend struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	sender  common.Address
	chainID *big.Int
}

// DialRPC connects to an RPC endpoint and prepares a signing backend.
func DialRPC(ctx context.Context, url string, hexKey string) (*RPCBackend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid deployer key: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}
	return &RPCBackend{
		client:  client,
		key:     key,
		sender:  crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// Sender returns the address of the signing key.
func (b *RPCBackend) Sender() common.Address {
	return b.sender
}

// ChainID implements Backend.
func (b *RPCBackend) ChainID(ctx context.Context) (uint64, error) {
	return b.chainID.Uint64(), nil
}

// BlockNumber implements Backend.
func (b *RPCBackend) BlockNumber(ctx context.Context) (uint64, error) {
	return b.client.BlockNumber(ctx)
}

// Timestamp implements Backend.
func (b *RPCBackend) Timestamp(ctx context.Context) (uint64, error) {
	header, err := b.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Time, nil
}

// CodeHashAt implements Backend.
func (b *RPCBackend) CodeHashAt(ctx context.Context, addr common.Address) (common.Hash, error) {
	code, err := b.client.CodeAt(ctx, addr, nil)
	if err != nil {
		return common.Hash{}, err
	}
	if len(code) == 0 {
		return common.Hash{}, nil
	}
	return crypto.Keccak256Hash(code), nil
}

// Create implements Backend via a contract-creation transaction.
func (b *RPCBackend) Create(ctx context.Context, from common.Address, initCode []byte, value *big.Int) (common.Address, error) {
	if from != b.sender {
		return common.Address{}, fmt.Errorf("cannot send as %s with key for %s", from.Hex(), b.sender.Hex())
	}
	receipt, err := b.send(ctx, nil, initCode, value)
	if err != nil {
		return common.Address{}, err
	}
	return receipt.ContractAddress, nil
}

// Create2 implements Backend; unsupported for EOA senders.
func (b *RPCBackend) Create2(ctx context.Context, from common.Address, salt common.Hash, initCode []byte, value *big.Int) (common.Address, error) {
	return common.Address{}, ErrCreate2RequiresFactory
}

// Call implements Backend via a signed transaction. Transaction calls have
// no return data; reads go through StaticCall.
func (b *RPCBackend) Call(ctx context.Context, from, to common.Address, data []byte, value *big.Int) ([]byte, error) {
	if from != b.sender {
		return nil, fmt.Errorf("cannot send as %s with key for %s", from.Hex(), b.sender.Hex())
	}
	if _, err := b.send(ctx, &to, data, value); err != nil {
		return nil, err
	}
	return nil, nil
}

// StaticCall implements Backend via eth_call.
func (b *RPCBackend) StaticCall(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := b.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutionReverted, err)
	}
	return out, nil
}

func (b *RPCBackend) send(ctx context.Context, to *common.Address, data []byte, value *big.Int) (*types.Receipt, error) {
	if value == nil {
		value = new(big.Int)
	}
	nonce, err := b.client.PendingNonceAt(ctx, b.sender)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	tipCap, err := b.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tip cap: %w", err)
	}
	header, err := b.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(header.BaseFee, big.NewInt(2)))
	gas, err := b.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  b.sender,
		To:    to,
		Data:  data,
		Value: value,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutionReverted, err)
	}
	tx, err := types.SignNewTx(b.key, types.LatestSignerForChainID(b.chainID), &types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        to,
		Value:     value,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := b.client.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	return b.waitMined(ctx, tx.Hash())
}

func (b *RPCBackend) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := b.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, fmt.Errorf("%w: transaction %s", ErrExecutionReverted, hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
