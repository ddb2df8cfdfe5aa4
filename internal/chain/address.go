package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Create3ProxyInitCode is the init code of the minimal CREATE3 shim proxy.
// The shim forwards its calldata into a plain CREATE, which is what makes
// the final address independent of the deployed bytecode: only the shim's
// own CREATE2 address (factory + salt) and its first nonce matter.
var Create3ProxyInitCode = common.FromHex("0x67363d3d37363d34f03d5260086018f3")

// Create3ProxyCodeHash is keccak256(Create3ProxyInitCode), the fixed
// CREATE2 input for every CREATE3 deployment.
var Create3ProxyCodeHash = crypto.Keccak256Hash(Create3ProxyInitCode)

// Keccak hashes arbitrary bytes into a common.Hash.
func Keccak(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}

// CreateAddress returns the address produced by a plain CREATE from
// deployer at the given nonce.
func CreateAddress(deployer common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(deployer, nonce)
}

// Create2Address returns the deterministic CREATE2 address for
// (deployer, salt, initCodeHash).
func Create2Address(deployer common.Address, salt common.Hash, initCodeHash common.Hash) common.Address {
	return crypto.CreateAddress2(deployer, salt, initCodeHash.Bytes())
}

// Create3Address returns the deterministic CREATE3 address for a factory
// and salt. The deployed bytecode does not participate: the shim proxy is
// placed with CREATE2 at a bytecode-independent address, and the target is
// its first CREATE (nonce 1).
func Create3Address(factory common.Address, salt common.Hash) common.Address {
	shim := Create2Address(factory, salt, Create3ProxyCodeHash)
	return CreateAddress(shim, 1)
}
