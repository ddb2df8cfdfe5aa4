package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Minimal calldata packing for the handful of fixed signatures the harness
// speaks: ownership probes/transfers and ERC1967 upgrade entry points.
// Arguments are static, so packing is selector + left-padded words.

var (
	SelectorOwner             = selector("owner()")
	SelectorTransferOwnership = selector("transferOwnership(address)")
	SelectorUpgradeTo         = selector("upgradeTo(address)")
	SelectorUpgradeToAndCall  = selector("upgradeToAndCall(address,bytes)")
	SelectorProxiableUUID     = selector("proxiableUUID()")
)

func selector(sig string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(sig))[:4])
	return sel
}

// PackOwner builds the owner() probe calldata.
func PackOwner() []byte {
	return SelectorOwner[:]
}

// PackTransferOwnership builds transferOwnership(newOwner) calldata.
func PackTransferOwnership(newOwner common.Address) []byte {
	return append(SelectorTransferOwnership[:], leftPadAddress(newOwner)...)
}

// PackUpgradeTo builds upgradeTo(newImplementation) calldata.
func PackUpgradeTo(impl common.Address) []byte {
	return append(SelectorUpgradeTo[:], leftPadAddress(impl)...)
}

// PackUpgradeToAndCall builds upgradeToAndCall(newImplementation, data)
// calldata with standard dynamic-bytes encoding.
func PackUpgradeToAndCall(impl common.Address, data []byte) []byte {
	out := append([]byte{}, SelectorUpgradeToAndCall[:]...)
	out = append(out, leftPadAddress(impl)...)
	// offset of the bytes argument: two static words
	out = append(out, leftPadUint(64)...)
	out = append(out, leftPadUint(uint64(len(data)))...)
	out = append(out, data...)
	if rem := len(data) % 32; rem != 0 {
		out = append(out, make([]byte, 32-rem)...)
	}
	return out
}

// UnpackAddress reads a single address return word.
func UnpackAddress(ret []byte) (common.Address, bool) {
	if len(ret) < 32 {
		return common.Address{}, false
	}
	return common.BytesToAddress(ret[12:32]), true
}

func leftPadAddress(a common.Address) []byte {
	word := make([]byte, 32)
	copy(word[12:], a.Bytes())
	return word
}

func leftPadUint(n uint64) []byte {
	word := make([]byte, 32)
	for i := 0; n > 0; i++ {
		word[31-i] = byte(n & 0xff)
		n >>= 8
	}
	return word
}
