package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/domain"
)

// Value is the tagged union held for every set key. Exactly one payload
// field is meaningful, selected by Type.
type Value struct {
	Type domain.DataType

	Addr      common.Address
	Str       string
	Num       *big.Int
	Bool      bool
	AddrSlice []common.Address
	StrSlice  []string
	NumSlice  []*big.Int
	BoolSlice []bool
}

func addressValue(a common.Address) Value {
	return Value{Type: domain.TypeAddress, Addr: a}
}

func stringValue(s string) Value {
	return Value{Type: domain.TypeString, Str: s}
}

func uintValue(n *big.Int) Value {
	return Value{Type: domain.TypeUint, Num: new(big.Int).Set(n)}
}

func intValue(n *big.Int) Value {
	return Value{Type: domain.TypeInt, Num: new(big.Int).Set(n)}
}

func boolValue(b bool) Value {
	return Value{Type: domain.TypeBool, Bool: b}
}

func addressArrayValue(a []common.Address) Value {
	out := make([]common.Address, len(a))
	copy(out, a)
	return Value{Type: domain.TypeAddressArray, AddrSlice: out}
}

func stringArrayValue(s []string) Value {
	out := make([]string, len(s))
	copy(out, s)
	return Value{Type: domain.TypeStringArray, StrSlice: out}
}

func uintArrayValue(n []*big.Int) Value {
	out := make([]*big.Int, len(n))
	for i, v := range n {
		out[i] = new(big.Int).Set(v)
	}
	return Value{Type: domain.TypeUintArray, NumSlice: out}
}

func boolArrayValue(b []bool) Value {
	out := make([]bool, len(b))
	copy(out, b)
	return Value{Type: domain.TypeBoolArray, BoolSlice: out}
}

// Equal reports deep equality of two values, used by round-trip tests and
// by the resume path to detect drift.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case domain.TypeAddress:
		return v.Addr == o.Addr
	case domain.TypeString:
		return v.Str == o.Str
	case domain.TypeUint, domain.TypeInt:
		return v.Num.Cmp(o.Num) == 0
	case domain.TypeBool:
		return v.Bool == o.Bool
	case domain.TypeAddressArray:
		if len(v.AddrSlice) != len(o.AddrSlice) {
			return false
		}
		for i := range v.AddrSlice {
			if v.AddrSlice[i] != o.AddrSlice[i] {
				return false
			}
		}
		return true
	case domain.TypeStringArray:
		if len(v.StrSlice) != len(o.StrSlice) {
			return false
		}
		for i := range v.StrSlice {
			if v.StrSlice[i] != o.StrSlice[i] {
				return false
			}
		}
		return true
	case domain.TypeUintArray:
		if len(v.NumSlice) != len(o.NumSlice) {
			return false
		}
		for i := range v.NumSlice {
			if v.NumSlice[i].Cmp(o.NumSlice[i]) != 0 {
				return false
			}
		}
		return true
	case domain.TypeBoolArray:
		if len(v.BoolSlice) != len(o.BoolSlice) {
			return false
		}
		for i := range v.BoolSlice {
			if v.BoolSlice[i] != o.BoolSlice[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
