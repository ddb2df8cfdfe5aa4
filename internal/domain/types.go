package domain

// DataType is the closed set of value kinds a registry key may hold.
type DataType uint8

const (
	TypeNone DataType = iota
	TypeObject
	TypeAddress
	TypeString
	TypeUint
	TypeInt
	TypeBool
	TypeAddressArray
	TypeStringArray
	TypeUintArray
	TypeBoolArray
)

// String returns the canonical name used in error messages and logs.
func (t DataType) String() string {
	switch t {
	case TypeObject:
		return "OBJECT"
	case TypeAddress:
		return "ADDRESS"
	case TypeString:
		return "STRING"
	case TypeUint:
		return "UINT"
	case TypeInt:
		return "INT"
	case TypeBool:
		return "BOOL"
	case TypeAddressArray:
		return "ADDRESS_ARRAY"
	case TypeStringArray:
		return "STRING_ARRAY"
	case TypeUintArray:
		return "UINT_ARRAY"
	case TypeBoolArray:
		return "BOOL_ARRAY"
	default:
		return "NONE"
	}
}

// IsArray reports whether the type holds a slice of elements.
func (t DataType) IsArray() bool {
	switch t {
	case TypeAddressArray, TypeStringArray, TypeUintArray, TypeBoolArray:
		return true
	default:
		return false
	}
}

// Category tags a registry entry with how its address came to exist.
type Category string

const (
	CategoryContract  Category = "contract"
	CategoryProxy     Category = "proxy"
	CategoryUUPSProxy Category = "UUPS proxy"
	CategoryLibrary   Category = "library"
	CategoryExisting  Category = "existing"
)

// IsProxy reports whether entries of this category are upgradeable proxies
// that the finish sweep should consider for ownership transfer.
func (c Category) IsProxy() bool {
	return c == CategoryProxy || c == CategoryUUPSProxy
}

// ContractsNamespace is the mandatory prefix for top-level contract keys.
const ContractsNamespace = "contracts."

// AddressSuffix is the reserved leaf suffix holding a contract's address.
// User keys must not end with it; the store appends it internally.
const AddressSuffix = ".address"

// SessionState is the lifecycle of a deployment session.
type SessionState uint8

const (
	SessionNone SessionState = iota
	SessionStarted
	SessionFinished
)

func (s SessionState) String() string {
	switch s {
	case SessionStarted:
		return "STARTED"
	case SessionFinished:
		return "FINISHED"
	default:
		return "NONE"
	}
}
