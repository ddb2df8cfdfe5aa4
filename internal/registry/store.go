package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/domain/models"
)

// Store is the typed key/value registry for one deployment session. Every
// write is validated against the schema before mutation, and every read
// asserts that the stored type matches the requested one. Keys are never
// deleted within a session: the registry is append-only for audit.
type Store struct {
	schema   *Schema
	values   map[string]Value
	order    []string // set keys in first-write order; drives JSON rendering
	metadata models.SessionMetadata

	afterValueChanged func(key string)
	hooksSuspended    bool
}

// NewStore creates a store over a schema and freezes the schema.
func NewStore(schema *Schema) *Store {
	schema.Freeze()
	return &Store{
		schema: schema,
		values: make(map[string]Value),
	}
}

// Schema returns the underlying (frozen) schema.
func (s *Store) Schema() *Schema {
	return s.schema
}

// Metadata returns the session metadata block.
func (s *Store) Metadata() models.SessionMetadata {
	return s.metadata
}

// SetMetadata replaces the session metadata block and fires the change hook.
func (s *Store) SetMetadata(md models.SessionMetadata) {
	s.metadata = md
	s.fireHook("metadata")
}

// OnValueChanged installs the post-write hook. The persistence layer uses
// it to autosave after every mutation.
func (s *Store) OnValueChanged(fn func(key string)) {
	s.afterValueChanged = fn
}

// BulkLoad runs fn with change hooks suspended. Used when replaying a
// persisted document back into the store, so the load does not trigger
// cascading saves.
func (s *Store) BulkLoad(fn func() error) error {
	s.hooksSuspended = true
	defer func() { s.hooksSuspended = false }()
	return fn()
}

// Has reports whether a key currently holds a value.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns every key holding a value, in first-write order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SchemaKeys returns every declared key, in registration order.
func (s *Store) SchemaKeys() []string {
	return s.schema.Keys()
}

// Get reads an address. An OBJECT-typed key transparently reads its
// reserved .address leaf, letting call sites treat a contract's logical
// key as if it directly held the deployed address.
func (s *Store) Get(key string) (common.Address, error) {
	if spec, ok := s.schema.Spec(key); ok && spec.Type == domain.TypeObject {
		key += domain.AddressSuffix
	}
	return s.GetAddress(key)
}

// GetAddress reads an address-typed key.
func (s *Store) GetAddress(key string) (common.Address, error) {
	v, err := s.read(key, domain.TypeAddress)
	if err != nil {
		return common.Address{}, err
	}
	return v.Addr, nil
}

// GetString reads a string-typed key.
func (s *Store) GetString(key string) (string, error) {
	v, err := s.read(key, domain.TypeString)
	if err != nil {
		return "", err
	}
	return v.Str, nil
}

// GetUint reads an unsigned numeric key.
func (s *Store) GetUint(key string) (*big.Int, error) {
	v, err := s.read(key, domain.TypeUint)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v.Num), nil
}

// GetInt reads a signed numeric key.
func (s *Store) GetInt(key string) (*big.Int, error) {
	v, err := s.read(key, domain.TypeInt)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v.Num), nil
}

// GetBool reads a boolean key.
func (s *Store) GetBool(key string) (bool, error) {
	v, err := s.read(key, domain.TypeBool)
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// GetAddressArray reads an address-array key.
func (s *Store) GetAddressArray(key string) ([]common.Address, error) {
	v, err := s.read(key, domain.TypeAddressArray)
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, len(v.AddrSlice))
	copy(out, v.AddrSlice)
	return out, nil
}

// GetStringArray reads a string-array key.
func (s *Store) GetStringArray(key string) ([]string, error) {
	v, err := s.read(key, domain.TypeStringArray)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(v.StrSlice))
	copy(out, v.StrSlice)
	return out, nil
}

// GetUintArray reads an unsigned-numeric-array key.
func (s *Store) GetUintArray(key string) ([]*big.Int, error) {
	v, err := s.read(key, domain.TypeUintArray)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(v.NumSlice))
	for i, n := range v.NumSlice {
		out[i] = new(big.Int).Set(n)
	}
	return out, nil
}

// GetBoolArray reads a boolean-array key.
func (s *Store) GetBoolArray(key string) ([]bool, error) {
	v, err := s.read(key, domain.TypeBoolArray)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(v.BoolSlice))
	copy(out, v.BoolSlice)
	return out, nil
}

// SetAddress writes an address-typed key.
func (s *Store) SetAddress(key string, a common.Address) error {
	return s.write(key, addressValue(a))
}

// SetString writes a string-typed key.
func (s *Store) SetString(key, val string) error {
	return s.write(key, stringValue(val))
}

// SetUint writes an unsigned numeric key. Negative values are rejected as
// a write-side type mismatch.
func (s *Store) SetUint(key string, n *big.Int) error {
	if n.Sign() < 0 {
		return &domain.TypeMismatchError{Key: key, Want: domain.TypeUint, Got: domain.TypeInt}
	}
	return s.write(key, uintValue(n))
}

// SetInt writes a signed numeric key.
func (s *Store) SetInt(key string, n *big.Int) error {
	return s.write(key, intValue(n))
}

// SetBool writes a boolean key.
func (s *Store) SetBool(key string, b bool) error {
	return s.write(key, boolValue(b))
}

// SetAddressArray writes an address-array key, replacing it wholesale.
func (s *Store) SetAddressArray(key string, a []common.Address) error {
	return s.write(key, addressArrayValue(a))
}

// SetStringArray writes a string-array key, replacing it wholesale.
func (s *Store) SetStringArray(key string, v []string) error {
	return s.write(key, stringArrayValue(v))
}

// SetUintArray writes an unsigned-numeric-array key, replacing it wholesale.
func (s *Store) SetUintArray(key string, n []*big.Int) error {
	for _, v := range n {
		if v.Sign() < 0 {
			return &domain.TypeMismatchError{Key: key, Want: domain.TypeUintArray, Got: domain.TypeInt}
		}
	}
	return s.write(key, uintArrayValue(n))
}

// SetBoolArray writes a boolean-array key, replacing it wholesale.
func (s *Store) SetBoolArray(key string, b []bool) error {
	return s.write(key, boolArrayValue(b))
}

// AppendAddressToArray appends to an address-array key, treating an unset
// key as empty. The grantee-list registration path uses this.
func (s *Store) AppendAddressToArray(key string, a common.Address) error {
	existing := []common.Address{}
	if s.Has(key) {
		cur, err := s.GetAddressArray(key)
		if err != nil {
			return err
		}
		existing = cur
	}
	return s.write(key, addressArrayValue(append(existing, a)))
}

// AppendStringToArray appends to a string-array key, treating an unset key
// as empty. Used for implementation back-reference lists.
func (s *Store) AppendStringToArray(key, val string) error {
	existing := []string{}
	if s.Has(key) {
		cur, err := s.GetStringArray(key)
		if err != nil {
			return err
		}
		existing = cur
	}
	return s.write(key, stringArrayValue(append(existing, val)))
}

// value returns the raw stored value for a key. Used by the codec.
func (s *Store) value(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) read(key string, want domain.DataType) (Value, error) {
	v, ok := s.values[key]
	if !ok {
		return Value{}, &domain.ValueNotSetError{Key: key}
	}
	if v.Type != want {
		return Value{}, &domain.ReadTypeMismatchError{Key: key, Want: want, Got: v.Type}
	}
	return v, nil
}

func (s *Store) write(key string, v Value) error {
	if err := s.schema.ValidateKey(key, v.Type); err != nil {
		return err
	}
	s.prepareKey(key)
	s.values[key] = v
	s.fireHook(key)
	return nil
}

// prepareKey records first-write order. Overwrites keep their position.
func (s *Store) prepareKey(key string) {
	if _, exists := s.values[key]; !exists {
		s.order = append(s.order, key)
	}
}

func (s *Store) fireHook(key string) {
	if s.afterValueChanged != nil && !s.hooksSuspended {
		s.afterValueChanged(key)
	}
}
