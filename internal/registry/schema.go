package registry

import (
	"errors"
	"strings"

	"github.com/baolabs/bao-deploy/internal/domain"
)

// SchemaVersion is written into every persisted document and checked on
// load. A mismatch is a hard failure, never a best-effort parse.
const SchemaVersion = "1.0.0"

// ErrSchemaFrozen is returned when a key is registered after the schema
// has been handed to a store.
var ErrSchemaFrozen = errors.New("schema is frozen")

// KeySpec describes a single registered key.
type KeySpec struct {
	Type domain.DataType
	// Decimals is a display hint for numeric keys (e.g. 18 for wei amounts).
	Decimals int
}

// Schema is the write-once type catalogue for a deployment registry. Keys
// are registered at construction time and validated on every store access
// afterwards.
type Schema struct {
	specs  map[string]KeySpec
	order  []string
	frozen bool
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{specs: make(map[string]KeySpec)}
}

// Freeze makes the schema immutable. Called by the store constructor.
func (s *Schema) Freeze() {
	s.frozen = true
}

// Keys returns every registered key in registration order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Spec returns the registered spec for a key.
func (s *Schema) Spec(key string) (KeySpec, bool) {
	spec, ok := s.specs[key]
	return spec, ok
}

// Has reports whether a key is registered.
func (s *Schema) Has(key string) bool {
	_, ok := s.specs[key]
	return ok
}

// ValidateKey asserts that key is registered with the expected type.
func (s *Schema) ValidateKey(key string, want domain.DataType) error {
	spec, ok := s.specs[key]
	if !ok {
		return &domain.KeyNotRegisteredError{Key: key}
	}
	if spec.Type != want {
		return &domain.TypeMismatchError{Key: key, Want: want, Got: spec.Type}
	}
	return nil
}

// AddKey registers a key with an explicit type.
func (s *Schema) AddKey(key string, typ domain.DataType) error {
	return s.add(key, KeySpec{Type: typ}, false)
}

// AddAddressKey registers an address-valued key.
func (s *Schema) AddAddressKey(key string) error {
	return s.add(key, KeySpec{Type: domain.TypeAddress}, false)
}

// AddStringKey registers a string-valued key.
func (s *Schema) AddStringKey(key string) error {
	return s.add(key, KeySpec{Type: domain.TypeString}, false)
}

// AddUintKey registers an unsigned numeric key with a display-decimals hint.
func (s *Schema) AddUintKey(key string, decimals int) error {
	return s.add(key, KeySpec{Type: domain.TypeUint, Decimals: decimals}, false)
}

// AddIntKey registers a signed numeric key with a display-decimals hint.
func (s *Schema) AddIntKey(key string, decimals int) error {
	return s.add(key, KeySpec{Type: domain.TypeInt, Decimals: decimals}, false)
}

// AddBoolKey registers a boolean key.
func (s *Schema) AddBoolKey(key string) error {
	return s.add(key, KeySpec{Type: domain.TypeBool}, false)
}

// AddAddressArrayKey registers an address-array key.
func (s *Schema) AddAddressArrayKey(key string) error {
	return s.add(key, KeySpec{Type: domain.TypeAddressArray}, false)
}

// AddStringArrayKey registers a string-array key.
func (s *Schema) AddStringArrayKey(key string) error {
	return s.add(key, KeySpec{Type: domain.TypeStringArray}, false)
}

// AddUintArrayKey registers an unsigned-numeric-array key.
func (s *Schema) AddUintArrayKey(key string, decimals int) error {
	return s.add(key, KeySpec{Type: domain.TypeUintArray, Decimals: decimals}, false)
}

// AddBoolArrayKey registers a boolean-array key.
func (s *Schema) AddBoolArrayKey(key string) error {
	return s.add(key, KeySpec{Type: domain.TypeBoolArray}, false)
}

// AddContract registers the canonical sub-key set for a deployable
// contract: the object key itself, its reserved .address leaf, and the
// bookkeeping leaves every deployed entity carries.
func (s *Schema) AddContract(key string) error {
	if err := s.add(key, KeySpec{Type: domain.TypeObject}, false); err != nil {
		return err
	}
	// The .address leaf is reserved; only the composite registration may
	// create it, which is why user keys are rejected for the suffix.
	if err := s.add(key+domain.AddressSuffix, KeySpec{Type: domain.TypeAddress}, true); err != nil {
		return err
	}
	for _, sub := range []struct {
		suffix string
		typ    domain.DataType
	}{
		{".contractType", domain.TypeString},
		{".contractPath", domain.TypeString},
		{".deployer", domain.TypeAddress},
		{".blockNumber", domain.TypeUint},
		{".category", domain.TypeString},
	} {
		if err := s.add(key+sub.suffix, KeySpec{Type: sub.typ}, false); err != nil {
			return err
		}
	}
	return nil
}

// AddProxy registers a proxy entity: the contract sub-key set plus the
// CREATE3 deployment leaves and a nested implementation object.
func (s *Schema) AddProxy(key string) error {
	if err := s.AddContract(key); err != nil {
		return err
	}
	for _, sub := range []struct {
		suffix string
		typ    domain.DataType
	}{
		{".factory", domain.TypeAddress},
		{".value", domain.TypeUint},
		{".saltString", domain.TypeString},
		{".salt", domain.TypeString},
	} {
		if err := s.add(key+sub.suffix, KeySpec{Type: sub.typ}, false); err != nil {
			return err
		}
	}
	implKey := key + ".implementation"
	if err := s.AddContract(implKey); err != nil {
		return err
	}
	if err := s.add(implKey+".proxies", KeySpec{Type: domain.TypeStringArray}, false); err != nil {
		return err
	}
	return s.add(implKey+".ownershipModel", KeySpec{Type: domain.TypeString})
}

func (s *Schema) add(key string, spec KeySpec, reserved ...bool) error {
	if s.frozen {
		return ErrSchemaFrozen
	}
	allowReserved := len(reserved) > 0 && reserved[0]
	if err := checkKeyFormat(key); err != nil {
		return err
	}
	if !allowReserved && spec.Type != domain.TypeObject && strings.HasSuffix(key, domain.AddressSuffix) {
		return &domain.InvalidKeyFormatError{Key: key}
	}
	if _, exists := s.specs[key]; exists {
		return &domain.ParameterAlreadyExistsError{Key: key}
	}
	if spec.Type == domain.TypeObject {
		if !strings.HasPrefix(key, domain.ContractsNamespace) {
			return &domain.ContractKeyError{Key: key}
		}
	} else if strings.Contains(key, ".") {
		if !s.hasObjectAncestor(key) {
			parent := key[:strings.LastIndex(key, ".")]
			return &domain.ParentContractNotRegisteredError{Key: key, Parent: parent}
		}
	}
	s.specs[key] = spec
	s.order = append(s.order, key)
	return nil
}

// hasObjectAncestor walks the dotted prefixes of key from longest to
// shortest looking for a registered OBJECT entry.
func (s *Schema) hasObjectAncestor(key string) bool {
	for {
		idx := strings.LastIndex(key, ".")
		if idx < 0 {
			return false
		}
		key = key[:idx]
		if spec, ok := s.specs[key]; ok && spec.Type == domain.TypeObject {
			return true
		}
	}
}

// checkKeyFormat enforces the key charset and dot placement rules.
func checkKeyFormat(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") ||
		strings.Contains(key, "..") {
		return &domain.InvalidKeyFormatError{Key: key}
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return &domain.InvalidKeyFormatError{Key: key}
		}
	}
	return nil
}
