package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/domain/models"
)

// document mirrors the persisted top-level layout. The deployment tree is
// kept raw and replayed in document order.
type document struct {
	SchemaVersion string          `json:"schemaVersion"`
	Metadata      docMetadata     `json:"metadata"`
	Deployer      docAddress      `json:"deployer"`
	Owner         docAddress      `json:"owner"`
	SaltString    string          `json:"saltString"`
	Deployment    json.RawMessage `json:"deployment"`
}

type docMetadata struct {
	Network         string `json:"network"`
	Version         string `json:"version"`
	StartTimestamp  uint64 `json:"startTimestamp"`
	StartBlock      uint64 `json:"startBlock"`
	FinishTimestamp uint64 `json:"finishTimestamp"`
	FinishBlock     uint64 `json:"finishBlock"`
}

type docAddress struct {
	Address string `json:"address"`
}

// Decode reads a persisted document back into the store. The schema
// version is checked first; a mismatch is a hard failure. The deployment
// tree is replayed in document order, so a decoded store re-encodes to
// the exact bytes it was loaded from. Keys the schema does not declare
// are skipped (a document written against a wider schema still loads),
// and change hooks are suspended for the whole load so replaying the
// document does not trigger cascading autosaves.
func Decode(s *Store, data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse deployment document: %w", err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return &domain.SchemaVersionMismatchError{Expected: SchemaVersion, Actual: doc.SchemaVersion}
	}

	return s.BulkLoad(func() error {
		s.metadata = models.SessionMetadata{
			Deployer:        common.HexToAddress(doc.Deployer.Address),
			Owner:           common.HexToAddress(doc.Owner.Address),
			Network:         doc.Metadata.Network,
			Version:         doc.Metadata.Version,
			SaltString:      doc.SaltString,
			StartTimestamp:  doc.Metadata.StartTimestamp,
			StartBlock:      doc.Metadata.StartBlock,
			FinishTimestamp: doc.Metadata.FinishTimestamp,
			FinishBlock:     doc.Metadata.FinishBlock,
		}
		return replayTree(s, "", doc.Deployment)
	})
}

// replayTree walks the raw deployment tree depth-first in document
// order, writing every declared leaf back through the typed store API.
// Replaying in document order keeps the store's first-write order equal
// to the document's layout, which is what makes re-encoding byte stable.
func replayTree(s *Store, prefix string, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return nil
	}
	fields, isObject, err := objectFields(raw)
	if err != nil {
		return err
	}
	if isObject {
		for _, f := range fields {
			key := f.name
			if prefix != "" {
				key = prefix + "." + f.name
			}
			if err := replayTree(s, key, f.value); err != nil {
				return err
			}
		}
		return nil
	}
	spec, ok := s.schema.Spec(prefix)
	if !ok || spec.Type == domain.TypeObject {
		return nil
	}
	return decodeLeaf(s, prefix, spec.Type, raw)
}

type docField struct {
	name  string
	value json.RawMessage
}

// objectFields splits a raw JSON object into its fields, preserving
// document order. encoding/json's map decoding would reorder keys, so
// the fields are read off a token stream instead. Non-object values
// report isObject=false and are handled as leaves by the caller.
func objectFields(raw json.RawMessage) ([]docField, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, false, fmt.Errorf("failed to parse deployment tree: %w", err)
	}
	var fields []docField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse deployment tree: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, false, fmt.Errorf("unexpected token %v in deployment tree", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false, fmt.Errorf("failed to parse deployment tree: %w", err)
		}
		fields = append(fields, docField{name: name, value: value})
	}
	return fields, true, nil
}

// decodeLeaf writes one declared key back through the typed store API.
func decodeLeaf(s *Store, key string, typ domain.DataType, raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' && !typ.IsArray() {
		return fmt.Errorf("unexpected array at key %q", key)
	}

	switch typ {
	case domain.TypeAddress:
		var hex string
		if err := json.Unmarshal(trimmed, &hex); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		if !common.IsHexAddress(hex) {
			return fmt.Errorf("key %q: invalid address %q", key, hex)
		}
		return s.SetAddress(key, common.HexToAddress(hex))
	case domain.TypeString:
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		return s.SetString(key, str)
	case domain.TypeUint:
		n, err := parseBig(key, trimmed)
		if err != nil {
			return err
		}
		return s.SetUint(key, n)
	case domain.TypeInt:
		n, err := parseBig(key, trimmed)
		if err != nil {
			return err
		}
		return s.SetInt(key, n)
	case domain.TypeBool:
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		return s.SetBool(key, b)
	case domain.TypeAddressArray:
		var hexes []string
		if err := json.Unmarshal(trimmed, &hexes); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		addrs := make([]common.Address, len(hexes))
		for i, h := range hexes {
			if !common.IsHexAddress(h) {
				return fmt.Errorf("key %q: invalid address %q", key, h)
			}
			addrs[i] = common.HexToAddress(h)
		}
		return s.SetAddressArray(key, addrs)
	case domain.TypeStringArray:
		var strs []string
		if err := json.Unmarshal(trimmed, &strs); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		return s.SetStringArray(key, strs)
	case domain.TypeUintArray:
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		nums := make([]*big.Int, len(raws))
		for i, r := range raws {
			n, err := parseBig(key, bytes.TrimSpace(r))
			if err != nil {
				return err
			}
			nums[i] = n
		}
		return s.SetUintArray(key, nums)
	case domain.TypeBoolArray:
		var bools []bool
		if err := json.Unmarshal(trimmed, &bools); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		return s.SetBoolArray(key, bools)
	default:
		return fmt.Errorf("undecodable schema type %s for key %q", typ, key)
	}
}

// parseBig reads a bare decimal JSON literal into a big.Int without going
// through float64.
func parseBig(key string, raw []byte) (*big.Int, error) {
	n, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("key %q: invalid numeric literal %q", key, raw)
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
