package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/baolabs/bao-deploy/internal/domain"
)

// indentUnit matches the two-space indentation the rest of the registry
// files are written with, keeping persisted documents diffable.
const indentUnit = "  "

// node is one segment of the dotted-key tree built during serialization.
// Children keep first-insertion order so re-encoding an unchanged store is
// byte-identical.
type node struct {
	seg      string
	children []*node
	index    map[string]*node
	value    *Value
}

func newNode() *node {
	return &node{index: make(map[string]*node)}
}

func (n *node) child(seg string) *node {
	if c, ok := n.index[seg]; ok {
		return c
	}
	c := newNode()
	c.seg = seg
	n.index[seg] = c
	n.children = append(n.children, c)
	return c
}

// Encode renders the store into the persisted document format. Output is
// deterministic: key order follows store insertion order, so serializing
// twice without mutation yields identical bytes.
func Encode(s *Store) ([]byte, error) {
	root := newNode()
	for _, key := range s.Keys() {
		v, ok := s.value(key)
		if !ok {
			continue
		}
		cur := root
		for _, seg := range strings.Split(key, ".") {
			cur = cur.child(seg)
		}
		held := v
		cur.value = &held
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	md := s.Metadata()
	fmt.Fprintf(&buf, "%s\"schemaVersion\": %s,\n", indentUnit, jsonString(SchemaVersion))
	fmt.Fprintf(&buf, "%s\"metadata\": {\n", indentUnit)
	fmt.Fprintf(&buf, "%s\"network\": %s,\n", indentUnit+indentUnit, jsonString(md.Network))
	fmt.Fprintf(&buf, "%s\"version\": %s,\n", indentUnit+indentUnit, jsonString(md.Version))
	fmt.Fprintf(&buf, "%s\"startTimestamp\": %d,\n", indentUnit+indentUnit, md.StartTimestamp)
	fmt.Fprintf(&buf, "%s\"startBlock\": %d,\n", indentUnit+indentUnit, md.StartBlock)
	fmt.Fprintf(&buf, "%s\"finishTimestamp\": %d,\n", indentUnit+indentUnit, md.FinishTimestamp)
	fmt.Fprintf(&buf, "%s\"finishBlock\": %d\n", indentUnit+indentUnit, md.FinishBlock)
	fmt.Fprintf(&buf, "%s},\n", indentUnit)
	fmt.Fprintf(&buf, "%s\"deployer\": { \"address\": %s },\n", indentUnit, jsonString(md.Deployer.Hex()))
	fmt.Fprintf(&buf, "%s\"owner\": { \"address\": %s },\n", indentUnit, jsonString(md.Owner.Hex()))
	fmt.Fprintf(&buf, "%s\"saltString\": %s,\n", indentUnit, jsonString(md.SaltString))
	fmt.Fprintf(&buf, "%s\"deployment\": ", indentUnit)
	if err := renderNode(&buf, root, 1); err != nil {
		return nil, err
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// renderNode writes a subtree as a nested JSON object, depth-first.
func renderNode(buf *bytes.Buffer, n *node, depth int) error {
	if len(n.children) == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteString("{\n")
	pad := strings.Repeat(indentUnit, depth+1)
	for i, c := range n.children {
		fmt.Fprintf(buf, "%s%s: ", pad, jsonString(c.seg))
		if c.value != nil {
			if err := renderValue(buf, *c.value); err != nil {
				return err
			}
		} else {
			if err := renderNode(buf, c, depth+1); err != nil {
				return err
			}
		}
		if i < len(n.children)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	fmt.Fprintf(buf, "%s}", strings.Repeat(indentUnit, depth))
	return nil
}

// renderValue writes a single leaf encoding: addresses as 0x hex strings,
// strings JSON-escaped, numbers as bare decimal literals, booleans as
// true/false, arrays of the element encoding.
func renderValue(buf *bytes.Buffer, v Value) error {
	switch v.Type {
	case domain.TypeAddress:
		buf.WriteString(jsonString(v.Addr.Hex()))
	case domain.TypeString:
		buf.WriteString(jsonString(v.Str))
	case domain.TypeUint, domain.TypeInt:
		buf.WriteString(v.Num.String())
	case domain.TypeBool:
		fmt.Fprintf(buf, "%t", v.Bool)
	case domain.TypeAddressArray:
		buf.WriteByte('[')
		for i, a := range v.AddrSlice {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(jsonString(a.Hex()))
		}
		buf.WriteByte(']')
	case domain.TypeStringArray:
		buf.WriteByte('[')
		for i, s := range v.StrSlice {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(jsonString(s))
		}
		buf.WriteByte(']')
	case domain.TypeUintArray:
		buf.WriteByte('[')
		for i, n := range v.NumSlice {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(n.String())
		}
		buf.WriteByte(']')
	case domain.TypeBoolArray:
		buf.WriteByte('[')
		for i, b := range v.BoolSlice {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(buf, "%t", b)
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unencodable value type %s", v.Type)
	}
	return nil
}

// jsonString escapes a string through encoding/json for correctness.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
