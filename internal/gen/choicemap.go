package gen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ChoiceMap is an ordered hierarchical mapping from address keys to
// recorded choices or nested sub-maps. Iteration follows insertion
// order, which for a traced process equals draw order, so walking a
// map is deterministic.
//
// An address is a path of string keys; the empty path is invalid.
// A key holds either a choice or a sub-map, never both.
type ChoiceMap struct {
	order   []string
	entries map[string]*entry
}

type entry struct {
	choice *Choice
	sub    *ChoiceMap
}

// NewChoiceMap creates an empty choice map.
func NewChoiceMap() *ChoiceMap {
	return &ChoiceMap{entries: make(map[string]*entry)}
}

// Len returns the number of leaf choices, recursively.
func (m *ChoiceMap) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, k := range m.order {
		e := m.entries[k]
		if e.choice != nil {
			n++
		} else {
			n += e.sub.Len()
		}
	}
	return n
}

// Keys returns the top-level keys in insertion order.
func (m *ChoiceMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.order))
	copy(keys, m.order)
	return keys
}

// Set records a choice at the given address, creating intermediate
// sub-maps as needed. Setting over an existing sub-map or leaf
// replaces it.
func (m *ChoiceMap) Set(c Choice, addr ...string) {
	if len(addr) == 0 {
		panic("gen: empty choice address")
	}
	key := addr[0]
	if len(addr) == 1 {
		if _, ok := m.entries[key]; !ok {
			m.order = append(m.order, key)
		}
		m.entries[key] = &entry{choice: &c}
		return
	}
	e, ok := m.entries[key]
	if !ok || e.sub == nil {
		e = &entry{sub: NewChoiceMap()}
		if !ok {
			m.order = append(m.order, key)
		}
		m.entries[key] = e
	}
	e.sub.Set(c, addr[1:]...)
}

// Get returns the choice at the given address.
func (m *ChoiceMap) Get(addr ...string) (Choice, bool) {
	if m == nil || len(addr) == 0 {
		return Choice{}, false
	}
	e, ok := m.entries[addr[0]]
	if !ok {
		return Choice{}, false
	}
	if len(addr) == 1 {
		if e.choice == nil {
			return Choice{}, false
		}
		return *e.choice, true
	}
	if e.sub == nil {
		return Choice{}, false
	}
	return e.sub.Get(addr[1:]...)
}

// Has reports whether a choice is recorded at the given address.
func (m *ChoiceMap) Has(addr ...string) bool {
	_, ok := m.Get(addr...)
	return ok
}

// Submap returns the sub-map under key, or nil when absent.
func (m *ChoiceMap) Submap(key string) *ChoiceMap {
	if m == nil {
		return nil
	}
	e, ok := m.entries[key]
	if !ok || e.sub == nil {
		return nil
	}
	return e.sub
}

// SetSubmap installs sub under key, replacing any prior entry.
// A nil sub removes the key.
func (m *ChoiceMap) SetSubmap(key string, sub *ChoiceMap) {
	if sub == nil {
		m.Delete(key)
		return
	}
	if _, ok := m.entries[key]; !ok {
		m.order = append(m.order, key)
	}
	m.entries[key] = &entry{sub: sub}
}

// Delete removes key and its subtree, if present.
func (m *ChoiceMap) Delete(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy. Choices are value types, so the copy
// shares nothing mutable with the original.
func (m *ChoiceMap) Clone() *ChoiceMap {
	if m == nil {
		return nil
	}
	out := NewChoiceMap()
	for _, k := range m.order {
		e := m.entries[k]
		if e.choice != nil {
			out.Set(*e.choice, k)
		} else {
			out.SetSubmap(k, e.sub.Clone())
		}
	}
	return out
}

// Merge copies every choice of other into m, other taking precedence
// at colliding addresses.
func (m *ChoiceMap) Merge(other *ChoiceMap) {
	if other == nil {
		return
	}
	other.Walk(func(addr []string, c Choice) {
		m.Set(c, addr...)
	})
}

// Walk visits every leaf choice in insertion order, depth-first.
func (m *ChoiceMap) Walk(fn func(addr []string, c Choice)) {
	if m == nil {
		return
	}
	m.walk(nil, fn)
}

func (m *ChoiceMap) walk(prefix []string, fn func(addr []string, c Choice)) {
	for _, k := range m.order {
		addr := append(append([]string(nil), prefix...), k)
		e := m.entries[k]
		if e.choice != nil {
			fn(addr, *e.choice)
		} else {
			e.sub.walk(addr, fn)
		}
	}
}

// Equal reports whether two maps record the same choice values at the
// same addresses. Insertion order and log-probabilities are not
// compared; equality is about the information content that replay
// consumes.
func (m *ChoiceMap) Equal(other *ChoiceMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	equal := true
	m.Walk(func(addr []string, c Choice) {
		got, ok := other.Get(addr...)
		if !ok || got.Value != c.Value {
			equal = false
		}
	})
	return equal
}

// String renders the map as one "addr=value" pair per line, in
// insertion order. Used in diagnostics and golden snapshots.
func (m *ChoiceMap) String() string {
	var sb strings.Builder
	m.Walk(func(addr []string, c Choice) {
		fmt.Fprintf(&sb, "%s=%s\n", strings.Join(addr, "/"), c.String())
	})
	return sb.String()
}

// MarshalJSON renders the map as a nested JSON object with keys in
// insertion order. Label choices serialize as strings, Flag choices
// as booleans. Log-probabilities are not serialized.
func (m *ChoiceMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.marshalJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *ChoiceMap) marshalJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, k := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		e := m.entries[k]
		if e.choice != nil {
			switch v := e.choice.Value.(type) {
			case Label:
				labelBytes, err := json.Marshal(string(v))
				if err != nil {
					return err
				}
				buf.Write(labelBytes)
			case Flag:
				fmt.Fprintf(buf, "%t", bool(v))
			default:
				return fmt.Errorf("unknown choice value type: %T", e.choice.Value)
			}
		} else if err := e.sub.marshalJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
