package doc

import "sort"

// Map is a replicated string map (cell occupancy, lane titles).
type Map struct {
	doc     *Doc
	name    string
	entries map[string]string
}

func (m *Map) Set(key, value string) {
	m.doc.Apply(Update{Kind: UpdateMapSet, Target: m.name, Key: key, Value: value})
}

func (m *Map) Delete(key string) {
	m.doc.Apply(Update{Kind: UpdateMapDelete, Target: m.name, Key: key})
}

func (m *Map) Get(key string) (string, bool) {
	m.doc.mu.Lock()
	defer m.doc.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *Map) Len() int {
	m.doc.mu.Lock()
	defer m.doc.mu.Unlock()
	return len(m.entries)
}

// ForEach visits entries in sorted key order over a stable copy, so
// callbacks may mutate the map.
func (m *Map) ForEach(fn func(key, value string)) {
	m.doc.mu.Lock()
	keys := m.keysLocked()
	snap := make(map[string]string, len(keys))
	for _, k := range keys {
		snap[k] = m.entries[k]
	}
	m.doc.mu.Unlock()
	for _, k := range keys {
		fn(k, snap[k])
	}
}

func (m *Map) keysLocked() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Map) setLocked(key, value string) {
	m.entries[key] = value
}

func (m *Map) deleteLocked(key string) {
	delete(m.entries, key)
}

// Nested is a replicated map of field maps, one field map per key. Card
// metadata lives here: writing a single field touches only that field, so
// two clients editing different fields of the same card never conflict.
type Nested struct {
	doc     *Doc
	name    string
	entries map[string]map[string]any
}

func (n *Nested) SetField(key, field string, value any) {
	n.doc.Apply(Update{Kind: UpdateFieldSet, Target: n.name, Key: key, Field: field, FieldValue: value})
}

func (n *Nested) DeleteField(key, field string) {
	n.doc.Apply(Update{Kind: UpdateFieldDelete, Target: n.name, Key: key, Field: field})
}

// Get returns a copy of the field map for key; mutating the copy does not
// touch the document.
func (n *Nested) Get(key string) (map[string]any, bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	fields, ok := n.entries[key]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(fields))
	for f, v := range fields {
		out[f] = v
	}
	return out, true
}

func (n *Nested) Field(key, field string) (any, bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	fields, ok := n.entries[key]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}

func (n *Nested) Keys() []string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.keysLocked()
}

func (n *Nested) keysLocked() []string {
	keys := make([]string, 0, len(n.entries))
	for k := range n.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Nested) setFieldLocked(key, field string, value any) {
	fields, ok := n.entries[key]
	if !ok {
		fields = map[string]any{}
		n.entries[key] = fields
	}
	fields[field] = value
}

func (n *Nested) deleteFieldLocked(key, field string) {
	fields, ok := n.entries[key]
	if !ok {
		return
	}
	delete(fields, field)
	if len(fields) == 0 {
		delete(n.entries, key)
	}
}
