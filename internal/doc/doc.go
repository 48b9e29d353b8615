// Package doc implements the replicated-document primitives the sheet is
// built on: ordered id lists, string maps, and nested per-key field maps.
//
// Every mutation is expressed as one idempotent primitive Update that can be
// re-applied locally, shipped to a relay, and applied by other replicas.
// There is no read-modify-write at this layer; concurrent replicas converge
// last-write-wins per primitive.
package doc

import (
	"sort"
	"sync"
)

type UpdateKind string

const (
	UpdateListInsert  UpdateKind = "list.insert"
	UpdateListDelete  UpdateKind = "list.delete"
	UpdateListReplace UpdateKind = "list.replace"
	UpdateMapSet      UpdateKind = "map.set"
	UpdateMapDelete   UpdateKind = "map.delete"
	UpdateFieldSet    UpdateKind = "field.set"
	UpdateFieldDelete UpdateKind = "field.delete"
)

// Update is one primitive mutation against a named structure. It is the
// unit of replication: JSON-encoded on the wire, applied verbatim on every
// replica.
type Update struct {
	Kind   UpdateKind `json:"kind"`
	Target string     `json:"target"`

	// list.insert
	Index int `json:"index,omitempty"`
	// list.insert, list.delete
	ID string `json:"id,omitempty"`
	// list.replace
	List []string `json:"list,omitempty"`

	// map.* and field.*: Key addresses the entry (cell key or card id).
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// field.*
	Field      string `json:"field,omitempty"`
	FieldValue any    `json:"fieldValue,omitempty"`
}

// Doc is one replicated document: a bag of named lists, maps, and nested
// field maps, plus a change subscription. Structures are created on first
// access, mirroring how a fresh replica materializes remote state.
type Doc struct {
	mu     sync.Mutex
	lists  map[string]*List
	maps   map[string]*Map
	nested map[string]*Nested
	subs   []func(u Update, remote bool)
}

func New() *Doc {
	return &Doc{
		lists:  map[string]*List{},
		maps:   map[string]*Map{},
		nested: map[string]*Nested{},
	}
}

func (d *Doc) List(name string) *List {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listLocked(name)
}

func (d *Doc) listLocked(name string) *List {
	l, ok := d.lists[name]
	if !ok {
		l = &List{doc: d, name: name}
		d.lists[name] = l
	}
	return l
}

func (d *Doc) Map(name string) *Map {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapLocked(name)
}

func (d *Doc) mapLocked(name string) *Map {
	m, ok := d.maps[name]
	if !ok {
		m = &Map{doc: d, name: name, entries: map[string]string{}}
		d.maps[name] = m
	}
	return m
}

func (d *Doc) Nested(name string) *Nested {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nestedLocked(name)
}

func (d *Doc) nestedLocked(name string) *Nested {
	n, ok := d.nested[name]
	if !ok {
		n = &Nested{doc: d, name: name, entries: map[string]map[string]any{}}
		d.nested[name] = n
	}
	return n
}

// Subscribe registers fn to run after every applied update. remote is true
// when the update arrived from another replica rather than a local
// mutation; connectors use it to forward local updates without echoing
// remote ones back. Callbacks run outside the document lock, on the
// applying goroutine, in apply order.
func (d *Doc) Subscribe(fn func(u Update, remote bool)) {
	d.mu.Lock()
	d.subs = append(d.subs, fn)
	d.mu.Unlock()
}

// Apply applies one locally-originated update. Re-applying the same update
// is harmless: inserts of an id already present, deletes of an absent id,
// and repeated sets all settle to the same state.
func (d *Doc) Apply(u Update) {
	d.apply(u, false)
}

// ApplyRemote applies one update received from another replica.
func (d *Doc) ApplyRemote(u Update) {
	d.apply(u, true)
}

func (d *Doc) apply(u Update, remote bool) {
	d.mu.Lock()
	d.applyLocked(u)
	subs := append([]func(Update, bool){}, d.subs...)
	d.mu.Unlock()
	for _, fn := range subs {
		fn(u, remote)
	}
}

func (d *Doc) applyLocked(u Update) {
	switch u.Kind {
	case UpdateListInsert:
		d.listLocked(u.Target).insertLocked(u.Index, u.ID)
	case UpdateListDelete:
		d.listLocked(u.Target).deleteLocked(u.ID)
	case UpdateListReplace:
		d.listLocked(u.Target).replaceLocked(u.List)
	case UpdateMapSet:
		d.mapLocked(u.Target).setLocked(u.Key, u.Value)
	case UpdateMapDelete:
		d.mapLocked(u.Target).deleteLocked(u.Key)
	case UpdateFieldSet:
		d.nestedLocked(u.Target).setFieldLocked(u.Key, u.Field, u.FieldValue)
	case UpdateFieldDelete:
		d.nestedLocked(u.Target).deleteFieldLocked(u.Key, u.Field)
	}
}

// Snapshot captures the full document state as a flat list of updates that
// rebuilds it when applied to an empty Doc, in structure order.
func (d *Doc) Snapshot() []Update {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Update
	for _, name := range sortedKeys(d.lists) {
		l := d.lists[name]
		if len(l.ids) == 0 {
			continue
		}
		out = append(out, Update{Kind: UpdateListReplace, Target: name, List: append([]string{}, l.ids...)})
	}
	for _, name := range sortedKeys(d.maps) {
		m := d.maps[name]
		for _, k := range m.keysLocked() {
			out = append(out, Update{Kind: UpdateMapSet, Target: name, Key: k, Value: m.entries[k]})
		}
	}
	for _, name := range sortedKeys(d.nested) {
		n := d.nested[name]
		for _, k := range n.keysLocked() {
			fields := n.entries[k]
			for _, f := range sortedKeys(fields) {
				out = append(out, Update{Kind: UpdateFieldSet, Target: name, Key: k, Field: f, FieldValue: fields[f]})
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
