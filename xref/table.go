// Package xref implements the cross-reference table: the per-trailer
// mapping from ObjectID to Reference, with reachability-based compaction,
// renumbering and reference fixup.
package xref

import (
	"sort"
	"sync"

	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/logging"
	"github.com/benoitkugler/pdfcore/object"
)

// Table is one cross-reference table, generally owned by a single trailer
// generation. A document holds one Table per trailer in its chain.
type Table struct {
	mu sync.Mutex

	entries map[object.ObjectID]*entry

	maxObjectNumber uint32

	allCache      []object.Reference
	allCacheValid bool

	deadObject func() *object.Dict
}

type entry struct {
	ref   object.Reference
	value object.Object
	bound bool
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{
		entries:    make(map[object.ObjectID]*entry),
		deadObject: object.NewDeadObjectFactory(),
	}
}

// MaxObjectNumber returns the highest object number ever assigned, even if
// that object has since been removed.
func (t *Table) MaxObjectNumber() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxObjectNumber
}

// AddReference registers ref, allocating a fresh object number when ref's
// ID is the zero value. Duplicate IDs are rejected.
func (t *Table) AddReference(ref object.Reference) (object.Reference, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ref.ID == (object.ObjectID{}) {
		t.maxObjectNumber++
		ref.ID = object.ObjectID{Number: t.maxObjectNumber, Generation: 0}
	}
	if _, ok := t.entries[ref.ID]; ok {
		return object.Reference{}, errs.Newf(errs.IntegrityViolation, "Table.AddReference", "duplicate object id %s", ref.ID)
	}
	t.entries[ref.ID] = &entry{ref: ref}
	if ref.ID.Number > t.maxObjectNumber {
		t.maxObjectNumber = ref.ID.Number
	}
	t.allCacheValid = false
	return ref, nil
}

// AddObject registers a fresh value, allocating the next free object
// number and binding the value immediately. This is the "add(object)"
// operation: programmatic construction, as opposed to AddReference which
// registers a reference already carrying (or lacking) an ObjectID.
func (t *Table) AddObject(value object.Object) (object.Reference, error) {
	t.mu.Lock()
	t.maxObjectNumber++
	id := object.ObjectID{Number: t.maxObjectNumber, Generation: 0}
	if _, ok := t.entries[id]; ok {
		t.mu.Unlock()
		return object.Reference{}, errs.Newf(errs.IntegrityViolation, "Table.AddObject", "duplicate object id %s", id)
	}
	ref := object.NewReference(id)
	t.entries[id] = &entry{ref: ref, value: value, bound: true}
	t.allCacheValid = false
	t.mu.Unlock()
	return ref, nil
}

// Remove deletes the entry for ref.ID, if present. Missing entries are a
// no-op.
func (t *Table) Remove(ref object.Reference) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[ref.ID]; !ok {
		return
	}
	delete(t.entries, ref.ID)
	t.allCacheValid = false
}

// Contains reports whether id has a registered entry.
func (t *Table) Contains(id object.ObjectID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[id]
	return ok
}

// Lookup returns the Reference registered for id, and whether it exists.
func (t *Table) Lookup(id object.ObjectID) (object.Reference, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return object.Reference{}, false
	}
	return e.ref, true
}

// Bind attaches a resolved value to id, registering the entry if it does
// not already exist (used while reading objects during parsing).
func (t *Table) Bind(id object.ObjectID, value object.Object) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		e = &entry{ref: object.NewReference(id)}
		t.entries[id] = e
		if id.Number > t.maxObjectNumber {
			t.maxObjectNumber = id.Number
		}
		t.allCacheValid = false
	}
	e.value = value
	e.bound = true
}

// Resolve implements object.Resolver: looking up the bound value for a
// reference. An entry with no backing value returns a synthesized dead
// object rather than an error, keeping the graph connected (spec-mandated
// "dead object" behavior).
func (t *Table) Resolve(ref object.Reference) (object.Object, error) {
	t.mu.Lock()
	e, ok := t.entries[ref.ID]
	if !ok || !e.bound {
		dead := t.deadObject()
		t.mu.Unlock()
		logging.XRef.Debugw("unresolved reference, returning dead object", "id", ref.ID.String())
		return dead, nil
	}
	v := e.value
	t.mu.Unlock()
	return v, nil
}

// AllReferences returns every registered reference ordered by (object
// number ascending, generation descending). The result is cached until the
// next mutating call.
func (t *Table) AllReferences() []object.Reference {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allReferencesLocked()
}

func (t *Table) allReferencesLocked() []object.Reference {
	if t.allCacheValid {
		return t.allCache
	}
	out := make([]object.Reference, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	t.allCache = out
	t.allCacheValid = true
	return out
}

// Compact retains only the references transitively reachable from root,
// discarding the rest. It returns the number of entries removed.
func (t *Table) Compact(root object.Object) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	reachable := make(map[object.ObjectID]bool)
	var walk func(o object.Object)
	walk = func(o object.Object) {
		switch v := o.(type) {
		case object.Reference:
			if reachable[v.ID] {
				return
			}
			reachable[v.ID] = true
			if e, ok := t.entries[v.ID]; ok && e.bound {
				walk(e.value)
			}
		case *object.Dict:
			for _, k := range v.Keys() {
				walk(v.Get(k))
			}
		case *object.Stream:
			walk(v.Dict)
		case object.Array:
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(root)

	removed := 0
	for id := range t.entries {
		if !reachable[id] {
			delete(t.entries, id)
			removed++
		}
	}
	if removed > 0 {
		t.allCacheValid = false
	}
	return removed
}

// Renumber reassigns every reference's ObjectID to 1..N, preserving the
// iteration order of AllReferences. It returns the mapping from old to new
// ObjectID so callers can rewrite Reference values embedded elsewhere.
func (t *Table) Renumber() map[object.ObjectID]object.ObjectID {
	t.mu.Lock()
	defer t.mu.Unlock()

	ordered := t.allReferencesLocked()
	mapping := make(map[object.ObjectID]object.ObjectID, len(ordered))
	newEntries := make(map[object.ObjectID]*entry, len(ordered))

	var n uint32
	for _, ref := range ordered {
		n++
		newID := object.ObjectID{Number: n, Generation: 0}
		mapping[ref.ID] = newID

		e := t.entries[ref.ID]
		e.ref.ID = newID
		newEntries[newID] = e
	}

	t.entries = newEntries
	t.maxObjectNumber = n
	t.allCacheValid = false
	return mapping
}

// MergeFrom copies every entry from src that t does not already hold,
// preserving src's entry verbatim (including any ContainingStreamID
// metadata) rather than re-deriving it. Existing entries in t are left
// untouched, so calling MergeFrom with progressively older generations
// gives the newest generation's bindings priority.
func (t *Table) MergeFrom(src *Table) {
	src.mu.Lock()
	entries := make([]*entry, 0, len(src.entries))
	for _, e := range src.entries {
		entries = append(entries, e)
	}
	src.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range entries {
		if _, ok := t.entries[e.ref.ID]; ok {
			continue
		}
		cp := *e
		t.entries[e.ref.ID] = &cp
		if e.ref.ID.Number > t.maxObjectNumber {
			t.maxObjectNumber = e.ref.ID.Number
		}
	}
	t.allCacheValid = false
}

// FixXRefs walks every bound dictionary/array/stream recursively and, for
// each Reference it finds, resolves it through resolver and repairs t's
// own entry when t has no binding (or no value) for that ID yet - binding
// it to the resolved value so a later Resolve against t succeeds instead
// of falling back to a synthesized dead object. When forceDocument is
// true and document is non-nil, document's table is used as the resolver
// instead of t itself, letting a generation's table backfill its
// cross-generation references from the document-wide table.
func (t *Table) FixXRefs(forceDocument bool, document *Table) {
	t.mu.Lock()
	snapshot := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		snapshot = append(snapshot, e)
	}
	t.mu.Unlock()

	resolver := object.Resolver(t)
	if forceDocument && document != nil {
		resolver = document
	}

	var fix func(o object.Object) object.Object
	fix = func(o object.Object) object.Object {
		switch v := o.(type) {
		case object.Reference:
			resolved, err := resolver.Resolve(v)
			if err != nil {
				return v
			}
			t.mu.Lock()
			e, ok := t.entries[v.ID]
			if !ok {
				e = &entry{ref: v}
				t.entries[v.ID] = e
				if v.ID.Number > t.maxObjectNumber {
					t.maxObjectNumber = v.ID.Number
				}
				t.allCacheValid = false
			}
			if !e.bound {
				e.value = resolved
				e.bound = true
			}
			t.mu.Unlock()
			return v
		case *object.Dict:
			for _, k := range v.Keys() {
				v.Set(k, fix(v.Get(k)))
			}
			return v
		case *object.Stream:
			fix(v.Dict)
			return v
		case object.Array:
			for i, item := range v {
				v[i] = fix(item)
			}
			return v
		default:
			return o
		}
	}

	for _, e := range snapshot {
		if e.bound {
			fix(e.value)
		}
	}
}
