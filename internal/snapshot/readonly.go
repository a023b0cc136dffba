package snapshot

// List is a read-only sequence. Accessors that build new data return fresh
// slices; the elements themselves stay read-only snapshot values.
type List struct {
	items []Value
}

func (l *List) Kind() Kind { return KindList }
func (l *List) sealed()    {}

func (l *List) Len() int { return len(l.items) }

// At returns the element at i, or Null for an out-of-range index.
func (l *List) At(i int) Value {
	if i < 0 || i >= len(l.items) {
		return Null{}
	}
	return l.items[i]
}

// Range iterates in order. The callback's list argument is this wrapper,
// never the backing slice.
func (l *List) Range(fn func(i int, v Value, list *List) bool) {
	for i, v := range l.items {
		if !fn(i, v, l) {
			return
		}
	}
}

// Values returns a fresh, independently mutable slice of the elements.
func (l *List) Values() []Value {
	out := make([]Value, len(l.items))
	copy(out, l.items)
	return out
}

// Unwrap returns the wrapper itself, not a mutable clone.
func (l *List) Unwrap() *List { return l }

func (l *List) Set(int, Value) { denyMutate(KindList, "set") }
func (l *List) Append(...Value) {
	denyMutate(KindList, "append")
}
func (l *List) Clear() { denyMutate(KindList, "clear") }

// Record is a read-only string-keyed structure. Keys are held in a stable
// sorted order so iteration is deterministic across runs.
type Record struct {
	keys   []string
	fields map[string]Value
}

func (r *Record) Kind() Kind { return KindRecord }
func (r *Record) sealed()    {}

func (r *Record) Len() int { return len(r.keys) }

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Keys returns a fresh copy of the key list.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range iterates fields in key order. The callback's record argument is
// this wrapper.
func (r *Record) Range(fn func(key string, v Value, rec *Record) bool) {
	for _, k := range r.keys {
		if !fn(k, r.fields[k], r) {
			return
		}
	}
}

// Unwrap returns the wrapper itself, not a mutable clone.
func (r *Record) Unwrap() *Record { return r }

func (r *Record) Put(string, Value) { denyMutate(KindRecord, "put") }
func (r *Record) Delete(string)     { denyMutate(KindRecord, "delete") }
func (r *Record) Clear()            { denyMutate(KindRecord, "clear") }

type dictEntry struct {
	key Value
	val Value
}

// ReadOnlyDict wraps a mapping container with scalar keys. Lookups accept
// native Go keys and normalize them the same way snapshotting did.
type ReadOnlyDict struct {
	entries []dictEntry
	index   map[any]int
}

func (d *ReadOnlyDict) Kind() Kind { return KindDict }
func (d *ReadOnlyDict) sealed()    {}

func (d *ReadOnlyDict) Len() int { return len(d.entries) }

func (d *ReadOnlyDict) Get(key any) (Value, bool) {
	nk, ok := normKey(key)
	if !ok {
		return nil, false
	}
	i, ok := d.index[nk]
	if !ok {
		return nil, false
	}
	return d.entries[i].val, true
}

func (d *ReadOnlyDict) Has(key any) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns a fresh slice of the keys in insertion order.
func (d *ReadOnlyDict) Keys() []Value {
	out := make([]Value, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.key
	}
	return out
}

// Range iterates entries in insertion order. The callback's dict argument
// is this wrapper, never the live backing store.
func (d *ReadOnlyDict) Range(fn func(key, v Value, dict *ReadOnlyDict) bool) {
	for _, e := range d.entries {
		if !fn(e.key, e.val, d) {
			return
		}
	}
}

// Unwrap returns the wrapper itself, not a fresh mutable clone.
func (d *ReadOnlyDict) Unwrap() *ReadOnlyDict { return d }

func (d *ReadOnlyDict) Set(any, any) { denyMutate(KindDict, "set") }
func (d *ReadOnlyDict) Delete(any)   { denyMutate(KindDict, "delete") }
func (d *ReadOnlyDict) Clear()       { denyMutate(KindDict, "clear") }

// ReadOnlySet wraps a set container with scalar members.
type ReadOnlySet struct {
	elems []Value
	index map[any]struct{}
}

func (s *ReadOnlySet) Kind() Kind { return KindSet }
func (s *ReadOnlySet) sealed()    {}

func (s *ReadOnlySet) Len() int { return len(s.elems) }

func (s *ReadOnlySet) Has(member any) bool {
	nk, ok := normKey(member)
	if !ok {
		return false
	}
	_, ok = s.index[nk]
	return ok
}

// Values returns a fresh slice of the members in insertion order.
func (s *ReadOnlySet) Values() []Value {
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

// Range iterates members in insertion order. The callback's set argument is
// this wrapper.
func (s *ReadOnlySet) Range(fn func(v Value, set *ReadOnlySet) bool) {
	for _, v := range s.elems {
		if !fn(v, s) {
			return
		}
	}
}

// Unwrap returns the wrapper itself, not a fresh mutable clone.
func (s *ReadOnlySet) Unwrap() *ReadOnlySet { return s }

func (s *ReadOnlySet) Add(any)    { denyMutate(KindSet, "add") }
func (s *ReadOnlySet) Delete(any) { denyMutate(KindSet, "delete") }
func (s *ReadOnlySet) Clear()     { denyMutate(KindSet, "clear") }
