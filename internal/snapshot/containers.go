package snapshot

import "fmt"

// Dict is the mutable mapping producers build payloads with. Snapshotting
// turns it into a ReadOnlyDict; later mutations of the Dict never reach the
// snapshot. Keys are scalars and numeric forms are normalized, so Set(1, v)
// and Set(int64(1), v) address the same entry.
type Dict struct {
	keys  []any
	items map[any]any
}

func NewDict() *Dict {
	return &Dict{items: map[any]any{}}
}

// Set stores val under key and returns the dict for chaining. A non-scalar
// key is a producer bug and panics.
func (d *Dict) Set(key, val any) *Dict {
	nk, ok := normKey(key)
	if !ok {
		panic(fmt.Sprintf("snapshot: unsupported dict key type %T", key))
	}
	if _, exists := d.items[nk]; !exists {
		d.keys = append(d.keys, nk)
	}
	d.items[nk] = val
	return d
}

func (d *Dict) Get(key any) (any, bool) {
	nk, ok := normKey(key)
	if !ok {
		return nil, false
	}
	v, ok := d.items[nk]
	return v, ok
}

func (d *Dict) Delete(key any) bool {
	nk, ok := normKey(key)
	if !ok {
		return false
	}
	if _, exists := d.items[nk]; !exists {
		return false
	}
	delete(d.items, nk)
	for i, k := range d.keys {
		if k == nk {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

func (d *Dict) Len() int { return len(d.items) }

// Range iterates entries in insertion order.
func (d *Dict) Range(fn func(key, val any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.items[k]) {
			return
		}
	}
}

// Set is the mutable set container producers build payloads with. Members
// are scalars, normalized the same way dict keys are.
type Set struct {
	keys  []any
	items map[any]struct{}
}

func NewSet() *Set {
	return &Set{items: map[any]struct{}{}}
}

// Add inserts member and returns the set for chaining. A non-scalar member
// is a producer bug and panics.
func (s *Set) Add(member any) *Set {
	nk, ok := normKey(member)
	if !ok {
		panic(fmt.Sprintf("snapshot: unsupported set member type %T", member))
	}
	if _, exists := s.items[nk]; !exists {
		s.keys = append(s.keys, nk)
		s.items[nk] = struct{}{}
	}
	return s
}

func (s *Set) Has(member any) bool {
	nk, ok := normKey(member)
	if !ok {
		return false
	}
	_, ok = s.items[nk]
	return ok
}

func (s *Set) Delete(member any) bool {
	nk, ok := normKey(member)
	if !ok {
		return false
	}
	if _, exists := s.items[nk]; !exists {
		return false
	}
	delete(s.items, nk)
	for i, k := range s.keys {
		if k == nk {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Len() int { return len(s.items) }

// Range iterates members in insertion order.
func (s *Set) Range(fn func(member any) bool) {
	for _, k := range s.keys {
		if !fn(k) {
			return
		}
	}
}
