// Package snapshot converts arbitrary payload value graphs into deeply
// read-only equivalents. Reads behave like the original; writes are gone at
// compile time or panic with *ReadOnlyError. The conversion copies
// container contents and buffer bytes, so neither the producer's later
// mutations nor a handler's processing can change what was admitted.
package snapshot

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"
)

// Snapshot returns a read-only, structurally equivalent copy of v. A value
// that is already a snapshot Value is returned unchanged. Payload kinds
// outside the closed set are a construction error, not a business outcome.
func Snapshot(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("snapshot: integer %d overflows int64", x)
		}
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("snapshot: integer %d overflows int64", x)
		}
		return Int(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return &Time{t: x}, nil
	case *regexp.Regexp:
		// Recompile from source rather than aliasing the caller's
		// matcher, whose Longest state could change under us.
		return &Pattern{re: regexp.MustCompile(x.String())}, nil
	case []byte:
		return &Buffer{data: append([]byte(nil), x...)}, nil
	case *SharedBuffer:
		return &Buffer{data: append([]byte(nil), x.data...), shared: true}, nil
	case *NumericView:
		data := append([]byte(nil), x.data...)
		return &NumericBuffer{elem: x.elem, buf: &Buffer{data: data}}, nil
	case []any:
		items := make([]Value, len(x))
		for i, el := range x {
			sv, err := Snapshot(el)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = sv
		}
		return &List{items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(map[string]Value, len(x))
		for _, k := range keys {
			sv, err := Snapshot(x[k])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = sv
		}
		return &Record{keys: keys, fields: fields}, nil
	case *Dict:
		entries := make([]dictEntry, 0, len(x.keys))
		index := make(map[any]int, len(x.keys))
		for _, nk := range x.keys {
			sv, err := Snapshot(x.items[nk])
			if err != nil {
				return nil, fmt.Errorf("dict key %v: %w", nk, err)
			}
			index[nk] = len(entries)
			entries = append(entries, dictEntry{key: keyValue(nk), val: sv})
		}
		return &ReadOnlyDict{entries: entries, index: index}, nil
	case *Set:
		elems := make([]Value, 0, len(x.keys))
		index := make(map[any]struct{}, len(x.keys))
		for _, nk := range x.keys {
			elems = append(elems, keyValue(nk))
			index[nk] = struct{}{}
		}
		return &ReadOnlySet{elems: elems, index: index}, nil
	}
	return nil, fmt.Errorf("snapshot: unsupported payload kind %T", v)
}

// MustSnapshot is Snapshot for payloads the caller knows are well formed;
// it panics on a malformed graph.
func MustSnapshot(v any) Value {
	sv, err := Snapshot(v)
	if err != nil {
		panic(err.Error())
	}
	return sv
}
