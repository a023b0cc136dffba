package snapshot

import (
	"fmt"
	"math"
)

// Value is a deeply read-only payload value. Implementations either are
// inherently immutable (scalars) or wrap their backing store so that reads
// behave like the original while every mutator panics with *ReadOnlyError.
type Value interface {
	Kind() Kind
	sealed()
}

type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) sealed()    {}

type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) sealed()    {}

type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) sealed()    {}

type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) sealed()    {}

type String string

func (String) Kind() Kind { return KindString }
func (String) sealed()    {}

// ReadOnlyError reports a mutation attempt against a snapshot value. It is
// raised as a panic at the call site: mutating a snapshot is a caller bug,
// not a recoverable business condition.
type ReadOnlyError struct {
	Kind Kind
	Op   string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("snapshot: %s value is read-only (%s)", e.Kind, e.Op)
}

func denyMutate(k Kind, op string) {
	panic(&ReadOnlyError{Kind: k, Op: op})
}

// normKey collapses the native numeric forms so that, for example, int(1)
// and int64(1) address the same dict entry or set member. Only scalars make
// valid keys; anything else reports false.
func normKey(key any) (any, bool) {
	switch k := key.(type) {
	case nil:
		return nil, true
	case bool:
		return k, true
	case string:
		return k, true
	case int:
		return int64(k), true
	case int8:
		return int64(k), true
	case int16:
		return int64(k), true
	case int32:
		return int64(k), true
	case int64:
		return k, true
	case uint8:
		return int64(k), true
	case uint16:
		return int64(k), true
	case uint32:
		return int64(k), true
	case uint:
		if uint64(k) > math.MaxInt64 {
			return nil, false
		}
		return int64(k), true
	case uint64:
		if k > math.MaxInt64 {
			return nil, false
		}
		return int64(k), true
	case float32:
		return float64(k), true
	case float64:
		return k, true
	}
	return nil, false
}

// keyValue converts a normalized key into its snapshot form.
func keyValue(norm any) Value {
	switch k := norm.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(k)
	case string:
		return String(k)
	case int64:
		return Int(k)
	case float64:
		return Float(k)
	}
	panic(fmt.Sprintf("snapshot: unreachable key form %T", norm))
}
