package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Element is the numeric element type of a numeric buffer view.
type Element uint8

const (
	Uint8 Element = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Float32
	Float64
)

func (e Element) Size() int {
	switch e {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	panic(fmt.Sprintf("snapshot: unknown element type %d", uint8(e)))
}

func (e Element) String() string {
	switch e {
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Uint32:
		return "uint32"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("element(%d)", uint8(e))
}

func (e Element) decode(b []byte, i int) float64 {
	off := i * e.Size()
	switch e {
	case Uint8:
		return float64(b[off])
	case Int8:
		return float64(int8(b[off]))
	case Uint16:
		return float64(binary.LittleEndian.Uint16(b[off:]))
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(b[off:])))
	case Uint32:
		return float64(binary.LittleEndian.Uint32(b[off:]))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(b[off:])))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
	}
	return 0
}

func (e Element) encode(b []byte, i int, v float64) {
	off := i * e.Size()
	switch e {
	case Uint8:
		b[off] = byte(uint8(v))
	case Int8:
		b[off] = byte(int8(v))
	case Uint16:
		binary.LittleEndian.PutUint16(b[off:], uint16(v))
	case Int16:
		binary.LittleEndian.PutUint16(b[off:], uint16(int16(v)))
	case Uint32:
		binary.LittleEndian.PutUint32(b[off:], uint32(v))
	case Int32:
		binary.LittleEndian.PutUint32(b[off:], uint32(int32(v)))
	case Float32:
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(float32(v)))
	case Float64:
		binary.LittleEndian.PutUint64(b[off:], math.Float64bits(v))
	}
}

// NumericView is the producer-side, mutable numeric view over raw bytes.
type NumericView struct {
	elem Element
	data []byte
}

func NewNumericView(elem Element, count int) *NumericView {
	return &NumericView{elem: elem, data: make([]byte, count*elem.Size())}
}

// NumericViewOf wraps data without copying; a trailing partial element is
// ignored.
func NumericViewOf(elem Element, data []byte) *NumericView {
	return &NumericView{elem: elem, data: data}
}

func (v *NumericView) Elem() Element { return v.elem }

func (v *NumericView) Len() int { return len(v.data) / v.elem.Size() }

func (v *NumericView) At(i int) float64 {
	if i < 0 || i >= v.Len() {
		return 0
	}
	return v.elem.decode(v.data, i)
}

func (v *NumericView) Set(i int, val float64) {
	if i < 0 || i >= v.Len() {
		return
	}
	v.elem.encode(v.data, i, val)
}

// Bytes returns the live backing store.
func (v *NumericView) Bytes() []byte { return v.data }

// NumericBuffer is the read-only numeric facade produced by snapshotting a
// NumericView. Element reads and derive operations work; the bytes are
// reachable only through the read-only Buffer facade or as fresh copies.
type NumericBuffer struct {
	elem Element
	buf  *Buffer
}

func (n *NumericBuffer) Kind() Kind { return KindNumericBuffer }
func (n *NumericBuffer) sealed()    {}

func (n *NumericBuffer) Elem() Element { return n.elem }

func (n *NumericBuffer) Len() int { return n.buf.Len() / n.elem.Size() }

// At returns the element at i, reporting false for an out-of-range index.
func (n *NumericBuffer) At(i int) (float64, bool) {
	if i < 0 || i >= n.Len() {
		return 0, false
	}
	return n.elem.decode(n.buf.data, i), true
}

// Buffer exposes the underlying bytes through the read-only facade.
func (n *NumericBuffer) Buffer() *Buffer { return n.buf }

// Range iterates elements in order. The callback's buffer argument is this
// facade, never the raw bytes.
func (n *NumericBuffer) Range(fn func(i int, v float64, buf *NumericBuffer) bool) {
	for i, total := 0, n.Len(); i < total; i++ {
		if !fn(i, n.elem.decode(n.buf.data, i), n) {
			return
		}
	}
}

// Map applies fn to every element and returns an independently mutable
// slice.
func (n *NumericBuffer) Map(fn func(v float64, i int, buf *NumericBuffer) float64) []float64 {
	out := make([]float64, n.Len())
	for i := range out {
		out[i] = fn(n.elem.decode(n.buf.data, i), i, n)
	}
	return out
}

// Filter returns the elements fn keeps, as an independently mutable slice.
func (n *NumericBuffer) Filter(fn func(v float64, i int, buf *NumericBuffer) bool) []float64 {
	var out []float64
	for i, total := 0, n.Len(); i < total; i++ {
		v := n.elem.decode(n.buf.data, i)
		if fn(v, i, n) {
			out = append(out, v)
		}
	}
	return out
}

// Reduce folds the elements left to right starting from init.
func (n *NumericBuffer) Reduce(init float64, fn func(acc, v float64, i int, buf *NumericBuffer) float64) float64 {
	acc := init
	for i, total := 0, n.Len(); i < total; i++ {
		acc = fn(acc, n.elem.decode(n.buf.data, i), i, n)
	}
	return acc
}

func (n *NumericBuffer) SetAt(int, float64) { denyMutate(KindNumericBuffer, "set_at") }
func (n *NumericBuffer) Fill(float64)       { denyMutate(KindNumericBuffer, "fill") }
