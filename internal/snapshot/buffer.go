package snapshot

// SharedBuffer is a producer-side byte region whose backing store may be
// referenced from several places at once. Snapshotting copies the bytes,
// insulating the snapshot from later writes through any live reference.
type SharedBuffer struct {
	data []byte
}

func NewSharedBuffer(n int) *SharedBuffer {
	return &SharedBuffer{data: make([]byte, n)}
}

// SharedBufferOf wraps b without copying; the caller keeps a live alias.
func SharedBufferOf(b []byte) *SharedBuffer {
	return &SharedBuffer{data: b}
}

// Bytes returns the live backing store.
func (b *SharedBuffer) Bytes() []byte { return b.data }

func (b *SharedBuffer) Len() int { return len(b.data) }

// Buffer is the read-only facade over snapshotted bytes. Its Kind tag keeps
// it distinguishable from the mutable native forms ([]byte, *SharedBuffer);
// a "real" mutable buffer is only obtainable as a fresh copy that can never
// feed back into the snapshot.
type Buffer struct {
	data   []byte
	shared bool
}

func (b *Buffer) Kind() Kind {
	if b.shared {
		return KindSharedBuffer
	}
	return KindBuffer
}
func (b *Buffer) sealed() {}

// Shared reports whether the snapshot was taken from a shared-memory form.
func (b *Buffer) Shared() bool { return b.shared }

func (b *Buffer) Len() int { return len(b.data) }

// At returns the byte at i, reporting false for an out-of-range index.
func (b *Buffer) At(i int) (byte, bool) {
	if i < 0 || i >= len(b.data) {
		return 0, false
	}
	return b.data[i], true
}

// Slice returns a read-only view of [from, to). Bounds are clamped; a
// reversed or fully out-of-range pair yields an empty buffer.
func (b *Buffer) Slice(from, to int) *Buffer {
	n := len(b.data)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return &Buffer{shared: b.shared}
	}
	return &Buffer{data: b.data[from:to], shared: b.shared}
}

// Copy returns fresh bytes the caller may mutate freely; writes to the copy
// never change subsequent reads of the snapshot.
func (b *Buffer) Copy() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// AppendTo appends the buffer's bytes to dst and returns the result.
func (b *Buffer) AppendTo(dst []byte) []byte {
	return append(dst, b.data...)
}

func (b *Buffer) SetAt(int, byte) { denyMutate(b.Kind(), "set_at") }
func (b *Buffer) Fill(byte)       { denyMutate(b.Kind(), "fill") }
