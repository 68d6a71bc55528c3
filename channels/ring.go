package channels

// ring is a fixed-capacity byte FIFO.  Capacity is always a power of
// two so positions wrap with a mask.  Not safe for concurrent use.
type ring struct {
	buf  []byte
	mask int
	head int // index of the oldest buffered byte
	size int // buffered byte count
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]byte, capacity), mask: capacity - 1}
}

func (r *ring) capacity() int { return len(r.buf) }
func (r *ring) buffered() int { return r.size }
func (r *ring) free() int     { return len(r.buf) - r.size }

// write appends as much of p as fits and returns the count stored.
func (r *ring) write(p []byte) int {
	n := len(p)
	if f := r.free(); n > f {
		n = f
	}
	if n == 0 {
		return 0
	}
	tail := (r.head + r.size) & r.mask
	c := copy(r.buf[tail:], p[:n])
	copy(r.buf, p[c:n])
	r.size += n
	return n
}

// read moves up to len(p) of the oldest bytes into p.
func (r *ring) read(p []byte) int {
	n := len(p)
	if n > r.size {
		n = r.size
	}
	if n == 0 {
		return 0
	}
	c := copy(p[:n], r.buf[r.head:])
	copy(p[c:n], r.buf)
	r.size -= n
	if r.size == 0 {
		r.head = 0
	} else {
		r.head = (r.head + n) & r.mask
	}
	return n
}

func (r *ring) reset() {
	r.head, r.size = 0, 0
}

// BufferCapacity returns the ring size a Provider uses for a requested
// buffer size: 0 selects the default, anything else is clamped to
// MinBufferSize and rounded up to a power of two.
func BufferCapacity(requested int) int {
	if requested <= 0 {
		return DefaultBufferSize
	}
	if requested < MinBufferSize {
		requested = MinBufferSize
	}
	c := MinBufferSize
	for c < requested {
		c <<= 1
	}
	return c
}
