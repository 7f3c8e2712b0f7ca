package agent

// DedupRing is a fixed-capacity ordered set of notification ids. When full,
// recording a new id evicts the oldest one. It suppresses duplicate toast and
// badge updates when the same notification arrives twice, for example across
// a reconnect race. It is a UX smoothing layer, not a correctness mechanism.
type DedupRing struct {
	capacity int
	order    []uint
	seen     map[uint]struct{}
}

// NewDedupRing creates a ring holding at most capacity ids
func NewDedupRing(capacity int) *DedupRing {
	if capacity < 1 {
		capacity = 1
	}
	return &DedupRing{
		capacity: capacity,
		order:    make([]uint, 0, capacity),
		seen:     make(map[uint]struct{}, capacity),
	}
}

// Observe records an id and reports whether it had been seen before. A
// previously-seen id is not re-recorded.
func (r *DedupRing) Observe(id uint) bool {
	if _, ok := r.seen[id]; ok {
		return true
	}
	if len(r.order) == r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest)
	}
	r.order = append(r.order, id)
	r.seen[id] = struct{}{}
	return false
}

// Len returns the number of ids currently held
func (r *DedupRing) Len() int {
	return len(r.order)
}
