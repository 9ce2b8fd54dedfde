package redux

// Dispatcher is a FIFO of actions waiting to be dispatched.
//
// Reducers receive a fresh Dispatcher per invocation and may only Push onto
// it. The Store splices that queue onto the front of its own pending queue
// once the reducer returns.
type Dispatcher[A any] struct {
	queue []A
}

// Push appends an action to the back of the queue.
func (d *Dispatcher[A]) Push(action A) {
	d.queue = append(d.queue, action)
}

// Len returns the number of queued actions.
func (d *Dispatcher[A]) Len() int {
	return len(d.queue)
}

// pop removes and returns the front action.
func (d *Dispatcher[A]) pop() (A, bool) {
	var zero A
	if len(d.queue) == 0 {
		return zero, false
	}

	a := d.queue[0]
	// Clear the slot so the backing array does not pin popped actions.
	d.queue[0] = zero

	if len(d.queue) == 1 {
		d.queue = d.queue[:0]
	} else {
		d.queue = d.queue[1:]
	}
	return a, true
}

// pushFront splices all of other's actions in front of d's, keeping other's
// internal order, and leaves other empty.
func (d *Dispatcher[A]) pushFront(other *Dispatcher[A]) {
	if other == nil || len(other.queue) == 0 {
		return
	}
	merged := make([]A, 0, len(other.queue)+len(d.queue))
	merged = append(merged, other.queue...)
	merged = append(merged, d.queue...)
	d.queue = merged
	other.queue = nil
}

func (d *Dispatcher[A]) clone() Dispatcher[A] {
	if len(d.queue) == 0 {
		return Dispatcher[A]{}
	}
	return Dispatcher[A]{queue: append([]A(nil), d.queue...)}
}
