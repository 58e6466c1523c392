// Package active provides the ordered list of open intervals used while
// sweeping over the dense domain.
package active

// Handle refers to an element of a List. It stays valid until the element
// it refers to is removed.
type Handle int32

const nilHandle Handle = -1

type slot[T any] struct {
	value T
	prev  Handle
	next  Handle
}

// List is a doubly linked list backed by a slice. Removed slots are kept on
// a free list and reused by later pushes, so no operation allocates per node
// once the backing slice has grown.
type List[T any] struct {
	slots []slot[T]
	head  Handle
	tail  Handle
	free  Handle
	n     int
}

// New creates an empty list with room for capacity elements.
func New[T any](capacity int) *List[T] {
	return &List[T]{
		slots: make([]slot[T], 0, capacity),
		head:  nilHandle,
		tail:  nilHandle,
		free:  nilHandle,
	}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	return l.n
}

// PushBack appends v and returns its handle.
func (l *List[T]) PushBack(v T) Handle {
	var h Handle
	if l.free != nilHandle {
		h = l.free
		l.free = l.slots[h].next
		l.slots[h] = slot[T]{value: v, prev: l.tail, next: nilHandle}
	} else {
		h = Handle(len(l.slots))
		l.slots = append(l.slots, slot[T]{value: v, prev: l.tail, next: nilHandle})
	}

	if l.tail != nilHandle {
		l.slots[l.tail].next = h
	} else {
		l.head = h
	}
	l.tail = h
	l.n++
	return h
}

// Remove unlinks the element referred to by h. h must be live.
func (l *List[T]) Remove(h Handle) {
	s := &l.slots[h]
	if s.prev != nilHandle {
		l.slots[s.prev].next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nilHandle {
		l.slots[s.next].prev = s.prev
	} else {
		l.tail = s.prev
	}

	var zero T
	s.value = zero
	s.prev = nilHandle
	s.next = l.free
	l.free = h
	l.n--
}

// Prev returns the handle of the element immediately before h, or false if
// h is the first element.
func (l *List[T]) Prev(h Handle) (Handle, bool) {
	p := l.slots[h].prev
	return p, p != nilHandle
}

// Back returns the last element, or false if the list is empty.
func (l *List[T]) Back() (T, bool) {
	if l.tail == nilHandle {
		var zero T
		return zero, false
	}
	return l.slots[l.tail].value, true
}

// Get returns the value stored at h.
func (l *List[T]) Get(h Handle) T {
	return l.slots[h].value
}

// Values returns the elements from front to back.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.n)
	for h := l.head; h != nilHandle; h = l.slots[h].next {
		out = append(out, l.slots[h].value)
	}
	return out
}
