package cache

// node is an element of recency. It carries its key so eviction can delete
// the map entry in O(1).
type node[K comparable] struct {
	key        K
	prev, next *node[K]
}

// recency is a doubly-linked list ordered from most to least recently used.
// It is not safe for concurrent use; shards guard it with their mutex.
type recency[K comparable] struct {
	head, tail *node[K]
	n          int
}

func (l *recency[K]) len() int { return l.n }

// push inserts key as the most recently used element.
func (l *recency[K]) push(key K) *node[K] {
	e := &node[K]{key: key, next: l.head}
	if l.head != nil {
		l.head.prev = e
	} else {
		l.tail = e
	}
	l.head = e
	l.n++
	return e
}

// touch marks e as the most recently used element.
func (l *recency[K]) touch(e *node[K]) {
	if e == l.head {
		return
	}
	l.unlink(e)
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	} else {
		l.tail = e
	}
	l.head = e
	l.n++
}

// remove drops e from the list.
func (l *recency[K]) remove(e *node[K]) { l.unlink(e) }

// evict removes the least recently used element and returns its key.
func (l *recency[K]) evict() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	e := l.tail
	l.unlink(e)
	return e.key, true
}

func (l *recency[K]) unlink(e *node[K]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	l.n--
}
