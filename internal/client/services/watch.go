package services

// watchers is a registry of snapshot callbacks. It is not synchronised;
// owners guard it with their own mutex and call the returned functions
// after unlocking.
type watchers[T any] struct {
	next int
	fns  map[int]func(T)
}

func (w *watchers[T]) add(fn func(T)) int {
	if w.fns == nil {
		w.fns = make(map[int]func(T))
	}
	id := w.next
	w.next++
	w.fns[id] = fn
	return id
}

func (w *watchers[T]) remove(id int) {
	delete(w.fns, id)
}

func (w *watchers[T]) list() []func(T) {
	out := make([]func(T), 0, len(w.fns))
	for _, fn := range w.fns {
		out = append(out, fn)
	}
	return out
}
