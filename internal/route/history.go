package route

// Location is where the current route lives.
type Location interface {
	Fragment() string
	Push(fragment string)
	OnChange(fn func(fragment string))
}

// History is an in-memory Location with back and forward stacks.
type History struct {
	current  string
	back     []string
	forward  []string
	handlers []func(string)
}

// NewHistory creates a history positioned at fragment.
func NewHistory(fragment string) *History {
	return &History{current: fragment}
}

// Fragment returns the current fragment.
func (h *History) Fragment() string {
	return h.current
}

// Push navigates to fragment. Pushing the current fragment is a no-op and
// does not notify.
func (h *History) Push(fragment string) {
	if fragment == h.current {
		return
	}
	h.back = append(h.back, h.current)
	h.forward = nil
	h.current = fragment
	h.notify()
}

// Back moves to the previous fragment. It reports false at the start of history.
func (h *History) Back() bool {
	if len(h.back) == 0 {
		return false
	}
	last := len(h.back) - 1
	h.forward = append(h.forward, h.current)
	h.current = h.back[last]
	h.back = h.back[:last]
	h.notify()
	return true
}

// Forward moves to the next fragment. It reports false at the end of history.
func (h *History) Forward() bool {
	if len(h.forward) == 0 {
		return false
	}
	last := len(h.forward) - 1
	h.back = append(h.back, h.current)
	h.current = h.forward[last]
	h.forward = h.forward[:last]
	h.notify()
	return true
}

// OnChange registers fn to run after every fragment change.
func (h *History) OnChange(fn func(fragment string)) {
	h.handlers = append(h.handlers, fn)
}

func (h *History) notify() {
	for _, fn := range h.handlers {
		fn(h.current)
	}
}
