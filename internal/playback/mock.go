package playback

// MockTransport is a test double for Transport.
//
// Events are delivered synchronously by Emit, as if already on the loop.
type MockTransport struct {
	LoadCalls   []string
	ResumeCalls int
	PauseCalls  int
	LoadErr     error

	handlers map[int]func(Event)
	nextID   int
	last     func(Event)
}

// NewMockTransport creates a mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{handlers: make(map[int]func(Event))}
}

func (m *MockTransport) Load(url string) error {
	m.LoadCalls = append(m.LoadCalls, url)
	return m.LoadErr
}

func (m *MockTransport) Resume() error {
	m.ResumeCalls++
	return nil
}

func (m *MockTransport) Pause() error {
	m.PauseCalls++
	return nil
}

func (m *MockTransport) Subscribe(fn func(Event)) func() {
	id := m.nextID
	m.nextID++
	m.handlers[id] = fn
	m.last = fn
	return func() { delete(m.handlers, id) }
}

// Subscribers returns the number of live subscriptions.
func (m *MockTransport) Subscribers() int {
	return len(m.handlers)
}

// LastHandler returns the most recently subscribed handler, even if it has
// since been unsubscribed.
func (m *MockTransport) LastHandler() func(Event) {
	return m.last
}

// Emit delivers ev to every live subscriber.
func (m *MockTransport) Emit(ev Event) {
	for _, fn := range m.snapshot() {
		fn(ev)
	}
}

// SimulatePlaying emits a play event.
func (m *MockTransport) SimulatePlaying() { m.Emit(Event{Kind: EventPlay}) }

// SimulatePaused emits a pause event.
func (m *MockTransport) SimulatePaused() { m.Emit(Event{Kind: EventPause}) }

// SimulateEnded emits a clean end-of-track event.
func (m *MockTransport) SimulateEnded() { m.Emit(Event{Kind: EventEnded}) }

// SimulateError emits a transport error.
func (m *MockTransport) SimulateError(err error) { m.Emit(Event{Kind: EventError, Err: err}) }

func (m *MockTransport) snapshot() []func(Event) {
	out := make([]func(Event), 0, len(m.handlers))
	for i := 0; i < m.nextID; i++ {
		if fn, ok := m.handlers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Verify MockTransport implements Transport at compile time.
var _ Transport = (*MockTransport)(nil)
