package event

// Dispatcher fans events out to handlers registered per type
// Owned by a single world; not safe for concurrent use
type Dispatcher struct {
	handlers map[EventType][]subscription
	nextID   uint64
}

type subscription struct {
	id uint64
	fn Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe registers fn for et and returns a function that removes it
// Handlers run in registration order
func (d *Dispatcher) Subscribe(et EventType, fn Handler) (unsubscribe func()) {
	d.nextID++
	id := d.nextID
	d.handlers[et] = append(d.handlers[et], subscription{id: id, fn: fn})

	return func() {
		subs := d.handlers[et]
		for i, s := range subs {
			if s.id == id {
				// Copy-on-write so an in-flight Dispatch keeps its view
				next := make([]subscription, 0, len(subs)-1)
				next = append(next, subs[:i]...)
				next = append(next, subs[i+1:]...)
				d.handlers[et] = next
				return
			}
		}
	}
}

// Dispatch delivers ev to every handler subscribed to its type
func (d *Dispatcher) Dispatch(ev Event) {
	for _, s := range d.handlers[ev.Type] {
		s.fn(ev)
	}
}

// Has reports whether any handler listens for et
func (d *Dispatcher) Has(et EventType) bool {
	return len(d.handlers[et]) > 0
}

// Clear drops all handlers
func (d *Dispatcher) Clear() {
	d.handlers = make(map[EventType][]subscription)
}
