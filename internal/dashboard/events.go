package dashboard

import "fmt"

// EventKind names a state change.
type EventKind string

const (
	EventLoaded  EventKind = "loaded"
	EventSorted  EventKind = "sorted"
	EventPaged   EventKind = "paged"
	EventResized EventKind = "resized"
)

// Event is published after each state change.
type Event struct {
	Kind   EventKind `json:"kind"`
	Table  TableName `json:"table,omitempty"`
	LoadID string    `json:"loadId,omitempty"`
}

// Subscribe registers fn for state-changed events and returns a function
// that removes it. fn runs synchronously after the change is applied and
// may call back into the controller.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) publish(evt Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

func unknownColumn(table TableName, key string) error {
	return fmt.Errorf("%w %q for table %s", ErrUnknownColumn, key, table)
}
