package publisher

import "time"

// State is a step of the publish loop
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StatePublishing     State = "publishing"
	StateWaiting        State = "waiting"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
)

// Terminal reports whether no further transitions can follow s
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Transition records entering a state. Index is the item being published,
// the last submitted item while waiting, and -1 when no item applies.
type Transition struct {
	State State
	Index int
	At    time.Time
}

// State returns the current state
func (p *Publisher) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// History returns every transition made so far, oldest first
func (p *Publisher) History() []Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	history := make([]Transition, len(p.history))
	copy(history, p.history)
	return history
}

func (p *Publisher) transition(to State, index int) {
	p.mu.Lock()
	from := p.state
	p.state = to
	p.history = append(p.history, Transition{State: to, Index: index, At: p.now()})
	p.mu.Unlock()

	p.logger.DebugWithFields("State transition", map[string]interface{}{
		"from":  string(from),
		"to":    string(to),
		"index": index,
	})
}
