package playback

import "sync"

// maxQueuedCommands bounds the relay queue; a surface that stops draining
// loses the oldest directives first.
const maxQueuedCommands = 64

// Command is one directive for the player surface.
type Command struct {
	Type  string  `json:"type"` // play | pause | seek | volume | muted | fullscreen
	Value float64 `json:"value,omitempty"`
	Flag  bool    `json:"flag,omitempty"`
}

// CommandQueue implements MediaPlayer by relaying directives to a polling
// surface. The surface drains the queue and reports outcomes back through
// the controller's event methods.
type CommandQueue struct {
	mu   sync.Mutex
	cmds []Command
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

var _ MediaPlayer = (*CommandQueue)(nil)

func (q *CommandQueue) Play() error {
	q.push(Command{Type: "play"})
	return nil
}

func (q *CommandQueue) Pause() {
	q.push(Command{Type: "pause"})
}

func (q *CommandQueue) Seek(position float64) {
	q.push(Command{Type: "seek", Value: position})
}

func (q *CommandQueue) SetVolume(level float64) {
	q.push(Command{Type: "volume", Value: level})
}

func (q *CommandQueue) SetMuted(muted bool) {
	q.push(Command{Type: "muted", Flag: muted})
}

func (q *CommandQueue) SetFullscreen(on bool) error {
	q.push(Command{Type: "fullscreen", Flag: on})
	return nil
}

// Drain returns all queued directives and empties the queue.
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.cmds
	q.cmds = nil
	return out
}

func (q *CommandQueue) push(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.cmds) >= maxQueuedCommands {
		q.cmds = q.cmds[1:]
	}
	q.cmds = append(q.cmds, cmd)
}
