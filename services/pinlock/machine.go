package pinlock

import (
	"errors"
	"log"
	"sync"
	"time"
)

// PinLength is the fixed challenge size. Every profile PIN is exactly four
// digits.
const PinLength = 4

var (
	ErrNotChallenging = errors.New("no pin challenge in progress")
	ErrBusy           = errors.New("challenge already in progress")
	ErrNotDigit       = errors.New("input is not a digit")
)

// Intent records why the challenge was opened, so success can route to the
// right action.
type Intent string

const (
	IntentAccess Intent = "access"
	IntentDelete Intent = "delete"
)

// State is the challenge lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateChallenge State = "challenge"
	StateSuccess   State = "success"
	StateFailed    State = "failed"
)

// Verifier checks a candidate PIN against a profile.
type Verifier interface {
	VerifyPin(profileID int, pin string) error
}

// Deleter removes a profile after a delete-intent challenge succeeds.
type Deleter interface {
	Delete(profileID int) error
}

// Events are fired at most once per challenge, after the success delay.
// Callbacks run on a timer goroutine and must not call back into the
// machine.
type Events struct {
	Unlocked func(profileID int)
	Deleted  func(profileID int)
}

// Machine drives the PIN challenge dialog for locked profiles. A challenge
// collects exactly four digits into positional slots with a moving focus,
// verifies on the fourth digit, and resolves through a short success hold or
// a failure hold that wipes the entry and reopens the challenge. The dialog
// never closes on failure; only success or an explicit cancel ends it.
type Machine struct {
	mu       sync.Mutex
	verifier Verifier
	deleter  Deleter
	events   Events

	successDelay time.Duration
	retryDelay   time.Duration

	state     State
	intent    Intent
	profileID int
	digits    [PinLength]byte // 0 means empty slot
	focus     int
	errFlag   bool

	timer *time.Timer
	gen   uint64 // invalidates timers from superseded challenges
}

// Snapshot is a point-in-time view for rendering the dialog. Digit values
// are never exposed, only which slots are filled.
type Snapshot struct {
	State     State          `json:"state"`
	Intent    Intent         `json:"intent,omitempty"`
	ProfileID int            `json:"profileId,omitempty"`
	Filled    [PinLength]bool `json:"filled"`
	Focus     int            `json:"focus"`
	Error     bool           `json:"error"`
}

// Option configures a Machine.
type Option func(*Machine)

// WithDelays overrides the success and retry hold durations.
func WithDelays(success, retry time.Duration) Option {
	return func(m *Machine) {
		if success > 0 {
			m.successDelay = success
		}
		if retry > 0 {
			m.retryDelay = retry
		}
	}
}

func NewMachine(verifier Verifier, deleter Deleter, events Events, opts ...Option) *Machine {
	m := &Machine{
		verifier:     verifier,
		deleter:      deleter,
		events:       events,
		successDelay: 300 * time.Millisecond,
		retryDelay:   time.Second,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin opens a challenge for the given profile and intent. Only one
// challenge runs at a time.
func (m *Machine) Begin(profileID int, intent Intent) error {
	if intent != IntentAccess && intent != IntentDelete {
		intent = IntentAccess
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrBusy
	}

	m.state = StateChallenge
	m.intent = intent
	m.profileID = profileID
	m.resetEntryLocked()
	return nil
}

// InputDigit fills the focused slot and advances focus. The fourth digit
// triggers verification immediately.
func (m *Machine) InputDigit(d byte) error {
	if d < '0' || d > '9' {
		return ErrNotDigit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateChallenge {
		return ErrNotChallenging
	}

	m.digits[m.focus] = d
	m.errFlag = false
	if m.focus < PinLength-1 {
		m.focus++
		return nil
	}

	m.verifyLocked()
	return nil
}

// Backspace clears the focused slot. When the focused slot is already
// empty, focus retreats one position and that slot is cleared instead.
func (m *Machine) Backspace() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateChallenge {
		return ErrNotChallenging
	}

	if m.digits[m.focus] != 0 {
		m.digits[m.focus] = 0
		return nil
	}
	if m.focus > 0 {
		m.focus--
		m.digits[m.focus] = 0
	}
	return nil
}

// Cancel abandons the challenge from any state and returns to idle. Pending
// timers are disarmed; no event fires.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toIdleLocked()
}

// Snapshot returns the current dialog view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State: m.state,
		Focus: m.focus,
		Error: m.errFlag,
	}
	if m.state != StateIdle {
		snap.Intent = m.intent
		snap.ProfileID = m.profileID
	}
	for i, d := range m.digits {
		snap.Filled[i] = d != 0
	}
	return snap
}

func (m *Machine) verifyLocked() {
	pin := string(m.digits[:])

	if err := m.verifier.VerifyPin(m.profileID, pin); err != nil {
		m.state = StateFailed
		m.errFlag = true
		m.armLocked(m.retryDelay, func(m *Machine) {
			// Wrong entry wipes and reopens clean; the dialog stays up.
			m.state = StateChallenge
			m.resetEntryLocked()
			m.errFlag = false
		}, nil)
		return
	}

	m.state = StateSuccess
	m.errFlag = false

	profileID := m.profileID
	intent := m.intent
	m.armLocked(m.successDelay, func(m *Machine) {
		m.toIdleLocked()
	}, func() {
		m.resolve(profileID, intent)
	})
}

// resolve runs outside the lock, once per challenge.
func (m *Machine) resolve(profileID int, intent Intent) {
	switch intent {
	case IntentDelete:
		if m.deleter != nil {
			if err := m.deleter.Delete(profileID); err != nil {
				log.Printf("[pinlock] delete profile %d: %v", profileID, err)
				return
			}
		}
		if m.events.Deleted != nil {
			m.events.Deleted(profileID)
		}
	default:
		if m.events.Unlocked != nil {
			m.events.Unlocked(profileID)
		}
	}
}

// armLocked schedules a one-shot transition. A generation counter keeps a
// timer from a superseded challenge from mutating newer state.
func (m *Machine) armLocked(d time.Duration, transition func(*Machine), after func()) {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen

	m.timer = time.AfterFunc(d, func() {
		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			return
		}
		transition(m)
		m.mu.Unlock()

		if after != nil {
			after()
		}
	})
}

func (m *Machine) resetEntryLocked() {
	m.digits = [PinLength]byte{}
	m.focus = 0
}

func (m *Machine) toIdleLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	m.state = StateIdle
	m.intent = ""
	m.profileID = 0
	m.errFlag = false
	m.resetEntryLocked()
}
