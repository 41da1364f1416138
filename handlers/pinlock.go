package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"streamix/services/pinlock"
)

type pinlockMachine interface {
	Begin(profileID int, intent pinlock.Intent) error
	InputDigit(d byte) error
	Backspace() error
	Cancel()
	Snapshot() pinlock.Snapshot
}

var _ pinlockMachine = (*pinlock.Machine)(nil)

// PinLockHandler exposes the PIN challenge dialog over HTTP. Clients drive
// it one keystroke at a time and poll or re-read the snapshot to render.
type PinLockHandler struct {
	Machine pinlockMachine
}

func NewPinLockHandler(machine pinlockMachine) *PinLockHandler {
	return &PinLockHandler{Machine: machine}
}

// Begin opens a challenge for a profile.
func (h *PinLockHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileID int    `json:"profileId"`
		Intent    string `json:"intent"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.ProfileID <= 0 {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	if err := h.Machine.Begin(body.ProfileID, pinlock.Intent(body.Intent)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pinlock.ErrBusy) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.writeSnapshot(w)
}

// Digit feeds one digit into the open challenge.
func (h *PinLockHandler) Digit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Digit string `json:"digit"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body.Digit) != 1 {
		http.Error(w, "digit must be a single character", http.StatusBadRequest)
		return
	}

	if err := h.Machine.InputDigit(body.Digit[0]); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, pinlock.ErrNotDigit):
			status = http.StatusBadRequest
		case errors.Is(err, pinlock.ErrNotChallenging):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.writeSnapshot(w)
}

// Backspace clears the focused slot or retreats when it is empty.
func (h *PinLockHandler) Backspace(w http.ResponseWriter, r *http.Request) {
	if err := h.Machine.Backspace(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pinlock.ErrNotChallenging) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.writeSnapshot(w)
}

// Cancel abandons the challenge.
func (h *PinLockHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.Machine.Cancel()
	h.writeSnapshot(w)
}

// State returns the current dialog snapshot.
func (h *PinLockHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w)
}

func (h *PinLockHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *PinLockHandler) writeSnapshot(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Machine.Snapshot())
}
