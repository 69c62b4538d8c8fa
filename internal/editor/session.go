package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/validation"
)

// Direction moves the current step one position.
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// ListKind names a reorderable list of the draft.
type ListKind string

const (
	ListWorkExperiences ListKind = "workExperiences"
	ListEducations      ListKind = "educations"
)

// State is a read-only view of a session.
type State struct {
	SessionID     string         `json:"sessionId"`
	ResumeID      string         `json:"resumeId,omitempty"`
	CurrentStep   StepKey        `json:"currentStep"`
	PreviousStep  StepKey        `json:"previousStep,omitempty"`
	NextStep      StepKey        `json:"nextStep,omitempty"`
	Steps         []Step         `json:"steps"`
	Draft         resumes.Resume `json:"draft"`
	IsSaving      bool           `json:"isSaving"`
	HasPending    bool           `json:"hasPendingChanges"`
	LastSavedAt   *time.Time     `json:"lastSavedAt,omitempty"`
	LastSaveError string         `json:"lastSaveError,omitempty"`
}

// Session holds one in-memory draft and the current step for its owner.
type Session struct {
	ID     string
	UserID string

	validator    *validation.Validator
	autosaver    *Autosaver
	writeThrough bool
	lastSeen     time.Time // guarded by the manager

	mu    sync.Mutex
	step  StepKey
	draft resumes.Resume
}

func newSession(id, userID string, draft resumes.Resume, v *validation.Validator, save SaveFunc, delay time.Duration) *Session {
	s := &Session{
		ID:        id,
		UserID:    userID,
		validator: v,
		step:      FirstStep(),
		draft:     draft.Clone(),
	}
	s.autosaver = NewAutosaver(save, delay, s.adoptSaved)
	return s
}

// Apply decodes and validates the slice for step, merges it into the draft and
// schedules a save. On any error the draft is left untouched.
func (s *Session) Apply(step StepKey, raw []byte) error {
	if !ValidStep(step) {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	slice, err := decodeSlice(step, raw)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(slice); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autosaver.isClosed() {
		return ErrSessionClosed
	}
	slice.Merge(&s.draft)
	return s.autosaver.Schedule(s.draft)
}

// Navigate moves one step in dir. Moving past either end does nothing.
func (s *Session) Navigate(dir Direction) (StepKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		next StepKey
		ok   bool
	)
	switch dir {
	case DirectionNext:
		next, ok = NextStep(s.step)
	case DirectionPrevious:
		next, ok = PreviousStep(s.step)
	default:
		return s.step, fmt.Errorf("%w: direction %q", ErrInvalidInput, dir)
	}
	if ok {
		s.step = next
	}
	return s.step, nil
}

// GoTo jumps to a named step.
func (s *Session) GoTo(step StepKey) error {
	if !ValidStep(step) {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	s.mu.Lock()
	s.step = step
	s.mu.Unlock()
	return nil
}

// Reorder moves an entry within a list of the draft and schedules a save.
func (s *Session) Reorder(list ListKind, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autosaver.isClosed() {
		return ErrSessionClosed
	}
	switch list {
	case ListWorkExperiences:
		moved, err := Move(s.draft.WorkExperiences, from, to)
		if err != nil {
			return err
		}
		s.draft.WorkExperiences = moved
	case ListEducations:
		moved, err := Move(s.draft.Educations, from, to)
		if err != nil {
			return err
		}
		s.draft.Educations = moved
	default:
		return fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	return s.autosaver.Schedule(s.draft)
}

// Slice returns the current value of a step's slice.
func (s *Session) Slice(step StepKey) (Slice, error) {
	if !ValidStep(step) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sliceFor(step, s.draft), nil
}

// IsSaving reports whether a write is running.
func (s *Session) IsSaving() bool {
	return s.autosaver.Status().IsSaving
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.autosaver.Status()
	prev, _ := PreviousStep(s.step)
	next, _ := NextStep(s.step)
	st := State{
		SessionID:    s.ID,
		ResumeID:     s.draft.ID,
		CurrentStep:  s.step,
		PreviousStep: prev,
		NextStep:     next,
		Steps:        Steps,
		Draft:        s.draft.Clone(),
		IsSaving:     status.IsSaving,
		HasPending:   status.Pending,
	}
	if !status.LastSavedAt.IsZero() {
		t := status.LastSavedAt
		st.LastSavedAt = &t
	}
	if status.LastError != nil {
		st.LastSaveError = saveErrorMessage(status.LastError)
	}
	return st
}

// Flush writes the pending snapshot now.
func (s *Session) Flush(ctx context.Context) error {
	return s.autosaver.Flush(ctx)
}

// Commit flushes when the session writes through; otherwise the debounced
// save is left to run on its own.
func (s *Session) Commit(ctx context.Context) error {
	if !s.writeThrough {
		return nil
	}
	return s.autosaver.Flush(ctx)
}

// ResumeID is the id of the document being edited, empty until a new draft
// is first saved.
func (s *Session) ResumeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.ID
}

// Close flushes and stops the session's writer.
func (s *Session) Close(ctx context.Context) error {
	return s.autosaver.Close(ctx)
}

// adoptSaved records the id assigned by the first write so later state
// reports it.
func (s *Session) adoptSaved(saved resumes.Resume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.ID == "" {
		s.draft.ID = saved.ID
	}
}

func saveErrorMessage(err error) string {
	switch {
	case errors.Is(err, resumes.ErrUpgradeRequired):
		return "upgrade_required"
	case errors.Is(err, resumes.ErrNotFound):
		return "not_found"
	default:
		return "save_failed"
	}
}
