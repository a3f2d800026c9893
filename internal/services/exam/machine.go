package exam

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"examseal/internal/domain"
)

// Event describes a completed transition, published for whoever renders state.
// The machine itself knows nothing about its consumers.
type Event struct {
	Op     string
	Status domain.SessionStatus
	At     time.Time
}

// Machine owns a single exam session and is the only mutator of it.
//
//	NotStarted --Start--> InProgress --Submit--> Submitted
//	                      InProgress --MarkSubmissionPending--> SubmissionPending --Submit--> Submitted
//
// Submit is additionally legal from SubmissionPending so a reconciliation pass
// can complete a deferred submission once connectivity returns.
//
// The machine is not safe for concurrent mutation; its owner serializes access
// between the interactive flow and the countdown driver.
type Machine struct {
	session domain.ExamSession
	clk     clock.Clock
	events  chan Event
}

// New creates a machine for a fresh attempt at examID by studentID. A nil
// durationMinutes means the exam is untimed.
func New(examID, studentID string, durationMinutes *int, clk clock.Clock) *Machine {
	return &Machine{
		session: domain.ExamSession{
			ID:                  uuid.NewString(),
			ExamID:              examID,
			StudentID:           studentID,
			Status:              domain.StatusNotStarted,
			LastActivityAt:      clk.Now(),
			DurationMinutes:     durationMinutes,
			AnsweredQuestionIDs: make(map[string]struct{}),
		},
		clk:    clk,
		events: make(chan Event, 16),
	}
}

// Resume rebuilds a machine around a previously snapshotted session.
func Resume(session domain.ExamSession, clk clock.Clock) *Machine {
	if session.AnsweredQuestionIDs == nil {
		session.AnsweredQuestionIDs = make(map[string]struct{})
	}
	return &Machine{session: session, clk: clk, events: make(chan Event, 16)}
}

// Session returns a snapshot of the current state.
func (m *Machine) Session() domain.ExamSession { return m.session.Clone() }

// Events exposes transition notifications. Sends never block a transition;
// slow consumers miss events rather than stall the exam.
func (m *Machine) Events() <-chan Event { return m.events }

// Start moves a fresh session to in-progress and starts its clock. Calling
// Start on a session that already left NotStarted is rejected: silently
// accepting it would overwrite startedAt and hand the student a reset
// countdown.
func (m *Machine) Start() error {
	if m.session.Status != domain.StatusNotStarted {
		return &domain.StateError{Op: "start", From: m.session.Status}
	}
	now := m.clk.Now()
	m.session.Status = domain.StatusInProgress
	m.session.StartedAt = &now
	m.session.LastActivityAt = now
	m.emit("start")
	return nil
}

// RecordAnswer updates the progress bookkeeping for questionID at position
// index. Non-empty text marks the question answered; empty text clears it.
// Legal only while in progress.
func (m *Machine) RecordAnswer(questionID string, index int, text string) error {
	if m.session.Status != domain.StatusInProgress {
		return &domain.StateError{Op: "record answer", From: m.session.Status}
	}
	m.session.CurrentQuestionIndex = index
	if text == "" {
		delete(m.session.AnsweredQuestionIDs, questionID)
	} else {
		m.session.AnsweredQuestionIDs[questionID] = struct{}{}
	}
	m.session.LastActivityAt = m.clk.Now()
	m.emit("answer")
	return nil
}

// Submit finalizes the session and records the elapsed time.
func (m *Machine) Submit() error {
	if m.session.Status != domain.StatusInProgress && m.session.Status != domain.StatusSubmissionPending {
		return &domain.StateError{Op: "submit", From: m.session.Status}
	}
	now := m.clk.Now()
	m.session.Status = domain.StatusSubmitted
	m.session.SubmittedAt = &now
	if m.session.StartedAt != nil {
		m.session.TimeSpentSeconds = int(now.Sub(*m.session.StartedAt) / time.Second)
	}
	m.session.LastActivityAt = now
	m.emit("submit")
	return nil
}

// MarkSubmissionPending parks an in-progress session whose answers are sealed
// and queued locally but not yet durably persisted remotely. SubmittedAt stays
// unset.
func (m *Machine) MarkSubmissionPending() error {
	if m.session.Status != domain.StatusInProgress {
		return &domain.StateError{Op: "mark submission pending", From: m.session.Status}
	}
	m.session.Status = domain.StatusSubmissionPending
	m.session.LastActivityAt = m.clk.Now()
	m.emit("submission pending")
	return nil
}

// TimeRemaining reports the remaining session time; false for untimed exams.
func (m *Machine) TimeRemaining() (time.Duration, bool) {
	return m.session.TimeRemaining(m.clk.Now())
}

// IsExpired reports whether the countdown of an in-progress timed session has
// reached zero.
func (m *Machine) IsExpired() bool { return m.session.IsExpired(m.clk.Now()) }

func (m *Machine) emit(op string) {
	select {
	case m.events <- Event{Op: op, Status: m.session.Status, At: m.session.LastActivityAt}:
	default:
	}
}
