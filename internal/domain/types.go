package domain

import "time"

// SessionStatus is the lifecycle state of an exam attempt.
type SessionStatus string

const (
	StatusNotStarted        SessionStatus = "not_started"
	StatusInProgress        SessionStatus = "in_progress"
	StatusSubmitted         SessionStatus = "submitted"
	StatusSubmissionPending SessionStatus = "submission_pending"
)

// String returns the string form of the status.
func (s SessionStatus) String() string { return string(s) }

// NetworkStatus is the last known reachability of the exam backend.
type NetworkStatus string

const (
	NetworkConnected    NetworkStatus = "connected"
	NetworkDisconnected NetworkStatus = "disconnected"
	NetworkUnknown      NetworkStatus = "unknown"
)

// EncryptionMetadata records the non-secret parameters a sealed answer was
// produced with. The IV is freshly random for every seal; it is never derived
// from a counter and never reused under the same key.
type EncryptionMetadata struct {
	IV         []byte    `json:"iv"`
	Algorithm  string    `json:"algorithm"`
	KeyVersion int       `json:"key_version"`
	CreatedAt  time.Time `json:"created_at"`
}

// EncryptedAnswer is one sealed answer: the GCM ciphertext with its tag, plus
// the identifiers that were bound into the additional authenticated data.
// Immutable once constructed; any bit-flip in payload or identifiers makes
// decryption fail rather than yield corrupted plaintext.
type EncryptedAnswer struct {
	QuestionID string             `json:"question_id"`
	SessionID  string             `json:"session_id"`
	Payload    []byte             `json:"payload"` // ciphertext || auth tag
	Metadata   EncryptionMetadata `json:"metadata"`
}

// ExamSession is the state of one exam attempt by one student.
//
// StartedAt is set exactly when the session first leaves NotStarted.
// SubmittedAt is set only on Submitted. A nil DurationMinutes means the
// exam is untimed and never expires.
type ExamSession struct {
	ID                   string              `json:"id"`
	ExamID               string              `json:"exam_id"`
	StudentID            string              `json:"student_id"`
	Status               SessionStatus       `json:"status"`
	StartedAt            *time.Time          `json:"started_at,omitempty"`
	SubmittedAt          *time.Time          `json:"submitted_at,omitempty"`
	LastActivityAt       time.Time           `json:"last_activity_at"`
	DurationMinutes      *int                `json:"duration_minutes,omitempty"`
	CurrentQuestionIndex int                 `json:"current_question_index"`
	AnsweredQuestionIDs  map[string]struct{} `json:"answered_question_ids"`
	TimeSpentSeconds     int                 `json:"time_spent_seconds"`
}

// TimeRemaining reports how long the session may keep running at the given
// instant. The elapsed time is truncated to whole seconds and the result is
// clamped at zero. The second return is false for untimed sessions, where no
// deadline exists.
func (s *ExamSession) TimeRemaining(now time.Time) (time.Duration, bool) {
	if s.DurationMinutes == nil || s.StartedAt == nil {
		return 0, false
	}
	elapsedSeconds := int64(now.Sub(*s.StartedAt) / time.Second)
	remaining := int64(*s.DurationMinutes)*60 - elapsedSeconds
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining) * time.Second, true
}

// IsExpired is true only for an in-progress, timed session whose remaining
// time has reached zero. It is a pure predicate; callers drive it from a
// periodic tick.
func (s *ExamSession) IsExpired(now time.Time) bool {
	if s.Status != StatusInProgress {
		return false
	}
	remaining, timed := s.TimeRemaining(now)
	return timed && remaining <= 0
}

// AnswerCount reports how many distinct questions currently hold a non-empty
// answer.
func (s *ExamSession) AnswerCount() int { return len(s.AnsweredQuestionIDs) }

// Clone returns a deep copy so callers can hand out session snapshots without
// sharing the answered-questions set.
func (s *ExamSession) Clone() ExamSession {
	out := *s
	out.AnsweredQuestionIDs = make(map[string]struct{}, len(s.AnsweredQuestionIDs))
	for id := range s.AnsweredQuestionIDs {
		out.AnsweredQuestionIDs[id] = struct{}{}
	}
	return out
}
