package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"examseal/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	exam_id TEXT NOT NULL,
	student_id TEXT NOT NULL,
	status TEXT NOT NULL,
	started_at INTEGER,
	submitted_at INTEGER,
	last_activity_at INTEGER NOT NULL,
	duration_minutes INTEGER,
	current_question_index INTEGER NOT NULL,
	answered_question_ids TEXT NOT NULL,
	time_spent_seconds INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sealed_answers (
	session_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	payload BLOB NOT NULL,
	iv BLOB NOT NULL,
	algorithm TEXT NOT NULL,
	key_version INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	queued INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (session_id, question_id)
);
`

// Local wraps the on-disk SQLite database.
type Local struct {
	db *sql.DB
}

// Open opens (creating if needed) the local database at path. SQLite allows a
// single writer, so the pool is pinned to one connection.
func Open(path string) (*Local, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init local store schema: %w", err)
	}
	return &Local{db: db}, nil
}

// Close releases the database handle.
func (l *Local) Close() error { return l.db.Close() }

// ---------- Session snapshot ----------

// SaveSession upserts a snapshot of the session.
func (l *Local) SaveSession(ctx context.Context, s domain.ExamSession) error {
	answered := make([]string, 0, len(s.AnsweredQuestionIDs))
	for id := range s.AnsweredQuestionIDs {
		answered = append(answered, id)
	}
	answeredJSON, err := json.Marshal(answered)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO sessions (
			id, exam_id, student_id, status, started_at, submitted_at,
			last_activity_at, duration_minutes, current_question_index,
			answered_question_ids, time_spent_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			submitted_at = excluded.submitted_at,
			last_activity_at = excluded.last_activity_at,
			current_question_index = excluded.current_question_index,
			answered_question_ids = excluded.answered_question_ids,
			time_spent_seconds = excluded.time_spent_seconds
	`
	_, err = l.db.ExecContext(ctx, q,
		s.ID, s.ExamID, s.StudentID, string(s.Status),
		unixOrNil(s.StartedAt), unixOrNil(s.SubmittedAt),
		s.LastActivityAt.Unix(), intOrNil(s.DurationMinutes),
		s.CurrentQuestionIndex, string(answeredJSON), s.TimeSpentSeconds,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ActiveSession returns the most recently touched session that has not been
// submitted yet, if any.
func (l *Local) ActiveSession(ctx context.Context) (domain.ExamSession, bool, error) {
	const q = `
		SELECT id, exam_id, student_id, status, started_at, submitted_at,
		       last_activity_at, duration_minutes, current_question_index,
		       answered_question_ids, time_spent_seconds
		FROM sessions
		WHERE status != ?
		ORDER BY last_activity_at DESC
		LIMIT 1
	`
	row := l.db.QueryRowContext(ctx, q, string(domain.StatusSubmitted))

	var (
		s               domain.ExamSession
		status          string
		startedAt       sql.NullInt64
		submittedAt     sql.NullInt64
		lastActivity    int64
		durationMinutes sql.NullInt64
		answeredJSON    string
	)
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &status, &startedAt, &submittedAt,
		&lastActivity, &durationMinutes, &s.CurrentQuestionIndex, &answeredJSON, &s.TimeSpentSeconds)
	if err == sql.ErrNoRows {
		return domain.ExamSession{}, false, nil
	}
	if err != nil {
		return domain.ExamSession{}, false, fmt.Errorf("scan session: %w", err)
	}

	s.Status = domain.SessionStatus(status)
	s.LastActivityAt = time.Unix(lastActivity, 0).UTC()
	if startedAt.Valid {
		t := time.Unix(startedAt.Int64, 0).UTC()
		s.StartedAt = &t
	}
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0).UTC()
		s.SubmittedAt = &t
	}
	if durationMinutes.Valid {
		m := int(durationMinutes.Int64)
		s.DurationMinutes = &m
	}

	var answered []string
	if err := json.Unmarshal([]byte(answeredJSON), &answered); err != nil {
		return domain.ExamSession{}, false, fmt.Errorf("decode answered questions: %w", err)
	}
	s.AnsweredQuestionIDs = make(map[string]struct{}, len(answered))
	for _, id := range answered {
		s.AnsweredQuestionIDs[id] = struct{}{}
	}
	return s, true, nil
}

// ---------- Sealed drafts ----------

// SaveDraft upserts a sealed draft answer. Re-answering a question replaces
// the previous seal.
func (l *Local) SaveDraft(ctx context.Context, a domain.EncryptedAnswer) error {
	const q = `
		INSERT INTO sealed_answers (
			session_id, question_id, payload, iv, algorithm, key_version, created_at, queued
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(session_id, question_id) DO UPDATE SET
			payload = excluded.payload,
			iv = excluded.iv,
			algorithm = excluded.algorithm,
			key_version = excluded.key_version,
			created_at = excluded.created_at,
			queued = 0
	`
	_, err := l.db.ExecContext(ctx, q,
		a.SessionID, a.QuestionID, a.Payload, a.Metadata.IV,
		a.Metadata.Algorithm, a.Metadata.KeyVersion, a.Metadata.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// DeleteDraft removes the draft for one question, if present.
func (l *Local) DeleteDraft(ctx context.Context, sessionID, questionID string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM sealed_answers WHERE session_id = ? AND question_id = ?`,
		sessionID, questionID)
	return err
}

// Drafts lists every sealed answer stored for the session, queued or not.
func (l *Local) Drafts(ctx context.Context, sessionID string) ([]domain.EncryptedAnswer, error) {
	return l.selectAnswers(ctx,
		`SELECT session_id, question_id, payload, iv, algorithm, key_version, created_at
		 FROM sealed_answers WHERE session_id = ? ORDER BY question_id`, sessionID)
}

// ---------- Pending submission queue (domain.AnswerQueue) ----------

// Enqueue marks the sealed answers as awaiting remote persistence.
func (l *Local) Enqueue(ctx context.Context, answers []domain.EncryptedAnswer) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO sealed_answers (
			session_id, question_id, payload, iv, algorithm, key_version, created_at, queued
		) VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(session_id, question_id) DO UPDATE SET
			payload = excluded.payload,
			iv = excluded.iv,
			algorithm = excluded.algorithm,
			key_version = excluded.key_version,
			created_at = excluded.created_at,
			queued = 1
	`
	for _, a := range answers {
		if _, err := tx.ExecContext(ctx, q,
			a.SessionID, a.QuestionID, a.Payload, a.Metadata.IV,
			a.Metadata.Algorithm, a.Metadata.KeyVersion, a.Metadata.CreatedAt.Unix()); err != nil {
			return fmt.Errorf("enqueue sealed answer: %w", err)
		}
	}
	return tx.Commit()
}

// Pending returns the queued sealed answers for the session.
func (l *Local) Pending(ctx context.Context, sessionID string) ([]domain.EncryptedAnswer, error) {
	return l.selectAnswers(ctx,
		`SELECT session_id, question_id, payload, iv, algorithm, key_version, created_at
		 FROM sealed_answers WHERE session_id = ? AND queued = 1 ORDER BY question_id`, sessionID)
}

// Clear drops all sealed answers for a session once the backend acknowledged
// the batch.
func (l *Local) Clear(ctx context.Context, sessionID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM sealed_answers WHERE session_id = ?`, sessionID)
	return err
}

// Wipe removes every session and sealed answer. Used on reset together with
// key removal.
func (l *Local) Wipe(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM sealed_answers`); err != nil {
		return err
	}
	_, err := l.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}

func (l *Local) selectAnswers(ctx context.Context, query, sessionID string) ([]domain.EncryptedAnswer, error) {
	rows, err := l.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list sealed answers: %w", err)
	}
	defer rows.Close()

	var out []domain.EncryptedAnswer
	for rows.Next() {
		var a domain.EncryptedAnswer
		var createdAt int64
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.Payload, &a.Metadata.IV,
			&a.Metadata.Algorithm, &a.Metadata.KeyVersion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan sealed answer: %w", err)
		}
		a.Metadata.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// Compile-time assertion that Local implements domain.AnswerQueue.
var _ domain.AnswerQueue = (*Local)(nil)
