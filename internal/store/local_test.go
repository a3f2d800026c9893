package store_test

import (
	"context"
	"testing"
	"time"

	"examseal/internal/domain"
	"examseal/internal/store"
)

func openLocal(t *testing.T) *store.Local {
	t.Helper()
	l, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func sealedAnswer(sessionID, questionID string, payload byte) domain.EncryptedAnswer {
	return domain.EncryptedAnswer{
		SessionID:  sessionID,
		QuestionID: questionID,
		Payload:    []byte{payload, payload, payload},
		Metadata: domain.EncryptionMetadata{
			IV:         []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			Algorithm:  "AES-256-GCM",
			KeyVersion: 1,
			CreatedAt:  time.Unix(1700000000, 0).UTC(),
		},
	}
}

func TestSession_SaveAndResume(t *testing.T) {
	l := openLocal(t)
	ctx := context.Background()

	started := time.Unix(1700000100, 0).UTC()
	minutes := 30
	session := domain.ExamSession{
		ID:                   "sess-1",
		ExamID:               "exam-1",
		StudentID:            "student-1",
		Status:               domain.StatusInProgress,
		StartedAt:            &started,
		LastActivityAt:       started.Add(time.Minute),
		DurationMinutes:      &minutes,
		CurrentQuestionIndex: 2,
		AnsweredQuestionIDs:  map[string]struct{}{"q1": {}, "q3": {}},
	}
	if err := l.SaveSession(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, ok, err := l.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("active session: %v", err)
	}
	if !ok {
		t.Fatal("expected an active session")
	}
	if got.ID != "sess-1" || got.Status != domain.StatusInProgress {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Fatalf("startedAt mismatch: %v", got.StartedAt)
	}
	if got.SubmittedAt != nil {
		t.Fatalf("submittedAt should be unset, got %v", got.SubmittedAt)
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 30 {
		t.Fatalf("durationMinutes mismatch: %v", got.DurationMinutes)
	}
	if got.AnswerCount() != 2 || got.CurrentQuestionIndex != 2 {
		t.Fatalf("progress mismatch: %+v", got)
	}
}

func TestSession_SubmittedIsNotActive(t *testing.T) {
	l := openLocal(t)
	ctx := context.Background()

	now := time.Unix(1700000100, 0).UTC()
	session := domain.ExamSession{
		ID:                  "sess-1",
		ExamID:              "exam-1",
		StudentID:           "student-1",
		Status:              domain.StatusSubmitted,
		StartedAt:           &now,
		SubmittedAt:         &now,
		LastActivityAt:      now,
		AnsweredQuestionIDs: map[string]struct{}{},
	}
	if err := l.SaveSession(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if _, ok, err := l.ActiveSession(ctx); err != nil || ok {
		t.Fatalf("submitted session reported active (ok=%v, err=%v)", ok, err)
	}
}

func TestDrafts_SaveListDelete(t *testing.T) {
	l := openLocal(t)
	ctx := context.Background()

	if err := l.SaveDraft(ctx, sealedAnswer("sess-1", "q1", 0xA1)); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if err := l.SaveDraft(ctx, sealedAnswer("sess-1", "q2", 0xB2)); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	// Re-answering replaces the previous seal.
	if err := l.SaveDraft(ctx, sealedAnswer("sess-1", "q1", 0xC3)); err != nil {
		t.Fatalf("replace draft: %v", err)
	}

	drafts, err := l.Drafts(ctx, "sess-1")
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(drafts))
	}
	if drafts[0].QuestionID != "q1" || drafts[0].Payload[0] != 0xC3 {
		t.Fatalf("replaced draft not returned: %+v", drafts[0])
	}

	if err := l.DeleteDraft(ctx, "sess-1", "q1"); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	drafts, _ = l.Drafts(ctx, "sess-1")
	if len(drafts) != 1 || drafts[0].QuestionID != "q2" {
		t.Fatalf("unexpected drafts after delete: %+v", drafts)
	}
}

func TestQueue_EnqueuePendingClear(t *testing.T) {
	l := openLocal(t)
	ctx := context.Background()

	// Drafts are not pending until a submission queues them.
	if err := l.SaveDraft(ctx, sealedAnswer("sess-1", "q1", 0xA1)); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	pending, err := l.Pending(ctx, "sess-1")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("draft counted as pending: %+v", pending)
	}

	batch := []domain.EncryptedAnswer{
		sealedAnswer("sess-1", "q1", 0xA1),
		sealedAnswer("sess-1", "q2", 0xB2),
	}
	if err := l.Enqueue(ctx, batch); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err = l.Pending(ctx, "sess-1")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].Metadata.Algorithm != "AES-256-GCM" || len(pending[0].Metadata.IV) != 12 {
		t.Fatalf("metadata did not survive the round trip: %+v", pending[0].Metadata)
	}

	if err := l.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	pending, _ = l.Pending(ctx, "sess-1")
	if len(pending) != 0 {
		t.Fatalf("queue not cleared: %+v", pending)
	}
}

func TestWipe_RemovesEverything(t *testing.T) {
	l := openLocal(t)
	ctx := context.Background()

	session := domain.ExamSession{
		ID:                  "sess-1",
		ExamID:              "exam-1",
		StudentID:           "student-1",
		Status:              domain.StatusInProgress,
		LastActivityAt:      time.Unix(1700000100, 0).UTC(),
		AnsweredQuestionIDs: map[string]struct{}{},
	}
	if err := l.SaveSession(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if err := l.SaveDraft(ctx, sealedAnswer("sess-1", "q1", 0xA1)); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	if err := l.Wipe(ctx); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if _, ok, _ := l.ActiveSession(ctx); ok {
		t.Fatal("session survived wipe")
	}
	if drafts, _ := l.Drafts(ctx, "sess-1"); len(drafts) != 0 {
		t.Fatal("drafts survived wipe")
	}
}
