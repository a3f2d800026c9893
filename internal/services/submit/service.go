package submit

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"examseal/internal/domain"
	"examseal/internal/retry"
	"examseal/internal/services/exam"
)

// Outcome reports how a submission concluded.
type Outcome int

const (
	// OutcomeSubmitted means the batch reached the backing store and the
	// session is final.
	OutcomeSubmitted Outcome = iota
	// OutcomePending means the sealed batch is queued locally and the session
	// waits for connectivity. Not a failure from the test-taker's view.
	OutcomePending
)

// String returns a short human-readable form of the outcome.
func (o Outcome) String() string {
	if o == OutcomeSubmitted {
		return "submitted"
	}
	return "submission pending"
}

// Service is the submission orchestrator: it seals answers, queues them
// durably, pushes them to the answer store under the submission retry policy,
// and drives the session transition that matches the result.
type Service struct {
	sealer   domain.Sealer
	answers  domain.AnswerStore // remote; nil when no backend is configured
	queue    domain.AnswerQueue
	sessions domain.SessionStore // remote; nil when no backend is configured
	network  domain.NetworkStatusProvider
	clk      clock.Clock
	policy   retry.Policy
	log      *zap.Logger
}

// New wires the orchestrator. answers and sessions may be nil for an
// offline-only configuration; every submission then parks as pending.
func New(
	sealer domain.Sealer,
	answers domain.AnswerStore,
	queue domain.AnswerQueue,
	sessions domain.SessionStore,
	network domain.NetworkStatusProvider,
	clk clock.Clock,
	policy retry.Policy,
	log *zap.Logger,
) *Service {
	return &Service{
		sealer:   sealer,
		answers:  answers,
		queue:    queue,
		sessions: sessions,
		network:  network,
		clk:      clk,
		policy:   policy,
		log:      log,
	}
}

// Submit seals every answered question and attempts to persist the batch.
//
// Steps, strictly in order:
//  1. Seal all answers. Any single failure aborts with no session mutation.
//  2. Queue the sealed batch in the local durable store.
//  3. Persist remotely under the retry policy, unless the network is already
//     known to be down.
//  4. Success flips the session to submitted and clears the queue; exhaustion
//     parks it as submission-pending instead of failing the operation.
func (s *Service) Submit(ctx context.Context, m *exam.Machine, answers map[string]string) (Outcome, error) {
	session := m.Session()
	if session.Status != domain.StatusInProgress {
		return 0, &domain.StateError{Op: "submit", From: session.Status}
	}

	sealed, err := s.sealAll(session.ID, answers)
	if err != nil {
		return 0, err
	}

	if err := s.queue.Enqueue(ctx, sealed); err != nil {
		return 0, fmt.Errorf("queue sealed answers: %w", err)
	}

	if s.answers == nil || s.offline() {
		s.log.Info("backend unreachable, deferring submission",
			zap.String("session_id", session.ID),
			zap.Int("queued_answers", len(sealed)))
		if err := m.MarkSubmissionPending(); err != nil {
			return 0, err
		}
		return OutcomePending, nil
	}

	if err := s.persist(ctx, session.ID, sealed); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		s.log.Warn("persistence exhausted retries, deferring submission",
			zap.String("session_id", session.ID),
			zap.Error(err))
		if terr := m.MarkSubmissionPending(); terr != nil {
			return 0, terr
		}
		return OutcomePending, nil
	}

	return s.finalize(ctx, m, session.ID)
}

// Flush retries a deferred submission from the local queue. On success it
// re-invokes the submit transition, reconciling a pending session.
func (s *Service) Flush(ctx context.Context, m *exam.Machine) (Outcome, error) {
	session := m.Session()
	if session.Status != domain.StatusSubmissionPending {
		return 0, &domain.StateError{Op: "flush", From: session.Status}
	}

	pending, err := s.queue.Pending(ctx, session.ID)
	if err != nil {
		return 0, fmt.Errorf("read pending queue: %w", err)
	}

	if s.answers == nil || s.offline() {
		return OutcomePending, nil
	}
	if err := s.persist(ctx, session.ID, pending); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		s.log.Warn("flush failed, session stays pending",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return OutcomePending, nil
	}

	return s.finalize(ctx, m, session.ID)
}

// sealAll encrypts every answer in deterministic question order.
func (s *Service) sealAll(sessionID string, answers map[string]string) ([]domain.EncryptedAnswer, error) {
	questionIDs := make([]string, 0, len(answers))
	for questionID := range answers {
		questionIDs = append(questionIDs, questionID)
	}
	sort.Strings(questionIDs)

	sealed := make([]domain.EncryptedAnswer, 0, len(questionIDs))
	for _, questionID := range questionIDs {
		answer, err := s.sealer.Encrypt(answers[questionID], questionID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("seal answer for question %s: %w", questionID, err)
		}
		sealed = append(sealed, answer)
	}
	return sealed, nil
}

func (s *Service) persist(ctx context.Context, sessionID string, sealed []domain.EncryptedAnswer) error {
	_, err := retry.Do(ctx, s.clk, s.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.answers.SaveBatch(ctx, sessionID, sealed)
	})
	return err
}

func (s *Service) finalize(ctx context.Context, m *exam.Machine, sessionID string) (Outcome, error) {
	if err := m.Submit(); err != nil {
		return 0, err
	}
	if err := s.queue.Clear(ctx, sessionID); err != nil {
		// The batch is already durable remotely; a stale queue row is not
		// worth failing the submission over.
		s.log.Warn("clearing local queue failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.pushSession(ctx, m.Session())
	return OutcomeSubmitted, nil
}

// pushSession mirrors the local transition to the backing store. The machine
// stays the source of truth; a failed push is logged, not returned.
func (s *Service) pushSession(ctx context.Context, session domain.ExamSession) {
	if s.sessions == nil {
		return
	}
	if _, err := s.sessions.Update(ctx, session); err != nil {
		s.log.Warn("session status push failed",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

func (s *Service) offline() bool {
	return s.network != nil && s.network.Status() == domain.NetworkDisconnected
}
