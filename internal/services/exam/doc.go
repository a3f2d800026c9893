// Package exam owns the session lifecycle of one exam attempt.
//
// Machine enforces the transition rules between not-started, in-progress,
// submitted, and submission-pending, keeps the answer-progress bookkeeping,
// and answers the pure time-remaining and expiry predicates from an injected
// clock. Driver turns the expiry predicate into an action: it ticks on a fixed
// interval and forces the submission path once the countdown reaches zero.
package exam
