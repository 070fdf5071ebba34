package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatd/pkg/completion"
	"chatd/pkg/logger"
	"chatd/pkg/models"
	"chatd/pkg/store"
	"chatd/pkg/telemetry"
	"chatd/pkg/validation"
)

// titleRunes bounds the auto-generated thread title taken from the first
// user message.
const titleRunes = 50

// ThreadRef identifies the target of a send: a new thread or an existing
// one. The explicit tag removes any ambiguity between "no id" and an
// empty-string id.
type ThreadRef struct {
	id       string
	existing bool
}

// NewThread targets a thread that does not exist yet.
func NewThread() ThreadRef { return ThreadRef{} }

// ExistingThread targets the thread with the given id.
func ExistingThread(id string) ThreadRef { return ThreadRef{id: id, existing: true} }

// Existing returns the target id and whether the ref names an existing
// thread.
func (r ThreadRef) Existing() (string, bool) { return r.id, r.existing }

// Result is the outcome of a successful send. ThreadID is always the
// resolved or newly created id, so a caller that started without a thread
// learns the id to use for subsequent turns.
type Result struct {
	Reply    string
	ThreadID string
}

// Orchestrator drives the send-message protocol: validate, resolve or
// create the thread, append the user turn, obtain a completion, append
// the reply. It is the only component that talks to the completion
// provider; all state lives in the store.
type Orchestrator struct {
	completer completion.Client
}

// NewOrchestrator returns an orchestrator backed by the given completion
// client.
func NewOrchestrator(c completion.Client) *Orchestrator {
	return &Orchestrator{completer: c}
}

// SendMessage appends the caller's message to the referenced thread
// (creating it when ref targets a new thread), asks the completion
// provider for a reply with the full history as context, and appends the
// reply.
//
// If the completion call fails, the already-appended user message is NOT
// retracted: the user's turn stands, the error carries the provider
// failure kind, and the thread remains usable for a retried send.
//
// Two concurrent sends against the same thread each complete against the
// history snapshot taken at their own append; the store's append
// atomicity guarantees neither turn is lost, but the later call's context
// may not include the earlier call's in-flight turn.
func (o *Orchestrator) SendMessage(ctx context.Context, callerID string, ref ThreadRef, userText string) (Result, error) {
	if strings.TrimSpace(callerID) == "" {
		return Result{}, ErrUnauthenticated
	}
	text := strings.TrimSpace(userText)
	if text == "" {
		return Result{}, ErrInvalidInput
	}
	if err := validation.ValidateUserText(text); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	userMsg := models.Message{
		Role:      models.RoleUser,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}

	var th models.Thread
	var err error
	if id, ok := ref.Existing(); ok {
		// A caller-supplied id the caller does not own is rejected, not
		// silently treated as "create new".
		th, err = store.AppendMessages(id, callerID, []models.Message{userMsg})
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, ErrThreadNotFound
		}
		if err != nil {
			return Result{}, err
		}
	} else {
		th, err = store.CreateThread(callerID, truncateTitle(text), userMsg)
		if err != nil {
			return Result{}, err
		}
	}

	start := time.Now()
	reply, cerr := o.completer.Complete(ctx, th.Messages)
	if cerr != nil {
		telemetry.ObserveCompletion("error", time.Since(start))
		kind := completion.KindTransport
		if ce, ok := completion.AsError(cerr); ok {
			kind = ce.Kind
		}
		logger.Warn("completion_failed", "thread", th.ID, "kind", string(kind))
		return Result{}, &CompletionFailedError{Kind: kind, Err: cerr}
	}
	telemetry.ObserveCompletion("ok", time.Since(start))

	replyMsg := models.Message{
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := store.AppendMessages(th.ID, callerID, []models.Message{replyMsg}); err != nil {
		// The user turn and the obtained reply text are not corrupted by
		// this failure; the last successfully appended message stands.
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, ErrThreadNotFound
		}
		return Result{}, err
	}

	logger.Info("message_exchange_complete", "thread", th.ID, "context_len", len(th.Messages))
	return Result{Reply: reply, ThreadID: th.ID}, nil
}

// truncateTitle derives a thread title from the first user message,
// rune-safe.
func truncateTitle(text string) string {
	r := []rune(text)
	if len(r) <= titleRunes {
		return text
	}
	return string(r[:titleRunes])
}
