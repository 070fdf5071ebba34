package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chatd/pkg/completion"
	"chatd/pkg/models"
	"chatd/pkg/store"
)

type fakeCompleter struct {
	reply      string
	err        error
	gotHistory []models.Message
	calls      int
}

func (f *fakeCompleter) Complete(_ context.Context, history []models.Message) (string, error) {
	f.calls++
	f.gotHistory = append([]models.Message(nil), history...)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestOrchestrator(t *testing.T, fc *fakeCompleter) *Orchestrator {
	t.Helper()
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })
	return NewOrchestrator(fc)
}

func TestSendMessageNewThread(t *testing.T) {
	fc := &fakeCompleter{reply: "recursion is a function calling itself"}
	orc := newTestOrchestrator(t, fc)

	res, err := orc.SendMessage(context.Background(), "alice", NewThread(), "  Explain recursion  ")
	require.NoError(t, err)
	require.Equal(t, "recursion is a function calling itself", res.Reply)
	require.NotEmpty(t, res.ThreadID)

	// The provider saw exactly the one user turn, trimmed.
	require.Len(t, fc.gotHistory, 1)
	require.Equal(t, models.RoleUser, fc.gotHistory[0].Role)
	require.Equal(t, "Explain recursion", fc.gotHistory[0].Content)

	th, err := store.FindOwned(res.ThreadID, "alice")
	require.NoError(t, err)
	require.Equal(t, "Explain recursion", th.Title)
	require.Len(t, th.Messages, 2)
	require.Equal(t, models.RoleUser, th.Messages[0].Role)
	require.Equal(t, models.RoleAssistant, th.Messages[1].Role)
	require.Equal(t, "recursion is a function calling itself", th.Messages[1].Content)

	summaries, err := store.ListOwned("alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}

func TestSendMessageEmptyInput(t *testing.T) {
	fc := &fakeCompleter{reply: "never"}
	orc := newTestOrchestrator(t, fc)

	_, err := orc.SendMessage(context.Background(), "alice", NewThread(), "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Zero(t, fc.calls)

	summaries, err := store.ListOwned("alice")
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestSendMessageNoCaller(t *testing.T) {
	fc := &fakeCompleter{reply: "never"}
	orc := newTestOrchestrator(t, fc)

	_, err := orc.SendMessage(context.Background(), "  ", NewThread(), "hello")
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Zero(t, fc.calls)
}

func TestSendMessageForeignThread(t *testing.T) {
	fc := &fakeCompleter{reply: "never"}
	orc := newTestOrchestrator(t, fc)

	th, err := store.CreateThread("bob", "bob's thread", models.Message{Role: models.RoleUser, Content: "private"})
	require.NoError(t, err)

	_, err = orc.SendMessage(context.Background(), "alice", ExistingThread(th.ID), "let me in")
	require.ErrorIs(t, err, ErrThreadNotFound)
	require.Zero(t, fc.calls)

	got, err := store.FindOwned(th.ID, "bob")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
}

func TestSendMessageUnknownThread(t *testing.T) {
	fc := &fakeCompleter{reply: "never"}
	orc := newTestOrchestrator(t, fc)

	_, err := orc.SendMessage(context.Background(), "alice", ExistingThread("th_nope"), "hello")
	require.ErrorIs(t, err, ErrThreadNotFound)

	// A bad id must not be silently turned into a fresh thread.
	summaries, err := store.ListOwned("alice")
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestSendMessageCompletionFailureKeepsUserTurn(t *testing.T) {
	fc := &fakeCompleter{err: completion.NewError(completion.KindTransport, "provider unreachable", errors.New("dial tcp: refused"))}
	orc := newTestOrchestrator(t, fc)

	th, err := store.CreateThread("alice", "t", models.Message{Role: models.RoleUser, Content: "q1"}, models.Message{Role: models.RoleAssistant, Content: "a1"})
	require.NoError(t, err)

	_, err = orc.SendMessage(context.Background(), "alice", ExistingThread(th.ID), "q2")
	var cfe *CompletionFailedError
	require.ErrorAs(t, err, &cfe)
	require.Equal(t, completion.KindTransport, cfe.Kind)

	// The user turn survived the failure.
	got, err := store.FindOwned(th.ID, "alice")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	require.Equal(t, "q2", got.Messages[2].Content)
}

func TestSendMessageExistingThreadContext(t *testing.T) {
	fc := &fakeCompleter{reply: "a2"}
	orc := newTestOrchestrator(t, fc)

	th, err := store.CreateThread("alice", "t", models.Message{Role: models.RoleUser, Content: "q1"}, models.Message{Role: models.RoleAssistant, Content: "a1"})
	require.NoError(t, err)

	res, err := orc.SendMessage(context.Background(), "alice", ExistingThread(th.ID), "q2")
	require.NoError(t, err)
	require.Equal(t, th.ID, res.ThreadID)

	// The provider saw the prior turns plus the new user message.
	require.Len(t, fc.gotHistory, 3)
	require.Equal(t, "q1", fc.gotHistory[0].Content)
	require.Equal(t, "a1", fc.gotHistory[1].Content)
	require.Equal(t, "q2", fc.gotHistory[2].Content)

	got, err := store.FindOwned(th.ID, "alice")
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	require.Equal(t, "a2", got.Messages[3].Content)
}

func TestTitleTruncation(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	orc := newTestOrchestrator(t, fc)

	long := strings.Repeat("é", 60)
	res, err := orc.SendMessage(context.Background(), "alice", NewThread(), long)
	require.NoError(t, err)

	th, err := store.FindOwned(res.ThreadID, "alice")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", 50), th.Title)
	// The stored message keeps the full text.
	require.Equal(t, long, th.Messages[0].Content)
}
