package chat

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
)

type fakeBackend struct {
	calls    int
	received []Message
	reply    string
	err      error
}

func (f *fakeBackend) Generate(_ context.Context, messages []Message) (string, error) {
	f.calls++
	f.received = messages
	return f.reply, f.err
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupBridgeTest(t *testing.T) (*Bridge, *fakeBackend, *fakeClock) {
	t.Helper()
	backend := &fakeBackend{reply: "Hello!"}
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewBridge(backend, logging.Discard(), Options{Now: clock.Now}), backend, clock
}

func ask(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

func TestSend_Success(t *testing.T) {
	bridge, backend, _ := setupBridgeTest(t)

	reply, err := bridge.Send(context.Background(), ask("hi"))
	require.NoError(t, err)
	assert.Equal(t, Reply{Reply: "Hello!"}, reply)
	assert.Equal(t, 1, backend.calls)
}

func TestSend_RejectsBlankInput(t *testing.T) {
	bridge, backend, _ := setupBridgeTest(t)

	_, err := bridge.Send(context.Background(), ask("   "))
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	_, err = bridge.Send(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	assert.Zero(t, backend.calls)
}

func TestSend_TrimsHistory(t *testing.T) {
	bridge, backend, _ := setupBridgeTest(t)

	var convo []Message
	for i := 0; i < 12; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		convo = append(convo, Message{Role: role, Content: string(rune('a' + i))})
	}
	convo = append(convo, Message{Role: RoleUser, Content: "last"})

	_, err := bridge.Send(context.Background(), convo)
	require.NoError(t, err)
	require.Len(t, backend.received, DefaultHistory)
	assert.Equal(t, "last", backend.received[DefaultHistory-1].Content)
}

func TestSend_CooldownSkipsBackend(t *testing.T) {
	bridge, backend, clock := setupBridgeTest(t)
	backend.err = ErrRateLimited

	first, err := bridge.Send(context.Background(), ask("hello"))
	require.NoError(t, err)
	assert.True(t, first.RateLimited)
	assert.Equal(t, int64(30_000), first.RetryInMs)
	assert.Equal(t, waitMessage, first.Reply)

	clock.Advance(10 * time.Second)
	second, err := bridge.Send(context.Background(), ask("how long is shipping?"))
	require.NoError(t, err)
	assert.True(t, second.RateLimited)
	assert.Equal(t, int64(20_000), second.RetryInMs)
	assert.Contains(t, second.Reply, "ship")
	assert.Equal(t, 1, backend.calls)

	clock.Advance(21 * time.Second)
	backend.err = nil
	third, err := bridge.Send(context.Background(), ask("hello"))
	require.NoError(t, err)
	assert.False(t, third.RateLimited)
	assert.Equal(t, 2, backend.calls)
}

func TestSend_EscalatesAfterRepeatedStrikes(t *testing.T) {
	bridge, backend, clock := setupBridgeTest(t)
	backend.err = ErrRateLimited

	for i := 0; i < DefaultMaxStrikes-1; i++ {
		_, _ = bridge.Send(context.Background(), ask("hi"))
		clock.Advance(DefaultCooldown)
	}
	reply, _ := bridge.Send(context.Background(), ask("hi"))
	assert.Equal(t, DefaultBlock.Milliseconds(), reply.RetryInMs)
	assert.Equal(t, DefaultBlock, bridge.Cooldown())

	clock.Advance(DefaultBlock)
	backend.err = nil
	_, _ = bridge.Send(context.Background(), ask("hi"))

	backend.err = ErrRateLimited
	reply, _ = bridge.Send(context.Background(), ask("hi"))
	assert.Equal(t, DefaultCooldown.Milliseconds(), reply.RetryInMs, "success resets strikes")
}

func TestSend_BackendFailureFallsBackLocally(t *testing.T) {
	bridge, backend, _ := setupBridgeTest(t)
	backend.err = errors.New("connection refused")

	reply, err := bridge.Send(context.Background(), ask("Can I return my jersey?"))
	require.NoError(t, err)
	assert.True(t, reply.Local)
	assert.Contains(t, reply.Reply, "30 days")

	reply, err = bridge.Send(context.Background(), ask("tell me a joke"))
	require.NoError(t, err)
	assert.True(t, reply.Local)
	assert.Equal(t, offlineMessage, reply.Reply)
	assert.Zero(t, bridge.Cooldown())
}

func TestPrompt(t *testing.T) {
	p := Prompt([]Message{
		{Role: RoleUser, Content: "Do you have XL?"},
		{Role: RoleAssistant, Content: "Yes."},
		{Role: RoleUser, Content: "Great"},
	})
	assert.Equal(t, "User: Do you have XL?\nAssistant: Yes.\nUser: Great\nAssistant:", p)
}
