// Package chat bridges the storefront's assistant widget to a text
// generation backend and backs off when that backend is rate limited.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCooldown   = 30 * time.Second
	DefaultBlock      = 5 * time.Minute
	DefaultMaxStrikes = 3
	DefaultHistory    = 8
)

// ErrEmptyMessage is returned by Send when the newest user turn is blank.
var ErrEmptyMessage = errors.New("message is empty")

type Options struct {
	// Cooldown is the window after a rate limit; Block replaces it once
	// MaxStrikes consecutive rate limits have been seen.
	Cooldown   time.Duration
	Block      time.Duration
	MaxStrikes int
	History    int
	Now        func() time.Time
}

// Bridge is shared by every session; its cooldown models the backend's
// quota, which is process-wide.
type Bridge struct {
	backend Backend
	logger  log.FieldLogger
	opts    Options

	mu      sync.Mutex
	until   time.Time
	strikes int
}

func NewBridge(backend Backend, logger log.FieldLogger, opts Options) *Bridge {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Block <= 0 {
		opts.Block = DefaultBlock
	}
	if opts.MaxStrikes <= 0 {
		opts.MaxStrikes = DefaultMaxStrikes
	}
	if opts.History <= 0 {
		opts.History = DefaultHistory
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bridge{backend: backend, logger: logger.WithField("component", "chat"), opts: opts}
}

// Send answers the conversation. It never fails once the input is
// non-empty: backend trouble turns into a canned or offline reply.
func (b *Bridge) Send(ctx context.Context, recent []Message) (Reply, error) {
	if len(recent) == 0 || strings.TrimSpace(recent[len(recent)-1].Content) == "" {
		return Reply{}, ErrEmptyMessage
	}
	question := recent[len(recent)-1].Content

	if wait := b.remaining(); wait > 0 {
		return b.coolingDown(question, wait), nil
	}

	text, err := b.backend.Generate(ctx, lastN(recent, b.opts.History))
	switch {
	case err == nil:
		b.mu.Lock()
		b.strikes = 0
		b.mu.Unlock()
		return Reply{Reply: text}, nil
	case errors.Is(err, ErrRateLimited):
		wait := b.strike()
		b.logger.WithField("retry_in", wait).Warn("chat backend rate limited")
		return b.coolingDown(question, wait), nil
	default:
		b.logger.WithError(err).Warn("chat backend failed")
		if answer, ok := cannedAnswer(question); ok {
			return Reply{Reply: answer, Local: true}, nil
		}
		return Reply{Reply: offlineMessage, Local: true}, nil
	}
}

// Cooldown reports how long the bridge will keep the backend untouched.
func (b *Bridge) Cooldown() time.Duration { return b.remaining() }

func (b *Bridge) remaining() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d := b.until.Sub(b.opts.Now()); d > 0 {
		return d
	}
	return 0
}

func (b *Bridge) strike() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.strikes++
	window := b.opts.Cooldown
	if b.strikes >= b.opts.MaxStrikes {
		window = b.opts.Block
	}
	b.until = b.opts.Now().Add(window)
	return window
}

func (b *Bridge) coolingDown(question string, wait time.Duration) Reply {
	r := Reply{Reply: waitMessage, RateLimited: true, RetryInMs: wait.Milliseconds()}
	if r.RetryInMs <= 0 {
		r.RetryInMs = 1
	}
	if answer, ok := cannedAnswer(question); ok {
		r.Reply = answer
	}
	return r
}
