// Package watch subscribes to the contract's change notifications and
// maps each kind to the resynchronization it warrants.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ballotdesk/go-client/internal/ledger"
	"ballotdesk/go-client/internal/metrics"
	"ballotdesk/go-client/internal/view"
	"ballotdesk/go-client/pkg/models"
)

const (
	subscribeRetryLimit = 5
	subscribeRetryDelay = 3 * time.Second
)

// SubState is the per-kind subscription lifecycle.
type SubState int

const (
	Unsubscribed SubState = iota
	Subscribing
	Subscribed
)

func (s SubState) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	}
	return "unknown"
}

// ResyncTarget is the slice of the sync coordinator the manager drives.
type ResyncTarget interface {
	FullSync(ctx context.Context)
	SyncStatus(ctx context.Context)
	SyncFund(ctx context.Context)
}

// Announcer carries the event-driven status lines to the view.
type Announcer interface {
	ShowMessage(section view.Section, message string)
}

// Manager owns one subscription per notification kind for the process
// lifetime. Subscriptions are never torn down explicitly; a dropped
// stream is re-subscribed when its error notification arrives, and a
// failed open is retried a bounded number of times.
type Manager struct {
	source     ledger.EventSource
	target     ResyncTarget
	announce   Announcer
	limiter    *KindLimiter
	log        *slog.Logger
	retryDelay time.Duration

	mu      sync.Mutex
	states  map[models.EventKind]SubState
	pending map[models.EventKind]bool

	sink chan models.Notification
}

func NewManager(source ledger.EventSource, target ResyncTarget, announce Announcer, limiter *KindLimiter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		source:     source,
		target:     target,
		announce:   announce,
		limiter:    limiter,
		log:        logger.With("component", "watch"),
		retryDelay: subscribeRetryDelay,
		states:     make(map[models.EventKind]SubState),
		pending:    make(map[models.EventKind]bool),
		sink:       make(chan models.Notification, 64),
	}
}

// Start subscribes every kind and runs the dispatch loop until ctx ends.
func (m *Manager) Start(ctx context.Context) {
	for _, kind := range models.EventKinds() {
		if !m.subscribe(ctx, kind) {
			go m.retrySubscribe(ctx, kind)
		}
	}
	go m.dispatch(ctx)
}

// State reports the subscription lifecycle for one kind.
func (m *Manager) State(kind models.EventKind) SubState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[kind]
}

func (m *Manager) setState(kind models.EventKind, state SubState) {
	m.mu.Lock()
	m.states[kind] = state
	m.mu.Unlock()
}

func (m *Manager) subscribe(ctx context.Context, kind models.EventKind) bool {
	m.setState(kind, Subscribing)
	if _, err := m.source.WatchEvent(ctx, kind, m.sink); err != nil {
		m.log.Warn("subscription failed", "kind", kind.String(), "error", err)
		m.setState(kind, Unsubscribed)
		return false
	}
	m.setState(kind, Subscribed)
	return true
}

// retrySubscribe re-attempts a failed open so a client started during a
// node outage still ends up subscribed once the node is back.
func (m *Manager) retrySubscribe(ctx context.Context, kind models.EventKind) {
	for attempt := 1; attempt <= subscribeRetryLimit; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.retryDelay):
		}
		if m.subscribe(ctx, kind) {
			return
		}
	}
	m.log.Error("subscription abandoned", "kind", kind.String(), "attempts", subscribeRetryLimit)
}

func (m *Manager) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-m.sink:
			m.handle(ctx, n)
		}
	}
}

// handle routes one notification. An error payload never triggers a
// resync: the view goes stale rather than the client crashing, and the
// stream is re-opened for subsequent events.
func (m *Manager) handle(ctx context.Context, n models.Notification) {
	metrics.EventsReceived.WithLabelValues(n.Kind.String()).Inc()
	if n.Err != nil {
		m.log.Warn("event stream error", "kind", n.Kind.String(), "error", n.Err)
		m.setState(n.Kind, Unsubscribed)
		if !m.subscribe(ctx, n.Kind) {
			go m.retrySubscribe(ctx, n.Kind)
		}
		return
	}

	switch n.Kind {
	case models.EventProposalRegistered:
		m.say(view.SectionProposalRegistration, "The proposal has been registered successfully")
	case models.EventSessionStarted:
		m.say(view.SectionVotingSession, "The voting session has started")
	case models.EventSessionEnded:
		m.say(view.SectionVotingSession, "The voting session has ended")
	}

	m.scheduleResync(ctx, n.Kind)
}

// scheduleResync coalesces a burst trailing-edge: the first event in a
// burst resyncs immediately, later ones collapse into one deferred
// resync that fires when the kind's bucket refills. The deferred run
// reads fresh state, so the burst's last change is always rendered.
func (m *Manager) scheduleResync(ctx context.Context, kind models.EventKind) {
	m.mu.Lock()
	if m.pending[kind] {
		m.mu.Unlock()
		m.log.Debug("resync coalesced", "kind", kind.String())
		return
	}
	m.mu.Unlock()

	delay := m.limiter.Delay(kind, time.Now())
	if delay <= 0 {
		m.resync(ctx, kind)
		return
	}

	m.mu.Lock()
	m.pending[kind] = true
	m.mu.Unlock()
	time.AfterFunc(delay, func() {
		m.mu.Lock()
		delete(m.pending, kind)
		m.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		m.resync(ctx, kind)
	})
}

// Resyncs run concurrently with anything already in flight; the
// coordinator's publish step keeps the view whole either way.
func (m *Manager) resync(ctx context.Context, kind models.EventKind) {
	switch kind {
	case models.EventVoteCast, models.EventProposalRegistered,
		models.EventSessionStarted, models.EventSessionEnded:
		go m.target.FullSync(ctx)
	case models.EventStatusChanged:
		go m.target.SyncStatus(ctx)
	case models.EventFundChanged:
		go m.target.SyncFund(ctx)
	}
}

func (m *Manager) say(section view.Section, message string) {
	if m.announce != nil {
		m.announce.ShowMessage(section, message)
	}
}
