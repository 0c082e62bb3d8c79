package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"ballotdesk/go-client/pkg/models"
)

// ErrUnavailable covers a missing contract, a failed dial or a dropped
// connection. Callers treat it as "ledger not reachable", never as a
// precondition verdict.
var ErrUnavailable = errors.New("election contract is unavailable")

// Tx is the submission receipt for a mutating call.
type Tx struct {
	Hash string
}

// Election is the deployed contract's call surface. All business rules
// live behind it; the client only reads snapshots and submits transactions.
type Election interface {
	IsAdministrator(ctx context.Context, addr models.Account) (bool, error)
	IsRegisteredVoter(ctx context.Context, addr models.Account) (bool, error)
	GetVotingPower(ctx context.Context, addr models.Account) (*big.Int, error)
	GetWorkflowStatus(ctx context.Context) (models.WorkflowStatus, error)
	GetProposalsNumber(ctx context.Context) (int64, error)
	CandidatesCount(ctx context.Context) (int64, error)
	Candidate(ctx context.Context, id int64) (models.Candidate, error)
	Voter(ctx context.Context, addr models.Account) (models.Voter, error)
	WinningProposalDescription(ctx context.Context) (string, error)
	WinningProposalVoteCounts(ctx context.Context) (int64, error)
	Fund(ctx context.Context) (models.ElectionFund, error)

	RegisterVoter(ctx context.Context, addr models.Account, power *big.Int) (Tx, error)
	AddCandidate(ctx context.Context, name string, cost *big.Int) (Tx, error)
	StartVotingSession(ctx context.Context) (Tx, error)
	TallyVotes(ctx context.Context) (Tx, error)
	Vote(ctx context.Context, candidateID int64) (Tx, error)
}

// Subscription is the uniform handle for one event-kind stream.
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

// EventSource delivers contract notifications for one kind into sink,
// scoped from genesis to latest.
type EventSource interface {
	WatchEvent(ctx context.Context, kind models.EventKind, sink chan<- models.Notification) (Subscription, error)
}

// Dialer resolves a live contract handle.
type Dialer func(ctx context.Context) (Election, error)

type resolution struct {
	done   chan struct{}
	handle Election
	err    error
}

// Gateway memoizes contract resolution. Concurrent callers during an
// in-flight resolution share the same attempt; success is cached for the
// process lifetime. A failed attempt is reported to every waiter but not
// cached, so the next caller starts fresh (no retry loop lives here).
type Gateway struct {
	mu      sync.Mutex
	dial    Dialer
	handle  Election
	pending *resolution
}

func NewGateway(dial Dialer) *Gateway {
	return &Gateway{dial: dial}
}

func (g *Gateway) Resolve(ctx context.Context) (Election, error) {
	g.mu.Lock()
	if g.handle != nil {
		handle := g.handle
		g.mu.Unlock()
		return handle, nil
	}
	if g.pending == nil {
		r := &resolution{done: make(chan struct{})}
		g.pending = r
		go g.runResolution(r)
	}
	r := g.pending
	g.mu.Unlock()

	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.handle, nil
}

// Resolved reports whether a handle is already cached, without dialing.
func (g *Gateway) Resolved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handle != nil
}

// WatchEvent resolves the handle and opens the subscription on it, so
// *Gateway itself serves as the EventSource for the watch manager.
func (g *Gateway) WatchEvent(ctx context.Context, kind models.EventKind, sink chan<- models.Notification) (Subscription, error) {
	el, err := g.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	src, ok := el.(EventSource)
	if !ok {
		return nil, fmt.Errorf("%w: handle does not stream events", ErrUnavailable)
	}
	return src.WatchEvent(ctx, kind, sink)
}

// NodeAccounts resolves the handle and lists the node-managed accounts.
func (g *Gateway) NodeAccounts(ctx context.Context) ([]models.Account, error) {
	el, err := g.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	lister, ok := el.(interface {
		NodeAccounts(ctx context.Context) ([]models.Account, error)
	})
	if !ok {
		return nil, nil
	}
	return lister.NodeAccounts(ctx)
}

func (g *Gateway) runResolution(r *resolution) {
	// The attempt is shared by every waiter, so it must not die with the
	// first caller's context.
	handle, err := g.dial(context.Background())
	if err != nil {
		r.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	} else {
		r.handle = handle
	}

	g.mu.Lock()
	if err == nil {
		g.handle = handle
	}
	g.pending = nil
	g.mu.Unlock()
	close(r.done)
}
