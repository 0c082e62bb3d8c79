// Package syncer rebuilds the local read model from the ledger and
// publishes it to the view. Overlapping syncs are expected and race by
// design: the ledger is the source of truth and the last completed sync
// wins on the rendered view. There is deliberately no global lock across
// a whole sync; only the final publish is a critical section.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ballotdesk/go-client/internal/ledger"
	"ballotdesk/go-client/internal/metrics"
	"ballotdesk/go-client/internal/view"
	"ballotdesk/go-client/pkg/models"
)

// Resolver hands out the cached contract handle.
type Resolver interface {
	Resolve(ctx context.Context) (ledger.Election, error)
}

// IdentitySource supplies the viewer address for read queries.
type IdentitySource interface {
	ActiveAccount(ctx context.Context) (models.Account, error)
}

type Coordinator struct {
	gateway  Resolver
	identity IdentitySource
	view     view.View
	ops      *metrics.OpsState
	log      *slog.Logger

	mu      sync.Mutex
	current models.ReadModel
}

func New(gateway Resolver, identity IdentitySource, v view.View, ops *metrics.OpsState, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if ops == nil {
		ops = metrics.NewOpsState()
	}
	return &Coordinator{
		gateway:  gateway,
		identity: identity,
		view:     v,
		ops:      ops,
		log:      logger.With("component", "syncer"),
	}
}

// Current returns the last published read model.
func (c *Coordinator) Current() models.ReadModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// FullSync rebuilds every read-model section. Sections are independently
// fallible: a failing read logs, counts and keeps that section's previous
// value instead of blanking the view.
func (c *Coordinator) FullSync(ctx context.Context) {
	started := time.Now()
	metrics.Syncs.WithLabelValues("full").Inc()

	el, err := c.gateway.Resolve(ctx)
	if err != nil {
		c.sectionFailed("resolve", err)
		return
	}

	prev := c.Current()
	next := prev

	account, err := c.identity.ActiveAccount(ctx)
	if err != nil {
		c.sectionFailed("identity", err)
		account = prev.Account
	}
	next.Account = account

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		status, err := el.GetWorkflowStatus(ctx)
		if err != nil {
			c.sectionFailed("status", err)
			return
		}
		next.Status = status
		winner, err := c.winner(ctx, el, status)
		if err != nil {
			c.sectionFailed("winner", err)
			return
		}
		next.Winner = winner
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		candidates, err := c.fetchCandidates(ctx, el)
		if err != nil {
			c.sectionFailed("candidates", err)
			return
		}
		next.Candidates = candidates
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if account.IsZero() {
			return
		}
		voter, err := c.fetchVoter(ctx, el, account)
		if err != nil {
			c.sectionFailed("voter", err)
			return
		}
		next.Voter = voter
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		fund, err := el.Fund(ctx)
		if err != nil {
			c.sectionFailed("fund", err)
			return
		}
		next.Fund = fund
	}()

	wg.Wait()
	next.SyncedAt = time.Now().UTC()
	c.publish(next)
	c.ops.RecordOp("fullSync", started)
}

// SyncStatus refreshes only the workflow status line.
func (c *Coordinator) SyncStatus(ctx context.Context) {
	started := time.Now()
	metrics.Syncs.WithLabelValues("status").Inc()

	el, err := c.gateway.Resolve(ctx)
	if err != nil {
		c.sectionFailed("resolve", err)
		return
	}
	status, err := el.GetWorkflowStatus(ctx)
	if err != nil {
		c.sectionFailed("status", err)
		return
	}

	c.mu.Lock()
	next := c.current
	next.Status = status
	next.SyncedAt = time.Now().UTC()
	c.current = next
	c.view.ShowStatus(status)
	c.mu.Unlock()
	c.ops.RecordOp("syncStatus", started)
}

// SyncFund refreshes only the fund snapshot; no candidate or voter reads
// are issued.
func (c *Coordinator) SyncFund(ctx context.Context) {
	started := time.Now()
	metrics.Syncs.WithLabelValues("fund").Inc()

	el, err := c.gateway.Resolve(ctx)
	if err != nil {
		c.sectionFailed("resolve", err)
		return
	}
	fund, err := el.Fund(ctx)
	if err != nil {
		c.sectionFailed("fund", err)
		return
	}

	c.mu.Lock()
	next := c.current
	next.Fund = fund
	next.SyncedAt = time.Now().UTC()
	c.current = next
	c.view.ShowFund(fund)
	c.mu.Unlock()
	c.ops.RecordOp("syncFund", started)
}

// winner composes the result string. The winner reads are only issued
// once the status says voting has concluded; for earlier phases the
// result is empty without any contract call.
func (c *Coordinator) winner(ctx context.Context, el ledger.Election, status models.WorkflowStatus) (string, error) {
	if status < models.VotesTallied {
		return "", nil
	}
	description, err := el.WinningProposalDescription(ctx)
	if err != nil {
		return "", err
	}
	votes, err := el.WinningProposalVoteCounts(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Winning Proposal Is: %s with %d votes", description, votes), nil
}

// fetchCandidates rebuilds the list from scratch. The per-candidate reads
// run concurrently but land in the slot for their id, so the result is
// ordered by ascending id no matter which read finishes first. A single
// failed read fails the whole section; the list is never partial.
func (c *Coordinator) fetchCandidates(ctx context.Context, el ledger.Election) ([]models.Candidate, error) {
	count, err := el.CandidatesCount(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]models.Candidate, count)
	errs := make([]error, count)
	var wg sync.WaitGroup
	for i := int64(0); i < count; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			cand, err := el.Candidate(ctx, i+1)
			if err != nil {
				errs[i] = err
				return
			}
			list[i] = cand
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (c *Coordinator) fetchVoter(ctx context.Context, el ledger.Election, account models.Account) (models.Voter, error) {
	voter, err := el.Voter(ctx, account)
	if err != nil {
		return models.Voter{}, err
	}
	registered, err := el.IsRegisteredVoter(ctx, account)
	if err != nil {
		return models.Voter{}, err
	}
	voter.IsRegistered = registered
	return voter, nil
}

// publish replaces the stored model and emits every view signal inside
// one critical section, so two overlapping syncs cannot interleave their
// sections on screen: the view always shows one sync's model in full.
func (c *Coordinator) publish(next models.ReadModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = next
	c.view.ShowAccount(next.Account)
	c.view.ShowStatus(next.Status)
	c.view.ShowWinner(next.Winner)
	c.view.ShowCandidates(next.Candidates)
	c.view.ShowBallotOptions(next.Candidates)
	c.view.SetVoteFormHidden(next.Voter.HasVoted)
	c.view.ShowFund(next.Fund)
}

func (c *Coordinator) sectionFailed(section string, err error) {
	metrics.SyncSectionErrors.WithLabelValues(section).Inc()
	c.ops.RecordOpError(section)
	c.log.Warn("sync section failed", "section", section, "error", err)
}
