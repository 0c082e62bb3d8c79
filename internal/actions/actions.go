// Package actions holds the thin orchestration units behind every
// user-initiated operation: run the guard chain, submit on pass, report
// the outcome with the message for the precondition that failed.
package actions

import (
	"context"
	"log/slog"
	"math/big"
	"strings"

	"ballotdesk/go-client/internal/guard"
	"ballotdesk/go-client/internal/ledger"
	"ballotdesk/go-client/internal/metrics"
	"ballotdesk/go-client/internal/view"
	"ballotdesk/go-client/pkg/models"
)

const msgUnavailable = "The election ledger is not reachable right now"

// Resolver hands out the cached contract handle.
type Resolver interface {
	Resolve(ctx context.Context) (ledger.Election, error)
}

// IdentitySource supplies the acting address for mutating calls.
type IdentitySource interface {
	ActiveAccount(ctx context.Context) (models.Account, error)
}

// Handlers wraps one guard chain per action. A handler does not disable
// itself while its transaction is in flight; re-entrant submission is a
// known gap, visible in the tx_submitted metric.
type Handlers struct {
	gateway  Resolver
	identity IdentitySource
	view     view.View
	log      *slog.Logger
}

func NewHandlers(gateway Resolver, identity IdentitySource, v view.View, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		gateway:  gateway,
		identity: identity,
		view:     v,
		log:      logger.With("component", "actions"),
	}
}

// CastVote submits a ballot for the candidate after the registration,
// phase and proposal-count guards pass, in that order.
func (h *Handlers) CastVote(ctx context.Context, candidateID int64) {
	const action = "vote"
	section := view.SectionVote

	el, voter, ok := h.prepare(ctx, section)
	if !ok {
		return
	}

	var status models.WorkflowStatus
	guards := []guard.Guard{
		{Tag: guard.TagNotRegistered, Check: func(ctx context.Context) (bool, error) {
			return el.IsRegisteredVoter(ctx, voter)
		}},
		{Tag: guard.TagVotingNotStarted, Check: func(ctx context.Context) (bool, error) {
			s, err := el.GetWorkflowStatus(ctx)
			if err != nil {
				return false, err
			}
			status = s
			return s >= models.VotingSessionStarted, nil
		}},
		// Reuses the status read from the previous guard; one chain run
		// never re-issues an already evaluated read.
		{Tag: guard.TagVotingEnded, Check: func(ctx context.Context) (bool, error) {
			return status <= models.VotingSessionStarted, nil
		}},
		{Tag: guard.TagNoProposals, Check: func(ctx context.Context) (bool, error) {
			n, err := el.GetProposalsNumber(ctx)
			return n > 0, err
		}},
	}
	messages := map[guard.Tag]string{
		guard.TagNotRegistered:    "You are not a registered voter",
		guard.TagVotingNotStarted: "The voting session has not started yet",
		guard.TagVotingEnded:      "The voting session has already ended",
		guard.TagNoProposals:      "There are no proposals registered for voting",
	}

	h.run(ctx, action, section, guards, messages, func(ctx context.Context) (ledger.Tx, error) {
		return el.Vote(ctx, candidateID)
	})
}

// RegisterVoter registers target with the given voting power, gated on
// the acting account being the administrator, the target not yet being
// registered, and registration still being open.
func (h *Handlers) RegisterVoter(ctx context.Context, target models.Account, power *big.Int) {
	const action = "register_voter"
	section := view.SectionVoterRegistration

	el, admin, ok := h.prepare(ctx, section)
	if !ok {
		return
	}

	guards := []guard.Guard{
		{Tag: guard.TagNotAdmin, Check: func(ctx context.Context) (bool, error) {
			return el.IsAdministrator(ctx, admin)
		}},
		{Tag: guard.TagAlreadyRegistered, Check: func(ctx context.Context) (bool, error) {
			registered, err := el.IsRegisteredVoter(ctx, target)
			return !registered, err
		}},
		{Tag: guard.TagRegistrationClosed, Check: func(ctx context.Context) (bool, error) {
			s, err := el.GetWorkflowStatus(ctx)
			return s == models.RegisteringVoters, err
		}},
	}
	messages := map[guard.Tag]string{
		guard.TagNotAdmin:           "Not logged in as admin",
		guard.TagAlreadyRegistered:  "Voter is already registered",
		guard.TagRegistrationClosed: "Voter registration has already ended",
	}

	h.run(ctx, action, section, guards, messages, func(ctx context.Context) (ledger.Tx, error) {
		return el.RegisterVoter(ctx, target, power)
	})
}

// RegisterProposal adds a candidate. The name and cost checks are local
// and run before any contract read.
func (h *Handlers) RegisterProposal(ctx context.Context, name, cost string) {
	const action = "register_proposal"
	section := view.SectionProposalRegistration

	name = strings.TrimSpace(name)
	costWei, costOK := parseCost(cost)

	el, admin, ok := h.prepare(ctx, section)
	if !ok {
		return
	}

	guards := []guard.Guard{
		{Tag: guard.TagEmptyProposalName, Check: func(ctx context.Context) (bool, error) {
			return name != "", nil
		}},
		{Tag: guard.TagBadProposalCost, Check: func(ctx context.Context) (bool, error) {
			return costOK, nil
		}},
		{Tag: guard.TagNotAdmin, Check: func(ctx context.Context) (bool, error) {
			return el.IsAdministrator(ctx, admin)
		}},
	}
	messages := map[guard.Tag]string{
		guard.TagEmptyProposalName: "No proposal name entered",
		guard.TagBadProposalCost:   "Invalid proposal cost",
		guard.TagNotAdmin:          "You are not logged in as an admin",
	}

	h.run(ctx, action, section, guards, messages, func(ctx context.Context) (ledger.Tx, error) {
		return el.AddCandidate(ctx, name, costWei)
	})
}

// StartVotingSession moves the workflow out of voter registration.
func (h *Handlers) StartVotingSession(ctx context.Context) {
	const action = "start_voting_session"
	section := view.SectionVotingSession

	el, admin, ok := h.prepare(ctx, section)
	if !ok {
		return
	}

	guards := []guard.Guard{
		{Tag: guard.TagNotAdmin, Check: func(ctx context.Context) (bool, error) {
			return el.IsAdministrator(ctx, admin)
		}},
		{Tag: guard.TagSessionAlreadyBegun, Check: func(ctx context.Context) (bool, error) {
			s, err := el.GetWorkflowStatus(ctx)
			return s == models.RegisteringVoters, err
		}},
	}
	messages := map[guard.Tag]string{
		guard.TagNotAdmin:            "You are not logged in as an admin",
		guard.TagSessionAlreadyBegun: "The voting session has already begun",
	}

	h.run(ctx, action, section, guards, messages, func(ctx context.Context) (ledger.Tx, error) {
		return el.StartVotingSession(ctx)
	})
}

// TallyVotes closes the vote and computes the result.
func (h *Handlers) TallyVotes(ctx context.Context) {
	const action = "tally_votes"
	section := view.SectionVotingSession

	el, admin, ok := h.prepare(ctx, section)
	if !ok {
		return
	}

	guards := []guard.Guard{
		{Tag: guard.TagNotAdmin, Check: func(ctx context.Context) (bool, error) {
			return el.IsAdministrator(ctx, admin)
		}},
		{Tag: guard.TagAlreadyTallied, Check: func(ctx context.Context) (bool, error) {
			s, err := el.GetWorkflowStatus(ctx)
			return s < models.VotesTallied, err
		}},
	}
	messages := map[guard.Tag]string{
		guard.TagNotAdmin:       "You are not logged in as an admin",
		guard.TagAlreadyTallied: "The voting session has already closed",
	}

	h.run(ctx, action, section, guards, messages, func(ctx context.Context) (ledger.Tx, error) {
		return el.TallyVotes(ctx)
	})
}

// LoginAsVoter gates the voter menu on the address being registered.
// It reports whether access was granted.
func (h *Handlers) LoginAsVoter(ctx context.Context, address models.Account) bool {
	return h.login(ctx, "login_voter", view.SectionVoterLogin, "Incorrect Voter Login",
		guard.TagNotRegistered,
		func(ctx context.Context, el ledger.Election) (bool, error) {
			return el.IsRegisteredVoter(ctx, address)
		})
}

// LoginAsAdmin gates the admin menu on the address being the
// administrator.
func (h *Handlers) LoginAsAdmin(ctx context.Context, address models.Account) bool {
	return h.login(ctx, "login_admin", view.SectionAdminLogin, "Incorrect Login",
		guard.TagNotAdmin,
		func(ctx context.Context, el ledger.Election) (bool, error) {
			return el.IsAdministrator(ctx, address)
		})
}

func (h *Handlers) login(ctx context.Context, action string, section view.Section, denied string, tag guard.Tag, check func(context.Context, ledger.Election) (bool, error)) bool {
	el, err := h.gateway.Resolve(ctx)
	if err != nil {
		h.log.Error("contract resolution failed", "action", action, "error", err)
		h.view.ShowMessage(section, msgUnavailable)
		return false
	}

	granted := false
	guards := []guard.Guard{
		{Tag: tag, Check: func(ctx context.Context) (bool, error) {
			return check(ctx, el)
		}},
	}
	outcome, _ := guard.RunChain(ctx, guards, func(f guard.Failure) {
		metrics.GuardFailures.WithLabelValues(action, string(f.Tag)).Inc()
		h.view.ShowMessage(section, denied)
	}, func(ctx context.Context) error {
		granted = true
		return nil
	})
	return outcome == guard.Passed && granted
}

// UnlockVoter reports whether the address is a registered voter. Both
// verdicts are messages, not failures.
func (h *Handlers) UnlockVoter(ctx context.Context, address models.Account) {
	section := view.SectionUnlock
	el, err := h.gateway.Resolve(ctx)
	if err != nil {
		h.view.ShowMessage(section, msgUnavailable)
		return
	}
	registered, err := el.IsRegisteredVoter(ctx, address)
	if err != nil {
		h.view.ShowMessage(section, err.Error())
		return
	}
	if registered {
		h.view.ShowMessage(section, "Voter account has been unlocked")
	} else {
		h.view.ShowMessage(section, "Voter account has NOT been unlocked")
	}
}

// UnlockAdmin reports whether the address is the administrator.
func (h *Handlers) UnlockAdmin(ctx context.Context, address models.Account) {
	section := view.SectionUnlock
	el, err := h.gateway.Resolve(ctx)
	if err != nil {
		h.view.ShowMessage(section, msgUnavailable)
		return
	}
	isAdmin, err := el.IsAdministrator(ctx, address)
	if err != nil {
		h.view.ShowMessage(section, err.Error())
		return
	}
	if isAdmin {
		h.view.ShowMessage(section, "Admin account has been unlocked")
	} else {
		h.view.ShowMessage(section, "Admin account has NOT been unlocked")
	}
}

// CheckVoterRegistration answers the registration question for any
// address without gating anything.
func (h *Handlers) CheckVoterRegistration(ctx context.Context, address models.Account) {
	section := view.SectionRegistrationCheck
	el, err := h.gateway.Resolve(ctx)
	if err != nil {
		h.view.ShowMessage(section, msgUnavailable)
		return
	}
	registered, err := el.IsRegisteredVoter(ctx, address)
	if err != nil {
		h.view.ShowMessage(section, err.Error())
		return
	}
	if registered {
		h.view.ShowMessage(section, "Yes, this voter is registered")
	} else {
		h.view.ShowMessage(section, "No, this voter is NOT registered")
	}
}

// prepare resolves the contract handle and the acting account, reporting
// the matching message on either failure.
func (h *Handlers) prepare(ctx context.Context, section view.Section) (ledger.Election, models.Account, bool) {
	el, err := h.gateway.Resolve(ctx)
	if err != nil {
		h.log.Error("contract resolution failed", "error", err)
		h.view.ShowMessage(section, msgUnavailable)
		return nil, "", false
	}
	actor, err := h.identity.ActiveAccount(ctx)
	if err != nil {
		h.log.Error("no acting account", "error", err)
		h.view.ShowMessage(section, "No active account is available")
		return nil, "", false
	}
	return el, actor, true
}

// run executes the guard chain and submits the action. A rejected
// transaction is surfaced verbatim; it is never retried, because a
// rejection is not safely retriable without the user re-confirming.
func (h *Handlers) run(ctx context.Context, action string, section view.Section, guards []guard.Guard, messages map[guard.Tag]string, submit func(ctx context.Context) (ledger.Tx, error)) {
	var tx ledger.Tx
	outcome, err := guard.RunChain(ctx, guards, func(f guard.Failure) {
		metrics.GuardFailures.WithLabelValues(action, string(f.Tag)).Inc()
		if f.Tag == guard.TagUnavailable {
			h.log.Error("guard read failed", "action", action, "error", f.Err)
			h.view.ShowMessage(section, msgUnavailable)
			return
		}
		h.view.ShowMessage(section, messages[f.Tag])
	}, func(ctx context.Context) error {
		metrics.TxSubmitted.WithLabelValues(action).Inc()
		var err error
		tx, err = submit(ctx)
		return err
	})

	switch outcome {
	case guard.ActionFailed:
		metrics.TxFailed.WithLabelValues(action).Inc()
		h.log.Warn("transaction rejected", "action", action, "error", err)
		h.view.ShowMessage(section, err.Error())
	case guard.Passed:
		h.view.ShowMessage(section, "Transaction submitted: "+tx.Hash)
	}
}

// parseCost accepts a non-negative wei amount; empty means zero.
func parseCost(cost string) (*big.Int, bool) {
	cost = strings.TrimSpace(cost)
	if cost == "" {
		return new(big.Int), true
	}
	value, ok := new(big.Int).SetString(cost, 10)
	if !ok || value.Sign() < 0 {
		return nil, false
	}
	return value, true
}
