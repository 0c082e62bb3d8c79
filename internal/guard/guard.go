// Package guard runs the ordered precondition chains that gate every
// mutating contract call. A chain is data, not nesting: an ordered slice
// of guards consumed by one runner, so guard order is testable on its own.
package guard

import "context"

// Tag names the precondition a guard checks. Handlers key their
// user-facing messages off the failed tag.
type Tag string

const (
	// TagUnavailable marks a guard read that failed to resolve. It is a
	// chain failure, never a guard-false verdict.
	TagUnavailable Tag = "unavailable"

	TagNotRegistered       Tag = "not_registered"
	TagAlreadyRegistered   Tag = "already_registered"
	TagRegistrationClosed  Tag = "registration_closed"
	TagVotingNotStarted    Tag = "voting_not_started"
	TagVotingEnded         Tag = "voting_ended"
	TagNoProposals         Tag = "no_proposals"
	TagNotAdmin            Tag = "not_admin"
	TagSessionAlreadyBegun Tag = "session_already_begun"
	TagAlreadyTallied      Tag = "already_tallied"
	TagEmptyProposalName   Tag = "empty_proposal_name"
	TagBadProposalCost     Tag = "bad_proposal_cost"
)

// Guard is one asynchronous precondition: an idempotent read (or a local
// validation) that must report true for the chain to continue.
type Guard struct {
	Tag   Tag
	Check func(ctx context.Context) (bool, error)
}

// Failure identifies which precondition stopped a chain. For read errors
// the Tag is TagUnavailable and Err carries the cause.
type Failure struct {
	Tag Tag
	Err error
}

// Outcome reports how a chain run ended.
type Outcome int

const (
	// Passed: every guard held and the action was invoked successfully.
	Passed Outcome = iota
	// GuardFailed: a guard stopped the chain; the action never ran.
	GuardFailed
	// ActionFailed: guards passed but the submitted action was rejected.
	ActionFailed
)

// RunChain evaluates guards strictly left to right with short-circuit on
// the first failure. Each guard runs at most once per chain run. When all
// guards hold, action is invoked exactly once; its error is returned with
// ActionFailed rather than propagated as a chain failure.
func RunChain(ctx context.Context, guards []Guard, onFail func(Failure), action func(ctx context.Context) error) (Outcome, error) {
	for _, g := range guards {
		ok, err := g.Check(ctx)
		if err != nil {
			if onFail != nil {
				onFail(Failure{Tag: TagUnavailable, Err: err})
			}
			return GuardFailed, nil
		}
		if !ok {
			if onFail != nil {
				onFail(Failure{Tag: g.Tag})
			}
			return GuardFailed, nil
		}
	}
	if err := action(ctx); err != nil {
		return ActionFailed, err
	}
	return Passed, nil
}
