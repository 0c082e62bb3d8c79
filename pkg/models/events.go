package models

// EventKind identifies a contract-emitted change notification.
type EventKind int

const (
	EventVoteCast EventKind = iota
	EventStatusChanged
	EventProposalRegistered
	EventSessionStarted
	EventSessionEnded
	EventFundChanged
)

// EventKinds lists every kind the client subscribes to.
func EventKinds() []EventKind {
	return []EventKind{
		EventVoteCast,
		EventStatusChanged,
		EventProposalRegistered,
		EventSessionStarted,
		EventSessionEnded,
		EventFundChanged,
	}
}

func (k EventKind) String() string {
	switch k {
	case EventVoteCast:
		return "vote_cast"
	case EventStatusChanged:
		return "status_changed"
	case EventProposalRegistered:
		return "proposal_registered"
	case EventSessionStarted:
		return "session_started"
	case EventSessionEnded:
		return "session_ended"
	case EventFundChanged:
		return "fund_changed"
	}
	return "unknown"
}

// Event is one decoded contract notification. Payload fields are
// informational only: the client re-reads fresh state after every event
// instead of trusting event parameters.
type Event interface {
	Kind() EventKind
}

type VoteCast struct {
	Voter       Account
	CandidateID int64
}

func (VoteCast) Kind() EventKind { return EventVoteCast }

type StatusChanged struct {
	Status WorkflowStatus
}

func (StatusChanged) Kind() EventKind { return EventStatusChanged }

type ProposalRegistered struct {
	ProposalID int64
}

func (ProposalRegistered) Kind() EventKind { return EventProposalRegistered }

type SessionStarted struct{}

func (SessionStarted) Kind() EventKind { return EventSessionStarted }

type SessionEnded struct{}

func (SessionEnded) Kind() EventKind { return EventSessionEnded }

type FundChanged struct{}

func (FundChanged) Kind() EventKind { return EventFundChanged }

// Notification is one delivery on a subscription: either a decoded event
// or a stream error for that kind.
type Notification struct {
	Kind  EventKind
	Event Event
	Block uint64
	Err   error
}
