package models

import (
	"math/big"
	"testing"
)

func TestAccountIsZero(t *testing.T) {
	if !Account("").IsZero() {
		t.Fatal("empty account must be zero")
	}
	if !Account("0x0").IsZero() {
		t.Fatal("0x0 must be zero")
	}
	if Account("0xdeadbeef").IsZero() {
		t.Fatal("real address must not be zero")
	}
}

func TestAccountShort(t *testing.T) {
	long := Account("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	got := long.Short()
	if got != "0x90F8bf…c9C1" {
		t.Fatalf("unexpected short form: %q", got)
	}
	if short := Account("0xabc").Short(); short != "0xabc" {
		t.Fatalf("short addresses must pass through, got %q", short)
	}
}

func TestWorkflowStatusOrdering(t *testing.T) {
	if !(RegisteringVoters < VotingSessionStarted && VotingSessionStarted < VotesTallied) {
		t.Fatal("phases must be ordered for the guard comparisons")
	}
}

func TestWorkflowStatusDescription(t *testing.T) {
	cases := map[WorkflowStatus]string{
		RegisteringVoters:    "Voting Registration Open",
		VotingSessionStarted: "Voting has started",
		VotesTallied:         "Voting has ended",
		WorkflowStatus(42):   "Unknown Status",
	}
	for status, want := range cases {
		if got := status.Description(); got != want {
			t.Fatalf("status %d: expected %q, got %q", status, want, got)
		}
	}
}

func TestFundRemaining(t *testing.T) {
	fund := ElectionFund{Initial: big.NewInt(1000), Used: big.NewInt(250)}
	if got := fund.Remaining(); got.Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("expected 750 remaining, got %s", got)
	}
	if got := (ElectionFund{}).Remaining(); got.Sign() != 0 {
		t.Fatalf("missing amounts must report 0 remaining, got %s", got)
	}
}

func TestFundUsedRatio(t *testing.T) {
	fund := ElectionFund{Initial: big.NewInt(200), Used: big.NewInt(50)}
	if got := fund.UsedRatio(); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestFundUsedRatioZeroInitial(t *testing.T) {
	fund := ElectionFund{Initial: big.NewInt(0), Used: big.NewInt(0)}
	if got := fund.UsedRatio(); got != 0 {
		t.Fatalf("zero initial must report ratio 0, got %v", got)
	}
	if got := (ElectionFund{}).UsedRatio(); got != 0 {
		t.Fatalf("nil amounts must report ratio 0, got %v", got)
	}
}

func TestEventKindsCoverEveryKind(t *testing.T) {
	kinds := EventKinds()
	if len(kinds) != 6 {
		t.Fatalf("expected 6 kinds, got %d", len(kinds))
	}
	seen := make(map[EventKind]bool, len(kinds))
	for _, kind := range kinds {
		if kind.String() == "unknown" {
			t.Fatalf("kind %d has no name", kind)
		}
		if seen[kind] {
			t.Fatalf("kind %s listed twice", kind)
		}
		seen[kind] = true
	}
}

func TestEventPayloadsReportTheirKind(t *testing.T) {
	cases := []struct {
		event Event
		kind  EventKind
	}{
		{VoteCast{Voter: "0xabc", CandidateID: 1}, EventVoteCast},
		{StatusChanged{Status: VotesTallied}, EventStatusChanged},
		{ProposalRegistered{ProposalID: 2}, EventProposalRegistered},
		{SessionStarted{}, EventSessionStarted},
		{SessionEnded{}, EventSessionEnded},
		{FundChanged{}, EventFundChanged},
	}
	for _, tc := range cases {
		if got := tc.event.Kind(); got != tc.kind {
			t.Fatalf("expected %s, got %s", tc.kind, got)
		}
	}
}
