package models

import (
	"math/big"
	"time"
)

// Account is an opaque ledger address. The contract owns all identity
// semantics; the client only passes it through.
type Account string

func (a Account) IsZero() bool {
	return a == "" || a == "0x0"
}

// Short returns a display form suitable for the console header.
func (a Account) Short() string {
	s := string(a)
	if len(s) <= 12 {
		return s
	}
	return s[:8] + "…" + s[len(s)-4:]
}

// WorkflowStatus is the contract's monotonically advancing phase enum.
// The contract never moves it backward.
type WorkflowStatus int

const (
	RegisteringVoters WorkflowStatus = iota
	VotingSessionStarted
	VotesTallied
)

func (s WorkflowStatus) String() string {
	switch s {
	case RegisteringVoters:
		return "RegisteringVoters"
	case VotingSessionStarted:
		return "VotingSessionStarted"
	case VotesTallied:
		return "VotesTallied"
	}
	return "Unknown"
}

// Description is the user-facing status line.
func (s WorkflowStatus) Description() string {
	switch s {
	case RegisteringVoters:
		return "Voting Registration Open"
	case VotingSessionStarted:
		return "Voting has started"
	case VotesTallied:
		return "Voting has ended"
	}
	return "Unknown Status"
}

type Voter struct {
	Address      Account  `json:"address"`
	IsRegistered bool     `json:"is_registered"`
	VotingPower  *big.Int `json:"voting_power"`
	HasVoted     bool     `json:"has_voted"`
}

type Candidate struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Cost      *big.Int `json:"cost"`
	VoteCount int64    `json:"vote_count"`
}

// ElectionFund is the contract's fund snapshot in wei.
type ElectionFund struct {
	Initial *big.Int `json:"initial"`
	Used    *big.Int `json:"used"`
}

func (f ElectionFund) Remaining() *big.Int {
	if f.Initial == nil || f.Used == nil {
		return new(big.Int)
	}
	return new(big.Int).Sub(f.Initial, f.Used)
}

// UsedRatio returns used/initial in [0,1]. A zero or missing initial
// reports 0 rather than dividing by zero.
func (f ElectionFund) UsedRatio() float64 {
	if f.Initial == nil || f.Used == nil || f.Initial.Sign() == 0 {
		return 0
	}
	ratio, _ := new(big.Float).Quo(
		new(big.Float).SetInt(f.Used),
		new(big.Float).SetInt(f.Initial),
	).Float64()
	return ratio
}

// ReadModel is the client's snapshot of ledger state. It is rebuilt and
// replaced wholesale on sync, never patched field by field mid-flight.
type ReadModel struct {
	Account    Account        `json:"account"`
	Status     WorkflowStatus `json:"status"`
	Winner     string         `json:"winner"`
	Candidates []Candidate    `json:"candidates"`
	Voter      Voter          `json:"voter"`
	Fund       ElectionFund   `json:"fund"`
	SyncedAt   time.Time      `json:"synced_at"`
}
