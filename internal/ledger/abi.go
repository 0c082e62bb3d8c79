package ledger

import "ballotdesk/go-client/pkg/models"

// ABI of the deployed Election contract, embedded so the client needs no
// artifact file next to the binary.
const electionABI = `[
  {"type":"function","name":"isAdministrator","stateMutability":"view","inputs":[{"name":"_address","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"isRegisteredVoter","stateMutability":"view","inputs":[{"name":"_address","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getVotingPower","stateMutability":"view","inputs":[{"name":"_address","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getWorkflowStatus","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"getProposalsNumber","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"candidatesCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"candidates","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"cost","type":"uint256"},{"name":"voteCount","type":"uint256"}]},
  {"type":"function","name":"voters","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"power","type":"uint256"},{"name":"hasVoted","type":"bool"}]},
  {"type":"function","name":"getWinningProposalDescription","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"getWinningProposalVoteCounts","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"fund","stateMutability":"view","inputs":[],"outputs":[{"name":"initial","type":"uint256"},{"name":"used","type":"uint256"}]},
  {"type":"function","name":"registerVoter","stateMutability":"nonpayable","inputs":[{"name":"_address","type":"address"},{"name":"_power","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"addCandidate","stateMutability":"nonpayable","inputs":[{"name":"_name","type":"string"},{"name":"_cost","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"startVotingSession","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"tallyVotes","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[{"name":"_candidateId","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"votedEvent","inputs":[{"name":"voter","type":"address","indexed":true},{"name":"candidateId","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"event","name":"WorkflowStatusChangeEvent","inputs":[{"name":"previousStatus","type":"uint8","indexed":false},{"name":"newStatus","type":"uint8","indexed":false}],"anonymous":false},
  {"type":"event","name":"ProposalRegisteredEvent","inputs":[{"name":"proposalId","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"event","name":"VotingSessionStartedEvent","inputs":[],"anonymous":false},
  {"type":"event","name":"VotingSessionEndedEvent","inputs":[],"anonymous":false},
  {"type":"event","name":"FundChangedEvent","inputs":[{"name":"initial","type":"uint256","indexed":false},{"name":"used","type":"uint256","indexed":false}],"anonymous":false}
]`

func eventName(kind models.EventKind) string {
	switch kind {
	case models.EventVoteCast:
		return "votedEvent"
	case models.EventStatusChanged:
		return "WorkflowStatusChangeEvent"
	case models.EventProposalRegistered:
		return "ProposalRegisteredEvent"
	case models.EventSessionStarted:
		return "VotingSessionStartedEvent"
	case models.EventSessionEnded:
		return "VotingSessionEndedEvent"
	case models.EventFundChanged:
		return "FundChangedEvent"
	}
	return ""
}
