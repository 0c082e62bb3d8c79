// Package view is the client's outbound display port. The sync
// coordinator and the action handlers publish into it; the console
// implementation renders with pterm.
package view

import "ballotdesk/go-client/pkg/models"

// Section routes an action-handler message to its place on screen.
type Section string

const (
	SectionVote                 Section = "vote"
	SectionVoterRegistration    Section = "voter_registration"
	SectionProposalRegistration Section = "proposal_registration"
	SectionVotingSession        Section = "voting_session"
	SectionVoterLogin           Section = "voter_login"
	SectionAdminLogin           Section = "admin_login"
	SectionUnlock               Section = "unlock"
	SectionRegistrationCheck    Section = "registration_check"
)

// View receives wholesale refresh signals per read-model section. A
// rendered value is always replaced, never patched in place.
type View interface {
	ShowAccount(account models.Account)
	ShowStatus(status models.WorkflowStatus)
	ShowWinner(winner string)
	ShowCandidates(candidates []models.Candidate)
	ShowBallotOptions(candidates []models.Candidate)
	SetVoteFormHidden(hidden bool)
	ShowFund(fund models.ElectionFund)
	ShowMessage(section Section, message string)
}
