package view

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pterm/pterm"

	"ballotdesk/go-client/pkg/models"
)

const fundBarWidth = 30

// Console renders the election view to the terminal. Prints are
// serialized so overlapping syncs cannot interleave within one panel.
type Console struct {
	mu sync.Mutex
}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) ShowAccount(account models.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.Info.Printfln("logged in as: %s", account)
}

func (c *Console) ShowStatus(status models.WorkflowStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.DefaultBox.WithTitle("Workflow Status").Println(status.Description())
}

func (c *Console) ShowWinner(winner string) {
	if winner == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.DefaultBox.WithTitle(pterm.LightGreen("|RESULT|")).WithTitleTopCenter().Println(winner)
}

func (c *Console) ShowCandidates(candidates []models.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := pterm.TableData{{"#", "Name", "Cost (wei)", "Votes"}}
	for _, cand := range candidates {
		rows = append(rows, []string{
			strconv.FormatInt(cand.ID, 10),
			cand.Name,
			costString(cand),
			strconv.FormatInt(cand.VoteCount, 10),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (c *Console) ShowBallotOptions(candidates []models.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	options := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		options = append(options, fmt.Sprintf("%d: %s", cand.ID, cand.Name))
	}
	if len(options) == 0 {
		pterm.Println("No ballot options available")
		return
	}
	pterm.Println("Ballot options: " + strings.Join(options, ", "))
}

func (c *Console) SetVoteFormHidden(hidden bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hidden {
		pterm.Println(pterm.LightYellow("You have already voted"))
	}
}

func (c *Console) ShowFund(fund models.ElectionFund) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.DefaultBox.WithTitle("Election Fund").Println(FundLine(fund))
}

func (c *Console) ShowMessage(section Section, message string) {
	if message == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.Printfln("[%s] %s", section, message)
}

// FundLine renders the fund snapshot as a fixed-width usage bar. The
// ratio is already zero-guarded by the model.
func FundLine(fund models.ElectionFund) string {
	ratio := fund.UsedRatio()
	filled := int(ratio * fundBarWidth)
	if filled > fundBarWidth {
		filled = fundBarWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", fundBarWidth-filled)
	return fmt.Sprintf("%s %3.0f%% used, %s wei remaining", bar, ratio*100, fund.Remaining().String())
}

func costString(cand models.Candidate) string {
	if cand.Cost == nil {
		return "0"
	}
	return cand.Cost.String()
}
