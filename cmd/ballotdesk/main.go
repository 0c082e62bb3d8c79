package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"ballotdesk/go-client/internal/actions"
	"ballotdesk/go-client/internal/config"
	"ballotdesk/go-client/internal/ledger"
	"ballotdesk/go-client/internal/metrics"
	"ballotdesk/go-client/internal/syncer"
	"ballotdesk/go-client/internal/view"
	"ballotdesk/go-client/internal/wallet"
	"ballotdesk/go-client/internal/watch"
	"ballotdesk/go-client/pkg/models"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

type client struct {
	cfg      config.Config
	wallet   *wallet.Wallet
	gateway  *ledger.Gateway
	coord    *syncer.Coordinator
	handlers *actions.Handlers
	ops      *metrics.OpsState
	role     string
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to ballotdesk.yaml (optional)")
	rpcURL := flag.String("rpc-url", "", "Ledger node JSON-RPC URL override")
	contract := flag.String("contract", "", "Election contract address override")
	keystore := flag.String("keystore", "", "Wallet keystore path override")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus listen address (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("ballotdesk version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	cfg := config.LoadFromPath(*configPath)
	if *rpcURL != "" {
		cfg.RPCURL = *rpcURL
	}
	if *contract != "" {
		cfg.ContractAddress = *contract
	}
	if *keystore != "" {
		cfg.KeystorePath = *keystore
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	slog.SetDefault(logger)

	w := wallet.New(cfg.KeystorePath)
	gw := ledger.NewGateway(func(dialCtx context.Context) (ledger.Election, error) {
		dialCtx, cancel := context.WithTimeout(dialCtx, cfg.DialTimeout)
		defer cancel()
		return ledger.DialEth(dialCtx, ledger.EthOptions{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			GasLimit:        cfg.GasLimit,
			Signer:          w,
			Logger:          logger,
		})
	})
	resolver := wallet.NewResolver(w, gw)
	console := view.NewConsole()
	ops := metrics.NewOpsState()
	coord := syncer.New(gw, resolver, console, ops, logger)
	handlers := actions.NewHandlers(gw, resolver, console, logger)
	manager := watch.NewManager(gw, coord, console, watch.NewKindLimiter(cfg.ResyncRate, cfg.ResyncBurst), logger)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler()); err != nil {
				logger.Warn("metrics listener stopped", "error", err)
			}
		}()
	}

	logger.Info("ballotdesk starting", "version", version, "rpc_url", cfg.RPCURL)
	manager.Start(ctx)
	coord.SyncStatus(ctx)
	coord.FullSync(ctx)

	c := &client{
		cfg:      cfg,
		wallet:   w,
		gateway:  gw,
		coord:    coord,
		handlers: handlers,
		ops:      ops,
		role:     "guest",
	}
	c.loop(ctx)
	logger.Info("ballotdesk stopped")
}

func (c *client) loop(ctx context.Context) {
	for ctx.Err() == nil {
		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText(fmt.Sprintf("ballotdesk (%s)", c.role)).
			WithOptions(c.menu()).
			Show()

		switch choice {
		case "Refresh view":
			c.coord.FullSync(ctx)
		case "Cast vote":
			c.castVote(ctx)
		case "Register voter":
			c.registerVoter(ctx)
		case "Register proposal":
			c.registerProposal(ctx)
		case "Start voting session":
			c.handlers.StartVotingSession(ctx)
		case "Tally votes":
			c.handlers.TallyVotes(ctx)
		case "Login as voter":
			if c.handlers.LoginAsVoter(ctx, c.askAddress("Voter address")) {
				c.role = "voter"
			}
		case "Login as admin":
			if c.handlers.LoginAsAdmin(ctx, c.askAddress("Admin address")) {
				c.role = "admin"
			}
		case "Check voter registration":
			c.handlers.CheckVoterRegistration(ctx, c.askAddress("Address to check"))
		case "Unlock voter":
			c.handlers.UnlockVoter(ctx, c.askAddress("Voter address"))
		case "Unlock admin":
			c.handlers.UnlockAdmin(ctx, c.askAddress("Admin address"))
		case "Unlock wallet":
			c.unlockWallet()
		case "Create wallet":
			c.createWallet()
		case "Import wallet":
			c.importWallet()
		case "Stats":
			c.showStats()
		case "Logout":
			c.role = "guest"
		case "Quit", "":
			return
		}
	}
}

func (c *client) menu() []string {
	options := []string{"Refresh view"}
	switch c.role {
	case "voter":
		options = append(options, "Cast vote", "Unlock voter", "Logout")
	case "admin":
		options = append(options,
			"Register voter",
			"Register proposal",
			"Start voting session",
			"Tally votes",
			"Check voter registration",
			"Unlock admin",
			"Logout",
		)
	default:
		options = append(options, "Login as voter", "Login as admin", "Check voter registration")
	}
	options = append(options, "Unlock wallet", "Create wallet", "Import wallet", "Stats", "Quit")
	return options
}

func (c *client) castVote(ctx context.Context) {
	candidates := c.coord.Current().Candidates
	if len(candidates) == 0 {
		pterm.Println("No ballot options available, refresh the view first")
		return
	}
	options := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		options = append(options, fmt.Sprintf("%d: %s", cand.ID, cand.Name))
	}
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Select a candidate").
		WithOptions(options).
		Show()
	id, err := strconv.ParseInt(strings.SplitN(choice, ":", 2)[0], 10, 64)
	if err != nil {
		return
	}
	c.handlers.CastVote(ctx, id)
}

func (c *client) registerVoter(ctx context.Context) {
	target := c.askAddress("Voter address to register")
	raw, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Voting power").
		WithDefaultValue("1").
		Show()
	power, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || power.Sign() < 0 {
		pterm.Println("Voting power must be a non-negative integer")
		return
	}
	c.handlers.RegisterVoter(ctx, target, power)
}

func (c *client) registerProposal(ctx context.Context) {
	name, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Proposal name").
		Show()
	cost, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Proposal cost in wei").
		WithDefaultValue("0").
		Show()
	c.handlers.RegisterProposal(ctx, name, cost)
}

func (c *client) askAddress(prompt string) models.Account {
	raw, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		Show()
	return models.Account(strings.TrimSpace(raw))
}

func (c *client) unlockWallet() {
	password, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Wallet password").
		WithMask("*").
		Show()
	if err := c.wallet.Unlock(password); err != nil {
		pterm.Error.Printfln("unlock failed: %v", err)
		return
	}
	if addr, ok := c.wallet.Address(); ok {
		pterm.Success.Printfln("wallet unlocked for %s", addr.Short())
	}
}

func (c *client) createWallet() {
	password, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("New wallet password").
		WithMask("*").
		Show()
	mnemonic, err := c.wallet.Create(password)
	if err != nil {
		pterm.Error.Printfln("wallet creation failed: %v", err)
		return
	}
	pterm.DefaultBox.WithTitle("Recovery phrase, write it down").Println(mnemonic)
}

func (c *client) importWallet() {
	mnemonic, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Recovery phrase").
		Show()
	password, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Wallet password").
		WithMask("*").
		Show()
	if err := c.wallet.Import(mnemonic, password); err != nil {
		pterm.Error.Printfln("wallet import failed: %v", err)
		return
	}
	pterm.Success.Println("wallet imported")
}

func (c *client) showStats() {
	snapshot, updatedAt := c.ops.Snapshot()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := pterm.TableData{{"Operation", "Count", "Errors", "Avg ms", "Max ms", "Last ms"}}
	for _, name := range names {
		m := snapshot[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(m.Count),
			strconv.Itoa(m.Errors),
			strconv.FormatInt(m.AvgLatencyMs, 10),
			strconv.FormatInt(m.MaxLatencyMs, 10),
			strconv.FormatInt(m.LastLatencyMs, 10),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	if !updatedAt.IsZero() {
		pterm.Printfln("last updated %s", updatedAt.Format("15:04:05"))
	}
}
