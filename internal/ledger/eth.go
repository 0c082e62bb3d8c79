package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"ballotdesk/go-client/pkg/models"
)

// TransactorSource supplies signing options for mutating calls. The wallet
// implements it; a locked wallet returns an error instead of opts.
type TransactorSource interface {
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

type EthOptions struct {
	RPCURL          string
	ContractAddress string
	GasLimit        uint64
	Signer          TransactorSource
	Logger          *slog.Logger
}

// EthElection binds the embedded Election ABI over a JSON-RPC node.
type EthElection struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	address  common.Address
	chainID  *big.Int
	gasLimit uint64
	signer   TransactorSource
	log      *slog.Logger
}

// DialEth connects to the node and binds the contract at the configured
// address. No call is issued against the contract itself; a wrong address
// surfaces on the first read.
func DialEth(ctx context.Context, opts EthOptions) (*EthElection, error) {
	if opts.ContractAddress == "" {
		return nil, fmt.Errorf("contract address is not configured")
	}
	client, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(electionABI))
	if err != nil {
		client.Close()
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	address := common.HexToAddress(opts.ContractAddress)
	return &EthElection{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		abi:      parsed,
		address:  address,
		chainID:  chainID,
		gasLimit: opts.GasLimit,
		signer:   opts.Signer,
		log:      logger.With("component", "ledger"),
	}, nil
}

func (e *EthElection) Close() {
	e.client.Close()
}

func (e *EthElection) call(ctx context.Context, method string, out *[]interface{}, args ...interface{}) error {
	return e.contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...)
}

func (e *EthElection) IsAdministrator(ctx context.Context, addr models.Account) (bool, error) {
	var out []interface{}
	if err := e.call(ctx, "isAdministrator", &out, common.HexToAddress(string(addr))); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (e *EthElection) IsRegisteredVoter(ctx context.Context, addr models.Account) (bool, error) {
	var out []interface{}
	if err := e.call(ctx, "isRegisteredVoter", &out, common.HexToAddress(string(addr))); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (e *EthElection) GetVotingPower(ctx context.Context, addr models.Account) (*big.Int, error) {
	var out []interface{}
	if err := e.call(ctx, "getVotingPower", &out, common.HexToAddress(string(addr))); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (e *EthElection) GetWorkflowStatus(ctx context.Context) (models.WorkflowStatus, error) {
	var out []interface{}
	if err := e.call(ctx, "getWorkflowStatus", &out); err != nil {
		return 0, err
	}
	return models.WorkflowStatus(*abi.ConvertType(out[0], new(uint8)).(*uint8)), nil
}

func (e *EthElection) GetProposalsNumber(ctx context.Context) (int64, error) {
	var out []interface{}
	if err := e.call(ctx, "getProposalsNumber", &out); err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Int64(), nil
}

func (e *EthElection) CandidatesCount(ctx context.Context) (int64, error) {
	var out []interface{}
	if err := e.call(ctx, "candidatesCount", &out); err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Int64(), nil
}

func (e *EthElection) Candidate(ctx context.Context, id int64) (models.Candidate, error) {
	var out []interface{}
	if err := e.call(ctx, "candidates", &out, big.NewInt(id)); err != nil {
		return models.Candidate{}, err
	}
	return models.Candidate{
		ID:        (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Int64(),
		Name:      *abi.ConvertType(out[1], new(string)).(*string),
		Cost:      *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		VoteCount: (*abi.ConvertType(out[3], new(*big.Int)).(**big.Int)).Int64(),
	}, nil
}

func (e *EthElection) Voter(ctx context.Context, addr models.Account) (models.Voter, error) {
	var out []interface{}
	if err := e.call(ctx, "voters", &out, common.HexToAddress(string(addr))); err != nil {
		return models.Voter{}, err
	}
	return models.Voter{
		Address:     addr,
		VotingPower: *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		HasVoted:    *abi.ConvertType(out[1], new(bool)).(*bool),
	}, nil
}

func (e *EthElection) WinningProposalDescription(ctx context.Context) (string, error) {
	var out []interface{}
	if err := e.call(ctx, "getWinningProposalDescription", &out); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (e *EthElection) WinningProposalVoteCounts(ctx context.Context) (int64, error) {
	var out []interface{}
	if err := e.call(ctx, "getWinningProposalVoteCounts", &out); err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Int64(), nil
}

// Fund decodes the snapshot pair as plain uint256 values. Ratio math over
// these happens in models.ElectionFund, never on a word of the internal
// big-number representation.
func (e *EthElection) Fund(ctx context.Context) (models.ElectionFund, error) {
	var out []interface{}
	if err := e.call(ctx, "fund", &out); err != nil {
		return models.ElectionFund{}, err
	}
	return models.ElectionFund{
		Initial: *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Used:    *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
	}, nil
}

func (e *EthElection) transact(ctx context.Context, method string, args ...interface{}) (Tx, error) {
	opts, err := e.signer.TransactOpts(ctx, e.chainID)
	if err != nil {
		return Tx{}, err
	}
	opts.Context = ctx
	opts.GasLimit = e.gasLimit
	tx, err := e.contract.Transact(opts, method, args...)
	if err != nil {
		return Tx{}, err
	}
	e.log.Info("transaction submitted", "method", method, "tx", tx.Hash().Hex())
	return Tx{Hash: tx.Hash().Hex()}, nil
}

func (e *EthElection) RegisterVoter(ctx context.Context, addr models.Account, power *big.Int) (Tx, error) {
	return e.transact(ctx, "registerVoter", common.HexToAddress(string(addr)), power)
}

func (e *EthElection) AddCandidate(ctx context.Context, name string, cost *big.Int) (Tx, error) {
	return e.transact(ctx, "addCandidate", name, cost)
}

func (e *EthElection) StartVotingSession(ctx context.Context) (Tx, error) {
	return e.transact(ctx, "startVotingSession")
}

func (e *EthElection) TallyVotes(ctx context.Context) (Tx, error) {
	return e.transact(ctx, "tallyVotes")
}

func (e *EthElection) Vote(ctx context.Context, candidateID int64) (Tx, error) {
	return e.transact(ctx, "vote", big.NewInt(candidateID))
}

// NodeAccounts lists the accounts the connected node manages. Used as the
// identity fallback when no local wallet is unlocked.
func (e *EthElection) NodeAccounts(ctx context.Context) ([]models.Account, error) {
	var raw []common.Address
	if err := e.client.Client().CallContext(ctx, &raw, "eth_accounts"); err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(raw))
	for _, a := range raw {
		accounts = append(accounts, models.Account(a.Hex()))
	}
	return accounts, nil
}

// WatchEvent opens one log subscription for the given kind, scoped from
// genesis so a late-joining client replays history. Decoded notifications
// and stream errors both land in sink; a stream error ends the delivery
// goroutine and the caller re-subscribes.
func (e *EthElection) WatchEvent(ctx context.Context, kind models.EventKind, sink chan<- models.Notification) (Subscription, error) {
	name := eventName(kind)
	ev, ok := e.abi.Events[name]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %s", kind)
	}
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{e.address},
		Topics:    [][]common.Hash{{ev.ID}},
	}
	logs := make(chan types.Log, 16)
	sub, err := e.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case lg, open := <-logs:
				if !open {
					return
				}
				select {
				case sink <- e.decodeLog(kind, lg):
				case <-ctx.Done():
					return
				}
			case err, open := <-sub.Err():
				if open && err != nil {
					select {
					case sink <- models.Notification{Kind: kind, Err: err}:
					case <-ctx.Done():
					}
				}
				return
			case <-ctx.Done():
				sub.Unsubscribe()
				return
			}
		}
	}()
	return sub, nil
}

// decodeLog extracts the payload for display and logging only; resync
// always re-reads contract state instead of trusting these fields.
func (e *EthElection) decodeLog(kind models.EventKind, lg types.Log) models.Notification {
	n := models.Notification{Kind: kind, Block: lg.BlockNumber}
	switch kind {
	case models.EventVoteCast:
		ev := models.VoteCast{}
		if len(lg.Topics) > 1 {
			ev.Voter = models.Account(common.BytesToAddress(lg.Topics[1].Bytes()).Hex())
		}
		if vals, err := e.abi.Unpack("votedEvent", lg.Data); err == nil && len(vals) > 0 {
			if id, ok := vals[0].(*big.Int); ok {
				ev.CandidateID = id.Int64()
			}
		}
		n.Event = ev
	case models.EventStatusChanged:
		ev := models.StatusChanged{}
		if vals, err := e.abi.Unpack("WorkflowStatusChangeEvent", lg.Data); err == nil && len(vals) > 1 {
			if status, ok := vals[1].(uint8); ok {
				ev.Status = models.WorkflowStatus(status)
			}
		}
		n.Event = ev
	case models.EventProposalRegistered:
		ev := models.ProposalRegistered{}
		if vals, err := e.abi.Unpack("ProposalRegisteredEvent", lg.Data); err == nil && len(vals) > 0 {
			if id, ok := vals[0].(*big.Int); ok {
				ev.ProposalID = id.Int64()
			}
		}
		n.Event = ev
	case models.EventSessionStarted:
		n.Event = models.SessionStarted{}
	case models.EventSessionEnded:
		n.Event = models.SessionEnded{}
	case models.EventFundChanged:
		n.Event = models.FundChanged{}
	}
	return n
}
