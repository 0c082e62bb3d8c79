package wallet

import (
	"context"
	"errors"
	"fmt"

	"ballotdesk/go-client/pkg/models"
)

var ErrNoIdentity = errors.New("no active account available")

// AccountLister exposes the accounts the connected node manages.
type AccountLister interface {
	NodeAccounts(ctx context.Context) ([]models.Account, error)
}

// AccountListerFunc adapts a closure to AccountLister.
type AccountListerFunc func(ctx context.Context) ([]models.Account, error)

func (f AccountListerFunc) NodeAccounts(ctx context.Context) ([]models.Account, error) {
	return f(ctx)
}

// Resolver picks the acting account: the unlocked local wallet wins,
// otherwise the first node-managed account. The result is a snapshot; an
// identity change is only observed on the next resolution.
type Resolver struct {
	wallet *Wallet
	node   AccountLister
}

func NewResolver(w *Wallet, node AccountLister) *Resolver {
	return &Resolver{wallet: w, node: node}
}

func (r *Resolver) ActiveAccount(ctx context.Context) (models.Account, error) {
	if r.wallet != nil {
		if addr, ok := r.wallet.Address(); ok {
			return addr, nil
		}
	}
	if r.node != nil {
		accounts, err := r.node.NodeAccounts(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
		}
		if len(accounts) > 0 {
			return accounts[0], nil
		}
	}
	return "", ErrNoIdentity
}
