package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"ballotdesk/go-client/pkg/models"
)

var (
	ErrLocked           = errors.New("wallet is locked")
	ErrNoKeystore       = errors.New("no keystore at configured path")
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrPasswordRequired = errors.New("password is required")
	ErrMnemonicRequired = errors.New("mnemonic is required")
)

// Wallet holds the acting account's key, derived from a bip39 mnemonic
// persisted as a passphrase-encrypted envelope on disk.
type Wallet struct {
	mu      sync.RWMutex
	path    string
	key     *ecdsa.PrivateKey
	address models.Account
}

func New(path string) *Wallet {
	return &Wallet{path: strings.TrimSpace(path)}
}

// Create generates a fresh mnemonic, persists its envelope and leaves the
// wallet unlocked. The mnemonic is returned once for the user to note down.
func (w *Wallet) Create(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrPasswordRequired
	}
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", err
	}
	if err := w.Import(mnemonic, password); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// Import validates the mnemonic, derives the account key, persists the
// envelope and unlocks the wallet.
func (w *Wallet) Import(mnemonic, password string) error {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return ErrMnemonicRequired
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}
	key, address, err := deriveAccountKey(mnemonic)
	if err != nil {
		return err
	}
	if w.path != "" {
		sealed, err := sealMnemonic(password, mnemonic)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
			return err
		}
		if err := os.WriteFile(w.path, sealed, 0o600); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.key = key
	w.address = address
	w.mu.Unlock()
	return nil
}

// Unlock reads the envelope from disk and derives the key.
func (w *Wallet) Unlock(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if w.path == "" {
		return ErrNoKeystore
	}
	raw, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoKeystore
		}
		return err
	}
	mnemonic, err := openMnemonic(password, raw)
	if err != nil {
		return err
	}
	key, address, err := deriveAccountKey(mnemonic)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.key = key
	w.address = address
	w.mu.Unlock()
	return nil
}

func (w *Wallet) Lock() {
	w.mu.Lock()
	w.key = nil
	w.address = ""
	w.mu.Unlock()
}

func (w *Wallet) Unlocked() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.key != nil
}

// Address returns the unlocked account, if any.
func (w *Wallet) Address() (models.Account, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.key == nil {
		return "", false
	}
	return w.address, true
}

// TransactOpts builds signing options for a mutating call.
func (w *Wallet) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.RLock()
	key := w.key
	w.mu.RUnlock()
	if key == nil {
		return nil, ErrLocked
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func deriveAccountKey(mnemonic string) (*ecdsa.PrivateKey, models.Account, error) {
	seed := bip39.NewSeed(mnemonic, "")
	key, err := crypto.ToECDSA(crypto.Keccak256(seed))
	if err != nil {
		return nil, "", err
	}
	return key, models.Account(crypto.PubkeyToAddress(key.PublicKey).Hex()), nil
}
