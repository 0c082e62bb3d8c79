package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tyler-smith/go-bip39"

	"ballotdesk/go-client/pkg/models"
)

const testMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

func tempKeystore(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "wallet.env")
}

func TestImportUnlockRoundTrip(t *testing.T) {
	path := tempKeystore(t)
	w := New(path)

	if err := w.Import(testMnemonic, "hunter2"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	imported, ok := w.Address()
	if !ok || imported.IsZero() {
		t.Fatal("import must leave the wallet unlocked")
	}

	w.Lock()
	if w.Unlocked() {
		t.Fatal("lock must clear the key")
	}
	if _, ok := w.Address(); ok {
		t.Fatal("a locked wallet must not expose an address")
	}

	if err := w.Unlock("hunter2"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	unlocked, ok := w.Address()
	if !ok {
		t.Fatal("unlock must restore the address")
	}
	if unlocked != imported {
		t.Fatalf("address changed across lock/unlock: %s vs %s", imported, unlocked)
	}
}

func TestUnlockRejectsWrongPassword(t *testing.T) {
	path := tempKeystore(t)
	w := New(path)
	if err := w.Import(testMnemonic, "hunter2"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	w.Lock()

	if err := w.Unlock("wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if w.Unlocked() {
		t.Fatal("a failed unlock must leave the wallet locked")
	}
}

func TestUnlockWithoutKeystore(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing.env"))
	if err := w.Unlock("hunter2"); !errors.Is(err, ErrNoKeystore) {
		t.Fatalf("expected ErrNoKeystore, got %v", err)
	}
}

func TestUnlockRejectsCorruptEnvelope(t *testing.T) {
	path := tempKeystore(t)
	if err := os.WriteFile(path, []byte("not an envelope"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	w := New(path)
	if err := w.Unlock("hunter2"); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expected ErrInvalidEnvelope, got %v", err)
	}
}

func TestUnlockRejectsTamperedFieldLengths(t *testing.T) {
	sealed, err := sealMnemonic("hunter2", testMnemonic)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(sealed[len(filePrefix):], &env); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	cases := map[string]func(envelope) envelope{
		"short nonce": func(e envelope) envelope {
			e.Nonce = e.Nonce[:12]
			return e
		},
		"long nonce": func(e envelope) envelope {
			e.Nonce = append(e.Nonce, 0)
			return e
		},
		"empty nonce": func(e envelope) envelope {
			e.Nonce = nil
			return e
		},
		"short salt": func(e envelope) envelope {
			e.Salt = e.Salt[:4]
			return e
		},
	}
	for name, tamper := range cases {
		raw, err := json.Marshal(tamper(env))
		if err != nil {
			t.Fatalf("%s: marshal failed: %v", name, err)
		}
		path := tempKeystore(t)
		if err := os.WriteFile(path, append([]byte(filePrefix), raw...), 0o600); err != nil {
			t.Fatalf("%s: write failed: %v", name, err)
		}
		w := New(path)
		if err := w.Unlock("hunter2"); !errors.Is(err, ErrInvalidEnvelope) {
			t.Fatalf("%s: expected ErrInvalidEnvelope, got %v", name, err)
		}
	}
}

func TestImportValidation(t *testing.T) {
	w := New(tempKeystore(t))
	if err := w.Import("", "hunter2"); !errors.Is(err, ErrMnemonicRequired) {
		t.Fatalf("expected ErrMnemonicRequired, got %v", err)
	}
	if err := w.Import(testMnemonic, "  "); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if err := w.Import("definitely not twelve valid words", "hunter2"); !errors.Is(err, ErrInvalidMnemonic) {
		t.Fatalf("expected ErrInvalidMnemonic, got %v", err)
	}
}

func TestCreateProducesRecoverableWallet(t *testing.T) {
	w := New(tempKeystore(t))
	mnemonic, err := w.Create("hunter2")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		t.Fatalf("create returned an invalid mnemonic")
	}
	created, ok := w.Address()
	if !ok {
		t.Fatal("create must leave the wallet unlocked")
	}

	// The mnemonic alone recovers the same account elsewhere.
	other := New(tempKeystore(t))
	if err := other.Import(mnemonic, "different-pass"); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	recovered, _ := other.Address()
	if recovered != created {
		t.Fatalf("recovery produced a different address: %s vs %s", created, recovered)
	}
}

func TestDerivationIsDeterministic(t *testing.T) {
	a := New("")
	b := New("")
	if err := a.Import(testMnemonic, "x"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if err := b.Import(testMnemonic, "y"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	addrA, _ := a.Address()
	addrB, _ := b.Address()
	if addrA != addrB {
		t.Fatalf("same mnemonic derived different addresses: %s vs %s", addrA, addrB)
	}
}

func TestTransactOptsRequireUnlock(t *testing.T) {
	w := New("")
	if _, err := w.TransactOpts(context.Background(), nil); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestResolverPrefersUnlockedWallet(t *testing.T) {
	w := New("")
	if err := w.Import(testMnemonic, "hunter2"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	walletAddr, _ := w.Address()

	node := AccountListerFunc(func(ctx context.Context) ([]models.Account, error) {
		return []models.Account{"0xnode1", "0xnode2"}, nil
	})
	r := NewResolver(w, node)

	got, err := r.ActiveAccount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != walletAddr {
		t.Fatalf("unlocked wallet must win, got %s", got)
	}

	w.Lock()
	got, err = r.ActiveAccount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0xnode1" {
		t.Fatalf("expected first node account, got %s", got)
	}
}

func TestResolverNoIdentity(t *testing.T) {
	r := NewResolver(New(""), AccountListerFunc(func(ctx context.Context) ([]models.Account, error) {
		return nil, nil
	}))
	if _, err := r.ActiveAccount(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}

	r = NewResolver(nil, nil)
	if _, err := r.ActiveAccount(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}

func TestResolverWrapsNodeFailure(t *testing.T) {
	r := NewResolver(New(""), AccountListerFunc(func(ctx context.Context) ([]models.Account, error) {
		return nil, errors.New("rpc down")
	}))
	if _, err := r.ActiveAccount(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity wrap, got %v", err)
	}
}
