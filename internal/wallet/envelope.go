package wallet

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	saltSize        = 16
	filePrefix      = "BDWALLET1\n"
)

var (
	ErrAuthFailed      = errors.New("wallet passphrase authentication failed")
	ErrInvalidEnvelope = errors.New("wallet envelope is invalid")
)

type envelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

func sealMnemonic(passphrase, mnemonic string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := deriveEnvelopeKey(passphrase, salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	env := envelope{
		Version:     envelopeVersion,
		KDF:         "argon2id",
		KDFTime:     2,
		KDFMemoryKB: 64 * 1024,
		KDFThreads:  1,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, []byte(mnemonic), nil),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(filePrefix), raw...), nil
}

func openMnemonic(passphrase string, data []byte) (string, error) {
	if !strings.HasPrefix(string(data), filePrefix) {
		return "", ErrInvalidEnvelope
	}
	var env envelope
	if err := json.Unmarshal(data[len(filePrefix):], &env); err != nil {
		return "", ErrInvalidEnvelope
	}
	if env.Version != envelopeVersion || env.KDF != "argon2id" {
		return "", ErrInvalidEnvelope
	}
	// The AEAD panics on a wrong-sized nonce, so a tampered file must be
	// rejected before it reaches Open.
	if len(env.Salt) != saltSize || len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return "", ErrInvalidEnvelope
	}
	key := deriveEnvelopeKey(passphrase, env.Salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return "", ErrAuthFailed
	}
	return string(plaintext), nil
}

func deriveEnvelopeKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 2, 64*1024, 1, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
