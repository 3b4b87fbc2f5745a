// Package file implements the walletsync key store over an on-disk JSON
// file of sealed key seeds. Each entry is encrypted with NaCl secretbox
// under a key derived from the store passphrase with argon2id and a
// per-entry salt, so no key material ever rests on disk in the clear.
package file

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrSealBroken is returned when an entry cannot be opened, typically
// because the passphrase is wrong or the file was tampered with.
var ErrSealBroken = errors.New("sealed key cannot be opened")

// argon2id parameters for the passphrase KDF.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	kdfKeyLen  = 32

	saltLen  = 16
	nonceLen = 24
)

// SealedKey is one encrypted key seed as stored on disk.
type SealedKey struct {
	Salt   string `json:"salt"`
	Nonce  string `json:"nonce"`
	Sealed string `json:"sealed"`
}

// storeFile is the on-disk layout.
type storeFile struct {
	Wallets map[walletsync.WalletID]SealedKey `json:"wallets"`
}

// Store resolves wallet secret keys from the loaded file.
type Store struct {
	mu         sync.RWMutex
	passphrase []byte
	wallets    map[walletsync.WalletID]SealedKey
}

// Compile-time assertion that *Store implements walletsync.KeyStore.
var _ walletsync.KeyStore = (*Store)(nil)

// New loads the key store file at path. A missing file yields an empty
// store; every lookup then returns walletsync.ErrKeyNotFound.
func New(path, passphrase string) (*Store, error) {
	store := &Store{
		passphrase: []byte(passphrase),
		wallets:    make(map[walletsync.WalletID]SealedKey),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("reading key store file: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing key store file: %w", err)
	}
	if file.Wallets != nil {
		store.wallets = file.Wallets
	}

	return store, nil
}

// SecretKeyByID opens the wallet's sealed seed and returns it wrapped in a
// redaction-safe SecretKey.
func (s *Store) SecretKeyByID(ctx context.Context, wallet walletsync.WalletID) (walletsync.SecretKey, error) {
	s.mu.RLock()
	entry, ok := s.wallets[wallet]
	s.mu.RUnlock()
	if !ok {
		return walletsync.SecretKey{}, fmt.Errorf("%w: %s", walletsync.ErrKeyNotFound, wallet)
	}

	salt, err := base64.StdEncoding.DecodeString(entry.Salt)
	if err != nil {
		return walletsync.SecretKey{}, fmt.Errorf("decoding salt for %s: %w", wallet, err)
	}
	nonceBytes, err := base64.StdEncoding.DecodeString(entry.Nonce)
	if err != nil || len(nonceBytes) != nonceLen {
		return walletsync.SecretKey{}, fmt.Errorf("decoding nonce for %s: %w", wallet, errors.Join(err, ErrSealBroken))
	}
	sealed, err := base64.StdEncoding.DecodeString(entry.Sealed)
	if err != nil {
		return walletsync.SecretKey{}, fmt.Errorf("decoding sealed key for %s: %w", wallet, err)
	}

	var (
		key   [kdfKeyLen]byte
		nonce [nonceLen]byte
	)
	copy(key[:], argon2.IDKey(s.passphrase, salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen))
	copy(nonce[:], nonceBytes)

	seed, ok := secretbox.Open(nil, sealed, &nonce, &key)
	if !ok {
		return walletsync.SecretKey{}, fmt.Errorf("%s: %w", wallet, ErrSealBroken)
	}

	return walletsync.NewSecretKey(seed), nil
}

// Seal encrypts a key seed for storage, using fresh salt and nonce from
// rand. It is the provisioning-side counterpart of SecretKeyByID.
func Seal(passphrase string, seed []byte, rand func([]byte) error) (SealedKey, error) {
	var (
		salt  = make([]byte, saltLen)
		nonce [nonceLen]byte
		key   [kdfKeyLen]byte
	)
	if err := rand(salt); err != nil {
		return SealedKey{}, err
	}
	if err := rand(nonce[:]); err != nil {
		return SealedKey{}, err
	}

	copy(key[:], argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen))
	sealed := secretbox.Seal(nil, seed, &nonce, &key)

	return SealedKey{
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Nonce:  base64.StdEncoding.EncodeToString(nonce[:]),
		Sealed: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// Put adds a sealed entry to the in-memory store. It does not write the
// file back; provisioning tooling owns the file lifecycle.
func (s *Store) Put(wallet walletsync.WalletID, entry SealedKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[wallet] = entry
}
