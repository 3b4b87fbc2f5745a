package walletsync

import (
	"context"
	"errors"

	"github.com/gabapcia/walletsync/internal/pkg/types"
)

// ErrWalletNotTracked is returned by WalletSyncTip when the store holds no
// record at all for the wallet.
var ErrWalletNotTracked = errors.New("wallet is not tracked")

// ErrKeyNotFound is returned by SecretKeyByID when no secret key is stored
// for the wallet.
var ErrKeyNotFound = errors.New("no secret key for wallet")

// SyncTip records which chain tip a wallet's stored view currently reflects.
//
// Synced is false for a wallet that is registered but has never been
// synchronized; such a wallet is skipped until a tip is recorded for it.
type SyncTip struct {
	Synced bool
	Tip    HeaderHash
}

// WalletStore persists per-wallet sync state and the wallet-derived view.
type WalletStore interface {
	// WalletIDs lists every tracked wallet.
	WalletIDs(ctx context.Context) ([]WalletID, error)

	// WalletSyncTip returns the wallet's recorded sync tip. It returns
	// ErrWalletNotTracked when the store has no record for the wallet.
	WalletSyncTip(ctx context.Context, wallet WalletID) (SyncTip, error)

	// UsedAddresses returns the set of addresses already known to be used.
	UsedAddresses(ctx context.Context) (types.Set[Address], error)

	// ApplyModifier applies the delta to the wallet's stored view and
	// advances the wallet's recorded sync tip to newTip.
	ApplyModifier(ctx context.Context, wallet WalletID, newTip HeaderHash, mod Modifier) error

	// RollbackModifier reverses the delta against the wallet's stored view
	// and retreats the wallet's recorded sync tip to newTip.
	RollbackModifier(ctx context.Context, wallet WalletID, newTip HeaderHash, mod Modifier) error
}

// SecretKey carries a wallet's decryption key material. Its printable forms
// are masked so key bytes can never leak through logs or failure reports;
// only Bytes exposes the raw material.
type SecretKey struct {
	material []byte
}

// NewSecretKey wraps raw key material.
func NewSecretKey(material []byte) SecretKey {
	return SecretKey{material: material}
}

// Bytes returns the raw key material.
func (k SecretKey) Bytes() []byte { return k.material }

// String implements fmt.Stringer and always masks the material.
func (k SecretKey) String() string { return "SecretKey(REDACTED)" }

// MarshalText masks the material in any text-based encoding.
func (k SecretKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// KeyStore resolves the decryption key of a tracked wallet.
type KeyStore interface {
	// SecretKeyByID returns the wallet's secret key, or ErrKeyNotFound if
	// the wallet is unknown to the key store.
	SecretKeyByID(ctx context.Context, wallet WalletID) (SecretKey, error)
}
