// Package txtracker computes wallet-state deltas from ordered transaction
// streams. A transaction affects a wallet when any of its outputs pays a
// wallet-owned address or any of its inputs spends one, where ownership is
// the wallet's key-derived address plus the already-used address set.
//
// TrackApplied and TrackRolledBack run the same pure computation, so the
// deltas they produce for the same triples and undo data are exact
// inverses under the wallet store's add/remove semantics.
package txtracker

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gabapcia/walletsync/internal/pkg/types"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"golang.org/x/crypto/blake2b"
)

// addressSize is the byte length of the blake2b public-key digest prefix
// used as an address.
const addressSize = 20

// ErrInvalidKeyMaterial is returned when a secret key is not a valid
// ed25519 seed.
var ErrInvalidKeyMaterial = errors.New("secret key material is not a valid ed25519 seed")

// ErrUndoMisaligned is returned when a transaction's undo entry does not
// line up with its input list, which would make rollback unsound.
var ErrUndoMisaligned = errors.New("undo data is not aligned with transaction inputs")

// WalletAddress derives the wallet's payment address from its secret key:
// the hex-encoded 20-byte blake2b-256 prefix of the ed25519 public key.
func WalletAddress(key walletsync.SecretKey) (walletsync.Address, error) {
	seed := key.Bytes()
	if len(seed) != ed25519.SeedSize {
		return "", ErrInvalidKeyMaterial
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	sum := blake2b.Sum256(pub)
	return walletsync.Address(hex.EncodeToString(sum[:addressSize])), nil
}

// tracker implements walletsync.TxTracker.
type tracker struct{}

// Compile-time assertion that *tracker implements walletsync.TxTracker.
var _ walletsync.TxTracker = (*tracker)(nil)

// New returns the transaction tracker.
func New() *tracker {
	return &tracker{}
}

// TrackApplied computes the delta of applying the triples to the wallet.
func (t *tracker) TrackApplied(ctx context.Context, key walletsync.SecretKey, used types.Set[walletsync.Address], meta walletsync.HeaderMeta, triples []walletsync.Triple) (walletsync.Modifier, error) {
	return t.track(key, used, meta, triples)
}

// TrackRolledBack computes the delta of rolling the triples back. The
// computation is identical to apply on purpose: the store interprets the
// delta in the opposite direction.
func (t *tracker) TrackRolledBack(ctx context.Context, key walletsync.SecretKey, used types.Set[walletsync.Address], meta walletsync.HeaderMeta, triples []walletsync.Triple) (walletsync.Modifier, error) {
	return t.track(key, used, meta, triples)
}

// track scans the triple stream and collects every balance-affecting
// transaction into a Delta, preserving stream order.
func (t *tracker) track(key walletsync.SecretKey, used types.Set[walletsync.Address], meta walletsync.HeaderMeta, triples []walletsync.Triple) (*Delta, error) {
	owner, err := WalletAddress(key)
	if err != nil {
		return nil, err
	}

	owned := used.Clone()
	owned.Add(owner)

	var (
		delta    = new(Delta)
		seenUsed = types.NewSet[walletsync.Address]()
	)

	for _, triple := range triples {
		if len(triple.Undo.SpentOutputs) > 0 && len(triple.Undo.SpentOutputs) != len(triple.Tx.Inputs) {
			return nil, fmt.Errorf("%w: tx %s has %d inputs but %d undo entries",
				ErrUndoMisaligned, triple.Tx.Hash, len(triple.Tx.Inputs), len(triple.Undo.SpentOutputs))
		}

		var received, spent uint64
		for _, out := range triple.Tx.Outputs {
			if owned.Contains(out.Address) {
				received += out.Amount
			}
		}
		for _, prev := range triple.Undo.SpentOutputs {
			if owned.Contains(prev.Address) {
				spent += prev.Amount
			}
		}

		if received == 0 && spent == 0 {
			continue
		}

		entry := TxEntry{
			TxHash:   triple.Tx.Hash,
			Block:    triple.Header.HeaderHash(),
			Received: received,
			Spent:    spent,
		}
		if difficulty, ok := meta.Difficulty(triple.Header); ok {
			entry.Difficulty = &difficulty
		}
		if timestamp, ok := meta.Timestamp(triple.Header); ok {
			entry.Timestamp = &timestamp
		}
		delta.Entries = append(delta.Entries, entry)

		// Outputs paying the wallet mark their addresses as used.
		for _, out := range triple.Tx.Outputs {
			if owned.Contains(out.Address) && !used.Contains(out.Address) && !seenUsed.Contains(out.Address) {
				seenUsed.Add(out.Address)
				delta.UsedAddresses = append(delta.UsedAddresses, out.Address)
			}
		}
	}

	return delta, nil
}
