package walletsync

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMisalignedUndo is returned when a main block's undo data does not pair
// one entry with each transaction. Substituting empty undo entries would
// silently drop every spend in the block, so misaligned blunds are rejected
// outright.
var ErrMisalignedUndo = errors.New("block undo data is not aligned with its transactions")

// HeaderHash identifies a block by the hash of its header.
type HeaderHash string

// Address is a payment address as it appears in transaction outputs.
type Address string

// WalletID is the opaque identifier of a tracked wallet.
type WalletID string

// Slot is an absolute slot number counted from the system start.
type Slot uint64

// BlockHeader is the sealed sum over the two header variants the chain
// produces. Only MainHeader carries transactions, a difficulty, and a
// slot that maps to a wall-clock timestamp; GenesisHeader opens an epoch
// and contributes nothing to wallet state.
type BlockHeader interface {
	HeaderHash() HeaderHash
	PrevHash() HeaderHash
	HeaderSlot() Slot

	// sealed restricts implementations to this package so every
	// extraction and timestamp-mapping site can switch exhaustively.
	sealed()
}

// GenesisHeader is the epoch-boundary header variant.
type GenesisHeader struct {
	Hash HeaderHash
	Prev HeaderHash
	Slot Slot
}

func (h GenesisHeader) HeaderHash() HeaderHash { return h.Hash }
func (h GenesisHeader) PrevHash() HeaderHash   { return h.Prev }
func (h GenesisHeader) HeaderSlot() Slot       { return h.Slot }
func (h GenesisHeader) sealed()                {}

// MainHeader is the regular block header variant.
type MainHeader struct {
	Hash       HeaderHash
	Prev       HeaderHash
	Slot       Slot
	Difficulty uint64
}

func (h MainHeader) HeaderHash() HeaderHash { return h.Hash }
func (h MainHeader) PrevHash() HeaderHash   { return h.Prev }
func (h MainHeader) HeaderSlot() Slot       { return h.Slot }
func (h MainHeader) sealed()                {}

// Compile-time check that both variants satisfy the sealed interface.
var (
	_ BlockHeader = GenesisHeader{}
	_ BlockHeader = MainHeader{}
)

// OutPoint references a previous transaction output being spent.
type OutPoint struct {
	TxHash string
	Index  uint32
}

// TxOut is a transaction output: an address receiving an amount.
type TxOut struct {
	Address Address
	Amount  uint64
}

// Transaction is a chain transaction as stored in a block.
type Transaction struct {
	Hash    string
	Inputs  []OutPoint
	Outputs []TxOut
}

// TxUndo holds the rollback information for one transaction: the previous
// outputs its inputs consumed, resolved to address and amount, index-aligned
// with the transaction's input list.
type TxUndo struct {
	SpentOutputs []TxOut
}

// Undo is the per-transaction rollback information for a whole block,
// index-aligned with the block's transaction list.
type Undo []TxUndo

// Block pairs a header with the transactions it carries. Genesis blocks
// carry none.
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
}

// Blund is a block paired with its undo data. Undo data exists only for
// main blocks; for genesis blocks it is nil.
type Blund struct {
	Block Block
	Undo  Undo
}

// Triple is the unit of work handed to the transaction tracker: a
// transaction, its undo entry, and the header of the block containing it.
type Triple struct {
	Tx     Transaction
	Undo   TxUndo
	Header BlockHeader
}

// OldestFirst is a chain-linked block window ordered oldest to newest,
// as delivered on apply.
type OldestFirst []Blund

// NewestFirst is a chain-linked block window ordered newest to oldest,
// as delivered on rollback.
type NewestFirst []Blund

// blockTriples flattens a single blund into its ordered triple list.
// Genesis blocks contribute zero triples. A main blund whose undo list does
// not pair one entry with each transaction fails with ErrMisalignedUndo.
func blockTriples(b Blund) ([]Triple, error) {
	switch h := b.Block.Header.(type) {
	case GenesisHeader:
		return nil, nil
	case MainHeader:
		if len(b.Undo) != len(b.Block.Transactions) {
			return nil, fmt.Errorf("%w: block %s has %d transactions but %d undo entries",
				ErrMisalignedUndo, h.Hash, len(b.Block.Transactions), len(b.Undo))
		}

		triples := make([]Triple, 0, len(b.Block.Transactions))
		for i, tx := range b.Block.Transactions {
			triples = append(triples, Triple{Tx: tx, Undo: b.Undo[i], Header: h})
		}
		return triples, nil
	default:
		return nil, nil
	}
}

// flattenApply turns an apply window into one transaction stream,
// preserving block order (oldest first) and intra-block transaction order.
func flattenApply(window OldestFirst) ([]Triple, error) {
	var triples []Triple
	for _, blund := range window {
		blockStream, err := blockTriples(blund)
		if err != nil {
			return nil, err
		}
		triples = append(triples, blockStream...)
	}
	return triples, nil
}

// flattenRollback turns a rollback window into one transaction stream.
// Block order stays newest first, but each block's triples are reversed:
// undo must be applied to transactions in reverse of their original
// application order.
func flattenRollback(window NewestFirst) ([]Triple, error) {
	var triples []Triple
	for _, blund := range window {
		blockStream, err := blockTriples(blund)
		if err != nil {
			return nil, err
		}
		slices.Reverse(blockStream)
		triples = append(triples, blockStream...)
	}
	return triples, nil
}

// newTip returns the chain tip a wallet advances to after applying the
// window: the hash of the window's newest block.
func (w OldestFirst) newTip() HeaderHash {
	return w[len(w)-1].Block.Header.HeaderHash()
}

// retreatTip returns the chain tip a wallet retreats to after rolling the
// window back: the previous-block hash of the window's oldest block.
func (w NewestFirst) retreatTip() HeaderHash {
	return w[len(w)-1].Block.Header.PrevHash()
}
