// Package jsonrpc adapts a chain node's JSON-RPC interface to the
// chainfeed.Blockchain contract: tip hash lookups and block-with-undo
// fetches by header hash.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/walletsync/internal/chainfeed"
	transport "github.com/gabapcia/walletsync/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletsync/internal/walletsync"
)

// ErrMalformedBlock is returned when the node's response cannot be mapped
// onto the domain block model.
var ErrMalformedBlock = errors.New("malformed block response")

// RPC method names exposed by the node.
const (
	methodGetTipHash = "chain_getTipHash"
	methodGetBlund   = "chain_getBlund"
)

// Header variant tags used on the wire.
const (
	headerTypeGenesis = "genesis"
	headerTypeMain    = "main"
)

// headerDTO is the wire form of a block header.
type headerDTO struct {
	Type       string `json:"type"`
	Hash       string `json:"hash"`
	PrevHash   string `json:"prevHash"`
	Slot       uint64 `json:"slot"`
	Difficulty uint64 `json:"difficulty"`
}

// txDTO is the wire form of a transaction.
type txDTO struct {
	Hash   string `json:"hash"`
	Inputs []struct {
		TxHash string `json:"txHash"`
		Index  uint32 `json:"index"`
	} `json:"inputs"`
	Outputs []struct {
		Address string `json:"address"`
		Amount  uint64 `json:"amount"`
	} `json:"outputs"`
}

// undoDTO is the wire form of one transaction's undo entry.
type undoDTO struct {
	SpentOutputs []struct {
		Address string `json:"address"`
		Amount  uint64 `json:"amount"`
	} `json:"spentOutputs"`
}

// blundDTO is the wire form of a block paired with its undo data.
type blundDTO struct {
	Header       headerDTO `json:"header"`
	Transactions []txDTO   `json:"transactions"`
	Undo         []undoDTO `json:"undo"`
}

// client implements chainfeed.Blockchain over a JSON-RPC transport.
type client struct {
	rpc transport.Client
}

// Compile-time assertion that *client serves the feed's chain source
// contract.
var _ chainfeed.Blockchain = (*client)(nil)

// NewClient wraps the JSON-RPC transport as a Blockchain source.
func NewClient(rpc transport.Client) *client {
	return &client{rpc: rpc}
}

// TipHash returns the node's current best block hash.
func (c *client) TipHash(ctx context.Context) (walletsync.HeaderHash, error) {
	raw, err := c.rpc.Fetch(ctx, methodGetTipHash)
	if err != nil {
		return "", err
	}

	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return "", fmt.Errorf("decoding tip hash: %w", err)
	}
	return walletsync.HeaderHash(hash), nil
}

// BlundByHash fetches a block with its undo data and maps it onto the
// domain model. A null result maps to chainfeed.ErrBlockNotFound.
func (c *client) BlundByHash(ctx context.Context, hash walletsync.HeaderHash) (walletsync.Blund, error) {
	raw, err := c.rpc.Fetch(ctx, methodGetBlund, string(hash))
	if err != nil {
		return walletsync.Blund{}, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return walletsync.Blund{}, fmt.Errorf("%w: %s", chainfeed.ErrBlockNotFound, hash)
	}

	var dto blundDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return walletsync.Blund{}, fmt.Errorf("decoding block %s: %w", hash, err)
	}

	return mapBlund(dto)
}

// mapBlund converts the wire form into the domain Blund, with exhaustive
// handling of the header variant tag.
func mapBlund(dto blundDTO) (walletsync.Blund, error) {
	var header walletsync.BlockHeader
	switch dto.Header.Type {
	case headerTypeGenesis:
		header = walletsync.GenesisHeader{
			Hash: walletsync.HeaderHash(dto.Header.Hash),
			Prev: walletsync.HeaderHash(dto.Header.PrevHash),
			Slot: walletsync.Slot(dto.Header.Slot),
		}
	case headerTypeMain:
		header = walletsync.MainHeader{
			Hash:       walletsync.HeaderHash(dto.Header.Hash),
			Prev:       walletsync.HeaderHash(dto.Header.PrevHash),
			Slot:       walletsync.Slot(dto.Header.Slot),
			Difficulty: dto.Header.Difficulty,
		}
	default:
		return walletsync.Blund{}, fmt.Errorf("%w: unknown header type %q", ErrMalformedBlock, dto.Header.Type)
	}

	// Main blocks must pair one undo entry with each transaction, including
	// the case of undo data missing entirely. Letting a short undo list
	// through would make the spends it covers invisible downstream.
	if _, ok := header.(walletsync.MainHeader); ok && len(dto.Undo) != len(dto.Transactions) {
		return walletsync.Blund{}, fmt.Errorf("%w: %d transactions but %d undo entries",
			ErrMalformedBlock, len(dto.Transactions), len(dto.Undo))
	}

	transactions := make([]walletsync.Transaction, len(dto.Transactions))
	for i, tx := range dto.Transactions {
		inputs := make([]walletsync.OutPoint, len(tx.Inputs))
		for j, in := range tx.Inputs {
			inputs[j] = walletsync.OutPoint{TxHash: in.TxHash, Index: in.Index}
		}

		outputs := make([]walletsync.TxOut, len(tx.Outputs))
		for j, out := range tx.Outputs {
			outputs[j] = walletsync.TxOut{
				Address: walletsync.Address(out.Address),
				Amount:  out.Amount,
			}
		}

		transactions[i] = walletsync.Transaction{Hash: tx.Hash, Inputs: inputs, Outputs: outputs}
	}

	undo := make(walletsync.Undo, len(dto.Undo))
	for i, u := range dto.Undo {
		spent := make([]walletsync.TxOut, len(u.SpentOutputs))
		for j, out := range u.SpentOutputs {
			spent[j] = walletsync.TxOut{
				Address: walletsync.Address(out.Address),
				Amount:  out.Amount,
			}
		}
		undo[i] = walletsync.TxUndo{SpentOutputs: spent}
	}

	return walletsync.Blund{
		Block: walletsync.Block{Header: header, Transactions: transactions},
		Undo:  undo,
	}, nil
}
