package txtracker

import (
	"time"

	"github.com/gabapcia/walletsync/internal/walletsync"
)

// TxEntry is one balance-affecting transaction in a wallet's index.
// Difficulty and Timestamp are nil when the containing header carries
// neither (genesis headers never reach the tracker, but the tracker does
// not rely on that).
type TxEntry struct {
	TxHash     string                 `msgpack:"tx_hash"`
	Block      walletsync.HeaderHash  `msgpack:"block"`
	Difficulty *uint64                `msgpack:"difficulty"`
	Timestamp  *time.Time             `msgpack:"timestamp"`
	Received   uint64                 `msgpack:"received"`
	Spent      uint64                 `msgpack:"spent"`
}

// BalanceChange is the net effect of the entry on the wallet's balance.
func (e TxEntry) BalanceChange() int64 {
	return int64(e.Received) - int64(e.Spent)
}

// Delta is the concrete Modifier this tracker produces: the
// balance-affecting transaction entries found in a triple stream, plus the
// wallet-owned addresses those transactions mark as used.
//
// The same Delta shape serves apply and rollback: the wallet store adds its
// entries on apply and removes them on rollback.
type Delta struct {
	Entries       []TxEntry
	UsedAddresses []walletsync.Address
}

// BalanceChange is the net effect of the whole delta on the wallet balance.
func (d *Delta) BalanceChange() int64 {
	var total int64
	for _, entry := range d.Entries {
		total += entry.BalanceChange()
	}
	return total
}
