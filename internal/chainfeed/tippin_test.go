package chainfeed

import (
	"testing"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTipPin_GetTip(t *testing.T) {
	t.Run("fails before any tip is pinned", func(t *testing.T) {
		pin := NewTipPin()

		_, err := pin.GetTip(t.Context())

		assert.ErrorIs(t, err, ErrNoPinnedTip)
	})

	t.Run("returns the most recently pinned tip", func(t *testing.T) {
		pin := NewTipPin()

		pin.pin("h1")
		tip, err := pin.GetTip(t.Context())
		require.NoError(t, err)
		assert.Equal(t, walletsync.HeaderHash("h1"), tip)

		pin.pin("h2")
		tip, err = pin.GetTip(t.Context())
		require.NoError(t, err)
		assert.Equal(t, walletsync.HeaderHash("h2"), tip)
	})
}
