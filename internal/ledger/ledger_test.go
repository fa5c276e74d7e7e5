package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvoice/pkg/domain"
)

func TestJournalRecordsTransfersInOrder(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryLedger()

	require.NoError(t, l.Transfer(ctx, 500, "ST2TEST", "ST1TEST"))
	require.NoError(t, l.Transfer(ctx, 800, "ST3TEST", "ST1TEST"))

	journal := l.Journal()
	require.Len(t, journal, 2)
	assert.Equal(t, Transfer{Amount: 500, From: "ST2TEST", To: "ST1TEST"}, journal[0])
	assert.Equal(t, Transfer{Amount: 800, From: "ST3TEST", To: "ST1TEST"}, journal[1])
}

func TestJournalReturnsACopy(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryLedger()
	require.NoError(t, l.Transfer(ctx, 100, "ST2TEST", "ST1TEST"))

	journal := l.Journal()
	journal[0].Amount = 999

	assert.Equal(t, uint64(100), l.Journal()[0].Amount)
}

func TestZeroAmountTransferIsJournaled(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryLedger()
	require.NoError(t, l.Transfer(ctx, 0, domain.Principal("ST2TEST"), domain.Principal("ST1TEST")))
	assert.Len(t, l.Journal(), 1)
}
