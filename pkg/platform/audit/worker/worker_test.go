package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "raffle/pkg/domain"
	audit "raffle/pkg/platform/audit"
	"raffle/pkg/platform/audit/store/memory"
)

func TestWorker_DrainsUntilInboxClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	for range 3 {
		inbox <- audit.Event{RaffleID: id.RaffleID(7), Action: string(audit.EventRaffleEntered)}
	}
	close(inbox)

	err := NewWorker(store, inbox, nil).Run(context.Background())
	require.NoError(t, err)

	events, err := store.ListByRaffle(context.Background(), id.RaffleID(7))
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewWorker(memory.NewInMemoryStore(), make(chan audit.Event), nil).Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
