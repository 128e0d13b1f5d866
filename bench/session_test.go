package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itohio/nixietherm/pkg/board"
	"github.com/itohio/nixietherm/pkg/config"
	"github.com/itohio/nixietherm/pkg/store"
	"github.com/itohio/nixietherm/pkg/thermo"
)

func newTestSession(b board.Board) *session {
	st := store.New(store.NewMemory(256), 109, "SN2")
	return &session{
		board: b,
		ctrl:  thermo.New(b, st, thermo.Options{UpdateInterval: 5 * time.Millisecond}),
		done:  make(chan struct{}),
	}
}

func TestSessionRun_BootFailureReported(t *testing.T) {
	// Never connected: every board operation fails.
	sess := newTestSession(board.NewMock(nil))

	var failures []error
	sess.run(context.Background(), zap.NewNop(), func(err error) {
		failures = append(failures, err)
	})

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], board.ErrNotConnected)
	assert.Contains(t, failures[0].Error(), "boot failed")

	select {
	case <-sess.done:
	default:
		t.Fatal("done not closed")
	}
}

func TestSessionRun_CancelIsNotAFailure(t *testing.T) {
	m := board.NewMock(&config.MockConfig{Ambient: 75})
	require.NoError(t, m.Connect())
	sess := newTestSession(m)

	ctx, cancel := context.WithCancel(context.Background())
	failed := make(chan error, 1)
	go sess.run(ctx, zap.NewNop(), func(err error) { failed <- err })

	require.Eventually(t, func() bool { return m.DAC() != 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-sess.done

	select {
	case err := <-failed:
		t.Fatalf("unexpected failure: %v", err)
	default:
	}
}
