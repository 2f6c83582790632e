package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls []string
}

type fakeServer struct {
	r   *recorder
	err error
}

func (f fakeServer) Stop(context.Context) error {
	f.r.calls = append(f.r.calls, "server")
	return f.err
}

type fakeRooms struct{ r *recorder }

func (f fakeRooms) Shutdown(context.Context) error {
	f.r.calls = append(f.r.calls, "rooms")
	return errors.New("deadline exceeded")
}

type fakeStopper struct {
	r    *recorder
	name string
}

func (f fakeStopper) Stop() { f.r.calls = append(f.r.calls, f.name) }

type fakeJournal struct{ r *recorder }

func (f fakeJournal) Close() error {
	f.r.calls = append(f.r.calls, "journal")
	return nil
}

type fakeLedger struct{ r *recorder }

func (f fakeLedger) Close() { f.r.calls = append(f.r.calls, "ledger") }

func TestGracefulShutdown_Order(t *testing.T) {
	r := &recorder{}

	GracefulShutdown(context.Background(), ShutdownComponents{
		Server:    fakeServer{r: r, err: errors.New("forced")},
		Scheduler: fakeStopper{r: r, name: "scheduler"},
		Rooms:     fakeRooms{r: r},
		Pool:      fakeStopper{r: r, name: "pool"},
		Journal:   fakeJournal{r: r},
		Ledger:    fakeLedger{r: r},
	})

	// errors are logged and the sequence continues
	assert.Equal(t, []string{"server", "scheduler", "rooms", "pool", "journal", "ledger"}, r.calls)
}

func TestGracefulShutdown_SkipsNil(t *testing.T) {
	r := &recorder{}

	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), ShutdownComponents{
			Pool:   fakeStopper{r: r, name: "pool"},
			Ledger: fakeLedger{r: r},
		})
	})
	assert.Equal(t, []string{"pool", "ledger"}, r.calls)
}
