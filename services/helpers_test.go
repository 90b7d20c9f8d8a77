// file: services/helpers_test.go
package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-meet-stake/events"
	"go-meet-stake/models"
	"go-meet-stake/services"
	"go-meet-stake/storage/sqlite"
)

// testLedger bundles the wired-up services over an in-memory store with a
// pinned clock that tests can advance.
type testLedger struct {
	store    *sqlite.SQLiteStore
	recorder *events.Recorder
	registry *services.RegistryService
	escrow   *services.EscrowService
	booking  *services.BookingService
	now      time.Time
}

// baseTime is the pinned "wall clock" the fixtures start at.
var baseTime = time.Unix(1_700_000_000, 0)

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	recorder := events.NewRecorder(store, nil)
	var mu sync.Mutex
	registry := services.NewRegistryService(&mu, store, recorder)
	escrow := services.NewEscrowService(store)
	booking := services.NewBookingService(&mu, store, registry, escrow, recorder)

	tl := &testLedger{
		store:    store,
		recorder: recorder,
		registry: registry,
		escrow:   escrow,
		booking:  booking,
		now:      baseTime,
	}
	booking.Now = func() time.Time { return tl.now }
	return tl
}

// advance moves the pinned clock forward.
func (tl *testLedger) advance(d time.Duration) {
	tl.now = tl.now.Add(d)
}

// signup creates a funded account and registers it with the booking ledger.
func (tl *testLedger) signup(t *testing.T, address string, balance int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, tl.store.CreateAccount(ctx, &models.Account{
		Address:      address,
		PasswordHash: "x",
		Balance:      balance,
	}))
	require.NoError(t, tl.registry.Register(ctx, address))
}

// balance returns the account balance for an address.
func (tl *testLedger) balance(t *testing.T, address string) int64 {
	t.Helper()
	account, err := tl.store.GetAccount(context.Background(), address)
	require.NoError(t, err)
	return account.Balance
}
