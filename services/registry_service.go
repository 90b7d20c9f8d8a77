// File: services/registry_service.go
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-meet-stake/events"
	"go-meet-stake/logger"
	"go-meet-stake/models"
	"go-meet-stake/storage"
)

// RegistryServiceInterface gatekeeps every other ledger operation: only
// registered identities may book, and (by default) be booked.
type RegistryServiceInterface interface {
	Register(ctx context.Context, identity string) error
	IsRegistered(ctx context.Context, identity string) (bool, error)
}

// RegistryService tracks which identities have registered. Registration is a
// one-way transition; there is no unregister operation.
type RegistryService struct {
	ledger   *sync.Mutex // shared with the booking service: one sequential ledger
	store    storage.Store
	recorder *events.Recorder
	now      func() time.Time
}

// NewRegistryService creates a RegistryService sharing the given ledger lock.
func NewRegistryService(ledger *sync.Mutex, store storage.Store, recorder *events.Recorder) *RegistryService {
	return &RegistryService{
		ledger:   ledger,
		store:    store,
		recorder: recorder,
		now:      time.Now,
	}
}

// Register marks the identity as registered and emits UserRegistered.
func (s *RegistryService) Register(ctx context.Context, identity string) error {
	s.ledger.Lock()
	defer s.ledger.Unlock()

	err := s.store.RegisterUser(ctx, identity, s.now().Unix())
	if errors.Is(err, storage.ErrDuplicate) {
		logger.Warn.Printf("[RegistryService.Register] %s attempted to register twice", identity)
		return ErrAlreadyRegistered
	}
	if err != nil {
		return err
	}

	logger.Info.Printf("[RegistryService.Register] user %s registered", identity)
	s.recorder.Record(ctx, models.Event{
		Type:      models.EventUserRegistered,
		MeetingID: models.NoMeeting,
		Actor:     identity,
	})
	return nil
}

// IsRegistered reports whether the identity has registered.
func (s *RegistryService) IsRegistered(ctx context.Context, identity string) (bool, error) {
	return s.store.IsRegistered(ctx, identity)
}
