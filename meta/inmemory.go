package meta

import (
	"context"
	"sync"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
)

//InMemory is a Storage for a single instance deployment and tests
type InMemory struct {
	mutex            sync.RWMutex
	callsLimit       int
	synchronizations map[string]gateway.Synchronization
	calls            map[string][]*gateway.CallLog

	locksMutex sync.Mutex
	locks      map[string]chan struct{}
}

func NewInMemory(callsLimit int) *InMemory {
	if callsLimit <= 0 {
		callsLimit = defaultCallsLimit
	}
	return &InMemory{
		callsLimit:       callsLimit,
		synchronizations: map[string]gateway.Synchronization{},
		calls:            map[string][]*gateway.CallLog{},
		locks:            map[string]chan struct{}{},
	}
}

//GetSynchronization returns nil if the synchronization doesn't exist
func (im *InMemory) GetSynchronization(key string) (*gateway.Synchronization, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	sync, ok := im.synchronizations[key]
	if !ok {
		return nil, nil
	}
	return &sync, nil
}

func (im *InMemory) SaveSynchronization(key string, sync *gateway.Synchronization) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	im.synchronizations[key] = *sync
	return nil
}

//AddCall keeps only the last callsLimit calls per source
func (im *InMemory) AddCall(sourceID string, call *gateway.CallLog) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	calls := append([]*gateway.CallLog{call}, im.calls[sourceID]...)
	if len(calls) > im.callsLimit {
		calls = calls[:im.callsLimit]
	}
	im.calls[sourceID] = calls
	return nil
}

//GetCalls returns the last calls (newest first)
func (im *InMemory) GetCalls(sourceID string, limit int) ([]*gateway.CallLog, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	calls := im.calls[sourceID]
	if limit > 0 && len(calls) > limit {
		calls = calls[:limit]
	}

	result := make([]*gateway.CallLog, len(calls))
	copy(result, calls)
	return result, nil
}

//Lock blocks until the name is unlocked or ctx is done
func (im *InMemory) Lock(ctx context.Context, name string) (func(), error) {
	for {
		im.locksMutex.Lock()
		held, ok := im.locks[name]
		if !ok {
			released := make(chan struct{})
			im.locks[name] = released
			im.locksMutex.Unlock()

			return func() {
				im.locksMutex.Lock()
				delete(im.locks, name)
				im.locksMutex.Unlock()
				close(released)
			}, nil
		}
		im.locksMutex.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (im *InMemory) Type() string {
	return InMemoryType
}

func (im *InMemory) Close() error {
	return nil
}
