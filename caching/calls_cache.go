package caching

import (
	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/meta"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/safego"
	"go.uber.org/atomic"
)

const callsChannelCapacity = 100000

//CallsCache keeps the last outgoing calls of every source in meta.Storage
//implements adapters.CallRecorder
type CallsCache struct {
	storage meta.Storage
	callsCh chan *gateway.CallLog
	done    chan struct{}

	closed *atomic.Bool
}

//NewCallsCache returns CallsCache and starts goroutine for async writes
func NewCallsCache(storage meta.Storage) *CallsCache {
	cc := &CallsCache{
		storage: storage,
		callsCh: make(chan *gateway.CallLog, callsChannelCapacity),
		done:    make(chan struct{}),
		closed:  atomic.NewBool(false),
	}
	cc.start()
	return cc
}

func (cc *CallsCache) start() {
	safego.RunWithRestart("calls-cache", func() {
		for {
			select {
			case <-cc.done:
				return
			case call := <-cc.callsCh:
				cc.put(call)
			}
		}
	})
}

//Record puts the call into the channel (skips if the channel is full)
func (cc *CallsCache) Record(call *gateway.CallLog) {
	if call == nil || cc.closed.Load() {
		return
	}

	select {
	case cc.callsCh <- call:
	default:
		logging.Warnf("[%s] Calls cache channel is full. Call [%s] is skipped", call.SourceID, call.CallID)
	}
}

func (cc *CallsCache) put(call *gateway.CallLog) {
	sourceID := call.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	if err := cc.storage.AddCall(sourceID, call); err != nil {
		logging.SystemErrorf("[%s] Error saving call [%s] in cache: %v", sourceID, call.CallID, err)
	}
}

//GetN returns at most n last calls of the source
func (cc *CallsCache) GetN(sourceID string, n int) []*gateway.CallLog {
	calls, err := cc.storage.GetCalls(sourceID, n)
	if err != nil {
		logging.SystemErrorf("Error getting %d cached calls for [%s] source: %v", n, sourceID, err)
		return []*gateway.CallLog{}
	}

	return calls
}

func (cc *CallsCache) Close() error {
	if cc.closed.CAS(false, true) {
		close(cc.done)
	}
	return nil
}
