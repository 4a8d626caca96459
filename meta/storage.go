package meta

import (
	"context"
	"io"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/spf13/viper"
)

const (
	InMemoryType = "InMemory"
	RedisType    = "Redis"

	defaultCallsLimit = 100
)

//Storage keeps synchronizations and the last outgoing calls of every source
type Storage interface {
	io.Closer

	//synchronizations
	GetSynchronization(key string) (*gateway.Synchronization, error)
	SaveSynchronization(key string, sync *gateway.Synchronization) error

	//outgoing calls
	AddCall(sourceID string, call *gateway.CallLog) error
	GetCalls(sourceID string, limit int) ([]*gateway.CallLog, error)

	//Lock locks the name until the returned unlock func is called
	Lock(ctx context.Context, name string) (func(), error)

	Type() string
}

//SynchronizationKey returns unique key of the object synchronization with the source
func SynchronizationKey(objectID, sourceID, entityID string) string {
	return "object#" + objectID + ":source#" + sourceID + ":entity#" + entityID
}

//NewStorage returns Redis storage if meta.redis.host is configured, in-memory otherwise
func NewStorage(meta *viper.Viper) (Storage, error) {
	callsLimit := defaultCallsLimit
	if meta != nil && meta.IsSet("calls_limit") {
		callsLimit = meta.GetInt("calls_limit")
	}

	if meta == nil || meta.GetString("redis.host") == "" {
		logging.Info("Meta storage isn't configured. In-memory meta storage is used")
		return NewInMemory(callsLimit), nil
	}

	factory := NewRedisPoolFactory(meta.GetString("redis.host"), meta.GetInt("redis.port"), meta.GetString("redis.password"),
		meta.GetBool("redis.tls_skip_verify"), meta.GetString("redis.sentinel_master_name"))
	if defaultPort, ok := factory.CheckAndSetDefaultPort(); ok {
		logging.Infof("meta.redis.port isn't configured. Will be used default: %d", defaultPort)
	}

	return NewRedis(factory, callsLimit)
}
