package meta

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/metrics"
	"github.com/go-redsync/redsync/v4"
	rsyncpool "github.com/go-redsync/redsync/v4/redis/redigo"
	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

const (
	lockExpire     = time.Minute
	lockRetryDelay = 500 * time.Millisecond
	lockTries      = 120
)

//Redis is a Storage for multi instance deployments
type Redis struct {
	pool         *RedisPool
	redsync      *redsync.Redsync
	callsLimit   int
	errorMetrics *ErrorMetrics
}

//redis key [variables] - description
//
//** Synchronizations **
//synchronization:object#objectId:source#sourceId:entity#entityId - json of the synchronization
//
//** Outgoing calls **
//calls:source#sourceId - list of the last calls json (newest first)
//
//** Locking **
//lock:name - redsync key for locking
func NewRedis(factory *RedisPoolFactory, callsLimit int) (*Redis, error) {
	logging.Infof("🛫 Initializing redis meta storage [%s]...", factory.Details())

	pool, err := factory.Create()
	if err != nil {
		return nil, err
	}

	if callsLimit <= 0 {
		callsLimit = defaultCallsLimit
	}

	return &Redis{
		pool:         pool,
		redsync:      redsync.New(rsyncpool.NewPool(pool.GetPool())),
		callsLimit:   callsLimit,
		errorMetrics: NewErrorMetrics(metrics.MetaErrors(RedisType)),
	}, nil
}

//GetSynchronization returns nil if the synchronization doesn't exist
func (r *Redis) GetSynchronization(key string) (*gateway.Synchronization, error) {
	connection := r.pool.Get()
	defer connection.Close()

	payload, err := redis.Bytes(connection.Do("GET", "synchronization:"+key))
	if err != nil {
		if err == redis.ErrNil {
			return nil, nil
		}
		r.errorMetrics.NoticeError(err)
		return nil, err
	}

	sync := &gateway.Synchronization{}
	if err := json.Unmarshal(payload, sync); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling synchronization [%s]", key)
	}
	return sync, nil
}

func (r *Redis) SaveSynchronization(key string, sync *gateway.Synchronization) error {
	payload, err := json.Marshal(sync)
	if err != nil {
		return errors.Wrapf(err, "marshalling synchronization [%s]", key)
	}

	connection := r.pool.Get()
	defer connection.Close()

	if _, err := connection.Do("SET", "synchronization:"+key, payload); err != nil {
		r.errorMetrics.NoticeError(err)
		return err
	}
	return nil
}

//AddCall pushes the call and trims the list to callsLimit
func (r *Redis) AddCall(sourceID string, call *gateway.CallLog) error {
	payload, err := json.Marshal(call)
	if err != nil {
		return errors.Wrap(err, "marshalling call log")
	}

	key := "calls:source#" + sourceID
	connection := r.pool.Get()
	defer connection.Close()

	if _, err := connection.Do("LPUSH", key, payload); err != nil {
		r.errorMetrics.NoticeError(err)
		return err
	}
	if _, err := connection.Do("LTRIM", key, 0, r.callsLimit-1); err != nil {
		r.errorMetrics.NoticeError(err)
		return err
	}
	return nil
}

//GetCalls returns the last calls (newest first)
func (r *Redis) GetCalls(sourceID string, limit int) ([]*gateway.CallLog, error) {
	if limit <= 0 {
		limit = r.callsLimit
	}

	connection := r.pool.Get()
	defer connection.Close()

	payloads, err := redis.ByteSlices(connection.Do("LRANGE", "calls:source#"+sourceID, 0, limit-1))
	if err != nil && err != redis.ErrNil {
		r.errorMetrics.NoticeError(err)
		return nil, err
	}

	calls := make([]*gateway.CallLog, 0, len(payloads))
	for _, payload := range payloads {
		call := &gateway.CallLog{}
		if err := json.Unmarshal(payload, call); err != nil {
			logging.Errorf("Error unmarshalling call log of source [%s]: %v", sourceID, err)
			continue
		}
		calls = append(calls, call)
	}
	return calls, nil
}

//Lock locks the name with redsync
func (r *Redis) Lock(ctx context.Context, name string) (func(), error) {
	mutex := r.redsync.NewMutex("lock:"+name,
		redsync.WithExpiry(lockExpire),
		redsync.WithTries(lockTries),
		redsync.WithRetryDelay(lockRetryDelay))

	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "locking [%s]", name)
	}

	return func() {
		if _, err := mutex.Unlock(); err != nil {
			logging.SystemErrorf("Error unlocking [%s]: %v", name, err)
		}
	}, nil
}

func (r *Redis) Type() string {
	return RedisType
}

func (r *Redis) Close() error {
	return r.pool.Close()
}
