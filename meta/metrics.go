package meta

import (
	"strings"

	"github.com/gomodule/redigo/redis"
)

//ErrorMetrics maps Redis errors to metric error types
type ErrorMetrics struct {
	metricFunc func(string)
}

func NewErrorMetrics(metricFunc func(string)) *ErrorMetrics {
	return &ErrorMetrics{metricFunc: metricFunc}
}

func (em *ErrorMetrics) NoticeError(err error) {
	if err == nil {
		return
	}

	switch {
	case err == redis.ErrPoolExhausted:
		em.metricFunc("ERR_POOL_EXHAUSTED")
	case err == redis.ErrNil:
		em.metricFunc("ERR_NIL")
	case strings.Contains(strings.ToLower(err.Error()), "timeout"):
		em.metricFunc("ERR_TIMEOUT")
	default:
		em.metricFunc("UNKNOWN")
	}
}
