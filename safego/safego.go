package safego

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"go.uber.org/atomic"
)

const defaultRestartTimeout = 2 * time.Second

//RecoverHandler receives the name of the panicked goroutine and the recovered value
type RecoverHandler func(name string, value interface{})

//GlobalRecoverHandler overrides logging of recovered panics
var GlobalRecoverHandler RecoverHandler

//Execution is a named background goroutine which survives panics
type Execution struct {
	name string
	f    func()

	mutex          sync.RWMutex
	restartTimeout time.Duration
	restarts       *atomic.Int64
}

//Run starts f in a new goroutine. A panic is recovered and reported only
func Run(name string, f func()) *Execution {
	return start(name, f, 0)
}

//RunWithRestart starts f in a new goroutine. After a panic f is started again in 2 seconds
func RunWithRestart(name string, f func()) *Execution {
	return start(name, f, defaultRestartTimeout)
}

//RunWithRestartTimeout is RunWithRestart with a custom pause before the restart
func RunWithRestartTimeout(name string, f func(), timeout time.Duration) *Execution {
	return start(name, f, timeout)
}

func start(name string, f func(), restartTimeout time.Duration) *Execution {
	exec := &Execution{name: name, f: f, restartTimeout: restartTimeout, restarts: atomic.NewInt64(0)}
	exec.run()
	return exec
}

func (exec *Execution) run() {
	go func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			report(exec.name, r)

			if timeout := exec.RestartTimeout(); timeout > 0 {
				time.Sleep(timeout)
				exec.restarts.Inc()
				exec.run()
			}
		}()
		exec.f()
	}()
}

//WithRestartTimeout changes the pause before the next restart. Zero disables restarts
func (exec *Execution) WithRestartTimeout(timeout time.Duration) *Execution {
	exec.mutex.Lock()
	exec.restartTimeout = timeout
	exec.mutex.Unlock()
	return exec
}

//RestartTimeout returns the current pause before a restart
func (exec *Execution) RestartTimeout() time.Duration {
	exec.mutex.RLock()
	defer exec.mutex.RUnlock()
	return exec.restartTimeout
}

//Restarts returns how many times the goroutine was started again after a panic
func (exec *Execution) Restarts() int64 {
	return exec.restarts.Load()
}

func report(name string, value interface{}) {
	if GlobalRecoverHandler != nil {
		GlobalRecoverHandler(name, value)
		return
	}
	logging.SystemErrorf("[%s] goroutine panic: %v\n%s", name, value, debug.Stack())
}
