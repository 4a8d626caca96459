package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/metrics"
	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"
)

const DefaultPoolSize = 10

var ErrActionNotFound = errors.New("Action wasn't found")

//asyncTask is a unit of the workers pool
type asyncTask struct {
	ctx    context.Context
	action *Action
	event  string
	data   map[string]interface{}
}

//Dispatcher keeps installed actions and runs them on thrown events
//asynchronous actions are executed by the goroutines pool
type Dispatcher struct {
	mutex   sync.RWMutex
	actions map[string]*Action

	workersPool *ants.PoolWithFunc
	wg          sync.WaitGroup
}

//NewDispatcher returns Dispatcher with workers pool of poolSize goroutines
func NewDispatcher(poolSize int) (*Dispatcher, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	dispatcher := &Dispatcher{actions: map[string]*Action{}}
	pool, err := ants.NewPoolWithFunc(poolSize, dispatcher.execute)
	if err != nil {
		return nil, fmt.Errorf("Error creating goroutines pool: %v", err)
	}
	dispatcher.workersPool = pool

	return dispatcher, nil
}

//Register validates and puts the action. An action with the same name is replaced
func (d *Dispatcher) Register(action *Action) error {
	if err := action.Validate(); err != nil {
		return err
	}

	d.mutex.Lock()
	d.actions[action.Name] = action
	d.mutex.Unlock()

	return nil
}

//Get returns the action by name
func (d *Dispatcher) Get(name string) (*Action, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	action, ok := d.actions[name]
	return action, ok
}

//Actions returns all actions sorted by name
func (d *Dispatcher) Actions() []*Action {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	result := make([]*Action, 0, len(d.actions))
	for _, action := range d.actions {
		result = append(result, action)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

//Throw runs enabled actions which listen to the event and whose conditions hold
//synchronous actions run one after another in name order, each one gets the result of the previous one
//returns the result of the last synchronous action (or data if none ran) and all action errors
func (d *Dispatcher) Throw(ctx context.Context, event string, data map[string]interface{}) (map[string]interface{}, error) {
	result, _, err := d.Dispatch(ctx, event, data)
	return result, err
}

//Dispatch is Throw which also returns the number of actions that handled the event
//(ran synchronously or were submitted to the pool)
func (d *Dispatcher) Dispatch(ctx context.Context, event string, data map[string]interface{}) (map[string]interface{}, int, error) {
	var multiErr error
	handled := 0
	result := data
	for _, action := range d.Actions() {
		if !action.IsEnabled || !action.ListensTo(event) {
			continue
		}

		if !action.Matches(result) {
			logging.Debugf("[%s] conditions don't match event [%s]", action.Name, event)
			metrics.SkippedAction(action.Name)
			continue
		}

		handled++
		if action.Async {
			if err := d.submit(ctx, action, event, result); err != nil {
				multiErr = multierror.Append(multiErr, err)
			}
			continue
		}

		output, err := d.run(ctx, action, event, result)
		if err != nil {
			multiErr = multierror.Append(multiErr, err)
			continue
		}
		result = output
	}

	return result, handled, multiErr
}

//Run runs the action by name regardless of its listens, conditions and async flag
func (d *Dispatcher) Run(ctx context.Context, name string, data map[string]interface{}) (map[string]interface{}, error) {
	action, ok := d.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}

	return d.run(ctx, action, "", data)
}

//Wait blocks until all submitted asynchronous actions are finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

//Close waits for the running asynchronous actions and releases the pool
func (d *Dispatcher) Close() error {
	d.Wait()
	d.workersPool.Release()
	return nil
}

func (d *Dispatcher) submit(ctx context.Context, action *Action, event string, data map[string]interface{}) error {
	d.wg.Add(1)
	task := &asyncTask{ctx: context.Background(), action: action, event: event, data: jsonutils.CopyMap(data)}
	if ctx != nil {
		task.ctx = detached{ctx}
	}
	if err := d.workersPool.Invoke(task); err != nil {
		d.wg.Done()
		metrics.ErrorAction(action.Name)
		if errors.Is(err, ants.ErrPoolClosed) {
			return fmt.Errorf("[%s] dispatcher is closed", action.Name)
		}
		return fmt.Errorf("[%s] error submitting async action: %v", action.Name, err)
	}

	return nil
}

//execute is the workers pool function
func (d *Dispatcher) execute(i interface{}) {
	defer d.wg.Done()

	task, ok := i.(*asyncTask)
	if !ok {
		logging.SystemErrorf("Async action task has unknown type: %T", i)
		return
	}

	//errors are logged and counted by run
	_, _ = d.run(task.ctx, task.action, task.event, task.data)
}

func (d *Dispatcher) run(ctx context.Context, action *Action, event string, data map[string]interface{}) (result map[string]interface{}, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("[%s] panic: %v", action.Name, r)
		}
		if err != nil {
			metrics.ErrorAction(action.Name)
			logging.Errorf("[%s] error running action on event [%s]: %v", action.Name, event, err)
			return
		}
		metrics.SuccessAction(action.Name)
		logging.Debugf("[%s] action finished in [%.2f] seconds", action.Name, time.Since(start).Seconds())
	}()

	result, err = action.Handler.Run(ctx, data, jsonutils.CopyMap(action.Configuration))
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", action.Name, err)
	}
	if result == nil {
		result = map[string]interface{}{}
	}

	return result, nil
}

//detached keeps the values of the request context but not its cancellation
//async actions outlive the request which has thrown the event
type detached struct {
	parent context.Context
}

func (detached) Deadline() (time.Time, bool) {
	return time.Time{}, false
}

func (detached) Done() <-chan struct{} {
	return nil
}

func (detached) Err() error {
	return nil
}

func (d detached) Value(key interface{}) interface{} {
	return d.parent.Value(key)
}
