package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"fleetgear/internal/api"
	"fleetgear/internal/component"
	"fleetgear/internal/fanout"
	"fleetgear/internal/inventory"
	"fleetgear/internal/job"
	"fleetgear/internal/locks"
	"fleetgear/internal/remote"
	"fleetgear/pkg/logging"
)

// Plugin resolves components by name at call time.
type Plugin interface {
	Component(name string) (*component.Component, bool)
}

// Locker serializes runs per environment. *locks.EnvironmentLocker implements it.
type Locker interface {
	WithLock(ctx context.Context, environment, holder string, force bool, fn func() error) error
}

// Options tune a single state change.
type Options struct {
	// Force skips waiting for the environment lock. Runs may then overlap
	// with whichever run holds the lock; this is an operator override.
	Force bool

	// Progress, when set, receives every status entry of the job in the
	// order it was recorded. It runs on its own goroutine and has returned
	// by the time ChangeServiceState returns. A slow callback slows the run
	// down; no entry is dropped.
	Progress func(api.StatusEntry)
}

// Config holds the collaborators of the orchestrator.
type Config struct {
	Locker   Locker          // defaults to a new locks.EnvironmentLocker
	FanOut   *fanout.Executor // defaults to unbounded concurrency
	Remote   remote.Executor  // defaults to remote.NoopExecutor
	Registry *job.Registry    // defaults to a new registry
	Clock    clock.Clock      // defaults to the wall clock
}

// ServiceStateChangedEvent is published when a state change job finishes.
type ServiceStateChangedEvent struct {
	Component   string
	Service     string
	Environment string
	State       string
	JobID       string
	JobState    api.JobState
	Error       error
	Timestamp   int64
}

// Orchestrator changes the state of component services across the nodes
// of an environment.
type Orchestrator struct {
	locker   Locker
	fanOut   *fanout.Executor
	remote   remote.Executor
	registry *job.Registry
	clock    clock.Clock
	accepted set.Strings

	mu                     sync.RWMutex
	stateChangeSubscribers []chan<- ServiceStateChangedEvent
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		locker:   cfg.Locker,
		fanOut:   cfg.FanOut,
		remote:   cfg.Remote,
		registry: cfg.Registry,
		clock:    cfg.Clock,
		accepted: set.NewStrings(api.ServiceStates...),
	}
	if o.locker == nil {
		o.locker = locks.NewEnvironmentLocker()
	}
	if o.fanOut == nil {
		o.fanOut = fanout.New(0)
	}
	if o.remote == nil {
		o.remote = remote.NoopExecutor{}
	}
	if o.registry == nil {
		o.registry = job.NewRegistry(0)
	}
	if o.clock == nil {
		o.clock = clock.WallClock
	}
	return o
}

// Registry returns the registry holding the tickets of recent runs.
func (o *Orchestrator) Registry() *job.Registry {
	return o.registry
}

// ParseServiceID splits "<component>.<service>". Both parts must be
// non-empty and the service part may not contain further dots, so
// "web.app.x" is rejected instead of being read as web.app.
func ParseServiceID(id string) (string, string, error) {
	componentName, serviceName, found := strings.Cut(id, ".")
	if !found || componentName == "" || serviceName == "" || strings.Contains(serviceName, ".") {
		return "", "", &api.InvalidDynamicServiceError{Input: id, Component: componentName, Service: serviceName}
	}
	return componentName, serviceName, nil
}

// ChangeServiceState sets the state of service serviceID ("component.service")
// on every node of the service's group in environment, then runs the
// service recipe on those nodes.
//
// A malformed serviceID is returned as an *api.InvalidDynamicServiceError
// before any job exists or lock is taken. Every later problem is captured in
// the returned ticket, which has reached Success or Failure by the time
// ChangeServiceState returns.
//
// States other than start, stop and restart are applied with a warning.
func (o *Orchestrator) ChangeServiceState(ctx context.Context, serviceID string, plugin Plugin, environment, state string, opts Options) (*job.Ticket, error) {
	componentName, serviceName, err := ParseServiceID(serviceID)
	if err != nil {
		return nil, err
	}

	j := job.New(api.JobTypeDynamicServiceStateChange, job.WithClock(o.clock))
	defer func() {
		if j.Alive() {
			j.Terminate()
		}
	}()
	o.registry.Add(j.Ticket())

	var progressDone chan struct{}
	if opts.Progress != nil {
		progressDone = make(chan struct{})
		entries := j.Follow()
		go func() {
			defer close(progressDone)
			for entry := range entries {
				opts.Progress(entry)
			}
		}()
	}

	if !o.accepted.Contains(state) {
		msg := fmt.Sprintf("Component's service state is being changed to %s, which is not one of %v", state, api.ServiceStates)
		logging.Warn("Orchestrator", "%s", msg)
		j.Warn(msg)
	}

	err = o.locker.WithLock(ctx, environment, j.ID(), opts.Force, func() error {
		return o.changeState(ctx, j, plugin, componentName, serviceName, environment, state)
	})
	if err != nil {
		logging.Error("Orchestrator", err, "Changing %s to %s in %s failed (job %s)", serviceID, state, environment, j.ID())
		j.ReportFailure(err)
	} else {
		logging.Info("Orchestrator", "Changed %s to %s in %s (job %s)", serviceID, state, environment, j.ID())
		j.ReportSuccess()
	}

	j.Terminate()
	if progressDone != nil {
		<-progressDone
	}

	o.publishStateChangeEvent(componentName, serviceName, environment, state, j)
	return j.Ticket(), nil
}

// changeState runs under the environment lock. Panics from collaborators
// are turned into errors so they end up in the ticket.
func (o *Orchestrator) changeState(ctx context.Context, j *job.Job, plugin Plugin, componentName, serviceName, environment, state string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while changing %s.%s: %v", componentName, serviceName, r)
		}
	}()

	comp, ok := plugin.Component(componentName)
	if !ok {
		return api.NewComponentNotFoundError(componentName)
	}
	service, ok := comp.Service(serviceName)
	if !ok {
		return api.NewServiceNotFoundError(componentName, serviceName)
	}
	group, ok := comp.Group(service.Group())
	if !ok {
		return api.NewGroupNotFoundError(componentName, service.Group())
	}
	nodes, err := group.Nodes(ctx, environment)
	if err != nil {
		return errors.Annotatef(err, "resolving nodes of group %s", group.Name())
	}

	j.ReportRunning(fmt.Sprintf("preparing to change the %s service to %s", serviceName, state))
	logging.Info("Orchestrator", "Changing %s.%s to %s on %d nodes in %s: %v",
		componentName, serviceName, state, len(nodes), environment, inventory.NodeNames(nodes))

	if err := o.fanOut.Run(ctx, nodes, fanout.SetAttribute(j, service.Attribute(), state)); err != nil {
		return errors.Annotatef(err, "setting %s", service.Attribute())
	}

	if err := o.remote.BulkTrigger(ctx, j, nodes, service.Recipe()); err != nil {
		return errors.Annotatef(err, "running recipe %s", service.Recipe())
	}
	return nil
}

// InvokeCommand runs a component command. Each step is a state change; the
// tickets of the steps that ran are returned. The first failed step stops
// the command and its error is returned.
func (o *Orchestrator) InvokeCommand(ctx context.Context, plugin Plugin, componentName, commandName, environment string, opts Options) ([]*job.Ticket, error) {
	comp, ok := plugin.Component(componentName)
	if !ok {
		return nil, api.NewComponentNotFoundError(componentName)
	}

	var tickets []*job.Ticket
	err := comp.Invoke(ctx, commandName, func(ctx context.Context, c *component.Component, step component.CommandStep) error {
		ticket, err := o.ChangeServiceState(ctx, c.Name()+"."+step.Service, plugin, environment, step.State, opts)
		if err != nil {
			return err
		}
		tickets = append(tickets, ticket)
		if ticket.State() == api.JobFailure {
			return ticket.Err()
		}
		return nil
	})
	return tickets, err
}

// SubscribeToStateChanges returns a channel receiving an event for every
// finished state change.
func (o *Orchestrator) SubscribeToStateChanges() <-chan ServiceStateChangedEvent {
	eventChan := make(chan ServiceStateChangedEvent, 100)
	o.mu.Lock()
	o.stateChangeSubscribers = append(o.stateChangeSubscribers, eventChan)
	o.mu.Unlock()
	return eventChan
}

func (o *Orchestrator) publishStateChangeEvent(componentName, serviceName, environment, state string, j *job.Job) {
	event := ServiceStateChangedEvent{
		Component:   componentName,
		Service:     serviceName,
		Environment: environment,
		State:       state,
		JobID:       j.ID(),
		JobState:    j.State(),
		Error:       j.Err(),
		Timestamp:   o.clock.Now().Unix(),
	}

	o.mu.RLock()
	subscribers := make([]chan<- ServiceStateChangedEvent, len(o.stateChangeSubscribers))
	copy(subscribers, o.stateChangeSubscribers)
	o.mu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			logging.Debug("Orchestrator", "Subscriber blocked, skipping event for %s.%s", componentName, serviceName)
		}
	}
}
