package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kode4food/caravan/topic"
	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/internal/client"
	"github.com/wayfare-app/onboard/internal/config"
	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
	"github.com/wayfare-app/onboard/pkg/log"
)

type (
	// Engine is the onboarding flow engine. It owns every wizard session
	// for the process: step catalog, cursor, validation, the submission
	// orchestrator, and the swipe accumulator
	Engine struct {
		sessionExec *Executor
		accounts    client.AccountClient
		feed        client.FeedClient
		locator     client.Locator
		creds       CredentialStore
		navigator   Navigator
		config      *config.Config
		ctx         context.Context
		cancel      context.CancelFunc
		consumer    EventConsumer
		newTimer    TimerConstructor
		wg          sync.WaitGroup
		sessions    sync.Map // map[api.SessionID]*sessionActor
	}

	// Dependencies bundles the external collaborators handed to New
	Dependencies struct {
		Accounts  client.AccountClient
		Feed      client.FeedClient
		Locator   client.Locator
		Creds     CredentialStore
		Navigator Navigator
	}

	// CredentialStore receives the durable outcomes of a verified session
	CredentialStore interface {
		SetCredentials(context.Context, *api.VerifyResponse) error
		SetUserLocation(context.Context, *api.LocationPreference) error
	}

	// Navigator is the external navigation collaborator. The engine calls
	// it when the wizard hands control back to the app shell
	Navigator interface {
		Back(api.SessionID)
		OpenSignIn(api.SessionID)
		CompleteOnboarding(api.SessionID)
	}

	// EventConsumer consumes events from the event hub
	EventConsumer = topic.Consumer[*timebox.Event]

	// Executor manages session state persistence and event sourcing
	Executor = timebox.Executor[*api.SessionState]

	// Aggregator aggregates session state from events
	Aggregator = timebox.Aggregator[*api.SessionState]
)

var (
	ErrShutdownTimeout  = errors.New("shutdown timeout exceeded")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionEnded     = errors.New("session already ended")
	ErrFlowChosen       = errors.New("flow kind already chosen")
	ErrInvalidFlowKind  = errors.New("invalid flow kind")
	ErrStepNotFound     = errors.New("no step at cursor")
	ErrWrongStep        = errors.New("operation not valid for current step")
	ErrNotMultiSelect   = errors.New("step is not multi-selection")
	ErrCannotAdvance    = errors.New("current step is incomplete")
	ErrCooldownActive   = errors.New("resend cooldown still active")
	ErrSubmitInFlight   = errors.New("submission already in flight")
	ErrUnknownDirection = errors.New("unknown swipe direction")
)

// New creates the flow engine with the given session store, event hub,
// collaborators, and configuration
func New(
	store *timebox.Store, hub timebox.EventHub, deps Dependencies,
	cfg *config.Config,
) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		sessionExec: timebox.NewExecutor(
			store, events.NewSessionState, events.SessionAppliers,
		),
		accounts:  deps.Accounts,
		feed:      deps.Feed,
		locator:   deps.Locator,
		creds:     deps.Creds,
		navigator: deps.Navigator,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		consumer:  hub.NewConsumer(),
		newTimer:  NewTimer,
	}
}

// WithTimers overrides the engine's timer source. Tests install manual
// timers so delayed transitions are driven deterministically instead of
// waiting on the wall clock
func (e *Engine) WithTimers(newTimer TimerConstructor) *Engine {
	e.newTimer = newTimer
	return e
}

// Start begins routing session events to their actors
func (e *Engine) Start() {
	slog.Info("Flow engine starting")
	go e.eventLoop()
}

// Stop gracefully shuts down the engine
func (e *Engine) Stop() error {
	e.cancel()
	defer e.consumer.Close()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Flow engine stopped")
		return nil
	case <-time.After(e.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// StartSession begins a new wizard run. The flow starts as the singleton
// type-select sequence until the user declares a type
func (e *Engine) StartSession(ctx context.Context) (api.SessionID, error) {
	id := api.SessionID(uuid.NewString())
	err := e.raiseSessionEvent(ctx, id, api.EventTypeSessionStarted,
		api.SessionStartedEvent{
			SessionID: id,
			Flow:      InitialFlow(),
		})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetSession retrieves the current state of a session by its ID
func (e *Engine) GetSession(
	ctx context.Context, id api.SessionID,
) (*api.SessionState, error) {
	st, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	if st.ID == "" {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

func (e *Engine) eventLoop() {
	for {
		select {
		case <-e.ctx.Done():
			return

		case event, ok := <-e.consumer.Receive():
			if !ok {
				return
			}
			e.routeEvent(event)
		}
	}
}

func (e *Engine) routeEvent(event *timebox.Event) {
	if !events.IsSessionEvent(event) {
		return
	}

	id := api.SessionID(event.AggregateID[1])

	actor, loaded := e.sessions.Load(id)
	if !loaded {
		sa := newSessionActor(e, id)
		actor, loaded = e.sessions.LoadOrStore(id, sa)
		if !loaded {
			e.wg.Add(1)
			go sa.run()
		}
	}

	actor.(*sessionActor).events <- event
}

// actorFor returns the session's actor, creating it when the session has
// not produced a routed event yet
func (e *Engine) actorFor(id api.SessionID) *sessionActor {
	if actor, ok := e.sessions.Load(id); ok {
		return actor.(*sessionActor)
	}
	sa := newSessionActor(e, id)
	actor, loaded := e.sessions.LoadOrStore(id, sa)
	if !loaded {
		e.wg.Add(1)
		go sa.run()
	}
	return actor.(*sessionActor)
}

func (e *Engine) execSession(
	ctx context.Context, id api.SessionID,
	cmd timebox.Command[*api.SessionState],
) (*api.SessionState, error) {
	return e.sessionExec.Exec(ctx, events.SessionKey(id), cmd)
}

func (e *Engine) raiseSessionEvent(
	ctx context.Context, id api.SessionID, eventType api.EventType, data any,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			return events.Raise(ag, eventType, data)
		},
	)
	return err
}

// requireActive loads the session inside a command and rejects operations
// against ended or unknown sessions
func requireActive(st *api.SessionState) error {
	if st.ID == "" {
		return ErrSessionNotFound
	}
	if sessionTransitions.IsTerminal(st.Status) {
		return ErrSessionEnded
	}
	return nil
}

// requireTransition rejects a status change the transition table does not
// permit; ending an ended session is the case this guards
func requireTransition(st *api.SessionState, to api.SessionStatus) error {
	if st.ID == "" {
		return ErrSessionNotFound
	}
	if !sessionTransitions.CanTransition(st.Status, to) {
		return ErrSessionEnded
	}
	return nil
}

func (e *Engine) logStale(id api.SessionID, what string) {
	slog.Debug("Dropping stale completion",
		log.SessionID(id),
		slog.String("operation", what))
}
