package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/profiler"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/Carmen-Shannon/wisp-go/engine/window"
)

// tickHandler pairs a registered per-tick callback with the id handed back to
// the caller for later removal.
type tickHandler struct {
	id uint64
	fn func(deltaTime float32)
}

// engine implements the Engine interface.
// Coordinates the tick loop, the active scene's flush, and the window thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration

	handlerMu sync.RWMutex
	handlers  []tickHandler
	nextID    atomic.Uint64

	sceneMu     sync.RWMutex
	activeScene scene.Scene

	logger common.Logger
}

// Engine is the heartbeat every animated entity hangs off. It runs a
// fixed-rate tick loop that computes the frame delta, dispatches registered
// handlers in registration order, and flushes the active scene's world
// matrices so a renderer sees a consistent snapshot.
type Engine interface {
	// Window returns the underlying window, or nil for headless engines.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second. If the
	// engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// AddTickHandler registers a function called every engine tick with the
	// delta time in seconds. Handlers run sequentially in registration order
	// on the engine goroutine.
	//
	// Parameters:
	//   - fn: the per-tick callback
	//
	// Returns:
	//   - uint64: the handler id, used to remove the handler later
	AddTickHandler(fn func(deltaTime float32)) uint64

	// RemoveTickHandler deregisters a previously added tick handler. Removing
	// an unknown id is a no-op. Safe to call from inside a tick handler.
	//
	// Parameters:
	//   - id: the handler id returned by AddTickHandler
	RemoveTickHandler(id uint64)

	// SetScene sets the scene whose world matrices are flushed after the tick
	// handlers run.
	//
	// Parameters:
	//   - s: the scene to drive, or nil to detach
	SetScene(s scene.Scene)

	// Scene retrieves the active scene.
	//
	// Returns:
	//   - scene.Scene: the active scene, or nil
	Scene() scene.Scene

	// Run starts the engine loop and blocks until Quit is called or the
	// window closes.
	//
	// Returns:
	//   - error: an error if the engine is already running
	Run() error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, window, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		logger:          common.NewLogger("engine"),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}

	e.handle()

	if e.window != nil {
		// GLFW event polling must stay on the goroutine that created the
		// window, so the message pump runs here rather than in a worker.
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}

	e.wg.Wait()
	e.running.Store(false)
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the tick and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleTicks()
	go e.handleQuit()
}

// handleTicks runs the fixed-rate tick loop in its own goroutine. Fires the
// registered handlers at the configured tick rate and listens for dynamic rate
// changes via tickRateChannel. Recovers from panics to avoid crashing the
// process and signals quit on recovery. Exits when the quit channel is closed.
func (e *engine) handleTicks() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("tick goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.dispatchTick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// dispatchTick runs every registered handler in registration order, then
// flushes the active scene so node transforms mutated by the handlers land in
// this frame's draw snapshot. The handler list is copied before dispatch so a
// handler may add or remove handlers without deadlocking.
func (e *engine) dispatchTick(dt float32) {
	e.handlerMu.RLock()
	handlers := make([]tickHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.handlerMu.RUnlock()

	for _, h := range handlers {
		h.fn(dt)
	}

	e.sceneMu.RLock()
	active := e.activeScene
	e.sceneMu.RUnlock()
	if active != nil && active.Active() {
		active.Update()
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running.Load() {
		// Non-blocking send - if the channel holds a pending update, replace it
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) AddTickHandler(fn func(deltaTime float32)) uint64 {
	id := e.nextID.Add(1)
	e.handlerMu.Lock()
	e.handlers = append(e.handlers, tickHandler{id: id, fn: fn})
	e.handlerMu.Unlock()
	return id
}

func (e *engine) RemoveTickHandler(id uint64) {
	e.handlerMu.Lock()
	defer e.handlerMu.Unlock()
	for i, h := range e.handlers {
		if h.id == id {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			return
		}
	}
}

func (e *engine) SetScene(s scene.Scene) {
	e.sceneMu.Lock()
	e.activeScene = s
	e.sceneMu.Unlock()
}

func (e *engine) Scene() scene.Scene {
	e.sceneMu.RLock()
	defer e.sceneMu.RUnlock()
	return e.activeScene
}
