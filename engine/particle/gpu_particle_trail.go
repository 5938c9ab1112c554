package particle

// Envelope sentinels for the trailing playback loop. Trail-in runs the shader
// in window mode (max_time 2.0) so particles are born one phase at a time
// over a single life; steady state collapses everything to the cycling pair.
// A hard stop parks endTime below any reachable clock value so the next tick
// finalizes immediately.
const (
	trailStartEnd    float32 = 2.0
	trailSteadyEnd   float32 = 1.0
	trailHardStopEnd float32 = -1.0
)

// GpuParticleTrail is a shader-animated system with staged playback: Start
// ramps particles in one at a time in phase order, steady state cycles them
// continuously, and a soft Stop lets every in-flight particle finish its
// current traversal before the system winds down on its own. The envelope is
// driven entirely by the three clock uniforms, so the trailing behavior costs
// nothing over the base system.
type GpuParticleTrail interface {
	GpuParticleSystem

	// Starting reports whether the trail-in ramp is still underway.
	//
	// Returns:
	//   - bool: true from Start until the first full life has elapsed
	Starting() bool

	// Stopping reports whether a stop is draining in-flight particles.
	//
	// Returns:
	//   - bool: true from Stop until the wind-down finalizes
	Stopping() bool
}

var _ GpuParticleTrail = &gpuParticleTrail{}

// gpuParticleTrail is the implementation of the GpuParticleTrail interface.
type gpuParticleTrail struct {
	*gpuParticleSystem

	// endTime is the clock value the playback loop reacts to: steady wrap,
	// start-to-steady transition, or stop finalization.
	endTime   float32
	decrement float32
	starting  bool
	stopping  bool
}

// NewGpuParticleTrail creates a trailing shader-animated particle system from
// the configuration with all specified options applied.
//
// Parameters:
//   - cfg: the construction schema; Boxes is required
//   - options: optional SystemBuilderOption functions
//
// Returns:
//   - GpuParticleTrail: a new GpuParticleTrail instance
//   - error: an error if the configuration is invalid or the primitive cannot be built
func NewGpuParticleTrail(cfg Config, options ...SystemBuilderOption) (GpuParticleTrail, error) {
	base, err := newGpuParticleSystem(cfg, options...)
	if err != nil {
		return nil, err
	}
	t := &gpuParticleTrail{gpuParticleSystem: base}
	// route dispatcher ticks through the trail's envelope loop
	base.tick = t.onRender
	base.node.SetName("gpu-particle-trail")
	return t, nil
}

func (t *gpuParticleTrail) Starting() bool {
	return t.starting
}

func (t *gpuParticleTrail) Stopping() bool {
	return t.stopping
}

// Start arms the trail-in envelope: the clock opens at 1.0 under window mode
// so the particle at phase offset p is born when the clock reaches 1+p.
// Calling Start during a wind-down cancels the stop and ramps back in from
// empty.
func (t *gpuParticleTrail) Start() {
	if t.destroyed || (t.active && !t.stopping) {
		return
	}
	t.active = true
	t.starting = true
	t.stopping = false
	t.time = trailSteadyEnd
	t.maxTime = trailStartEnd
	t.endTime = trailStartEnd
	t.decrement = trailStartEnd
	t.stopTime = stopTimeNever
	t.setupShaders()
	t.register()
}

// Stop begins the wind-down. A soft stop freezes rebirth at the current clock
// value: each particle finishes the traversal it is in and goes dark when its
// next one would begin, so the system empties over at most one life before
// finalizing. A hard stop finalizes on the next tick.
//
// Parameters:
//   - hard: true to stop on the next tick, false to drain in-flight particles
func (t *gpuParticleTrail) Stop(hard bool) {
	if t.destroyed || !t.active || t.stopping {
		return
	}
	t.stopping = true
	t.starting = false
	if hard {
		t.endTime = trailHardStopEnd
		return
	}
	// the suppression predicate works identically under trail-in's window
	// mode and steady cycling, so no mode check is needed here
	t.endTime = t.time + 1.0
	t.stopTime = t.time
	t.stageClock()
}

// onRender advances the clock and reacts when it crosses the envelope edge:
// finalize a stop, collapse trail-in to steady cycling, or wrap. The loop
// resolves arbitrarily large deltas in one call.
func (t *gpuParticleTrail) onRender(dt float32) {
	if t.destroyed || !t.active || t.life <= 0 {
		return
	}
	t.time += dt / t.life
	for t.time >= t.endTime {
		if t.stopping {
			t.finalize()
			return
		}
		if t.starting {
			t.starting = false
			t.endTime = trailSteadyEnd
			t.decrement = trailSteadyEnd
			t.maxTime = trailSteadyEnd
			continue
		}
		t.time -= t.decrement
	}
	t.stageClock()
}

// finalize parks the clock on the dead pair and releases the tick handler.
func (t *gpuParticleTrail) finalize() {
	t.active = false
	t.starting = false
	t.stopping = false
	t.time = deadTime
	t.maxTime = deadMaxTime
	t.stopTime = stopTimeNever
	t.stageClock()
	t.deregister()
}
