package particle

// TickDispatcher is the slice of the engine loop the particle systems depend
// on: registration of per-frame callbacks carrying the elapsed time since the
// previous tick. Systems keep registration symmetric — every Start or Play
// that adds a handler is matched by a later Stop or Pause that removes it, so
// an idle system costs nothing per frame.
type TickDispatcher interface {
	// AddTickHandler registers fn to run once per tick.
	//
	// Parameters:
	//   - fn: callback receiving the elapsed time since the previous tick, in seconds
	//
	// Returns:
	//   - uint64: a registration id for later removal
	AddTickHandler(fn func(deltaTime float32)) uint64

	// RemoveTickHandler removes a previously registered handler. Unknown ids
	// are ignored.
	//
	// Parameters:
	//   - id: the registration id returned by AddTickHandler
	RemoveTickHandler(id uint64)
}
