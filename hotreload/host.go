package hotreload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultUnloadAttempts bounds the release poll in Dispose.
	DefaultUnloadAttempts = 10
	// DefaultUnloadInterval is the wait between release polls.
	DefaultUnloadInterval = 10 * time.Millisecond
)

// EventKind identifies a host lifecycle event.
type EventKind uint8

const (
	EventLoaded    EventKind = iota // a unit was loaded and its components registered
	EventUnloading                  // the registry was cleared; release handles now
	EventUnloaded                   // the unit was proven released
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventUnloading:
		return "unloading"
	case EventUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Event describes a change of the active unit.
type Event struct {
	Kind       EventKind
	Unit       string
	Path       string
	Generation uint64
	Components int
}

// EventSink receives host events synchronously, on the calling goroutine.
// Sinks that hold Handles must release them on EventUnloading, or the
// unload is reported as a leak.
type EventSink interface {
	EmitEvent(event Event)
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger. Defaults to Logger().
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithEventSink adds a sink for lifecycle events.
func WithEventSink(s EventSink) Option {
	return func(h *Host) { h.sinks = append(h.sinks, s) }
}

// WithUnloadAttempts sets how many times Dispose polls for release.
func WithUnloadAttempts(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.attempts = n
		}
	}
}

// WithUnloadInterval sets the wait between release polls.
func WithUnloadInterval(d time.Duration) Option {
	return func(h *Host) {
		if d >= 0 {
			h.interval = d
		}
	}
}

// Host owns the active code unit and the descriptor registry. At most one
// unit is active; Reload always tears down the previous one first.
//
// Host is driven from the engine's main loop and is not safe for concurrent
// Reload/Dispose calls. Handles may be released from any goroutine.
type Host struct {
	loader   Loader
	registry *Registry
	logger   *zap.Logger
	sinks    []EventSink

	attempts int
	interval time.Duration
	sleep    func(time.Duration)

	unit       *unit
	generation uint64
	fatal      error
}

type unit struct {
	name       string
	path       string
	context    Context
	generation uint64
	components int
	handles    atomic.Int64
}

// released is the liveness probe. It reads only counters and the context's
// own report, so polling never extends the unit's life.
func (u *unit) released() bool {
	return u.handles.Load() == 0 && u.context.Released()
}

// NewHost creates a host that loads units through loader.
func NewHost(loader Loader, opts ...Option) *Host {
	h := &Host{
		loader:   loader,
		registry: NewRegistry(),
		attempts: DefaultUnloadAttempts,
		interval: DefaultUnloadInterval,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = Logger()
	}
	return h
}

// Registry returns the descriptor registry of the active unit.
func (h *Host) Registry() *Registry {
	return h.registry
}

// Active reports whether a unit is loaded.
func (h *Host) Active() bool {
	return h.unit != nil
}

// Generation returns the generation of the active unit, or 0. Every
// successful load gets a new generation.
func (h *Host) Generation() uint64 {
	if h.unit == nil {
		return 0
	}
	return h.unit.generation
}

// Reload replaces the active unit with the one at path.
//
// An unreadable file fails with KindIO and leaves the current unit in place.
// Otherwise the current unit is disposed first; if the new unit is then
// rejected (KindMalformed, KindDuplicateID) the host is left with no active
// unit. A fatal unload error is returned as is and poisons the host.
func (h *Host) Reload(ctx context.Context, path string) error {
	if h.fatal != nil {
		return &Error{Phase: PhaseLoad, Kind: KindPoisoned, Path: path, Detail: "host refused load after a leaked unit", Cause: h.fatal}
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return &Error{Phase: PhaseRead, Kind: KindIO, Path: path, Detail: "read unit image", Cause: err}
	}

	if err := h.Dispose(ctx); err != nil {
		return err
	}
	return h.load(ctx, path, image)
}

func (h *Host) load(ctx context.Context, path string, image []byte) error {
	name := unitName(path)

	c, err := h.loader.Load(ctx, name, image)
	if err != nil {
		return &Error{Phase: PhaseLoad, Kind: KindMalformed, Path: path, Detail: "create load context", Cause: err}
	}

	h.generation++
	u := &unit{name: name, path: path, context: c, generation: h.generation}

	descs, err := scan(ctx, c)
	if err != nil {
		scanErr := malformed(path, "scan components", err)
		if unloadErr := h.unload(ctx, u, false); unloadErr != nil {
			return errors.Join(scanErr, unloadErr)
		}
		return scanErr
	}

	for _, d := range descs {
		h.registry.set(d)
		h.logger.Info(d.Name+": "+d.ID.String(),
			zap.String("unit", name),
			zap.String("component", d.Name),
			zap.Stringer("id", d.ID))
	}
	u.components = len(descs)
	h.unit = u

	h.logger.Debug("unit loaded",
		zap.String("unit", name),
		zap.String("path", path),
		zap.Uint64("generation", u.generation),
		zap.Int("components", u.components))
	h.emit(EventLoaded, u)
	return nil
}

func scan(ctx context.Context, c Context) ([]Descriptor, error) {
	raw, err := c.Components(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeManifest(raw)
}

// Dispose unloads the active unit. It is a no-op when nothing is loaded.
//
// The registry is cleared and the host's reference dropped before the
// context is asked to unload. Dispose then polls until every Handle is
// released and the context reports itself closed, sleeping between
// attempts. If the unit is still alive after the bound, Dispose returns a
// KindLeaked error, which IsFatal reports, and the host refuses all further
// loads.
func (h *Host) Dispose(ctx context.Context) error {
	u := h.unit
	if u == nil {
		return nil
	}
	h.registry.clear()
	h.unit = nil
	h.emit(EventUnloading, u)
	return h.unload(ctx, u, true)
}

// unload tears u down and verifies release. notify is false for units that
// were rejected during load and never announced.
func (h *Host) unload(ctx context.Context, u *unit, notify bool) error {
	if err := u.context.Unload(ctx); err != nil {
		h.logger.Warn("unit reported an unload error",
			zap.String("unit", u.name),
			zap.Error(err))
	}

	for i := 0; !u.released() && i < h.attempts; i++ {
		h.sleep(h.interval)
	}

	if !u.released() {
		h.fatal = &Error{
			Phase:  PhaseUnload,
			Kind:   KindLeaked,
			Path:   u.path,
			Detail: fmt.Sprintf("unit still referenced after %d release checks", h.attempts),
		}
		h.logger.Error("unit leaked",
			zap.String("unit", u.name),
			zap.Int64("handles", u.handles.Load()),
			zap.Int("attempts", h.attempts))
		return h.fatal
	}

	h.logger.Debug("unit unloaded", zap.String("unit", u.name), zap.Uint64("generation", u.generation))
	if notify {
		h.emit(EventUnloaded, u)
	}
	return nil
}

// Close disposes the active unit and releases loader resources when the
// loader has any.
func (h *Host) Close(ctx context.Context) error {
	err := h.Dispose(ctx)
	if c, ok := h.loader.(interface{ Close(context.Context) error }); ok {
		err = errors.Join(err, c.Close(ctx))
	}
	return err
}

func (h *Host) emit(kind EventKind, u *unit) {
	e := Event{
		Kind:       kind,
		Unit:       u.name,
		Path:       u.path,
		Generation: u.generation,
		Components: u.components,
	}
	for _, s := range h.sinks {
		s.EmitEvent(e)
	}
}

// Handle keeps the active unit alive for a consumer, typically a component
// instance built from one of its descriptors. Dispose cannot prove the unit
// released while any handle is outstanding.
type Handle struct {
	unit *unit
	once sync.Once
}

// Acquire returns a handle on the active unit.
func (h *Host) Acquire() (*Handle, error) {
	if h.unit == nil {
		return nil, &Error{Kind: KindNotLoaded, Detail: "no active unit"}
	}
	h.unit.handles.Add(1)
	return &Handle{unit: h.unit}, nil
}

// Generation returns the generation of the unit the handle belongs to.
func (hd *Handle) Generation() uint64 {
	return hd.unit.generation
}

// Release gives the handle back. Extra calls are ignored.
func (hd *Handle) Release() {
	hd.once.Do(func() {
		hd.unit.handles.Add(-1)
	})
}

// unitName derives the context name from the image file name.
func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
