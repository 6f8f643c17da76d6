package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"math"
	"runtime/debug"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/pkg/profile"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.uber.org/zap"

	"github.com/phanxgames/hearth"
	"github.com/phanxgames/hearth/ecs"
	"github.com/phanxgames/hearth/hotreload"
	"github.com/phanxgames/hearth/internal/config"
)

const (
	ebitenModule = "github.com/hajimehoshi/ebiten/v2"
	boxSize      = 24
	orbitRadius  = 140
	// defaultSpin is the rotation period in seconds for components without
	// a "spin" field default.
	defaultSpin = 4.0
	orbitPeriod = 20
)

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "hearth.hcl", "configuration file")
	unit := fs.String("unit", "", "unit image, overrides the config file")
	prof := fs.String("profile", "", "write a cpu or mem profile to the working directory")
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *unit != "" {
		cfg.UnitPath = *unit
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *prof)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	g := newGame(cfg, logger)
	defer func() {
		if err := g.host.Close(context.Background()); err != nil {
			logger.Error("close host", zap.Error(err))
		}
	}()

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	return ebiten.RunGame(g)
}

// game drives the host from ebiten's update loop. Every component of the
// active unit is shown as a box orbiting the window centre.
type game struct {
	cfg     config.Config
	logger  *zap.Logger
	host    *hotreload.Host
	world   donburi.World
	watcher *hotreload.Watcher

	root   *hearth.Transform
	orbit  *hearth.TweenGroup
	spins  []spinner
	pixel  *ebiten.Image
	status string

	loaded        bool
	loggedBackend bool
}

func newGame(cfg config.Config, logger *zap.Logger) *game {
	world := donburi.NewWorld()
	g := &game{
		cfg:     cfg,
		logger:  logger,
		world:   world,
		watcher: hotreload.NewWatcher(cfg.UnitPath),
		root:    hearth.NewTransform(),
		pixel:   ebiten.NewImage(1, 1),
		status:  "waiting for " + cfg.UnitPath,
	}
	g.pixel.Fill(color.White)
	g.host = hotreload.NewHost(hotreload.NewWazeroLoader(nil),
		hotreload.WithLogger(logger.Named("host")),
		hotreload.WithEventSink(ecs.NewDonburiSink(world)),
		hotreload.WithUnloadAttempts(cfg.Reload.UnloadAttempts),
		hotreload.WithUnloadInterval(cfg.Reload.UnloadInterval))

	g.root.SetPosition(hearth.Vec2{X: float64(cfg.Window.Width) / 2, Y: float64(cfg.Window.Height) / 2})
	ecs.ReloadEventType.Subscribe(world, g.onReload)
	return g
}

func (g *game) Update() error {
	if !g.loggedBackend {
		logBackend(g.logger)
		g.loggedBackend = true
	}

	if err := g.poll(); err != nil {
		return err
	}
	events.ProcessAllEvents(g.world)

	dt := float32(1 / float64(ebiten.TPS()))
	if g.orbit == nil || g.orbit.Done {
		g.orbit = fullTurn(g.root, orbitPeriod)
	}
	g.orbit.Update(dt)
	for i := range g.spins {
		g.spins[i].update(dt)
	}
	return nil
}

// poll reloads the unit when its file changes. Only leaks end the game;
// anything else is logged and the previous state is kept.
func (g *game) poll() error {
	if g.loaded && !g.cfg.Reload.Watch {
		return nil
	}
	changed, err := g.watcher.Changed()
	if err != nil {
		g.logger.Warn("watch unit", zap.String("path", g.watcher.Path()), zap.Error(err))
		return nil
	}
	if !changed {
		return nil
	}

	g.loaded = true
	if err := g.host.Reload(context.Background(), g.watcher.Path()); err != nil {
		if hotreload.IsFatal(err) {
			return err
		}
		g.logger.Error("reload failed", zap.Error(err))
		g.status = "reload failed: " + err.Error()
	}
	return nil
}

func (g *game) onReload(_ donburi.World, e hotreload.Event) {
	switch e.Kind {
	case hotreload.EventUnloading:
		g.spins = nil
		g.status = "unloading " + e.Unit
	case hotreload.EventLoaded:
		if e.Generation != g.host.Generation() {
			return
		}
		g.spawnAll()
		g.status = fmt.Sprintf("%s (generation %d): %d components", e.Unit, e.Generation, e.Components)
	}
}

func (g *game) spawnAll() {
	entries := g.host.Registry().All()
	for i, entry := range entries {
		e, err := ecs.Spawn(g.world, g.host, entry.Descriptor, g.root)
		if err != nil {
			g.logger.Error("spawn", zap.String("component", entry.Descriptor.Name), zap.Error(err))
			continue
		}
		t := ecs.Transform(g.world.Entry(e))
		angle := 2 * math.Pi * float64(i) / float64(len(entries))
		t.SetPosition(hearth.Vec2{X: orbitRadius * math.Cos(angle), Y: orbitRadius * math.Sin(angle)})
		t.SetScale(hearth.Vec2{X: boxSize, Y: boxSize})
		t.SetOrigin(hearth.Vec2{X: 0.5, Y: 0.5})
		g.spins = append(g.spins, newSpinner(t, spinPeriod(entry.Descriptor)))
	}
}

// spinPeriod reads the optional float "spin" field default.
func spinPeriod(d hotreload.Descriptor) float32 {
	f, ok := d.Field("spin")
	if !ok || f.Kind != hotreload.FieldFloat {
		return defaultSpin
	}
	if v, ok := f.Default.(float64); ok && v > 0 {
		return float32(v)
	}
	return defaultSpin
}

// spinner turns a transform one full revolution per period, forever.
type spinner struct {
	t      *hearth.Transform
	period float32
	tween  *hearth.TweenGroup
}

func newSpinner(t *hearth.Transform, period float32) spinner {
	s := spinner{t: t, period: period}
	s.restart()
	return s
}

func (s *spinner) restart() {
	s.tween = fullTurn(s.t, s.period)
}

func (s *spinner) update(dt float32) {
	s.tween.Update(dt)
	if s.tween.Done {
		s.restart()
	}
}

// fullTurn tweens t through one revolution over period seconds. The start
// angle is wrapped to [-π, π] first so restarts never accumulate.
func fullTurn(t *hearth.Transform, period float32) *hearth.TweenGroup {
	start := math.Remainder(t.Rotation(), 2*math.Pi)
	t.SetRotation(start)
	return hearth.TweenRotation(t, start+2*math.Pi, period, ease.Linear)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x1a, 0x1a, 0x26, 0xff})

	ecs.Each(g.world, func(entry *donburi.Entry) {
		t := ecs.Transform(entry)
		if t == nil {
			return
		}
		var op ebiten.DrawImageOptions
		op.GeoM = t.Matrix()
		op.ColorScale.ScaleWithColor(color.RGBA{0x98, 0xfb, 0x98, 0xff})
		screen.DrawImage(g.pixel, &op)
	})

	ebitenutil.DebugPrintAt(screen, g.status, 4, 4)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS: %.0f", ebiten.ActualTPS()), 4, g.cfg.Window.Height-16)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Window.Width, g.cfg.Window.Height
}

func logBackend(logger *zap.Logger) {
	var info ebiten.DebugInfo
	ebiten.ReadDebugInfo(&info)
	logger.Info("graphics backend",
		zap.Stringer("library", info.GraphicsLibrary),
		zap.String("ebiten", moduleVersion(ebitenModule)))
}

func moduleVersion(path string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range bi.Deps {
		if dep.Path == path {
			return dep.Version
		}
	}
	return "unknown"
}
