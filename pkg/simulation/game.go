package simulation

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/dla"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/proto"
)

var (
	backgroundColor = color.RGBA{R: 10, G: 10, B: 20, A: 255}
	gridColor       = color.RGBA{R: 60, G: 90, B: 60, A: 120}
	extentColor     = color.RGBA{R: 90, G: 160, B: 90, A: 200}
	worldColor      = color.RGBA{R: 70, G: 70, B: 110, A: 160}
	activeColor     = color.RGBA{R: 230, G: 230, B: 120, A: 180}
)

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *WorldSnapshot
	lastState  *WorldSnapshot
	logger     log.Logger

	// UI Controls
	panel *ui.UIPanel

	// Widget references for easy access
	widgetParticleRadius *ui.Slider
	widgetMutateAmount   *ui.Slider
	widgetWorldRatio     *ui.Slider
	widgetViewRatio      *ui.Slider
	widgetSpawnSpread    *ui.Slider
	widgetBounceJitter   *ui.Slider
	widgetActiveTarget   *ui.Slider
	widgetCellCount      *ui.Slider
	widgetTicksPerFrame  *ui.Slider
	widgetExact          *ui.Checkbox
	widgetShowGrid       *ui.Checkbox
	widgetShowActive     *ui.Checkbox
	widgetPaused         *ui.Checkbox

	cfg           *Config
	tunablesDirty bool

	// Timing instrumentation
	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // Rolling average in ms
	drawAvg            float64 // Rolling average in ms
}

// GetNewGame spawns the world actor in system and builds the control panel.
func GetNewGame(ctx context.Context, cfg *Config, system actor.ActorSystem, logger log.Logger) (*Game, error) {
	// 1. Create Channels for communication
	snapshotCh := make(chan *WorldSnapshot, 2) // Buffer to avoid blocking

	// 2. Spawn World Actor
	// The world owns its own copy of the config; the game keeps cfg for the panel.
	worldCfg := *cfg
	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(snapshotCh, &worldCfg, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &WorldSnapshot{DisplayRadius: cfg.InitialDisplayRadius}, // Avoid nil pointer
		logger:     logger,
		cfg:        cfg,
	}
	g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() {
	cfg := g.cfg
	panel := ui.NewUIPanel(10, 10, 240, float64(cfg.WindowHeight)-20)
	panel.Title = "Infinite DLA"
	dirty := func(float64) { g.tunablesDirty = true }

	panel.AddSection("Particles")
	g.widgetParticleRadius = panel.AddSlider("Particle Radius", 0.002, cfg.MarginMin/2, cfg.ParticleRadius)
	g.widgetMutateAmount = panel.AddSlider("Color Mutation", 0, 0.5, cfg.MutateAmount)
	g.widgetActiveTarget = panel.AddSlider("Active Particles", 1, 2000, float64(cfg.ActiveTarget))
	g.widgetActiveTarget.Step = 1
	panel.EndSection()

	panel.AddSection("Motion & Growth")
	g.widgetSpawnSpread = panel.AddSlider("Spawn Spread", 0, 1.5, cfg.SpawnSpread)
	g.widgetBounceJitter = panel.AddSlider("Bounce Jitter", 0, 1.5, cfg.BounceJitter)
	g.widgetWorldRatio = panel.AddSlider("World/Aggregate", 1.1, 4, cfg.WorldAggregateRatio)
	g.widgetViewRatio = panel.AddSlider("View/Aggregate", 0.5, 3, cfg.ViewAggregateRatio)
	panel.EndSection()

	panel.AddSection("Spatial Index")
	g.widgetCellCount = panel.AddSlider("Cells per Axis", 1, 128, float64(cfg.CellCount))
	g.widgetCellCount.Step = 1
	g.widgetExact = panel.AddCheckbox("Exact Neighbor Search", cfg.ExactNeighbors)
	panel.EndSection()

	for _, s := range []*ui.Slider{
		g.widgetParticleRadius, g.widgetMutateAmount, g.widgetActiveTarget, g.widgetSpawnSpread,
		g.widgetBounceJitter, g.widgetWorldRatio, g.widgetViewRatio, g.widgetCellCount,
	} {
		s.OnChange = dirty
	}
	g.widgetExact.OnChange = func(bool) { g.tunablesDirty = true }

	panel.AddSection("Visualization")
	g.widgetShowGrid = panel.AddCheckbox("Show Grid", cfg.ShowGrid)
	g.widgetShowActive = panel.AddCheckbox("Show Active Particles", cfg.ShowActive)
	g.widgetTicksPerFrame = panel.AddSlider("Ticks per Frame", 0, 100, float64(cfg.TicksPerFrame))
	g.widgetTicksPerFrame.Step = 1
	panel.EndSection()

	panel.AddSection("Run")
	g.widgetPaused = panel.AddCheckbox("Paused (space)", false)
	g.widgetPaused.OnChange = func(v bool) { g.tell(NewPause(v)) }
	panel.AddButton("Restart (R)", func() { g.tell(NewRestart()) })
	panel.EndSection()

	g.panel = panel
}

// tunables reads the panel into a copy of the configured simulation tunables.
func (g *Game) tunables() dla.Config {
	c := g.cfg.Config
	c.ParticleRadius = g.widgetParticleRadius.Value
	c.MutateAmount = g.widgetMutateAmount.Value
	c.ActiveTarget = int(g.widgetActiveTarget.Value)
	c.SpawnSpread = g.widgetSpawnSpread.Value
	c.BounceJitter = g.widgetBounceJitter.Value
	c.WorldAggregateRatio = g.widgetWorldRatio.Value
	c.ViewAggregateRatio = g.widgetViewRatio.Value
	c.CellCount = int(g.widgetCellCount.Value)
	c.ExactNeighbors = g.widgetExact.Value
	return c
}

func (g *Game) tell(msg proto.Message) {
	if err := actor.Tell(g.ctx, g.worldPID, msg); err != nil {
		g.logger.Errorf("failed to message the world: %v", err)
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	// 1. Update UI Panel and keyboard shortcuts
	g.panel.Update()
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.widgetPaused.Value = !g.widgetPaused.Value
		g.tell(NewPause(g.widgetPaused.Value))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.tell(NewRestart())
	}

	// 2. Push tunables at most once per frame
	if g.tunablesDirty {
		g.tunablesDirty = false
		msg, err := NewTunables(g.tunables())
		if err != nil {
			return err
		}
		g.tell(msg)
	}

	// 3. Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	// 4. Trigger the next frame of simulation
	g.tell(NewFrame(int(g.widgetTicksPerFrame.Value)))
	return nil
}

func (g *Game) camera() Camera {
	return Camera{Width: g.cfg.WindowWidth, Height: g.cfg.WindowHeight, DisplayRadius: g.lastState.DisplayRadius}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundColor)
	cam := g.camera()
	state := g.lastState

	// 1. World circle and index grid
	ox, oy := cam.Project(geometry.Vector2D{})
	vector.StrokeCircle(screen, ox, oy, float32(state.WorldRadius*cam.Scale()), 1, worldColor, true)
	if g.widgetShowGrid.Value {
		g.drawGrid(screen, cam)
	}

	// 2. Aggregate, as branches growing from parent to child
	width := cam.LineWidth(g.cfg.ParticleRadius)
	for _, b := range state.Branches {
		f := growth(state.Ticks, b.Tick, g.cfg.GrowTicks)
		if f <= 0 {
			continue
		}
		x0, y0 := cam.Project(b.From)
		x1, y1 := cam.Project(b.From.Lerp(b.To, f))
		vector.StrokeLine(screen, x0, y0, x1, y1, width, b.Color, true)
	}
	// the seed has no branch
	vector.FillCircle(screen, ox, oy, width/2+0.5, g.cfg.SeedColor, true)

	// 3. Walkers
	if g.widgetShowActive.Value {
		for _, p := range state.Active {
			x, y := cam.Project(p)
			vector.FillRect(screen, x-1, y-1, 2, 2, activeColor, false)
		}
	}

	// 4. Draw UI Panel
	g.panel.Draw(screen)

	// Display run and performance stats on the right side
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms\n\nTicks:    %d\nFrozen:   %d\nActive:   %d\nWorld r:  %.3f\nView r:   %.3f\nCells:    %d\nRebuilds: %d",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg,
		state.Ticks,
		len(state.Frozen),
		len(state.Active),
		state.WorldRadius,
		state.DisplayRadius,
		state.CellCount,
		state.Rebuilds)
	if state.Paused {
		msg += "\n\nPAUSED"
	}
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.WindowWidth-150, 10)
}

// drawGrid outlines the index rectangle and its cells.
func (g *Game) drawGrid(screen *ebiten.Image, cam Camera) {
	box := g.lastState.Extent
	n := g.lastState.CellCount
	if n <= 0 || box.Max.X <= box.Min.X || box.Max.Y <= box.Min.Y {
		return
	}
	// screen y points down: Min maps to the bottom left corner
	x0, y1 := cam.Project(geometry.Vector2D{X: box.Min.X, Y: box.Min.Y})
	x1, y0 := cam.Project(geometry.Vector2D{X: box.Max.X, Y: box.Max.Y})
	for i := 1; i < n; i++ {
		f := float32(i) / float32(n)
		x := x0 + (x1-x0)*f
		y := y0 + (y1-y0)*f
		vector.StrokeLine(screen, x, y0, x, y1, 1, gridColor, false)
		vector.StrokeLine(screen, x0, y, x1, y, 1, gridColor, false)
	}
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, extentColor, false)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.WindowWidth, g.cfg.WindowHeight }
