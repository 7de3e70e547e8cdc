package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/dla"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/rng"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WorldActor owns the simulation. Every tick, restart and tunable change
// goes through its mailbox, so the simulation itself never needs a lock.
type WorldActor struct {
	sim    *dla.Simulation
	cfg    *Config
	paused bool

	// Communication with UI
	snapshotCh chan<- *WorldSnapshot

	// --- Benchmark Stats ---
	ticksCount  int
	frozenCount int
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit. A zero cfg.Seed picks a time
// based seed.
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, cfg *Config, logger log.Logger) *WorldActor {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &WorldActor{
		sim:         dla.New(cfg.Config, rng.New(seed), dla.WithLogger(logger)),
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is seeding the aggregate (%d cells, radius %v)...",
		w.cfg.CellCount, w.cfg.ParticleRadius)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")

	// The main simulation step, driven by the game loop
	case *wrapperspb.UInt32Value:
		w.frame(int(msg.GetValue()))
		w.logBenchmarks(ctx.Logger())
		w.pushSnapshot()

	case *wrapperspb.BoolValue:
		w.setPaused(msg.GetValue())
		ctx.Logger().Infof("World paused: %v", w.paused)

	case *emptypb.Empty:
		w.restart()
		ctx.Logger().Info("World restarted.")

	case *structpb.Struct:
		if err := w.applyTunables(msg); err != nil {
			ctx.Logger().Warnf("Rejected tunables: %v", err)
		}

	default:
		ctx.Unhandled()
	}
}

// frame runs up to n ticks (none while paused) and eases the camera once.
func (w *WorldActor) frame(n int) {
	if !w.paused {
		before := w.sim.Index().Len()
		for range n {
			w.sim.Tick()
		}
		w.ticksCount += n
		w.frozenCount += w.sim.Index().Len() - before
	}
	w.sim.UpdateCamera()
}

func (w *WorldActor) setPaused(paused bool) {
	w.paused = paused
}

func (w *WorldActor) restart() {
	w.sim.Restart()
}

func (w *WorldActor) applyTunables(msg *structpb.Struct) error {
	cfg, err := decodeTunables(msg, w.sim.Config())
	if err != nil {
		return err
	}
	if err := ValidateTunables(cfg); err != nil {
		return err
	}
	w.sim.SetConfig(cfg)
	w.cfg.Config = cfg
	return nil
}

func (w *WorldActor) logBenchmarks(logger log.Logger) {
	if time.Since(w.lastLogTime) >= time.Second {
		logger.Infof("📊 TICK RATE: %d/sec | Frozen: +%d (%d total) | Active: %d | Rebuilds: %d",
			w.ticksCount, w.frozenCount, w.sim.Index().Len(), len(w.sim.Active()), w.sim.Index().Rebuilds())
		w.ticksCount = 0
		w.frozenCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	select {
	case w.snapshotCh <- takeSnapshot(w.sim, w.paused):
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks...", w.sim.Ticks())
	return nil
}
