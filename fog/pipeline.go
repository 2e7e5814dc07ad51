package fog

import (
	"fmt"
	"time"

	"volumetric-fog/internal/gpu"
)

// PipelineState is the per-frame state of a Pipeline.
type PipelineState int

const (
	// PipelineInactive means the last frame touched nothing.
	PipelineInactive PipelineState = iota
	// PipelineActive means the last frame ran the fog passes.
	PipelineActive
)

func (s PipelineState) String() string {
	if s == PipelineActive {
		return "active"
	}
	return "inactive"
}

// Options are tuning values that are not part of the fog volume.
type Options struct {
	// HistoryWeight is the share of reprojected history in the output.
	HistoryWeight float32
	// DepthTolerance is the relative linear depth difference above which
	// history is rejected.
	DepthTolerance float32
	// EdgeThreshold is the relative depth difference that switches the
	// upsample from bilinear to nearest depth.
	EdgeThreshold float32
}

func DefaultOptions() Options {
	return Options{
		HistoryWeight:  0.9,
		DepthTolerance: 0.1,
		EdgeThreshold:  0.1,
	}
}

// Pass names, in execution order.
const (
	PassDownsampleDepth = "downsample depth"
	PassIntegrate       = "integrate fog"
	PassReproject       = "reproject fog"
	PassCopyDepth       = "copy depth history"
	PassCopyFog         = "copy fog history"
	PassBlur            = "blur fog"
	PassComposite       = "upsample composite"
	PassCopyColor       = "copy composition"
)

// Pipeline renders volumetric fog for one camera. It owns the history
// textures and is not safe for concurrent use.
type Pipeline struct {
	Options Options

	arena        *gpu.Arena
	history      history
	state        PipelineState
	configured   bool
	reprojection bool
	event        RenderPassEvent
}

func NewPipeline() *Pipeline {
	arena := gpu.NewArena()
	return &Pipeline{
		Options: DefaultOptions(),
		arena:   arena,
		history: history{arena: arena},
		event:   BeforeRenderingPostProcessing,
	}
}

// Setup resolves the pass ordering tag and whether reprojection runs for the
// coming frame. Turning reprojection off releases the history immediately.
func (p *Pipeline) Setup(cfg *Configuration) RenderPassEvent {
	p.configured = true
	p.event = cfg.RenderPassEvent
	if _, ok := renderPassEventNames[p.event]; !ok {
		p.event = BeforeRenderingPostProcessing
	}
	p.reprojection = cfg.Reprojection
	if !p.reprojection && p.history.state != HistoryDisabled {
		p.history.release()
	}
	return p.event
}

// Render runs the fog passes for one frame and composites the result over
// frame.Color. Nothing is returned as an error: an inactive configuration
// leaves every buffer untouched and a missing core resource skips the frame.
func (p *Pipeline) Render(frame *FrameContext, cfg *Configuration) FrameStats {
	start := time.Now()
	stats := FrameStats{History: p.history.state}

	if !cfg.IsActive() {
		p.state = PipelineInactive
		stats.Skipped = true
		stats.SkipReason = "inactive"
		return stats
	}
	if !p.configured {
		p.Setup(cfg)
	}
	if frame == nil || frame.Color == nil || frame.Depth == nil {
		return p.skip(stats, "missing colour or depth", nil)
	}
	if frame.Color.Released() || frame.Depth.Released() {
		return p.skip(stats, "colour or depth released", gpu.ErrReleased)
	}

	c := *cfg
	c.Sanitize()

	reproject := p.reprojection
	if reproject && frame.MotionVectors == nil {
		Logger().Debug("fog: reprojection disabled for frame, no motion vectors")
		p.history.invalidate()
		reproject = false
	}

	target := frame.targetDescriptor()
	low := target.Scaled(float32(c.Resolution))
	fogDesc := low.WithFormat(gpu.FormatRGBA16F)
	depthDesc := low.WithFormat(gpu.FormatR32F)

	params := buildParams(&c, frame)
	cam := &params.camera
	opts := p.Options

	scope := p.arena.BeginFrame()
	defer scope.End()

	lowDepth := scope.Create("fog.downsampledDepth", depthDesc)
	fogTex := scope.Create("fog.buffer", fogDesc)
	composition := scope.Create("fog.composition", frame.Color.Descriptor())

	g := gpu.NewGraph("volumetric fog")
	g.Import(frame.Color, frame.Depth)

	g.AddPass(PassDownsampleDepth, []*gpu.Texture{frame.Depth}, []*gpu.Texture{lowDepth}, func() error {
		downsampleDepth(frame.Depth, lowDepth)
		return nil
	})
	g.AddPass(PassIntegrate, []*gpu.Texture{lowDepth}, []*gpu.Texture{fogTex}, func() error {
		integrateFog(&params, lowDepth, fogTex)
		return nil
	})

	last := fogTex
	var warm bool
	if reproject {
		slots := p.history.acquire(fogDesc, depthDesc)
		warm = p.history.state == HistoryWarm
		reprojected := scope.Create("fog.reprojection", fogDesc)
		g.Import(frame.MotionVectors, slots.prevFog, slots.prevDepth)

		in := reprojectInputs{
			current:   fogTex,
			depth:     lowDepth,
			motion:    frame.MotionVectors,
			history:   slots.prevFog,
			prevDepth: slots.prevDepth,
		}
		g.AddPass(PassReproject,
			[]*gpu.Texture{fogTex, lowDepth, frame.MotionVectors, slots.prevFog, slots.prevDepth},
			[]*gpu.Texture{reprojected},
			func() error {
				reprojectFog(in, reprojected, cam, warm, opts.HistoryWeight, opts.DepthTolerance)
				return nil
			})
		g.AddPass(PassCopyDepth, []*gpu.Texture{lowDepth}, []*gpu.Texture{slots.curDepth}, func() error {
			return slots.curDepth.CopyFrom(lowDepth)
		})
		g.AddPass(PassCopyFog, []*gpu.Texture{reprojected}, []*gpu.Texture{slots.curFog}, func() error {
			return slots.curFog.CopyFrom(reprojected)
		})
		last = reprojected
	}

	if c.BlurIterations > 0 {
		scratch := scope.Create("fog.blurScratch", fogDesc)
		iterations := c.BlurIterations
		g.AddUnsafePass(PassBlur, []*gpu.Texture{last}, []*gpu.Texture{last, scratch}, func() error {
			return separableBlur(last, scratch, iterations)
		})
	}

	in := compositeInputs{color: frame.Color, depth: frame.Depth, lowDepth: lowDepth, fog: last}
	g.AddPass(PassComposite, []*gpu.Texture{frame.Color, frame.Depth, lowDepth, last}, []*gpu.Texture{composition}, func() error {
		upsampleComposite(in, composition, cam, opts.EdgeThreshold)
		return nil
	})
	g.AddPass(PassCopyColor, []*gpu.Texture{composition}, []*gpu.Texture{frame.Color}, func() error {
		return frame.Color.CopyFrom(composition)
	})

	if err := g.Execute(); err != nil {
		if reproject {
			p.history.invalidate()
		}
		return p.skip(stats, "graph execution failed", err)
	}
	if reproject {
		p.history.commit()
	}

	p.state = PipelineActive
	stats.State = PipelineActive
	stats.Passes = g.Passes()
	stats.Features = params.features.Names()
	stats.Target = target
	stats.LowRes = low
	stats.Reprojected = reproject && warm
	stats.History = p.history.state
	stats.Arena = p.arena.Stats()
	stats.Elapsed = time.Since(start)
	return stats
}

func (p *Pipeline) skip(stats FrameStats, reason string, err error) FrameStats {
	p.state = PipelineInactive
	attrs := []any{"reason", reason}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	Logger().Warn("fog: frame skipped", attrs...)
	stats.State = PipelineInactive
	stats.Skipped = true
	stats.SkipReason = reason
	if err != nil {
		stats.SkipReason = fmt.Sprintf("%s: %v", reason, err)
	}
	stats.History = p.history.state
	return stats
}

// Dispose releases the history and every pooled texture.
func (p *Pipeline) Dispose() {
	p.history.release()
	p.arena.ReleaseAll()
	p.state = PipelineInactive
	p.configured = false
}

func (p *Pipeline) State() PipelineState       { return p.state }
func (p *Pipeline) HistoryState() HistoryState { return p.history.state }
func (p *Pipeline) Reprojection() bool         { return p.reprojection }

// ArenaStats exposes texture accounting for diagnostics.
func (p *Pipeline) ArenaStats() gpu.ArenaStats { return p.arena.Stats() }
