package compositor

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer"
	"github.com/tomWhiting/heroine-graph-sub003/engine/renderer/bindgroup"
	"github.com/tomWhiting/heroine-graph-sub003/renderpass"
	"github.com/tomWhiting/heroine-graph-sub003/valuestream"
)

// Config toggles each pass of the fixed back-to-front order and carries
// the per-pass parameters a caller tunes each frame. Every field besides
// the always-on clear is independently skippable (spec §4.6).
type Config struct {
	ShowDensity   bool
	ShowHeatmap   bool
	ShowContours  bool
	ShowMetaballs bool
	ShowEdges     bool
	ShowNodes     bool
	ShowLabels    bool

	Density   DensityParams
	Heatmap   HeatmapParams
	Metaballs MetaballParams
	NodeStyle renderpass.NodeStyle
	EdgeStyle renderpass.EdgeStyle

	ContourThresholds []float32
	GridMinX, GridMinY float32
}

// Compositor owns every render-pass object in the fixed sequence and
// runs them in order each frame: clear (implicit, owned by the caller's
// BeginFrame), density, heatmap, contours, metaballs, edges, nodes.
// Contours are extracted on the CPU into LastContours and are not drawn.
// Labels are not drawn either: Draw does not read Config.ShowLabels, and
// label survivor culling is available only through SelectLabels.
type Compositor struct {
	density   *DensityPass
	heatmap   *HeatmapPass
	metaballs *MetaballPass
	edges     *renderpass.EdgePass
	nodes     *renderpass.NodePass

	gridWidth, gridHeight uint32

	lastContours []Segment

	// contourPool runs each contour threshold's marching-squares pass on
	// its own worker, since every threshold walks the same density grid
	// independently. Workers persist across frames to avoid per-frame
	// spawn overhead.
	contourPool worker.DynamicWorkerPool
}

// New builds every pass's pipeline and GPU resources up front so a
// frame loop never allocates. scale seeds the heatmap's colour LUT;
// call SetColorScale later to switch value streams.
func New(r renderer.Renderer, gridWidth, gridHeight uint32, scale valuestream.ColorScale) (*Compositor, error) {
	density, err := NewDensityPass(r, gridWidth, gridHeight)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}
	heatmap, err := NewHeatmapPass(r, scale)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}
	metaballs, err := NewMetaballPass(r)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}
	edges, err := renderpass.NewEdgePass(r)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}
	nodes, err := renderpass.NewNodePass(r)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}
	workers := max(runtime.NumCPU()-1, 1)
	return &Compositor{
		density: density, heatmap: heatmap, metaballs: metaballs,
		edges: edges, nodes: nodes,
		gridWidth: gridWidth, gridHeight: gridHeight,
		contourPool: worker.NewDynamicWorkerPool(workers, 256, time.Second),
	}, nil
}

// SetColorScale re-samples the heatmap LUT from a new value-stream
// colour scale, used when the caller binds a different stream.
func (c *Compositor) SetColorScale(r renderer.Renderer, scale valuestream.ColorScale) error {
	c.heatmap.Destroy()
	heatmap, err := NewHeatmapPass(r, scale)
	if err != nil {
		return fmt.Errorf("compositor: set color scale: %w", err)
	}
	c.heatmap = heatmap
	return nil
}

// Draw runs the fixed pass order for one frame (no labels pass; see
// Compositor). nodeCount/edgeCount are
// the live counts from graphstore; shared carries the node/edge-data and
// viewport bind groups every pass reads. positions, if non-nil, mirrors
// live node x/y on the CPU for contour extraction; the GPU density splat
// reads node data on the GPU, but is still skipped when positions are nil
// (nil skips density and contours for this frame regardless of Config).
func (c *Compositor) Draw(r renderer.Renderer, cfg Config, nodeCount, edgeCount uint32, shared []bindgroup.BindGroupProvider, positionsX, positionsY []float32) error {
	if cfg.ShowDensity && positionsX != nil {
		c.density.Clear(r)
		if err := c.density.Splat(r, cfg.Density, nodeCount, cfg.GridMinX, cfg.GridMinY); err != nil {
			return fmt.Errorf("compositor: density: %w", err)
		}
	}

	if cfg.ShowHeatmap && cfg.ShowDensity {
		hp := cfg.Heatmap
		hp.GridWidth, hp.GridHeight = c.gridWidth, c.gridHeight
		if err := c.heatmap.Draw(r, c.density, hp); err != nil {
			return fmt.Errorf("compositor: heatmap: %w", err)
		}
	}

	if cfg.ShowContours && positionsX != nil {
		grid := SplatGrid(positionsX, positionsY, int(c.gridWidth), int(c.gridHeight),
			cfg.GridMinX, cfg.GridMinY, cfg.Density.KernelRadius, cfg.Density.Intensity)
		c.lastContours = c.extractContoursConcurrently(grid, cfg.ContourThresholds)
	}

	if cfg.ShowMetaballs {
		if err := c.metaballs.Draw(r, cfg.Metaballs); err != nil {
			return fmt.Errorf("compositor: metaballs: %w", err)
		}
	}

	if cfg.ShowEdges {
		c.edges.UpdateStyle(r, cfg.EdgeStyle)
		if err := c.edges.Draw(r, edgeCount, shared); err != nil {
			return fmt.Errorf("compositor: edges: %w", err)
		}
	}

	if cfg.ShowNodes {
		c.nodes.UpdateStyle(r, cfg.NodeStyle)
		if err := c.nodes.Draw(r, nodeCount, shared); err != nil {
			return fmt.Errorf("compositor: nodes: %w", err)
		}
	}

	return nil
}

// extractContoursConcurrently runs one marching-squares pass per
// threshold on c.contourPool, since each threshold's walk over grid is
// independent of every other. Results are written into a pre-sized,
// per-threshold slot so no two workers ever touch the same memory.
func (c *Compositor) extractContoursConcurrently(grid []float32, thresholds []float32) []Segment {
	perThreshold := make([][]Segment, len(thresholds))
	var wg sync.WaitGroup
	for i, threshold := range thresholds {
		wg.Add(1)
		idx, t := i, threshold
		c.contourPool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				perThreshold[idx] = ExtractContours(grid, int(c.gridWidth), int(c.gridHeight), t)
				return nil, nil
			},
		})
	}
	wg.Wait()

	var total int
	for _, s := range perThreshold {
		total += len(s)
	}
	segments := make([]Segment, 0, total)
	for _, s := range perThreshold {
		segments = append(segments, s...)
	}
	return segments
}

// LastContours returns the line segments extracted by the most recent
// Draw call with ShowContours enabled, in grid-cell coordinates.
func (c *Compositor) LastContours() []Segment { return c.lastContours }

// SelectLabels runs survivor-culling over the given candidates; callers
// typically build candidates from the subset of nodes a Layer's label
// policy marks eligible (see Layer, SelectNodes).
func (c *Compositor) SelectLabels(candidates []LabelCandidate) []LabelCandidate {
	return SelectLabelSurvivors(candidates)
}

// Destroy releases every pass's GPU resources.
func (c *Compositor) Destroy() {
	c.density.Destroy()
	c.heatmap.Destroy()
	c.metaballs.Destroy()
	c.edges.Destroy()
	c.nodes.Destroy()
}
