package trace

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stickycols/pkg/cache"
	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/observability"
	"github.com/matzehuels/stickycols/pkg/page"
	"github.com/matzehuels/stickycols/pkg/scene"
	"github.com/matzehuels/stickycols/pkg/scols"
	"github.com/matzehuels/stickycols/pkg/style"
)

// Runner plays scenes with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner; every run builds its own page.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Version string
	TTL     time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLTrace,
	}
}

// Run plays the scene, reusing a cached trace when one exists.
func (r *Runner) Run(ctx context.Context, s *scene.Scene) (*Trace, error) {
	t, _, err := r.RunWithCacheInfo(ctx, s, false)
	return t, err
}

// RunWithCacheInfo plays the scene and reports whether the trace came from
// the cache. With refresh set the cache is not read, but the new trace is
// still stored.
func (r *Runner) RunWithCacheInfo(ctx context.Context, s *scene.Scene, refresh bool) (*Trace, bool, error) {
	fp, err := s.Fingerprint()
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.TraceKey(fp, cache.TraceKeyOpts{Version: r.Version})

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if t, err := Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "trace")
				r.Logger.Debug("trace cache hit", "scene", s.Name, "fingerprint", fp)
				t.Scene = s.Name
				return t, true, nil
			}
			// Undecodable entries are recomputed.
		} else if err != nil {
			r.Logger.Warn("trace cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "trace")
	}

	t, err := Play(ctx, s, r.Logger)
	if err != nil {
		return nil, false, err
	}
	t.Version = r.Version
	r.store(ctx, key, t)
	return t, false, nil
}

// Lookup returns a trace stored by a previous run.
func (r *Runner) Lookup(ctx context.Context, id string) (*Trace, error) {
	if err := errors.ValidateTraceID(id); err != nil {
		return nil, err
	}
	data, hit, err := r.Cache.Get(ctx, r.Keyer.TraceIDKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read trace %s", id)
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeTraceNotFound, "trace %s not found", id)
	}
	return Unmarshal(data)
}

func (r *Runner) store(ctx context.Context, key string, t *Trace) {
	data, err := t.Marshal()
	if err != nil {
		r.Logger.Warn("encode trace", "error", err)
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLTrace
	}
	for _, k := range []string{key, r.Keyer.TraceIDKey(t.ID)} {
		if err := r.Cache.Set(ctx, k, data, ttl); err != nil {
			r.Logger.Warn("trace cache write failed", "error", err)
			return
		}
	}
	observability.Cache().OnCacheSet(ctx, "trace", len(data))
}

// Play builds the scene's page, attaches sticky columns to it and runs the
// script, recording a frame after every positioning pass. The initial
// attach is followed by a refresh so the trace starts with the layout at the
// top of the page.
//
// Scroll steps flush one rendering frame after every scroll, or a single
// frame after all repeats when the step coalesces.
func Play(ctx context.Context, s *scene.Scene, logger *log.Logger) (t *Trace, err error) {
	if logger == nil {
		logger = log.Default()
	}
	fp, err := s.Fingerprint()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Simulation()
	hooks.OnRunStart(ctx, s.Name, len(s.Columns))
	defer func() {
		frames := 0
		if t != nil {
			frames = len(t.Frames)
		}
		hooks.OnRunComplete(ctx, s.Name, frames, time.Since(start), err)
	}()

	p := s.Build()
	opts := s.StickyOptions()
	opts.Logger = logger
	sticky := scols.New(p, p.Container(), opts)
	cols := p.Container().Select(opts.ColSelector)

	rec := &recorder{
		trace: &Trace{
			ID:          uuid.NewString(),
			Scene:       s.Name,
			Fingerprint: fp,
			CreatedAt:   time.Now().UTC(),
			Viewport:    s.Viewport,
			FromTop:     s.Options.FromTop,
		},
		page:   p,
		sticky: sticky,
		cols:   cols,
		step:   SetupStep,
	}
	for _, c := range cols {
		rec.trace.Columns = append(rec.trace.Columns, c.Name())
	}
	if sticky.Attached() {
		rec.event(scols.EventAttach)
	}

	sticky.On(scols.EventPosition, func() {
		f := rec.frame()
		hooks.OnFrame(ctx, s.Name, f.ScrollTop, f.Direction.String())
	})
	sticky.On(scols.EventAttach, func() { rec.event(scols.EventAttach) })
	sticky.On(scols.EventDetach, func() { rec.event(scols.EventDetach) })

	sticky.Refresh()

	for i, step := range s.Script {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "scene %s stopped at step %d", s.Name, i)
		}
		rec.step = i
		switch step.Action {
		case scene.ActionScroll:
			for n := 0; n < step.Times(); n++ {
				if err := ctx.Err(); err != nil {
					return nil, errors.Wrap(errors.ErrCodeTimeout, err, "scene %s stopped at step %d", s.Name, i)
				}
				if step.To != nil {
					p.ScrollTo(*step.To)
				} else {
					p.ScrollBy(step.By)
				}
				if !step.Coalesce {
					p.Flush()
				}
			}
			if step.Coalesce {
				p.Flush()
			}
		case scene.ActionAttach:
			sticky.Attach()
		case scene.ActionDetach:
			sticky.Detach()
		case scene.ActionRefresh:
			sticky.Refresh()
		}
	}
	// Frames requested by the last step still run.
	p.Flush()

	logger.Debug("scene played",
		"scene", s.Name,
		"steps", len(s.Script),
		"frames", len(rec.trace.Frames),
		"duration", time.Since(start))
	return rec.trace, nil
}

// recorder appends frames and events to a trace while a script plays.
type recorder struct {
	trace  *Trace
	page   *page.Page
	sticky *scols.Sticky
	cols   []*page.Element
	step   int
}

func (r *recorder) event(name string) {
	r.trace.Events = append(r.trace.Events, Event{
		Step:      r.step,
		Name:      name,
		ScrollTop: r.page.ScrollTop(),
	})
}

func (r *recorder) frame() Frame {
	f := Snapshot(r.page, r.sticky, r.cols, r.step)
	r.trace.Frames = append(r.trace.Frames, f)
	return f
}

// Snapshot captures the current layout of cols as a frame. The view command
// uses it to draw a live page between positioning passes.
func Snapshot(p *page.Page, sticky *scols.Sticky, cols []*page.Element, step int) Frame {
	last := sticky.Last()
	f := Frame{
		Step:      step,
		ScrollTop: p.ScrollTop(),
		Direction: last.Direction,
		Tallest:   last.Tallest,
		Container: p.Container().Rect(),
		Columns:   make([]ColumnFrame, len(cols)),
	}
	for i, c := range cols {
		st := c.Style()
		top, _ := st.Top.Pixels()
		cf := ColumnFrame{
			Name: c.Name(),
			Mode: st.Position.String(),
			Top:  top,
			Rect: c.Rect(),
		}
		if st.Position != style.ModeDefault {
			cf.CSS = st.CSS()
		}
		if i < len(last.Placements) {
			cf.Applied = last.Placements[i].Apply
		}
		f.Columns[i] = cf
	}
	return f
}
