package frame

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/speakeasy-api/stackmap/frametype"
)

var (
	// ErrStackHeight is returned when merging frames whose stacks hold a
	// different number of values.
	ErrStackHeight = errors.New("frame: stack heights differ")

	// ErrStackMerge is returned when two stack slots have no precise upper
	// bound.
	ErrStackMerge = errors.New("frame: stack slots cannot be merged")
)

// Merger merges frames flowing into the same instruction. A Merger is safe
// for concurrent use. Frames passed to one Merger must draw their types from
// a single types.Factory.
type Merger struct {
	joiner *frametype.Joiner
	opts   frametype.Options
	logger frametype.Logger
	memo   sync.Map // [2]string fingerprints -> *Frame
}

// NewMerger returns a merger joining slots with j and configured by j's
// options.
func NewMerger(j *frametype.Joiner) *Merger {
	opts := j.Options()
	return &Merger{
		joiner: j,
		opts:   opts,
		logger: opts.ResolveLogger().With(map[string]any{"component": "merge"}),
	}
}

// Merge returns the frame holding the join of a and b in every slot.
// Locals whose join is imprecise, whose widths differ, or which are present
// in only one frame become top. The stacks must have the same height and
// every stack slot must join to a precise type.
func (m *Merger) Merge(a, b *Frame) (*Frame, error) {
	if a.Equal(b) {
		return a, nil
	}
	var key [2]string
	if m.opts.EnableMemo {
		key = [2]string{a.Fingerprint(), b.Fingerprint()}
		if cached, ok := m.memo.Load(key); ok {
			return cached.(*Frame), nil
		}
	}

	stack, err := m.mergeStacks(a.stack, b.stack)
	if err != nil {
		return nil, err
	}
	locals, err := m.mergeLocals(a.locals, b.locals)
	if err != nil {
		return nil, err
	}
	merged := &Frame{locals: locals, stack: stack}

	m.logger.Debugf("merged frames locals=%d stack=[%s]",
		len(locals), frametype.PreviewTypes(stack, m.opts.LogMaxSlots))

	if m.opts.EnableMemo {
		m.memo.Store(key, merged)
		m.memo.Store([2]string{key[1], key[0]}, merged)
	}
	return merged, nil
}

func (m *Merger) mergeStacks(a, b []*frametype.FrameType) ([]*frametype.FrameType, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d and %d", ErrStackHeight, len(a), len(b))
	}
	stack := make([]*frametype.FrameType, len(a))
	for i := range a {
		if a[i].Width() != b[i].Width() {
			return nil, fmt.Errorf("%w: slot %d holds %s and %s", ErrStackMerge, i, a[i], b[i])
		}
		joined, err := m.joiner.Join(a[i], b[i])
		if err != nil {
			return nil, fmt.Errorf("stack slot %d: %w", i, err)
		}
		if !joined.IsPrecise() {
			return nil, fmt.Errorf("%w: slot %d joins %s and %s to %s", ErrStackMerge, i, a[i], b[i], joined)
		}
		stack[i] = joined
	}
	return stack, nil
}

func (m *Merger) mergeLocals(a, b map[int]*frametype.FrameType) (map[int]*frametype.FrameType, error) {
	indices := make([]int, 0, len(a))
	for i := range a {
		if _, ok := b[i]; ok {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	locals := make(map[int]*frametype.FrameType, len(indices))
	for _, i := range indices {
		ta, tb := a[i], b[i]
		// High halves follow their low half.
		if ta.IsWidePrimitiveHigh() || tb.IsWidePrimitiveHigh() {
			continue
		}
		if ta.Width() != tb.Width() {
			continue
		}
		joined, err := m.joiner.Join(ta, tb)
		if err != nil {
			return nil, fmt.Errorf("local %d: %w", i, err)
		}
		if !joined.IsPrecise() {
			continue
		}
		locals[i] = joined
		if high, ok := joined.HighHalf(); ok {
			locals[i+1] = high
		}
	}
	return locals, nil
}

// MergeAll folds Merge over frames.
func (m *Merger) MergeAll(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, errors.New("frame: nothing to merge")
	}
	result := frames[0]
	for i, f := range frames[1:] {
		var err error
		if result, err = m.Merge(result, f); err != nil {
			return nil, fmt.Errorf("predecessor %d: %w", i+1, err)
		}
	}
	return result, nil
}

// Request names a set of predecessor frames to merge, e.g. all frames
// flowing into one block of one method.
type Request struct {
	Name   string
	Frames []*Frame
}

// MergeMany merges independent requests concurrently, at most
// Options.Parallelism at a time. Results are in request order. The first
// failure cancels the remaining work. An invariant violation in any request
// is re-raised on the calling goroutine.
func (m *Merger) MergeMany(ctx context.Context, requests []Request) ([]*Frame, error) {
	results := make([]*Frame, len(requests))
	var fatal atomic.Pointer[frametype.InvariantError]

	g, ctx := errgroup.WithContext(ctx)
	if m.opts.Parallelism > 0 {
		g.SetLimit(m.opts.Parallelism)
	}
	for i, req := range requests {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					ie, ok := r.(*frametype.InvariantError)
					if !ok {
						panic(r)
					}
					fatal.CompareAndSwap(nil, ie)
					err = ie
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			merged, err := m.MergeAll(req.Frames...)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Name, err)
			}
			results[i] = merged
			return nil
		})
	}
	err := g.Wait()
	if ie := fatal.Load(); ie != nil {
		panic(ie)
	}
	if err != nil {
		return nil, err
	}
	m.logger.Infof("merged %d requests", len(requests))
	return results, nil
}
