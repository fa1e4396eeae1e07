package frametype

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoHierarchy is returned when two references must be joined but the
// Joiner was built without a class hierarchy.
var ErrNoHierarchy = errors.New("frametype: no class hierarchy to join references")

// Joiner computes least upper bounds of frame types. A Joiner is safe for
// concurrent use.
type Joiner struct {
	hierarchy Hierarchy
	opts      Options
	logger    Logger
	memo      sync.Map // joinKey -> *FrameType
}

type joinKey struct {
	a, b Key
}

// NewJoiner returns a Joiner consulting h for reference joins.
func NewJoiner(h Hierarchy, opts Options) *Joiner {
	return &Joiner{
		hierarchy: h,
		opts:      opts,
		logger:    opts.ResolveLogger().With(map[string]any{"component": "join"}),
	}
}

// Options returns the options the joiner was built with.
func (j *Joiner) Options() Options {
	return j.opts
}

// Join returns the least upper bound of a and b, which must have the same
// width. The result is commutative up to Equal. An error is only returned
// when the class hierarchy fails to join two references.
func (j *Joiner) Join(a, b *FrameType) (*FrameType, error) {
	if a.Width() != b.Width() {
		unreachable(InvariantJoinWidth, "cannot join %s (width %d) with %s (width %d)",
			a, a.Width(), b, b.Width())
	}
	if a.Equal(b) {
		return a, nil
	}
	if a.IsWide() {
		return twoWordType, nil
	}
	if j.opts.Strict && (a.IsUninitializedThis() || b.IsUninitializedThis()) {
		unreachable(InvariantUninitializedThis, "cannot join %s with %s", a, b)
	}
	if a.IsOneWord() || b.IsOneWord() {
		return oneWordType, nil
	}
	if a.HasIntVerificationType() && b.HasIntVerificationType() {
		return intType, nil
	}
	if a.IsPrimitive() || b.IsPrimitive() || a.IsUninitialized() || b.IsUninitialized() {
		return oneWordType, nil
	}

	// Both are initialized references from here on.
	if a.IsNullType() {
		return b, nil
	}
	if b.IsNullType() {
		return a, nil
	}
	return j.joinReferences(a, b)
}

func (j *Joiner) joinReferences(a, b *FrameType) (*FrameType, error) {
	key := joinKey{a.Key(), b.Key()}
	if j.opts.EnableMemo {
		if cached, ok := j.memo.Load(key); ok {
			return cached.(*FrameType), nil
		}
	}
	if j.hierarchy == nil {
		return nil, ErrNoHierarchy
	}

	ea, _ := a.InitializedElement()
	eb, _ := b.InitializedElement()
	joined, err := j.hierarchy.JoinElements(ea, eb)
	if err != nil {
		return nil, fmt.Errorf("join %s with %s: %w", a, b, err)
	}
	if joined.Type == nil {
		return nil, fmt.Errorf("join %s with %s: hierarchy returned no type", a, b)
	}

	var result *FrameType
	if joined.HasInterfaces() ||
		a.IsInitializedNonNullReferenceWithInterfaces() ||
		b.IsInitializedNonNullReferenceWithInterfaces() {
		result = InitializedNonNullReferenceWithInterfaces(joined, j.hierarchy)
	} else {
		result = InitializedNonNullReference(joined.Type)
	}
	// Reuse an operand when it already is the upper bound.
	if result.Equal(a) {
		result = a
	} else if result.Equal(b) {
		result = b
	}

	j.logger.Debugf("joined %s with %s to %s", a, b, result)

	if j.opts.EnableMemo {
		j.memo.Store(key, result)
		j.memo.Store(joinKey{key.b, key.a}, result)
	}
	return result, nil
}

// JoinAll folds Join over types, which must all have the same width.
func (j *Joiner) JoinAll(types ...*FrameType) (*FrameType, error) {
	if len(types) == 0 {
		return nil, errors.New("frametype: nothing to join")
	}
	result := types[0]
	for _, t := range types[1:] {
		var err error
		if result, err = j.Join(result, t); err != nil {
			return nil, err
		}
	}
	return result, nil
}
