package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/speakeasy-api/stackmap/frame"
	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/hierarchy"
)

// formatMergeError turns a merge failure into a user-facing message.
func formatMergeError(err error) string {
	var b strings.Builder
	b.WriteString("Merge failed.\n")

	msg, hint := classifyAndHint(err)
	fmt.Fprintf(&b, "- %s\n", msg)
	if loc := deriveLocation(err); loc != "" {
		fmt.Fprintf(&b, "  Location: %s\n", loc)
	}
	if hint != "" {
		fmt.Fprintf(&b, "  How to fix: %s\n", hint)
	}
	fmt.Fprintf(&b, "  Details: %s\n", err)
	return b.String()
}

func classifyAndHint(err error) (string, string) {
	var ie *frametype.InvariantError
	switch {
	case errors.As(err, &ie):
		switch ie.Invariant {
		case frametype.InvariantUninitializedThis:
			return "uninitializedThis meets another type",
				"frames reaching the same instruction must agree on whether the constructor already ran, or drop -strict"
		case frametype.InvariantJoinWidth:
			return "values of different widths meet in one slot",
				"check that wide values occupy two local slots"
		default:
			return fmt.Sprintf("invariant %q violated", ie.Invariant), ""
		}
	case errors.Is(err, frame.ErrStackHeight):
		return "stack heights differ",
			"every frame reaching an instruction must have the same number of stack values"
	case errors.Is(err, frame.ErrStackMerge):
		return "stack values have no common type",
			"only locals may widen to top; stack slots must join to a precise type"
	case errors.Is(err, hierarchy.ErrUnknownType):
		return "a class is missing from the hierarchy",
			"add the class and its supertypes to the -hierarchy file"
	default:
		return "merge error", ""
	}
}

// deriveLocation returns the block name that prefixes errors from
// frame.Merger.MergeMany, followed by the predecessor when known.
func deriveLocation(err error) string {
	var ie *frametype.InvariantError
	if errors.As(err, &ie) {
		return ""
	}
	s := err.Error()
	name, rest, ok := strings.Cut(s, ": ")
	if !ok || strings.Contains(name, " ") {
		return ""
	}
	if strings.HasPrefix(rest, "predecessor ") {
		if pred, _, ok := strings.Cut(rest, ": "); ok {
			return name + ", " + pred
		}
	}
	return name
}
