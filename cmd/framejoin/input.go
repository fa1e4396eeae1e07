package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/stackmap/frame"
)

// frameSpec is one predecessor frame as written in the frames file. Slots
// are kept as nodes so that a bare null stays a slot instead of vanishing.
type frameSpec struct {
	Locals map[int]yaml.Node `yaml:"locals"`
	Stack  []yaml.Node       `yaml:"stack"`
}

// slots converts the decoded nodes to the slot strings frame.Parser reads.
func (fs frameSpec) slots() (map[int]string, []string, error) {
	locals := make(map[int]string, len(fs.Locals))
	for i, n := range fs.Locals {
		s, err := slotText(&n)
		if err != nil {
			return nil, nil, fmt.Errorf("local %d: %w", i, err)
		}
		locals[i] = s
	}
	stack := make([]string, len(fs.Stack))
	for i := range fs.Stack {
		s, err := slotText(&fs.Stack[i])
		if err != nil {
			return nil, nil, fmt.Errorf("stack %d: %w", i, err)
		}
		stack[i] = s
	}
	return locals, stack, nil
}

func slotText(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: slot must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!null" {
		return "null", nil
	}
	return n.Value, nil
}

type blockSpec struct {
	Name   string      `yaml:"name"`
	Frames []frameSpec `yaml:"frames"`
}

type framesFile struct {
	Blocks []blockSpec `yaml:"blocks"`
}

// block is a merge point with its parsed predecessor frames.
type block struct {
	Name   string
	Frames []*frame.Frame
}

// loadFrames reads the frames file:
//
//	blocks:
//	  - name: loop
//	    frames:
//	      - locals: {0: p/A, 1: int}
//	        stack: [null]
//	      - locals: {0: p/B, 1: short}
//	        stack: [p/A]
func loadFrames(path string, parser *frame.Parser) ([]block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file framesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(file.Blocks) == 0 {
		return nil, fmt.Errorf("%s: no blocks", path)
	}

	blocks := make([]block, len(file.Blocks))
	for i, spec := range file.Blocks {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("block%d", i)
		}
		if len(spec.Frames) == 0 {
			return nil, fmt.Errorf("%s: %s: no frames", path, name)
		}
		blocks[i].Name = name
		for j, fs := range spec.Frames {
			locals, stack, err := fs.slots()
			if err != nil {
				return nil, fmt.Errorf("%s: %s: frame %d: %w", path, name, j, err)
			}
			f, err := parser.ParseFrame(locals, stack)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: frame %d: %w", path, name, j, err)
			}
			blocks[i].Frames = append(blocks[i].Frames, f)
		}
	}
	return blocks, nil
}
