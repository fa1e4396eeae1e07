package hierarchy

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/stackmap/pkg/types"
)

// Load reads a class table from YAML:
//
//	classes:
//	  java/lang/Runnable:
//	    interface: true
//	  p/C:
//	    interfaces: [java/lang/Runnable]
//	  p/A:
//	    super: p/C
//
// Classes keep their declaration order. A class without super extends
// java/lang/Object.
func Load(r io.Reader, factory *types.Factory) (*ClassTable, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewClassTable(factory), nil
		}
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("hierarchy: line %d: document must be a mapping", root.Line)
	}

	table := NewClassTable(factory)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Value != "classes" {
			return nil, fmt.Errorf("hierarchy: line %d: unknown key %q", keyNode.Line, keyNode.Value)
		}
		if err := loadClasses(table, valueNode); err != nil {
			return nil, err
		}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func loadClasses(table *ClassTable, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("hierarchy: line %d: classes must be a mapping", node.Line)
	}
	factory := table.Factory()

	// YAML MappingNode stores content as alternating key/value pairs
	for i := 0; i+1 < len(node.Content); i += 2 {
		nameNode, specNode := node.Content[i], node.Content[i+1]
		class, err := parseClassName(factory, nameNode)
		if err != nil {
			return err
		}

		var (
			super       *types.Type
			interfaces  []*types.Type
			isInterface bool
		)
		switch specNode.Kind {
		case yaml.ScalarNode:
			// "p/A:" with no body, or "p/A: p/C" as shorthand for the super.
			if v := strings.TrimSpace(specNode.Value); v != "" && specNode.Tag != "!!null" {
				if super, err = parseClassName(factory, specNode); err != nil {
					return err
				}
			}
		case yaml.MappingNode:
			for j := 0; j+1 < len(specNode.Content); j += 2 {
				k, v := specNode.Content[j], specNode.Content[j+1]
				switch k.Value {
				case "super":
					if super, err = parseClassName(factory, v); err != nil {
						return err
					}
				case "interfaces":
					if v.Kind != yaml.SequenceNode {
						return fmt.Errorf("hierarchy: line %d: interfaces of %s must be a list", v.Line, nameNode.Value)
					}
					for _, itfNode := range v.Content {
						itf, err := parseClassName(factory, itfNode)
						if err != nil {
							return err
						}
						interfaces = append(interfaces, itf)
					}
				case "interface":
					if err := v.Decode(&isInterface); err != nil {
						return fmt.Errorf("hierarchy: line %d: interface flag of %s: %w", v.Line, nameNode.Value, err)
					}
				default:
					return fmt.Errorf("hierarchy: line %d: unknown key %q for %s", k.Line, k.Value, nameNode.Value)
				}
			}
		default:
			return fmt.Errorf("hierarchy: line %d: %s must map to a class description", specNode.Line, nameNode.Value)
		}

		if err := table.Define(class, super, interfaces, isInterface); err != nil {
			return fmt.Errorf("line %d: %w", nameNode.Line, err)
		}
	}
	return nil
}

func parseClassName(factory *types.Factory, node *yaml.Node) (*types.Type, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("hierarchy: line %d: class name must be a string", node.Line)
	}
	t, err := factory.FromInternalName(strings.TrimSpace(node.Value))
	if err != nil {
		return nil, fmt.Errorf("hierarchy: line %d: %w", node.Line, err)
	}
	if !t.IsClass() {
		return nil, fmt.Errorf("hierarchy: line %d: %s is not a class", node.Line, node.Value)
	}
	return t, nil
}
