package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/lsview/internal/sortkey"
)

// ViewDefinition is the declarative description of a view.
type ViewDefinition struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	DataSource  string `yaml:"datasource"`
	Layout      string `yaml:"layout,omitempty"`

	Painters      []PainterSpec       `yaml:"painters"`
	GroupPainters []PainterSpec       `yaml:"group_painters,omitempty"`
	Sorters       []sortkey.Directive `yaml:"sorters,omitempty"`

	// SingleInfos are the infos the view shows exactly one object of, e.g.
	// "host" for a host detail view.
	SingleInfos []string `yaml:"single_infos,omitempty"`
	// Sortable defaults to true.
	Sortable *bool `yaml:"user_sortable,omitempty"`
	Hidden   bool  `yaml:"hidden,omitempty"`
	// Filters are raw Livestatus filter headers added to every query.
	Filters []string `yaml:"filters,omitempty"`
	// Users restricts the view to the listed users. Empty means everybody.
	Users []string `yaml:"users,omitempty"`
}

// UserSortable reports whether column headers offer sort links.
func (v *ViewDefinition) UserSortable() bool {
	return v.Sortable == nil || *v.Sortable
}

// HasSingleInfo reports whether the view shows a single object of info.
func (v *ViewDefinition) HasSingleInfo(info string) bool {
	for _, i := range v.SingleInfos {
		if i == info {
			return true
		}
	}
	return false
}

// DisplayTitle returns the title, falling back to the name.
func (v *ViewDefinition) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.Name
}

// JoinColumn turns a painter spec into a joined column.
type JoinColumn struct {
	Service string `yaml:"service"`
	// Title replaces the column title, which defaults to Service.
	Title string `yaml:"title,omitempty"`
}

// PainterSpec is one column (or group column) of a view.
type PainterSpec struct {
	Painter  string         `yaml:"painter"`
	Params   map[string]any `yaml:"params,omitempty"`
	LinkView string         `yaml:"link_view,omitempty"`
	Tooltip  string         `yaml:"tooltip,omitempty"`
	Join     *JoinColumn    `yaml:"join,omitempty"`
}

// IsJoined reports whether the spec describes a joined column.
func (p PainterSpec) IsJoined() bool {
	return p.Join != nil
}

// UnmarshalYAML accepts a painter id, a mapping, or the positional form
//
//	[painter, link_view, tooltip, join_service, join_title]
//
// where painter may itself be a [painter, params] pair and trailing
// elements are optional. Null elements are unset.
func (p *PainterSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = PainterSpec{Painter: node.Value}
		return nil
	case yaml.MappingNode:
		type plain PainterSpec
		var raw plain
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if raw.Painter == "" {
			return fmt.Errorf("line %d: painter spec without painter", node.Line)
		}
		*p = PainterSpec(raw)
		return nil
	case yaml.SequenceNode:
		return p.decodePositional(node)
	default:
		return fmt.Errorf("line %d: painter spec must be a string, a mapping or a list", node.Line)
	}
}

func (p *PainterSpec) decodePositional(node *yaml.Node) error {
	items := node.Content
	if len(items) == 0 || len(items) > 5 {
		return fmt.Errorf("line %d: painter spec needs 1 to 5 elements, got %d", node.Line, len(items))
	}

	var spec PainterSpec
	if err := decodePainterRef(items[0], &spec); err != nil {
		return err
	}

	str := func(n *yaml.Node) string {
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	}

	switch len(items) {
	case 5:
		spec.Join = &JoinColumn{Service: str(items[3]), Title: str(items[4])}
		spec.Tooltip = str(items[2])
		spec.LinkView = str(items[1])
	case 4:
		spec.Join = &JoinColumn{Service: str(items[3])}
		spec.Tooltip = str(items[2])
		spec.LinkView = str(items[1])
	case 3:
		spec.Tooltip = str(items[2])
		spec.LinkView = str(items[1])
	case 2:
		spec.LinkView = str(items[1])
	}

	*p = spec
	return nil
}

func decodePainterRef(n *yaml.Node, spec *PainterSpec) error {
	switch n.Kind {
	case yaml.ScalarNode:
		spec.Painter = n.Value
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("line %d: parameterized painter must be [painter, params]", n.Line)
		}
		spec.Painter = n.Content[0].Value
		if err := n.Content[1].Decode(&spec.Params); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: invalid painter reference", n.Line)
	}
	if spec.Painter == "" {
		return fmt.Errorf("line %d: empty painter id", n.Line)
	}
	return nil
}

// LoadViews parses a YAML document holding a list of view definitions, either
// at the top level or under a "views" key.
func LoadViews(data []byte) ([]*ViewDefinition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		var wrapped struct {
			Views []*ViewDefinition `yaml:"views"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, err
		}
		return wrapped.Views, nil
	}

	var views []*ViewDefinition
	if err := root.Decode(&views); err != nil {
		return nil, err
	}
	return views, nil
}
