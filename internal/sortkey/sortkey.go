// Package sortkey encodes the sort state of a view into the compact token
// carried in the "sort" request variable, and computes the token a column
// header links to.
//
// A token is a comma separated list of entries. Each entry is
// "[-]sorter" or "[-]sorter~join", a leading "-" meaning descending order
// and "~join" naming the joined sub-entity (e.g. a service description) the
// sorter applies to.
package sortkey

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directive is one entry of a sort list. A plain directive and a joined
// directive never compare equal, even for the same sorter and an empty join.
type Directive struct {
	Sorter string
	Desc   bool
	Join   string
	Joined bool
}

// Asc returns an ascending directive for sorter.
func Asc(sorter string) Directive {
	return Directive{Sorter: sorter}
}

// Desc returns a descending directive for sorter.
func Desc(sorter string) Directive {
	return Directive{Sorter: sorter, Desc: true}
}

// AscJoined returns an ascending directive for sorter applied to a join.
func AscJoined(sorter, join string) Directive {
	return Directive{Sorter: sorter, Join: join, Joined: true}
}

// Inverted returns the directive with the opposite direction.
func (d Directive) Inverted() Directive {
	d.Desc = !d.Desc
	return d
}

// String returns the token entry for d.
func (d Directive) String() string {
	var b strings.Builder
	if d.Desc {
		b.WriteByte('-')
	}
	b.WriteString(d.Sorter)
	if d.Joined {
		b.WriteByte('~')
		b.WriteString(d.Join)
	}
	return b.String()
}

// UnmarshalYAML accepts either a token entry ("-host_name", "svc~CPU load")
// or a mapping with sorter, desc and join keys.
func (d *Directive) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed := Parse(node.Value)
		if len(parsed) != 1 {
			return fmt.Errorf("line %d: invalid sort entry %q", node.Line, node.Value)
		}
		*d = parsed[0]
		return nil
	case yaml.MappingNode:
		var raw struct {
			Sorter string  `yaml:"sorter"`
			Desc   bool    `yaml:"desc"`
			Join   *string `yaml:"join"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if raw.Sorter == "" {
			return fmt.Errorf("line %d: sort entry without sorter", node.Line)
		}
		*d = Directive{Sorter: raw.Sorter, Desc: raw.Desc}
		if raw.Join != nil {
			d.Join, d.Joined = *raw.Join, true
		}
		return nil
	default:
		return fmt.Errorf("line %d: sort entry must be a string or a mapping", node.Line)
	}
}

// MarshalYAML writes the compact token form.
func (d Directive) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Parse decodes a sort token. An empty token yields no directives.
func Parse(token string) []Directive {
	if token == "" {
		return nil
	}

	var out []Directive
	for _, entry := range strings.Split(token, ",") {
		name, join, joined := strings.Cut(entry, "~")
		d := Directive{
			Sorter: strings.TrimPrefix(name, "-"),
			Desc:   strings.HasPrefix(name, "-"),
		}
		if joined {
			d.Join, d.Joined = join, true
		}
		out = append(out, d)
	}
	return out
}

// Encode builds the token for a directive list.
func Encode(directives []Directive) string {
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// Subtract removes from base, once each, every directive of remove. A
// directive also cancels its inverted counterpart. base is not modified.
func Subtract(base, remove []Directive) []Directive {
	out := append([]Directive(nil), base...)
	for _, r := range remove {
		if i := index(out, r); i >= 0 {
			out = deleteAt(out, i)
		} else if i := index(out, r.Inverted()); i >= 0 {
			out = deleteAt(out, i)
		}
	}
	return out
}

func index(list []Directive, d Directive) int {
	for i, x := range list {
		if x == d {
			return i
		}
	}
	return -1
}

func deleteAt(list []Directive, i int) []Directive {
	return append(list[:i:i], list[i+1:]...)
}

func without(list []Directive, d Directive) []Directive {
	out := list[:0:0]
	for _, x := range list {
		if x != d {
			out = append(out, x)
		}
	}
	return out
}
