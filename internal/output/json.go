package output

import (
	"encoding/json"
	"io"

	"github.com/rileyhilliard/lsview/internal/view"
)

// Document is the JSON form of an executed view. Row values are aligned
// with Columns.
type Document struct {
	View      string            `json:"view"`
	Title     string            `json:"title"`
	Sort      string            `json:"sort,omitempty"`
	Columns   []string          `json:"columns"`
	Groups    []DocumentGroup   `json:"groups"`
	Truncated bool              `json:"truncated,omitempty"`
	DeadSites map[string]string `json:"dead_sites,omitempty"`
}

// DocumentGroup is a run of rows sharing their group columns.
type DocumentGroup struct {
	Group map[string]string `json:"group,omitempty"`
	Rows  [][]string        `json:"rows"`
}

// JSONRenderer writes views as a Document.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSON renderer.
func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

// Name returns "json".
func (r *JSONRenderer) Name() string { return FormatJSON }

// Render implements Renderer.
func (r *JSONRenderer) Render(w io.Writer, out *view.Output) error {
	doc, err := NewDocument(out)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// NewDocument converts an executed view. Cell content is plain text.
func NewDocument(out *view.Output) (*Document, error) {
	groups, err := paintGroups(out, out.Cells, textMode)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		View:      out.View.Name,
		Title:     out.View.DisplayTitle(),
		Sort:      out.Sort.Token(),
		Columns:   make([]string, len(out.Cells)),
		Groups:    make([]DocumentGroup, 0, len(groups)),
		Truncated: out.Truncated,
	}
	for i, c := range out.Cells {
		doc.Columns[i] = c.ExportTitle()
	}

	for _, g := range groups {
		dg := DocumentGroup{Rows: make([][]string, 0, len(g.Rows))}
		if len(g.Header) > 0 {
			dg.Group = make(map[string]string, len(g.Header))
			for i, c := range g.Header {
				dg.Group[out.GroupCells[i].ExportTitle()] = c.Content
			}
		}
		for _, row := range g.Rows {
			values := make([]string, len(row))
			for i, c := range row {
				values[i] = c.Content
			}
			dg.Rows = append(dg.Rows, values)
		}
		doc.Groups = append(doc.Groups, dg)
	}

	if len(out.Dead) > 0 {
		doc.DeadSites = make(map[string]string, len(out.Dead))
		for site, err := range out.Dead {
			doc.DeadSites[site] = err.Error()
		}
	}
	return doc, nil
}
