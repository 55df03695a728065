package output

import (
	"html/template"
	"io"
	"net/url"

	"github.com/rileyhilliard/lsview/internal/view"
)

var htmlTemplate = template.Must(template.New("view").Funcs(template.FuncMap{
	"odd": func(i int) bool { return i%2 == 1 },
}).Parse(`<h1>{{.Title}}</h1>
{{- range .Notices}}
<div class="warning">{{.}}</div>
{{- end}}
<table class="data {{.Layout}}">
<tr>{{range .Headers}}<th{{if .Order}} class="sort {{.Order}}"{{end}}>{{if .Href}}<a href="{{.Href}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</th>{{end}}</tr>
{{- range .Groups}}
{{- if .Header}}
<tr class="groupheader"><td colspan="{{$.Columns}}">{{range $i, $c := .Header}}{{if $i}} {{end}}{{$c}}{{end}}</td></tr>
{{- end}}
{{- range $i, $row := .Rows}}
<tr class="data {{if odd $i}}odd{{else}}even{{end}}">{{range $row}}<td{{if .Class}} class="{{.Class}}"{{end}}>{{.Content}}</td>{{end}}</tr>
{{- end}}
{{- end}}
</table>
`))

// HTMLRenderer writes views as an HTML table fragment. Painter content is
// trusted HTML; headers link to the view sorted by that column.
type HTMLRenderer struct {
	linkBase string
}

// NewHTMLRenderer creates an HTML renderer whose sort links start with
// linkBase.
func NewHTMLRenderer(linkBase string) *HTMLRenderer {
	if linkBase == "" {
		linkBase = view.DefaultLinkBase
	}
	return &HTMLRenderer{linkBase: linkBase}
}

// Name returns "html".
func (r *HTMLRenderer) Name() string { return FormatHTML }

type htmlHeader struct {
	Title string
	Href  string
	Order string
}

type htmlCell struct {
	Class   string
	Content template.HTML
}

type htmlGroup struct {
	Header []template.HTML
	Rows   [][]htmlCell
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, out *view.Output) error {
	groups, err := paintGroups(out, out.Cells, htmlMode)
	if err != nil {
		return err
	}

	data := struct {
		Title   string
		Layout  string
		Columns int
		Notices []string
		Headers []htmlHeader
		Groups  []htmlGroup
	}{
		Title:   out.View.DisplayTitle(),
		Layout:  out.View.Layout,
		Columns: len(out.Cells),
		Notices: Notices(out),
	}

	for _, c := range out.Cells {
		h := htmlHeader{Title: c.Title(true), Order: c.SortOrder(out.Sort)}
		if token, ok := c.SortToken(out.Sort); ok {
			h.Href = r.sortURL(out.View.Name, token)
		}
		data.Headers = append(data.Headers, h)
	}

	for _, g := range groups {
		hg := htmlGroup{}
		for _, c := range g.Header {
			if c.Content != "" {
				hg.Header = append(hg.Header, template.HTML(c.Content)) //nolint:gosec // painters escape their content
			}
		}
		for _, row := range g.Rows {
			cells := make([]htmlCell, len(row))
			for i, c := range row {
				cells[i] = htmlCell{Class: c.Class, Content: template.HTML(c.Content)} //nolint:gosec // painters escape their content
			}
			hg.Rows = append(hg.Rows, cells)
		}
		data.Groups = append(data.Groups, hg)
	}

	return htmlTemplate.Execute(w, data)
}

func (r *HTMLRenderer) sortURL(viewName, token string) string {
	q := url.Values{}
	q.Set("view_name", viewName)
	q.Set("sort", token)
	return r.linkBase + "?" + q.Encode()
}
