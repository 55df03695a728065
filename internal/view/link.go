package view

import (
	"html"
	"net/url"
	"strings"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// URLToView builds the link to viewName that selects the objects of row.
// ok is false when the view is unknown, not permitted, or links are off.
//
// The link carries the variables of every single-object filter of the
// target view's single infos, the variables of the data source's link
// filters, and a site hint when the target shows single objects.
func (e *Env) URLToView(row registry.Row, viewName string) (string, bool) {
	if e.NoLinks {
		return "", false
	}
	target, ok := e.Registry.View(viewName, e.User)
	if !ok {
		return "", false
	}
	ds, ok := e.Registry.DataSource(target.DataSource)
	if !ok {
		return "", false
	}

	var vars []registry.URLVar
	addFilterVars := func(f *registry.Filter) {
		if f != nil && f.Vars != nil {
			vars = append(vars, f.Vars(row)...)
		}
	}

	for _, info := range ds.Infos {
		if !target.HasSingleInfo(info) {
			continue
		}
		for _, f := range e.Registry.SingleInfoFilters([]string{info}) {
			addFilterVars(f)
		}
	}

	for _, info := range ds.Infos {
		if target.HasSingleInfo(info) {
			continue
		}
		for _, f := range e.Registry.SingleInfoFilters([]string{info}) {
			dst, ok := ds.LinkFilters[f.ID]
			if !ok {
				continue
			}
			addFilterVars(f)
			if df, ok := e.Registry.Filter(dst); ok {
				addFilterVars(df)
			}
		}
	}

	if len(target.SingleInfos) > 0 && !hasVar(vars, "site") {
		if site := registry.ToString(row["site"]); site != "" {
			vars = append(vars, registry.URLVar{Name: "site", Value: site})
		}
	}

	return e.linkBase() + "?" + encodeVars(append([]registry.URLVar{{Name: "view_name", Value: viewName}}, vars...)), true
}

// linkToView wraps content in a link to viewName, or returns it unchanged
// when no link can be built.
func (e *Env) linkToView(content string, row registry.Row, viewName string) string {
	u, ok := e.URLToView(row, viewName)
	if !ok {
		return content
	}
	return `<a href="` + html.EscapeString(u) + `">` + content + `</a>`
}

func hasVar(vars []registry.URLVar, name string) bool {
	for _, v := range vars {
		if v.Name == name {
			return true
		}
	}
	return false
}

// encodeVars keeps the variable order, which url.Values would sort away.
func encodeVars(vars []registry.URLVar) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = url.QueryEscape(v.Name) + "=" + url.QueryEscape(v.Value)
	}
	return strings.Join(parts, "&")
}
