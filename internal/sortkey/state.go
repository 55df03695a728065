package sortkey

// State is the sort state of one request, partitioned by origin. The
// effective order is Group, then User, then View.
type State struct {
	// Group holds one ascending directive per group painter. It is derived
	// from the view and cannot be changed by the user.
	Group []Directive
	// User holds the directives chosen by the user through the sort token.
	User []Directive
	// View holds the directives declared by the view definition.
	View []Directive
}

// Separate splits the sort state of a request. The token's entries that
// repeat a group sorter are dropped, and view sorters already covered by the
// group or user sorters are dropped.
func Separate(group []Directive, token string, view []Directive) State {
	user := Subtract(Parse(token), group)
	viewSort := Subtract(Subtract(view, group), user)
	return State{
		Group: append([]Directive(nil), group...),
		User:  user,
		View:  viewSort,
	}
}

// Effective returns the complete directive list in evaluation order.
func (s State) Effective() []Directive {
	out := make([]Directive, 0, len(s.Group)+len(s.User)+len(s.View))
	out = append(out, s.Group...)
	out = append(out, s.User...)
	return append(out, s.View...)
}

// Token encodes the effective directive list.
func (s State) Token() string {
	return Encode(s.Effective())
}

// primary returns the list holding the primary non-group directive: the
// user list, or the view list when the user has not chosen any sorter.
func (s *State) primary() *[]Directive {
	if len(s.User) > 0 {
		return &s.User
	}
	return &s.View
}

// Toggle returns the sort token a click on the header of a column sorted by
// asc links to:
//
//   - asc is primary: switch it to descending
//   - its descending form is the first user sorter: drop it
//   - otherwise: drop it from the user and view sorters and make it the
//     first sorter after the group sorters
func (s State) Toggle(asc Directive) string {
	asc.Desc = false
	desc := asc.Inverted()

	next := State{
		Group: append([]Directive(nil), s.Group...),
		User:  append([]Directive(nil), s.User...),
		View:  append([]Directive(nil), s.View...),
	}

	list := next.primary()
	switch {
	case len(*list) > 0 && (*list)[0] == asc:
		(*list)[0] = desc
	case len(next.User) > 0 && next.User[0] == desc:
		next.User = next.User[1:]
	default:
		user := without(without(next.User, asc), desc)
		next.User = append([]Directive{asc}, user...)
		next.View = without(without(next.View, asc), desc)
	}
	return next.Token()
}

// Order reports how asc currently orders the view: "asc" or "desc" when it
// is the primary sorter in that direction, "" otherwise.
func (s State) Order(asc Directive) string {
	asc.Desc = false
	list := *s.primary()
	if len(list) == 0 {
		return ""
	}
	switch list[0] {
	case asc:
		return "asc"
	case asc.Inverted():
		return "desc"
	}
	return ""
}
