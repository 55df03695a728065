// Package monitor implements the watch screen: a view rendered as a live
// table that refreshes on an interval.
//
// The screen is a Bubble Tea program:
//
//   - Model holds the last executed view, the sort token and the table
//   - Update processes keystrokes, refresh ticks, fetched views and config
//     reloads
//   - View renders header, table (or the detail of one row) and footer
//
// Every refresh runs the view again through a Source with the current sort
// token. Number keys toggle sorting on a column the way a header click
// does in the web interface.
package monitor
