// Package cli implements the lsview command-line interface.
//
// Each command is a cobra.Command registered on rootCmd in its file's
// init. Commands load the config into an app, which builds the view
// registry and opens sites and the painter option store on demand.
//
// # Command Structure
//
//	lsview views                 - List the views you can show
//	lsview show VIEW             - Render a view as text, csv, html, json or pdf
//	lsview watch VIEW            - Live-updating terminal table
//	lsview sites [add]           - Site status, add a site to the config
//	lsview options get|set|reset|edit VIEW - Painter options of a view
//
// # Flag Handling
//
// Global flags (--config, --user, --debug, --json) are defined on the root
// command. With --json every command writes a JSONEnvelope to stdout,
// errors included.
package cli
