// Package ui provides the terminal styling shared by lsview's text output,
// the sites table and the watch screen.
//
// Colors are ANSI codes for broad terminal compatibility. Painter classes
// such as "state svcstate state2" map to colors through ClassStyle:
//
//	state0 / hstate0  green   OK, UP
//	state1            yellow  WARN
//	state2 / hstate1  red     CRIT, DOWN
//	state3 / hstate2  magenta UNKNOWN, UNREACH
//	statep / hstatep  gray    pending
//
// Use DisableColors() for monochrome output (--color never, or when not
// writing to a terminal).
package ui
