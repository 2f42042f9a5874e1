// Package tui renders running simulations to the terminal.
//
// [LiveRenderer] is a passive sim.Observer that redraws at a bounded frame
// rate. [Watch] is a bubbletea model that owns the stepping loop and reacts
// to keys (pause, single step, reset, speed).
package tui
