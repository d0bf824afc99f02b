// Package terminal plays 2048 locally in a terminal.
//
// The board is drawn with tcell and driven by the arrow keys (or hjkl and
// wasd). Merges and wins can be voiced with beep; Silent is used when no
// audio device is available.
package terminal
