// Package viz draws a recorded run in the terminal.
//
//   - [Canvas]: braille pixel canvas, 2x4 dots per cell
//   - [Scene]: projects the fixed link, moving link and muscle line onto a canvas
//   - [Replay]: Bubble Tea model that plays back a [sim.TimeHistory]
//   - [WriteGIF]: renders the same frames to an animated GIF
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step one sample back/forward
//	+ -   - Playback speed
//	R     - Restart
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
