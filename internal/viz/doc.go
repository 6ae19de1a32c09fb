// Package viz is a terminal viewer for a running Gray-Scott field.
//
// The viewer is a Bubble Tea program:
//
//   - [Model]: steps the field on every tick and draws V
//   - [Canvas]: Braille dot grid or density glyphs sampled from a frame
//   - Three themes, each tied to a recording palette
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reseed with the current parameters
//	Tab   - Select parameter, Up/Down to tune by 5%
//	+/-   - Steps per tick
//	V     - Toggle Braille and shade rendering
//	T     - Cycle themes
//	G     - Toggle GIF recording
//	?     - Help overlay
//
// # Recording
//
// G starts buffering frames; pressing it again writes them as an animated
// GIF through the export package.
package viz
