// Package viz renders closed-loop runs in the terminal.
//
//   - [PlotRun]: asciigraph plot of target, measurement and output
//   - [Model]: Bubble Tea live view that steps a loop and lets the
//     primary axis gains be tuned while it runs
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset plant and controller
//	Tab   - Cycle kP / kI / kD
//	Up/K  - Increase selected gain (+5%)
//	Down/J - Decrease selected gain (-5%)
//	T     - Cycle color themes
//	Q     - Quit
package viz
