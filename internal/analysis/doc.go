// Package analysis inspects closed-loop traces after a run.
//
//   - [Spectrum] and [DetectOscillation]: frequency content of the
//     tracking error, used to spot limit cycles from aggressive gains
//   - [Crossings]: interpolated zero crossings of the error
//   - [ErrorPortrait]: error versus error rate, rendered with
//     [PortraitToASCII]
//
// # Oscillation
//
// A sustained oscillation shows up as a dominant bin well above the
// spectral floor:
//
//	osc := analysis.DetectOscillation(result.Errors(), dt, 0.01)
//	if osc.Sustained {
//	    // lower kP or add derivative
//	}
package analysis
