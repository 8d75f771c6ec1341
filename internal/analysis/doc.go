// Package analysis looks at recorded or headless runs after the fact.
//
//   - [DominantPeriod]: strongest oscillation in a series, via [FFT]
//   - [GeneratePhasePortrait]: any two sample fields against each other
//   - [ImpactAngles] and [ReturnMap]: where the ball hits the wall, and
//     how each hit predicts the next
//   - [Sensitivity]: divergence rate of two runs with a nudged param
//   - [BifurcationDiagram]: impact angles across a param sweep
//
// Everything works on storage samples, so saved runs can be analysed the
// same way as fresh ones:
//
//	samples, _ := store.LoadSamples(id)
//	angles := analysis.ImpactAngles(samples, meta.Layout.BoundaryCenter())
//	fmt.Print(analysis.PhasePortraitToASCII(analysis.ReturnMap(angles), 60, 20))
package analysis
