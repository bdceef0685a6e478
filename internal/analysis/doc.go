// Package analysis extracts oscillation properties from simulated runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a sampled
//     signal
//   - [Crossings] and [Period]: period from level crossings of one state
//     component
//   - [LargeAmplitudePeriod]: exact pendulum period for a given swing
//     amplitude
//   - [NewPhasePortrait]: angle against velocity, rendered as text
//
// A run sampled at a fixed step dt gives its swing frequency directly:
//
//	f := analysis.DominantFrequency(res.Series(0), cfg.Dt)
package analysis
