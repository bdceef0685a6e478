// Package render draws pendulum poses and trajectories as SVG, PNG and
// terminal graphs, and holds the CLI text styles.
package render
