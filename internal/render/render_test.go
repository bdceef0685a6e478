package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/mbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvexHullOfSquare(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {1, 0}}
	hull := convexHull(pts)
	assert.Equal(t, []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, hull)
}

func TestPoseSVGHangingBox(t *testing.T) {
	model := mbs.Default()
	r, T, err := model.Visual(dynamo.State{0, 0})
	require.NoError(t, err)

	svg := PoseSVG(model.BoxCorners(r, T), 200, 1.25)
	require.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `width="200"`)

	// box spans x in [-0.05, 0.05] and z in [-1, 0]; 80 px per metre
	assert.Contains(t, svg, `points="96.0,100.0 104.0,100.0 104.0,180.0 96.0,180.0"`)
	assert.Contains(t, svg, `<circle cx="100.0" cy="100.0"`)
}

func TestTrajectorySVG(t *testing.T) {
	assert.Empty(t, TrajectorySVG([]Point{{0, 0}}, 100, 100, "#fff"))

	svg := TrajectorySVG([]Point{{0, 0}, {1, 1}, {2, 0}}, 120, 60, "#00ff00")
	assert.Contains(t, svg, `stroke="#00ff00"`)
	assert.Equal(t, 2, strings.Count(svg, " L"))
	assert.Contains(t, svg, "d=\"M10.0,55.0 L60.0,5.0 L110.0,55.0\"")
}

func TestSaveTrajectoryPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "run.png")
	times := []float64{0, 0.1, 0.2, 0.3}
	series := [][]float64{{1, 0.9, 0.7, 0.4}, {0, -1, -2, -2.5}}

	require.NoError(t, SaveTrajectoryPNG(path, "pendulum", times, series, []string{"theta", "omega"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestSaveTrajectoryPNGValidates(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, SaveTrajectoryPNG(filepath.Join(dir, "a.png"), "", nil, nil, nil))
	assert.Error(t, SaveTrajectoryPNG(filepath.Join(dir, "b.png"), "", []float64{0, 1}, [][]float64{{1}}, nil))
}

func TestGraph(t *testing.T) {
	assert.Empty(t, Graph(nil, "x", 40, 5))

	g := Graph([]float64{0, 1, 0, -1, 0}, "theta", 40, 5)
	assert.Contains(t, g, "theta")
	assert.GreaterOrEqual(t, strings.Count(g, "\n"), 5)
}

func TestKV(t *testing.T) {
	out := KV("period", "1.639 s")
	assert.Contains(t, out, "period:")
	assert.Contains(t, out, "1.639 s")
}
