// Package monitor renders time-frequency maps produced by the tiling
// engine into PNG files, for offline inspection of loud chunks.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/strainlab/qscan/logging"
	"github.com/strainlab/qscan/tiling"
)

// MapPlotter writes Q-plane and full-map heat maps to an output directory.
type MapPlotter struct {
	outputDir string
	width     vg.Length
	height    vg.Length
}

// NewMapPlotter creates a plotter writing into outputDir, creating the
// directory if needed.
func NewMapPlotter(outputDir string) (*MapPlotter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	return &MapPlotter{
		outputDir: outputDir,
		width:     10 * vg.Inch,
		height:    6 * vg.Inch,
	}, nil
}

// OutputDir returns the directory plots are written into.
func (mp *MapPlotter) OutputDir() string { return mp.outputDir }

// SavePlaneMap renders the map of one Q plane. The file is named
// <prefix>_q<Q>.png. Call tiling.QPlane.FillMap (or Tiling.FillMaps) first
// so the map carries the latest projection.
func (mp *MapPlotter) SavePlaneMap(qp *tiling.QPlane, prefix string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Q = %.1f", qp.Q())
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Frequency (Hz)"

	hm := plotter.NewHeatMap(&planeGrid{qp}, palette.Heat(64, 1))
	p.Add(hm)

	file := filepath.Join(mp.outputDir, fmt.Sprintf("%s_q%04.1f.png", prefix, qp.Q()))
	if err := p.Save(mp.width, mp.height, file); err != nil {
		return fmt.Errorf("save plane map: %w", err)
	}
	logging.Debug("monitor: plane map saved", logging.Fields{"file": file, "q": qp.Q()})
	return nil
}

// SaveFullMap renders a cross-Q full map. The file is named
// <prefix>_full_<window>s.png.
func (mp *MapPlotter) SaveFullMap(fm *tiling.FullMap, prefix string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Loudest Q, centered on t = %.0f s", fm.TimeCenter())
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Frequency (Hz)"

	hm := plotter.NewHeatMap(&fullMapGrid{fm}, palette.Heat(64, 1))
	p.Add(hm)

	file := filepath.Join(mp.outputDir, fmt.Sprintf("%s_full_%gs.png", prefix, fm.Window()))
	if err := p.Save(mp.width, mp.height, file); err != nil {
		return fmt.Errorf("save full map: %w", err)
	}
	logging.Debug("monitor: full map saved", logging.Fields{"file": file, "window": fm.Window()})
	return nil
}

// SaveAll renders every plane map plus the full maps built by the last
// FillMaps call.
func (mp *MapPlotter) SaveAll(til *tiling.Tiling, prefix string) error {
	for i := 0; i < til.QN(); i++ {
		if err := mp.SavePlaneMap(til.Plane(i), prefix); err != nil {
			return err
		}
	}
	for i := 0; i < til.FullMapN(); i++ {
		if err := mp.SaveFullMap(til.FullMap(i), prefix); err != nil {
			return err
		}
	}
	return nil
}

// planeGrid exposes a Q-plane map at its fine time resolution, one row per
// frequency band.
type planeGrid struct {
	p *tiling.QPlane
}

func (g *planeGrid) Dims() (c, r int) {
	return g.p.BandTileN(g.p.BandN() - 1), g.p.BandN()
}

func (g *planeGrid) X(c int) float64 {
	nt := g.p.BandTileN(g.p.BandN() - 1)
	return g.p.TimeMin() + (float64(c)+0.5)*float64(g.p.TimeRange())/float64(nt)
}

func (g *planeGrid) Y(r int) float64 {
	return g.p.BandFrequency(r)
}

func (g *planeGrid) Z(c, r int) float64 {
	nt := g.p.BandTileN(g.p.BandN() - 1)
	tile := c / (nt / g.p.BandTileN(r))
	return g.p.TileContent(tile, r)
}

// fullMapGrid exposes a cross-Q full map.
type fullMapGrid struct {
	m *tiling.FullMap
}

func (g *fullMapGrid) Dims() (c, r int) {
	return g.m.TimeBinN(), g.m.FrequencyBinN()
}

func (g *fullMapGrid) X(c int) float64 {
	return g.m.TimeCenter() + g.m.BinTime(c)
}

func (g *fullMapGrid) Y(r int) float64 {
	return g.m.BinFrequency(r)
}

func (g *fullMapGrid) Z(c, r int) float64 {
	return g.m.Content(c, r)
}
