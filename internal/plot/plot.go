// Package plot renders the time-series diagrams of a run with gonum/plot.
package plot

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/musclesim/internal/physics"
	"github.com/san-kum/musclesim/internal/sim"
)

var ErrEmptyHistory = errors.New("plot: empty history")

type Options struct {
	Format string // "png" or "svg"
	Width  float64
	Height float64
	DPI    int
	Limits *physics.Limits
}

func DefaultOptions() Options {
	return Options{Format: "png", Width: 8, Height: 6, DPI: 150}
}

type series struct {
	file   string
	title  string
	ylabel string
	column func(sim.TimeHistory) []float64
}

var diagrams = []series{
	{"joint_angle", "Joint Angle", "theta (rad)", sim.TimeHistory.Thetas},
	{"angular_velocity", "Angular Velocity", "omega (rad/s)", sim.TimeHistory.Omegas},
	{"muscle_force", "Muscle Force", "force (N)", sim.TimeHistory.Forces},
	{"muscle_length", "Muscle-Tendon Length", "length (m)", sim.TimeHistory.Lengths},
}

// Render writes one file per diagram into outDir and returns their paths.
func Render(history sim.TimeHistory, outDir string, opts Options) ([]string, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}
	if opts.Format != "png" && opts.Format != "svg" {
		return nil, fmt.Errorf("plot: unsupported format %q", opts.Format)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create directory: %w", err)
	}

	times := history.Times()
	paths := make([]string, 0, len(diagrams))
	for _, d := range diagrams {
		p, err := linePlot(d.title, "time (s)", d.ylabel, times, d.column(history))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.file, err)
		}
		if d.file == "joint_angle" && opts.Limits != nil {
			if err := addLimitLines(p, times, *opts.Limits); err != nil {
				return nil, err
			}
		}

		path := filepath.Join(outDir, d.file+"."+opts.Format)
		if err := save(p, opts, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func linePlot(title, xlabel, ylabel string, xs, ys []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2.0)
	p.Add(line, plotter.NewGrid())
	return p, nil
}

func addLimitLines(p *plot.Plot, times []float64, lim physics.Limits) error {
	t0, t1 := times[0], times[len(times)-1]
	for _, v := range []float64{lim.Min, lim.Max} {
		l, err := plotter.NewLine(plotter.XYs{{X: t0, Y: v}, {X: t1, Y: v}})
		if err != nil {
			return err
		}
		l.LineStyle.Color = color.RGBA{R: 200, A: 255}
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(l)
	}
	return nil
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)

		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Padding = vg.Points(12)
	p.Y.Padding = vg.Points(12)
	p.X.Tick.Marker = limitedTicker(6, "%.2f")
	p.Y.Tick.Marker = limitedTicker(8, "%.3g")
}

func save(p *plot.Plot, opts Options, path string) error {
	w := vg.Length(opts.Width) * vg.Inch
	h := vg.Length(opts.Height) * vg.Inch

	if opts.Format == "svg" {
		return p.Save(w, h, path)
	}

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(opts.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
