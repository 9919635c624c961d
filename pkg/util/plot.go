// Package util holds reporting helpers that sit outside the optimization
// core.
package util

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/pelago/pelago/pkg/framework"
)

// PlotFront renders a scatter chart of a 2-objective front to an HTML file at
// path, optionally overlaid with the problem's true Pareto front. trueFront
// may be nil.
func PlotFront(front, trueFront [][]float64, problemName, algorithmName, path string) error {
	if len(front) == 0 {
		return fmt.Errorf("%w: empty front for problem %q", framework.ErrInvalidArgument, problemName)
	}
	if len(front[0]) != 2 {
		return fmt.Errorf("%w: can only plot 2-objective fronts, problem %q has %d objectives",
			framework.ErrInvalidArgument, problemName, len(front[0]))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s results for %s", algorithmName, problemName),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "f1(x)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "f2(x)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	if len(trueFront) > 0 {
		truePts := make([]opts.ScatterData, len(trueFront))
		for i, p := range trueFront {
			truePts[i] = opts.ScatterData{
				Value:      []float64{p[0], p[1]},
				Symbol:     "circle",
				SymbolSize: 10,
			}
		}
		scatter.AddSeries("True Pareto front", truePts)
	}

	found := make([]opts.ScatterData, len(front))
	for i, p := range front {
		found[i] = opts.ScatterData{
			Value:      []float64{p[0], p[1]},
			Symbol:     "triangle",
			SymbolSize: 10,
		}
	}
	scatter.AddSeries(fmt.Sprintf("%s solutions", algorithmName), found).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithEmphasisOpts(opts.Emphasis{}),
		)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return scatter.Render(f)
}
