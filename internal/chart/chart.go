// Package chart renders the bankroll history as a PNG line chart.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/web3guy0/kalshibot/internal/types"
)

// ErrNotEnoughData means there is nothing to draw a line through yet
var ErrNotEnoughData = errors.New("need at least two bankroll snapshots")

// RenderBankroll writes a "Bankroll Over Time" chart to path
func RenderBankroll(history []types.BankrollSnapshot, path string) error {
	if len(history) < 2 {
		return ErrNotEnoughData
	}

	xs := make([]time.Time, 0, len(history))
	ys := make([]float64, 0, len(history))
	for _, s := range history {
		xs = append(xs, s.Timestamp)
		ys = append(ys, s.Bankroll.InexactFloat64())
	}

	graph := gochart.Chart{
		Title:  "Bankroll Over Time",
		Width:  1000,
		Height: 500,
		XAxis: gochart.XAxis{
			Name:           "Time",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 2 15:04"),
		},
		YAxis: gochart.YAxis{
			Name: "Bankroll ($)",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "bankroll",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth: 2,
					DotWidth:    3,
				},
			},
		},
	}

	// go-chart refuses a zero-height range; pad a flat line
	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo, hi = min(lo, y), max(hi, y)
	}
	if lo == hi {
		graph.YAxis.Range = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := renameio.NewPendingFile(path)
	if err != nil {
		return err
	}
	defer f.Cleanup()

	if err := graph.Render(gochart.PNG, f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return f.CloseAtomicallyReplace()
}
