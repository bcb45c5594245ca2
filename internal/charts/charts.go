// Package charts renders server-side ECharts snippets for the dashboard
// and statistics screens.
package charts

import (
	"bytes"
	"html/template"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/chezflora/flora-admin/internal/flora"
)

const chartHeight = "340px"

// Line plots a per-day count series.
func Line(title string, points []flora.DayPoint) template.HTML {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(title)...)
	labels := make([]string, 0, len(points))
	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Date)
		data = append(data, opts.LineData{Value: p.Count})
	}
	line.SetXAxis(labels)
	line.AddSeries(title, data)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return render(line)
}

// RevenueLine plots the per-day revenue totals of a series.
func RevenueLine(title string, points []flora.DayPoint) template.HTML {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(title)...)
	labels := make([]string, 0, len(points))
	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Date)
		amount, _ := strconv.ParseFloat(p.Total, 64)
		data = append(data, opts.LineData{Value: amount})
	}
	line.SetXAxis(labels)
	line.AddSeries(title, data)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return render(line)
}

// Bar plots labelled counts, sorted by label for a stable axis.
func Bar(title string, values map[string]int) template.HTML {
	labels := make([]string, 0, len(values))
	for label := range values {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(title)...)
	data := make([]opts.BarData, 0, len(labels))
	for _, label := range labels {
		data = append(data, opts.BarData{Name: label, Value: values[label]})
	}
	bar.SetXAxis(labels)
	bar.AddSeries(title, data)
	return render(bar)
}

// Pie plots labelled counts as slices.
func Pie(title string, values map[string]int) template.HTML {
	labels := make([]string, 0, len(values))
	for label := range values {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(title)...)
	data := make([]opts.PieData, 0, len(labels))
	for _, label := range labels {
		data = append(data, opts.PieData{Name: label, Value: values[label]})
	}
	pie.AddSeries(title, data)
	return render(pie)
}

func globalOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "100%",
			Height: chartHeight,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func render(renderable interface{ Render(io.Writer) error }) template.HTML {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
