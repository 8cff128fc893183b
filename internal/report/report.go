// Package report renders dataset statistics as a self-contained HTML page
// of charts, one file with no server required.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/92fueler/SeaDronesSee-MOT/internal/stats"
)

// Render writes the full report page for summary to w.
func Render(w io.Writer, summary *stats.Summary) error {
	page := components.NewPage()
	page.PageTitle = "SeaDronesSee MOT dataset report"
	page.AddCharts(
		annotationsPerCategoryChart(summary),
		imagesPerVideoChart(summary),
		distributionChart("Bounding box area", summary.BboxArea),
		distributionChart("Track length", summary.TrackLength),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func annotationsPerCategoryChart(s *stats.Summary) *charts.Bar {
	x := make([]string, 0, len(s.AnnotationsPerCategory))
	y := make([]opts.BarData, 0, len(s.AnnotationsPerCategory))
	for _, c := range s.AnnotationsPerCategory {
		x = append(x, c.Name)
		y = append(y, opts.BarData{Value: c.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Annotations per category",
			Subtitle: fmt.Sprintf("%d annotations across %d categories", s.Annotations, s.Categories),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("annotations", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func imagesPerVideoChart(s *stats.Summary) *charts.Bar {
	x := make([]string, 0, len(s.ImagesPerVideo))
	y := make([]opts.BarData, 0, len(s.ImagesPerVideo))
	for _, v := range s.ImagesPerVideo {
		x = append(x, v.Name)
		y = append(y, opts.BarData{Value: v.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Images per video",
			Subtitle: fmt.Sprintf("%d images across %d videos", s.Images, s.Videos),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("images", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func distributionChart(title string, d stats.Distribution) *charts.Bar {
	x := []string{"Min", "P50", "Mean", "P95", "Max"}
	y := []opts.BarData{
		{Value: d.Min},
		{Value: d.P50},
		{Value: d.Mean},
		{Value: d.P95},
		{Value: d.Max},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("n=%d", d.Count),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries(title, y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
