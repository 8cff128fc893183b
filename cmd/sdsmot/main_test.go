package main

import (
	"strings"
	"testing"

	"github.com/92fueler/SeaDronesSee-MOT/internal/stats"
)

func TestFormatSummary(t *testing.T) {
	s := &stats.Summary{
		Categories:  2,
		Videos:      1,
		Images:      3,
		Tracks:      2,
		Annotations: 4,
		AnnotationsPerCategory: []stats.CategoryCount{
			{CategoryID: 1, Name: "swimmer", Count: 3},
			{CategoryID: 2, Name: "boat", Count: 1},
		},
		ImagesPerVideo: []stats.VideoCount{
			{VideoID: 10, Name: "DJI_0001", Count: 3},
		},
		BboxArea: stats.Distribution{
			Count: 4, Mean: 40, P50: 30, P95: 100, Min: 10, Max: 100,
		},
	}

	out := formatSummary(s)

	for _, want := range []string{
		"=== Dataset Summary ===",
		"Categories:  2",
		"Annotations: 4",
		"swimmer",
		"DJI_0001",
		"n=4 mean=40.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

// TestFormatSummaryEmpty verifies empty distributions render a placeholder
// instead of misleading zeros.
func TestFormatSummaryEmpty(t *testing.T) {
	out := formatSummary(&stats.Summary{})

	if !strings.Contains(out, "(no data)") {
		t.Errorf("expected (no data) placeholder for empty distributions:\n%s", out)
	}
	if strings.Contains(out, "n=0") {
		t.Errorf("empty distribution should not render stats line:\n%s", out)
	}
}

func TestLoadConfigDefault(t *testing.T) {
	cfg := loadConfig("")

	// With no config file the pipeline falls back to the built-in defaults.
	if got := cfg.GetOutputDir(); got != "data/parquet" {
		t.Errorf("expected default output dir data/parquet, got %q", got)
	}
	if cfg.GetCleanOutput() {
		t.Error("expected clean_output to default to false")
	}
}
