package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
	"github.com/92fueler/SeaDronesSee-MOT/internal/stats"
	"github.com/92fueler/SeaDronesSee-MOT/internal/testutil"
)

func TestRender(t *testing.T) {
	summary := stats.Collect(testutil.SampleTables(t))

	var buf bytes.Buffer
	if err := Render(&buf, summary); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"SeaDronesSee MOT dataset report",
		"Annotations per category",
		"Images per video",
		"Bounding box area",
		"Track length",
		"swimmer",
		"DJI_0001",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRender_EmptyDataset(t *testing.T) {
	summary := stats.Collect(&mot.Tables{})

	var buf bytes.Buffer
	if err := Render(&buf, summary); err != nil {
		t.Fatalf("Render failed for empty dataset: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty page for empty dataset")
	}
}
