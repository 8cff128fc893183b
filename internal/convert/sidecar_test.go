package convert

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
	"github.com/92fueler/SeaDronesSee-MOT/internal/testutil"
)

func TestNewProcessingStats(t *testing.T) {
	doc := testutil.SampleDocument(t)
	tables := testutil.SampleTables(t)
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	stats := NewProcessingStats(doc, tables, "run-1", now)

	assert.Equal(t, "2025-03-14T09:30:00Z", stats.ProcessingTimestamp)
	assert.Equal(t, 2, stats.CategoriesCount)
	assert.Equal(t, 3, stats.ImagesCount)
	assert.Equal(t, 4, stats.AnnotationsCount)
	assert.Equal(t, 2, stats.VideosCount)
	assert.Equal(t, 2, stats.TracksCount)
	assert.Equal(t, 1, stats.LicensesCount)
	assert.Equal(t, 2, stats.UniqueVideoIDs)
	assert.Equal(t, 2, stats.UniqueSupercategories)
	assert.Equal(t, "run-1", stats.RunID)
	assert.Contains(t, string(stats.Info), "synthetic maritime set")
}

func TestNewProcessingStats_Defaults(t *testing.T) {
	stats := NewProcessingStats(&mot.Document{}, &mot.Tables{}, "run-2", time.Now())

	assert.Equal(t, "{}", string(stats.Info))
	assert.Zero(t, stats.CategoriesCount)
	assert.Zero(t, stats.UniqueVideoIDs)
	assert.Zero(t, stats.UniqueSupercategories)
}

func TestNewProcessingStats_DuplicateSupercategories(t *testing.T) {
	person := "person"
	tables := &mot.Tables{
		Categories: []mot.CategoryRow{
			{ID: 1, Supercategory: &person},
			{ID: 2, Supercategory: &person},
			{ID: 3},
		},
	}

	stats := NewProcessingStats(&mot.Document{}, tables, "run-3", time.Now())

	// Two categories share a supercategory and one has none.
	assert.Equal(t, 3, stats.CategoriesCount)
	assert.Equal(t, 1, stats.UniqueSupercategories)
}

func TestStatsWriteRead(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	doc := testutil.SampleDocument(t)
	tables := testutil.SampleTables(t)
	stats := NewProcessingStats(doc, tables, "run-4", time.Now())

	require.NoError(t, writeStats(fs, "/out", stats))

	raw, err := fs.ReadFile("/out/processing_stats.json")
	require.NoError(t, err)
	if !strings.Contains(string(raw), "\n  \"categories_count\": 2") {
		t.Errorf("expected indented JSON, got:\n%s", raw)
	}

	got, err := ReadStats(fs, "/out")
	require.NoError(t, err)
	assert.Equal(t, stats.RunID, got.RunID)
	assert.Equal(t, stats.AnnotationsCount, got.AnnotationsCount)
	assert.JSONEq(t, string(stats.Info), string(got.Info))
}
