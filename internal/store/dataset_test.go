package store

import (
	"strings"
	"testing"

	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
	"github.com/92fueler/SeaDronesSee-MOT/internal/testutil"
)

func TestLoadDataset(t *testing.T) {
	db := newTestDB(t)
	tables := testutil.SampleTables(t)

	res, err := db.LoadDataset(tables, "run-1")
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if res.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", res.RunID)
	}
	if res.Counts.Annotations != 4 || res.Counts.Images != 3 {
		t.Errorf("unexpected load counts: %+v", res.Counts)
	}

	counts, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Categories != 2 || counts.Videos != 2 || counts.Images != 3 ||
		counts.Tracks != 2 || counts.Annotations != 4 {
		t.Errorf("unexpected table counts: %+v", counts)
	}
}

func TestLoadDataset_Reload(t *testing.T) {
	db := newTestDB(t)
	tables := testutil.SampleTables(t)

	if _, err := db.LoadDataset(tables, "run-1"); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if _, err := db.LoadDataset(tables, "run-2"); err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	// A reload replaces rows rather than accumulating them.
	counts, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Annotations != 4 {
		t.Errorf("annotations = %d after reload, want 4", counts.Annotations)
	}

	// But every load is recorded.
	var loads int
	if err := db.QueryRow("SELECT COUNT(*) FROM dataset_loads").Scan(&loads); err != nil {
		t.Fatalf("failed to count loads: %v", err)
	}
	if loads != 2 {
		t.Errorf("dataset_loads has %d rows, want 2", loads)
	}
}

func TestLoadDataset_BrokenReference(t *testing.T) {
	db := newTestDB(t)
	tables := testutil.SampleTables(t)

	if _, err := db.LoadDataset(tables, "run-1"); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	broken := testutil.SampleTables(t)
	broken.Annotations = append(broken.Annotations, mot.AnnotationRow{
		ID: 9999, ImageID: 12345, CategoryID: 1, VideoID: 10, TrackID: 1,
	})

	if _, err := db.LoadDataset(broken, "run-2"); err == nil {
		t.Fatal("expected foreign key violation for missing image")
	}

	// The failed load must roll back completely.
	counts, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Annotations != 4 {
		t.Errorf("annotations = %d after failed load, want 4 from the previous load", counts.Annotations)
	}
}

func TestVideoByName(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.LoadDataset(testutil.SampleTables(t), "run-1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	video, err := db.VideoByName("DJI_0001")
	if err != nil {
		t.Fatalf("VideoByName failed: %v", err)
	}
	if video == nil || video.ID != 10 || video.Height != 2160 {
		t.Errorf("unexpected video: %+v", video)
	}

	// The alias key in the source maps to a regular name here.
	video, err = db.VideoByName("DJI_0002")
	if err != nil {
		t.Fatalf("VideoByName failed: %v", err)
	}
	if video == nil || video.ID != 20 {
		t.Errorf("unexpected video: %+v", video)
	}

	missing, err := db.VideoByName("DJI_9999")
	if err != nil {
		t.Fatalf("VideoByName failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown video, got %+v", missing)
	}
}

func TestVideoImages(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.LoadDataset(testutil.SampleTables(t), "run-1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	images, err := db.VideoImages(10)
	if err != nil {
		t.Fatalf("VideoImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images for video 10, want 2", len(images))
	}
	if images[0].ID != 100 || images[1].ID != 101 {
		t.Errorf("images out of frame order: %d, %d", images[0].ID, images[1].ID)
	}

	// Optional columns survive the round trip.
	first := images[0]
	if first.Source == nil || !strings.Contains(*first.Source, "mavic") {
		t.Errorf("unexpected source: %v", first.Source)
	}
	if first.DateTime == nil || *first.DateTime != "2020-08-27T12:01:33" {
		t.Errorf("unexpected date_time: %v", first.DateTime)
	}
	second := images[1]
	if second.Source != nil {
		t.Errorf("expected nil source for empty object, got %q", *second.Source)
	}
	if second.Meta != nil {
		t.Errorf("expected nil meta, got %q", *second.Meta)
	}
}

func TestTrackAnnotations(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.LoadDataset(testutil.SampleTables(t), "run-1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	anns, err := db.TrackAnnotations(2)
	if err != nil {
		t.Fatalf("TrackAnnotations failed: %v", err)
	}
	if len(anns) != 2 {
		t.Fatalf("got %d annotations for track 2, want 2", len(anns))
	}
	for _, a := range anns {
		if a.TrackID != 2 || a.CategoryID != 2 {
			t.Errorf("annotation %d does not belong to track 2: %+v", a.ID, a)
		}
	}
	if anns[0].ID != 1002 || anns[1].ID != 1003 {
		t.Errorf("annotations out of order: %d, %d", anns[0].ID, anns[1].ID)
	}
}

func TestLastLoad(t *testing.T) {
	db := newTestDB(t)

	rec, err := db.LastLoad()
	if err != nil {
		t.Fatalf("LastLoad failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil before any load, got %+v", rec)
	}

	if _, err := db.LoadDataset(testutil.SampleTables(t), "run-1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, err := db.LoadDataset(testutil.SampleTables(t), "run-2"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	rec, err = db.LastLoad()
	if err != nil {
		t.Fatalf("LastLoad failed: %v", err)
	}
	if rec == nil || rec.RunID != "run-2" {
		t.Errorf("expected latest run-2, got %+v", rec)
	}
	if rec.Counts.Images != 3 {
		t.Errorf("recorded images = %d, want 3", rec.Counts.Images)
	}
	if rec.LoadedAt == "" {
		t.Error("expected loaded_at to be recorded")
	}
}
