package convert

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
	"github.com/92fueler/SeaDronesSee-MOT/internal/testutil"
)

func sampleFS(t *testing.T) fsutil.FileSystem {
	t.Helper()
	fs := fsutil.NewMemoryFileSystem()
	testutil.AssertNoError(t, fs.WriteFile("/data/instances_train.json", []byte(testutil.SampleJSON), 0644))
	return fs
}

func runSample(t *testing.T, fs fsutil.FileSystem, clean bool) *Result {
	t.Helper()
	res, err := Run(Options{
		InputPath: "/data/instances_train.json",
		OutputDir: "/out",
		Clean:     clean,
		FS:        fs,
	})
	testutil.AssertNoError(t, err)
	return res
}

func TestRun_Layout(t *testing.T) {
	fs := sampleFS(t)
	res := runSample(t, fs, false)

	wantFiles := []string{
		"/out/categories.parquet",
		"/out/videos.parquet",
		"/out/images.parquet/video_id=10/video_10_images.parquet",
		"/out/images.parquet/video_id=20/video_20_images.parquet",
		"/out/tracks.parquet/category_id=1/category_1_tracks.parquet",
		"/out/tracks.parquet/category_id=2/category_2_tracks.parquet",
		"/out/annotations.parquet/category_id=1/track_id=1/category_1_track_1_annotations.parquet",
		"/out/annotations.parquet/category_id=2/track_id=2/category_2_track_2_annotations.parquet",
		"/out/processing_stats.json",
	}
	for _, path := range wantFiles {
		if !fs.Exists(path) {
			t.Errorf("expected output file %s", path)
		}
	}

	if res.PartitionFiles != 6 {
		t.Errorf("PartitionFiles = %d, want 6", res.PartitionFiles)
	}
	if res.Split != mot.SplitTrain {
		t.Errorf("Split = %q, want train", res.Split)
	}
	if res.RunID == "" {
		t.Error("expected a generated run id")
	}

	// No partitions beyond the keys actually present.
	for dir, want := range map[string]int{
		"/out/images.parquet":      2,
		"/out/tracks.parquet":      2,
		"/out/annotations.parquet": 2,
	} {
		entries, err := fs.ReadDir(dir)
		testutil.AssertNoError(t, err)
		if len(entries) != want {
			t.Errorf("%s has %d entries, want %d", dir, len(entries), want)
		}
	}
}

func TestRun_RoundTrip(t *testing.T) {
	fs := sampleFS(t)
	res := runSample(t, fs, false)

	got, err := ReadTables(fs, "/out")
	testutil.AssertNoError(t, err)

	// Partition concatenation order is not source order, so compare as
	// sets keyed by id.
	sortRows := cmpopts.SortSlices(func(a, b mot.ImageRow) bool { return a.ID < b.ID })
	sortAnns := cmpopts.SortSlices(func(a, b mot.AnnotationRow) bool { return a.ID < b.ID })
	sortTracks := cmpopts.SortSlices(func(a, b mot.TrackRow) bool { return a.ID < b.ID })

	if diff := cmp.Diff(res.Tables, got, sortRows, sortAnns, sortTracks); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_PartitionAssignment(t *testing.T) {
	fs := sampleFS(t)
	runSample(t, fs, false)

	for _, videoID := range []int32{10, 20} {
		rows, err := readParquet[mot.ImageRow](fs, ImagePartitionPath("/out", videoID))
		testutil.AssertNoError(t, err)
		if len(rows) == 0 {
			t.Fatalf("no image rows in partition video_id=%d", videoID)
		}
		for _, row := range rows {
			if row.VideoID != videoID {
				t.Errorf("image %d in partition video_id=%d has video_id %d", row.ID, videoID, row.VideoID)
			}
		}
	}

	for _, key := range []AnnotationKey{{1, 1}, {2, 2}} {
		rows, err := readParquet[mot.AnnotationRow](fs, AnnotationPartitionPath("/out", key))
		testutil.AssertNoError(t, err)
		if len(rows) != 2 {
			t.Fatalf("partition %+v has %d rows, want 2", key, len(rows))
		}
		for _, row := range rows {
			if row.CategoryID != key.CategoryID || row.TrackID != key.TrackID {
				t.Errorf("annotation %d misplaced in partition %+v", row.ID, key)
			}
		}
	}
}

func TestRun_MalformedInputWritesNothing(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	noAnnotations := `{"categories": [], "videos": [], "images": [], "tracks": []}`
	testutil.AssertNoError(t, fs.WriteFile("/data/broken.json", []byte(noAnnotations), 0644))

	_, err := Run(Options{InputPath: "/data/broken.json", OutputDir: "/out", FS: fs})
	var malformed *mot.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %T: %v", err, err)
	}

	if fs.Exists("/out") {
		t.Error("expected no output to be created for malformed input")
	}
}

func TestRun_ValidationFailureWritesNothing(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	badBbox := `{
		"categories": [], "videos": [], "images": [], "tracks": [],
		"annotations": [{"id": 1, "image_id": 1, "category_id": 1, "video_id": 1, "track_id": 1, "area": 4, "bbox": [-2, 0, 2, 2]}]
	}`
	testutil.AssertNoError(t, fs.WriteFile("/data/bad.json", []byte(badBbox), 0644))

	_, err := Run(Options{InputPath: "/data/bad.json", OutputDir: "/out", FS: fs})
	var sv *mot.SchemaValidationError
	if !errors.As(err, &sv) {
		t.Fatalf("expected SchemaValidationError, got %T: %v", err, err)
	}
	if fs.Exists("/out") {
		t.Error("expected no output to be created for invalid records")
	}
}

func TestRun_MissingInput(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	_, err := Run(Options{InputPath: "/data/absent.json", OutputDir: "/out", FS: fs})
	var missing *mot.MissingFileError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFileError, got %T: %v", err, err)
	}
}

func TestRun_RerunDeterminism(t *testing.T) {
	fs := sampleFS(t)
	first := runSample(t, fs, false)

	firstRows := make(map[string][]mot.AnnotationRow)
	for _, key := range []AnnotationKey{{1, 1}, {2, 2}} {
		path := AnnotationPartitionPath("/out", key)
		rows, err := readParquet[mot.AnnotationRow](fs, path)
		testutil.AssertNoError(t, err)
		firstRows[path] = rows
	}

	second := runSample(t, fs, true)

	if first.PartitionFiles != second.PartitionFiles {
		t.Errorf("partition count changed across reruns: %d then %d", first.PartitionFiles, second.PartitionFiles)
	}
	for path, want := range firstRows {
		got, err := readParquet[mot.AnnotationRow](fs, path)
		testutil.AssertNoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("partition %s changed across reruns (-first +second):\n%s", path, diff)
		}
	}
}

func TestRun_SplitOverride(t *testing.T) {
	fs := sampleFS(t)
	res, err := Run(Options{
		InputPath: "/data/instances_train.json",
		OutputDir: "/out",
		Split:     mot.SplitVal,
		FS:        fs,
	})
	testutil.AssertNoError(t, err)

	if res.Split != mot.SplitVal {
		t.Fatalf("Split = %q, want val", res.Split)
	}
	img := res.Tables.Images[0]
	if img.FilePath == nil || *img.FilePath != "data/images/val/100.jpg" {
		t.Errorf("unexpected file_path under override: %v", img.FilePath)
	}
}

func TestRun_EmptyCollections(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	empty := `{"categories": [], "videos": [], "images": [], "tracks": [], "annotations": []}`
	testutil.AssertNoError(t, fs.WriteFile("/data/empty_train.json", []byte(empty), 0644))

	res, err := Run(Options{InputPath: "/data/empty_train.json", OutputDir: "/out", FS: fs})
	testutil.AssertNoError(t, err)

	if !fs.Exists("/out/categories.parquet") || !fs.Exists("/out/videos.parquet") {
		t.Error("expected lookup files even for an empty dataset")
	}
	for _, dir := range []string{"/out/images.parquet", "/out/tracks.parquet", "/out/annotations.parquet"} {
		if fs.Exists(dir) {
			t.Errorf("expected no partition directory %s for empty entity", dir)
		}
	}
	if res.PartitionFiles != 0 {
		t.Errorf("PartitionFiles = %d, want 0", res.PartitionFiles)
	}

	tables, err := ReadTables(fs, "/out")
	testutil.AssertNoError(t, err)
	if len(tables.Categories) != 0 || len(tables.Images) != 0 {
		t.Error("expected empty tables on read-back")
	}
}

func TestClean(t *testing.T) {
	fs := sampleFS(t)
	runSample(t, fs, false)
	testutil.AssertNoError(t, fs.WriteFile("/out/notes.txt", []byte("keep me"), 0644))

	testutil.AssertNoError(t, Clean(fs, "/out"))

	for _, path := range []string{
		"/out/categories.parquet",
		"/out/videos.parquet",
		"/out/images.parquet",
		"/out/tracks.parquet",
		"/out/annotations.parquet",
		"/out/processing_stats.json",
	} {
		if fs.Exists(path) {
			t.Errorf("expected %s to be removed", path)
		}
	}
	if !fs.Exists("/out/notes.txt") {
		t.Error("expected unrelated file to survive clean")
	}
}

func TestRun_OSFileSystem(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "instances_val.json")
	fs := fsutil.NewOSFileSystem()
	testutil.AssertNoError(t, fs.WriteFile(input, []byte(testutil.SampleJSON), 0644))

	out := filepath.Join(dir, "parquet")
	res, err := Run(Options{InputPath: input, OutputDir: out, FS: fs})
	testutil.AssertNoError(t, err)

	if res.Split != mot.SplitVal {
		t.Errorf("Split = %q, want val", res.Split)
	}
	if !fs.Exists(filepath.Join(out, "images.parquet", "video_id=10", "video_10_images.parquet")) {
		t.Error("expected image partition on disk")
	}

	tables, err := ReadTables(fs, out)
	testutil.AssertNoError(t, err)
	if len(tables.Annotations) != 4 {
		t.Errorf("read back %d annotations, want 4", len(tables.Annotations))
	}
}
