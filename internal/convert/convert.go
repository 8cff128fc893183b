package convert

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
	"github.com/92fueler/SeaDronesSee-MOT/internal/monitoring"
	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// Options configure one conversion run.
type Options struct {
	// InputPath is the MOT annotation JSON file to convert.
	InputPath string

	// OutputDir is the root the Parquet layout is written under. It is
	// created if missing.
	OutputDir string

	// Split overrides split inference from the input file name. Empty
	// means infer, defaulting to train with a logged warning.
	Split string

	// Clean removes a previous run's output files before writing.
	Clean bool

	// FS defaults to the OS filesystem.
	FS fsutil.FileSystem

	// RunID defaults to a fresh UUID.
	RunID string
}

// Result summarizes a completed conversion.
type Result struct {
	RunID          string
	Split          string
	Tables         *mot.Tables
	Stats          *ProcessingStats
	PartitionFiles int
}

// Run converts one annotation file into the partitioned Parquet layout.
// The input is fully loaded and validated before anything is written, so a
// bad input leaves the output directory untouched. Partition files are
// written in sorted key order with rows in source order, making reruns
// over the same input produce identical partition membership.
func Run(opts Options) (*Result, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = fsutil.NewOSFileSystem()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	base := filepath.Base(opts.InputPath)
	split := opts.Split
	if split == "" {
		var defaulted bool
		split, defaulted = mot.InferSplit(base)
		if defaulted {
			monitoring.Logf("could not determine dataset split from %s, defaulting to %q", base, split)
		}
	}

	finish := monitoring.Stage(fmt.Sprintf("converting %s (split %s)", base, split))

	doc, err := mot.LoadFile(fsys, opts.InputPath)
	if err != nil {
		return nil, err
	}
	tables, err := mot.Normalize(doc, split)
	if err != nil {
		return nil, err
	}

	if opts.Clean {
		if err := Clean(fsys, opts.OutputDir); err != nil {
			return nil, err
		}
	}
	if err := fsys.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, &IOWriteError{Op: "mkdir", Path: opts.OutputDir, Err: err}
	}

	if err := writeParquet(fsys, filepath.Join(opts.OutputDir, CategoriesFile), tables.Categories); err != nil {
		return nil, err
	}
	monitoring.Logf("saved %d categories to %s", len(tables.Categories), CategoriesFile)

	if err := writeParquet(fsys, filepath.Join(opts.OutputDir, VideosFile), tables.Videos); err != nil {
		return nil, err
	}
	monitoring.Logf("saved %d videos to %s", len(tables.Videos), VideosFile)

	videoIDs, imageGroups := GroupImagesByVideo(tables.Images)
	for _, id := range videoIDs {
		if err := writeParquet(fsys, ImagePartitionPath(opts.OutputDir, id), imageGroups[id]); err != nil {
			return nil, err
		}
	}
	monitoring.Logf("saved %d images to %s (%d video partitions)", len(tables.Images), ImagesDir, len(videoIDs))

	annKeys, annGroups := GroupAnnotationsByTrack(tables.Annotations)
	for _, key := range annKeys {
		if err := writeParquet(fsys, AnnotationPartitionPath(opts.OutputDir, key), annGroups[key]); err != nil {
			return nil, err
		}
	}
	monitoring.Logf("saved %d annotations to %s (%d track partitions)", len(tables.Annotations), AnnotationsDir, len(annKeys))

	categoryIDs, trackGroups := GroupTracksByCategory(tables.Tracks)
	for _, id := range categoryIDs {
		if err := writeParquet(fsys, TrackPartitionPath(opts.OutputDir, id), trackGroups[id]); err != nil {
			return nil, err
		}
	}
	monitoring.Logf("saved %d tracks to %s (%d category partitions)", len(tables.Tracks), TracksDir, len(categoryIDs))

	stats := NewProcessingStats(doc, tables, runID, time.Now())
	if err := writeStats(fsys, opts.OutputDir, stats); err != nil {
		return nil, err
	}

	finish()
	return &Result{
		RunID:          runID,
		Split:          split,
		Tables:         tables,
		Stats:          stats,
		PartitionFiles: len(videoIDs) + len(annKeys) + len(categoryIDs),
	}, nil
}

// Clean removes a previous run's output from outDir. Only the known entity
// paths and the stats sidecar are touched, so pointing the converter at an
// unrelated directory cannot wipe it.
func Clean(fsys fsutil.FileSystem, outDir string) error {
	for _, name := range []string{CategoriesFile, VideosFile, ImagesDir, AnnotationsDir, TracksDir, StatsFile} {
		path := filepath.Join(outDir, name)
		if !fsys.Exists(path) {
			continue
		}
		if err := fsys.RemoveAll(path); err != nil {
			return &IOWriteError{Op: "clean", Path: path, Err: err}
		}
	}
	return nil
}
