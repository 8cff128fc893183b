package convert

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// ProcessingStats is the run summary written next to the Parquet output as
// processing_stats.json.
type ProcessingStats struct {
	ProcessingTimestamp   string          `json:"processing_timestamp"`
	CategoriesCount       int             `json:"categories_count"`
	ImagesCount           int             `json:"images_count"`
	AnnotationsCount      int             `json:"annotations_count"`
	VideosCount           int             `json:"videos_count"`
	TracksCount           int             `json:"tracks_count"`
	LicensesCount         int             `json:"licenses_count"`
	Info                  json.RawMessage `json:"info"`
	UniqueVideoIDs        int             `json:"unique_video_ids"`
	UniqueSupercategories int             `json:"unique_supercategories"`
	RunID                 string          `json:"run_id"`
}

// NewProcessingStats summarizes one conversion. unique_supercategories
// counts distinct non-null supercategory values, not category rows.
func NewProcessingStats(doc *mot.Document, tables *mot.Tables, runID string, now time.Time) *ProcessingStats {
	info := doc.Info
	if info == nil {
		info = json.RawMessage("{}")
	}

	videoIDs := make(map[int32]struct{}, len(tables.Videos))
	for _, v := range tables.Videos {
		videoIDs[v.ID] = struct{}{}
	}

	supercats := make(map[string]struct{})
	for _, c := range tables.Categories {
		if c.Supercategory != nil {
			supercats[*c.Supercategory] = struct{}{}
		}
	}

	return &ProcessingStats{
		ProcessingTimestamp:   now.Format(time.RFC3339),
		CategoriesCount:       len(tables.Categories),
		ImagesCount:           len(tables.Images),
		AnnotationsCount:      len(tables.Annotations),
		VideosCount:           len(tables.Videos),
		TracksCount:           len(tables.Tracks),
		LicensesCount:         len(doc.Licenses),
		Info:                  info,
		UniqueVideoIDs:        len(videoIDs),
		UniqueSupercategories: len(supercats),
		RunID:                 runID,
	}
}

func writeStats(fsys fsutil.FileSystem, outDir string, stats *ProcessingStats) error {
	path := filepath.Join(outDir, StatsFile)
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return &IOWriteError{Op: "encode", Path: path, Err: err}
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return &IOWriteError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ReadStats loads a previously written sidecar.
func ReadStats(fsys fsutil.FileSystem, outDir string) (*ProcessingStats, error) {
	path := filepath.Join(outDir, StatsFile)
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stats ProcessingStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
