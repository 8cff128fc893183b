// Package convert turns a parsed MOT annotation document into a
// directory-partitioned Parquet layout on a FileSystem.
package convert

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// Output names under the output root. Partitioned entities use a directory
// carrying the .parquet suffix, Hive style, with one file per partition.
const (
	CategoriesFile = "categories.parquet"
	VideosFile     = "videos.parquet"
	ImagesDir      = "images.parquet"
	AnnotationsDir = "annotations.parquet"
	TracksDir      = "tracks.parquet"
	StatsFile      = "processing_stats.json"
)

// AnnotationKey identifies one annotation partition.
type AnnotationKey struct {
	CategoryID int32
	TrackID    int32
}

// GroupImagesByVideo buckets image rows by video_id, preserving source order
// within each bucket. Keys come back sorted so partition writes are
// deterministic.
func GroupImagesByVideo(rows []mot.ImageRow) ([]int32, map[int32][]mot.ImageRow) {
	groups := make(map[int32][]mot.ImageRow)
	for _, row := range rows {
		groups[row.VideoID] = append(groups[row.VideoID], row)
	}
	return sortedKeys(groups), groups
}

// GroupTracksByCategory buckets track rows by category_id.
func GroupTracksByCategory(rows []mot.TrackRow) ([]int32, map[int32][]mot.TrackRow) {
	groups := make(map[int32][]mot.TrackRow)
	for _, row := range rows {
		groups[row.CategoryID] = append(groups[row.CategoryID], row)
	}
	return sortedKeys(groups), groups
}

// GroupAnnotationsByTrack buckets annotation rows by (category_id, track_id).
func GroupAnnotationsByTrack(rows []mot.AnnotationRow) ([]AnnotationKey, map[AnnotationKey][]mot.AnnotationRow) {
	groups := make(map[AnnotationKey][]mot.AnnotationRow)
	for _, row := range rows {
		key := AnnotationKey{CategoryID: row.CategoryID, TrackID: row.TrackID}
		groups[key] = append(groups[key], row)
	}

	keys := make([]AnnotationKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CategoryID != keys[j].CategoryID {
			return keys[i].CategoryID < keys[j].CategoryID
		}
		return keys[i].TrackID < keys[j].TrackID
	})
	return keys, groups
}

func sortedKeys[T any](groups map[int32]T) []int32 {
	keys := make([]int32, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ImagePartitionPath returns the partition file for one video's images, e.g.
// images.parquet/video_id=3/video_3_images.parquet.
func ImagePartitionPath(outDir string, videoID int32) string {
	return filepath.Join(outDir, ImagesDir,
		fmt.Sprintf("video_id=%d", videoID),
		fmt.Sprintf("video_%d_images.parquet", videoID))
}

// TrackPartitionPath returns the partition file for one category's tracks.
func TrackPartitionPath(outDir string, categoryID int32) string {
	return filepath.Join(outDir, TracksDir,
		fmt.Sprintf("category_id=%d", categoryID),
		fmt.Sprintf("category_%d_tracks.parquet", categoryID))
}

// AnnotationPartitionPath returns the partition file for one
// (category, track) pair's annotations.
func AnnotationPartitionPath(outDir string, key AnnotationKey) string {
	return filepath.Join(outDir, AnnotationsDir,
		fmt.Sprintf("category_id=%d", key.CategoryID),
		fmt.Sprintf("track_id=%d", key.TrackID),
		fmt.Sprintf("category_%d_track_%d_annotations.parquet", key.CategoryID, key.TrackID))
}
