// Package mot models the SeaDronesSee multi-object-tracking annotation
// format: a COCO-style JSON document extended with video and track
// collections, plus the flat row schemas the converter writes to Parquet.
package mot

import "encoding/json"

// Entity names. These are also the required top-level keys of an
// annotation file and the directory names of the Parquet layout.
const (
	EntityCategories  = "categories"
	EntityVideos      = "videos"
	EntityImages      = "images"
	EntityTracks      = "tracks"
	EntityAnnotations = "annotations"
)

// RequiredKeys lists the top-level collections an annotation file must carry.
// info and licenses are optional passthrough.
var RequiredKeys = []string{
	EntityCategories,
	EntityImages,
	EntityAnnotations,
	EntityVideos,
	EntityTracks,
}

// Dataset splits recognised in annotation file names.
const (
	SplitTrain = "train"
	SplitVal   = "val"
)

// Document is a parsed annotation file before normalization. Records are
// kept as raw maps so the normalizer can report missing or mistyped fields
// for an individual record instead of failing the whole decode.
type Document struct {
	Path     string
	Info     json.RawMessage
	Licenses []json.RawMessage

	Categories  []map[string]any
	Videos      []map[string]any
	Images      []map[string]any
	Tracks      []map[string]any
	Annotations []map[string]any
}

// CategoryRow is one record of the categories table.
type CategoryRow struct {
	ID            int32   `parquet:"id"`
	Supercategory *string `parquet:"supercategory,optional"`
	Name          *string `parquet:"name,optional"`
}

// VideoRow is one record of the videos table. Videos are unique by name.
type VideoRow struct {
	ID     int32  `parquet:"id"`
	Height int32  `parquet:"height"`
	Width  int32  `parquet:"width"`
	Name   string `parquet:"name"`
}

// ImageRow is one record of the images table. FilePath and DatasetSplit are
// derived by the normalizer; Source and Meta hold nested source objects
// serialized as compact JSON.
type ImageRow struct {
	ID           int32   `parquet:"id"`
	FileName     string  `parquet:"file_name"`
	FilePath     *string `parquet:"file_path,optional"`
	DateTime     *string `parquet:"date_time,optional"`
	Height       int32   `parquet:"height"`
	Width        int32   `parquet:"width"`
	VideoID      int32   `parquet:"video_id"`
	FrameIndex   *int32  `parquet:"frame_index,optional"`
	DatasetSplit *string `parquet:"dataset_split,optional"`
	Source       *string `parquet:"source,optional"`
	Meta         *string `parquet:"meta,optional"`
}

// TrackRow is one record of the tracks table: one object's trajectory
// within one video and one category.
type TrackRow struct {
	ID         int32 `parquet:"id"`
	CategoryID int32 `parquet:"category_id"`
	VideoID    int32 `parquet:"video_id"`
}

// AnnotationRow is one record of the annotations table: one bounding box on
// one image, belonging to exactly one track. The source bbox array is
// flattened to four columns.
type AnnotationRow struct {
	ID         int32 `parquet:"id"`
	ImageID    int32 `parquet:"image_id"`
	CategoryID int32 `parquet:"category_id"`
	VideoID    int32 `parquet:"video_id"`
	TrackID    int32 `parquet:"track_id"`
	Area       int32 `parquet:"area"`
	BboxX      int32 `parquet:"bbox_x"`
	BboxY      int32 `parquet:"bbox_y"`
	BboxWidth  int32 `parquet:"bbox_width"`
	BboxHeight int32 `parquet:"bbox_height"`
}

// Tables holds the normalized form of a Document, one slice per entity in
// source record order.
type Tables struct {
	Categories  []CategoryRow
	Videos      []VideoRow
	Images      []ImageRow
	Tracks      []TrackRow
	Annotations []AnnotationRow
}
