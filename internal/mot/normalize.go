package mot

import (
	"encoding/json"
	"fmt"
	"math"
)

// Normalize validates and flattens every collection of doc into row tables.
// split is stamped on each image row and used to derive file_path. The
// first record failing a required-field or type check aborts with a
// *SchemaValidationError; nothing is coerced silently.
func Normalize(doc *Document, split string) (*Tables, error) {
	t := &Tables{}
	var err error

	if t.Categories, err = normalizeCategories(doc.Categories); err != nil {
		return nil, err
	}
	if t.Videos, err = normalizeVideos(doc.Videos); err != nil {
		return nil, err
	}
	if t.Images, err = normalizeImages(doc.Images, split); err != nil {
		return nil, err
	}
	if t.Tracks, err = normalizeTracks(doc.Tracks); err != nil {
		return nil, err
	}
	if t.Annotations, err = normalizeAnnotations(doc.Annotations); err != nil {
		return nil, err
	}

	return t, nil
}

func normalizeCategories(records []map[string]any) ([]CategoryRow, error) {
	rows := make([]CategoryRow, 0, len(records))
	for i, rec := range records {
		f := fields{entity: EntityCategories, index: i, id: recordID(rec), rec: rec}

		row := CategoryRow{}
		var err error
		if row.ID, err = f.int32("id"); err != nil {
			return nil, err
		}
		if row.Supercategory, err = f.optString("supercategory"); err != nil {
			return nil, err
		}
		if row.Name, err = f.optString("name"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeVideos(records []map[string]any) ([]VideoRow, error) {
	rows := make([]VideoRow, 0, len(records))
	for i, rec := range records {
		// The raw dataset writes the video name under a "name:" key
		// (trailing colon); accept it as an alias for "name".
		if _, ok := rec["name"]; !ok {
			if v, ok := rec["name:"]; ok {
				rec["name"] = v
			}
		}

		f := fields{entity: EntityVideos, index: i, id: recordID(rec), rec: rec}

		row := VideoRow{}
		var err error
		if row.ID, err = f.int32("id"); err != nil {
			return nil, err
		}
		if row.Height, err = f.int32("height"); err != nil {
			return nil, err
		}
		if row.Width, err = f.int32("width"); err != nil {
			return nil, err
		}
		if row.Name, err = f.string("name"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeImages(records []map[string]any, split string) ([]ImageRow, error) {
	rows := make([]ImageRow, 0, len(records))
	for i, rec := range records {
		f := fields{entity: EntityImages, index: i, id: recordID(rec), rec: rec}

		row := ImageRow{}
		var err error
		if row.ID, err = f.int32("id"); err != nil {
			return nil, err
		}
		if row.FileName, err = f.string("file_name"); err != nil {
			return nil, err
		}
		if row.DateTime, err = f.optString("date_time"); err != nil {
			return nil, err
		}
		if row.Height, err = f.int32("height"); err != nil {
			return nil, err
		}
		if row.Width, err = f.int32("width"); err != nil {
			return nil, err
		}
		if row.VideoID, err = f.int32("video_id"); err != nil {
			return nil, err
		}
		if row.FrameIndex, err = f.optInt32("frame_index"); err != nil {
			return nil, err
		}
		if row.Source, err = f.blob("source"); err != nil {
			return nil, err
		}
		if row.Meta, err = f.blob("meta"); err != nil {
			return nil, err
		}

		// Derived columns: the image's location relative to the dataset
		// root, and the split it was converted from.
		filePath := fmt.Sprintf("data/images/%s/%s", split, row.FileName)
		row.FilePath = &filePath
		splitCopy := split
		row.DatasetSplit = &splitCopy

		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeTracks(records []map[string]any) ([]TrackRow, error) {
	rows := make([]TrackRow, 0, len(records))
	for i, rec := range records {
		f := fields{entity: EntityTracks, index: i, id: recordID(rec), rec: rec}

		row := TrackRow{}
		var err error
		if row.ID, err = f.int32("id"); err != nil {
			return nil, err
		}
		if row.CategoryID, err = f.int32("category_id"); err != nil {
			return nil, err
		}
		if row.VideoID, err = f.int32("video_id"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeAnnotations(records []map[string]any) ([]AnnotationRow, error) {
	rows := make([]AnnotationRow, 0, len(records))
	for i, rec := range records {
		f := fields{entity: EntityAnnotations, index: i, id: recordID(rec), rec: rec}

		row := AnnotationRow{}
		var err error
		if row.ID, err = f.int32("id"); err != nil {
			return nil, err
		}
		if row.ImageID, err = f.int32("image_id"); err != nil {
			return nil, err
		}
		if row.CategoryID, err = f.int32("category_id"); err != nil {
			return nil, err
		}
		if row.VideoID, err = f.int32("video_id"); err != nil {
			return nil, err
		}
		if row.TrackID, err = f.int32("track_id"); err != nil {
			return nil, err
		}
		if row.Area, err = f.int32("area"); err != nil {
			return nil, err
		}

		bbox, err := f.bbox()
		if err != nil {
			return nil, err
		}
		row.BboxX, row.BboxY, row.BboxWidth, row.BboxHeight = bbox[0], bbox[1], bbox[2], bbox[3]

		rows = append(rows, row)
	}
	return rows, nil
}

// bboxColumns names the flattened bbox columns in source array order.
var bboxColumns = [4]string{"bbox_x", "bbox_y", "bbox_width", "bbox_height"}

// fields extracts typed values from one raw record, producing
// SchemaValidationErrors with full record context on violation.
type fields struct {
	entity string
	index  int
	id     int64
	rec    map[string]any
}

func (f fields) fail(field, reason string) error {
	return &SchemaValidationError{Entity: f.entity, Index: f.index, ID: f.id, Field: field, Reason: reason}
}

func (f fields) int32(field string) (int32, error) {
	v, ok := f.rec[field]
	if !ok || v == nil {
		return 0, f.fail(field, "is required")
	}
	return f.asInt32(field, v)
}

func (f fields) optInt32(field string) (*int32, error) {
	v, ok := f.rec[field]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := f.asInt32(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f fields) string(field string) (string, error) {
	v, ok := f.rec[field]
	if !ok || v == nil {
		return "", f.fail(field, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", f.fail(field, "must be a string")
	}
	return s, nil
}

func (f fields) optString(field string) (*string, error) {
	v, ok := f.rec[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, f.fail(field, "must be a string")
	}
	return &s, nil
}

// blob serializes a nested value to a compact JSON string. Null and empty
// values collapse to NULL, matching the published dataset conversion.
func (f fields) blob(field string) (*string, error) {
	v, ok := f.rec[field]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 0 {
			return nil, nil
		}
	case []any:
		if len(x) == 0 {
			return nil, nil
		}
	case string:
		if x == "" {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, f.fail(field, "cannot be serialized")
	}
	s := string(b)
	return &s, nil
}

// bbox validates the [x, y, w, h] array and returns it flattened. All four
// values must be non-negative integers.
func (f fields) bbox() ([4]int32, error) {
	var out [4]int32

	v, ok := f.rec["bbox"]
	if !ok || v == nil {
		return out, f.fail("bbox", "is required")
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 4 {
		return out, f.fail("bbox", "must be an array of 4 numbers")
	}

	for j, elem := range arr {
		n, err := f.asInt32(bboxColumns[j], elem)
		if err != nil {
			return out, err
		}
		if n < 0 {
			return out, f.fail(bboxColumns[j], "must be non-negative")
		}
		out[j] = n
	}
	return out, nil
}

func (f fields) asInt32(field string, v any) (int32, error) {
	n, ok := v.(float64)
	if !ok {
		return 0, f.fail(field, "must be an integer")
	}
	if n != math.Trunc(n) {
		return 0, f.fail(field, "must be an integer")
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, f.fail(field, "overflows int32")
	}
	return int32(n), nil
}

// recordID pulls a best-effort id for error messages before full validation.
func recordID(rec map[string]any) int64 {
	if v, ok := rec["id"].(float64); ok && v == math.Trunc(v) {
		return int64(v)
	}
	return -1
}
