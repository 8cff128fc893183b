package mot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
)

// LoadFile reads and parses an annotation file through the given filesystem.
// A path that does not exist yields a *MissingFileError; anything that is
// not a JSON object carrying all RequiredKeys yields a *MalformedInputError.
func LoadFile(fsys fsutil.FileSystem, path string) (*Document, error) {
	if !fsys.Exists(path) {
		return nil, &MissingFileError{Path: path}
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotation file %s: %w", path, err)
	}

	return Parse(data, path)
}

// Parse decodes annotation JSON. path appears in error messages only.
func Parse(data []byte, path string) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedInputError{Path: path, Reason: "invalid JSON", Err: err}
	}

	for _, key := range RequiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, &MalformedInputError{Path: path, Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	doc := &Document{Path: path}
	for key, dst := range map[string]*[]map[string]any{
		EntityCategories:  &doc.Categories,
		EntityVideos:      &doc.Videos,
		EntityImages:      &doc.Images,
		EntityTracks:      &doc.Tracks,
		EntityAnnotations: &doc.Annotations,
	} {
		if err := json.Unmarshal(raw[key], dst); err != nil {
			return nil, &MalformedInputError{Path: path, Reason: fmt.Sprintf("%s is not an array of objects", key), Err: err}
		}
	}

	if msg, ok := raw["info"]; ok {
		doc.Info = msg
	}
	if msg, ok := raw["licenses"]; ok {
		if err := json.Unmarshal(msg, &doc.Licenses); err != nil {
			return nil, &MalformedInputError{Path: path, Reason: "licenses is not an array", Err: err}
		}
	}

	return doc, nil
}

// InferSplit determines the dataset split from an annotation file name the
// same way the published dataset tooling does: "train" wins over "val"
// ("val" also covers "validation"), and anything else falls back to train.
// The second return reports whether the fallback was taken.
func InferSplit(name string) (split string, defaulted bool) {
	switch {
	case strings.Contains(name, "train"):
		return SplitTrain, false
	case strings.Contains(name, "val"):
		return SplitVal, false
	}
	return SplitTrain, true
}
