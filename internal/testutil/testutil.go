// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers and the synthetic annotation
// document used across package tests, to reduce duplication between test
// files.
package testutil

import (
	"testing"

	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// SampleJSON is a synthetic annotation document small enough to reason
// about by hand: two categories, two videos, three images (two in the
// first video), two single-category tracks, and four annotations spread
// over both tracks. Partitioning it yields two image partitions, two
// track partitions, and two (category, track) annotation partitions.
const SampleJSON = `{
	"info": {"description": "synthetic maritime set", "version": "1.0"},
	"licenses": [{"id": 1, "name": "CC BY 4.0"}],
	"categories": [
		{"id": 1, "name": "swimmer", "supercategory": "person"},
		{"id": 2, "name": "boat", "supercategory": "vehicle"}
	],
	"videos": [
		{"id": 10, "height": 2160, "width": 3840, "name": "DJI_0001"},
		{"id": 20, "height": 1080, "width": 1920, "name:": "DJI_0002"}
	],
	"images": [
		{"id": 100, "file_name": "100.jpg", "date_time": "2020-08-27T12:01:33", "height": 2160, "width": 3840, "video_id": 10, "frame_index": 0, "source": {"drone": "mavic", "altitude": 20}, "meta": {"weather": "sunny"}},
		{"id": 101, "file_name": "101.jpg", "height": 2160, "width": 3840, "video_id": 10, "frame_index": 1, "source": {}, "meta": null},
		{"id": 200, "file_name": "200.jpg", "height": 1080, "width": 1920, "video_id": 20, "frame_index": 0}
	],
	"tracks": [
		{"id": 1, "category_id": 1, "video_id": 10},
		{"id": 2, "category_id": 2, "video_id": 20}
	],
	"annotations": [
		{"id": 1000, "image_id": 100, "category_id": 1, "video_id": 10, "track_id": 1, "area": 120, "bbox": [500, 600, 12, 10]},
		{"id": 1001, "image_id": 101, "category_id": 1, "video_id": 10, "track_id": 1, "area": 143, "bbox": [510, 604, 13, 11]},
		{"id": 1002, "image_id": 200, "category_id": 2, "video_id": 20, "track_id": 2, "area": 7200, "bbox": [0, 300, 120, 60]},
		{"id": 1003, "image_id": 200, "category_id": 2, "video_id": 20, "track_id": 2, "area": 7326, "bbox": [4, 302, 121, 61]}
	]
}`

// SampleTables parses and normalizes SampleJSON for the train split.
func SampleTables(t *testing.T) *mot.Tables {
	t.Helper()
	doc, err := mot.Parse([]byte(SampleJSON), "instances_train.json")
	AssertNoError(t, err)
	tables, err := mot.Normalize(doc, mot.SplitTrain)
	AssertNoError(t, err)
	return tables
}

// SampleDocument parses SampleJSON without normalizing it.
func SampleDocument(t *testing.T) *mot.Document {
	t.Helper()
	doc, err := mot.Parse([]byte(SampleJSON), "instances_train.json")
	AssertNoError(t, err)
	return doc
}
