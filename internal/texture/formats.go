// Package texture converts image textures to PNG and shrinks PNGs with
// pngquant.
package texture

import (
	"path/filepath"
	"strings"

	// Decoders for the formats Convert can read.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// imageExtensions are the texture formats Convert considers.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tga":  true,
	".exr":  true,
	".hdr":  true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".tif":  true,
	".png":  true,
}

// undecodable lists texture formats that are recognised but have no decoder.
var undecodable = map[string]bool{
	".tga": true,
	".exr": true,
	".hdr": true,
}

// IsImage reports whether name has a texture extension (case-insensitive).
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func isPNG(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".png")
}

// Outcome is what happened to one file.
type Outcome string

const (
	OutcomeConverted Outcome = "converted"
	OutcomeOptimized Outcome = "optimized"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string  `json:"path"`
	Output  string  `json:"output,omitempty"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Before  int64   `json:"bytesBefore,omitempty"`
	After   int64   `json:"bytesAfter,omitempty"`
}

// Report collects per-file outcomes in processing order.
type Report struct {
	Dir     string          `json:"dir"`
	Results []FileResult    `json:"results"`
	Counts  map[Outcome]int `json:"counts"`
}

func newReport(dir string, results []FileResult) *Report {
	r := &Report{Dir: dir, Results: results, Counts: map[Outcome]int{}}
	for _, res := range results {
		r.Counts[res.Outcome]++
	}
	return r
}

// ProgressFunc is called after each file with the number processed so far.
type ProgressFunc func(done, total int, result FileResult)
