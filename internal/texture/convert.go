package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elilab/mediakit/internal/fsops"
)

// Converter turns the textures in one directory into PNGs.
type Converter struct {
	fs     fsops.FS
	logger zerolog.Logger
}

// NewConverter creates a Converter.
func NewConverter(fsys fsops.FS, logger zerolog.Logger) *Converter {
	return &Converter{fs: fsys, logger: logger}
}

// Candidates returns the non-PNG textures directly inside dir, sorted.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsImage(e.Name()) || isPNG(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Convert writes <stem>.png next to every candidate texture in dir and
// removes the original once the PNG is on disk. Files that cannot be decoded
// or whose PNG name is taken are skipped; other errors mark the file failed
// and the batch continues.
func (c *Converter) Convert(ctx context.Context, dir string, progress ProgressFunc) (*Report, error) {
	paths, err := Candidates(dir)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return newReport(dir, results), err
		}
		res := c.convertOne(path)
		results = append(results, res)
		c.logger.Debug().Str("path", path).Str("outcome", string(res.Outcome)).Str("reason", res.Reason).Msg("texture processed")
		if progress != nil {
			progress(i+1, len(paths), res)
		}
	}

	report := newReport(dir, results)
	c.logger.Info().
		Str("dir", dir).
		Int("converted", report.Counts[OutcomeConverted]).
		Int("skipped", report.Counts[OutcomeSkipped]).
		Int("failed", report.Counts[OutcomeFailed]).
		Msg("texture conversion finished")
	return report, nil
}

func (c *Converter) convertOne(path string) FileResult {
	res := FileResult{Path: path}
	ext := strings.ToLower(filepath.Ext(path))
	if undecodable[ext] {
		res.Outcome = OutcomeSkipped
		res.Reason = fmt.Sprintf("no decoder for %s", ext)
		return res
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	res.Output = out
	if exists, err := c.fs.Exists(out); err != nil || exists {
		res.Outcome = OutcomeSkipped
		res.Reason = "output already exists"
		return res
	}

	data, err := c.fs.ReadFile(path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		return res
	}
	res.Before = int64(len(data))

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		res.Outcome = OutcomeSkipped
		res.Reason = fmt.Sprintf("cannot decode: %v", err)
		return res
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = fmt.Sprintf("failed to encode PNG: %v", err)
		return res
	}
	if err := c.fs.AtomicWrite(out, buf.Bytes(), 0644); err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		return res
	}
	res.After = int64(buf.Len())

	if err := c.fs.Remove(path); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("converted but failed to remove original")
		res.Reason = "original not removed"
	}
	res.Outcome = OutcomeConverted
	return res
}
