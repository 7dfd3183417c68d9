package texture

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// pngquant exit codes that mean the file was left alone on purpose.
const (
	exitSkippedLarger  = 98
	exitQualityTooLow  = 99
	defaultQualitySpan = "65-85"
)

var qualityPresets = map[string]string{
	"very-low": "30-50",
	"low":      "50-70",
	"medium":   "60-80",
	"high":     "70-90",
}

// QualityRange maps a preset name ("very low", "Medium", ...) to a pngquant
// --quality range. Unknown presets get 65-85.
func QualityRange(preset string) string {
	key := strings.ToLower(strings.TrimSpace(preset))
	key = strings.ReplaceAll(key, " ", "-")
	key = strings.ReplaceAll(key, "_", "-")
	if q, ok := qualityPresets[key]; ok {
		return q
	}
	return defaultQualitySpan
}

// ToolMissingError means the external optimiser could not be started.
type ToolMissingError struct {
	Tool string
	Err  error
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("%s is not installed or not in PATH: %v", e.Tool, e.Err)
}

func (e *ToolMissingError) Unwrap() error {
	return e.Err
}

// Runner runs an external command and reports its exit code.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) (exitCode int, output []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run returns a nil error for a non-zero exit; err is set only when the
// command could not run at all.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (int, []byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), out, nil
		}
		return -1, out, err
	}
	return 0, out, nil
}

// Optimizer runs pngquant over a directory tree.
type Optimizer struct {
	runner  Runner
	binary  string
	workers int
	logger  zerolog.Logger
}

// NewOptimizer creates an Optimizer. binary defaults to "pngquant" and
// workers to 1.
func NewOptimizer(runner Runner, binary string, workers int, logger zerolog.Logger) *Optimizer {
	if binary == "" {
		binary = "pngquant"
	}
	if workers < 1 {
		workers = 1
	}
	return &Optimizer{runner: runner, binary: binary, workers: workers, logger: logger}
}

// PNGFiles returns every .png under root, sorted.
func PNGFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && isPNG(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// IsQuantized reports whether the PNG at path is already palette-indexed.
func IsQuantized(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return false, err
	}
	_, paletted := cfg.ColorModel.(color.Palette)
	return paletted, nil
}

// Optimize compresses every PNG under root in place. Palette-indexed files
// are skipped. A missing pngquant aborts the batch with *ToolMissingError.
func (o *Optimizer) Optimize(ctx context.Context, root, preset string, progress ProgressFunc) (*Report, error) {
	if _, err := o.runner.LookPath(o.binary); err != nil {
		return nil, &ToolMissingError{Tool: o.binary, Err: err}
	}

	paths, err := PNGFiles(root)
	if err != nil {
		return nil, err
	}
	quality := QualityRange(preset)
	o.logger.Info().Str("dir", root).Str("quality", quality).Int("files", len(paths)).Int("workers", o.workers).Msg("optimizing textures")

	results := make([]FileResult, len(paths))
	var mu sync.Mutex
	done := 0

	p := pool.New().WithMaxGoroutines(o.workers).WithContext(ctx).WithCancelOnError()
	for i, path := range paths {
		p.Go(func(ctx context.Context) error {
			res, err := o.optimizeOne(ctx, path, quality)
			results[i] = res
			if err != nil {
				return err
			}
			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(paths), res)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		var missing *ToolMissingError
		if errors.As(err, &missing) {
			return nil, missing
		}
		return nil, err
	}

	report := newReport(root, results)
	o.logger.Info().
		Int("optimized", report.Counts[OutcomeOptimized]).
		Int("skipped", report.Counts[OutcomeSkipped]).
		Int("failed", report.Counts[OutcomeFailed]).
		Msg("texture optimization finished")
	return report, nil
}

func (o *Optimizer) optimizeOne(ctx context.Context, path, quality string) (FileResult, error) {
	res := FileResult{Path: path, Output: path}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if info, err := os.Stat(path); err == nil {
		res.Before = info.Size()
	}

	quantized, err := IsQuantized(path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = fmt.Sprintf("cannot read PNG: %v", err)
		return res, nil
	}
	if quantized {
		res.Outcome = OutcomeSkipped
		res.Reason = "already quantized"
		return res, nil
	}

	code, out, err := o.runner.Run(ctx, o.binary,
		"--quality", quality,
		"--force",
		"--ext", ".png",
		"--skip-if-larger",
		path,
	)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return res, &ToolMissingError{Tool: o.binary, Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		return res, nil
	}

	switch code {
	case 0:
		res.Outcome = OutcomeOptimized
		if info, err := os.Stat(path); err == nil {
			res.After = info.Size()
		}
	case exitSkippedLarger:
		res.Outcome = OutcomeSkipped
		res.Reason = "result would be larger"
	case exitQualityTooLow:
		res.Outcome = OutcomeSkipped
		res.Reason = "quality target not met"
	default:
		res.Outcome = OutcomeFailed
		res.Reason = fmt.Sprintf("pngquant exited %d: %s", code, strings.TrimSpace(string(out)))
	}
	return res, nil
}
