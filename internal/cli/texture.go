package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/texture"
)

func (a *app) newTextureCmd() *cobra.Command {
	textureCmd := &cobra.Command{
		Use:   "texture",
		Short: "Convert and optimise texture images",
	}
	textureCmd.AddCommand(a.newTextureConvertCmd(), a.newTextureOptimizeCmd())
	return textureCmd
}

func (a *app) newTextureConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [dir]",
		Short: "Convert the images in a folder to PNG",
		Long: `Convert every image directly inside a folder to PNG and remove the original.

JPEG, GIF, BMP and TIFF are converted. TGA, EXR and HDR cannot be decoded and
are skipped, as is any image whose PNG already exists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			bar := a.newProgress("Converting")
			report, err := texture.NewConverter(a.fs, a.logger).Convert(cmd.Context(), dir, func(done, total int, _ texture.FileResult) {
				bar.Update(done, total)
			})
			bar.Finish()
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(report)
			}
			printTextureReport("Texture Conversion", report)
			return nil
		},
	}
}

func (a *app) newTextureOptimizeCmd() *cobra.Command {
	var (
		quality  string
		workers  int
		pngquant string
	)

	cmd := &cobra.Command{
		Use:   "optimize [dir]",
		Short: "Compress the PNGs under a folder with pngquant",
		Long: `Compress every PNG under a folder in place with pngquant.

Quality presets: very-low (30-50), low (50-70), medium (60-80), high (70-90).
Palette-indexed PNGs are skipped, as are files pngquant would make larger.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("quality") {
				quality = a.settings.DefaultQuality
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.settings.Workers
			}
			if !cmd.Flags().Changed("pngquant") {
				pngquant = a.settings.PngquantPath
			}

			opt := texture.NewOptimizer(a.runner, pngquant, workers, a.logger)
			bar := a.newProgress("Optimizing")
			report, err := opt.Optimize(cmd.Context(), dir, quality, func(done, total int, _ texture.FileResult) {
				bar.Update(done, total)
			})
			bar.Finish()
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(report)
			}
			printTextureReport("Texture Optimization", report)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&quality, "quality", "medium", "Quality preset: very-low, low, medium, high")
	f.IntVar(&workers, "workers", 4, "Files to compress in parallel")
	f.StringVar(&pngquant, "pngquant", "pngquant", "pngquant binary")
	return cmd
}

func printTextureReport(title string, report *texture.Report) {
	PrintSection(title)
	PrintLabelValue("Folder", report.Dir)
	fmt.Println()

	if len(report.Results) == 0 {
		PrintEmptyState("No images to process")
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		detail := r.Reason
		if detail == "" && r.Before > 0 && r.After > 0 {
			detail = fmt.Sprintf("%s -> %s", formatBytes(r.Before), formatBytes(r.After))
		}
		rows = append(rows, []string{string(r.Outcome), rel(report.Dir, r.Path), detail})
	}
	PrintTable([]string{"OUTCOME", "FILE", "DETAIL"}, rows, 0)

	fmt.Println()
	for _, o := range []texture.Outcome{texture.OutcomeConverted, texture.OutcomeOptimized, texture.OutcomeSkipped, texture.OutcomeFailed} {
		if n := report.Counts[o]; n > 0 {
			PrintLabelValueWithColor(string(o), fmt.Sprint(n), statusColor(string(o)))
		}
	}
}

// rel shortens path for display; it falls back to path when not under base.
func rel(base, path string) string {
	r, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}
