package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/validation"
)

func (a *app) newValidateCmd() *cobra.Command {
	var withHash bool

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Record and check folder snapshots",
		Long: `Record a snapshot of a folder (chip) and later compare the folder against it.

Files are classified as valid, new, modified or deleted by size and
modification time, and optionally by SHA-256 digest with --hash.`,
	}
	validateCmd.PersistentFlags().BoolVar(&withHash, "hash", false, "Also compare SHA-256 digests")

	validateCmd.AddCommand(
		a.newValidateChipCmd(&withHash),
		a.newValidateCompareCmd(&withHash),
		a.newValidateTreeCmd(&withHash),
		a.newValidateWatchCmd(&withHash),
		a.newValidateSizeCmd(),
	)
	return validateCmd
}

func (a *app) newValidateChipCmd(withHash *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "chip [dir]",
		Short: "Record the folder's current state as its snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			v := a.validator(*withHash)

			var snap *validation.Snapshot
			err = a.spin("Chipping "+root, func() error {
				var err error
				snap, err = v.Chip(cmd.Context(), root)
				return err
			})
			if err != nil {
				return err
			}

			if a.opts.json {
				return a.outputJSON(map[string]interface{}{
					"root":     root,
					"snapshot": v.SnapshotPath(root),
					"files":    len(snap.Files),
				})
			}
			PrintSuccess(fmt.Sprintf("Chipped %s into %s", PrintCount(len(snap.Files), "file", "files"), v.SnapshotPath(root)))
			return nil
		},
	}
}

func (a *app) newValidateCompareCmd(withHash *bool) *cobra.Command {
	var (
		strict  bool
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "compare [dir]",
		Short: "Compare the folder against its snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			result, err := a.compare(cmd.Context(), root, *withHash)
			if err != nil {
				return err
			}

			if a.opts.json {
				if err := a.outputJSON(result); err != nil {
					return err
				}
			} else {
				printComparison(result, showAll)
			}

			if strict && !result.Clean() {
				return errDrift
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any file is not valid")
	cmd.Flags().BoolVar(&showAll, "all", false, "Also list valid files")
	return cmd
}

func (a *app) compare(ctx context.Context, root string, withHash bool) (*validation.Result, error) {
	v := a.validator(withHash)
	var result *validation.Result
	err := a.spin("Comparing "+root, func() error {
		var err error
		result, err = v.Compare(ctx, root)
		return err
	})
	return result, err
}

func printComparison(result *validation.Result, showAll bool) {
	PrintSection("Folder Validation")
	PrintLabelValue("Folder", result.Root)
	if !result.SnapshotFound {
		PrintWarning("No snapshot found; run `mediakit validate chip` first")
	}

	files := result.Files
	if !showAll {
		files = result.Changed()
	}
	if len(files) == 0 {
		fmt.Println()
		PrintSuccess("All files match the snapshot")
		return
	}

	fmt.Println()
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{string(f.Status), f.Path})
	}
	PrintTable([]string{"STATUS", "PATH"}, rows, 0)

	fmt.Println()
	PrintLabelValueWithColor("Valid", fmt.Sprint(result.Counts[validation.StatusValid]), statusColor("valid"))
	PrintLabelValueWithColor("New", fmt.Sprint(result.Counts[validation.StatusNew]), statusColor("new"))
	PrintLabelValueWithColor("Modified", fmt.Sprint(result.Counts[validation.StatusModified]), statusColor("modified"))
	PrintLabelValueWithColor("Deleted", fmt.Sprint(result.Counts[validation.StatusDeleted]), statusColor("deleted"))
}

func (a *app) newValidateTreeCmd(withHash *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [dir]",
		Short: "Show the folder as a tree annotated with file status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			result, err := a.compare(cmd.Context(), root, *withHash)
			if err != nil {
				return err
			}
			dirs, err := validation.ListDirs(root)
			if err != nil {
				return err
			}
			tree := validation.BuildTree(filepath.Base(root), result, dirs)

			if a.opts.json {
				return a.outputJSON(tree)
			}
			tree.Walk(func(n *validation.Node, depth int) {
				indent := strings.Repeat("  ", depth)
				if n.IsDir {
					_, _ = headerColor.Printf("%s%s/\n", indent, n.Name)
					return
				}
				fmt.Printf("%s%s ", indent, n.Name)
				_, _ = statusColor(string(n.Status)).Printf("[%s]\n", n.Status)
			})
			return nil
		},
	}
}

func (a *app) newValidateWatchCmd(withHash *bool) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-compare the folder whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !a.opts.json {
				PrintInfo(fmt.Sprintf("Watching %s (Ctrl-C to stop)", root))
			}
			v := a.validator(*withHash)
			err = v.Watch(ctx, root, debounce, func(result *validation.Result, err error) {
				if err != nil {
					a.logger.Error().Err(err).Str("root", root).Msg("compare failed")
					return
				}
				if a.opts.json {
					_ = a.outputJSON(result)
					return
				}
				printWatchLine(a.clock.Now(), result)
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", validation.DefaultDebounce, "Quiet period before re-comparing")
	return cmd
}

func printWatchLine(now time.Time, result *validation.Result) {
	stamp := dimColor.Sprint(now.Format("15:04:05"))
	if result.Clean() {
		fmt.Printf("%s %s\n", stamp, successColor.Sprint("clean"))
		return
	}
	parts := []string{}
	for _, s := range []validation.Status{validation.StatusNew, validation.StatusModified, validation.StatusDeleted} {
		if n := result.Counts[s]; n > 0 {
			parts = append(parts, statusColor(string(s)).Sprintf("%d %s", n, s))
		}
	}
	fmt.Printf("%s %s\n", stamp, strings.Join(parts, ", "))
}

func (a *app) newValidateSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size [dir]",
		Short: "Print the total size of the folder's files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			size, err := validation.FolderSize(root)
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(map[string]interface{}{"root": root, "bytes": size})
			}
			PrintLabelValue("Folder", root)
			PrintLabelValue("Size", fmt.Sprintf("%s (%d bytes)", formatBytes(size), size))
			return nil
		},
	}
}
