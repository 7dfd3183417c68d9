package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/rename"
)

// renameOptions holds the flags of `mediakit rename`.
type renameOptions struct {
	op       string
	format   string
	find     string
	with     string
	text     string
	at       int
	caseMode string
	start    int
	step     int
	padding  int
	ext      string
	property string
	place    string
	flat     bool
	apply    bool
}

// transform builds the transform selected by --op.
func (o *renameOptions) transform(a *app) (rename.Transform, error) {
	switch o.op {
	case "datetime":
		return rename.DateTimePrefix{Format: o.format, Now: a.clock.Now()}, nil
	case "replace":
		return rename.Replace{Find: o.find, With: o.with}, nil
	case "insert":
		return rename.Insert{Text: o.text, Position: o.at}, nil
	case "case":
		mode, err := rename.ParseCaseMode(o.caseMode)
		if err != nil {
			return nil, err
		}
		return rename.ConvertCase{Mode: mode}, nil
	case "number":
		return rename.AutoNumber{Start: o.start, Step: o.step, Padding: o.padding}, nil
	case "remove-ext":
		return rename.RemoveExt{}, nil
	case "change-ext":
		return rename.ChangeExt{Ext: o.ext}, nil
	case "property":
		prop, err := rename.ParseProperty(o.property)
		if err != nil {
			return nil, err
		}
		pos, err := rename.ParsePosition(o.place)
		if err != nil {
			return nil, err
		}
		return rename.AddProperty{Property: prop, Position: pos}, nil
	case "":
		return nil, fmt.Errorf("%w: --op is required", rename.ErrInvalidTransform)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", rename.ErrInvalidTransform, o.op)
	}
}

func (a *app) newRenameCmd() *cobra.Command {
	var opts renameOptions

	cmd := &cobra.Command{
		Use:   "rename [dir]",
		Short: "Rename files in bulk",
		Long: `Rename every file under a directory with one operation.

Without --apply the new names are only previewed. Applied batches are
journaled and can be reversed with "mediakit rename undo".

Operations:
  datetime    prefix the current date/time (--format, strftime style)
  replace     replace text (--find, --with)
  insert      insert text at a position (--text, --at)
  case        convert case (--case upper|lower|title|sentence)
  number      prefix an auto-number (--start, --step, --padding)
  remove-ext  remove the extension
  change-ext  change the extension (--ext)
  property    add a file property (--property name|size|created|modified|type|taken, --place prefix|suffix)`,
		Example: `  mediakit rename ./renders --op number --padding 4
  mediakit rename ./plates --op case --case lower --apply`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			t, err := opts.transform(a)
			if err != nil {
				return err
			}

			files, err := rename.List(root, !opts.flat)
			if err != nil {
				return err
			}
			r := rename.New(a.fs, a.clock, a.logger)
			pairs, err := r.Preview(files, t)
			if err != nil {
				return err
			}

			if !opts.apply {
				if a.opts.json {
					return a.outputJSON(map[string]interface{}{
						"root":      root,
						"operation": t.Describe(),
						"pairs":     pairs,
					})
				}
				printRenamePreview(root, t, pairs)
				return nil
			}

			journal, err := r.Apply(root, pairs)
			if err != nil {
				var collision *rename.CollisionError
				if errors.As(err, &collision) && !a.opts.json {
					PrintError("Rename aborted, nothing was renamed:")
					for _, c := range collision.Conflicts {
						PrintError("  " + c.Path + ": " + c.Reason)
					}
				}
				return err
			}

			if a.opts.json {
				return a.outputJSON(journal)
			}
			PrintSuccess(fmt.Sprintf("Renamed %s (batch %s)", PrintCount(len(journal.Entries), "file", "files"), journal.ID))
			PrintInfo("Undo with: mediakit rename undo " + root)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.op, "op", "", "Operation to apply")
	f.StringVar(&opts.format, "format", rename.DefaultDateTimeFormat, "Date/time format for datetime")
	f.StringVar(&opts.find, "find", "", "Text to find for replace")
	f.StringVar(&opts.with, "with", "", "Replacement text for replace")
	f.StringVar(&opts.text, "text", "", "Text to insert")
	f.IntVar(&opts.at, "at", 0, "Insert position in characters")
	f.StringVar(&opts.caseMode, "case", "", "Case mode: upper, lower, title, sentence")
	f.IntVar(&opts.start, "start", 1, "First number for number")
	f.IntVar(&opts.step, "step", 1, "Increment for number")
	f.IntVar(&opts.padding, "padding", 3, "Digits to zero-pad numbers to")
	f.StringVar(&opts.ext, "ext", "", "New extension for change-ext")
	f.StringVar(&opts.property, "property", "", "File property to add")
	f.StringVar(&opts.place, "place", string(rename.Prefix), "Where to add the property: prefix or suffix")
	f.BoolVar(&opts.flat, "flat", false, "Only rename files directly in the directory")
	f.BoolVar(&opts.apply, "apply", false, "Perform the renames instead of previewing")

	cmd.AddCommand(a.newRenameUndoCmd())
	return cmd
}

func printRenamePreview(root string, t rename.Transform, pairs []rename.Pair) {
	PrintSection("Rename Preview")
	PrintLabelValue("Folder", root)
	PrintLabelValue("Operation", t.Describe())
	fmt.Println()

	rows := [][]string{}
	for _, p := range pairs {
		if p.Changed() {
			rows = append(rows, []string{p.Rel, p.NewName})
		}
	}
	if len(rows) == 0 {
		PrintEmptyState("No file names would change")
		return
	}
	PrintTable([]string{"FILE", "NEW NAME"}, rows, -1)
	fmt.Println()
	PrintInfo(fmt.Sprintf("%s would be renamed. Re-run with --apply to rename.", PrintCount(len(rows), "file", "files")))
}

func (a *app) newRenameUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [dir]",
		Short: "Reverse the last applied rename batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			r := rename.New(a.fs, a.clock, a.logger)
			journal, err := r.Undo(root)
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(journal)
			}
			PrintSuccess(fmt.Sprintf("Restored %s from batch %s", PrintCount(len(journal.Entries), "file", "files"), journal.ID))
			return nil
		},
	}
}
