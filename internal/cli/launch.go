package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/launcher"
)

// splitGroups splits args on "--" into one argv per tool, dropping empty
// groups.
func splitGroups(args []string) [][]string {
	var groups [][]string
	var cur []string
	for _, arg := range args {
		if arg == "--" {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, arg)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// toolArgs expands a catalogue name ("File Validation") to its command; any
// other group is passed through as mediakit arguments.
func toolArgs(group []string) []string {
	if t, ok := launcher.Lookup(strings.Join(group, " ")); ok && len(group) == 1 {
		return append([]string(nil), t.Args...)
	}
	return group
}

func (a *app) newLaunchCmd() *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "launch <tool args>... [-- <tool args>...]",
		Short: "Run several tools at once and stop them together",
		Long: `Start each "--" separated group of arguments as its own mediakit process.

The tools run side by side with their output interleaved. Ctrl-C stops them
all: each gets a terminate signal, and whatever is still running after the
grace period is killed.`,
		Example: `  mediakit launch validate watch ./moth -- task list -C ./moth`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := splitGroups(args)
			if len(groups) == 0 {
				return fmt.Errorf("no tools to launch")
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to locate mediakit binary: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sup := launcher.NewSupervisor(exe, a.logger)
			for _, g := range groups {
				argv := toolArgs(g)
				p, err := sup.Start(argv...)
				if err != nil {
					sup.Shutdown(grace)
					return err
				}
				a.logger.Info().Int("pid", p.PID).Strs("args", argv).Msg("tool started")
			}

			exits, err := sup.Wait(ctx)
			interrupted := err != nil
			if interrupted {
				a.logger.Info().Int("running", len(sup.Running())).Msg("stopping tools")
				exits = sup.Shutdown(grace)
			}

			failed := 0
			for _, e := range exits {
				if e.ExitCode != 0 {
					failed++
				}
			}

			if a.opts.json {
				if err := a.outputJSON(map[string]interface{}{"interrupted": interrupted, "exits": exits}); err != nil {
					return err
				}
			} else {
				printExits(exits)
			}
			if failed > 0 && !interrupted {
				return fmt.Errorf("%s failed", PrintCount(failed, "tool", "tools"))
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().DurationVar(&grace, "grace", launcher.DefaultGracePeriod, "Time tools get to exit before being killed")
	return cmd
}

func printExits(exits []launcher.Exit) {
	PrintSection("Tools")
	if len(exits) == 0 {
		PrintEmptyState("No tools ran")
		return
	}
	rows := make([][]string, 0, len(exits))
	for _, e := range exits {
		status := "ok"
		if e.ExitCode != 0 {
			status = "failed"
		}
		rows = append(rows, []string{status, fmt.Sprint(e.PID), fmt.Sprint(e.ExitCode), strings.Join(e.Args, " ")})
	}
	PrintTable([]string{"STATUS", "PID", "EXIT", "COMMAND"}, rows, 0)
}

func (a *app) newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := launcher.Catalog()
			if a.opts.json {
				return a.outputJSON(catalog)
			}
			for _, c := range catalog {
				PrintSection(c.Name)
				rows := make([][]string, 0, len(c.Tools))
				for _, t := range c.Tools {
					rows = append(rows, []string{t.Name, "mediakit " + strings.Join(t.Args, " "), t.Description})
				}
				PrintTable([]string{"TOOL", "COMMAND", "DESCRIPTION"}, rows, -1)
			}
			return nil
		},
	}
}
