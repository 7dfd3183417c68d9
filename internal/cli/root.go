package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// SetVersion sets the version reported by --version and `mediakit version`.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

var commandGroups = []struct{ id, title string }{
	{"project-structure", "Project Structure:"},
	{"automation", "Project Automation:"},
	{"data", "Data Management:"},
	{"control", "Control:"},
	{"cli-tooling", "CLI & Tooling:"},
}

// newRootCmd builds the full command tree around a fresh app.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mediakit",
		Version: version,
		Short:   "Media pipeline toolkit for animation projects",
		Long: `mediakit is a toolkit for small animation studio pipelines.

It scaffolds project folders, renames files in batches, converts and optimises
textures, keeps project metadata and documentation, tracks artist tasks,
seeds scene templates and validates folders against a recorded snapshot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.SetHelpFunc(customHelpFunc)

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&a.opts.json, "json", false, "Output in JSON format")
	pf.StringVar(&a.opts.configFile, "config", "", "Config file (default ~/.mediakit.yaml)")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Verbose logging")
	pf.BoolVarP(&a.opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	pf.BoolVar(&a.opts.noColor, "no-color", false, "Disable colored output")

	for _, g := range commandGroups {
		rootCmd.AddGroup(&cobra.Group{ID: g.id, Title: g.title})
	}

	add := func(group string, cmds ...*cobra.Command) {
		for _, c := range cmds {
			c.GroupID = group
			rootCmd.AddCommand(c)
		}
	}
	add("project-structure", a.newScaffoldCmd(), a.newMetadataCmd(), a.newDocsCmd())
	add("automation", a.newRenameCmd(), a.newTextureCmd(), a.newProvisionCmd())
	add("data", a.newTaskCmd(), a.newValidateCmd())
	add("control", a.newLaunchCmd(), a.newToolsCmd())
	add("cli-tooling", a.newConfigCmd(), newVersionCmd(), newCompletionCmd(rootCmd))

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				return cmd.Root().Help()
			}
			return target.Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mediakit CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate a shell completion script",
		Long: `Generate a completion script for bash, zsh, fish or powershell.
Source the output from your shell profile to enable tab completion.`,
	}
	shells := []struct {
		name string
		gen  func(w io.Writer) error
	}{
		{"bash", rootCmd.GenBashCompletion},
		{"zsh", rootCmd.GenZshCompletion},
		{"fish", func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) }},
		{"powershell", rootCmd.GenPowerShellCompletionWithDesc},
	}
	for _, sh := range shells {
		completionCmd.AddCommand(&cobra.Command{
			Use:                   sh.name,
			Short:                 "Generate the completion script for " + sh.name,
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return sh.gen(cmd.OutOrStdout())
			},
		})
	}
	return completionCmd
}

// customHelpFunc renders help with colored group titles and the commands of
// each group listed under it.
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if text := cmp.Or(cmd.Long, cmd.Short); text != "" {
		help.WriteString(text + "\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:") + "\n")
	fmt.Fprintf(&help, "  %s\n", cmd.UseLine())
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "  %s [command]\n", cmd.CommandPath())
	}
	help.WriteString("\n")

	if cmd.Example != "" {
		help.WriteString(sectionTitleColor.Sprint("Examples:") + "\n" + cmd.Example + "\n\n")
	}

	for _, group := range cmd.Groups() {
		writeCommandList(&help, groupTitleColor.Sprint(group.Title), cmd.Commands(), group.ID)
	}
	title := "Additional Commands:"
	if len(cmd.Groups()) == 0 {
		title = "Available Commands:"
	}
	writeCommandList(&help, sectionTitleColor.Sprint(title), cmd.Commands(), "")

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:") + "\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

// writeCommandList writes the visible commands in groupID under title. Nothing
// is written when the group has no visible commands.
func writeCommandList(w *strings.Builder, title string, cmds []*cobra.Command, groupID string) {
	var lines []string
	for _, c := range cmds {
		if c.GroupID == groupID && !c.Hidden && c.Deprecated == "" {
			lines = append(lines, fmt.Sprintf("  %-11s %s", c.Name(), c.Short))
		}
	}
	if len(lines) == 0 {
		return
	}
	w.WriteString(title + "\n" + strings.Join(lines, "\n") + "\n\n")
}

// ExecuteContext builds the command tree and runs it with os.Args under ctx.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd(newApp()).ExecuteContext(ctx)
}
