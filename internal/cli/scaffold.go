package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/scaffold"
)

func (a *app) newScaffoldCmd() *cobra.Command {
	var (
		name       string
		layoutFile string
		characters []string
		locations  []string
		assets     []string
	)

	cmd := &cobra.Command{
		Use:   "scaffold [parent-dir]",
		Short: "Create a project folder structure",
		Long: `Create <parent-dir>/<name> with characters, locations, assets, scripts and
misc folders. Locations and assets take sub-folders as "name=sub1,sub2".

A YAML layout file can describe the whole project; flags add to it.
Running scaffold again only creates what is missing.`,
		Example: `  mediakit scaffold ./projects --name moth --character hero --location "forest=clearing,river"
  mediakit scaffold ./projects --layout moth.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := dirArg(args)
			if err != nil {
				return err
			}

			layout := &scaffold.Layout{}
			if layoutFile != "" {
				if layout, err = scaffold.LoadLayout(layoutFile); err != nil {
					return err
				}
			}
			if name != "" {
				layout.Name = name
			}
			layout.Characters = append(layout.Characters, characters...)
			for _, group := range locations {
				n, subs, err := scaffold.ParseGroup(group)
				if err != nil {
					return err
				}
				layout.Locations = scaffold.AddGroup(layout.Locations, n, subs)
			}
			for _, group := range assets {
				n, subs, err := scaffold.ParseGroup(group)
				if err != nil {
					return err
				}
				layout.Assets = scaffold.AddGroup(layout.Assets, n, subs)
			}

			result, err := scaffold.New(a.fs, a.logger).Create(parent, layout)
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(result)
			}
			printScaffoldResult(result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Project name")
	f.StringVar(&layoutFile, "layout", "", "YAML layout file")
	f.StringSliceVar(&characters, "character", nil, "Character folder (repeatable or comma-separated)")
	f.StringArrayVar(&locations, "location", nil, `Location with sub-folders, "name=sub1,sub2" (repeatable)`)
	f.StringArrayVar(&assets, "asset", nil, `Asset with sub-folders, "name=sub1,sub2" (repeatable)`)

	cmd.AddCommand(a.newScaffoldDCCCmd())
	return cmd
}

func printScaffoldResult(result *scaffold.Result) {
	if len(result.Created) == 0 {
		PrintInfo("Project structure already complete: " + result.Root)
		return
	}
	PrintSuccess(fmt.Sprintf("Created %s in %s", PrintCount(len(result.Created), "folder", "folders"), result.Root))
	PrintList(result.Created, 1)
	for _, f := range result.Files {
		PrintSuccess("Wrote " + f)
	}
}

func (a *app) newScaffoldDCCCmd() *cobra.Command {
	var opts scaffold.DCCOptions

	cmd := &cobra.Command{
		Use:   "dcc",
		Short: "Create a Blender project folder with a stub scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := scaffold.New(a.fs, a.logger).CreateDCC(opts)
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(result)
			}
			printScaffoldResult(result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Name, "name", "", "Project name (required)")
	f.StringVar(&opts.Path, "path", "", "Directory to create the project in (required)")
	f.StringVar(&opts.RenderPath, "render-path", "", "Render output path (required)")
	f.StringVar(&opts.WorkingUnits, "units", "Metric", "Working units")
	f.StringVar(&opts.LibraryPath, "library-path", "", "Asset library path")
	return cmd
}
