package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/provision"
)

func (a *app) newProvisionCmd() *cobra.Command {
	var (
		templatesDir string
		templatesMap string
		prefix       string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "provision [dir]",
		Short: "Seed scene templates into a project's leaf folders",
		Long: `Copy a Blender template into every leaf folder of a project.

The template is chosen by the top-level category folder the leaf sits in,
e.g. "<studio> territory_assets" gets Asset.blend. The copy is named after
the leaf folder. Existing scene files are kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("templates-dir") {
				templatesDir = a.settings.TemplatesDir
			}
			if !cmd.Flags().Changed("templates-map") {
				templatesMap = a.settings.TemplatesMap
			}
			if !cmd.Flags().Changed("prefix") {
				prefix = a.settings.StudioPrefix
			}

			templates := provision.DefaultTemplateMap(prefix)
			if templatesMap != "" {
				if templates, err = provision.LoadTemplateMap(templatesMap); err != nil {
					return err
				}
			}

			p := provision.New(a.fs, templatesDir, templates, force, a.logger)
			bar := a.newProgress("Provisioning")
			report, err := p.Run(cmd.Context(), root, func(done, total int, _ provision.LeafResult) {
				bar.Update(done, total)
			})
			bar.Finish()
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(report)
			}
			printProvisionReport(report, templatesDir, templates)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&templatesDir, "templates-dir", "", "Template library (default <MEDIAKIT_ROOT>/templates)")
	f.StringVar(&templatesMap, "templates-map", "", "YAML file mapping category folders to template files")
	f.StringVar(&prefix, "prefix", "", "Studio prefix of the category folders")
	f.BoolVar(&force, "force", false, "Replace existing scene files")
	return cmd
}

func printProvisionReport(report *provision.Report, templatesDir string, templates provision.TemplateMap) {
	PrintSection("Project Provisioning")
	PrintLabelValue("Project", report.Root)
	PrintLabelValue("Templates", templatesDir)

	categories := make([]string, 0, len(templates))
	for c := range templates {
		categories = append(categories, c+" -> "+templates[c])
	}
	sort.Strings(categories)
	PrintList(categories, 2)
	fmt.Println()

	if len(report.Results) == 0 {
		PrintEmptyState("No leaf folders found")
		return
	}
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		detail := r.Reason
		if r.Outcome == provision.OutcomeCreated {
			detail = r.Template
		}
		rows = append(rows, []string{string(r.Outcome), rel(report.Root, r.Leaf), detail})
	}
	PrintTable([]string{"OUTCOME", "FOLDER", "DETAIL"}, rows, 0)

	fmt.Println()
	PrintInfo(fmt.Sprintf("%d created, %d skipped, %d failed",
		report.Counts[provision.OutcomeCreated],
		report.Counts[provision.OutcomeSkipped],
		report.Counts[provision.OutcomeFailed]))
}
