package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/docs"
	"github.com/elilab/mediakit/internal/metadata"
)

func (a *app) newDocsCmd() *cobra.Command {
	var (
		o        docs.Overrides
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "docs [dir]",
		Short: "Generate project documentation from metadata",
		Long: `Render project_documentation.md from the project's metadata record.

Flags override the matching metadata fields for this rendering only.
Status: ` + strings.Join(docs.StatusChoices, ", ") + `
License: ` + strings.Join(docs.LicenseChoices, ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			rec, err := a.metadataStore().Load(dir)
			if errors.Is(err, metadata.ErrNotFound) {
				a.logger.Warn().Str("dir", dir).Msg("no project metadata, rendering placeholders")
				rec, err = &metadata.Record{}, nil
			}
			if err != nil {
				return err
			}

			if toStdout {
				merged, err := docs.Merge(*rec, o)
				if err != nil {
					return err
				}
				doc, err := docs.Render(merged)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(a.out, doc)
				return err
			}

			path, doc, err := docs.Generate(a.fs, dir, *rec, o)
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(map[string]string{"path": path, "markdown": doc})
			}
			PrintSuccess("Wrote " + path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.Status, "status", "", "Project status")
	f.StringVar(&o.License, "license", "", "License")
	f.StringVar(&o.Synopsis, "synopsis", "", "Synopsis (defaults to the project description)")
	f.StringVar(&o.KeyThemes, "themes", "", "Comma-separated key themes")
	f.StringVar(&o.Contact, "contact", "", "Contact information")
	f.StringVar(&o.Crew, "crew", "", "Crew, one member per line")
	f.StringVar(&o.Acknowledgements, "acknowledgements", "", "Acknowledgements")
	f.BoolVar(&toStdout, "stdout", false, "Print the document instead of writing it")
	return cmd
}
