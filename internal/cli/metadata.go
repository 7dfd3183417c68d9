package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/metadata"
)

func (a *app) newMetadataCmd() *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Read and write project metadata",
		Long: `Read and write a project's metadata record (project_metadata.json).

Fields: ` + strings.Join(metadata.FieldNames(), ", "),
	}
	metadataCmd.AddCommand(a.newMetadataShowCmd(), a.newMetadataInitCmd(), a.newMetadataSetCmd())
	return metadataCmd
}

func (a *app) newMetadataShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [dir]",
		Short: "Show a project's metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			store := a.metadataStore()
			rec, err := store.Load(dir)
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(rec)
			}

			PrintSection("Project Metadata")
			PrintLabelValue("File", store.Path(dir))
			fmt.Println()
			for _, key := range metadata.FieldNames() {
				if value, _ := rec.Get(key); value != "" {
					PrintLabelValue(key, value)
				}
			}
			return nil
		},
	}
}

// fieldFlags registers one string flag per metadata field ("project-name"
// for project_name) and returns a function that copies the flags that were
// set into a record.
func fieldFlags(cmd *cobra.Command) func(rec *metadata.Record) error {
	values := map[string]*string{}
	for _, key := range metadata.FieldNames() {
		values[key] = cmd.Flags().String(strings.ReplaceAll(key, "_", "-"), "", "Value for "+key)
	}
	return func(rec *metadata.Record) error {
		for key, v := range values {
			if cmd.Flags().Changed(strings.ReplaceAll(key, "_", "-")) {
				if err := rec.Set(key, *v); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func (a *app) newMetadataInitCmd() *cobra.Command {
	var apply func(rec *metadata.Record) error

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a project's metadata record",
		Example: `  mediakit metadata init ./moth --project-name Moth --project-code MTH \
    --client "Night Owl" --pipeline-version 1.0 --lead-artist Ana`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			rec := &metadata.Record{}
			if err := apply(rec); err != nil {
				return err
			}
			store := a.metadataStore()
			if err := store.Init(dir, rec); err != nil {
				return err
			}
			a.logger.Info().Str("path", store.Path(dir)).Msg("metadata created")
			if a.opts.json {
				return a.outputJSON(rec)
			}
			PrintSuccess("Saved metadata to " + store.Path(dir))
			return nil
		},
	}
	apply = fieldFlags(cmd)
	return cmd
}

func (a *app) newMetadataSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <dir> <field=value>...",
		Short:   "Update fields of a project's metadata",
		Example: `  mediakit metadata set ./moth client="Night Owl" pipeline_version=1.1`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args[:1])
			if err != nil {
				return err
			}
			store := a.metadataStore()
			rec, err := store.Load(dir)
			if errors.Is(err, metadata.ErrNotFound) {
				rec, err = &metadata.Record{}, nil
			}
			if err != nil {
				return err
			}

			for _, kv := range args[1:] {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid assignment %q: expected field=value", kv)
				}
				if err := rec.Set(key, value); err != nil {
					return err
				}
			}
			if err := store.Save(dir, rec); err != nil {
				return err
			}
			a.logger.Info().Str("path", store.Path(dir)).Int("fields", len(args)-1).Msg("metadata updated")
			if a.opts.json {
				return a.outputJSON(rec)
			}
			PrintSuccess("Saved metadata to " + store.Path(dir))
			return nil
		},
	}
}
