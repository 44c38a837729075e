package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sharebox-go/internal/selection"
	"sharebox-go/internal/storage"
)

func newDownloadsCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "downloads [PREFIX]",
		Short: "List received files in the download storage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			cfg := a.cfg.Storage
			if dir != "" {
				cfg.Provider = "local"
				cfg.LocalPath = dir
			}
			sink, err := storage.NewSink(cfg)
			if err != nil {
				return err
			}
			defer sink.Close()

			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			files, err := sink.ListFiles(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No files.")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(out, "%-10s %-24s %s  %s\n",
					selection.FormatSize(f.Size), f.ContentType,
					humanize.Time(f.ModifiedTime), sink.Location(f.Name))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "List this directory instead of the configured storage")
	return cmd
}
