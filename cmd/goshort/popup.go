package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/undeadops/goshort/internal/manager"
	"github.com/undeadops/goshort/internal/tui"
)

func newPopupCmd(a *app) *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "popup",
		Short: "Manage shortcuts in an interactive terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if exportDir == "" {
				if exportDir, err = os.Getwd(); err != nil {
					return err
				}
			}

			// Logs would corrupt the terminal UI.
			sess := manager.NewSession(st)
			return tui.Run(cmd.Context(), sess, exportDir)
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory exports are written to (default: current directory)")
	return cmd
}
