package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/undeadops/goshort/internal/manager"
)

// withSession opens the store, loads a manager session and runs fn with it.
func (a *app) withSession(ctx context.Context, fn func(*manager.Session) error) error {
	st, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	sess := manager.NewSession(st, manager.WithLogger(a.logger))
	sess.Load(ctx)
	return fn(sess)
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved shortcuts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(sess *manager.Session) error {
				entries := sess.State().Entries
				out := cmd.OutOrStdout()
				if entries.Len() == 0 {
					fmt.Fprintln(out, "No shortcuts saved yet.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, e := range entries.All() {
					fmt.Fprintf(w, "%s\t%s\n", e.Keyword, e.URL)
				}
				return w.Flush()
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <keyword> <url>",
		Short: "Save a shortcut, replacing any with the same keyword",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *manager.Session) error {
				if _, err := sess.Submit(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s -> %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var newKeyword, newURL string

	cmd := &cobra.Command{
		Use:   "edit <keyword>",
		Short: "Rename and/or retarget a shortcut",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newKeyword == "" && newURL == "" {
				return fmt.Errorf("nothing to change: pass --keyword and/or --url")
			}
			return a.withSession(cmd.Context(), func(sess *manager.Session) error {
				state, err := sess.Edit(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				keyword, target := state.Keyword, state.URL
				if newKeyword != "" {
					keyword = newKeyword
				}
				if newURL != "" {
					target = newURL
				}
				if _, err := sess.Submit(cmd.Context(), keyword, target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s -> %s\n", keyword, target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&newKeyword, "keyword", "k", "", "new keyword")
	cmd.Flags().StringVarP(&newURL, "url", "u", "", "new url")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <keyword>",
		Aliases: []string{"delete"},
		Short:   "Delete a shortcut",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *manager.Session) error {
				if _, err := sess.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all shortcuts to a dated JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(sess *manager.Session) error {
				download, err := sess.Export(cmd.Context())
				if err != nil {
					return err
				}
				if output == "-" {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), string(download.Data))
					return err
				}

				path := output
				if path == "" {
					path = download.Filename
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, download.Filename)
				}
				if err := os.WriteFile(path, download.Data, 0644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d shortcuts to %s\n", sess.State().Entries.Len(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write to, - for stdout (default: ./go-shortcut-export-<date>.json)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge shortcuts from a JSON export; imported keywords win",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return a.withSession(cmd.Context(), func(sess *manager.Session) error {
				state, err := sess.Import(cmd.Context(), contents)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s, %d shortcuts saved\n", args[0], state.Entries.Len())
				return nil
			})
		},
	}
}
