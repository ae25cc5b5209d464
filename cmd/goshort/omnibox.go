package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/undeadops/goshort/internal/omnibox"
)

func (a *app) controller(ctx context.Context) (*omnibox.Controller, func(), error) {
	st, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	ctrl := omnibox.NewController(st,
		omnibox.WithSearchURL(a.cfg.SearchURL),
		omnibox.WithLogger(a.logger),
	)
	return ctrl, closeStore, nil
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [text]",
		Short: "Show the address-bar suggestions for text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeStore, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			ctrl.OnInputChanged(cmd.Context(), strings.Join(args, " "), func(suggestions []omnibox.Suggestion) {
				for _, s := range suggestions {
					fmt.Fprintf(out, "%s\t%s\n", s.Content, s.Description)
				}
			})
			return nil
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <text>",
		Short: "Print the URL that entering text in the address bar navigates to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeStore, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			nav := omnibox.NavigatorFunc(func(_ context.Context, url string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), url)
				return err
			})
			return ctrl.OnInputEntered(cmd.Context(), strings.Join(args, " "), nav)
		},
	}
}
