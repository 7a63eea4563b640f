package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pantryapp"
	"pantryapp/app"
	"pantryapp/pantry"
	"pantryapp/ui"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. When build is nil the pantry is assembled
// from the environment.
func newRootCmd(build func(ctx context.Context) (*app.App, error)) *cobra.Command {
	if build == nil {
		build = func(ctx context.Context) (*app.App, error) {
			opts, err := app.OptionsFromEnv()
			if err != nil {
				return nil, err
			}
			opts.TracerName = pantryapp.TracerNameCLI
			return app.New(ctx, opts)
		}
	}

	// withController mounts a controller for one command and prints the list afterwards.
	withController := func(fn func(ctx context.Context, ctrl *ui.Controller, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.NewController(ctx, nil)
			if err != nil {
				return err
			}
			return fn(ctx, ctrl, cmd.OutOrStdout())
		}
	}

	rootCmd := &cobra.Command{
		Use:          "pantryctl",
		Short:        "Inspect and edit the pantry collection",
		SilenceUsage: true,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every item with its count",
		Args:  cobra.NoArgs,
		RunE: withController(func(ctx context.Context, ctrl *ui.Controller, out io.Writer) error {
			printItems(out, ctrl.Snapshot().Pantry)
			return nil
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add one of NAME, creating it if needed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(func(ctx context.Context, ctrl *ui.Controller, out io.Writer) error {
				if err := ctrl.Add(ctx, strings.Join(args, " ")); err != nil {
					return err
				}
				printItems(out, ctrl.Snapshot().Pantry)
				return nil
			})(cmd, args)
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove one of NAME, deleting it at zero",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(func(ctx context.Context, ctrl *ui.Controller, out io.Writer) error {
				if err := ctrl.Remove(ctx, strings.Join(args, " ")); err != nil {
					return err
				}
				printItems(out, ctrl.Snapshot().Pantry)
				return nil
			})(cmd, args)
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Look QUERY up in the pantry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(func(ctx context.Context, ctrl *ui.Controller, out io.Writer) error {
				query := strings.Join(args, " ")
				ctrl.SetSearchQuery(query)
				printResult(out, ctrl.Search())
				return nil
			})(cmd, args)
		},
	}

	rootCmd.AddCommand(listCmd, addCmd, removeCmd, searchCmd)
	return rootCmd
}

func printItems(out io.Writer, items []pantry.Item) {
	if len(items) == 0 {
		fmt.Fprintln(out, "(pantry is empty)")
		return
	}
	for _, it := range items {
		fmt.Fprintf(out, "%-24s %d\n", it.Name, it.Count)
	}
}

func printResult(out io.Writer, res pantry.SearchResult) {
	if !res.Found {
		fmt.Fprintf(out, "The item %q is not present in the pantry.\n", res.Query)
		return
	}
	fmt.Fprintf(out, "%s\nQuantity: %d\n", res.Item.Name, res.Item.Count)
}
