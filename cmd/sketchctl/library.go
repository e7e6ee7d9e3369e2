package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/chazu/sketchsolid/pkg/store"
	"github.com/spf13/cobra"
)

func newLibraryCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage saved sketches",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved sketches, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withLibrary(cmd.Context(), func(ctx context.Context, lib *store.Store) error {
					list, err := lib.List(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tPLANE\tCURVES\tUPDATED")
					for _, s := range list {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Orientation, s.CurveCount, s.UpdatedAt.Format("2006-01-02 15:04"))
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "save NAME SCRIPT",
			Short: "Evaluate a script and save its sketch under NAME",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sk, err := o.loadScript(args[1])
				if err != nil {
					return err
				}
				return o.withLibrary(cmd.Context(), func(ctx context.Context, lib *store.Store) error {
					id, err := lib.Save(ctx, store.Record{
						Name:        args[0],
						Orientation: sk.Orientation,
						Offset:      sk.Offset,
						Curves:      sk.Curves,
					})
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "show ID|NAME",
			Short: "Print a saved sketch's curves as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withLibrary(cmd.Context(), func(ctx context.Context, lib *store.Store) error {
					r, err := lib.Load(ctx, args[0])
					if errors.Is(err, store.ErrNotFound) {
						r, err = lib.LoadByName(ctx, args[0])
					}
					if err != nil {
						return err
					}
					data, err := sketch.MarshalCurves(r.Curves)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n%s\n", r.ID, r.Name, r.Orientation, data)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a saved sketch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withLibrary(cmd.Context(), func(ctx context.Context, lib *store.Store) error {
					return lib.Delete(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

// withLibrary opens the configured library for the duration of fn.
func (o *options) withLibrary(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lib, err := store.Open(ctx, o.cfg.Store.Path, o.log.Named("store"))
	if err != nil {
		return err
	}
	defer lib.Close()
	return fn(ctx, lib)
}
