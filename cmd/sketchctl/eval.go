package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEvalCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval SCRIPT",
		Short: "Evaluate a sketch script and report its contour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := o.loadScript(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 1, ' ', 0)
			fmt.Fprintf(w, "plane:\t%s\n", sk.Orientation)
			fmt.Fprintf(w, "offset:\t%g %g %g\n", sk.Offset.X, sk.Offset.Y, sk.Offset.Z)
			fmt.Fprintf(w, "curves:\t%d\n", len(sk.Curves))
			fmt.Fprintf(w, "closed:\t%t\n", sk.Result.Closed)
			fmt.Fprintf(w, "classification:\t%s\n", sk.Result.Classification)
			if sk.Depth > 0 {
				fmt.Fprintf(w, "depth:\t%g\n", sk.Depth)
			}
			if sk.Angle > 0 {
				fmt.Fprintf(w, "revolve:\t%g\n", sk.Angle)
			}
			for _, g := range sk.Result.Gaps {
				fmt.Fprintf(w, "gap:\t%g %g\n", g.X, g.Y)
			}
			return w.Flush()
		},
	}
}
