package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/sketchsolid/pkg/engine"
	"github.com/chazu/sketchsolid/pkg/export"
	"github.com/chazu/sketchsolid/pkg/feedback"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCmd(o *options) *cobra.Command {
	var (
		out    string
		format string
		depth  float64
		angle  float64
	)
	cmd := &cobra.Command{
		Use:   "export SCRIPT",
		Short: "Export a sketch script as STL, DXF or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			format = strings.ToLower(format)

			sk, err := o.loadScript(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "stl":
				err = o.writeSTL(out, sk, depth, angle)
			case "dxf":
				err = export.WriteDXF(out, sk.Curves)
			case "svg":
				err = o.writeSVG(out, sk)
			default:
				err = fmt.Errorf("unknown export format %q, expected stl, dxf or svg", format)
			}
			if err != nil {
				return err
			}
			o.log.Info("exported", zap.String("format", format), zap.String("path", out))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "stl, dxf or svg (default from the output extension)")
	cmd.Flags().Float64Var(&depth, "depth", 0, "extrusion depth for STL, overriding the script")
	cmd.Flags().Float64Var(&angle, "revolve", 0, "revolve angle in degrees for STL, overriding the script")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// writeSTL builds the solid and writes it. A depth or angle given on the
// command line wins over the script's own extrude or revolve.
func (o *options) writeSTL(path string, sk *engine.Sketch, depth, angle float64) error {
	if depth <= 0 && angle <= 0 {
		depth, angle = sk.Depth, sk.Angle
	}
	if depth <= 0 && angle <= 0 {
		return fmt.Errorf("export: no extrusion depth or revolve angle; add (extrude n) or (revolve deg) to the script or pass --depth or --revolve")
	}
	s, err := o.sessionFor(sk)
	if err != nil {
		return err
	}
	if depth > 0 {
		_, err = s.Extrude("", depth)
	} else {
		_, err = s.Revolve("", angle)
	}
	if err != nil {
		return err
	}
	return export.WriteSTL(path, s.Bodies(), o.kernel)
}

func (o *options) writeSVG(path string, sk *engine.Sketch) (err error) {
	if len(sk.Curves) == 0 {
		return export.ErrNothingToExport
	}
	s, err := o.sessionFor(sk)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	return feedback.WriteSVG(f, feedback.Scene{
		Curves:      sk.Curves,
		Result:      s.Result(),
		Connections: s.Connections(),
	}, feedback.Options{})
}
