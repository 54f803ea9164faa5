package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/roadsafety/schools-cli/internal/geo"
)

var bboxRadius float64

var bboxCmd = &cobra.Command{
	Use:   "bbox <lat> <lon>",
	Short: "Print the search rectangle around a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "bbox: latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "bbox: longitude %q", args[1])
		}
		radius := bboxRadius
		if radius == 0 {
			radius = cfg.Report.DistanceKM
		}
		return writeBBox(cmd.OutOrStdout(), lat, lon, radius)
	},
}

func writeBBox(w io.Writer, lat, lon, radiusKM float64) error {
	box, err := geo.BoundingBoxAround(lat, lon, radiusKM)
	if err != nil {
		return err
	}
	wkt, err := box.WKT()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "lat_min=%.6f lon_min=%.6f lat_max=%.6f lon_max=%.6f\n%s\n",
		box.MinLat, box.MinLon, box.MaxLat, box.MaxLon, wkt)
	return err
}

func init() {
	bboxCmd.Flags().Float64Var(&bboxRadius, "radius", 0, "radius in km (default report.distance_km)")
	rootCmd.AddCommand(bboxCmd)
}
