package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/spf13/cobra"
)

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "Inspect sensor readings on a running server",
}

var sensorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known sensor",
	Args:  cobra.NoArgs,
	RunE:  runSensorsList,
}

var sensorsShocksCmd = &cobra.Command{
	Use:   "shocks [sensor-id]",
	Short: "List shock readings, optionally for one sensor",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSensorsShocks,
}

var sensorsTimelineCmd = &cobra.Command{
	Use:   "timeline <sensor-id>",
	Short: "Show the merged timeline of a sensor",
	Args:  cobra.ExactArgs(1),
	RunE:  runSensorsTimeline,
}

var sensorsExportCmd = &cobra.Command{
	Use:   "export <sensor-id>",
	Short: "Download the timeline of a sensor as an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runSensorsExport,
}

var exportOutput string

func init() {
	sensorsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default timeline_<sensor-id>.xlsx)")

	sensorsCmd.AddCommand(sensorsListCmd)
	sensorsCmd.AddCommand(sensorsShocksCmd)
	sensorsCmd.AddCommand(sensorsTimelineCmd)
	sensorsCmd.AddCommand(sensorsExportCmd)
	rootCmd.AddCommand(sensorsCmd)
}

func separator() string {
	return strings.Repeat("=", 60)
}

func runSensorsList(cmd *cobra.Command, args []string) error {
	ids, err := apiClient(cmd).GetSensors(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sensors: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("No sensors found")
		return nil
	}

	fmt.Printf("Found %d sensor(s):\n", len(ids))
	fmt.Println(separator())
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runSensorsShocks(cmd *cobra.Command, args []string) error {
	sensorID := ""
	if len(args) == 1 {
		sensorID = args[0]
	}

	shocks, err := apiClient(cmd).GetShocks(cmd.Context(), sensorID)
	if err != nil {
		return fmt.Errorf("failed to list shocks: %w", err)
	}

	if len(shocks) == 0 {
		fmt.Println("No shock readings found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tSENSOR\tACCEL X\tACCEL Y\tACCEL Z\tSHOCK")
	for _, s := range shocks {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%.3f\t%t\n",
			models.RenderTimestamp(s.Timestamp), s.SensorID, s.AccelX, s.AccelY, s.AccelZ, s.ShockDetected)
	}
	return tw.Flush()
}

func runSensorsTimeline(cmd *cobra.Command, args []string) error {
	points, err := apiClient(cmd).GetTimeline(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch timeline: %w", err)
	}

	if len(points) == 0 {
		fmt.Printf("No readings for sensor %s\n", args[0])
		return nil
	}

	fmt.Printf("Timeline for sensor %s (%d point(s)):\n", args[0], len(points))
	fmt.Println(separator())

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tTEMPERATURE\tHUMIDITY\tSHOCK")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Timestamp, floatOrDash(p.Temperature), floatOrDash(p.Humidity), intOrDash(p.Shock))
	}
	return tw.Flush()
}

func runSensorsExport(cmd *cobra.Command, args []string) error {
	path := exportOutput
	if path == "" {
		path = "timeline_" + args[0] + ".xlsx"
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := apiClient(cmd).ExportTimeline(cmd.Context(), args[0], f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to export timeline: %w", err)
	}

	fmt.Printf("✓ Wrote %s (%d bytes)\n", path, n)
	return nil
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
