package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/histx/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set histx configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "port: %d\n", c.Port)
		fmt.Fprintf(out, "body_limit_mb: %d\n", c.BodyLimitMB)
		fmt.Fprintf(out, "default_bins: %d\n", c.DefaultBins)
		fmt.Fprintf(out, "session_ttl_min: %d\n", c.SessionTTLMin)
		fmt.Fprintf(out, "preview_rows: %d\n", c.PreviewRows)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		if c.SamplePath != "" {
			fmt.Fprintf(out, "sample_path: %s\n", c.SamplePath)
		}
		if c.LogFile != "" {
			fmt.Fprintf(out, "log_file: %s\n", c.LogFile)
		}
		fmt.Fprintf(out, "production: %t\n", c.Production)
		fmt.Fprintf(out, "chart_width_in: %.2f\n", c.ChartWidthIn)
		fmt.Fprintf(out, "row_height_in: %.2f\n", c.RowHeightIn)
		if c.Decimal != "" {
			fmt.Fprintf(out, "decimal: %q\n", c.Decimal)
		}
		if c.Thousands != "" {
			fmt.Fprintf(out, "thousands: %q\n", c.Thousands)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		next := *c
		if err := setKey(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*c = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	atof := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch key {
	case "port":
		c.Port, err = atoi()
	case "body_limit_mb":
		c.BodyLimitMB, err = atoi()
	case "default_bins":
		c.DefaultBins, err = atoi()
	case "session_ttl_min":
		c.SessionTTLMin, err = atoi()
	case "preview_rows":
		c.PreviewRows, err = atoi()
	case "max_rows":
		c.MaxRows, err = atoi()
	case "sample_path":
		c.SamplePath = val
	case "log_file":
		c.LogFile = val
	case "production":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for production: %v", val)
		}
		c.Production = b
	case "chart_width_in":
		c.ChartWidthIn, err = atof()
	case "row_height_in":
		c.RowHeightIn, err = atof()
	case "decimal":
		c.Decimal = val
	case "thousands":
		c.Thousands = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
