package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	cfgpkg "github.com/KaramelBytes/histx/internal/config"
	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/ingest"
	"github.com/KaramelBytes/histx/internal/logger"
	"github.com/KaramelBytes/histx/internal/parser"
	"github.com/KaramelBytes/histx/internal/render"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Dataset flags (override config if set)
	flagMaxRows   int
	flagDecimal   string
	flagThousands string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "histx",
	Short: "histx: explore numeric distributions in CSV/XLSX data",
	Long: `histx loads a tabular dataset (CSV, TSV, XLSX or the bundled sample) and draws
histograms with density overlays for a numeric column, optionally filtered and
grouped by categorical columns. Run it as a web tool (serve) or one-shot (render).`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.histx/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to load, 0 = unlimited (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	applyFlagOverrides()
}

func applyFlagOverrides() {
	f := rootCmd.PersistentFlags()
	if f.Changed("max-rows") && flagMaxRows >= 0 {
		cfg.MaxRows = flagMaxRows
	}
	if f.Changed("decimal") {
		cfg.Decimal = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.Thousands = flagThousands
	}
}

// currentConfig returns the loaded configuration, loading it on first use when the
// command runs without Execute (tests call rootCmd directly).
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	applyFlagOverrides()
	return cfg, nil
}

func datasetOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	switch strings.ToLower(strings.TrimSpace(c.Decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", c.Decimal)
	}
	switch strings.ToLower(c.Thousands) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", c.Thousands)
	}
	if opt.ThousandsSeparator != 0 && opt.DecimalSeparator == 0 {
		opt.DecimalSeparator = '.'
	}
	return opt, nil
}

func drawOptions(c *cfgpkg.Global) render.DrawOptions {
	return render.DrawOptions{
		Width:     vg.Length(c.ChartWidthIn) * vg.Inch,
		RowHeight: vg.Length(c.RowHeightIn) * vg.Inch,
	}
}

func newLogger(c *cfgpkg.Global) logger.Logger {
	return logger.New(c.LogFile, c.Production && !debug)
}

// loadDataset reads a file argument, or the sample when useSample is set
// or no file is given. One-shot commands share the ingestion path of the
// web tool.
func loadDataset(c *cfgpkg.Global, args []string, useSample bool) (*ingest.Result, error) {
	opt, err := datasetOptions(c)
	if err != nil {
		return nil, err
	}
	l := ingest.NewLoader(opt, c.SamplePath, time.Minute, nil)
	if useSample || len(args) == 0 {
		return l.Load(ingest.SourceSample, nil)
	}
	path := args[0]
	if _, err := parser.Lookup(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return l.Load(ingest.SourceUpload, &ingest.Upload{Name: path, Data: data})
}
