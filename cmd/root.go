/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	config "github.com/tupyy/hwdetect-ng/configuration"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"github.com/tupyy/hwdetect-ng/internal/inventory"
	"github.com/tupyy/hwdetect-ng/internal/pipeline"
	"github.com/tupyy/hwdetect-ng/internal/probe"
	"github.com/tupyy/hwdetect-ng/internal/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile   string
	probeTimeout string
	busNames     string
	rulesFile    string
	outputMode   string
	useSysfs     bool
	failDegraded bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "hwdetect-ng",
	Short: "Detect attached hardware and synthesize a configuration fragment",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.InitConfiguration(cmd, configFile)
	},
	Run: func(cmd *cobra.Command, args []string) {
		logger := setupLogger()
		defer logger.Sync()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		// static tables are validated before any probing begins; a
		// malformed table is fatal here, never mid-pipeline
		table, err := loadRules(config.GetRulesFile())
		if err != nil {
			zap.S().Fatalw("invalid profile rule table", "error", err)
		}
		classifier, err := inventory.NewClassifier()
		if err != nil {
			zap.S().Fatalw("invalid classification table", "error", err)
		}
		lookup := inventory.NewLookup()

		adapters := probe.Adapters(probe.ExecRunner{}, config.GetEnabledBuses(), config.GetSysfsFallback())
		orchestrator := pipeline.New(adapters, inventory.NewAggregator(lookup, classifier), profile.NewMatcher(table), config.GetProbeTimeout())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := orchestrator.Run(ctx)
		if err != nil {
			zap.S().Fatalw("pipeline failed", "error", err)
		}

		switch config.GetOutputMode() {
		case config.OutputInventory:
			printInventory(os.Stdout, result.Inventory, lookup)
		default:
			fmt.Fprint(os.Stdout, result.Fragment.RenderWithHeader(config.GetMachineID()))
		}

		if warnings := result.Warnings(); warnings != nil {
			for _, bus := range result.DegradedBuses() {
				fmt.Fprintf(os.Stderr, "degraded probe %s: %v\n", bus, result.Degraded[bus])
			}
			if config.GetFailDegraded() {
				os.Exit(1)
			}
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "configuration file")
	rootCmd.Flags().StringVar(&probeTimeout, "timeout", "10s", "per-probe timeout")
	rootCmd.Flags().StringVar(&busNames, "buses", "pci,usb,cpu", "comma-separated buses to probe")
	rootCmd.Flags().StringVar(&rulesFile, "rules", "", "profile rule table (defaults to the embedded table)")
	rootCmd.Flags().StringVar(&outputMode, "output", "fragment", "output mode: fragment or inventory")
	rootCmd.Flags().BoolVar(&useSysfs, "sysfs-fallback", false, "enumerate pci through sysfs when lspci is unavailable")
	rootCmd.Flags().BoolVar(&failDegraded, "fail-degraded", false, "exit non-zero when any probe was degraded")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
}

func loadRules(path string) (profile.Table, error) {
	if path == "" {
		return profile.DefaultTable()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Table{}, err
	}
	return profile.LoadTable(data)
}

func printInventory(w io.Writer, inv entity.Inventory, resolver inventory.NameResolver) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUS\tADDRESS\tID\tVENDOR\tNAME\tTAGS")
	for _, d := range inv.Devices {
		vendor := d.VendorID
		if name := resolver.VendorName(d.Key.Bus, d.VendorID); !name.None {
			vendor = name.Value
		}
		name := d.Name
		if d.Inconsistent {
			name += " (inconsistent)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s:%s\t%s\t%s\t%s\n",
			d.Key.Bus, d.Key.Address, d.VendorID, d.DeviceID, vendor, name, strings.Join(d.Tags, ","))
	}
	tw.Flush()
}

func setupLogger() *zap.Logger {
	loggerCfg := &zap.Config{
		Level:    zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	atomicLogLevel, err := zap.ParseAtomicLevel(logLevel)
	if err == nil {
		loggerCfg.Level = atomicLogLevel
	}

	plain, err := loggerCfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}

	return plain
}
