package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"go.uber.org/zap"
)

const (
	prefix = "HWDETECT"

	timeout       = "timeout"
	buses         = "buses"
	rulesFile     = "rules"
	outputMode    = "output"
	sysfsFallback = "sysfs_fallback"
	failDegraded  = "fail_degraded"
	machineID     = "machine_id"

	defaultProbeTimeout = 10 * time.Second

	// OutputFragment prints the synthesized config fragment.
	OutputFragment = "fragment"
	// OutputInventory prints the normalized inventory instead, for
	// diagnostics.
	OutputInventory = "inventory"
)

var v *viper.Viper

func InitConfiguration(cmd *cobra.Command, configFile string) error {
	v = viper.New()

	v.SetEnvPrefix(prefix)
	v.AutomaticEnv() // read in environment variables that match

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)

		err := v.ReadInConfig()
		if err != nil {
			zap.S().Errorw("error", err, "config file", configFile)
			return fmt.Errorf("fail to read config file")
		}
		zap.S().Infof("using config file: %v", v.ConfigFileUsed())
	}

	// Bind the current command's flags to viper
	bindFlags(cmd, v)

	return nil
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// replace - with _ to match yaml format
		flagName := f.Name
		if strings.Contains(f.Name, "-") {
			// Environment variables can't have dashes in them, so bind them to their equivalent
			// keys with underscores.
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			v.BindEnv(f.Name, fmt.Sprintf("%s_%s", prefix, envVarSuffix))
			flagName = strings.ReplaceAll(f.Name, "-", "_")
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		// and the other way around.
		if !f.Changed && v.IsSet(flagName) {
			val := v.Get(flagName)
			cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
		} else if f.Changed && !v.IsSet(flagName) {
			v.Set(flagName, f.Value.String())
		}
	})
}

func GetProbeTimeout() time.Duration {
	if !v.IsSet(timeout) {
		return defaultProbeTimeout
	}

	return v.GetDuration(timeout)
}

// GetEnabledBuses returns the buses to probe, in the fixed bus order.
// Unknown bus names are skipped with a warning.
func GetEnabledBuses() []entity.Bus {
	if !v.IsSet(buses) {
		return entity.Buses
	}

	var requested []entity.Bus
	for _, name := range strings.Split(v.GetString(buses), ",") {
		b := entity.BusFromString(strings.ToLower(strings.TrimSpace(name)))
		if b == entity.UnknownBus {
			zap.S().Warnf("unknown bus %q skipped", name)
			continue
		}
		requested = append(requested, b)
	}

	// fixed bus order regardless of flag order
	var enabled []entity.Bus
	for _, b := range entity.Buses {
		if b.OneOf(requested...) {
			enabled = append(enabled, b)
		}
	}
	return enabled
}

func GetRulesFile() string {
	return v.GetString(rulesFile)
}

func GetOutputMode() string {
	if !v.IsSet(outputMode) {
		return OutputFragment
	}

	return v.GetString(outputMode)
}

func GetSysfsFallback() bool {
	return v.GetBool(sysfsFallback)
}

func GetFailDegraded() bool {
	return v.GetBool(failDegraded)
}

// GetMachineID returns the stable machine id used in the generated
// fragment header, empty when the host does not expose one.
func GetMachineID() string {
	if !v.IsSet(machineID) {
		id, err := machineid.ID()
		if err != nil {
			zap.S().Warnw("machine id unavailable", "error", err)
			return ""
		}

		// save id for the next call
		v.Set(machineID, id)

		return id
	}

	return v.GetString(machineID)
}
