package slotline

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	configMutex   sync.RWMutex
	currentConfig *Config
)

// Config is the tunable surface of the coordination core. The numeric thresholds are
// configuration, not invariants.
type Config struct {
	SlotLength          float64           `mapstructure:"slot_length"`
	SlotGap             float64           `mapstructure:"slot_gap"`
	TimeStep            float64           `mapstructure:"time_step"`
	SafetyGap           float64           `mapstructure:"safety_gap"`
	SyncTolerance       float64           `mapstructure:"sync_tolerance"`
	CompletionThreshold float64           `mapstructure:"completion_threshold"`
	SpeedGain           float64           `mapstructure:"speed_gain"`
	MaxAdjust           float64           `mapstructure:"max_adjust"`
	LateralRadius       float64           `mapstructure:"lateral_radius"`
	RerouteDistance     float64           `mapstructure:"reroute_distance"`
	RampMap             map[string]string `mapstructure:"ramp_map"`
}

// DefaultConfig returns the stock parameter set: 8 m slots with 3 m gaps advanced at
// 0.1 s ticks, a 5 m merge safety gap and the usual controller gains.
func DefaultConfig() *Config {
	return &Config{
		SlotLength:          8.0,
		SlotGap:             3.0,
		TimeStep:            0.1,
		SafetyGap:           5.0,
		SyncTolerance:       0.1,
		CompletionThreshold: 0.5,
		SpeedGain:           0.8,
		MaxAdjust:           2.0,
		LateralRadius:       10.0,
		RerouteDistance:     30.0,
		RampMap:             map[string]string{},
	}
}

// LoadConfig reads the YAML configuration at path on top of the defaults and keeps
// watching the file for changes
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := DefaultConfig()
	viper.SetDefault("slot_length", defaults.SlotLength)
	viper.SetDefault("slot_gap", defaults.SlotGap)
	viper.SetDefault("time_step", defaults.TimeStep)
	viper.SetDefault("safety_gap", defaults.SafetyGap)
	viper.SetDefault("sync_tolerance", defaults.SyncTolerance)
	viper.SetDefault("completion_threshold", defaults.CompletionThreshold)
	viper.SetDefault("speed_gain", defaults.SpeedGain)
	viper.SetDefault("max_adjust", defaults.MaxAdjust)
	viper.SetDefault("lateral_radius", defaults.LateralRadius)
	viper.SetDefault("reroute_distance", defaults.RerouteDistance)

	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "Can't read configuration file")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal configuration")
	}

	configMutex.Lock()
	currentConfig = &cfg
	configMutex.Unlock()

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		var newCfg Config
		if err := viper.Unmarshal(&newCfg); err == nil {
			configMutex.Lock()
			currentConfig = &newCfg
			configMutex.Unlock()
		}
	})

	return &cfg, nil
}

// CurrentConfig returns the most recently loaded configuration in a thread-safe way
func CurrentConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	if currentConfig == nil {
		return DefaultConfig()
	}
	return currentConfig
}
