package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Cleaning  CleaningConfig
	Analysis  AnalysisConfig
	Storage   StorageConfig
	History   HistoryConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type CleaningConfig struct {
	FuzzyThreshold     int
	EncodingSampleSize int
}

type AnalysisConfig struct {
	ChurnWindowDays    int
	DiscountSeed       int64
	AffinityMinSupport float64
	AffinityMaxRules   int
}

type StorageConfig struct {
	ScratchDir string
}

type HistoryConfig struct {
	Path string
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/retail-lens")

	viper.SetEnvPrefix("RETAIL_LENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 60)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 52428800)

	viper.SetDefault("cleaning.fuzzyThreshold", 80)
	viper.SetDefault("cleaning.encodingSampleSize", 100000)

	viper.SetDefault("analysis.churnWindowDays", 90)
	viper.SetDefault("analysis.discountSeed", 42)
	viper.SetDefault("analysis.affinityMinSupport", 0.005)
	viper.SetDefault("analysis.affinityMaxRules", 10)

	viper.SetDefault("storage.scratchDir", "./data/uploads")

	viper.SetDefault("history.path", "./data/history.db")

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
