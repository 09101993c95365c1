package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/holocron/internal/paths"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "HOLOCRON"

	cfgKeyDriver      = "driver"
	cfgKeyDSN         = "dsn"
	cfgKeyVariant     = "variant"
	cfgKeySchema      = "schema"
	cfgKeyDataDir     = "data_dir"
	cfgKeyS3Region    = "s3.region"
	cfgKeyS3Endpoint  = "s3.endpoint"
	cfgKeyS3PathStyle = "s3.path_style"

	defaultDriver = types.DriverSQLite
)

// configFile is the shape of the config.yaml written on first run.
type configFile struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn,omitempty"`
	Variant string `yaml:"variant,omitempty"`
	DataDir string `yaml:"data_dir,omitempty"`
	S3      s3File `yaml:"s3"`
}

type s3File struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style"`
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. Values resolve flag > HOLOCRON_* env > file >
// default.
func loadConfig(configDir string, flags *pflag.FlagSet) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir)); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDriver, defaultDriver)
	v.SetDefault(cfgKeyS3Region, "us-east-1")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{cfgKeyDriver, cfgKeyDSN, cfgKeyVariant, cfgKeySchema} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		Driver: defaultDriver,
		S3:     s3File{Region: "us-east-1"},
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# holocron configuration. Flags and HOLOCRON_* variables take precedence.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}
