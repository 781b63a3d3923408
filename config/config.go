package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/huddlechat/huddle/globals"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultAdminUser  = "super"
	defaultChannelDB  = "channels.db"
	defaultDataDir    = "data"
	defaultShrinkSpec = "0 4 * * *"
)

// Config is the global configuration object which is filled via the
// configuration file.
type Config struct {
	PersistenceConfig PersistenceConfig `mapstructure:"persistence"`
	UploadConfig      UploadConfig      `mapstructure:"upload"`
	LogLevel          string            `mapstructure:"log_level"`
	AdminUser         string            `mapstructure:"admin_user"`
}

// PersistenceConfig configures the two stores: the user/group snapshot
// backend (file, sqlite or postgres) and the buntdb channel/message store.
type PersistenceConfig struct {
	Type       string `mapstructure:"type"` // "file", "sqlite" or "postgres"
	DSN        string `mapstructure:"dsn"`  // sqlite/postgres only
	DataDir    string `mapstructure:"data_dir"`
	FlockPath  string `mapstructure:"flock_path"`
	ChannelDB  string `mapstructure:"channel_db"`
	ShrinkSpec string `mapstructure:"shrink_spec"` // cron spec for channel db maintenance
}

// UploadConfig configures the image upload collaborator.
type UploadConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

func GetFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("configuration", pflag.ContinueOnError)
	flagSet.StringP("admin-user", "a", "", "id of the super admin user")
	return flagSet
}

// wordSepNormalizeFunc allows for normalization of the flag names (which use - as a separator)
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.Replace(name, "-", "_", -1))
}

// ReadConfiguration reads and parses the configuration located at
// configPath, which can either point to a single TOML file or to a
// directory, in which case all *.toml files in this directory are
// concatenated. It returns a Config object.
func ReadConfiguration(configPath string, flagSet *pflag.FlagSet) (*Config, error) {
	cfg := Config{}
	flagSet.SetNormalizeFunc(wordSepNormalizeFunc)
	viper.SetDefault("admin_user", defaultAdminUser)
	viper.SetDefault("persistence.type", "file")
	viper.SetDefault("persistence.data_dir", defaultDataDir)
	viper.SetDefault("persistence.channel_db", defaultChannelDB)
	viper.SetDefault("persistence.shrink_spec", defaultShrinkSpec)
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.base_url", "/uploads")
	err := viper.BindPFlags(flagSet)
	if err != nil {
		globals.AppLogger.Error("could not bind flags (ignored)", "error", err)
	}
	viper.SetEnvPrefix("HUDDLE")
	viper.AutomaticEnv()
	if configPath != "" {
		fi, err := os.Stat(configPath)
		if err != nil {
			return nil, err
		}
		contents := make([]byte, 0)
		files := []string{configPath}
		if fi.IsDir() {
			files, err = filepath.Glob(filepath.Join(configPath, "*.toml"))
			if err != nil {
				return nil, err
			}
		}
		for _, configFile := range files {
			fileContents, err := os.ReadFile(configFile)
			if err != nil {
				return nil, err
			}
			contents = append(contents, fileContents...)
			contents = append(contents, '\n')
		}
		viper.SetConfigType("toml")
		err = viper.ReadConfig(bytes.NewBuffer(contents))
		if err != nil {
			globals.AppLogger.Error("could not read config:", "error", err)
		}
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		globals.AppLogger.Error("could not unmarshal config:", "error", err)
	}
	return &cfg, nil
}
