package config

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	settingsType = "yaml"

	// envPrefix is the environment variable prefix for settings overrides.
	envPrefix = "DBBM"

	envKeySeparator = "_"

	defaultMinDeployTime = "30s"
	unlimitedCacheSize   = "-1"
	defaultSQLCmdPath    = "sqlcmd"
)

// SettingsFile is the structure of .dbbm.user.yaml.
// Field tags use mapstructure for viper unmarshalling.
type SettingsFile struct {
	Environment string            `mapstructure:"environment"`
	Databases   DatabasesDTO      `mapstructure:"databases"`
	Cache       CacheDTO          `mapstructure:"cache"`
	SQLCmd      SQLCmdDTO         `mapstructure:"sqlcmd"`
	EnvVars     map[string]string `mapstructure:"-"`
}

// DatabasesDTO holds the server connection and backup source.
type DatabasesDTO struct {
	Connection ConnectionDTO `mapstructure:"connection"`
	Backups    BackupsDTO    `mapstructure:"backups"`
}

// ConnectionDTO holds the server connection parameters.
type ConnectionDTO struct {
	Server       string `mapstructure:"server"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Relocate     bool   `mapstructure:"relocate"`
	RelocatePath string `mapstructure:"relocatePath"`
}

// BackupsDTO locates the release backups.
type BackupsDTO struct {
	Root    string `mapstructure:"root"`
	Pattern string `mapstructure:"pattern"`
}

// CacheDTO configures the state cache.
type CacheDTO struct {
	RootPath      string `mapstructure:"rootPath"`
	MinDeployTime string `mapstructure:"minDeployTime"`
	Disabled      bool   `mapstructure:"disabled"`
	MaxCacheSize  string `mapstructure:"maxCacheSize"`
	AutoGC        bool   `mapstructure:"autoGC"`
	Compression   bool   `mapstructure:"compression"`
}

// SQLCmdDTO configures the SQL client.
type SQLCmdDTO struct {
	Path string `mapstructure:"path"`
}

// SettingsLoader implements ports.SettingsLoader on top of viper.
type SettingsLoader struct {
	// Home is the fallback search directory. Empty means the user home directory.
	Home string
}

// NewSettingsLoader creates a new SettingsLoader.
func NewSettingsLoader() *SettingsLoader {
	return &SettingsLoader{}
}

// LoadSettings loads settings from file, environment and defaults.
// If path is non-empty it is used as the explicit settings file.
// Otherwise .dbbm.user.yaml is searched in projectRoot and the home directory.
// A missing settings file is not an error.
func (l *SettingsLoader) LoadSettings(projectRoot, path string) (*domain.Settings, error) {
	v := viper.New()
	applySettingsDefaults(v, projectRoot)

	v.SetConfigType(settingsType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(domain.UserSettingsName)
		v.AddConfigPath(projectRoot)
		if home := l.home(); home != "" {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
		}
	}

	var file SettingsFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	envVars, err := readEnvVariables(v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	file.EnvVars = envVars

	return file.toDomain(projectRoot)
}

func (l *SettingsLoader) home() string {
	if l.Home != "" {
		return l.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func applySettingsDefaults(v *viper.Viper, projectRoot string) {
	v.SetDefault("environment", "")

	v.SetDefault("databases.connection.server", "")
	v.SetDefault("databases.connection.user", "")
	v.SetDefault("databases.connection.password", "")
	v.SetDefault("databases.connection.relocate", false)
	v.SetDefault("databases.connection.relocatePath", "")

	v.SetDefault("databases.backups.root", "")
	v.SetDefault("databases.backups.pattern", "")

	v.SetDefault("cache.rootPath", domain.DefaultCachePath(projectRoot))
	v.SetDefault("cache.minDeployTime", defaultMinDeployTime)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.maxCacheSize", unlimitedCacheSize)
	v.SetDefault("cache.autoGC", false)
	v.SetDefault("cache.compression", false)

	v.SetDefault("sqlcmd.path", defaultSQLCmdPath)
}

// readEnvVariables decodes envVariables straight from the settings file.
// Viper lowercases map keys, and variable names are case sensitive.
func readEnvVariables(path string) (map[string]string, error) {
	vars := map[string]string{}
	if path == "" {
		return vars, nil
	}

	var raw struct {
		EnvVariables map[string]string `yaml:"envVariables"`
	}
	if err := readAndUnmarshalYAML(path, &raw); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if raw.EnvVariables != nil {
		vars = raw.EnvVariables
	}
	return vars, nil
}

func (f *SettingsFile) toDomain(projectRoot string) (*domain.Settings, error) {
	if f.Databases.Backups.Root == "" {
		return nil, zerr.With(domain.ErrInvalidConfig, "field", "databases.backups.root")
	}
	if f.Databases.Backups.Pattern == "" {
		return nil, zerr.With(domain.ErrInvalidConfig, "field", "databases.backups.pattern")
	}

	pattern, err := compileBackupPattern(f.Databases.Backups.Pattern)
	if err != nil {
		return nil, err
	}

	minDeploy, err := time.ParseDuration(f.Cache.MinDeployTime)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "field", "cache.minDeployTime")
	}

	maxSize, err := parseCacheSize(f.Cache.MaxCacheSize)
	if err != nil {
		return nil, err
	}

	return &domain.Settings{
		Environment: f.Environment,
		Connection: domain.Connection{
			Server:       f.Databases.Connection.Server,
			User:         f.Databases.Connection.User,
			Password:     f.Databases.Connection.Password,
			Relocate:     f.Databases.Connection.Relocate,
			RelocatePath: f.Databases.Connection.RelocatePath,
		},
		Backups: domain.BackupSource{
			Root:    resolvePath(projectRoot, f.Databases.Backups.Root),
			Pattern: pattern,
		},
		EnvVariables: f.EnvVars,
		Cache: domain.CacheSettings{
			Root:          resolvePath(projectRoot, f.Cache.RootPath),
			MinDeployTime: minDeploy,
			Disabled:      f.Cache.Disabled,
			MaxSize:       maxSize,
			AutoGC:        f.Cache.AutoGC,
			Compression:   f.Cache.Compression,
		},
		SQLCmdPath: f.SQLCmd.Path,
	}, nil
}

func compileBackupPattern(expr string) (*regexp.Regexp, error) {
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "field", "databases.backups.pattern")
	}

	for _, group := range []string{"dbName", "release"} {
		if pattern.SubexpIndex(group) < 0 {
			err := zerr.With(domain.ErrInvalidConfig, "field", "databases.backups.pattern")
			return nil, zerr.With(err, "missing_group", group)
		}
	}
	return pattern, nil
}

// parseCacheSize accepts -1 for unlimited or a humanized size such as 50GB.
func parseCacheSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == unlimitedCacheSize {
		return -1, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "field", "cache.maxCacheSize")
	}
	return int64(n), nil //nolint:gosec // sizes beyond MaxInt64 are not realistic
}

var _ ports.SettingsLoader = (*SettingsLoader)(nil)
