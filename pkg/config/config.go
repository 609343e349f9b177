/*
Package config manages the TOML config for wordfind.

The file lives at [UserConfigDir]/wordfind/config.toml and is created with
defaults on first run. A file with bad values is recovered key by key, and
any key that cannot be read keeps its default.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Search SearchConfig `toml:"search"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxQuery     int `toml:"max_query"`
	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path         string `toml:"path"`
	MaxLineBytes int    `toml:"max_line_bytes"`
}

// SearchConfig holds query engine options.
type SearchConfig struct {
	CacheSize int  `toml:"cache_size"`
	Narrow    bool `toml:"narrow"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	MaxQuery     int  `toml:"max_query"`
	Highlight    bool `toml:"highlight"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if result := utils.CheckDirStatus(filepath.Join(xdg, "wordfind")); result.Writable {
			return filepath.Join(xdg, "wordfind"), nil
		}
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordfind")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordfind")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/wordfind/config.toml
// 3. Builtin defaults
//
// WORDFIND_* environment variables override whichever file was used.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path, err := loadConfigWithPriority(customConfigPath)
	if err != nil {
		return nil, "", err
	}
	config.applyEnvOverrides()
	return config, path, nil
}

func loadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxQuery:     60,
			MaxLimit:     256,
			DefaultLimit: 64,
		},
		Dict: DictConfig{
			Path:         "",
			MaxLineBytes: 1 << 20,
		},
		Search: SearchConfig{
			CacheSize: 1024,
			Narrow:    true,
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			MaxQuery:     60,
			Highlight:    true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every value it can read from a file that failed to
// decode into Config.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	if searchSection, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(searchSection, &config.Search)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "max_line_bytes"); ok {
		dict.MaxLineBytes = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		search.CacheSize = val
	}
	if val, ok := utils.ExtractBool(data, "narrow"); ok {
		search.Narrow = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		cli.MaxQuery = val
	}
	if val, ok := utils.ExtractBool(data, "highlight"); ok {
		cli.Highlight = val
	}
}

// sanitize resets values that cannot be used to their defaults.
// cache_size 0 is valid and disables the cache.
func (c *Config) sanitize() {
	def := DefaultConfig()
	fix := func(name string, val *int, fallback int) {
		if *val <= 0 {
			log.Warnf("Config value %s=%d must be positive, using %d", name, *val, fallback)
			*val = fallback
		}
	}
	fix("server.max_query", &c.Server.MaxQuery, def.Server.MaxQuery)
	fix("server.max_limit", &c.Server.MaxLimit, def.Server.MaxLimit)
	fix("server.default_limit", &c.Server.DefaultLimit, def.Server.DefaultLimit)
	fix("dict.max_line_bytes", &c.Dict.MaxLineBytes, def.Dict.MaxLineBytes)
	fix("cli.default_limit", &c.CLI.DefaultLimit, def.CLI.DefaultLimit)
	fix("cli.max_query", &c.CLI.MaxQuery, def.CLI.MaxQuery)
	if c.Search.CacheSize < 0 {
		log.Warnf("Config value search.cache_size=%d is negative, disabling cache", c.Search.CacheSize)
		c.Search.CacheSize = 0
	}
	if c.Server.DefaultLimit > c.Server.MaxLimit {
		c.Server.DefaultLimit = c.Server.MaxLimit
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
