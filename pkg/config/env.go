package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

// Environment variables that override the config file.
const (
	EnvDictPath  = "WORDFIND_DICT"
	EnvCacheSize = "WORDFIND_CACHE_SIZE"
	EnvNarrow    = "WORDFIND_NARROW"
)

func (c *Config) applyEnvOverrides() {
	if env := os.Getenv(EnvDictPath); env != "" {
		c.Dict.Path = env
	}
	if env := os.Getenv(EnvCacheSize); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			c.Search.CacheSize = n
		} else {
			log.Warnf("Ignoring %s=%q: not a non-negative integer", EnvCacheSize, env)
		}
	}
	if env := os.Getenv(EnvNarrow); env != "" {
		if b, err := strconv.ParseBool(env); err == nil {
			c.Search.Narrow = b
		} else {
			log.Warnf("Ignoring %s=%q: not a boolean", EnvNarrow, env)
		}
	}
}
