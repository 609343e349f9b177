package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrDictNotFound is returned when no candidate dictionary path exists.
var ErrDictNotFound = errors.New("dictionary file not found")

// DefaultDictNames are tried, in order, when no dictionary path is given.
var DefaultDictNames = []string{"small-words.txt", "words.txt", "words.lst", "words"}

// systemDict is the word list most unix systems ship.
const systemDict = "/usr/share/dict/words"

// PathResolver finds the dictionary file relative to the places a user is
// likely to have put it.
type PathResolver struct {
	executableDir string
	workDir       string
	configDir     string
}

// NewPathResolver creates a resolver rooted at the current working
// directory, the executable's directory and configDir.
func NewPathResolver(configDir string) *PathResolver {
	pr := &PathResolver{configDir: configDir}

	if execDir, err := GetExecutableDir(); err == nil {
		pr.executableDir = execDir
	} else {
		log.Warnf("Could not determine executable directory: %v", err)
	}
	if cwd, err := os.Getwd(); err == nil {
		pr.workDir = cwd
	}

	log.Debugf("PathResolver initialized: cwd=%s, execDir=%s, configDir=%s",
		pr.workDir, pr.executableDir, pr.configDir)
	return pr
}

// Candidates lists the paths GetDictPath tries, in order.
func (pr *PathResolver) Candidates(userPath string) []string {
	if userPath != "" && filepath.IsAbs(userPath) {
		return []string{userPath}
	}

	var candidates []string
	add := func(dir string, names ...string) {
		if dir == "" {
			return
		}
		for _, name := range names {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	if userPath != "" {
		add(pr.workDir, userPath)
		add(pr.executableDir, userPath)
		add(pr.configDir, userPath)
		return candidates
	}

	add(pr.workDir, DefaultDictNames...)
	if pr.workDir != "" {
		add(filepath.Join(pr.workDir, "data"), DefaultDictNames...)
	}
	if pr.executableDir != "" {
		add(filepath.Join(pr.executableDir, "data"), DefaultDictNames...)
	}
	add(pr.configDir, DefaultDictNames...)
	return append(candidates, systemDict)
}

// GetDictPath resolves the dictionary file. An empty userPath searches the
// default names.
func (pr *PathResolver) GetDictPath(userPath string) (string, error) {
	candidates := pr.Candidates(userPath)
	for _, path := range candidates {
		if FileExists(path) {
			log.Debugf("Found dictionary: %s", path)
			return path, nil
		}
		log.Debugf("Dictionary candidate not found: %s", path)
	}
	return "", fmt.Errorf("%w (tried %s)", ErrDictNotFound, strings.Join(candidates, ", "))
}

// GetConfigDir returns the config directory
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	info := map[string]string{
		"executable_dir": pr.executableDir,
		"current_dir":    pr.workDir,
		"config_dir":     pr.configDir,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
	}
	for _, envVar := range []string{"HOME", "XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
