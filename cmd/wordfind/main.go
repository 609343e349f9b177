// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordfind substring search server and CLI.

wordfind answers "which words contain this substring" over a plain word list.
It indexes every word in a generalized suffix tree once at startup, after
which each query costs time proportional to the query plus the number of
matches, no matter how large the dictionary is. It can operate as a
MessagePack IPC server for editors and launchers, or as an interactive CLI.

# Usage

Start the server with the dictionary found in the default locations:

	wordfind

Use a specific dictionary and enable debug logging:

	wordfind -dict /usr/share/dict/words -d

Run in CLI mode and show at most 10 words per query:

	wordfind -c -limit 10

# Dictionary

A dictionary is UTF-8 text with one word per line, in any order. The line
number is the word's index, and results are always listed in that order.
Without -dict or a [dict] path in the config, wordfind looks for
small-words.txt, words.txt, words.lst or words in the working directory, its
data/ directory, the executable's data/ directory, the config directory and
finally /usr/share/dict/words.

# Configuration

Runtime configuration is a TOML file, created with defaults if missing:

	[server]
	max_query = 60
	max_limit = 256
	default_limit = 64

	[dict]
	path = ""
	max_line_bytes = 1048576

	[search]
	cache_size = 1024
	narrow = true

	[cli]
	default_limit = 24
	max_query = 60
	highlight = true

# IPC Protocol

The server reads MessagePack requests from stdin and writes responses to
stdout, see package server for the message formats:

	{"id": "r1", "q": "quire", "l": 20}
	{"id": "r1", "m": [{"w": "squire", "i": 0, "o": 1}, ...], "c": 3, "t": 41}

The index is built in the background; searches sent before it is ready get a
503 error, and {"status": "ready"} is written once it is.

# Command Line Flags

	-dict string
	    Dictionary file (default from config, then the search locations)
	-config string
	    Config file (default [UserConfigDir]/wordfind/config.toml)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of words to show per query in CLI mode
	-max int
	    Maximum query length in characters
	-no-highlight
	    Print CLI results without highlighting the match
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bastiangx/wordfind/internal/cli"
	"github.com/bastiangx/wordfind/internal/logger"
	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/bastiangx/wordfind/pkg/config"
	"github.com/bastiangx/wordfind/pkg/dictionary"
	"github.com/bastiangx/wordfind/pkg/query"
	"github.com/bastiangx/wordfind/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordfind"
	gh      = "https://github.com/bastiangx/wordfind"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires the dictionary, the engine and one front end together.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	dictFile := flag.String("dict", "", "Dictionary file, one word per line")
	configFile := flag.String("config", "", "Path to a custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of words to show per query in CLI mode (default from config)")
	maxQuery := flag.Int("max", 0, "Maximum query length in characters (default from config)")
	noHighlight := flag.Bool("no-highlight", false, "Print CLI results without highlighting the match")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Configure(*debugMode)

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	if *maxQuery > 0 {
		appConfig.CLI.MaxQuery = *maxQuery
		appConfig.Server.MaxQuery = *maxQuery
	}
	if *limit > 0 {
		appConfig.CLI.DefaultLimit = *limit
	}
	dictArg := *dictFile
	if dictArg == "" {
		dictArg = appConfig.Dict.Path
	}

	configDir := ""
	if configPath != "" {
		configDir = filepath.Dir(configPath)
	}
	pathResolver := utils.NewPathResolver(configDir)
	if *debugMode {
		for k, v := range pathResolver.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
	}

	dictPath, err := pathResolver.GetDictPath(dictArg)
	if err != nil {
		log.Fatalf("Failed to find dictionary: %v", err)
	}

	store, err := dictionary.Load(dictPath, appConfig.Dict.MaxLineBytes)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}

	engine := query.NewEngine(appConfig.Search.CacheSize, appConfig.Search.Narrow)

	// CLI is mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		elapsed := engine.Build(store)
		log.Debug("Input info:",
			"maxQuery", appConfig.CLI.MaxQuery,
			"limit", appConfig.CLI.DefaultLimit,
			"highlight", appConfig.CLI.Highlight && !*noHighlight,
			"build", elapsed)

		inputHandler := cli.NewInputHandler(engine, appConfig.CLI.MaxQuery, appConfig.CLI.DefaultLimit,
			appConfig.CLI.Highlight && !*noHighlight)
		if err := inputHandler.Start(context.Background()); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	go func() {
		elapsed := engine.Build(store)
		showStartupInfo(dictPath, configPath, engine.Stats(), elapsed)
	}()

	reload := func() (*dictionary.Store, error) {
		return dictionary.Load(dictPath, appConfig.Dict.MaxLineBytes)
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig.Server, reload)
	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Printf("[ %s ] Finds every word containing what you type", AppName)
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dictPath, configPath string, stats map[string]int, buildTime time.Duration) {
	info := logger.NewWithConfig(os.Stderr, "", log.InfoLevel, false, false, log.TextFormatter)

	println("==========")
	println(" wordfind ")
	println("==========")
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("dictionary: ( %s )", dictPath)
	info.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	info.Infof("words: [ %d ] nodes: [ %d ]", stats["totalWords"], stats["nodes"])
	info.Infof("index built in [ %v ]", buildTime.Round(time.Millisecond))
	info.Info("status: ready")
	println("==========")
	println("Press Ctrl+C to exit")
}
