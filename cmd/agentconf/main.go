package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/lherron/agentconf/internal/config"
	"github.com/lherron/agentconf/internal/logger"
	"github.com/lherron/agentconf/internal/remotekv"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	var (
		configPath string
		remoteURL  string
		namespace  string
		mandatory  string
		timeout    time.Duration
		noRemote   bool
	)

	flag.StringVar(&configPath, "c", "", "YAML config file path")
	flag.StringVar(&configPath, "config", "", "YAML config file path (alias)")
	flag.StringVar(&remoteURL, "remote-url", "", "Remote key-value store base URL")
	flag.StringVar(&namespace, "namespace", "", "Remote key-value namespace")
	flag.StringVar(&mandatory, "mandatory", "", "Comma-separated sections that must resolve")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall resolution timeout (e.g., 10s, 1m)")
	flag.BoolVar(&noRemote, "no-remote", false, "Disable the remote key-value layer")
	flag.Parse()

	log := logger.NewLogger("agentconf")

	opts := []config.Option{config.WithLogger(log)}
	if configPath != "" {
		opts = append(opts, config.WithFile(configPath))
	}
	if noRemote {
		opts = append(opts, config.WithoutRemote())
	}
	if remoteURL != "" {
		client, err := remotekv.NewClient(remotekv.ClientConfig{BaseURL: remoteURL})
		if err != nil {
			log.Fatal().Err(err).Msg("error configuring remote store")
		}
		opts = append(opts, config.WithRemote(client))
	}
	if namespace != "" {
		opts = append(opts, config.WithNamespace(namespace))
	}
	for _, name := range strings.Split(mandatory, ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts = append(opts, config.WithMandatory(name))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("error resolving configuration")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	for _, d := range cfg.Diagnostics {
		switch d.Severity {
		case config.SeverityError:
			log.Error().Str("section", d.Section).Str("key", d.Key).Msg(d.Message)
		default:
			log.Warn().Str("section", d.Section).Str("key", d.Key).Msg(d.Message)
		}
	}

	log.Info().
		Strs("sections", cfg.EnabledSections()).
		Int("diagnostics", len(cfg.Diagnostics)).
		Msg("configuration resolved")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
