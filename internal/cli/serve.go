// Package cli provides the generator daemon commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/builderd"
	"github.com/opencode-ai/pipebuilder/internal/config"
)

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pingCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind address (default: daemon.hostname)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: daemon.port)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generator daemon",
	Long: `Run the Builder gRPC service.

The daemon serves block categories and generates scripts on behalf of
clients configured with generator.mode: remote. It always generates
locally, even when this machine's config points at another daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		cfg := daemonConfig(GetConfig())

		b, err := newBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		daemon, err := builderd.New(cfg, logger("builderd"), builderd.Options{
			Hostname:  serveHost,
			Port:      servePort,
			Version:   version,
			Catalog:   b.Catalog,
			Generator: b.Generator,
		})
		if err != nil {
			return err
		}
		return daemon.Run(ctx)
	},
}

// daemonConfig returns a copy of cfg that never proxies to another daemon.
func daemonConfig(cfg *config.Config) *config.Config {
	out := *cfg
	out.Generator.Mode = config.GeneratorModeLocal
	if out.Catalog.Source == config.CatalogSourceRemote {
		out.Catalog.Source = config.CatalogSourceSearch
	}
	return &out
}

var pingCmd = &cobra.Command{
	Use:   "ping [address]",
	Short: "Check that a generator daemon is reachable",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		target := cfg.Generator.Address
		if len(args) == 1 {
			target = args[0]
		}
		return runPing(commandContext(cmd), os.Stdout, target, cfg)
	},
}

func runPing(ctx context.Context, out io.Writer, target string, cfg *config.Config) error {
	if strings.TrimSpace(target) == "" {
		return &PreflightError{
			Message:  "no daemon address configured",
			Hint:     "Set generator.address or pass an address",
			NextStep: fmt.Sprintf("pipebuilder ping 127.0.0.1:%d", config.DefaultDaemonPort),
		}
	}
	client, err := builderd.NewClient(target, builderd.WithTimeout(cfg.Generator.Timeout))
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Ping(ctx)
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Start the daemon on the target host",
			NextStep: "pipebuilder serve",
		}
	}
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, resp)
	}
	fmt.Fprintf(out, "%s %s (version %s", colorize("●", colorGreen), target, resp.Version)
	if resp.Hostname != "" {
		fmt.Fprintf(out, ", host %s", resp.Hostname)
	}
	if resp.Uptime != "" {
		fmt.Fprintf(out, ", up %s", resp.Uptime)
	}
	fmt.Fprintln(out, ")")
	return nil
}
