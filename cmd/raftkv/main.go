// Command raftkv runs one replica of the cluster (spec.md §6 CLI:
// `<prog> <port> <id> <otherId>+`).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"raftkv/config"
	"raftkv/raft"
	"raftkv/server"
	"raftkv/storage"
	"raftkv/transport"
)

const recvTimeout = 100 * time.Millisecond

func main() {
	var configPath string
	var adminAddr string

	cmd := &cobra.Command{
		Use:   "raftkv <port> <id> <otherId>...",
		Short: "run one replica of a Raft-based key-value cluster",
		Args: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return nil
			}
			if len(args) < 3 {
				return fmt.Errorf("requires <port> <id> <otherId>+, or --config")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, configPath, adminAddr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML cluster fixture file (id, port, peers)")
	cmd.Flags().StringVar(&adminAddr, "admin", ":8080", "address for the read-only admin HTTP surface")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, configPath, adminAddr string) error {
	var id string
	var port int
	var peers []string

	if configPath != "" {
		r, err := config.Load(configPath)
		if err != nil {
			return err
		}
		id, port, peers = r.ID, r.Port, r.Peers
	} else {
		var err error
		port, err = parsePort(args[0])
		if err != nil {
			return err
		}
		id = args[1]
		peers = args[2:]
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("node_id", id).Logger()

	// port is the shared bus address (spec.md §6); this replica's own
	// listening socket is a separate, OS-assigned ephemeral port
	// (SPEC_FULL.md §A).
	b, err := transport.NewBus(0, port, recvTimeout)
	if err != nil {
		return err
	}
	defer b.Close()

	n := raft.NewNode(raft.Config{
		ID:    id,
		Peers: peers,
		Bus:   b,
		KV:    storage.NewKV(),
		Log:   logger,
	})

	registry := prometheus.NewRegistry()
	admin := server.New(n, n.MetricsForRegistration(), registry)
	go func() {
		if err := admin.Run(adminAddr); err != nil {
			logger.Error().Err(err).Msg("admin server stopped")
		}
	}()

	logger.Info().Int("port", port).Strs("peers", peers).Msg("replica starting")

	stop := make(chan struct{})
	n.Run(stop)
	return nil
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	return port, nil
}
