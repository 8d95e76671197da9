// Command speedtrapd runs the speed-enforcement server: it accepts camera
// and dispatcher connections on a TCP address and issues tickets per the
// wire protocol implemented in internal/protocol.
//
// Command-line parsing follows dittofs's cobra.Command convention
// (cmd/dittofs/commands/start.go): flags bound in init(), a RunE that wires
// the dependency graph and blocks until a shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atsika/speedtrap/internal/logger"
	"github.com/atsika/speedtrap/internal/server"
)

var (
	bindAddr string
	port     uint16
)

var rootCmd = &cobra.Command{
	Use:   "speedtrapd",
	Short: "Speed enforcement server",
	Long: `speedtrapd accepts camera and dispatcher connections over a binary
TCP protocol, correlates plate observations, and issues speeding tickets.

Log verbosity is controlled by the LOG_LEVEL environment variable
(debug, info, warn, error; default info). There is no configuration file.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&bindAddr, "addr", "0.0.0.0", "address to bind the listening socket to")
	rootCmd.Flags().Uint16Var(&port, "port", 8080, "TCP port to listen on")
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(net.JoinHostPort(bindAddr, strconv.Itoa(int(port))), server.WithLogger(log))

	serveDone := make(chan error, 1)
	go func() { serveDone <- srv.ListenAndServe(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		log.Info("shutdown signal received")
		cancel()
		return <-serveDone
	case err := <-serveDone:
		return err
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
