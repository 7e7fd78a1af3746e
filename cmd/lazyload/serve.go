package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pders01/lazyload/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contact repository over HTTP for the server source",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEnv(cfg, true)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	h := server.NewHandler(e.repo, e.cfg.Server.MaxLimit, e.log)
	return server.Run(ctx, addr, server.NewRouter(h), e.log)
}
