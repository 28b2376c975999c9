package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainblackjack/internal/app"
	"onchainblackjack/internal/archive"
	"onchainblackjack/internal/config"
	"onchainblackjack/internal/fairness"
	"onchainblackjack/internal/gateway"
	"onchainblackjack/internal/state"
)

const shutdownTimeout = 10 * time.Second

func startCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application, plus the HTTP gateway when gateway.addr is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runNode(cmd.Context(), cmd, cfg)
		},
	}
	f := cmd.Flags()
	f.String(config.KeyABCIAddr, "tcp://127.0.0.1:26658", "ABCI listen address")
	f.String(config.KeyABCITransport, "socket", "ABCI transport (socket|grpc)")
	f.String(config.KeyGatewayAddr, "", "HTTP gateway listen address; empty disables it")
	f.String(config.KeyArchivePath, "", "sqlite outcome archive; relative paths live under <home>/data")
	f.String(config.KeyFairnessSecret, "", "VRF secret (hex)")
	houseFlags(cmd)
	return cmd
}

func runNode(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	vrf, err := fairness.NewVRF(cfg.FairnessSecret)
	if err != nil {
		return err
	}

	dataDir := filepath.Join(cfg.Home, "data")
	db, err := state.OpenDB(dataDir)
	if err != nil {
		return err
	}

	var (
		sink     app.OutcomeSink
		outcomes gateway.Outcomes
	)
	if cfg.ArchivePath != "" {
		path := cfg.ArchivePath
		if path != ":memory:" && !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		arc, err := archive.Open(path, logger)
		if err != nil {
			_ = db.Close()
			return err
		}
		defer arc.Close()
		sink, outcomes = arc, arc
	}

	params := cfg.Params
	a, err := app.New(app.Options{
		DB:  db,
		VRF: vrf,
		Genesis: app.GenesisState{
			Owner:        cfg.Owner,
			OwnerPubKey:  cfg.OwnerPubKey,
			Params:       &params,
			HouseBalance: cfg.HouseBalance,
		},
		Sink:   sink,
		Logger: logger,
	})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	srv, err := server.NewServer(cfg.ABCIAddr, cfg.ABCITransport, a)
	if err != nil {
		return fmt.Errorf("start abci server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("abci server start: %w", err)
	}
	defer func() { _ = srv.Stop() }()
	logger.Info("abci server listening", "addr", cfg.ABCIAddr, "transport", cfg.ABCITransport, "vrf_pubkey", fmt.Sprintf("%x", vrf.PublicKey()))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var httpSrv *http.Server
	httpErr := make(chan error, 1)
	if cfg.GatewayAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		httpSrv = gateway.New(a, outcomes, logger).HTTPServer(cfg.GatewayAddr)
		go func() {
			logger.Info("gateway listening", "addr", cfg.GatewayAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-httpErr:
		logger.Error("gateway failed", "err", err)
		return err
	}

	if httpSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			logger.Error("gateway shutdown", "err", err)
		}
	}
	return nil
}
