package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"surfapp/internal/handlers"
	"surfapp/internal/metrics"
	"surfapp/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	b, closeBackend, err := openBackend(ctx, cfg.Database, cfg.Server.Seed)
	if err != nil {
		return err
	}
	defer closeBackend()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Backend ready")

	m := metrics.New()
	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)

	var uploads *services.UploadService
	if cfg.AWS.S3Bucket != "" {
		s3cfg := services.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			Endpoint:        cfg.AWS.Endpoint,
			AccessKeyID:     cfg.AWS.AccessKey,
			SecretAccessKey: cfg.AWS.SecretKey,
			UsePathStyle:    cfg.AWS.UsePathStyle,
			PublicURL:       cfg.AWS.PublicURL,
		}
		presigner, err := services.NewS3Presigner(ctx, s3cfg)
		if err != nil {
			return err
		}
		uploads = services.NewUploadService(b, presigner, s3cfg)
	} else {
		log.Warn().Msg("No S3 bucket configured, media uploads are disabled")
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Backend:        b,
		Tokens:         tokens,
		Uploads:        uploads,
		Metrics:        m,
		CORSOrigins:    cfg.Server.CORSOrigins,
		AuthRateLimit:  cfg.Server.AuthRateLimit,
		AuthRateWindow: cfg.Server.AuthRateWindow,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}
