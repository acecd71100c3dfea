package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/mock-interviewer/internal/logger"
	"github.com/spigell/mock-interviewer/internal/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		log.Error("getting a config", zap.Error(err))
		return err
	}

	log.Info("starting the mock-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	d, err := buildDeps(ctx, config, log)
	if err != nil {
		log.Error("building dependencies", zap.Error(err))
		return err
	}
	defer d.Close()

	srv, err := server.New(config.Server, d.service, log)
	if err != nil {
		return err
	}

	if err := srv.Run(ctx); err != nil {
		log.Error("http server stopped", zap.Error(err))
		return err
	}
	log.Info("exiting", zap.String("reason", "shutdown requested"))
	return nil
}

// redacted returns a copy of config safe to log.
func redacted(config *Config) Config {
	c := *config
	mask := func(s *string) {
		if *s != "" {
			*s = "***"
		}
	}
	mask(&c.AI.Gemini.APIKey)
	mask(&c.AI.OpenAI.APIKey)
	mask(&c.AI.Anthropic.APIKey)
	return c
}
