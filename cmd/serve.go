package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/logger"
	"github.com/velmala/funding-advisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default is "+defaultListenAddr+")")
	serveCmd.Flags().StringP("catalog", "c", "", "instrument catalog file or URL")
}

func serve(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the funding-advisor server", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	adv, err := buildAdvisor(ctx, config, logger, cmd.Flag("catalog").Value.String())
	if err != nil {
		logger.Fatal("building the advisor", zap.Error(err))
	}

	if adv.HasRewriter() {
		logger.Info("ai explanations enabled")
	}

	listen := cmd.Flag("listen").Value.String()
	var origins []string
	if config.Server != nil {
		if listen == "" {
			listen = config.Server.Listen
		}
		origins = config.Server.AllowedOrigins
	}
	if listen == "" {
		listen = defaultListenAddr
	}

	srv := server.New(adv, logger, origins)
	if err := srv.Run(listen); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
