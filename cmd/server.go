/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/pookieverse/apiserver/config"
	"github.com/pookieverse/apiserver/internal/logger"
	"github.com/pookieverse/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the PookieVerse backend server",
	Long: `Starts the PookieVerse backend server. Usage:

	apiserver server
`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.New("apiserver")

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}

		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Msg("server listening")
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
