/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pookieverse/apiserver/config"
	"github.com/pookieverse/apiserver/internal/db"
	"github.com/pookieverse/apiserver/internal/logger"
	"github.com/pookieverse/apiserver/internal/services"
	"github.com/pookieverse/apiserver/internal/store"
	"github.com/pookieverse/apiserver/types"
	"github.com/spf13/cobra"
)

var seedFile string

// seedRecord is one user in the seed file.
type seedRecord struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
}

// seedUsersCmd provisions users out of band. Users cannot be created
// through the API; this command is the only way in.
var seedUsersCmd = &cobra.Command{
	Use:   "seed-users",
	Short: "Provision users from a JSON file",
	Long: `Provision users from a JSON file of {"name", "birthday"} records.
Existing names are skipped, so re-running is safe. Usage:

	apiserver seed-users --file users.json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New("seed-users")

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		var records []seedRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}

		dbConn, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		users := services.NewUserService(store.NewUserRepository(dbConn))

		for _, record := range records {
			birthday, err := types.ParseDate(record.Birthday)
			if err != nil {
				return fmt.Errorf("user %q: invalid birthday %q", record.Name, record.Birthday)
			}

			if _, err := users.GetByName(cmd.Context(), record.Name); err == nil {
				log.Info().Str("name", record.Name).Msg("user exists, skipping")
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("check user %q: %w", record.Name, err)
			}

			created, err := users.Create(cmd.Context(), types.User{
				ID:       uuid.NewString(),
				Name:     record.Name,
				Birthday: birthday,
			})
			if err != nil {
				return fmt.Errorf("create user %q: %w", record.Name, err)
			}
			log.Info().Str("name", created.Name).Str("id", created.ID).Msg("user created")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedUsersCmd)
	seedUsersCmd.Flags().StringVar(&seedFile, "file", "users.json", "path to the seed file")
}
