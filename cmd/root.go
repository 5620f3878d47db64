// Package cmd implements the evpark command line boundary. Every command is
// one discrete operation: parse args, run the engine, persist, print JSON.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evpark/evpark/app"
	"github.com/evpark/evpark/config"
	"github.com/evpark/evpark/core/model"
)

var (
	cfgPath   string
	storePath string
	userEmail string
	userName  string
	adminFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "evpark",
	Short:         "Shared EV charger reservation board",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		// A missing .env is the normal case.
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "path to the JSON store (overrides config)")
	rootCmd.PersistentFlags().StringVar(&userEmail, "user", "", "acting user email")
	rootCmd.PersistentFlags().StringVar(&userName, "name", "", "acting user display name")
	rootCmd.PersistentFlags().BoolVar(&adminFlag, "admin", false, "act with the admin flag set")
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// actor resolves the acting identity from flags and environment.
func actor() model.Actor {
	email := userEmail
	if email == "" {
		email = os.Getenv("EVPARK_USER")
	}
	if email == "" {
		email = "user@example.com"
	}
	name := userName
	if name == "" {
		name = os.Getenv("EVPARK_NAME")
	}
	if name == "" {
		name = model.DeriveName(email)
	}
	return model.Actor{
		Email: email,
		Name:  name,
		Admin: adminFlag || os.Getenv("EVPARK_ADMIN") == "1",
	}
}

// openService loads the configuration and builds the service.
func openService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	return app.New(cfg)
}

func printJSON(cmd *cobra.Command, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return err
}
