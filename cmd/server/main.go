package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "sehatku-paylater/docs" // Swagger docs
)

// @title Sehatku PayLater API
// @version 1.0
// @description BPJS eligibility, PayLater medical financing and treatment booking API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@sehatku.id

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "sehatku-server",
		Short: "Sehatku PayLater API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reclassifyCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("❌ Command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the hospital admin account and a demo catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func reclassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reclassify-bpjs",
		Short: "Recompute every BPJS holder's role once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReclassify(cmd.Context())
		},
	}
}
