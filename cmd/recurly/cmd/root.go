package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	// Global flags
	envFile   string
	apiKey    string
	subdomain string
	baseURL   string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "recurly",
	Short: "Work with invoices on the billing api",
	Long: `recurly is a command line client for the invoice resource of the billing api.

Configuration is read from config.yaml, RECURLY_* environment variables
and a .env file, in that order of precedence (lowest first).

Examples:
  # Show an invoice
  recurly invoice get 1010

  # Download its PDF and archive it
  recurly invoice pdf 1010 -o 1010.pdf --archive

  # Refund part of an invoice
  recurly invoice refund 1010 --amount-in-cents 500

  # Settle several manual invoices at once
  recurly invoice mark-successful 1010 1011 1012`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (env: RECURLY_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&subdomain, "subdomain", "", "Account subdomain (env: RECURLY_SUBDOMAIN)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API root, overrides the subdomain (env: RECURLY_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (env: LOGGING_LEVEL)")
}

// loadEnv loads the env file and exports flag values so config.NewConfig sees them
func loadEnv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	overrides := map[string]string{
		"RECURLY_API_KEY":   apiKey,
		"RECURLY_SUBDOMAIN": subdomain,
		"RECURLY_BASE_URL":  baseURL,
		"LOGGING_LEVEL":     logLevel,
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
