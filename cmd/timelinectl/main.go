package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "timelinectl",
		Short: "CLI client for the UFO timeline REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Timeline service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", os.Getenv("UFO_TIMELINE_TOKEN"), "Admin bearer token")

	// login subcommand
	var username, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an admin token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password required")
			}
			body, err := check(newClient(apiFlag, "").R().
				SetBody(map[string]string{"username": username, "password": password}).
				Post("/api/admin/login"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&username, "username", "u", "admin", "Admin username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Admin password (required)")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)

	// health subcommand
	healthCmd := &cobra.Command{Use: "health", Short: "Service health operations"}
	var waitTimeout time.Duration
	waitCmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until the service reports healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return waitHealthy(apiFlag, waitTimeout)
		},
	}
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", time.Minute, "Give up after this long")
	healthCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(healthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// waitHealthy polls /api/health with exponential backoff until the service
// answers 200 or the timeout expires.
func waitHealthy(apiURL string, timeout time.Duration) error {
	client := newClient(apiURL, "")

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 250 * time.Millisecond
	exp.Multiplier = 2
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		_, err := check(client.R().Get("/api/health"))
		return err
	}, exp)
}
