package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintech-kernel/acctd/internal/infrastructure/config"
	"github.com/fintech-kernel/acctd/internal/infrastructure/logger"
	"github.com/fintech-kernel/acctd/internal/infrastructure/postgres"
)

var (
	baseURL string
	tenant  string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "acctd-cli",
		Short: "acctd CLI tool",
		Long:  `A command line interface for operating the acctd accounting service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the acctd API")
	rootCmd.PersistentFlags().StringVar(&tenant, "tenant", "", "Tenant ID sent as X-Tenant-ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(periodCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration operations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check that posted debits equal posted credits",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := apiGet("/api/v1/ledger/consistency")
			if err != nil {
				return err
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			switch status {
			case http.StatusOK:
				fmt.Println("Consistency check PASSED")
				printJSON(result)
				return nil
			case http.StatusConflict:
				fmt.Println("Consistency check FAILED")
				printJSON(result)
				os.Exit(1)
				return nil
			default:
				return fmt.Errorf("unexpected status %d: %s", status, body)
			}
		},
	}

	trialBalance := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := apiGet("/api/v1/ledger/trial-balance")
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("unexpected status %d: %s", status, body)
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printJSON(result)
			return nil
		},
	}

	cmd.AddCommand(consistency, trialBalance)
	return cmd
}

func periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Fiscal period operations",
	}

	closeCmd := &cobra.Command{
		Use:   "close <period-id>",
		Short: "Close a fiscal period and snapshot its balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := apiPost("/api/v1/periods/"+args[0]+"/close", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("close failed with status %d: %s", status, body)
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printJSON(result)
			return nil
		},
	}

	cmd.AddCommand(closeCmd)
	return cmd
}

func apiGet(path string) (int, []byte, error) {
	return apiDo(http.MethodGet, path, nil)
}

func apiPost(path string, payload any) (int, []byte, error) {
	return apiDo(http.MethodPost, path, payload)
}

func apiDo(method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
