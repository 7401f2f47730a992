package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/creditdesk/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "creditdesk-cli",
		Short: "CreditDesk CLI tool",
		Long:  `A command line interface for interacting with the CreditDesk API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CreditDesk API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check every account's balance against its transaction log",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account's credit balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showBalance(args[0])
		},
	}

	accountCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(accountCmd)

	// Sweep command
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Trigger a sweep of request transitions and credit expiry",
		Run: func(cmd *cobra.Command, args []string) {
			triggerSweep()
		},
	}
	rootCmd.AddCommand(sweepCmd)

	// Migration commands
	var databaseURL, migrationsPath string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url",
		os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "migrations-path",
		"migrations", "Path to migration files")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath)
		},
	}
	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath)
		},
	}
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	body, status, err := get("/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var results []consistencyResult
	if err := json.Unmarshal(body, &results); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printConsistency(results)
}

type consistencyResult struct {
	AccountID       string `json:"account_id"`
	StoredBalance   int64  `json:"stored_balance"`
	ComputedBalance int64  `json:"computed_balance"`
	Consistent      bool   `json:"consistent"`
}

func printConsistency(results []consistencyResult) {
	inconsistent := 0
	for _, r := range results {
		if !r.Consistent {
			inconsistent++
			fmt.Printf("MISMATCH account %s: stored=%d computed=%d\n",
				r.AccountID, r.StoredBalance, r.ComputedBalance)
		}
	}

	if inconsistent > 0 {
		fmt.Printf("Consistency check FAILED: %d of %d accounts inconsistent\n", inconsistent, len(results))
		os.Exit(1)
	}
	fmt.Printf("Consistency check PASSED (%d accounts)\n", len(results))
}

func showBalance(accountID string) {
	body, status, err := get("/api/v1/accounts/" + accountID + "/balance")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result map[string]int64
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Balance: %d credits\n", result["balance"])
}

func triggerSweep() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/sweep", "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Sweep FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		Skipped     bool `json:"skipped"`
		Transitions int  `json:"transitions"`
		Expirations int  `json:"expirations"`
		Errors      int  `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.Skipped {
		fmt.Println("Sweep skipped: another sweep was already running")
		return
	}
	fmt.Printf("Sweep completed: %d transitions, %d expirations, %d errors\n",
		result.Transitions, result.Expirations, result.Errors)
}

func get(path string) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
