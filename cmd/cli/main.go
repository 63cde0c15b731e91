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
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bankcore-cli",
		Short: "Bankcore CLI tool",
		Long:  `A command line interface for interacting with the bankcore API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bankcore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BANKCORE_TOKEN"), "Session token (or BANKCORE_TOKEN)")

	rootCmd.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newBalanceCmd(),
		newDepositCmd(),
		newWithdrawCmd(),
		newTransferCmd(),
		newHistoryCmd(),
		newCustomersCmd(),
	)

	return rootCmd
}

func newRegisterCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register <name> <password>",
		Short: "Register a new customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/api/v1/auth/register", map[string]any{
				"name":     args[0],
				"password": args[1],
				"email":    email,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Contact email for notifications")

	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <name> <password>",
		Short: "Log in and print a session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/api/v1/auth/login", map[string]any{
				"name":     args[0],
				"password": args[1],
			})
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <customer-id>",
		Short: "Show a customer's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/v1/customers/"+args[0]+"/balance", nil)
		},
	}
}

func newDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <customer-id> <amount>",
		Short: "Deposit into a customer's account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/api/v1/ledger/deposit", map[string]any{
				"customer_id": args[0],
				"amount":      args[1],
			})
		},
	}
}

func newWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <customer-id> <amount>",
		Short: "Withdraw from a customer's account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/api/v1/ledger/withdraw", map[string]any{
				"customer_id": args[0],
				"amount":      args[1],
			})
		},
	}
}

func newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from-id> <to-id> <amount>",
		Short: "Transfer between two customers",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodPost, "/api/v1/ledger/transfer", map[string]any{
				"from_customer_id": args[0],
				"to_customer_id":   args[1],
				"amount":           args[2],
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <customer-id>",
		Short: "List a customer's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/v1/customers/"+args[0]+"/transactions", nil)
		},
	}
}

func newCustomersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "customers",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/v1/customers", nil)
		},
	}
}

// call performs the API request and pretty-prints the JSON response.
func call(method, path string, payload map[string]any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return nil
}
