package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
)

func accountsCmd(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var accounts []dto.AccountResponse
			path := fmt.Sprintf("/api/accounts?limit=%d&offset=%d", limit, offset)
			raw, err := c.do(cmd.Context(), http.MethodGet, path, nil, &accounts)
			if err != nil {
				return err
			}
			if c.raw {
				return writeRaw(cmd.OutOrStdout(), raw)
			}
			printAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 100, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	get := &cobra.Command{
		Use:   "get <id|number>",
		Short: "Show one account by ID or account number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/accounts/" + url.PathEscape(args[0])
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				path = "/api/accounts/number/" + url.PathEscape(args[0])
			}

			var account dto.AccountResponse
			raw, err := c.do(cmd.Context(), http.MethodGet, path, nil, &account)
			if err != nil {
				return err
			}
			if c.raw {
				return writeRaw(cmd.OutOrStdout(), raw)
			}
			printAccounts(cmd.OutOrStdout(), []dto.AccountResponse{account})
			return nil
		},
	}

	var open struct {
		number, name, email, accountType, balance string
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Open an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := parseAmount(open.balance)
			if err != nil {
				return err
			}
			body := map[string]any{
				"accountNumber":     open.number,
				"accountHolderName": open.name,
				"email":             open.email,
				"accountType":       open.accountType,
				"balance":           balance,
			}

			var account dto.AccountResponse
			raw, err := c.do(cmd.Context(), http.MethodPost, "/api/accounts", body, &account)
			if err != nil {
				return err
			}
			if c.raw {
				return writeRaw(cmd.OutOrStdout(), raw)
			}
			printOK(cmd.OutOrStdout(), "Account %d opened: %s, balance %s", account.ID, account.AccountNumber, account.Balance)
			return nil
		},
	}
	create.Flags().StringVar(&open.number, "number", "", "Account number (generated when empty)")
	create.Flags().StringVar(&open.name, "name", "", "Account holder name")
	create.Flags().StringVar(&open.email, "email", "", "Account holder email")
	create.Flags().StringVar(&open.accountType, "type", "CHECKING", "CHECKING or SAVINGS")
	create.Flags().StringVar(&open.balance, "balance", "0", "Opening balance")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	count := &cobra.Command{
		Use:   "count",
		Short: "Count accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.CountResponse
			if _, err := c.do(cmd.Context(), http.MethodGet, "/api/accounts/count", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Count)
			return nil
		},
	}

	deactivate := &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var resp dto.MessageResponse
			if _, err := c.do(cmd.Context(), http.MethodDelete, fmt.Sprintf("/api/accounts/%d", id), nil, &resp); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "%s", resp.Message)
			return nil
		},
	}

	cmd.AddCommand(list, get, create, count, deactivate)
	return cmd
}

func depositCmd(c *client) *cobra.Command {
	return singleAccountCmd(c, "deposit", "Credit an account", "/api/transactions/deposit")
}

func withdrawCmd(c *client) *cobra.Command {
	return singleAccountCmd(c, "withdraw", "Debit an account", "/api/transactions/withdraw")
}

func singleAccountCmd(c *client, use, short, path string) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   use + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			body := map[string]any{"accountId": id, "amount": amount, "description": description}
			return c.submit(cmd, path, body)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	return cmd
}

func transferCmd(c *client) *cobra.Command {
	var description string
	var async bool
	cmd := &cobra.Command{
		Use:   "transfer <from-id> <to-id> <amount>",
		Short: "Move money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0])
			if err != nil {
				return err
			}
			to, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			body := map[string]any{"fromAccountId": from, "toAccountId": to, "amount": amount, "description": description}

			if !async {
				return c.submit(cmd, "/api/transactions/transfer", body)
			}

			body["type"] = "TRANSFER"
			var accepted dto.AsyncAcceptedResponse
			if _, err := c.do(cmd.Context(), http.MethodPost, "/api/transactions/async", body, &accepted); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Transfer queued as task %s on %s", accepted.TaskID, accepted.Queue)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().BoolVar(&async, "async", false, "Queue the transfer for the worker")
	return cmd
}

// submit posts a ledger operation and prints the resulting record. A FAILED
// record returned with the error is printed before the error.
func (c *client) submit(cmd *cobra.Command, path string, body any) error {
	var tx dto.TransactionResponse
	raw, err := c.do(cmd.Context(), http.MethodPost, path, body, &tx)
	if c.raw && raw != nil {
		if werr := writeRaw(cmd.OutOrStdout(), raw); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.Body.Transaction != nil {
			printFail(cmd.OutOrStdout(), "Transaction %d FAILED: %s", apiErr.Body.Transaction.ID, apiErr.Body.Transaction.FailureReason)
		}
		return err
	}

	printOK(cmd.OutOrStdout(), "Transaction %d %s: %s %s", tx.ID, tx.Status, tx.TransactionType, tx.Amount)
	return nil
}

func historyCmd(c *client) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history [account-id]",
		Short: "List transactions, optionally for one account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/transactions"
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				path = fmt.Sprintf("/api/transactions/account/%d", id)
			}
			path += fmt.Sprintf("?limit=%d&offset=%d", limit, offset)

			var transactions []dto.TransactionResponse
			raw, err := c.do(cmd.Context(), http.MethodGet, path, nil, &transactions)
			if err != nil {
				return err
			}
			if c.raw {
				return writeRaw(cmd.OutOrStdout(), raw)
			}
			printTransactions(cmd.OutOrStdout(), transactions)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func ledgerCmd(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Check every balance against the transaction log",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ReconciliationReportResponse
			raw, err := c.do(cmd.Context(), http.MethodGet, "/api/ledger/reconciliation", nil, &report)
			if err != nil {
				return err
			}
			if c.raw {
				return writeRaw(cmd.OutOrStdout(), raw)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Accounts: %d (%d reconciled), transactions read: %d\n",
				report.TotalAccounts, report.ReconciledAccounts, report.TransactionsRead)
			fmt.Fprintf(w, "Total balance: %s, expected: %s\n", report.TotalBalance, report.ExpectedTotal)
			for _, d := range report.Discrepancies {
				printWarn(w, "Account %d: recorded %s, calculated %s, difference %s",
					d.AccountID, d.RecordedBalance, d.CalculatedBalance, d.Difference)
			}

			if !report.LedgerConsistent {
				printFail(w, "Reconciliation FAILED")
				return fmt.Errorf("ledger is not consistent")
			}
			printOK(w, "Reconciliation PASSED")
			return nil
		},
	}

	cmd.AddCommand(reconcile)
	return cmd
}

func printAccounts(w io.Writer, accounts []dto.AccountResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tHOLDER\tTYPE\tBALANCE\tACTIVE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n",
			a.ID, a.AccountNumber, truncate(a.AccountHolderName, 24), a.AccountType, a.Balance, a.Active)
	}
	_ = tw.Flush()
}

func printTransactions(w io.Writer, transactions []dto.TransactionResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tFROM\tTO\tAMOUNT\tSTATUS\tREFERENCE")
	for _, t := range transactions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.TransactionType, optionalID(t.FromAccountID), optionalID(t.ToAccountID),
			t.Amount, statusColor(t.Status)(t.Status), truncate(t.Reference, 12))
	}
	_ = tw.Flush()
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func writeRaw(w io.Writer, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		_, err := w.Write(raw)
		return err
	}
	return printJSON(w, v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}

// parseAmount keeps the exact decimal digits; the server enforces scale.
func parseAmount(s string) (json.Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q", s)
	}
	return json.Number(d.String()), nil
}
