// Command mspctl administers the MultiSafepay gateway storage: it migrates the
// schema and installs the payment method table.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourorg/multisafepay-gateway/internal/config"
	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/storage"
)

var version = "dev"

// openStores is replaced in tests.
var openStores = func(ctx context.Context) (*storage.Stores, error) {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Output: os.Stderr})
	return storage.Open(ctx, cfg)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mspctl",
		Short:         "Administer the MultiSafepay gateway",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(methodsCmd())
	root.AddCommand(migrateCmd())
	return root
}

func methodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "Manage installed payment methods",
	}
	cmd.AddCommand(methodsSyncCmd())
	cmd.AddCommand(methodsListCmd())
	return cmd
}

func methodsSyncCmd() *cobra.Command {
	var batch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Install or refresh every MultiSafepay payment method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stores, err := openStores(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			installer := paymentmethod.NewInstaller(stores.PaymentMethods, paymentmethod.DefaultRegistry())
			n, err := installer.Sync(ctx, paymentmethod.SyncOptions{BatchMode: batch})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %d payment methods\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&batch, "batch", "b", false, "Write all payment methods in one upsert")
	return cmd
}

func methodsListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the payment method table and its installation state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stores, err := openStores(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			installed, err := stores.PaymentMethods.Search(ctx, repository.Criteria{})
			if err != nil {
				return err
			}
			active := make(map[string]bool, installed.Total())
			for _, pm := range installed.Entities {
				active[pm.HandlerIdentifier] = pm.Active
			}
			return printMethods(cmd.OutOrStdout(), paymentmethod.DefaultRegistry().All(), active, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

type methodRow struct {
	paymentmethod.Descriptor
	Installed bool `json:"installed"`
	Active    bool `json:"active"`
}

func printMethods(w io.Writer, descriptors []paymentmethod.Descriptor, active map[string]bool, asJSON bool) error {
	rows := make([]methodRow, 0, len(descriptors))
	for _, d := range descriptors {
		on, installed := active[d.HandlerIdentifier()]
		rows = append(rows, methodRow{Descriptor: d, Installed: installed, Active: on})
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GATEWAY\tNAME\tCODE\tTYPE\tINSTALLED\tACTIVE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n", r.ID, r.Name, r.GatewayCode, r.Type, r.Installed, r.Active)
	}
	return tw.Flush()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the storage schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}
