package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"loyalty-wallet/database"
	"loyalty-wallet/internal/app"
	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/staff"
	"loyalty-wallet/internal/importer"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func createStaffCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff account with a password",
		Example: `  walletctl create-staff --email ana@example.com --name Ana --role admin
  WALLETCTL_PASSWORD=... walletctl create-staff --email luis@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("WALLETCTL_PASSWORD")
			}
			user, err := staff.NewLocalUser(name, email, password, role)
			if err != nil {
				return err
			}

			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := db.Create(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("staff user %s already exists", user.Email)
				}
				return fmt.Errorf("create staff user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%d\n", user.Email, user.Role, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (or WALLETCTL_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", staff.RoleStaff, "admin or staff")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file.csv|file.xlsx]",
		Short: "Upsert members from a CSV or XLSX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			batch, err := importer.Parse(args[0], f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				printBatch(out, batch)
				return nil
			}

			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			stats, err := importer.Apply(db, batch)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported %d rows: %d created, %d updated, %d skipped\n",
				stats.Imported, stats.Created, stats.Updated, stats.Skipped)
			for _, e := range stats.Errors {
				fmt.Fprintln(out, "  ", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and show tiers without writing")
	return cmd
}

func printBatch(w io.Writer, b *importer.Batch) {
	counts := map[loyalty.Tier]int{}
	for _, row := range b.Rows {
		counts[loyalty.TierFromAll(loyalty.ResolutionInput{CustomerType: row.CustomerType, Campaign: row.Campaign})]++
	}
	fmt.Fprintf(w, "%d rows, %d skipped\n", len(b.Rows), b.Skipped)
	for _, t := range loyalty.AllTiers {
		fmt.Fprintf(w, "  %-5s %d\n", t, counts[t])
	}
	for _, e := range b.Errors {
		fmt.Fprintln(w, "  ", e)
	}
}

func syncClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-classes",
		Short: "Create missing Google Wallet loyalty classes for every tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			a := app.New(cmd.Context(), cfg, db)
			if a.ClassRegistry == nil {
				return errors.New("GOOGLE_SERVICE_ACCOUNT_FILE is not configured")
			}

			results, err := a.ClassRegistry.EnsureClasses(cmd.Context())
			for _, r := range results {
				state := "exists"
				if r.Created {
					state = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-5s %s %s\n", r.Tier, r.ClassID, state)
			}
			return err
		},
	}
}

func tierCmd() *cobra.Command {
	var queryTier, bodyTier string

	cmd := &cobra.Command{
		Use:   "tier [customer type]",
		Short: "Show which tier a customer type resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, source := loyalty.ResolveTier(loyalty.ResolutionInput{
				CustomerType: strings.Join(args, " "),
				QueryTier:    queryTier,
				BodyTier:     bodyTier,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%s (from %s)\n", tier, source)
			return nil
		},
	}

	cmd.Flags().StringVar(&queryTier, "query", "", "explicit ?tier= override")
	cmd.Flags().StringVar(&bodyTier, "body", "", "explicit body tier")
	return cmd
}
