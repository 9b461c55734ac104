package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/soprimec/rental-engine/rental"
)

func migrateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(flags)
				if err != nil {
					return err
				}
				defer a.Close()
				return printVersion(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back the last migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("invalid steps %q", args[0])
					}
					steps = n
				}

				a, err := openApp(flags)
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.store.Rollback(cmd.Context(), steps); err != nil {
					return err
				}
				return printVersion(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(flags)
				if err != nil {
					return err
				}
				defer a.Close()
				return printVersion(cmd, a)
			},
		},
	)
	return cmd
}

func printVersion(cmd *cobra.Command, a *app) error {
	version, err := a.store.MigrationVersion(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}

func seedCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			loaded, err := a.svc.SeedDemo(cmd.Context(), force)
			if err != nil {
				return err
			}
			if !loaded {
				fmt.Fprintln(cmd.OutOrStdout(), "Data already present, nothing loaded (use --force to overwrite).")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Demo data loaded.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete existing data first")
	return cmd
}

func remindersCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "Print today's arrears reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			reminders, err := a.svc.Reminders(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reminders) == 0 {
				fmt.Fprintln(out, "No arrears.")
				return nil
			}
			for _, r := range reminders {
				fmt.Fprintf(out, "[%s] %s - %s - %s FCFA\n", r.Tenant.Code, r.Tenant.Name, r.Badge, rental.FormatAmount(r.Total))
				fmt.Fprintf(out, "  %s\n\n", r.Message)
			}
			return nil
		},
	}
}

func reportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report YYYY-MM",
		Short: "Print the rent and cash flow summary of a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := rental.ParsePeriod(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.svc.PeriodReport(cmd.Context(), period)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rapport %s\n", r.Period.Label())
			fmt.Fprintf(out, "  Loyers attendus:  %s\n", rental.FormatAmount(r.Expected))
			fmt.Fprintf(out, "  Loyers encaissés: %s\n", rental.FormatAmount(r.Collected))
			fmt.Fprintf(out, "  Impayés:          %s\n", rental.FormatAmount(r.Unpaid))
			fmt.Fprintf(out, "  Taux:             %d%%\n", r.CollectionRate)
			fmt.Fprintf(out, "  Charges:          %s\n", rental.FormatAmount(r.TotalCharges))
			fmt.Fprintf(out, "  Net:              %s\n", rental.FormatAmount(r.Net))
			return nil
		},
	}
}
