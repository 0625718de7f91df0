package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/reports"
	"hrkey/internal/platform/db"
	"hrkey/internal/platform/jobs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		applied, err := db.Migrate(cmd.Context(), e.pool, e.cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}
		for _, version := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, the admin user and reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if file, _ := cmd.Flags().GetString("reference"); file != "" {
			e.cfg.ReferenceDataFile = file
		}
		if err := db.Seed(cmd.Context(), e.pool, e.cfg); err != nil {
			return err
		}
		e.cache.InvalidateReports(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
		return nil
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Re-derive stored scores of a round from current criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		round, _ := cmd.Flags().GetString("round")
		result, err := e.services.Jobs.RunNow(cmd.Context(), jobs.JobEvaluationRecompute, func(ctx context.Context) (any, error) {
			return e.services.Evaluations.Recompute(ctx, round)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", result)
		return nil
	},
}

var managerLinkCmd = &cobra.Command{
	Use:   "manager-link",
	Short: "Issue a signed manager access link",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		code, _ := cmd.Flags().GetString("code")
		days, _ := cmd.Flags().GetInt("days")

		ttl := cfg.ManagerLinkTTL
		if days > 0 {
			ttl = time.Duration(days) * 24 * time.Hour
		}
		svc := auth.NewService(nil, cfg.JWTSecret, cfg.SessionTTL, cfg.ManagerLinkSecret, cfg.ManagerLinkTTL, cfg.PublicBaseURL)
		link, err := svc.IssueManagerLink(code, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", link.URL, link.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var nineBoxCmd = &cobra.Command{
	Use:   "ninebox",
	Short: "Print the nine-box grid of a round",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		round, _ := cmd.Flags().GetString("round")
		manager, _ := cmd.Flags().GetString("manager")
		report, err := e.services.Reports.NineBox(cmd.Context(), "", round, manager)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), RenderNineBox(report))
		return nil
	},
}

var meritPDFCmd = &cobra.Command{
	Use:   "merit-pdf",
	Short: "Write the merit report as a PDF file",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		out, _ := cmd.Flags().GetString("out")
		groups, err := e.services.Reports.MeritReport(cmd.Context())
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := reports.WriteMeritPDF(f, groups, time.Now().UTC()); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d managers)\n", out, len(groups))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("reference", "", "reference data YAML file (REFERENCE_DATA_FILE)")
	recomputeCmd.Flags().String("round", "", "round code; defaults to the active round")
	managerLinkCmd.Flags().String("code", "", "manager code")
	managerLinkCmd.Flags().Int("days", 0, "link validity in days (MANAGER_LINK_TTL when 0)")
	_ = managerLinkCmd.MarkFlagRequired("code")
	nineBoxCmd.Flags().String("round", "", "round code; defaults to the active round")
	nineBoxCmd.Flags().String("manager", "", "filter by manager name")
	meritPDFCmd.Flags().String("out", "merit-report.pdf", "output file")
}
