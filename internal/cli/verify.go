package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icancodefyi/sarthi-ai/internal/repository"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <reportId>",
		Short: "Check a stored report against its digest",
		Long: `Recompute a report's digest straight from the database and print the
same verdict the public verification endpoint returns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := repository.Open(opts.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			verification := service.NewVerificationService(repository.NewReportRepo(db))
			result, err := verification.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report:     %s\n", result.ReportID)
			fmt.Fprintf(out, "Status:     %s\n", result.IntegrityStatus)
			fmt.Fprintf(out, "Owner:      %s\n", result.Owner)
			fmt.Fprintf(out, "Dataset:    %s\n", result.DatasetName)
			fmt.Fprintf(out, "Generated:  %s\n", result.GeneratedDate.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "Digest:     %s\n", result.IntegrityHash)

			if !result.IsValid {
				return fmt.Errorf("report %s failed integrity verification", result.ReportID)
			}
			return nil
		},
	}
}
