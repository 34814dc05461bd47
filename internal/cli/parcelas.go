package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/installment"
	"github.com/painel-financeiro/painel/pkg/money"
	"github.com/spf13/cobra"
)

func parcelasCmd() *cobra.Command {
	var total, date string
	var count int
	cmd := &cobra.Command{
		Use:     "parcelas",
		Short:   "Print the installment amount and schedule of a total",
		Example: `  painel parcelas --total "R$ 1.000,00" --count 3 --date 2024-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := installment.Input{
				Total:       money.Parse(total),
				Installment: count > 0,
				Count:       count,
			}
			if date != "" {
				launch, err := time.Parse(form.DateLayout, date)
				if err != nil {
					return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
				}
				in.LaunchDate = launch
			}
			if count > 0 && !installment.IsAllowedCount(count) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d is not one of the offered installment counts\n", count)
			}
			printInstallments(cmd.OutOrStdout(), in)
			return nil
		},
	}
	cmd.Flags().StringVar(&total, "total", "", `total amount, e.g. "R$ 1.000,00"`)
	cmd.Flags().IntVar(&count, "count", 0, "number of installments")
	cmd.Flags().StringVar(&date, "date", "", "launch date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func printInstallments(w io.Writer, in installment.Input) {
	result := installment.Calculate(in)
	fmt.Fprintf(w, "Total:    %s\n", money.Format(in.Total))
	fmt.Fprintf(w, "Parcela:  %s\n", money.Format(result.AmountCents()))
	fmt.Fprintf(w, "Juros:    %s\n", money.Format(result.Interest))
	if result.HasEndDate() {
		fmt.Fprintf(w, "Fim:      %s\n", result.EndDate.Format("02/01/2006"))
	}
	if !in.Installment {
		return
	}
	fmt.Fprintln(w)
	for _, p := range installment.Schedule(in) {
		due := "-"
		if !p.DueDate.IsZero() {
			due = p.DueDate.Format("02/01/2006")
		}
		fmt.Fprintf(w, "%3d  %s  %s\n", p.Number, due, money.Format(p.Amount))
	}
}
