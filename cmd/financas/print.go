package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"financas/internal/view"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printDashboard(w io.Writer, v view.DashboardView) {
	fmt.Fprintf(w, "Receitas: %s\nDespesas: %s\nSaldo:    %s\n\n", v.Income, v.Expense, v.Balance)

	fmt.Fprintln(w, strings.ReplaceAll(v.CenterLabel, "\n", ": "))
	if v.SplitEmpty != "" {
		fmt.Fprintln(w, v.SplitEmpty)
	} else {
		tw := newTable(w)
		for _, s := range v.Split {
			fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\n", s.Name, s.Value, s.Percent)
		}
		tw.Flush()
	}

	fmt.Fprintln(w, "\nÚltimas transações")
	tw := newTable(w)
	for _, r := range v.Recent {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Date, r.Description, r.User, r.Amount)
	}
	tw.Flush()
}

func printTransactions(w io.Writer, v view.TransactionsView) {
	if v.Message != "" && len(v.Rows) == 0 {
		fmt.Fprintln(w, v.Message)
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATA\tDESCRIÇÃO\tCATEGORIA\tPESSOA\tVALOR")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Description, r.Category, r.User, r.Amount)
	}
	tw.Flush()
}

func printGoals(w io.Writer, v view.GoalsView) {
	if len(v.Cards) == 0 {
		fmt.Fprintln(w, v.Message)
		return
	}
	tw := newTable(w)
	for _, c := range v.Cards {
		mark := ""
		if c.Invalid {
			mark = " (alvo inválido)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%s\n", c.ID, c.Name, c.CurrentLabel, c.TargetLabel, c.PercentLabel, mark)
	}
	tw.Flush()
}
