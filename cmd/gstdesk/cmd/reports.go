package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var reportBusiness string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Financial reports",
}

var reportsPLCmd = &cobra.Command{
	Use:   "pl",
	Short: "Profit and loss summary",
	Run:   runReportsPL,
}

var reportsExpensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Expenses by category",
	Run:   runReportsExpenses,
}

var gstCmd = &cobra.Command{
	Use:   "gst",
	Short: "GST summaries and filing documents",
}

var gstLiabilityCmd = &cobra.Command{
	Use:   "liability",
	Short: "Output tax vs input tax credit",
	Run:   runGSTLiability,
}

var gstGSTR1Cmd = &cobra.Command{
	Use:   "gstr1",
	Short: "Prepare a GSTR-1 filing document",
	Run:   runGSTR1,
}

var gstGSTR3BCmd = &cobra.Command{
	Use:   "gstr3b",
	Short: "Prepare a GSTR-3B summary document",
	Run:   runGSTR3B,
}

func init() {
	for _, c := range []*cobra.Command{reportsPLCmd, reportsExpensesCmd, gstLiabilityCmd, gstGSTR1Cmd, gstGSTR3BCmd} {
		c.Flags().StringVar(&reportBusiness, "business", "", "business id (defaults to selected)")
	}
	reportsCmd.AddCommand(reportsPLCmd)
	reportsCmd.AddCommand(reportsExpensesCmd)
	gstCmd.AddCommand(gstLiabilityCmd)
	gstCmd.AddCommand(gstGSTR1Cmd)
	gstCmd.AddCommand(gstGSTR3BCmd)
}

func runReportsPL(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	report, err := a.client.ProfitAndLoss(context.Background(), a.requireBusinessID(reportBusiness))
	exitOnError(err, "failed to fetch report")

	fmt.Printf("Income:         %.2f\n", report.Income)
	fmt.Println("Expenses:")
	printCategories(report.ExpensesByCategory)
	fmt.Printf("Total expenses: %.2f\n", report.TotalExpenses)
	fmt.Printf("Net:            %.2f\n", report.Net)
}

func runReportsExpenses(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	report, err := a.client.ExpensesByCategory(context.Background(), a.requireBusinessID(reportBusiness))
	exitOnError(err, "failed to fetch report")
	printCategories(report.ByCategory)
}

func printCategories(byCategory map[string]float64) {
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		fmt.Printf("  %-20s %.2f\n", cat+":", byCategory[cat])
	}
}

func runGSTLiability(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	liability, err := a.client.GSTLiability(context.Background(), a.requireBusinessID(reportBusiness))
	exitOnError(err, "failed to fetch GST liability")

	fmt.Printf("Output tax:  %.2f\n", liability.OutputTax)
	fmt.Printf("ITC:         %.2f\n", liability.ITC)
	fmt.Printf("Tax payable: %.2f\n", liability.TaxPayable)
}

func runGSTR1(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	doc, err := a.client.PrepareGSTR1(context.Background(), a.requireBusinessID(reportBusiness))
	exitOnError(err, "failed to prepare GSTR-1")
	printDocument(doc)
}

func runGSTR3B(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	doc, err := a.client.PrepareGSTR3B(context.Background(), a.requireBusinessID(reportBusiness))
	exitOnError(err, "failed to prepare GSTR-3B")
	printDocument(doc)
}

func printDocument(doc json.RawMessage) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		os.Stdout.Write(doc)
		return
	}
	_ = enc.Encode(v)
}
