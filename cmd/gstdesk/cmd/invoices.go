package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gstdesk/pkg/domain"
	"gstdesk/pkg/editsession"
	"gstdesk/pkg/taxengine"
)

var (
	invBusiness string
	editItem    int
	editSets    []string
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices for the selected business",
	Run:   runInvoicesList,
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show <invoice-id>",
	Short: "Show one invoice with extracted line items",
	Args:  cobra.ExactArgs(1),
	Run:   runInvoicesShow,
}

var invoicesUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an invoice file",
	Args:  cobra.ExactArgs(1),
	Run:   runInvoicesUpload,
}

var invoicesProcessCmd = &cobra.Command{
	Use:   "process <invoice-id>",
	Short: "Run (or re-run) extraction on an invoice",
	Args:  cobra.ExactArgs(1),
	Run:   runInvoicesProcess,
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete <invoice-id>",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	Run:   runInvoicesDelete,
}

var invoicesEditCmd = &cobra.Command{
	Use:   "edit <invoice-id>",
	Short: "Correct line-item fields and push the fix",
	Long: `Edit applies field corrections to one line item, recomputes the GST
split locally, and PATCHes the corrected rows back to the server.

Editable fields: description, hsn_sac, qty, rate, gst_rate.

Example:
  gstdesk invoices edit 4f1c... --item 0 --set qty=3 --set gst_rate=18`,
	Args: cobra.ExactArgs(1),
	Run:  runInvoicesEdit,
}

func init() {
	invoicesListCmd.Flags().StringVar(&invBusiness, "business", "", "business id (defaults to selected)")
	invoicesUploadCmd.Flags().StringVar(&invBusiness, "business", "", "business id (defaults to selected)")

	invoicesEditCmd.Flags().IntVar(&editItem, "item", 0, "line item index (0-based)")
	invoicesEditCmd.Flags().StringArrayVar(&editSets, "set", nil, "field=value correction, repeatable")
	invoicesEditCmd.MarkFlagRequired("set")

	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesUploadCmd)
	invoicesCmd.AddCommand(invoicesProcessCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesEditCmd)
}

func runInvoicesList(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	invoices, err := a.client.ListInvoices(context.Background(), a.businessID(invBusiness))
	exitOnError(err, "failed to list invoices")
	if len(invoices) == 0 {
		fmt.Println("No invoices.")
		return
	}
	for _, inv := range invoices {
		view := inv.Status.View()
		fmt.Printf("%s  %-12s  %s", inv.ID, view.Label, inv.FileName)
		if inv.IsCorrected {
			fmt.Print("  [corrected]")
		}
		fmt.Println()
	}
}

func runInvoicesShow(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	inv, err := a.client.GetInvoice(context.Background(), args[0])
	exitOnError(err, "failed to fetch invoice")
	printInvoice(inv)
}

func printInvoice(inv domain.Invoice) {
	view := inv.Status.View()
	fmt.Printf("Invoice:  %s\n", inv.ID)
	fmt.Printf("File:     %s\n", inv.FileName)
	fmt.Printf("Status:   %s\n", view.Label)
	if inv.ErrorMessage != "" {
		fmt.Printf("Error:    %s\n", inv.ErrorMessage)
	}
	if len(view.AllowedActions) > 0 {
		actions := make([]string, len(view.AllowedActions))
		for i, act := range view.AllowedActions {
			actions[i] = string(act)
		}
		fmt.Printf("Actions:  %s\n", strings.Join(actions, ", "))
	}
	if inv.Extracted == nil {
		return
	}
	if inv.Extracted.Vendor.Name != "" {
		fmt.Printf("Vendor:   %s %s\n", inv.Extracted.Vendor.Name, inv.Extracted.Vendor.GSTIN)
	}
	fmt.Println("Line items:")
	for i, item := range inv.Extracted.LineItems {
		fmt.Printf("  [%d] %-28s qty %v x %v = %.2f  @%v%%", i, item.Description,
			item.Quantity, item.UnitRate, item.TaxableValue, item.GSTRate)
		if item.Total != nil {
			fmt.Printf("  total %.2f", *item.Total)
		}
		fmt.Println()
	}
	t := inv.Extracted.Totals
	fmt.Printf("Totals:   taxable %.2f  gst %.2f  grand %.2f\n",
		t.TaxableValue, t.GSTTotal, t.GrandTotal)
}

func runInvoicesUpload(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()
	businessID := a.requireBusinessID(invBusiness)

	path := args[0]
	f, err := os.Open(path)
	exitOnError(err, "failed to open file")
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	inv, err := a.client.UploadInvoice(context.Background(), businessID, filepath.Base(path), contentType, f)
	exitOnError(err, "upload failed")
	fmt.Printf("Uploaded %s as %s (%s)\n", inv.FileName, inv.ID, inv.Status.View().Label)
}

func runInvoicesProcess(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	inv, err := a.client.ProcessInvoice(context.Background(), args[0])
	exitOnError(err, "processing failed")
	printInvoice(inv)
}

func runInvoicesDelete(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	exitOnError(a.client.DeleteInvoice(context.Background(), args[0]), "delete failed")
	fmt.Println("Deleted.")
}

var editableFields = map[string]taxengine.Field{
	"description": taxengine.FieldDescription,
	"hsn_sac":     taxengine.FieldHSNSAC,
	"qty":         taxengine.FieldQuantity,
	"rate":        taxengine.FieldUnitRate,
	"gst_rate":    taxengine.FieldGSTRate,
}

func runInvoicesEdit(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()
	ctx := context.Background()

	inv, err := a.client.GetInvoice(ctx, args[0])
	exitOnError(err, "failed to fetch invoice")
	if !inv.Status.Allows(domain.ActionEditLineItems) {
		exitOnError(fmt.Errorf("invoice is %s", inv.Status.View().Label), "cannot edit line items")
	}

	sess := editsession.Load(inv)
	for _, set := range editSets {
		name, value, ok := strings.Cut(set, "=")
		if !ok {
			exitOnError(fmt.Errorf("%q is not field=value", set), "invalid --set")
		}
		field, ok := editableFields[name]
		if !ok {
			exitOnError(fmt.Errorf("unknown field %q", name), "invalid --set")
		}
		exitOnError(sess.Edit(editItem, field, value), "edit failed")
	}
	if !sess.Dirty() {
		fmt.Println("Nothing changed.")
		return
	}

	patch := sess.BuildPatch()
	updated, err := a.client.PatchInvoice(ctx, inv.ID, patch)
	exitOnError(err, "failed to save corrections")
	sess.Commit(patch)
	printInvoice(updated)
}
