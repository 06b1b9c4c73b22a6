package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gstdesk/pkg/apiclient"
)

var (
	bizName    string
	bizGSTIN   string
	bizType    string
	bizAddress string
)

var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Manage businesses",
}

var businessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your businesses",
	Run:   runBusinessList,
}

var businessCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new business",
	Run:   runBusinessCreate,
}

var businessUseCmd = &cobra.Command{
	Use:   "use <business-id>",
	Short: "Select the default business for invoice commands",
	Args:  cobra.ExactArgs(1),
	Run:   runBusinessUse,
}

func init() {
	businessCreateCmd.Flags().StringVar(&bizName, "name", "", "business name (required)")
	businessCreateCmd.Flags().StringVar(&bizGSTIN, "gstin", "", "GSTIN")
	businessCreateCmd.Flags().StringVar(&bizType, "type", "", "business type")
	businessCreateCmd.Flags().StringVar(&bizAddress, "address", "", "registered address")
	businessCreateCmd.MarkFlagRequired("name")

	businessCmd.AddCommand(businessListCmd)
	businessCmd.AddCommand(businessCreateCmd)
	businessCmd.AddCommand(businessUseCmd)
}

func runBusinessList(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	businesses, err := a.client.ListBusinesses(context.Background())
	exitOnError(err, "failed to list businesses")

	selected, err := a.state.SelectedBusiness()
	exitOnError(err, "failed to read selected business")

	if len(businesses) == 0 {
		fmt.Println("No businesses yet. Run `gstdesk business create --name ...`.")
		return
	}
	for _, biz := range businesses {
		marker := " "
		if biz.ID == selected {
			marker = "*"
		}
		fmt.Printf("%s %s  %s", marker, biz.ID, biz.Name)
		if biz.GSTIN != "" {
			fmt.Printf("  (%s)", biz.GSTIN)
		}
		fmt.Println()
	}
}

func runBusinessCreate(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	biz, err := a.client.CreateBusiness(context.Background(), apiclient.CreateBusinessRequest{
		Name:         bizName,
		GSTIN:        bizGSTIN,
		BusinessType: bizType,
		Address:      bizAddress,
	})
	exitOnError(err, "failed to create business")

	// First business becomes the default selection.
	selected, err := a.state.SelectedBusiness()
	exitOnError(err, "failed to read selected business")
	if selected == "" {
		exitOnError(a.state.PutSelectedBusiness(biz.ID), "failed to select business")
	}
	fmt.Printf("Created business %s (%s)\n", biz.Name, biz.ID)
}

func runBusinessUse(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()
	a.requireSession()

	biz, err := a.client.GetBusiness(context.Background(), args[0])
	exitOnError(err, "business not found")
	exitOnError(a.state.PutSelectedBusiness(biz.ID), "failed to select business")
	fmt.Printf("Now using %s (%s)\n", biz.Name, biz.ID)
}
