package apiclient_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"gstdesk/internal/emulator"
	"gstdesk/pkg/apiclient"
	"gstdesk/pkg/domain"
	"gstdesk/pkg/editsession"
	"gstdesk/pkg/session"
	"gstdesk/pkg/taxengine"
)

type memStore struct{ token string }

func (m *memStore) Token() (string, error)      { return m.token, nil }
func (m *memStore) PutToken(token string) error { m.token = token; return nil }
func (m *memStore) DeleteToken() error          { m.token = ""; return nil }

// TestClientAgainstEmulator walks the whole client surface against the
// in-process platform emulator: signup, login, business setup, upload,
// processing, a correction round-trip, and the GST summaries.
func TestClientAgainstEmulator(t *testing.T) {
	srv := httptest.NewServer(emulator.New("e2e-secret").Handler())
	defer srv.Close()
	ctx := context.Background()

	mgr, err := session.NewManager(&memStore{})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	client := apiclient.NewClient(srv.URL, apiclient.WithTokenSource(mgr))

	if _, err := client.Signup(ctx, "e2e@example.com", "Str0ng!Passw0rd", "E2E User"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	login, err := client.Login(ctx, "e2e@example.com", "Str0ng!Passw0rd")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	mgr.SetToken(login.AccessToken)
	if sess := mgr.Session(); sess.SubjectEmail != "e2e@example.com" {
		t.Fatalf("session email = %q", sess.SubjectEmail)
	}

	biz, err := client.CreateBusiness(ctx, apiclient.CreateBusinessRequest{Name: "E2E Traders", GSTIN: "27AAAPA1234A1Z5"})
	if err != nil {
		t.Fatalf("CreateBusiness: %v", err)
	}
	listed, err := client.ListBusinesses(ctx)
	if err != nil || len(listed) != 1 {
		t.Fatalf("ListBusinesses = %v, err %v", listed, err)
	}

	inv, err := client.UploadInvoice(ctx, biz.ID, "purchase.pdf", "application/pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("UploadInvoice: %v", err)
	}
	if inv.Status != domain.StatusUploaded {
		t.Fatalf("uploaded status = %q", inv.Status)
	}

	processed, err := client.ProcessInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("ProcessInvoice: %v", err)
	}
	if processed.Status != domain.StatusExtracted || processed.Extracted == nil {
		t.Fatalf("processed = %+v", processed)
	}

	// Correct the first line item through an edit session and push it back.
	edit := editsession.Load(processed)
	if err := edit.Edit(0, taxengine.FieldQuantity, 5); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	patch := edit.BuildPatch()
	patched, err := client.PatchInvoice(ctx, processed.ID, patch)
	if err != nil {
		t.Fatalf("PatchInvoice: %v", err)
	}
	if !patched.IsCorrected {
		t.Fatal("patched invoice not marked corrected")
	}
	if got := patched.Extracted.LineItems[0].Quantity; got != 5 {
		t.Fatalf("server-side quantity = %v, want 5", got)
	}
	if !edit.Commit(patch) {
		t.Fatal("commit rejected an undisturbed patch")
	}
	if edit.Dirty() {
		t.Fatal("session still dirty after commit")
	}

	liability, err := client.GSTLiability(ctx, biz.ID)
	if err != nil {
		t.Fatalf("GSTLiability: %v", err)
	}
	if liability.OutputTax != patched.Extracted.Totals.GSTTotal {
		t.Fatalf("output tax = %v, want %v", liability.OutputTax, patched.Extracted.Totals.GSTTotal)
	}

	gstr1, err := client.PrepareGSTR1(ctx, biz.ID)
	if err != nil || len(gstr1) == 0 {
		t.Fatalf("PrepareGSTR1 = %s, err %v", gstr1, err)
	}
	gstr3b, err := client.PrepareGSTR3B(ctx, biz.ID)
	if err != nil || len(gstr3b) == 0 {
		t.Fatalf("PrepareGSTR3B = %s, err %v", gstr3b, err)
	}

	report, err := client.ProfitAndLoss(ctx, biz.ID)
	if err != nil {
		t.Fatalf("ProfitAndLoss: %v", err)
	}
	if report.TotalExpenses != patched.Extracted.Totals.GrandTotal {
		t.Fatalf("total expenses = %v, want %v", report.TotalExpenses, patched.Extracted.Totals.GrandTotal)
	}
	if _, err := client.ExpensesByCategory(ctx, biz.ID); err != nil {
		t.Fatalf("ExpensesByCategory: %v", err)
	}

	if err := client.DeleteInvoice(ctx, processed.ID); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}
	if _, err := client.GetInvoice(ctx, processed.ID); !apiclient.IsNotFound(err) {
		t.Fatalf("get after delete err = %v, want not-found", err)
	}
}
