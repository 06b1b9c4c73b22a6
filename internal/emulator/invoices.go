package emulator

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gstdesk/pkg/domain"
	"gstdesk/pkg/taxengine"
)

const maxUploadBytes = 16 << 20

func (s *Server) handleUploadInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	businessID := r.FormValue("business_id")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bizOwner[businessID] != userIDFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "Business not found")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	inv := &domain.Invoice{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		FileName:    header.Filename,
		ContentType: contentType,
		Status:      domain.StatusUploaded,
		CreatedAt:   s.now().UTC(),
	}
	s.invoices[inv.ID] = inv
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("business_id")
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Invoice{}
	for _, inv := range s.invoices {
		if s.bizOwner[inv.BusinessID] != userID {
			continue
		}
		if businessID != "" && inv.BusinessID != businessID {
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoiceForUser(chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleProcessInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoiceForUser(chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	s.runExtraction(inv)
	writeJSON(w, http.StatusOK, inv)
}

// runExtraction is the deterministic stand-in for the OCR/LLM pipeline.
// The file name drives the outcome so tests and demos can force each
// status: names containing "fail" fail, image uploads come back
// low-confidence, everything else extracts cleanly.
func (s *Server) runExtraction(inv *domain.Invoice) {
	name := strings.ToLower(inv.FileName)
	if strings.Contains(name, "fail") {
		inv.Status = domain.StatusFailed
		inv.ErrorMessage = "extraction failed: unreadable document"
		inv.Extracted = nil
		inv.ProcessedAt = nil
		return
	}

	items := []domain.LineItem{
		taxengine.Recalculate(domain.LineItem{
			Description: "Office supplies",
			HSNSAC:      "4820",
			GSTRate:     12,
			Quantity:    2,
			UnitRate:    250,
		}),
		taxengine.Recalculate(domain.LineItem{
			Description: "Consulting services",
			HSNSAC:      "9983",
			GSTRate:     18,
			Quantity:    1,
			UnitRate:    5000,
		}),
	}
	inv.Extracted = &domain.ExtractedData{
		Vendor:    domain.Vendor{Name: "Acme Traders", GSTIN: "27AAAPA1234A1Z5", StateCode: "27"},
		Invoice:   domain.InvoiceInfo{Number: "INV-" + inv.ID[:8], Date: s.now().UTC().Format("2006-01-02")},
		LineItems: items,
	}
	recomputeTotals(inv.Extracted)

	switch filepath.Ext(name) {
	case ".jpg", ".jpeg", ".png":
		inv.Status = domain.StatusNeedsReview
	default:
		inv.Status = domain.StatusExtracted
	}
	inv.ErrorMessage = ""
	processed := s.now().UTC()
	inv.ProcessedAt = &processed
}

func (s *Server) handlePatchInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Extracted *struct {
			LineItems []domain.LineItem `json:"line_items"`
		} `json:"extracted_json"`
		IsCorrected *bool `json:"is_corrected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoiceForUser(chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	if req.Extracted != nil {
		if inv.Extracted == nil {
			inv.Extracted = &domain.ExtractedData{}
		}
		inv.Extracted.LineItems = req.Extracted.LineItems
		recomputeTotals(inv.Extracted)
	}
	if req.IsCorrected != nil {
		inv.IsCorrected = *req.IsCorrected
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoiceForUser(chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	delete(s.invoices, inv.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// invoiceForUser returns the invoice only when its business belongs to the
// user. Callers must hold s.mu.
func (s *Server) invoiceForUser(id, userID string) (*domain.Invoice, bool) {
	inv, ok := s.invoices[id]
	if !ok || s.bizOwner[inv.BusinessID] != userID {
		return nil, false
	}
	return inv, true
}

func recomputeTotals(ext *domain.ExtractedData) {
	var taxable, gst float64
	for _, item := range ext.LineItems {
		taxable += item.TaxableValue
		if item.IGST != nil {
			gst += *item.IGST
		}
	}
	ext.Totals = domain.Totals{
		TaxableValue: taxable,
		GSTTotal:     gst,
		GrandTotal:   taxable + gst,
	}
}

func (s *Server) handleProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	report := domain.ProfitLossReport{ExpensesByCategory: map[string]float64{}}
	for _, inv := range s.extractedInvoices(r) {
		report.ExpensesByCategory["General"] += inv.Extracted.Totals.GrandTotal
		report.TotalExpenses += inv.Extracted.Totals.GrandTotal
	}
	report.Net = report.Income - report.TotalExpenses
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	report := domain.ExpenseReport{ByCategory: map[string]float64{}}
	for _, inv := range s.extractedInvoices(r) {
		report.ByCategory["General"] += inv.Extracted.Totals.GrandTotal
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLiability(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "id")
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bizOwner[businessID] != userID {
		writeError(w, http.StatusNotFound, "Business not found")
		return
	}
	var outputTax float64
	for _, inv := range s.invoices {
		if inv.BusinessID == businessID && inv.Status == domain.StatusExtracted && inv.Extracted != nil {
			outputTax += inv.Extracted.Totals.GSTTotal
		}
	}
	writeJSON(w, http.StatusOK, domain.GSTLiability{
		BusinessID: businessID,
		OutputTax:  outputTax,
		ITC:        0,
		TaxPayable: outputTax,
	})
}

func (s *Server) handlePrepareGSTR1(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.prepareBusinessID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b2c := []map[string]any{}
	for _, inv := range s.invoices {
		if inv.BusinessID != businessID || inv.Status != domain.StatusExtracted || inv.Extracted == nil {
			continue
		}
		b2c = append(b2c, map[string]any{
			"inv_no":     inv.Extracted.Invoice.Number,
			"inv_date":   inv.Extracted.Invoice.Date,
			"totals":     inv.Extracted.Totals,
			"line_items": inv.Extracted.LineItems,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"b2b": []any{}, "b2c": b2c, "version": "GSTR1_0.1"})
}

func (s *Server) handlePrepareGSTR3B(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.prepareBusinessID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var outputTax float64
	for _, inv := range s.invoices {
		if inv.BusinessID == businessID && inv.Status == domain.StatusExtracted && inv.Extracted != nil {
			outputTax += inv.Extracted.Totals.GSTTotal
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"business_id": businessID,
		"period":      s.now().UTC().Format("2006-01"),
		"output_tax":  outputTax,
		"itc":         0.0,
		"tax_payable": outputTax,
		"generated":   s.now().UTC().Format(time.RFC3339),
		"version":     "GSTR3B_0.1",
	})
}

func (s *Server) prepareBusinessID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		BusinessID string `json:"business_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BusinessID == "" {
		writeError(w, http.StatusBadRequest, "business_id required")
		return "", false
	}
	s.mu.Lock()
	owner := s.bizOwner[req.BusinessID]
	s.mu.Unlock()
	if owner != userIDFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "Business not found")
		return "", false
	}
	return req.BusinessID, true
}

// extractedInvoices returns copies of the user's extracted invoices,
// optionally filtered by the business_id query parameter.
func (s *Server) extractedInvoices(r *http.Request) []domain.Invoice {
	businessID := r.URL.Query().Get("business_id")
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Invoice{}
	for _, inv := range s.invoices {
		if s.bizOwner[inv.BusinessID] != userID {
			continue
		}
		if businessID != "" && inv.BusinessID != businessID {
			continue
		}
		if inv.Status != domain.StatusExtracted || inv.Extracted == nil {
			continue
		}
		out = append(out, *inv)
	}
	return out
}
