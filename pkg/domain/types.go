package domain

import "time"

type InvoiceStatus string

const (
	StatusUploaded    InvoiceStatus = "UPLOADED"
	StatusProcessing  InvoiceStatus = "PROCESSING"
	StatusExtracted   InvoiceStatus = "EXTRACTED"
	StatusNeedsReview InvoiceStatus = "NEEDS_REVIEW"
	StatusFailed      InvoiceStatus = "FAILED"
)

// Session is the decoded identity derived from the raw bearer token.
// All fields besides Token are derived; if Token is empty the rest are zero.
type Session struct {
	Token        string     `json:"-"`
	SubjectID    string     `json:"subjectId"`
	SubjectEmail string     `json:"subjectEmail"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// Authenticated reports whether a raw token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Invoice is the client-held read/edit copy of a server-owned invoice.
// Status is mutated only by server responses; the client never transitions
// it locally.
type Invoice struct {
	ID           string         `json:"id"`
	BusinessID   string         `json:"business_id"`
	FileName     string         `json:"file_name"`
	ContentType  string         `json:"content_type"`
	Status       InvoiceStatus  `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Extracted    *ExtractedData `json:"extracted_json,omitempty"`
	IsCorrected  bool           `json:"is_corrected"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ExtractedData is the structured extraction result attached to an invoice.
// Every field is optional on the wire; absent sections decode to zero values.
type ExtractedData struct {
	Vendor    Vendor      `json:"vendor"`
	Buyer     Vendor      `json:"buyer"`
	Invoice   InvoiceInfo `json:"invoice"`
	Totals    Totals      `json:"totals"`
	LineItems []LineItem  `json:"line_items"`
}

type Vendor struct {
	Name      string `json:"name,omitempty"`
	GSTIN     string `json:"gstin,omitempty"`
	StateCode string `json:"state_code,omitempty"`
}

type InvoiceInfo struct {
	Number string `json:"number,omitempty"`
	Date   string `json:"date,omitempty"`
}

type Totals struct {
	TaxableValue float64 `json:"taxable_value"`
	GSTTotal     float64 `json:"gst_total"`
	GrandTotal   float64 `json:"grand_total"`
}

// LineItem is one line of an invoice with its GST split. CGST, SGST, IGST
// and Total are pointers so "not yet computed" is distinguishable from zero.
type LineItem struct {
	ID           string   `json:"id,omitempty"`
	Description  string   `json:"description"`
	HSNSAC       string   `json:"hsn_sac"`
	GSTRate      float64  `json:"gst_rate"`
	Quantity     float64  `json:"qty"`
	UnitRate     float64  `json:"rate"`
	TaxableValue float64  `json:"taxable_value"`
	CGST         *float64 `json:"cgst,omitempty"`
	SGST         *float64 `json:"sgst,omitempty"`
	IGST         *float64 `json:"igst,omitempty"`
	Total        *float64 `json:"total,omitempty"`
}

type Business struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GSTIN        string    `json:"gstin,omitempty"`
	BusinessType string    `json:"business_type,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// ProfitLossReport summarizes income against categorized expenses.
type ProfitLossReport struct {
	Income             float64            `json:"income"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	TotalExpenses      float64            `json:"total_expenses"`
	Net                float64            `json:"net"`
}

type ExpenseReport struct {
	ByCategory map[string]float64 `json:"by_category"`
}

// GSTLiability is the output-tax vs input-tax-credit summary for a business.
type GSTLiability struct {
	BusinessID string  `json:"business_id"`
	OutputTax  float64 `json:"output_tax"`
	ITC        float64 `json:"itc"`
	TaxPayable float64 `json:"tax_payable"`
}
