package apiclient

import (
	"context"
	"encoding/json"
	"net/url"

	"gstdesk/pkg/domain"
)

// ProfitAndLoss fetches the income vs expenses summary.
func (c *Client) ProfitAndLoss(ctx context.Context, businessID string) (domain.ProfitLossReport, error) {
	path := "/api/v1/reports/pl"
	if businessID != "" {
		path += "?business_id=" + url.QueryEscape(businessID)
	}
	var out domain.ProfitLossReport
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", path, nil), &out); err != nil {
		return domain.ProfitLossReport{}, err
	}
	return out, nil
}

// ExpensesByCategory fetches the categorized expense totals.
func (c *Client) ExpensesByCategory(ctx context.Context, businessID string) (domain.ExpenseReport, error) {
	path := "/api/v1/reports/expenses"
	if businessID != "" {
		path += "?business_id=" + url.QueryEscape(businessID)
	}
	var out domain.ExpenseReport
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", path, nil), &out); err != nil {
		return domain.ExpenseReport{}, err
	}
	return out, nil
}

// GSTLiability fetches the output-tax / ITC summary for a business.
func (c *Client) GSTLiability(ctx context.Context, businessID string) (domain.GSTLiability, error) {
	var out domain.GSTLiability
	path := "/api/v1/gst/businesses/" + businessID + "/liability"
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", path, nil), &out); err != nil {
		return domain.GSTLiability{}, err
	}
	return out, nil
}

// PrepareGSTR1 asks the server to assemble a GSTR-1 outward-supply filing
// document. The document structure is owned by the server; it is returned
// opaque.
func (c *Client) PrepareGSTR1(ctx context.Context, businessID string) (json.RawMessage, error) {
	body := map[string]string{"business_id": businessID}
	var out json.RawMessage
	if err := c.do(ctx, c.jsonRequest(ctx, "POST", "/api/v1/gst/gstr1/prepare", body), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PrepareGSTR3B asks the server to assemble a GSTR-3B summary filing
// document.
func (c *Client) PrepareGSTR3B(ctx context.Context, businessID string) (json.RawMessage, error) {
	body := map[string]string{"business_id": businessID}
	var out json.RawMessage
	if err := c.do(ctx, c.jsonRequest(ctx, "POST", "/api/v1/gst/gstr3b/prepare", body), &out); err != nil {
		return nil, err
	}
	return out, nil
}
