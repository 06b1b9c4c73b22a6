package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"gstdesk/pkg/domain"
	"gstdesk/pkg/editsession"
)

// ListInvoices returns invoices, optionally filtered to one business.
func (c *Client) ListInvoices(ctx context.Context, businessID string) ([]domain.Invoice, error) {
	path := "/api/v1/invoices"
	if businessID != "" {
		path += "?business_id=" + url.QueryEscape(businessID)
	}
	var out []domain.Invoice
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", path, nil), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInvoice fetches one invoice by id.
func (c *Client) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	var out domain.Invoice
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", "/api/v1/invoices/"+id, nil), &out); err != nil {
		return domain.Invoice{}, err
	}
	return out, nil
}

// UploadInvoice uploads an invoice file for a business as multipart form
// data. The file bytes are buffered so the request can be retried.
func (c *Client) UploadInvoice(ctx context.Context, businessID, filename, contentType string, r io.Reader) (domain.Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("read upload: %w", err)
	}

	build := func() (*http.Request, error) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		if err := writer.WriteField("business_id", businessID); err != nil {
			return nil, err
		}
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/invoices", body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		if contentType != "" {
			req.Header.Set("X-Upload-Content-Type", contentType)
		}
		return req, nil
	}

	var out domain.Invoice
	if err := c.do(ctx, build, &out); err != nil {
		return domain.Invoice{}, err
	}
	return out, nil
}

// ProcessInvoice asks the server to run (or re-run) extraction. The
// response carries the server-acknowledged status.
func (c *Client) ProcessInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	var out domain.Invoice
	if err := c.do(ctx, c.jsonRequest(ctx, "POST", "/api/v1/invoices/"+id+"/process", nil), &out); err != nil {
		return domain.Invoice{}, err
	}
	return out, nil
}

// PatchInvoice submits corrected line items built by an edit session.
func (c *Client) PatchInvoice(ctx context.Context, id string, patch editsession.Patch) (domain.Invoice, error) {
	var out domain.Invoice
	if err := c.do(ctx, c.jsonRequest(ctx, "PATCH", "/api/v1/invoices/"+id, patch), &out); err != nil {
		return domain.Invoice{}, err
	}
	return out, nil
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.do(ctx, c.jsonRequest(ctx, "DELETE", "/api/v1/invoices/"+id, nil), nil)
}
