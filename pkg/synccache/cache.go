// Package synccache mirrors fetched invoices into a local SQLite database
// so listings and aggregate stats work offline. The server copy remains
// authoritative; a sync simply overwrites the mirror row by row.
package synccache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"gstdesk/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS invoices (
    id TEXT PRIMARY KEY,
    business_id TEXT NOT NULL,
    file_name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    taxable_value REAL NOT NULL DEFAULT 0,
    gst_total REAL NOT NULL DEFAULT 0,
    grand_total REAL NOT NULL DEFAULT 0,
    is_corrected INTEGER NOT NULL DEFAULT 0,
    extracted_json TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP,
    synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_invoices_business
    ON invoices(business_id);

CREATE INDEX IF NOT EXISTS idx_invoices_status
    ON invoices(status);
`

// Cache is the local invoice mirror.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Upsert mirrors one invoice read into the cache.
func (c *Cache) Upsert(inv domain.Invoice) error {
	var taxable, gstTotal, grand float64
	extracted := ""
	if inv.Extracted != nil {
		taxable = inv.Extracted.Totals.TaxableValue
		gstTotal = inv.Extracted.Totals.GSTTotal
		grand = inv.Extracted.Totals.GrandTotal
		data, err := json.Marshal(inv.Extracted)
		if err != nil {
			return fmt.Errorf("encode extracted data: %w", err)
		}
		extracted = string(data)
	}
	_, err := c.db.Exec(`
		INSERT INTO invoices (id, business_id, file_name, status, error_message,
			taxable_value, gst_total, grand_total, is_corrected, extracted_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			business_id = excluded.business_id,
			file_name = excluded.file_name,
			status = excluded.status,
			error_message = excluded.error_message,
			taxable_value = excluded.taxable_value,
			gst_total = excluded.gst_total,
			grand_total = excluded.grand_total,
			is_corrected = excluded.is_corrected,
			extracted_json = excluded.extracted_json,
			created_at = excluded.created_at,
			synced_at = CURRENT_TIMESTAMP
	`, inv.ID, inv.BusinessID, inv.FileName, string(inv.Status), inv.ErrorMessage,
		taxable, gstTotal, grand, inv.IsCorrected, extracted, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert invoice %s: %w", inv.ID, err)
	}
	return nil
}

// UpsertAll mirrors a batch of invoice reads in one transaction.
func (c *Cache) UpsertAll(invoices []domain.Invoice) error {
	for _, inv := range invoices {
		if err := c.Upsert(inv); err != nil {
			return err
		}
	}
	return nil
}

// Entry is one mirrored invoice row.
type Entry struct {
	ID           string
	BusinessID   string
	FileName     string
	Status       domain.InvoiceStatus
	ErrorMessage string
	TaxableValue float64
	GSTTotal     float64
	GrandTotal   float64
	IsCorrected  bool
	CreatedAt    time.Time
}

// List returns mirrored invoices for a business (all businesses when
// businessID is empty), newest first.
func (c *Cache) List(businessID string) ([]Entry, error) {
	query := `
		SELECT id, business_id, file_name, status, error_message,
			taxable_value, gst_total, grand_total, is_corrected, created_at
		FROM invoices`
	args := []any{}
	if businessID != "" {
		query += " WHERE business_id = ?"
		args = append(args, businessID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var status string
		var created sql.NullTime
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.FileName, &status, &e.ErrorMessage,
			&e.TaxableValue, &e.GSTTotal, &e.GrandTotal, &e.IsCorrected, &created); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		e.Status = domain.InvoiceStatus(status)
		if created.Valid {
			e.CreatedAt = created.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats summarizes the mirror: row counts per status and monetary totals.
type Stats struct {
	Total        int
	ByStatus     map[domain.InvoiceStatus]int
	TaxableValue float64
	GSTTotal     float64
	GrandTotal   float64
}

// Stats aggregates over the mirrored invoices of a business (all when
// businessID is empty).
func (c *Cache) Stats(businessID string) (Stats, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(taxable_value), 0),
			COALESCE(SUM(gst_total), 0), COALESCE(SUM(grand_total), 0)
		FROM invoices`
	args := []any{}
	if businessID != "" {
		query += " WHERE business_id = ?"
		args = append(args, businessID)
	}
	query += " GROUP BY status"

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByStatus: make(map[domain.InvoiceStatus]int)}
	for rows.Next() {
		var status string
		var count int
		var taxable, gstTotal, grand float64
		if err := rows.Scan(&status, &count, &taxable, &gstTotal, &grand); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[domain.InvoiceStatus(status)] = count
		stats.Total += count
		stats.TaxableValue += taxable
		stats.GSTTotal += gstTotal
		stats.GrandTotal += grand
	}
	return stats, rows.Err()
}

// Delete removes a mirrored invoice, e.g. after a server-side delete.
func (c *Cache) Delete(id string) error {
	if _, err := c.db.Exec("DELETE FROM invoices WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}
	return nil
}
