// Package editsession holds the in-memory working copy of an invoice's line
// items while a user corrects them, tracks dirty state, and produces the
// patch sent back to the server.
package editsession

import (
	"errors"
	"fmt"

	"gstdesk/pkg/domain"
	"gstdesk/pkg/taxengine"
)

// ErrIndexOutOfRange is returned when an edit targets a line item index
// outside the working copy. This is a caller programming error.
var ErrIndexOutOfRange = errors.New("line item index out of range")

// Session is the working copy for exactly one active editor. Loading an
// invoice again discards any unsaved state from a previous load
// (last-load-wins); concurrent edits are deliberately not merged.
type Session struct {
	invoiceID string
	items     []domain.LineItem
	dirty     bool
	// generation increments on every edit so Commit can tell whether the
	// working copy moved on after a patch was built.
	generation uint64
}

// Patch is the wire shape submitted to the server after corrections.
type Patch struct {
	Extracted   PatchExtracted `json:"extracted_json"`
	IsCorrected bool           `json:"is_corrected"`

	generation uint64
}

type PatchExtracted struct {
	LineItems []domain.LineItem `json:"line_items"`
}

// Load seeds a fresh session from the invoice's extracted line items. An
// invoice without extraction data yields an empty, clean working copy.
func Load(invoice domain.Invoice) *Session {
	var src []domain.LineItem
	if invoice.Extracted != nil {
		src = invoice.Extracted.LineItems
	}
	items := make([]domain.LineItem, len(src))
	copy(items, src)
	return &Session{invoiceID: invoice.ID, items: items}
}

// InvoiceID returns the id of the invoice being edited.
func (s *Session) InvoiceID() string {
	return s.invoiceID
}

// Dirty reports whether the working copy has unsaved edits.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Items returns a copy of the working line items, in order.
func (s *Session) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Edit applies a single field edit to the item at index through the tax
// engine and marks the session dirty. Ordering is preserved.
func (s *Session) Edit(index int, field taxengine.Field, value any) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.items))
	}
	item, err := taxengine.ApplyFieldEdit(s.items[index], field, value)
	if err != nil {
		return err
	}
	s.items[index] = item
	s.dirty = true
	s.generation++
	return nil
}

// BuildPatch snapshots the working copy in the persisted wire shape. The
// snapshot remembers which generation it was built from; committing it
// later only clears dirty state if no edit happened in between.
func (s *Session) BuildPatch() Patch {
	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return Patch{
		Extracted:   PatchExtracted{LineItems: items},
		IsCorrected: true,
		generation:  s.generation,
	}
}

// Commit records that the server acknowledged the patch. If an edit landed
// after the patch was built the session stays dirty so a follow-up save
// still happens; it reports whether the session is now clean.
func (s *Session) Commit(patch Patch) bool {
	if patch.generation == s.generation {
		s.dirty = false
	}
	return !s.dirty
}
