package domain

// Action is a client operation that may be enabled for an invoice.
type Action string

const (
	ActionProcess       Action = "process"
	ActionReprocess     Action = "reprocess"
	ActionEditLineItems Action = "edit_line_items"
	ActionDelete        Action = "delete"
)

// Severity classifies a status for presentation.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityPending Severity = "pending"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// StatusView is the flat classification of an invoice status: a display
// label, a severity, and the client actions enabled in that status. Actual
// transitions are authoritative on the server; this table only gates
// controls.
type StatusView struct {
	Label          string
	Severity       Severity
	AllowedActions []Action
}

var statusViews = map[InvoiceStatus]StatusView{
	StatusUploaded: {
		Label:          "Uploaded",
		Severity:       SeverityNeutral,
		AllowedActions: []Action{ActionProcess},
	},
	StatusProcessing: {
		Label:          "Processing",
		Severity:       SeverityPending,
		AllowedActions: nil,
	},
	StatusExtracted: {
		Label:          "Extracted",
		Severity:       SeveritySuccess,
		AllowedActions: []Action{ActionEditLineItems, ActionDelete},
	},
	StatusNeedsReview: {
		Label:          "Needs review",
		Severity:       SeverityWarning,
		AllowedActions: []Action{ActionReprocess, ActionEditLineItems, ActionDelete},
	},
	StatusFailed: {
		Label:          "Failed",
		Severity:       SeverityError,
		AllowedActions: []Action{ActionReprocess, ActionDelete},
	},
}

// View returns the classification for the status. Unknown statuses map to a
// neutral view with no enabled actions.
func (s InvoiceStatus) View() StatusView {
	if v, ok := statusViews[s]; ok {
		actions := make([]Action, len(v.AllowedActions))
		copy(actions, v.AllowedActions)
		v.AllowedActions = actions
		return v
	}
	return StatusView{Label: string(s), Severity: SeverityNeutral}
}

// Allows reports whether the action is enabled in the status.
func (s InvoiceStatus) Allows(action Action) bool {
	for _, a := range s.View().AllowedActions {
		if a == action {
			return true
		}
	}
	return false
}
