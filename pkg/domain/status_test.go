package domain

import "testing"

func TestStatusViewTable(t *testing.T) {
	cases := []struct {
		status   InvoiceStatus
		severity Severity
		actions  []Action
	}{
		{StatusUploaded, SeverityNeutral, []Action{ActionProcess}},
		{StatusProcessing, SeverityPending, nil},
		{StatusExtracted, SeveritySuccess, []Action{ActionEditLineItems, ActionDelete}},
		{StatusNeedsReview, SeverityWarning, []Action{ActionReprocess, ActionEditLineItems, ActionDelete}},
		{StatusFailed, SeverityError, []Action{ActionReprocess, ActionDelete}},
	}
	for _, tc := range cases {
		v := tc.status.View()
		if v.Severity != tc.severity {
			t.Fatalf("%s: severity %q, want %q", tc.status, v.Severity, tc.severity)
		}
		if len(v.AllowedActions) != len(tc.actions) {
			t.Fatalf("%s: actions %v, want %v", tc.status, v.AllowedActions, tc.actions)
		}
		for i, a := range tc.actions {
			if v.AllowedActions[i] != a {
				t.Fatalf("%s: actions %v, want %v", tc.status, v.AllowedActions, tc.actions)
			}
		}
	}
}

func TestFailedExcludesLineItemEditing(t *testing.T) {
	if StatusFailed.Allows(ActionEditLineItems) {
		t.Fatalf("FAILED must not allow line-item editing")
	}
	if !StatusFailed.Allows(ActionReprocess) || !StatusFailed.Allows(ActionDelete) {
		t.Fatalf("FAILED must allow reprocess and delete")
	}
}

func TestUnknownStatusHasNoActions(t *testing.T) {
	v := InvoiceStatus("ARCHIVED").View()
	if len(v.AllowedActions) != 0 {
		t.Fatalf("unknown status should enable nothing, got %v", v.AllowedActions)
	}
	if v.Severity != SeverityNeutral {
		t.Fatalf("unknown status severity %q, want neutral", v.Severity)
	}
}

func TestViewReturnsCopy(t *testing.T) {
	v := StatusFailed.View()
	v.AllowedActions[0] = ActionProcess
	if StatusFailed.View().AllowedActions[0] != ActionReprocess {
		t.Fatalf("View must not expose the shared action table")
	}
}
