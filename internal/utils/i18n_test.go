package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "ok" {
		t.Fatalf("fallback to pt failed: %s", got)
	}
	if got := T("en", "result.save_failed"); got == "result.save_failed" {
		t.Fatalf("missing en translation")
	}
}
