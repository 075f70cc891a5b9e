package normalization

import "testing"

func TestParseInputString(t *testing.T) {
	if got := ParseInputString("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("ParseInputString = %q", got)
	}
}

func TestTrimInputString(t *testing.T) {
	if got := TrimInputString("  Alice "); got != "Alice" {
		t.Errorf("TrimInputString = %q", got)
	}
}
