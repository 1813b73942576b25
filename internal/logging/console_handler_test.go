package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerSuppressesRepeatedInfoFields(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, level, false))
	logger = logger.With(String(FieldComponent, "organizer"), Int64(FieldItemID, 3))

	logger.Info("progress", String("company", "Acme"))
	if first := buf.String(); !strings.Contains(first, "- Company: Acme") {
		t.Fatalf("first log missing field:\n%s", first)
	}

	buf.Reset()
	logger.Info("progress", String("company", "Acme"))
	if second := buf.String(); strings.Contains(second, "- Company: Acme") {
		t.Fatalf("repeated field should be suppressed:\n%s", second)
	}

	buf.Reset()
	logger.Info("progress", String("company", "Globex"))
	if third := buf.String(); !strings.Contains(third, "- Company: Globex") {
		t.Fatalf("changed field should reappear:\n%s", third)
	}
}

func TestPrettyHandlerDebugShowsAllAttrs(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	logger := slog.New(newPrettyHandler(&buf, level, false))

	logger.Debug("inspect", String("fingerprint", "abc123"), String("company", "Acme"))

	out := buf.String()
	if !strings.Contains(out, "fingerprint: abc123") {
		t.Fatalf("debug output missing fingerprint:\n%s", out)
	}
	if !strings.Contains(out, "company: Acme") {
		t.Fatalf("debug output missing company:\n%s", out)
	}
}

func TestPrettyHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, level, false))

	logger.Info("grouped", Group("invoice", String("number", "INV-5")))

	out := buf.String()
	if !strings.Contains(out, "Invoice.number: INV-5") {
		t.Fatalf("expected flattened group key, got:\n%s", out)
	}
}

func TestComposeSubject(t *testing.T) {
	cases := []struct {
		lane, itemID, stage string
		want                string
	}{
		{"", "", "", ""},
		{"extract", "", "", "Extract"},
		{"", "7", "", "Item #7"},
		{"", "7", "filing", "Item #7 (filing)"},
		{"file", "7", "filing", "File · Item #7 (filing)"},
		{"", "", "filing", "filing"},
	}
	for _, tc := range cases {
		if got := composeSubject(tc.lane, tc.itemID, tc.stage); got != tc.want {
			t.Errorf("composeSubject(%q, %q, %q) = %q, want %q", tc.lane, tc.itemID, tc.stage, got, tc.want)
		}
	}
}

func TestDedupeKVsByKeyKeepsLastValue(t *testing.T) {
	attrs := []kv{
		{key: "status", value: slog.StringValue("pending")},
		{key: "company", value: slog.StringValue("Acme")},
		{key: "status", value: slog.StringValue("completed")},
	}
	deduped := dedupeKVsByKey(attrs)
	if len(deduped) != 2 {
		t.Fatalf("deduped length = %d, want 2", len(deduped))
	}
	if deduped[0].key != "status" || deduped[0].value.String() != "completed" {
		t.Fatalf("expected last status value to win, got %+v", deduped[0])
	}
}
