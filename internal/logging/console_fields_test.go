package logging

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSelectInfoFieldsOrdersHighlightsFirst(t *testing.T) {
	attrs := []kv{
		{key: "zeta", value: slog.StringValue("last")},
		{key: "invoice_number", value: slog.StringValue("INV-1")},
		{key: "company", value: slog.StringValue("Acme")},
	}

	fields, hidden := selectInfoFields(attrs, 0, true)
	if hidden != 0 {
		t.Fatalf("hidden = %d, want 0", hidden)
	}
	if len(fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(fields))
	}
	if fields[0].label != "Invoice" || fields[0].value != "INV-1" {
		t.Fatalf("first field = %+v, want Invoice: INV-1", fields[0])
	}
	if fields[1].label != "Company" || fields[1].value != "Acme" {
		t.Fatalf("second field = %+v, want Company: Acme", fields[1])
	}
	if fields[2].label != "Zeta" {
		t.Fatalf("third field = %+v, want Zeta", fields[2])
	}
}

func TestSelectInfoFieldsHidesDebugKeys(t *testing.T) {
	attrs := []kv{
		{key: "fingerprint", value: slog.StringValue("abc123")},
		{key: "source_path", value: slog.StringValue("/inbox/a.pdf")},
		{key: "company", value: slog.StringValue("Acme")},
	}

	fields, hidden := selectInfoFields(attrs, infoAttrLimit, false)
	if len(fields) != 1 || fields[0].label != "Company" {
		t.Fatalf("fields = %+v, want only Company", fields)
	}
	if hidden != 2 {
		t.Fatalf("hidden = %d, want 2", hidden)
	}
}

func TestSelectInfoFieldsEnforcesLimit(t *testing.T) {
	attrs := []kv{
		{key: "alpha", value: slog.StringValue("a")},
		{key: "beta", value: slog.StringValue("b")},
		{key: "gamma", value: slog.StringValue("c")},
		{key: "delta", value: slog.StringValue("d")},
	}

	fields, hidden := selectInfoFields(attrs, 2, true)
	if len(fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(fields))
	}
	if hidden != 2 {
		t.Fatalf("hidden = %d, want 2", hidden)
	}
}

func TestSelectInfoFieldsSkipsSubjectKeys(t *testing.T) {
	attrs := []kv{
		{key: FieldItemID, value: slog.Int64Value(4)},
		{key: FieldStage, value: slog.StringValue("extract")},
		{key: FieldLane, value: slog.StringValue("extract")},
		{key: "component", value: slog.StringValue("workflow")},
		{key: "status", value: slog.StringValue("pending")},
	}

	fields, hidden := selectInfoFields(attrs, 0, true)
	if hidden != 0 {
		t.Fatalf("hidden = %d, want 0", hidden)
	}
	if len(fields) != 1 || fields[0].label != "Status" {
		t.Fatalf("fields = %+v, want only Status", fields)
	}
}

func TestFormatValueForKeySmartFormats(t *testing.T) {
	cases := []struct {
		key   string
		value slog.Value
		want  string
	}{
		{"file_size", slog.Int64Value(1536), "1.5 KiB"},
		{"stage_duration", slog.DurationValue(90 * time.Second), "1m30s"},
		{FieldProgressPercent, slog.Float64Value(42.5), "42.5%"},
		{"needs_review", slog.BoolValue(true), "yes"},
		{"needs_review", slog.BoolValue(false), "no"},
	}
	for _, tc := range cases {
		if got := formatValueForKey(tc.key, tc.value); got != tc.want {
			t.Errorf("formatValueForKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.bytes); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestFormatDurationHuman(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{450 * time.Millisecond, "450ms"},
		{12345 * time.Millisecond, "12.3s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 29*time.Minute, "2h29m0s"},
	}
	for _, tc := range cases {
		if got := formatDurationHuman(tc.d); got != tc.want {
			t.Errorf("formatDurationHuman(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestTruncateErrorValueCapsLength(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := truncateErrorValue(long)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected truncated value to end with ellipsis, got %q", got)
	}
	if len(got) != 200+len("…") {
		t.Fatalf("truncated length = %d, want %d", len(got), 200+len("…"))
	}
	if short := truncateErrorValue("disk full"); short != "disk full" {
		t.Fatalf("short value altered: %q", short)
	}
}

func TestDisplayLabelKnownKeys(t *testing.T) {
	cases := map[string]string{
		"gst_number":     "GST",
		"invoice_number": "Invoice",
		"final_file":     "Filed As",
		"error_message":  "Error",
		"review_reason":  "Reason",
		"conflict_mode":  "Conflict Mode",
		"copied":         "Copied",
	}
	for key, want := range cases {
		if got := displayLabel(key); got != want {
			t.Errorf("displayLabel(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestInfoSummaryKeyFallbacks(t *testing.T) {
	attrs := []kv{{key: "invoice_number", value: slog.StringValue("INV-7")}}
	if got := infoSummaryKey("organizer", "", attrs); got != "invoice:INV-7" {
		t.Fatalf("invoice fallback = %q", got)
	}
	if got := infoSummaryKey("organizer", "12", nil); got != "12" {
		t.Fatalf("item id key = %q", got)
	}
	if got := infoSummaryKey("organizer", "", nil); got != "organizer" {
		t.Fatalf("component fallback = %q", got)
	}
	if got := infoSummaryKey("", "", nil); got != "" {
		t.Fatalf("empty key = %q", got)
	}
}
