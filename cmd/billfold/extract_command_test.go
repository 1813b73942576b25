package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/billfold/billfold/internal/testsupport"
)

func TestExtractCommandShowsFields(t *testing.T) {
	env := setupCLITestEnv(t)

	pdf := filepath.Join(env.baseDir, "invoice.pdf")
	testsupport.WritePDF(t, pdf,
		"Acme Industries Pvt Ltd",
		"GSTIN: 29AABCU9603R1ZM",
		"Invoice Number: INV-2024-0042",
		"Invoice Date: 15/04/2024",
		"Total Amount: Rs. 12,500.50",
	)

	out, _, err := runCLI(t, []string{"extract", pdf}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Acme Industries Pvt Ltd")
	requireContains(t, out, "INV-2024-0042")
	requireContains(t, out, "29AABCU9603R1ZM")
	requireContains(t, out, "12500.50")
	requireContains(t, out, "2024-04-15")
	if strings.Contains(out, "Missing:") {
		t.Fatalf("complete extraction should not report missing fields, got:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"extract", "--all-matches", pdf}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("extract --all-matches: %v", err)
	}
	requireContains(t, out, "Invoice Number")
	requireContains(t, out, "INV-2024-0042")
}

func TestExtractCommandReportsMissingFields(t *testing.T) {
	env := setupCLITestEnv(t)

	pdf := filepath.Join(env.baseDir, "statement.pdf")
	testsupport.WritePDF(t, pdf,
		"Statement of account",
		"Total Amount: Rs. 42.00",
	)

	out, _, err := runCLI(t, []string{"extract", pdf}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Missing: company, invoice number")
}
