package invoices

import (
	"reflect"
	"testing"

	"github.com/billfold/billfold/internal/queue"
)

func TestFieldsRoundTripThroughItem(t *testing.T) {
	f := Fields{
		Company:       "Acme Consulting",
		InvoiceNumber: "INV-42",
		GSTNumber:     "29ABCDE1234F1Z5",
		Amount:        "999.00",
		InvoiceDate:   "2024-04-01",
	}

	item := &queue.Item{}
	f.WriteToItem(item)

	if got := FromItem(item); got != f {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestFromItemTrimsWhitespace(t *testing.T) {
	item := &queue.Item{CompanyName: "  Acme  ", InvoiceNumber: " INV-1 "}
	got := FromItem(item)
	if got.Company != "Acme" || got.InvoiceNumber != "INV-1" {
		t.Fatalf("expected trimmed values, got %+v", got)
	}
}

func TestFieldsComplete(t *testing.T) {
	cases := []struct {
		name string
		f    Fields
		want bool
	}{
		{"both present", Fields{Company: "Acme", InvoiceNumber: "1"}, true},
		{"company only", Fields{Company: "Acme"}, true},
		{"invoice only", Fields{InvoiceNumber: "1"}, true},
		{"neither", Fields{GSTNumber: "29ABCDE1234F1Z5"}, false},
		{"whitespace only", Fields{Company: "   "}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Complete(); got != tc.want {
				t.Fatalf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFieldsMissing(t *testing.T) {
	got := Fields{}.Missing()
	want := []string{"company", "invoice number"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing() = %v, want %v", got, want)
	}

	if missing := (Fields{Company: "Acme", InvoiceNumber: "1"}).Missing(); len(missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", missing)
	}
}

func TestFromItemNil(t *testing.T) {
	if got := FromItem(nil); got != (Fields{}) {
		t.Fatalf("FromItem(nil) = %+v, want zero", got)
	}
}
