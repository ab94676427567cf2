package mysql

import (
	"strings"
	"testing"
)

func TestStringOrDash(t *testing.T) {
	if got := stringOrDash("  "); got != "-" {
		t.Fatalf("stringOrDash(blank) = %q", got)
	}
	if got := stringOrDash("ocr"); got != "ocr" {
		t.Fatalf("stringOrDash(ocr) = %q", got)
	}
}

func TestJSONOrEmpty(t *testing.T) {
	cases := map[string]string{
		"":                 "{}",
		`{"status":500}`:   `{"status":500}`,
		"tesseract failed": `{"raw":"tesseract failed"}`,
	}
	for in, want := range cases {
		if got := jsonOrEmpty(in); got != want {
			t.Fatalf("jsonOrEmpty(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDSN(t *testing.T) {
	got := DSN("db.local", 3306, "rx", "secret", "catalog")
	for _, want := range []string{"rx:secret@tcp(db.local:3306)/catalog?", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(got, want) {
			t.Fatalf("DSN() = %q, missing %q", got, want)
		}
	}
}
