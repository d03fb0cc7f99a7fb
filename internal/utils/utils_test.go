package utils

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"my file (1).pdf", "my_file__1_.pdf"},
		{"浮水印.pdf", "___.pdf"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := strings.Repeat("a", 150) + ".pdf"
	if got := SanitizeFilename(long); len(got) != 100 {
		t.Errorf("long filename not capped: len = %d", len(got))
	}
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	if a == "" || a == b {
		t.Errorf("UUIDs not unique: %q, %q", a, b)
	}
}

func TestClassifyUpload(t *testing.T) {
	cases := []struct{ in, want string }{
		{"doc.pdf", FilePDF},
		{"doc.PDF", FilePDF},
		{"letter.docx", FileWord},
		{"letter.doc", FileWord},
		{"scan.jpeg", FileImage},
		{"scan.webp", FileImage},
		{"archive.zip", FileUnknown},
		{"noext", FileUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyUpload(tc.in); got != tc.want {
			t.Errorf("ClassifyUpload(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
