package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", 3+i))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write test PDF: %v", err)
	}
}

func TestMergePDFs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	out := filepath.Join(dir, "merged.pdf")
	writeTestPDF(t, a, 2)
	writeTestPDF(t, b, 3)

	if err := MergePDFs([]string{a, b}, out); err != nil {
		t.Fatalf("MergePDFs failed: %v", err)
	}

	info, err := Info(out)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Pages != 5 {
		t.Errorf("merged page count = %d, want 5", info.Pages)
	}
}

func TestRemoveBookmarks(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	out := filepath.Join(dir, "merged.pdf")
	writeTestPDF(t, a, 1)
	writeTestPDF(t, b, 1)

	if err := MergePDFs([]string{a, b}, out); err != nil {
		t.Fatalf("MergePDFs failed: %v", err)
	}
	if err := RemoveBookmarks(out); err != nil {
		t.Fatalf("RemoveBookmarks failed: %v", err)
	}
	info, err := Info(out)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Pages != 2 {
		t.Errorf("page count after bookmark removal = %d, want 2", info.Pages)
	}
}

func TestAddPageNumbers(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "numbered.pdf")
	writeTestPDF(t, in, 3)

	if err := AddPageNumbers(in, out, 1); err != nil {
		t.Fatalf("AddPageNumbers failed: %v", err)
	}

	info, err := Info(out)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Pages != 3 {
		t.Errorf("numbered page count = %d, want 3", info.Pages)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("scratch file left behind: %s", e.Name())
		}
	}
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	writeTestPDF(t, in, 4)

	info, err := Info(in)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Pages != 4 {
		t.Errorf("pages = %d, want 4", info.Pages)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("sizeBytes = %d, want > 0", info.SizeBytes)
	}
	if info.Encrypted {
		t.Error("encrypted = true for a plain document")
	}
}

// writeEncryptedStubPDF writes a single-page PDF whose trailer references an
// encryption dictionary, the shape a password-protected document presents
// before any password is supplied.
func writeEncryptedStubPDF(t *testing.T, path string) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")
	obj("4 0 obj\n<< /Filter /Standard /V 1 /R 2 /O <0000000000000000000000000000000000000000000000000000000000000000> /U <0000000000000000000000000000000000000000000000000000000000000000> /P -44 >>\nendobj\n")

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Encrypt 4 0 R /ID [<00> <00>] >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write encrypted stub PDF: %v", err)
	}
}

func TestInfoEncrypted(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "locked.pdf")
	writeEncryptedStubPDF(t, in)

	info, err := Info(in)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if !info.Encrypted {
		t.Error("encrypted = false for a password-protected document")
	}
	if info.SizeBytes <= 0 {
		t.Errorf("sizeBytes = %d, want > 0", info.SizeBytes)
	}
}

func TestInfoUnreadable(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "garbage.pdf")
	if err := os.WriteFile(in, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Info(in); err == nil {
		t.Fatal("expected error for unreadable PDF")
	}
}
