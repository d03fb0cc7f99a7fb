package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndGetSession(t *testing.T) {
	sm := NewSessionManager()
	s := sm.CreateSession()
	if s.ID == "" {
		t.Fatal("session ID is empty")
	}
	if s.Status != StatusIdle {
		t.Errorf("status = %q, want %q", s.Status, StatusIdle)
	}
	got, exists := sm.GetSession(s.ID)
	if !exists || got != s {
		t.Fatal("GetSession did not return the created session")
	}
	sm.DeleteSession(s.ID)
	if _, exists := sm.GetSession(s.ID); exists {
		t.Fatal("session still present after delete")
	}
}

func TestFileTracking(t *testing.T) {
	sm := NewSessionManager()
	s := sm.CreateSession()

	s.AddDocument("uploads/a.pdf")
	s.AddDocument("uploads/b.pdf")
	s.AddAsset("uploads/wm.png")
	s.AddOutput("output/stamped.pdf")

	if !s.HasDocument("uploads/a.pdf") || s.HasDocument("uploads/c.pdf") {
		t.Error("HasDocument misreports ownership")
	}
	if !s.HasAsset("uploads/wm.png") || s.HasAsset("uploads/other.png") {
		t.Error("HasAsset misreports ownership")
	}
	if !s.OwnsOutput("output/stamped.pdf") || s.OwnsOutput("output/other.pdf") {
		t.Error("OwnsOutput misreports ownership")
	}

	s.SetDocuments([]string{"uploads/b.pdf", "uploads/a.pdf"})
	docs := s.GetDocuments()
	if len(docs) != 2 || docs[0] != "uploads/b.pdf" {
		t.Errorf("documents = %v, want reordered list", docs)
	}
}

func TestReplaceDocumentKeepsOrder(t *testing.T) {
	sm := NewSessionManager()
	s := sm.CreateSession()
	s.AddDocument("uploads/a.docx")
	s.AddDocument("uploads/b.pdf")

	s.ReplaceDocument("uploads/a.docx", "uploads/a.pdf")

	docs := s.GetDocuments()
	if docs[0] != "uploads/a.pdf" || docs[1] != "uploads/b.pdf" {
		t.Errorf("documents = %v, want converted file in place", docs)
	}
}

func TestCleanupRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.pdf")
	asset := filepath.Join(dir, "wm.png")
	out := filepath.Join(dir, "out.pdf")
	for _, p := range []string{doc, asset, out} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	sm := NewSessionManager()
	s := sm.CreateSession()
	s.AddDocument(doc)
	s.AddAsset(asset)
	s.AddOutput(out)

	s.Cleanup()

	for _, p := range []string{doc, asset, out} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists after cleanup", p)
		}
	}
}
