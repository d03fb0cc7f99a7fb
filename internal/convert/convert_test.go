package convert

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImagesToPDF(t *testing.T) {
	dir := t.TempDir()
	img1 := filepath.Join(dir, "one.png")
	img2 := filepath.Join(dir, "two.png")
	out := filepath.Join(dir, "out.pdf")
	writeTestPNG(t, img1)
	writeTestPNG(t, img2)

	if err := ImagesToPDF([]string{img1, img2}, out); err != nil {
		t.Fatalf("ImagesToPDF failed: %v", err)
	}

	count, err := pdfapi.PageCountFile(out)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	if count != 2 {
		t.Errorf("page count = %d, want 2", count)
	}
}

func TestImagesToPDFEmpty(t *testing.T) {
	if err := ImagesToPDF(nil, "unused.pdf"); err == nil {
		t.Fatal("expected error for empty image list")
	}
}

func TestOfficeToPDFWithoutConverter(t *testing.T) {
	for _, bin := range officeBinaries {
		if _, err := exec.LookPath(bin); err == nil {
			t.Skipf("%s is installed", bin)
		}
	}
	_, err := OfficeToPDF(context.Background(), "whatever.docx", t.TempDir())
	if !errors.Is(err, ErrNoConverter) {
		t.Fatalf("err = %v, want ErrNoConverter", err)
	}
}
