package watermark

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// fallbackFont is a PDF core font, always available and sufficient for
// Latin text. CJK text needs one of the candidate fonts below.
const fallbackFont = "Helvetica"

// fontCandidates lists CJK-capable fonts per platform, tried in order.
var fontCandidates = map[string][]string{
	"windows": {
		"C:/Windows/Fonts/msjh.ttc",
		"C:/Windows/Fonts/simsun.ttc",
	},
	"linux": {
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
		"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	},
	"darwin": {
		"/System/Library/Fonts/PingFang.ttc",
		"/System/Library/Fonts/STHeiti Light.ttc",
	},
}

var (
	fontOnce sync.Once
	fontName string
)

// ResolveFont returns the font used for text overlays. The first available
// candidate for the current platform is installed as a user font; if none
// can be installed the core fallback is used. This path is degraded but
// never fatal.
func ResolveFont() string {
	fontOnce.Do(func() {
		fontName = fallbackFont
		for _, path := range fontCandidates[runtime.GOOS] {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := pdfapi.InstallFonts([]string{path}); err != nil {
				log.Printf("watermark: install font %s: %v", path, err)
				continue
			}
			fontName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			return
		}
	})
	return fontName
}
