package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logging "grafica-energia/internal/infra/log"

	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
)

// labelFont is the face registered under the DejaVu Sans name.
var labelFont = font.Font{Typeface: "DejaVu", Variant: "Sans"}

// fontPaths are the system and user font locations searched when no
// chart.font_path is configured.
var fontPaths = []string{
	"~/.fonts/DejaVuSans.ttf",
	"~/.local/share/fonts/DejaVuSans.ttf",
	"~/Library/Fonts/DejaVuSans.ttf",
	"/Library/Fonts/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans.ttf",
	"/usr/local/share/fonts/DejaVuSans.ttf",
	"C:\\Windows\\Fonts\\DejaVuSans.ttf",
}

var (
	fontMu     sync.Mutex
	loadedPath string
)

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

// resolveLabelFont returns the DejaVu Sans font when a face could be loaded
// from explicit or one of the known locations, and plot.DefaultFont otherwise.
func resolveLabelFont(explicit string) font.Font {
	fontMu.Lock()
	defer fontMu.Unlock()

	candidates := fontPaths
	if explicit != "" {
		candidates = append([]string{explicit}, fontPaths...)
	}

	for _, candidate := range candidates {
		path := expandPath(candidate)
		if path == loadedPath {
			return labelFont
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := registerFont(path); err != nil {
			logging.LogWarn("Font file exists but failed to load", zap.String("path", path), zap.Error(err))
			continue
		}
		loadedPath = path
		logging.LogInfo("Loaded DejaVu Sans font", zap.String("path", path))
		return labelFont
	}

	logging.LogWarn("DejaVu Sans not found, using default font",
		zap.Int("paths_checked", len(candidates)))
	return plot.DefaultFont
}

func registerFont(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font: %w", err)
	}
	face, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	font.DefaultCache.Add(font.Collection{{Font: labelFont, Face: face}})
	return nil
}
