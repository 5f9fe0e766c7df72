package fs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

func samplePlot(t *testing.T) *plot.Plot {
	t.Helper()
	p := plot.New()
	p.X.Label.Text = "Tiempo"
	p.Y.Label.Text = "Energía"
	line, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 0.00005}, {X: 2, Y: -0.0001}})
	if err != nil {
		t.Fatalf("failed to build line: %v", err)
	}
	p.Add(line)
	p.Y.Min, p.Y.Max = -0.0002, 0.0002
	return p
}

func TestTightBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(40, 30, color.Black)
	img.Set(60, 50, color.Black)

	got := TightBounds(img, 5)
	want := image.Rect(35, 25, 66, 56)
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Padding grows past the canvas instead of being clamped.
	if got, want := TightBounds(img, 100), image.Rect(-60, -70, 161, 151); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTightBoundsBlankImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.White)
		}
	}
	if got := TightBounds(img, 2); got != img.Bounds() {
		t.Fatalf("expected full bounds, got %v", got)
	}
}

func TestExportPNGWritesTrimmedImageWithDPI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "grafica_energia.png")

	size, err := ExportPNG(samplePlot(t), path)
	if err != nil {
		t.Fatalf("ExportPNG failed: %v", err)
	}
	if size <= 0 {
		t.Fatalf("expected non-zero size, got %d", size)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if int64(len(data)) != size {
		t.Fatalf("reported size %d does not match file size %d", size, len(data))
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		t.Fatalf("unexpected image size %v", b)
	}

	// The drawn content sits tightPad inch inside every edge.
	pad := 30
	content := TightBounds(img, 0)
	if content == b {
		t.Fatalf("expected a background margin around the content, got content %v in %v", content, b)
	}
	for side, gap := range map[string]int{
		"left":   content.Min.X - b.Min.X,
		"top":    content.Min.Y - b.Min.Y,
		"right":  b.Max.X - content.Max.X,
		"bottom": b.Max.Y - content.Max.Y,
	} {
		if gap < pad-1 || gap > pad+1 {
			t.Errorf("expected %dpx margin on the %s, got %d", pad, side, gap)
		}
	}

	i := bytes.Index(data, []byte("pHYs"))
	if i < 0 {
		t.Fatal("expected pHYs chunk")
	}
	ppm := binary.BigEndian.Uint32(data[i+4 : i+8])
	if ppm != 11811 {
		t.Fatalf("expected 11811 pixels per meter (300 dpi), got %d", ppm)
	}
}

func TestExportPNGUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker: %v", err)
	}

	_, err := ExportPNG(samplePlot(t), filepath.Join(blocker, "grafica_energia.png"))
	if !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}
}

func TestWithPhysicalDPIRejectsGarbage(t *testing.T) {
	if _, err := withPhysicalDPI([]byte("not a png"), 300); err == nil {
		t.Fatal("expected error for non-png input")
	}
}
