package fs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	logging "grafica-energia/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrOutputWrite is returned when the chart cannot be written to disk.
var ErrOutputWrite = errors.New("output write failed")

const (
	// DPI is the raster resolution of exported charts.
	DPI = 300

	figureWidth  = 6.4 * vg.Inch
	figureHeight = 4.8 * vg.Inch
	tightPad     = 0.1 // inch around the drawn content
)

var background = color.White

// ExportPNG renders p at DPI, trims the surrounding whitespace and writes the
// PNG to path. It returns the size of the written file.
func ExportPNG(p *plot.Plot, path string) (int64, error) {
	img := Rasterize(p, DPI)
	bounds := TightBounds(img, int(math.Round(tightPad*DPI)))

	data, err := EncodePNG(img, bounds, DPI)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("%w: failed to create output directory: %v", ErrOutputWrite, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to stat chart file: %v", ErrOutputWrite, err)
	}
	if fileInfo.Size() == 0 {
		os.Remove(path)
		logging.LogError("Chart file is empty after rendering", zap.String("filename", path))
		return 0, fmt.Errorf("%w: chart file is empty after rendering", ErrOutputWrite)
	}

	logging.LogInfo("Chart written",
		zap.String("filename", path),
		zap.Int64("fileSize", fileInfo.Size()),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()))

	return fileInfo.Size(), nil
}

// Rasterize draws p on a white figure-sized canvas at dpi.
func Rasterize(p *plot.Plot, dpi int) image.Image {
	c := vgimg.NewWith(
		vgimg.UseWH(figureWidth, figureHeight),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(background),
	)
	p.Draw(draw.New(c))
	return c.Image()
}

// TightBounds returns the smallest rectangle holding every non-background
// pixel, grown outward by pad pixels. The result may extend past the image;
// EncodePNG fills that margin with the background. A blank image keeps its
// full bounds.
func TightBounds(img image.Image, pad int) image.Rectangle {
	b := img.Bounds()
	br, bg, bb, ba := background.RGBA()

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r == br && g == bg && bl == bb && a == ba {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return b
	}

	return image.Rect(minX, minY, maxX+1, maxY+1).Inset(-pad)
}

// EncodePNG crops img to bounds, padding with the background where bounds
// leave the image, and encodes it with a pHYs chunk for dpi.
func EncodePNG(img image.Image, bounds image.Rectangle, dpi int) ([]byte, error) {
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.SetColor(background)
	dc.Clear()
	dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return withPhysicalDPI(buf.Bytes(), dpi)
}

const (
	pngSignatureLen = 8
	ihdrChunkLen    = 4 + 4 + 13 + 4 // length, type, data, crc
	metersPerInch   = 0.0254
)

// withPhysicalDPI inserts a pHYs chunk right after IHDR.
func withPhysicalDPI(png []byte, dpi int) ([]byte, error) {
	at := pngSignatureLen + ihdrChunkLen
	if len(png) < at || string(png[pngSignatureLen+4:pngSignatureLen+8]) != "IHDR" {
		return nil, fmt.Errorf("failed to set chart resolution: not a png stream")
	}

	ppm := uint32(math.Round(float64(dpi) / metersPerInch))
	chunk := make([]byte, 0, 4+4+9+4)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = append(chunk, 1) // unit: meter
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(png)+len(chunk))
	out = append(out, png[:at]...)
	out = append(out, chunk...)
	out = append(out, png[at:]...)
	return out, nil
}
