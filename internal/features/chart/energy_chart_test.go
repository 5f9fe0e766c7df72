package chart

import (
	"path/filepath"
	"strings"
	"testing"

	"grafica-energia/internal/dataset"

	"gonum.org/v1/plot/vg"
)

func TestNewEnergyLineKeepsRowOrder(t *testing.T) {
	ds := &dataset.Dataset{
		Time:   []float64{0, 1, 2},
		Energy: []float64{0.0, 0.00005, -0.0001},
	}

	line, err := NewEnergyLine(ds)
	if err != nil {
		t.Fatalf("NewEnergyLine failed: %v", err)
	}
	if len(line.XYs) != 3 {
		t.Fatalf("expected 3 points, got %d", len(line.XYs))
	}
	for i, want := range []struct{ x, y float64 }{{0, 0.0}, {1, 0.00005}, {2, -0.0001}} {
		if line.XYs[i].X != want.x || line.XYs[i].Y != want.y {
			t.Errorf("point %d: got (%v, %v), want (%v, %v)", i, line.XYs[i].X, line.XYs[i].Y, want.x, want.y)
		}
	}
}

func TestNewEnergyLineStyle(t *testing.T) {
	line, err := NewEnergyLine(&dataset.Dataset{Time: []float64{0}, Energy: []float64{0}})
	if err != nil {
		t.Fatalf("NewEnergyLine failed: %v", err)
	}
	if line.LineStyle.Color != LineColor {
		t.Fatalf("expected color %v, got %v", LineColor, line.LineStyle.Color)
	}
	if len(line.LineStyle.Dashes) != 0 {
		t.Fatalf("expected a solid line, got dashes %v", line.LineStyle.Dashes)
	}
	if line.LineStyle.Width != vg.Points(lineWidth) {
		t.Fatalf("unexpected width %v", line.LineStyle.Width)
	}
}

func TestNewEnergyLineRejectsEmpty(t *testing.T) {
	if _, err := NewEnergyLine(&dataset.Dataset{}); err == nil {
		t.Fatal("expected error for empty dataset")
	}
	if _, err := NewEnergyLine(&dataset.Dataset{Time: []float64{0, 1}, Energy: []float64{0}}); err == nil {
		t.Fatal("expected error for mismatched series")
	}
}

func TestNewEnergyChartFixedRange(t *testing.T) {
	ds := &dataset.Dataset{
		Time:   []float64{0, 1, 2},
		Energy: []float64{0, 1.0, -3.5},
	}

	p, err := NewEnergyChart(ds, filepath.Join(t.TempDir(), "missing.ttf"))
	if err != nil {
		t.Fatalf("NewEnergyChart failed: %v", err)
	}
	if p.Y.Min != YMin || p.Y.Max != YMax {
		t.Fatalf("expected y range [%v, %v], got [%v, %v]", YMin, YMax, p.Y.Min, p.Y.Max)
	}
	if p.X.Min != 0 || p.X.Max != 2 {
		t.Fatalf("expected x range to follow data, got [%v, %v]", p.X.Min, p.X.Max)
	}
}

func TestNewEnergyChartLabels(t *testing.T) {
	p, err := NewEnergyChart(&dataset.Dataset{Time: []float64{0, 1}, Energy: []float64{0, 0}}, "")
	if err != nil {
		t.Fatalf("NewEnergyChart failed: %v", err)
	}
	if p.Y.Label.Text != "Energía" || p.X.Label.Text != "Tiempo" {
		t.Fatalf("unexpected labels %q / %q", p.Y.Label.Text, p.X.Label.Text)
	}
	if p.Y.Label.TextStyle.Font.Size != vg.Points(12) || p.X.Label.TextStyle.Font.Size != vg.Points(12) {
		t.Fatalf("expected 12pt labels, got %v / %v", p.Y.Label.TextStyle.Font.Size, p.X.Label.TextStyle.Font.Size)
	}
}

func TestFontPathsDoNotDependOnWorkingDirectory(t *testing.T) {
	for _, path := range fontPaths {
		if filepath.IsAbs(path) || strings.HasPrefix(path, "~") || strings.HasPrefix(path, `C:\`) {
			continue
		}
		t.Errorf("font search path %q is relative to the working directory", path)
	}
}
