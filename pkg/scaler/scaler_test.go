package scaler

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-scaler/pkg/processing"
	"github.com/menta2k/image-scaler/pkg/types"
)

// createTestSource creates an in-memory source image named filename
func createTestSource(width, height int, filename string) *types.SourceImage {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{255, uint8(x % 256), uint8(y % 256), 255})
		}
	}
	return types.NewSourceImage(img, filename, "png")
}

func TestComputeFitDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		screen        types.Size
		ppi           float64
		wantW, wantH  int
	}{
		{"square into landscape screen", 5000, 5000, types.Size{X: 40, Y: 30}, 72, 2160, 2160},
		{"exact aspect match", 4000, 3000, types.Size{X: 40, Y: 30}, 72, 40 * 72, 30 * 72},
		{"already fits", 800, 600, types.Size{X: 40, Y: 30}, 72, 800, 600},
		{"equal to bound", 2880, 2160, types.Size{X: 40, Y: 30}, 72, 2880, 2160},
		{"width limited", 4000, 1000, types.Size{X: 16, Y: 12}, 72, 1152, 288},
		{"height limited", 1000, 4000, types.Size{X: 16, Y: 12}, 72, 216, 864},
		{"portrait screen truncates", 3000, 3000, types.Size{X: 3, Y: 5}, 72, 215, 215},
		{"truncation below bound", 4000, 3000, types.Size{X: 16, Y: 12}, 72, 1152, 863},
		{"thumbnail", 1000, 800, types.Size{X: 0.5, Y: 0.5}, 72, 36, 28},
		{"fractional bound truncates", 100, 100, types.Size{X: 0.5, Y: 0.5}, 73, 36, 36},
		{"zero screen", 100, 50, types.Size{X: 0, Y: 0}, 72, 0, 0},
		{"one axis fits", 100, 4000, types.Size{X: 40, Y: 30}, 72, 54, 2160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ComputeFitDimensions(tt.width, tt.height, tt.screen, tt.ppi)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestComputeFitDimensionsProperties(t *testing.T) {
	sizes := []int{1, 7, 36, 99, 100, 640, 1023, 2160, 2881, 4000, 5000}
	screens := DefaultScreens()
	screens = append(screens, types.Screen{Label: "ODD", Size: types.Size{X: 1.3, Y: 0.7}})

	for _, ppi := range []float64{72, 96, 150.5} {
		for _, screen := range screens {
			boundX := screen.Size.X * ppi
			boundY := screen.Size.Y * ppi
			for _, w := range sizes {
				for _, h := range sizes {
					tw, th := ComputeFitDimensions(w, h, screen.Size, ppi)

					if float64(tw) > boundX || float64(th) > boundY {
						t.Fatalf("%dx%d in %vx%v@%v: %dx%d exceeds bounds", w, h, screen.Size.X, screen.Size.Y, ppi, tw, th)
					}
					if tw > w || th > h {
						t.Fatalf("%dx%d in %vx%v@%v: upscaled to %dx%d", w, h, screen.Size.X, screen.Size.Y, ppi, tw, th)
					}
					if float64(w) < boundX && float64(h) < boundY && (tw != w || th != h) {
						t.Fatalf("%dx%d fits %vx%v but became %dx%d", w, h, boundX, boundY, tw, th)
					}

					// truncation keeps both axes within one pixel of the exact scale
					tol := 1/float64(min(w, h)) + 1e-9
					if d := math.Abs(float64(tw)/float64(w) - float64(th)/float64(h)); d > tol {
						t.Fatalf("%dx%d -> %dx%d: aspect drift %v exceeds %v", w, h, tw, th, d, tol)
					}
				}
			}
		}
	}
}

func TestNewConfig(t *testing.T) {
	sizes := []types.Size{{X: 10, Y: 10}, {X: 2, Y: 2}}

	cfg, err := NewConfig(96, sizes, []string{"LARGE", "TINY"})
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if cfg.PPI != 96 {
		t.Errorf("Expected ppi 96, got %v", cfg.PPI)
	}
	if got := cfg.Labels(); len(got) != 2 || got[0] != "LARGE" || got[1] != "TINY" {
		t.Errorf("Expected [LARGE TINY], got %v", got)
	}

	if _, err := NewConfig(96, sizes, []string{"ONLY"}); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for mismatched lengths, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PPI != 72 {
		t.Errorf("Expected default ppi 72, got %v", cfg.PPI)
	}

	wantLabels := []string{"BIG", "MED", "SMALL", "THUMB"}
	wantSizes := []types.Size{{X: 40, Y: 30}, {X: 16, Y: 12}, {X: 3, Y: 5}, {X: 0.5, Y: 0.5}}
	if len(cfg.Screens) != len(wantLabels) {
		t.Fatalf("Expected %d screens, got %d", len(wantLabels), len(cfg.Screens))
	}
	for i, s := range cfg.Screens {
		if s.Label != wantLabels[i] || s.Size != wantSizes[i] {
			t.Errorf("Screen %d: expected %s %v, got %s %v", i, wantLabels[i], wantSizes[i], s.Label, s.Size)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero ppi", func(c *Config) { c.PPI = 0 }},
		{"negative ppi", func(c *Config) { c.PPI = -72 }},
		{"nan ppi", func(c *Config) { c.PPI = math.NaN() }},
		{"infinite ppi", func(c *Config) { c.PPI = math.Inf(1) }},
		{"no screens", func(c *Config) { c.Screens = nil }},
		{"empty label", func(c *Config) { c.Screens[0].Label = "" }},
		{"duplicate label", func(c *Config) { c.Screens[1].Label = c.Screens[0].Label }},
		{"path label", func(c *Config) { c.Screens[0].Label = "../BIG" }},
		{"dot label", func(c *Config) { c.Screens[0].Label = ".." }},
		{"negative screen", func(c *Config) { c.Screens[2].Size.X = -1 }},
		{"quality too high", func(c *Config) { c.Encoding.Quality = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, types.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
			if _, err := NewWithConfig(cfg); !errors.Is(err, types.ErrConfiguration) {
				t.Errorf("NewWithConfig: expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestNewWithConfigCopiesScreens(t *testing.T) {
	cfg := DefaultConfig()
	s, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	cfg.Screens[0].Label = "CHANGED"
	if s.Config().Screens[0].Label != LabelBig {
		t.Errorf("Expected scaler config to be unaffected, got %s", s.Config().Screens[0].Label)
	}
}

func TestScaleForScreens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PPI = 64
	cfg.Screens = []types.Screen{
		{Label: "HALF", Size: types.Size{X: 4, Y: 2}},
		{Label: "WIDE", Size: types.Size{X: 16, Y: 1}},
		{Label: "FULL", Size: types.Size{X: 100, Y: 100}},
	}
	s, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	src := createTestSource(512, 512, "square.png")
	variants := s.ScaleForScreens(src)

	want := [][2]int{{128, 128}, {64, 64}, {512, 512}}
	if len(variants) != len(want) {
		t.Fatalf("Expected %d variants, got %d", len(want), len(variants))
	}
	for i, v := range variants {
		if v.Screen.Label != cfg.Screens[i].Label {
			t.Errorf("Variant %d: expected label %s, got %s", i, cfg.Screens[i].Label, v.Screen.Label)
		}
		b := v.Image.Bounds()
		if b.Dx() != want[i][0] || b.Dy() != want[i][1] {
			t.Errorf("Variant %s: expected %dx%d, got %dx%d", v.Screen.Label, want[i][0], want[i][1], b.Dx(), b.Dy())
		}
		if v.Width != b.Dx() || v.Height != b.Dy() {
			t.Errorf("Variant %s: recorded %dx%d but image is %dx%d", v.Screen.Label, v.Width, v.Height, b.Dx(), b.Dy())
		}
	}
}

func TestScaleForScreensIdempotent(t *testing.T) {
	s := New()
	src := createTestSource(300, 200, "photo.png")

	first := s.ScaleForScreens(src)
	second := s.ScaleForScreens(src)

	for i := range first {
		if first[i].Width != second[i].Width || first[i].Height != second[i].Height {
			t.Errorf("Variant %d: %dx%d then %dx%d", i, first[i].Width, first[i].Height, second[i].Width, second[i].Height)
		}
	}
}

func TestTargetDimensions(t *testing.T) {
	s := New()

	dims := s.TargetDimensions(5000, 5000)
	want := [][2]int{{2160, 2160}, {864, 864}, {216, 216}, {36, 36}}
	for i := range want {
		if dims[i] != want[i] {
			t.Errorf("Screen %d: expected %v, got %v", i, want[i], dims[i])
		}
	}

	dims = s.TargetDimensions(4000, 3000)
	if dims[0] != [2]int{40 * 72, 30 * 72} {
		t.Errorf("Expected BIG to be %dx%d, got %v", 40*72, 30*72, dims[0])
	}
}

func TestSaveMultipleSizes(t *testing.T) {
	dir := t.TempDir()
	s := New()
	src := createTestSource(100, 80, "/some/where/photo.png")

	paths, err := s.SaveMultipleSizes(src, dir)
	if err != nil {
		t.Fatalf("SaveMultipleSizes failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "BIG", "photo_BIG.png"),
		filepath.Join(dir, "MED", "photo_MED.png"),
		filepath.Join(dir, "SMALL", "photo_SMALL.png"),
		filepath.Join(dir, "THUMB", "photo_THUMB.png"),
	}
	if len(paths) != len(want) {
		t.Fatalf("Expected %d paths, got %d", len(want), len(paths))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Expected %s, got %s", want[i], paths[i])
		}
		if _, err := os.Stat(want[i]); err != nil {
			t.Errorf("Expected %s to exist: %v", want[i], err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	wantDirs := []string{"BIG", "MED", "SMALL", "THUMB"}
	if len(names) != len(wantDirs) {
		t.Fatalf("Expected directories %v, got %v", wantDirs, names)
	}
	for i := range wantDirs {
		if names[i] != wantDirs[i] {
			t.Errorf("Expected directories %v, got %v", wantDirs, names)
			break
		}
	}

	thumb, err := imaging.Open(want[3])
	if err != nil {
		t.Fatal(err)
	}
	if thumb.Bounds().Dx() != 36 || thumb.Bounds().Dy() != 28 {
		t.Errorf("Expected THUMB 36x28, got %dx%d", thumb.Bounds().Dx(), thumb.Bounds().Dy())
	}

	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	if dpi, ok := processing.DPI(data, "png"); !ok || math.Abs(dpi-72) > 0.1 {
		t.Errorf("Expected 72 dpi on BIG, got %v (ok=%v)", dpi, ok)
	}
}

func TestSaveMultipleSizesNeverUpscales(t *testing.T) {
	dir := t.TempDir()
	s := New()
	src := createTestSource(20, 10, "tiny.png")

	paths, err := s.SaveMultipleSizes(src, dir)
	if err != nil {
		t.Fatalf("SaveMultipleSizes failed: %v", err)
	}

	for _, p := range paths {
		img, err := imaging.Open(p)
		if err != nil {
			t.Fatalf("failed to open %s: %v", p, err)
		}
		if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
			t.Errorf("%s: expected 20x10, got %dx%d", p, img.Bounds().Dx(), img.Bounds().Dy())
		}
	}
}

func TestSaveMultipleSizesOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := New()
	src := createTestSource(50, 50, "photo.png")

	target := OutputPath(src, dir, LabelBig)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SaveMultipleSizes(src, dir); err != nil {
		t.Fatalf("SaveMultipleSizes failed: %v", err)
	}

	img, err := imaging.Open(target)
	if err != nil {
		t.Fatalf("Expected stale file to be replaced by an image: %v", err)
	}
	if img.Bounds().Dx() != 50 {
		t.Errorf("Expected width 50, got %d", img.Bounds().Dx())
	}
}

func TestSaveMultipleSizesPartialFailure(t *testing.T) {
	dir := t.TempDir()
	s := New()
	src := createTestSource(50, 50, "photo.png")

	// a regular file where the MED directory should go
	if err := os.WriteFile(filepath.Join(dir, LabelMed), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := s.SaveMultipleSizes(src, dir)
	if !errors.Is(err, types.ErrFilesystem) {
		t.Fatalf("Expected ErrFilesystem, got %v", err)
	}

	if len(paths) != 1 {
		t.Fatalf("Expected only BIG to be written, got %v", paths)
	}
	if _, err := os.Stat(OutputPath(src, dir, LabelBig)); err != nil {
		t.Errorf("Expected BIG to remain on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LabelSmall)); !os.IsNotExist(err) {
		t.Errorf("Expected SMALL not to be created, got %v", err)
	}
}

func TestSaveMultipleSizesWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	s := New()
	src := createTestSource(30, 30, "scan")

	paths, err := s.SaveMultipleSizes(src, dir)
	if err != nil {
		t.Fatalf("SaveMultipleSizes failed: %v", err)
	}

	if want := filepath.Join(dir, "BIG", "scan_BIG"); paths[0] != want {
		t.Errorf("Expected %s, got %s", want, paths[0])
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := processing.DPI(data, "png"); !ok {
		t.Error("Expected png output for a png source without extension")
	}
}

func TestOutputPath(t *testing.T) {
	src := createTestSource(1, 1, "dir/holiday.photo.jpg")

	if got, want := OutputPath(src, "out", "MED"), filepath.Join("out", "MED", "holiday.photo_MED.jpg"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if got, want := OutputPath(src, "", "THUMB"), filepath.Join("THUMB", "holiday.photo_THUMB.jpg"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func BenchmarkComputeFitDimensions(b *testing.B) {
	screen := types.Size{X: 40, Y: 30}
	for i := 0; i < b.N; i++ {
		ComputeFitDimensions(5000, 3333, screen, 72)
	}
}
