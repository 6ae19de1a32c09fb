package export

import (
	"bytes"
	"errors"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/sim"
)

func ramp(n, index int) *sim.Frame {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.Set(i, j, float64(i*n+j))
		}
	}
	return &sim.Frame{Index: index, Step: 40 * (index + 1), Data: d}
}

func TestPalette(t *testing.T) {
	for _, name := range Palettes() {
		pal, err := Palette(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(pal) != 256 {
			t.Errorf("%s: expected 256 entries, got %d", name, len(pal))
		}
	}

	gray, err := Palette("")
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := gray[255].RGBA()
	if r != 0xffff || g != r || b != r {
		t.Errorf("expected white at 255, got %x %x %x", r, g, b)
	}

	if _, err := Palette("sepia"); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPalettedScalesAndMaps(t *testing.T) {
	pal, err := Palette("gray")
	if err != nil {
		t.Fatal(err)
	}

	img := Paletted(ramp(4, 0), pal, 3)
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 12 {
		t.Fatalf("expected 12x12, got %v", img.Bounds())
	}

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0},
		{2, 2, 0},
		{11, 11, 255},
	}
	for _, tt := range tests {
		if got := img.ColorIndexAt(tt.x, tt.y); got != tt.want {
			t.Errorf("index at (%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
	// cell (0,1) covers x in 3..5 on rows 0..2
	if img.ColorIndexAt(3, 0) != img.ColorIndexAt(5, 2) {
		t.Error("expected one cell to fill a 3x3 block")
	}
}

func TestGIFEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewGIF(&buf, Options{FPS: 25, Scale: 2, Palette: "viridis"})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := enc.Encode(ramp(8, i)); err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(anim.Image))
	}
	if !reflect.DeepEqual(anim.Delay, []int{4, 4, 4}) {
		t.Errorf("expected delays of 4, got %v", anim.Delay)
	}
	if anim.Image[0].Bounds().Dx() != 16 {
		t.Errorf("expected width 16, got %d", anim.Image[0].Bounds().Dx())
	}
}

func TestGIFDelay(t *testing.T) {
	tests := map[int]int{60: 2, 1: 100, 0: 100, 500: 1}
	for fps, want := range tests {
		if got := gifDelay(fps); got != want {
			t.Errorf("gifDelay(%d) = %d, want %d", fps, got, want)
		}
	}
}

func TestCreatePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	enc, err := Create(FormatPNG, dir, 6, Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := enc.Encode(ramp(6, i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "frame_00001.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 6 {
		t.Errorf("expected width 6, got %d", img.Bounds().Dx())
	}
}

func TestCreateGIFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.gif")
	enc, err := Create(FormatGIF, path, 4, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(ramp(4, 0)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("GIF89a")) {
		t.Error("expected a GIF89a header")
	}
}

func TestCreateMJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.avi")
	enc, err := Create(FormatMJPEG, path, 8, Options{FPS: 30, Scale: 2, Palette: "inferno"})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := enc.Encode(ramp(8, i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Error("expected a RIFF header")
	}
}

func TestCreateRejects(t *testing.T) {
	dir := t.TempDir()

	if _, err := Create("webm", filepath.Join(dir, "x"), 4, DefaultOptions()); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("unknown format: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Create(FormatGIF, filepath.Join(dir, "x.gif"), 0, DefaultOptions()); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("zero size: expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreateGIFBadPaletteLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.gif")
	opts := DefaultOptions()
	opts.Palette = "sepia"

	if _, err := Create(FormatGIF, path, 4, opts); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file at %s, stat err %v", path, err)
	}
}
