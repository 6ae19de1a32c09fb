package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/sim"
)

const (
	FormatGIF   = "gif"
	FormatPNG   = "png"
	FormatMJPEG = "mjpeg"
)

type Options struct {
	FPS     int
	Scale   int
	Palette string
	Quality int
}

func DefaultOptions() Options {
	return Options{FPS: 60, Scale: 2, Palette: "gray", Quality: 90}
}

// Encoder consumes frames in order. Close flushes whatever the format
// buffers.
type Encoder interface {
	Encode(f *sim.Frame) error
	Close() error
}

// Create opens an encoder for format writing to path. For png, path is a
// directory that receives one file per frame.
func Create(format, path string, n int, opts Options) (Encoder, error) {
	if n < 1 {
		return nil, dynamo.Invalid("frame size must be >= 1, got %d", n)
	}
	switch format {
	case FormatGIF:
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		enc, err := NewGIF(f, opts)
		if err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
		enc.closer = f
		return enc, nil
	case FormatPNG:
		return NewPNG(path, opts)
	case FormatMJPEG:
		return NewMJPEG(path, n, opts)
	default:
		return nil, dynamo.Invalid("unknown format %q (want gif, png or mjpeg)", format)
	}
}

func Formats() []string {
	return []string{FormatGIF, FormatMJPEG, FormatPNG}
}

// GIFEncoder buffers paletted frames and writes the animation on Close.
type GIFEncoder struct {
	w      io.Writer
	closer io.Closer
	pal    color.Palette
	scale  int
	delay  int
	anim   gif.GIF
}

func NewGIF(w io.Writer, opts Options) (*GIFEncoder, error) {
	pal, err := Palette(opts.Palette)
	if err != nil {
		return nil, err
	}
	return &GIFEncoder{
		w:     w,
		pal:   pal,
		scale: opts.Scale,
		delay: gifDelay(opts.FPS),
	}, nil
}

// gifDelay converts fps to the format's hundredths of a second.
func gifDelay(fps int) int {
	if fps < 1 {
		fps = 1
	}
	d := int(math.Round(100 / float64(fps)))
	if d < 1 {
		d = 1
	}
	return d
}

func (e *GIFEncoder) Encode(f *sim.Frame) error {
	e.anim.Image = append(e.anim.Image, Paletted(f, e.pal, e.scale))
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

func (e *GIFEncoder) Close() error {
	var err error
	if len(e.anim.Image) > 0 {
		err = gif.EncodeAll(e.w, &e.anim)
	}
	if e.closer != nil {
		if cerr := e.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// PNGEncoder writes frame_00000.png, frame_00001.png, ... into a directory.
type PNGEncoder struct {
	dir   string
	pal   color.Palette
	scale int
	count int
}

func NewPNG(dir string, opts Options) (*PNGEncoder, error) {
	pal, err := Palette(opts.Palette)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGEncoder{dir: dir, pal: pal, scale: opts.Scale}, nil
}

func (e *PNGEncoder) Encode(f *sim.Frame) error {
	path := filepath.Join(e.dir, fmt.Sprintf("frame_%05d.png", e.count))
	if err := WritePNG(path, f, e.pal, e.scale); err != nil {
		return err
	}
	e.count++
	return nil
}

func (e *PNGEncoder) Close() error { return nil }

// WritePNG renders a single frame to path.
func WritePNG(path string, f *sim.Frame, pal color.Palette, scale int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, Paletted(f, pal, scale)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// MJPEGEncoder streams JPEG frames into an AVI container.
type MJPEGEncoder struct {
	aw      mjpeg.AviWriter
	pal     color.Palette
	scale   int
	quality int
	buf     bytes.Buffer
}

func NewMJPEG(path string, n int, opts Options) (*MJPEGEncoder, error) {
	pal, err := Palette(opts.Palette)
	if err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale < 1 {
		scale = 1
	}
	fps := opts.FPS
	if fps < 1 {
		fps = 1
	}
	side := int32(n * scale)
	aw, err := mjpeg.New(path, side, side, int32(fps))
	if err != nil {
		return nil, err
	}
	quality := opts.Quality
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &MJPEGEncoder{aw: aw, pal: pal, scale: scale, quality: quality}, nil
}

func (e *MJPEGEncoder) Encode(f *sim.Frame) error {
	e.buf.Reset()
	var img image.Image = Paletted(f, e.pal, e.scale)
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return err
	}
	return e.aw.AddFrame(e.buf.Bytes())
}

func (e *MJPEGEncoder) Close() error {
	return e.aw.Close()
}
