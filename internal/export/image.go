package export

import (
	"image"
	"image/color"

	"github.com/san-kum/rdsim/internal/sim"
)

// Paletted renders a frame min-max scaled into pal, each cell drawn as a
// scale x scale block.
func Paletted(f *sim.Frame, pal color.Palette, scale int) *image.Paletted {
	if scale < 1 {
		scale = 1
	}
	n := f.N()
	img := image.NewPaletted(image.Rect(0, 0, n*scale, n*scale), pal)
	levels := len(pal)

	for idx, b := range f.Bytes() {
		ci := uint8(int(b) * levels / 256)
		i, j := idx/n, idx%n
		for dy := 0; dy < scale; dy++ {
			row := img.Pix[(i*scale+dy)*img.Stride:]
			for dx := 0; dx < scale; dx++ {
				row[j*scale+dx] = ci
			}
		}
	}
	return img
}
