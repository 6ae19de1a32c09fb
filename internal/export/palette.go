package export

import (
	"image/color"
	"sort"

	"github.com/mazznoer/colorgrad"

	"github.com/san-kum/rdsim/internal/dynamo"
)

var gradients = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
	"turbo":   colorgrad.Turbo,
}

// Palette returns a 256 entry palette indexed by the frame's byte value.
// "gray" matches the notebook's grayscale movie.
func Palette(name string) (color.Palette, error) {
	pal := make(color.Palette, 0, 256)
	if name == "" || name == "gray" {
		for i := 0; i < 256; i++ {
			pal = append(pal, color.Gray{Y: uint8(i)})
		}
		return pal, nil
	}

	grad, ok := gradients[name]
	if !ok {
		return nil, dynamo.Invalid("unknown palette %q", name)
	}
	for _, c := range grad().Colors(256) {
		pal = append(pal, c)
	}
	return pal, nil
}

func Palettes() []string {
	names := []string{"gray"}
	for name := range gradients {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}
