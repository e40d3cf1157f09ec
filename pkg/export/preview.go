package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/mazznoer/colorgrad"

	"terragen/internal/util"
	"terragen/pkg/terrain"
)

// marker colours per category
var markerColors = map[terrain.Category]color.NRGBA{
	terrain.Rock:  {120, 120, 120, 255},
	terrain.Tree:  {20, 90, 20, 255},
	terrain.Grass: {170, 220, 90, 255},
}

// heightGradient maps normalized height to a colour, low to high
func heightGradient() (colorgrad.Gradient, error) {
	g := colorgrad.NewGradient()
	g.Colors(
		color.RGBA{20, 40, 120, 255},
		color.RGBA{40, 130, 60, 255},
		color.RGBA{150, 170, 70, 255},
		color.RGBA{120, 90, 60, 255},
		color.RGBA{245, 245, 245, 255},
	)
	return g.Build()
}

// RenderPreview draws the height field as a top-down colour map of size x
// size pixels with placements marked on top. Row 0 of the field is the
// bottom of the image so +y points up.
func RenderPreview(field terrain.HeightField, placements []terrain.PlacedInstance, size int) (*image.RGBA, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: preview size %d", terrain.ErrInvalidParameter, size)
	}

	grad, err := heightGradient()
	if err != nil {
		return nil, fmt.Errorf("error building gradient: %w", err)
	}

	min, max := field.MinMax()
	res := field.Resolution
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for py := 0; py < size; py++ {
		i := res - 1 - py*res/size
		for px := 0; px < size; px++ {
			j := px * res / size
			t := util.Map(field.At(i, j), min, max, 0, 1)
			img.Set(px, py, grad.At(t))
		}
	}

	if len(placements) == 0 || field.Width <= 0 || field.Depth <= 0 {
		return img, nil
	}

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetLineWidth(1)
	gc.SetStrokeColor(color.NRGBA{0, 0, 0, 255})
	bounds := terrain.BoundsFor(field.Width, field.Depth)
	radius := float64(size) / 160
	if radius < 1.5 {
		radius = 1.5
	}
	for _, p := range placements {
		x := util.Map(p.Position[0], bounds.XMin, bounds.XMax, 0, float64(size))
		y := util.Map(p.Position[1], bounds.YMin, bounds.YMax, float64(size), 0)
		r := radius
		if p.Category == terrain.Grass {
			r = radius / 2
		}
		gc.SetFillColor(markerColors[p.Category])
		gc.BeginPath()
		draw2dkit.Circle(gc, x, y, r)
		gc.FillStroke()
	}
	return img, nil
}

// WritePreviewPNG renders the preview and encodes it as PNG
func WritePreviewPNG(w io.Writer, field terrain.HeightField, placements []terrain.PlacedInstance, size int) error {
	img, err := RenderPreview(field, placements, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
