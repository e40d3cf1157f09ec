package terrain

import (
	"fmt"

	noise "terragen/internal/math"
	"terragen/internal/util"
)

// HeightField is a Resolution x Resolution grid of elevation samples stored
// row-major. Width and Depth give the world-space extent it will be laid over.
type HeightField struct {
	Resolution int
	Width      float64
	Depth      float64
	Samples    []float64
}

// At returns the sample at row i, column j
func (f HeightField) At(i, j int) float64 {
	return f.Samples[i*f.Resolution+j]
}

// Validate checks that the field can be triangulated
func (f HeightField) Validate() error {
	if f.Resolution < 2 {
		return fmt.Errorf("%w: resolution %d, need at least 2", ErrInvalidInput, f.Resolution)
	}
	if len(f.Samples) != f.Resolution*f.Resolution {
		return fmt.Errorf("%w: %d samples for resolution %d", ErrInvalidInput, len(f.Samples), f.Resolution)
	}
	return nil
}

// Scaled returns a copy of the field with every sample multiplied by k
func (f HeightField) Scaled(k float64) HeightField {
	out := f
	out.Samples = make([]float64, len(f.Samples))
	for i, v := range f.Samples {
		out.Samples[i] = v * k
	}
	return out
}

// MinMax returns the lowest and highest samples
func (f HeightField) MinMax() (float64, float64) {
	return util.MinMax(f.Samples)
}

// GenerateHeightField evaluates the configured noise over a resolution x
// resolution grid and shifts the result so the lowest sample is zero. Sample
// (i, j) is evaluated at (j*frequency, i*frequency).
func GenerateHeightField(resolution int, params noise.Parameters) (HeightField, error) {
	if resolution < 2 {
		return HeightField{}, fmt.Errorf("%w: resolution %d, need at least 2", ErrInvalidParameter, resolution)
	}
	gen, err := noise.NewGenerator(params)
	if err != nil {
		return HeightField{}, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	samples := make([]float64, resolution*resolution)
	for i := 0; i < resolution; i++ {
		y := float64(i) * params.Frequency
		for j := 0; j < resolution; j++ {
			x := float64(j) * params.Frequency
			samples[i*resolution+j] = gen.Eval(x, y)
		}
	}

	min, _ := util.MinMax(samples)
	for k := range samples {
		samples[k] -= min
	}

	return HeightField{Resolution: resolution, Samples: samples}, nil
}
