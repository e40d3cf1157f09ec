package noise

import (
	"fmt"
	"strings"
)

// Family selects the base noise function evaluated for every sample
type Family int

// Noise families. The *Fractal variants sum several octaves of their base family.
const (
	Value Family = iota
	ValueFractal
	Perlin
	PerlinFractal
	Simplex
	SimplexFractal
	Cellular
	WhiteNoise
	Cubic
	CubicFractal
)

var familyNames = []string{
	Value:          "Value",
	ValueFractal:   "ValueFractal",
	Perlin:         "Perlin",
	PerlinFractal:  "PerlinFractal",
	Simplex:        "Simplex",
	SimplexFractal: "SimplexFractal",
	Cellular:       "Cellular",
	WhiteNoise:     "WhiteNoise",
	Cubic:          "Cubic",
	CubicFractal:   "CubicFractal",
}

// Families lists every noise family in declaration order
func Families() []Family {
	out := make([]Family, len(familyNames))
	for i := range familyNames {
		out[i] = Family(i)
	}
	return out
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// IsFractal reports whether the family accumulates octaves
func (f Family) IsFractal() bool {
	switch f {
	case ValueFractal, PerlinFractal, SimplexFractal, CubicFractal:
		return true
	}
	return false
}

// Base returns the single-octave family behind a fractal variant
func (f Family) Base() Family {
	switch f {
	case ValueFractal:
		return Value
	case PerlinFractal:
		return Perlin
	case SimplexFractal:
		return Simplex
	case CubicFractal:
		return Cubic
	}
	return f
}

// ParseFamily converts a family name (case-insensitive) to a Family
func ParseFamily(s string) (Family, error) {
	i, err := parseName(s, familyNames)
	if err != nil {
		return 0, fmt.Errorf("unknown noise family %q", s)
	}
	return Family(i), nil
}

// MarshalYAML encodes the family by name
func (f Family) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML decodes the family from its name
func (f *Family) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseFamily(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FractalType selects how octaves are combined
type FractalType int

const (
	FBM FractalType = iota
	Billow
	RigidMulti
)

var fractalNames = []string{
	FBM:        "FBM",
	Billow:     "Billow",
	RigidMulti: "RigidMulti",
}

func (t FractalType) String() string {
	if t < 0 || int(t) >= len(fractalNames) {
		return fmt.Sprintf("FractalType(%d)", int(t))
	}
	return fractalNames[t]
}

// ParseFractalType converts a fractal type name to a FractalType
func ParseFractalType(s string) (FractalType, error) {
	i, err := parseName(s, fractalNames)
	if err != nil {
		return 0, fmt.Errorf("unknown fractal type %q", s)
	}
	return FractalType(i), nil
}

func (t FractalType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *FractalType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseFractalType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PerturbType selects the domain warp applied to sample coordinates
type PerturbType int

const (
	NoPerturb PerturbType = iota
	Gradient
	GradientFractal
	Normalise
	GradientNormalise
	GradientFractalNormalise
)

var perturbNames = []string{
	NoPerturb:                "NoPerturb",
	Gradient:                 "Gradient",
	GradientFractal:          "GradientFractal",
	Normalise:                "Normalise",
	GradientNormalise:        "Gradient_Normalise",
	GradientFractalNormalise: "GradientFractal_Normalise",
}

func (t PerturbType) String() string {
	if t < 0 || int(t) >= len(perturbNames) {
		return fmt.Sprintf("PerturbType(%d)", int(t))
	}
	return perturbNames[t]
}

func (t PerturbType) gradient() bool {
	return t == Gradient || t == GradientFractal || t == GradientNormalise || t == GradientFractalNormalise
}

func (t PerturbType) fractal() bool {
	return t == GradientFractal || t == GradientFractalNormalise
}

func (t PerturbType) normalise() bool {
	return t == Normalise || t == GradientNormalise || t == GradientFractalNormalise
}

// ParsePerturbType converts a perturb type name to a PerturbType
func ParsePerturbType(s string) (PerturbType, error) {
	i, err := parseName(s, perturbNames)
	if err != nil {
		return 0, fmt.Errorf("unknown perturb type %q", s)
	}
	return PerturbType(i), nil
}

func (t PerturbType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *PerturbType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParsePerturbType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CellularReturnType selects what a cellular sample reports
type CellularReturnType int

const (
	CellValue CellularReturnType = iota
	Distance
	Distance2
	Distance2Add
	Distance2Sub
	Distance2Mul
	Distance2Div
	NoiseLookup
	Distance2Cave
)

var cellularReturnNames = []string{
	CellValue:     "CellValue",
	Distance:      "Distance",
	Distance2:     "Distance2",
	Distance2Add:  "Distance2Add",
	Distance2Sub:  "Distance2Sub",
	Distance2Mul:  "Distance2Mul",
	Distance2Div:  "Distance2Div",
	NoiseLookup:   "NoiseLookup",
	Distance2Cave: "Distance2Cave",
}

func (t CellularReturnType) String() string {
	if t < 0 || int(t) >= len(cellularReturnNames) {
		return fmt.Sprintf("CellularReturnType(%d)", int(t))
	}
	return cellularReturnNames[t]
}

// ParseCellularReturnType converts a return type name to a CellularReturnType
func ParseCellularReturnType(s string) (CellularReturnType, error) {
	i, err := parseName(s, cellularReturnNames)
	if err != nil {
		return 0, fmt.Errorf("unknown cellular return type %q", s)
	}
	return CellularReturnType(i), nil
}

func (t CellularReturnType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *CellularReturnType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseCellularReturnType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DistanceFunction measures distance to cellular feature points
type DistanceFunction int

const (
	Euclidean DistanceFunction = iota
	Manhattan
	Natural
)

var distanceNames = []string{
	Euclidean: "Euclidean",
	Manhattan: "Manhattan",
	Natural:   "Natural",
}

func (d DistanceFunction) String() string {
	if d < 0 || int(d) >= len(distanceNames) {
		return fmt.Sprintf("DistanceFunction(%d)", int(d))
	}
	return distanceNames[d]
}

// ParseDistanceFunction converts a distance function name to a DistanceFunction
func ParseDistanceFunction(s string) (DistanceFunction, error) {
	i, err := parseName(s, distanceNames)
	if err != nil {
		return 0, fmt.Errorf("unknown distance function %q", s)
	}
	return DistanceFunction(i), nil
}

func (d DistanceFunction) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *DistanceFunction) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseDistanceFunction(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func parseName(s string, names []string) (int, error) {
	for i, name := range names {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown name %q", s)
}

// FractalParameters configure octave accumulation for fractal families
type FractalParameters struct {
	Type       FractalType `yaml:"type"`
	Octaves    int         `yaml:"octaves"`
	Gain       float64     `yaml:"gain"`
	Lacunarity float64     `yaml:"lacunarity"`
}

// PerturbParameters configure domain warping
type PerturbParameters struct {
	Type            PerturbType `yaml:"type"`
	Amp             float64     `yaml:"amp"`
	Frequency       float64     `yaml:"frequency"`
	Gain            float64     `yaml:"gain"`
	Octaves         int         `yaml:"octaves"`
	Lacunarity      float64     `yaml:"lacunarity"`
	NormaliseLength float64     `yaml:"normalise_length"`
}

// Enabled reports whether sample coordinates are warped at all
func (p PerturbParameters) Enabled() bool {
	return p.Type != NoPerturb
}

// CellularParameters configure the cellular family
type CellularParameters struct {
	ReturnType       CellularReturnType `yaml:"return_type"`
	DistanceFunction DistanceFunction   `yaml:"distance_function"`
	Jitter           float64            `yaml:"jitter"`
	LookupFrequency  float64            `yaml:"lookup_frequency"`
}

// Parameters fully describe one noise field. A Parameters value is treated as
// immutable by the generator; edits replace it wholesale.
type Parameters struct {
	Family    Family             `yaml:"family"`
	Seed      int64              `yaml:"seed"`
	Frequency float64            `yaml:"frequency"`
	Fractal   FractalParameters  `yaml:"fractal"`
	Perturb   PerturbParameters  `yaml:"perturb"`
	Cellular  CellularParameters `yaml:"cellular"`
}

// DefaultParameters returns the tool's default noise settings
func DefaultParameters() Parameters {
	return Parameters{
		Family:    Perlin,
		Seed:      0,
		Frequency: 0.1,
		Fractal: FractalParameters{
			Type:       FBM,
			Octaves:    2,
			Gain:       0.5,
			Lacunarity: 2,
		},
		Perturb: PerturbParameters{
			Type:            NoPerturb,
			Amp:             1,
			Frequency:       0.5,
			Gain:            0.5,
			Octaves:         3,
			Lacunarity:      2,
			NormaliseLength: 1,
		},
		Cellular: CellularParameters{
			ReturnType:       Distance,
			DistanceFunction: Euclidean,
			Jitter:           0.45,
			LookupFrequency:  0.2,
		},
	}
}

// Validate checks the parameter invariants
func (p Parameters) Validate() error {
	if p.Family < 0 || int(p.Family) >= len(familyNames) {
		return fmt.Errorf("invalid noise family %d", int(p.Family))
	}
	if !(p.Frequency > 0) {
		return fmt.Errorf("frequency must be > 0, got %v", p.Frequency)
	}
	if p.Fractal.Octaves < 1 {
		return fmt.Errorf("fractal octaves must be >= 1, got %d", p.Fractal.Octaves)
	}
	if !(p.Fractal.Lacunarity > 0) {
		return fmt.Errorf("fractal lacunarity must be > 0, got %v", p.Fractal.Lacunarity)
	}
	if p.Fractal.Type < 0 || int(p.Fractal.Type) >= len(fractalNames) {
		return fmt.Errorf("invalid fractal type %d", int(p.Fractal.Type))
	}
	if p.Perturb.Type < 0 || int(p.Perturb.Type) >= len(perturbNames) {
		return fmt.Errorf("invalid perturb type %d", int(p.Perturb.Type))
	}
	if p.Perturb.Enabled() {
		if p.Perturb.Octaves < 1 {
			return fmt.Errorf("perturb octaves must be >= 1, got %d", p.Perturb.Octaves)
		}
		if !(p.Perturb.Frequency > 0) {
			return fmt.Errorf("perturb frequency must be > 0, got %v", p.Perturb.Frequency)
		}
	}
	if p.Cellular.ReturnType < 0 || int(p.Cellular.ReturnType) >= len(cellularReturnNames) {
		return fmt.Errorf("invalid cellular return type %d", int(p.Cellular.ReturnType))
	}
	if p.Cellular.DistanceFunction < 0 || int(p.Cellular.DistanceFunction) >= len(distanceNames) {
		return fmt.Errorf("invalid distance function %d", int(p.Cellular.DistanceFunction))
	}
	if !(p.Cellular.Jitter >= 0 && p.Cellular.Jitter <= 1) {
		return fmt.Errorf("cellular jitter must be in [0,1], got %v", p.Cellular.Jitter)
	}
	if !(p.Cellular.LookupFrequency > 0) {
		return fmt.Errorf("cellular lookup frequency must be > 0, got %v", p.Cellular.LookupFrequency)
	}
	return nil
}
