package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"terragen/internal/logger"
	"terragen/internal/util"
	"terragen/pkg/assets"
	"terragen/pkg/config"
	"terragen/pkg/terrain"
)

// PlacementRecord is the serialized form of a placed instance
type PlacementRecord struct {
	Category string     `json:"category"`
	Instance string     `json:"instance"`
	Model    string     `json:"model"`
	Position [3]float64 `json:"position"`
	Scale    float64    `json:"scale"`
	Axis     [3]float64 `json:"axis"`
	Angle    float64    `json:"angle"`
	Roll     float64    `json:"roll"`
	Pitch    float64    `json:"pitch"`
	Yaw      float64    `json:"yaw"`
}

// PlacementRecords converts instances for serialization
func PlacementRecords(placements []terrain.PlacedInstance) []PlacementRecord {
	out := make([]PlacementRecord, 0, len(placements))
	names := InstanceNames(placements)
	for i, p := range placements {
		pose := p.Pose()
		out = append(out, PlacementRecord{
			Category: p.Category.String(),
			Instance: names[i],
			Model:    instanceModel(p),
			Position: [3]float64{p.Position[0], p.Position[1], p.Position[2]},
			Scale:    p.Scale,
			Axis:     [3]float64{p.RotationAxis[0], p.RotationAxis[1], p.RotationAxis[2]},
			Angle:    p.RotationAngle,
			Roll:     pose.Roll,
			Pitch:    pose.Pitch,
			Yaw:      pose.Yaw,
		})
	}
	return out
}

// WritePlacementsJSON writes the placement records as indented JSON
func WritePlacementsJSON(w io.Writer, placements []terrain.PlacedInstance) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(PlacementRecords(placements))
}

// Result lists the files written by an export
type Result struct {
	Dir        string
	ModelDir   string
	MeshFile   string
	ModelFile  string
	ConfigFile string
	WorldFile  string
	Placements string
	Preview    string
	Instances  []string // model directories of templated instances
}

// instanceColor is the material of exported instance meshes
var instanceColor = config.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}

type exportStep struct {
	path  string
	write func(io.Writer) error
}

// Exporter writes a regeneration snapshot to disk as a ground model, a world
// that places every instance, a placement list and a preview image
type Exporter struct {
	cfg config.ExportConfig
	log *logger.Logger
}

// NewExporter creates an exporter. A nil logger discards output.
func NewExporter(cfg config.ExportConfig, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Discard()
	}
	return &Exporter{cfg: cfg, log: log}
}

// Export writes snap below the configured output directory:
//
//	<out>/<model>/model.config
//	<out>/<model>/model.sdf
//	<out>/<model>/meshes/<model>.obj
//	<out>/<category>_<n>/...     one model per templated instance
//	<out>/<world>.world
//	<out>/placements.json
//	<out>/preview.png
func (e *Exporter) Export(snap terrain.Snapshot) (*Result, error) {
	defer util.TimeTrack(time.Now(), "Export", e.log.Debugf)

	if snap.Mesh == nil {
		return nil, fmt.Errorf("%w: nothing to export", terrain.ErrInvalidInput)
	}
	model := e.cfg.ModelName
	if model == "" {
		model = "ground_mesh"
	}
	world := e.cfg.WorldName
	if world == "" {
		world = "generated_world"
	}

	res := &Result{Dir: e.cfg.OutputDir}
	res.ModelDir = filepath.Join(res.Dir, model)
	res.MeshFile = filepath.Join(res.ModelDir, "meshes", model+".obj")
	res.ModelFile = filepath.Join(res.ModelDir, "model.sdf")
	res.ConfigFile = filepath.Join(res.ModelDir, "model.config")
	res.WorldFile = filepath.Join(res.Dir, world+".world")
	res.Placements = filepath.Join(res.Dir, "placements.json")

	if err := util.CreateDirIfNotExist(filepath.Dir(res.MeshFile)); err != nil {
		return nil, err
	}

	var placements []terrain.PlacedInstance
	for _, cat := range terrain.Categories() {
		placements = append(placements, snap.Placements[cat]...)
	}

	steps := []exportStep{
		{res.MeshFile, func(w io.Writer) error { return WriteTerrainOBJ(w, model, snap.Mesh) }},
		{res.ModelFile, func(w io.Writer) error { return WriteModelSDF(w, model, e.cfg.MeshColor) }},
		{res.ConfigFile, func(w io.Writer) error { return WriteModelConfig(w, model, "Procedurally generated terrain") }},
		{res.WorldFile, func(w io.Writer) error { return WriteWorld(w, world, model, placements) }},
		{res.Placements, func(w io.Writer) error { return WritePlacementsJSON(w, placements) }},
	}
	if e.cfg.PreviewSize > 0 {
		res.Preview = filepath.Join(res.Dir, "preview.png")
		steps = append(steps, exportStep{res.Preview, func(w io.Writer) error {
			return WritePreviewPNG(w, snap.Field, placements, e.cfg.PreviewSize)
		}})
	}

	names := InstanceNames(placements)
	for i, p := range placements {
		geom, ok := p.Geometry()
		if !ok {
			continue
		}
		instSteps, dir, err := instanceSteps(res.Dir, names[i], p.Template.ID(), geom)
		if err != nil {
			return nil, err
		}
		steps = append(steps, instSteps...)
		res.Instances = append(res.Instances, dir)
	}

	for _, step := range steps {
		if err := writeFile(step.path, step.write); err != nil {
			return nil, err
		}
	}

	e.log.Infof("Exported %s and %d placements (%d instance meshes) to %s",
		model, len(placements), len(res.Instances), res.Dir)
	return res, nil
}

// instanceSteps lays out the model directory of one transformed instance
func instanceSteps(root, name, templateID string, geom assets.Mesh) ([]exportStep, string, error) {
	dir := filepath.Join(root, name)
	if err := util.CreateDirIfNotExist(filepath.Join(dir, "meshes")); err != nil {
		return nil, "", err
	}
	return []exportStep{
		{filepath.Join(dir, "meshes", name+".obj"), func(w io.Writer) error {
			return WriteOBJ(w, name, geom.Vertices, nil, geom.Faces)
		}},
		{filepath.Join(dir, "model.sdf"), func(w io.Writer) error { return WriteModelSDF(w, name, instanceColor) }},
		{filepath.Join(dir, "model.config"), func(w io.Writer) error {
			return WriteModelConfig(w, name, "Placed instance of "+templateID)
		}},
	}, dir, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
