package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"terragen/pkg/config"
	"terragen/pkg/terrain"
)

const sdfVersion = "1.6"

type sdfRoot struct {
	XMLName xml.Name  `xml:"sdf"`
	Version string    `xml:"version,attr"`
	Model   *sdfModel `xml:"model,omitempty"`
	World   *sdfWorld `xml:"world,omitempty"`
}

type sdfModel struct {
	Name   string  `xml:"name,attr"`
	Static bool    `xml:"static"`
	Link   sdfLink `xml:"link"`
}

type sdfLink struct {
	Name      string       `xml:"name,attr"`
	Collision sdfCollision `xml:"collision"`
	Visual    sdfVisual    `xml:"visual"`
}

type sdfCollision struct {
	Name     string      `xml:"name,attr"`
	Geometry sdfGeometry `xml:"geometry"`
}

type sdfVisual struct {
	Name     string      `xml:"name,attr"`
	Geometry sdfGeometry `xml:"geometry"`
	Material sdfMaterial `xml:"material"`
}

type sdfGeometry struct {
	Mesh sdfMesh `xml:"mesh"`
}

type sdfMesh struct {
	URI string `xml:"uri"`
}

type sdfMaterial struct {
	Ambient string `xml:"ambient"`
	Diffuse string `xml:"diffuse"`
}

type sdfWorld struct {
	Name     string       `xml:"name,attr"`
	Includes []sdfInclude `xml:"include"`
}

type sdfInclude struct {
	URI    string `xml:"uri"`
	Name   string `xml:"name,omitempty"`
	Static bool   `xml:"static,omitempty"`
	Pose   string `xml:"pose,omitempty"`
}

type modelConfig struct {
	XMLName     xml.Name `xml:"model"`
	Name        string   `xml:"name"`
	Version     string   `xml:"version"`
	SDF         sdfRef   `xml:"sdf"`
	Description string   `xml:"description"`
}

type sdfRef struct {
	Version string `xml:"version,attr"`
	Path    string `xml:",chardata"`
}

// ModelURI is how scene files refer to an exported model directory
func ModelURI(name string) string {
	return "model://" + name
}

// MeshURI is the location of a model's mesh inside its directory
func MeshURI(name string) string {
	return fmt.Sprintf("model://%s/meshes/%s.obj", name, name)
}

func rgbaString(c config.RGBA) string {
	return fmt.Sprintf("%g %g %g %g", c.R, c.G, c.B, c.A)
}

// WriteModelSDF writes the static ground model that references its OBJ mesh
func WriteModelSDF(w io.Writer, name string, color config.RGBA) error {
	geom := sdfGeometry{Mesh: sdfMesh{URI: MeshURI(name)}}
	root := sdfRoot{
		Version: sdfVersion,
		Model: &sdfModel{
			Name:   name,
			Static: true,
			Link: sdfLink{
				Name:      "link",
				Collision: sdfCollision{Name: "collision", Geometry: geom},
				Visual: sdfVisual{
					Name:     "visual",
					Geometry: geom,
					Material: sdfMaterial{Ambient: rgbaString(color), Diffuse: rgbaString(color)},
				},
			},
		},
	}
	return writeXML(w, root)
}

// WriteModelConfig writes the model.config manifest of an exported model
func WriteModelConfig(w io.Writer, name, description string) error {
	return writeXML(w, modelConfig{
		Name:        name,
		Version:     "1.0",
		SDF:         sdfRef{Version: sdfVersion, Path: "model.sdf"},
		Description: description,
	})
}

// FormatPose renders a pose as "x y z roll pitch yaw"
func FormatPose(p terrain.Pose) string {
	vals := []float64{p.Position[0], p.Position[1], p.Position[2], p.Roll, p.Pitch, p.Yaw}
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v == 0 {
			v = 0 // no "-0" in output
		}
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// instanceModel names the model an instance is included from: its template,
// or its category when it has none
func instanceModel(p terrain.PlacedInstance) string {
	if p.Template != nil {
		return p.Template.ID()
	}
	return p.Category.String()
}

// InstanceNames returns the scene name of every placement, "<category>_<n>"
// numbered from 1 per category in list order
func InstanceNames(placements []terrain.PlacedInstance) []string {
	names := make([]string, len(placements))
	counters := make(map[terrain.Category]int)
	for i, p := range placements {
		counters[p.Category]++
		names[i] = fmt.Sprintf("%s_%d", p.Category, counters[p.Category])
	}
	return names
}

// WriteWorld writes a world that includes the ground model and every placed
// instance. Instances with a template refer to their own exported model,
// whose mesh is already in world coordinates; the rest include their
// category model at their pose.
func WriteWorld(w io.Writer, worldName, groundModel string, placements []terrain.PlacedInstance) error {
	world := &sdfWorld{Name: worldName}
	world.Includes = append(world.Includes, sdfInclude{
		URI:    ModelURI(groundModel),
		Name:   groundModel,
		Static: true,
		Pose:   "0 0 0 0 0 0",
	})

	names := InstanceNames(placements)
	for i, p := range placements {
		inc := sdfInclude{
			URI:  ModelURI(instanceModel(p)),
			Name: names[i],
			Pose: FormatPose(p.Pose()),
		}
		if p.Template != nil {
			inc.URI = ModelURI(names[i])
			inc.Pose = "0 0 0 0 0 0"
		}
		world.Includes = append(world.Includes, inc)
	}
	return writeXML(w, sdfRoot{Version: sdfVersion, World: world})
}

func writeXML(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
