// Package modulefile reads and writes the module configuration file. The file is a JSON or YAML
// list of modules, chosen by extension.
package modulefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tankops/bath-planner/internal/correction"
	"sigs.k8s.io/yaml"
)

// ErrNotConfigured is returned when the file is missing, empty or cannot be parsed.
var ErrNotConfigured = errors.New("modules file is not configured")

type chemicalRecord struct {
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	Target       float64  `json:"target"`
	InternalID   string   `json:"internal_id"`
	Makeup       *float64 `json:"makeup,omitempty"`
	GreenZoneMin *float64 `json:"green_zone_min,omitempty"`
	GreenZoneMax *float64 `json:"green_zone_max,omitempty"`
	TickInterval *float64 `json:"tick_interval,omitempty"`
}

type moduleRecord struct {
	Name        string           `json:"name"`
	ModuleType  string           `json:"module_type"`
	TotalVolume float64          `json:"total_volume"`
	Chemicals   []chemicalRecord `json:"chemicals"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the modules from path. A missing or corrupt file yields ErrNotConfigured, wrapped with
// the cause.
func Load(path string) ([]correction.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotConfigured, "%s does not exist", path)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Decode(data, isYAML(path))
}

// Decode parses a modules document. YAML is converted to JSON first so both formats share the
// same field names.
func Decode(data []byte, asYAML bool) ([]correction.Module, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.Wrap(ErrNotConfigured, "file is empty")
	}

	if asYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.Wrapf(ErrNotConfigured, "invalid yaml: %v", err)
		}
		data = converted
	}

	var records []moduleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(ErrNotConfigured, "invalid json: %v", err)
	}

	modules := make([]correction.Module, 0, len(records))
	for _, r := range records {
		modules = append(modules, r.toModule())
	}
	return modules, nil
}

// Encode renders modules as indented JSON or YAML.
func Encode(modules []correction.Module, asYAML bool) ([]byte, error) {
	records := make([]moduleRecord, 0, len(modules))
	for _, m := range modules {
		records = append(records, newModuleRecord(m))
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding modules")
	}
	if !asYAML {
		return append(data, '\n'), nil
	}

	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return nil, errors.Wrap(err, "converting modules to yaml")
	}
	return out, nil
}

// Save writes modules to path. The file is replaced atomically so a concurrent Load or a watcher
// never sees a partial document.
func Save(path string, modules []correction.Module) error {
	data, err := Encode(modules, isYAML(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "setting permissions on %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

func newModuleRecord(m correction.Module) moduleRecord {
	r := moduleRecord{
		Name:        m.Name,
		ModuleType:  string(m.Type),
		TotalVolume: m.TotalVolume,
		Chemicals:   make([]chemicalRecord, 0, len(m.Chemicals)),
	}
	for _, c := range m.Chemicals {
		r.Chemicals = append(r.Chemicals, chemicalRecord{
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			InternalID:   c.InternalID,
			Makeup:       c.Makeup,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			TickInterval: c.TickInterval,
		})
	}
	return r
}

func (r moduleRecord) toModule() correction.Module {
	m := correction.Module{
		Name:        r.Name,
		Type:        correction.ModuleType(r.ModuleType),
		TotalVolume: r.TotalVolume,
		Chemicals:   make([]correction.Chemical, 0, len(r.Chemicals)),
	}
	for _, c := range r.Chemicals {
		m.Chemicals = append(m.Chemicals, correction.Chemical{
			InternalID:   c.InternalID,
			Name:         c.Name,
			Unit:         c.Unit,
			Target:       c.Target,
			Makeup:       c.Makeup,
			GreenZoneMin: c.GreenZoneMin,
			GreenZoneMax: c.GreenZoneMax,
			TickInterval: c.TickInterval,
		})
	}
	return m
}

// Defaults returns the example configuration offered by the setup flow.
func Defaults() []correction.Module {
	return []correction.Module{
		{
			Name:        "Module 3",
			Type:        correction.TwoComponent,
			TotalVolume: 240,
			Chemicals: []correction.Chemical{
				{InternalID: "A", Name: "Component A", Unit: "ml/L", Target: 120},
				{InternalID: "B", Name: "Component B", Unit: "ml/L", Target: 50},
			},
		},
		{
			Name:        "Module 7",
			Type:        correction.ThreeComponent,
			TotalVolume: 250,
			Chemicals: []correction.Chemical{
				{InternalID: "cond", Name: "Conditioner", Unit: "ml/L", Target: 180},
				{InternalID: "cu", Name: "Cu Etch", Unit: "g/L", Target: 20},
				{InternalID: "h2o2", Name: "H2O2", Unit: "ml/L", Target: 6.5},
			},
		},
	}
}

// Template returns an empty module of type t with the chemical ids it requires.
func Template(t correction.ModuleType) correction.Module {
	m := correction.Module{Type: t}
	for _, id := range t.ComponentIDs() {
		m.Chemicals = append(m.Chemicals, correction.Chemical{InternalID: id})
	}
	return m
}
