package jobboard

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// ConstructionKind selects which component table a job type resolves its bill
// of materials from.
type ConstructionKind string

const (
	ConstructionNone     ConstructionKind = ""
	ConstructionGeneric  ConstructionKind = "generic"
	ConstructionItem     ConstructionKind = "item"
	ConstructionWorkshop ConstructionKind = "workshop"
)

// JobType is the static metadata for one job type.
type JobType struct {
	ID            string           `yaml:"id"`
	Skill         string           `yaml:"skill"`
	Tool          *RequiredTool    `yaml:"tool,omitempty"`
	WorkPositions []Offset         `yaml:"workPositions"`
	Structural    bool             `yaml:"structural"`
	Construction  ConstructionKind `yaml:"construction"`
	DurationTicks int              `yaml:"durationTicks"`
	ResetsAlarm   bool             `yaml:"resetsAlarm"`
}

// Offset is a work-position offset relative to the job position, written as
// a three element list in YAML.
type Offset Position

// UnmarshalYAML decodes an [x, y, z] list.
func (o *Offset) UnmarshalYAML(value *yaml.Node) error {
	var xyz []int
	if err := value.Decode(&xyz); err != nil {
		return err
	}
	if len(xyz) != 3 {
		return fmt.Errorf("offset must have 3 components, got %d", len(xyz))
	}
	*o = Offset{xyz[0], xyz[1], xyz[2]}
	return nil
}

// MarshalYAML encodes the offset as an [x, y, z] list.
func (o Offset) MarshalYAML() (interface{}, error) {
	return []int{o.X, o.Y, o.Z}, nil
}

// Component is one line of a component table.
type Component struct {
	Item          string   `yaml:"item"`
	Count         int      `yaml:"count"`
	MaterialTypes []string `yaml:"materialTypes"`
	RequireSame   bool     `yaml:"requireSame"`
}

// Catalog holds job-type metadata and component tables.
type Catalog struct {
	JobTypes      []JobType              `yaml:"jobTypes"`
	Constructions map[string][]Component `yaml:"constructions"`
	Items         map[string][]Component `yaml:"items"`
	Workshops     map[string][]Component `yaml:"workshops"`

	byID    map[string]*JobType
	bySkill map[string][]string
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

func (c *Catalog) index() error {
	c.byID = make(map[string]*JobType, len(c.JobTypes))
	c.bySkill = make(map[string][]string)
	for i := range c.JobTypes {
		jt := &c.JobTypes[i]
		if jt.ID == "" {
			return fmt.Errorf("%w: job type at index %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byID[jt.ID]; dup {
			return fmt.Errorf("%w: duplicate job type %s", ErrInvalidCatalog, jt.ID)
		}
		if jt.Skill == "" {
			return fmt.Errorf("%w: job type %s has no skill", ErrInvalidCatalog, jt.ID)
		}
		if len(jt.WorkPositions) == 0 {
			return fmt.Errorf("%w: job type %s has no work positions", ErrInvalidCatalog, jt.ID)
		}
		if jt.Tool != nil && jt.Tool.Type == "" {
			jt.Tool = nil
		}
		c.byID[jt.ID] = jt
		c.bySkill[jt.Skill] = append(c.bySkill[jt.Skill], jt.ID)
	}
	for table, rows := range map[string]map[string][]Component{
		"constructions": c.Constructions,
		"items":         c.Items,
		"workshops":     c.Workshops,
	} {
		for key, comps := range rows {
			for _, comp := range comps {
				if comp.Item == "" || comp.Count <= 0 {
					return fmt.Errorf("%w: %s/%s has an invalid component", ErrInvalidCatalog, table, key)
				}
			}
		}
	}
	return nil
}

// JobType returns the metadata for a job type.
func (c *Catalog) JobType(id string) (*JobType, bool) {
	jt, ok := c.byID[id]
	return jt, ok
}

// TypesForSkill returns the job types a skill covers, in catalog order.
func (c *Catalog) TypesForSkill(skill string) []string {
	return c.bySkill[skill]
}

// Components returns the bill of materials for item under the given
// construction kind.
func (c *Catalog) Components(kind ConstructionKind, item string) []Component {
	switch kind {
	case ConstructionGeneric:
		return c.Constructions[item]
	case ConstructionItem:
		return c.Items[item]
	case ConstructionWorkshop:
		return c.Workshops[item]
	default:
		return nil
	}
}

// Positions rotates the job type's offset template and anchors it at pos.
func (jt *JobType) Positions(pos Position, rotation int) []Position {
	out := make([]Position, 0, len(jt.WorkPositions))
	for _, off := range jt.WorkPositions {
		out = append(out, pos.Add(Position(off).Rotate(rotation)))
	}
	return out
}
