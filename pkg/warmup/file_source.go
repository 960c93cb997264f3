package warmup

import (
	"context"
	"errors"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// FileSource is a DataSource backed by a YAML fixture. It is meant for
// development and demos where no catalog service is running.
//
// Example fixture:
//
//	settings:
//	  currency: USD
//	categories:
//	  - id: "1"
//	    name: Lighting
//	    slug: lighting
//	featured_products:
//	  - id: "42"
//	    name: Desk Lamp
//	    price: 19.5
type FileSource struct {
	fixture fixture
}

type fixture struct {
	Settings   map[string]any `yaml:"settings"`
	Dashboard  map[string]any `yaml:"dashboard"`
	Analytics  map[string]any `yaml:"analytics"`
	Categories []Category     `yaml:"categories"`
	Featured   []Product      `yaml:"featured_products"`
}

// LoadFile reads a YAML fixture from path.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFixtureRead, err)
	}
	return ParseFixture(data)
}

// ParseFixture parses a YAML fixture.
func ParseFixture(data []byte) (*FileSource, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrFixtureParse, err)
	}
	return &FileSource{fixture: f}, nil
}

func (s *FileSource) Settings(context.Context) (map[string]any, error) {
	return maps.Clone(s.fixture.Settings), nil
}

func (s *FileSource) CategoryTree(context.Context) ([]Category, error) {
	return slices.Clone(s.fixture.Categories), nil
}

func (s *FileSource) DashboardMetrics(context.Context) (map[string]any, error) {
	out := maps.Clone(s.fixture.Dashboard)
	if out == nil {
		out = map[string]any{}
	}
	out["generated_at"] = time.Now().UTC().Format(time.RFC3339)
	return out, nil
}

func (s *FileSource) FeaturedProducts(context.Context) ([]Product, error) {
	return slices.Clone(s.fixture.Featured), nil
}

// AnalyticsSnapshot returns the fixture analytics annotated with the range.
func (s *FileSource) AnalyticsSnapshot(_ context.Context, from, to time.Time, interval string) (map[string]any, error) {
	out := maps.Clone(s.fixture.Analytics)
	if out == nil {
		out = map[string]any{}
	}
	out["from"] = from.UTC().Format(time.DateOnly)
	out["to"] = to.UTC().Format(time.DateOnly)
	out["interval"] = interval
	return out, nil
}

var _ DataSource = (*FileSource)(nil)
