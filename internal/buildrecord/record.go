// Package buildrecord persists a build's result and annotations as YAML and
// migrates records written in the legacy action format.
package buildrecord

import (
	"errors"
	"fmt"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/domain"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the version written by Encode
const SchemaVersion = 2

var (
	// ErrUnsupportedVersion is returned for records newer than this code
	ErrUnsupportedVersion = errors.New("unsupported build record version")
	// ErrMissingVersion is returned for records with neither schema_version
	// nor legacy actions
	ErrMissingVersion = errors.New("build record has no schema_version")
)

// Record is the persisted state of one build
type Record struct {
	SchemaVersion int              `yaml:"schema_version"`
	Job           string           `yaml:"job"`
	Number        int              `yaml:"number"`
	Result        domain.Result    `yaml:"result"`
	Badges        []domain.Badge   `yaml:"badges,omitempty"`
	Summaries     []domain.Summary `yaml:"summaries,omitempty"`
	UpdatedAt     time.Time        `yaml:"updated_at,omitempty"`
}

// FromBuild snapshots a build
func FromBuild(b domain.Build) *Record {
	badges, summaries := b.Annotations()
	return &Record{
		SchemaVersion: SchemaVersion,
		Job:           b.Job(),
		Number:        b.Number(),
		Result:        b.Result(),
		Badges:        badges,
		Summaries:     summaries,
		UpdatedAt:     time.Now().UTC(),
	}
}

// Apply copies the record's result and annotations onto b
func (r *Record) Apply(b domain.Build) {
	b.SetResult(r.Result)
	b.SetAnnotations(r.Badges, r.Summaries)
}

// Encode renders r in the current schema
func Encode(r *Record) ([]byte, error) {
	out := *r
	out.SchemaVersion = SchemaVersion
	return yaml.Marshal(&out)
}

// Decode parses a record of any supported version. A record without
// schema_version is legacy only when it carries actions.
func Decode(data []byte) (*Record, error) {
	var header struct {
		SchemaVersion *int `yaml:"schema_version"`
		Actions       any  `yaml:"actions"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parsing build record: %w", err)
	}

	version := 1
	if header.SchemaVersion != nil {
		version = *header.SchemaVersion
	} else if header.Actions == nil {
		return nil, ErrMissingVersion
	}

	switch {
	case version <= 1:
		return decodeLegacy(data)
	case version == SchemaVersion:
		var r Record
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parsing build record: %w", err)
		}
		r.renumber()
		return &r, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
}

func (r *Record) renumber() {
	for i := range r.Badges {
		r.Badges[i].Position = i
	}
	for i := range r.Summaries {
		r.Summaries[i].Position = i
	}
}
