// pkg/source/fixture.go
package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// FixtureEvents is the simulation-mode event source: a fixed set of raw rows
// selected at construction time, either the built-in sample data or a YAML
// fixture file. It honors the same since-date contract as the SQL source.
type FixtureEvents struct {
	starts []model.RawEvent
	ends   []model.RawEvent
}

type fixtureFile struct {
	Starts []fixtureEvent `yaml:"starts"`
	Ends   []fixtureEvent `yaml:"ends"`
}

type fixtureEvent struct {
	Ident      string    `yaml:"ident"`
	LaunchCode string    `yaml:"codeLanctImprod"`
	Phase      string    `yaml:"phase"`
	RubricCode string    `yaml:"codeRubrique"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// NewFixtureEvents returns the built-in sample streams: the rows the original
// debug endpoints served when SQL was disabled.
func NewFixtureEvents() *FixtureEvents {
	now := time.Now()
	return &FixtureEvents{
		starts: []model.RawEvent{
			{Identity: "001", LaunchCode: "LT001", Phase: "P1", RubricCode: "R1", Kind: model.KindStart, Timestamp: now, SourceTable: startTable},
			{Identity: "140972", LaunchCode: "LT002", Phase: "P2", RubricCode: "R2", Kind: model.KindStart, Timestamp: now, SourceTable: startTable},
		},
		ends: []model.RawEvent{
			{Identity: "001", LaunchCode: "LT001", Phase: "P1", RubricCode: "R1", Kind: model.KindEnd, Timestamp: now, SourceTable: endTable},
		},
	}
}

// LoadFixtureEvents reads start/end streams from a YAML fixture file.
func LoadFixtureEvents(path string) (*FixtureEvents, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}

	fx := &FixtureEvents{}
	for _, e := range file.Starts {
		fx.starts = append(fx.starts, e.toRaw(model.KindStart, startTable))
	}
	for _, e := range file.Ends {
		fx.ends = append(fx.ends, e.toRaw(model.KindEnd, endTable))
	}
	return fx, nil
}

func (e fixtureEvent) toRaw(kind model.Kind, table string) model.RawEvent {
	return model.RawEvent{
		Identity:    e.Ident,
		LaunchCode:  e.LaunchCode,
		Phase:       e.Phase,
		RubricCode:  e.RubricCode,
		Kind:        kind,
		Timestamp:   e.Timestamp,
		SourceTable: table,
	}
}

// Starts returns the fixture start rows passing the since filter.
func (f *FixtureEvents) Starts(ctx context.Context, since *time.Time) ([]model.RawEvent, error) {
	return filterSince(f.starts, since), nil
}

// Ends returns the fixture end rows passing the since filter.
func (f *FixtureEvents) Ends(ctx context.Context, since *time.Time) ([]model.RawEvent, error) {
	return filterSince(f.ends, since), nil
}

func filterSince(events []model.RawEvent, since *time.Time) []model.RawEvent {
	out := make([]model.RawEvent, 0, len(events))
	for _, ev := range events {
		if onOrAfterDay(ev.Timestamp, since) {
			out = append(out, ev)
		}
	}
	return out
}
