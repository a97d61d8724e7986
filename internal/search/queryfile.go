// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citemap/internal/rank"
	"github.com/pdiddy/citemap/pkg/types"
)

// QueryFile is the on-disk representation of a search and its per-source
// results. A saved search can be reloaded and re-rendered without
// querying any source again.
type QueryFile struct {
	Query   QueryParams     `yaml:"query"`
	Config  QueryFileConfig `yaml:"config"`
	Sources []SourceResult  `yaml:"sources"`
	Summary QuerySummary    `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Text     string   `yaml:"text"`
	Type     string   `yaml:"type"`
	Sources  []string `yaml:"sources,omitempty"`
	YearFrom string   `yaml:"year_from,omitempty"`
	YearTo   string   `yaml:"year_to,omitempty"`
	Limit    int      `yaml:"limit,omitempty"`
}

// QueryFileConfig stores the weights that produced the scores.
type QueryFileConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total       int       `yaml:"total"`
	Unavailable []string  `yaml:"unavailable,omitempty"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a search and its results to a YAML file.
func WriteQueryFile(path string, res Results, w rank.Weights) error {
	qf := QueryFile{
		Query: QueryParams{
			Text:  res.Query.Text,
			Type:  string(res.Query.Type),
			Limit: res.Query.Limit,
		},
		Config:  QueryFileConfig{Alpha: w.Alpha, Beta: w.Beta, Gamma: w.Gamma},
		Sources: res.Sources,
		Summary: QuerySummary{Total: res.Total(), Timestamp: time.Now()},
	}
	for _, sr := range res.Sources {
		qf.Query.Sources = append(qf.Query.Sources, string(sr.Source))
		if sr.Status == StatusUnavailable {
			qf.Summary.Unavailable = append(qf.Summary.Unavailable, string(sr.Source))
		}
	}
	if res.Range.Start != nil {
		qf.Query.YearFrom = strconv.Itoa(*res.Range.Start)
	}
	if res.Range.End != nil {
		qf.Query.YearTo = strconv.Itoa(*res.Range.End)
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into search arguments.
func (p QueryParams) ToQuery() (types.Query, []types.Source, DateRange, error) {
	st, err := types.ParseSearchType(p.Type)
	if err != nil {
		return types.Query{}, nil, DateRange{}, err
	}
	sources, err := ParseSources(p.Sources)
	if err != nil {
		return types.Query{}, nil, DateRange{}, err
	}
	dr, err := ParseDateRange(p.YearFrom, p.YearTo)
	if err != nil {
		return types.Query{}, nil, DateRange{}, err
	}
	return types.Query{Text: p.Text, Type: st, Limit: p.Limit}, sources, dr, nil
}

// Results rebuilds the saved results.
func (qf *QueryFile) Results() (Results, error) {
	q, _, dr, err := qf.Query.ToQuery()
	if err != nil {
		return Results{}, err
	}
	return Results{Query: q, Range: dr, Sources: qf.Sources}, nil
}
