package variables

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the on-disk variables file shape: per-simulation overrides
// plus a "default" bucket, grounded on
// guido4f-PensionForecastDesktop/config.go's embed+yaml PersonConfig pattern.
// Distributions is a flat, simulation-independent map since Monte Carlo
// sample types (unlike amounts/dates) are not simulation-scoped.
type yamlDoc struct {
	Amounts       map[string]map[string]float64 `yaml:"amounts"`
	Dates         map[string]map[string]string  `yaml:"dates"`
	Distributions map[string]yamlNormalParams    `yaml:"distributions"`
}

type yamlNormalParams struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stdDev"`
}

// LoadYAML populates a StaticResolver from a variables.yaml file. The
// top-level key "default" is treated as the simulation-independent bucket.
func LoadYAML(path string) (*StaticResolver, error) {
	doc, err := readYAMLDoc(path)
	if err != nil {
		return nil, err
	}

	r := NewStaticResolver()
	for sim, vars := range doc.Amounts {
		simKey := sim
		if sim == "default" {
			simKey = ""
		}
		for name, v := range vars {
			r.SetAmount(simKey, name, v)
		}
	}
	for sim, vars := range doc.Dates {
		simKey := sim
		if sim == "default" {
			simKey = ""
		}
		for name, v := range vars {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return nil, fmt.Errorf("parsing date variable %s.%s: %w", sim, name, err)
			}
			r.SetDate(simKey, name, d)
		}
	}
	return r, nil
}

// LoadDistributions reads the same variables.yaml file's "distributions"
// section into the map NewNormalSampleProvider consumes.
func LoadDistributions(path string) (map[string]NormalParams, error) {
	doc, err := readYAMLDoc(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]NormalParams, len(doc.Distributions))
	for name, p := range doc.Distributions {
		out[name] = NormalParams{Mean: p.Mean, StdDev: p.StdDev}
	}
	return out, nil
}

func readYAMLDoc(path string) (*yamlDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing variables file: %w", err)
	}
	return &doc, nil
}
