package reference

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML document used to override or export reference values.
type File struct {
	AsOf       int                           `yaml:"as_of,omitempty"`
	Indicators map[string]map[string]float64 `yaml:"indicators"`
}

// LoadFile reads an override document from path.
func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open reference file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return Decode(f)
}

// Decode parses an override document.
func Decode(r io.Reader) (File, error) {
	var doc File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode reference file: %w", err)
	}
	return doc, nil
}

// Merge returns a copy of t with the values of doc laid over it. known reports
// whether an indicator code exists in the registry; unknown codes and
// non-finite values are rejected.
func (t *Table) Merge(doc File, known func(indicator string) bool) (*Table, error) {
	for ind, byArea := range doc.Indicators {
		if !known(ind) {
			return nil, fmt.Errorf("reference file: unknown indicator %q", ind)
		}
		for area, v := range byArea {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("reference file: %s/%s: value must be finite", ind, area)
			}
		}
	}

	out := &Table{
		asOf:    t.asOf,
		values:  make(map[string]map[string]float64, len(t.values)),
		regions: t.regions,
	}
	for ind := range t.values {
		out.values[ind] = t.Entries(ind)
	}
	for ind, byArea := range doc.Indicators {
		for area, v := range byArea {
			out.set(ind, area, v)
		}
	}
	if doc.AsOf != 0 {
		out.asOf = doc.AsOf
	}
	return out, nil
}

// Export renders the effective table as a document that Decode accepts.
func (t *Table) Export(w io.Writer) error {
	doc := File{AsOf: t.asOf, Indicators: make(map[string]map[string]float64, len(t.values))}
	for ind := range t.values {
		doc.Indicators[ind] = t.Entries(ind)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode reference table: %w", err)
	}
	return enc.Close()
}
