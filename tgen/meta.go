package tgen

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Meta is the optional sidecar (§11.3) carrying free-text provenance per
// program id. Its presence or absence changes nothing about Load/Save/
// evaluation; it exists purely for human annotation of a program file.
type Meta struct {
	Entries map[int]string `yaml:"entries"`
}

// LoadMeta reads a <program-file>.meta.yaml sidecar.
func LoadMeta(r io.Reader) (Meta, error) {
	var m Meta
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return Meta{Entries: map[int]string{}}, nil
		}
		return Meta{}, err
	}
	if m.Entries == nil {
		m.Entries = map[int]string{}
	}
	return m, nil
}

// SaveMeta writes m in the sidecar's YAML shape.
func SaveMeta(w io.Writer, m Meta) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(m)
}
