package output

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// APIVersion is the apiVersion of structured listings.
const APIVersion = "kpet.dev/v1alpha1"

type listing struct {
	APIVersion string  `json:"apiVersion"`
	Kind       Kind    `json:"kind"`
	Items      []Entry `json:"items"`
}

func newListing(kind Kind, entries []Entry) listing {
	if entries == nil {
		entries = []Entry{}
	}
	return listing{APIVersion: APIVersion, Kind: kind, Items: entries}
}

// JSONPrinter outputs listings in JSON format.
type JSONPrinter struct{}

// PrintEntries outputs the entries as a JSON listing.
func (p *JSONPrinter) PrintEntries(w io.Writer, kind Kind, entries []Entry) error {
	data, err := json.MarshalIndent(newListing(kind, entries), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// YAMLPrinter outputs listings in YAML format.
type YAMLPrinter struct{}

// PrintEntries outputs the entries as a YAML listing.
func (p *YAMLPrinter) PrintEntries(w io.Writer, kind Kind, entries []Entry) error {
	data, err := yaml.Marshal(newListing(kind, entries))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
