// Package output prints the listings of kpet commands.
package output

import (
	"fmt"
	"io"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable is human-readable table output.
	FormatTable Format = "table"
	// FormatJSON is JSON output.
	FormatJSON Format = "json"
	// FormatYAML is YAML output.
	FormatYAML Format = "yaml"
)

// Kind names what a listing holds.
type Kind string

const (
	KindTrees      Kind = "TreeList"
	KindArches     Kind = "ArchList"
	KindComponents Kind = "ComponentList"
	KindSets       Kind = "SetList"
	KindVariables  Kind = "VariableList"
	KindFiles      Kind = "FileList"
	KindCases      Kind = "CaseList"
)

// Entry is one listed item.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Default is the default value of a variable, nil for required
	// variables and other kinds of entries.
	Default *string `json:"default,omitempty"`
}

// Printer defines the interface for outputting listings.
type Printer interface {
	// PrintEntries outputs a listing of a kind.
	PrintEntries(w io.Writer, kind Kind, entries []Entry) error
}

// NewPrinter creates a new Printer for the given format.
// Returns an error if the format is not recognized.
func NewPrinter(format Format) (Printer, error) {
	switch format {
	case FormatJSON:
		return &JSONPrinter{}, nil
	case FormatYAML:
		return &YAMLPrinter{}, nil
	case FormatTable, "":
		return &TablePrinter{}, nil
	default:
		return nil, fmt.Errorf("invalid output format: %s (must be table, json or yaml)", format)
	}
}

// Names returns entries holding just the names.
func Names(names []string) []Entry {
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name}
	}
	return entries
}
