package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TablePrinter outputs one entry per line, names aligned with their
// descriptions. Listings without descriptions print bare names.
type TablePrinter struct{}

// PrintEntries outputs the entries in the order given.
func (p *TablePrinter) PrintEntries(w io.Writer, _ Kind, entries []Entry) error {
	described := false
	for _, e := range entries {
		if e.Description != "" || e.Default != nil {
			described = true
			break
		}
	}
	if !described {
		for _, e := range entries {
			if _, err := fmt.Fprintln(w, e.Name); err != nil {
				return err
			}
		}
		return nil
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
	for _, e := range entries {
		desc := e.Description
		if e.Default != nil {
			desc = strings.TrimSpace(desc + fmt.Sprintf(" (default: %q)", *e.Default))
		}
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, desc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	// Entries without a description are padded up to the description column.
	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if line == "" {
			continue
		}
		if _, err := io.WriteString(w, strings.TrimRight(line, " \n")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
