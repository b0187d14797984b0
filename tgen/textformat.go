package tgen

import (
	"bufio"
	"io"
	"strings"

	"github.com/tgenlab/tgen/intern"
)

// Load reads a §6.2 text-format program table: one entry per
// non-empty line, in order, giving each its position as a program id. A
// line beginning with "switch " is a branched entry; anything else is
// parsed as a straight-line entry by ParseSimpleCondProgram. Blank lines and lines beginning
// with "#" are skipped.
func Load(r io.Reader, ss *intern.Interner) (*Table, []ParseWarning, error) {
	table := NewTable()
	var warnings []ParseWarning
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "switch ") {
			branch, warn, err := ParseProgramLine(line, ss)
			if err != nil {
				return nil, warnings, err
			}
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			table.AddProgram(Entry{Kind: KindBranch, Branch: branch})
			continue
		}
		simple, err := ParseSimpleCondProgram(line)
		if err != nil {
			return nil, warnings, err
		}
		table.AddProgram(Entry{Kind: KindTCond, Simple: simple})
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}
	return table, warnings, nil
}

// Save writes table to w in the §6.2 text format, one entry per line in
// id order.
func Save(w io.Writer, table *Table, ss *intern.Interner) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < table.Len(); id++ {
		e, _ := table.Get(id)
		var line string
		if e.Kind == KindBranch {
			line = e.Branch.ToStringAsProgramLine(ss)
		} else {
			line = e.Simple.String()
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
