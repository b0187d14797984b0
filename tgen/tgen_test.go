package tgen

import (
	"strings"
	"testing"

	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/tcond"
)

func mustParse(t *testing.T, text string) tcond.Program {
	t.Helper()
	prog, err := tcond.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

// S2 — simple switch parse.
func TestParseProgramLineSimpleSwitch(t *testing.T) {
	ss := intern.New()
	text := `switch WRITE_TYPE: on "Property" goto 1; else goto 0`
	b, warn, err := ParseProgramLine(text, ss)
	if err != nil {
		t.Fatal(err)
	}
	if warn != nil {
		t.Fatalf("unexpected warning: %+v", warn)
	}
	if b.PDefault != 0 {
		t.Fatalf("PDefault = %d, want 0", b.PDefault)
	}
	propertyID := ss.Intern("Property")
	if got, ok := b.byKey[encodeCaseKey([]int{propertyID})]; !ok || got != 1 {
		t.Fatalf("case lookup = (%d, %v), want (1, true)", got, ok)
	}
	if got := b.ToStringAsProgramLine(ss); got != text {
		t.Fatalf("ToStringAsProgramLine() = %q, want %q", got, text)
	}
}

// S3 — branched switch with an empty case and a negative WRITE_POS value,
// round-tripping exactly including the empty-token quirk.
func TestParseProgramLineEmptyCaseAndNegatives(t *testing.T) {
	ss := intern.New()
	text := `switch WRITE_TYPE RIGHT WRITE_TYPE: on "" goto 1; on "Expression" goto 2; on "Loop -1" goto 3; else goto 0`
	b, warn, err := ParseProgramLine(text, ss)
	if err != nil {
		t.Fatal(err)
	}
	if warn != nil {
		t.Fatalf("unexpected warning for a genuinely empty case: %+v", warn)
	}
	if b.PDefault != 0 {
		t.Fatalf("PDefault = %d, want 0", b.PDefault)
	}
	if got, ok := b.byKey[encodeCaseKey(nil)]; !ok || got != 1 {
		t.Fatalf("empty case lookup = (%d, %v), want (1, true)", got, ok)
	}
	loopID := ss.Intern("Loop")
	if got, ok := b.byKey[encodeCaseKey([]int{loopID, -1})]; !ok || got != 3 {
		t.Fatalf("negative-valued case lookup = (%d, %v), want (3, true)", got, ok)
	}
	if got := b.ToStringAsProgramLine(ss); got != text {
		t.Fatalf("ToStringAsProgramLine() = %q, want %q", got, text)
	}
}

// Open Question #1's empty-token quirk: a case whose value list contains a
// literal empty token part-way through collapses to the same key as a
// wholly empty case, and a warning is raised.
func TestEmptyTokenQuirkCollapsesKeyAndWarns(t *testing.T) {
	ss := intern.New()
	text := `switch WRITE_TYPE: on "A  B" goto 1; else goto 0`
	b, warn, err := ParseProgramLine(text, ss)
	if err != nil {
		t.Fatal(err)
	}
	if warn == nil {
		t.Fatal("expected a warning for the empty-token quirk")
	}
	if got, ok := b.byKey[encodeCaseKey(nil)]; !ok || got != 1 {
		t.Fatalf("quirked case lookup = (%d, %v), want (1, true)", got, ok)
	}
}

func TestSimpleCondProgramRoundTrip(t *testing.T) {
	for _, text := range []string{"empty", "WRITE_TYPE UP WRITE_TYPE", "LEFT WRITE_VALUE =eq= WRITE_TYPE"} {
		p, err := ParseSimpleCondProgram(text)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		if got := p.String(); got != text {
			t.Fatalf("%q round-tripped to %q", text, got)
		}
	}
}

func TestTableLoadSaveRoundTrip(t *testing.T) {
	ss := intern.New()
	input := "WRITE_TYPE\n" +
		`switch WRITE_TYPE: on "Property" goto 1; else goto 0` + "\n"
	table, warnings, err := Load(strings.NewReader(input), ss)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	var out strings.Builder
	if err := Save(&out, table, ss); err != nil {
		t.Fatal(err)
	}
	if out.String() != input {
		t.Fatalf("Save() = %q, want %q", out.String(), input)
	}
}

func TestGetProgramRecursiveSize(t *testing.T) {
	table := NewTable()
	leaf := table.AddProgram(Entry{Kind: KindTCond, Simple: SimpleCondProgram{ContextProgram: mustParse(t, "WRITE_TYPE")}})
	cond, _ := ParseBranchCond("WRITE_TYPE")
	branch := NewBranchCondProgram(cond, leaf)
	branchID := table.AddProgram(Entry{Kind: KindBranch, Branch: branch})
	if size := table.GetProgramRecursiveSize(branchID); size != branch.Size()+1 {
		t.Fatalf("GetProgramRecursiveSize() = %d, want %d", size, branch.Size()+1)
	}
}
