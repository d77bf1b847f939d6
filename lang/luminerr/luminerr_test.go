package luminerr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/luminerr"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/vm"
)

func TestDiagnosticErrorFormatsMarkerByKind(t *testing.T) {
	compileDiag := luminerr.Diagnostic{Kind: luminerr.CompileError, Line: 3, File: "a.lum", Message: "bad token"}
	require.Contains(t, compileDiag.Error(), "(Compile Error)")

	runtimeDiag := luminerr.Diagnostic{Kind: luminerr.RuntimeError, Line: 3, File: "a.lum", Message: "boom", Trace: []string{"[line 3 in file a.lum] in script"}}
	out := runtimeDiag.Error()
	require.Contains(t, out, "(Runtime Error)")
	require.Contains(t, out, "[line 3 in file a.lum] in script")
}

func TestListSortOrdersByFileThenLine(t *testing.T) {
	l := luminerr.List{
		{File: "b.lum", Line: 1, Message: "x"},
		{File: "a.lum", Line: 2, Message: "y"},
		{File: "a.lum", Line: 1, Message: "z"},
	}
	l.Sort()
	require.Equal(t, "a.lum", l[0].File)
	require.Equal(t, 1, l[0].Line)
	require.Equal(t, "a.lum", l[1].File)
	require.Equal(t, 2, l[1].Line)
	require.Equal(t, "b.lum", l[2].File)
}

func TestListDedupRemovesConsecutiveDuplicatesOnly(t *testing.T) {
	l := luminerr.List{
		{File: "a.lum", Line: 1, Message: "x"},
		{File: "a.lum", Line: 1, Message: "x"},
		{File: "a.lum", Line: 2, Message: "x"},
		{File: "a.lum", Line: 1, Message: "x"},
	}
	deduped := l.Dedup()
	require.Len(t, deduped, 3)
}

func TestListErrorSummarizesMoreThanOne(t *testing.T) {
	l := luminerr.List{
		{File: "a.lum", Line: 1, Message: "first"},
		{File: "a.lum", Line: 2, Message: "second"},
	}
	require.Contains(t, l.Error(), "and 1 more errors")
}

func TestListErrorEmpty(t *testing.T) {
	require.Equal(t, "no errors", luminerr.List(nil).Error())
}

func TestFromScanErrNil(t *testing.T) {
	require.Nil(t, luminerr.FromScanErr(nil))
}

func TestFromScanErrSingle(t *testing.T) {
	_, err := scanner.New("t.lum", []byte("1abc"), scanner.NewImportGraph()).Scan()
	require.Error(t, err)
	diags := luminerr.FromScanErr(err)
	require.Len(t, diags, 1)
	require.Equal(t, luminerr.CompileError, diags[0].Kind)
}

func TestFromCompileErrs(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte("return 1;"), scanner.NewImportGraph()).Scan()
	require.NoError(t, err)
	_, cerrs := compiler.Compile(toks, nil)
	require.NotEmpty(t, cerrs)

	diags := luminerr.FromCompileErrs(cerrs)
	require.Len(t, diags, 1)
	require.Equal(t, luminerr.CompileError, diags[0].Kind)
	require.Contains(t, diags[0].Message, "Can't return from top-level code.")
}

func TestFromRuntimeErr(t *testing.T) {
	re := &vm.RuntimeError{Line: 5, File: "a.lum", Message: "Undefined variable 'x'.", Trace: []string{"[line 5 in file a.lum] in script"}}
	diags := luminerr.FromRuntimeErr(re)
	require.Len(t, diags, 1)
	require.Equal(t, luminerr.RuntimeError, diags[0].Kind)
	require.Equal(t, re.Trace, diags[0].Trace)
}
