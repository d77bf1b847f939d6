package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanBasic(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte(`print(3 + 4 * 2);`), nil).Scan()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.PRINT, token.LPAREN, token.NUMBER, token.PLUS, token.NUMBER,
		token.STAR, token.NUMBER, token.RPAREN, token.SEMICOLON, token.EOF,
	}, kinds(toks))
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte(`function f(n) { if (n) return n; }`), nil).Scan()
	require.NoError(t, err)
	require.Equal(t, token.FUNCTION, toks[0].Kind)
	require.Equal(t, token.IDENT, toks[1].Kind)
	require.Equal(t, "f", toks[1].Lexeme)
	require.Equal(t, token.IF, toks[6].Kind)
	require.Equal(t, token.RETURN, toks[10].Kind)
}

func TestScanString(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte(`"hello\nworld"`), nil).Scan()
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
}

func TestScanStringSpansNewlines(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte("\"a\nb\" 1"), nil).Scan()
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, 2, toks[1].Line) // the number literal is on line 2
}

func TestScanNumberFollowedByIdentIsError(t *testing.T) {
	_, err := scanner.New("t.lum", []byte("1abc"), nil).Scan()
	require.Error(t, err)
}

func TestScanComments(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte("1 // comment\n/* block\ncomment */ 2"), nil).Scan()
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
}

func TestScanUnknownImportTarget(t *testing.T) {
	_, err := scanner.New("t.lum", []byte("import does_not_exist_at_all.lum"), nil).Scan()
	require.Error(t, err)
}
