package pbrt

import (
	"os"
	"path/filepath"

	"github.com/gopbrt/pbrtscene/log"
)

var lexerStackLogger = log.New("pbrt.lexer_stack")

// lexerStack composes multiple lexers into one logical token stream to
// implement the Include directive (spec.md §4.2). Position 0 is the active
// lexer.
type lexerStack struct {
	lexers []*Lexer
}

func newLexerStack(l *Lexer) *lexerStack {
	return &lexerStack{lexers: []*Lexer{l}}
}

// empty reports whether every lexer has been popped.
func (ls *lexerStack) empty() bool {
	return len(ls.lexers) == 0
}

// top returns the currently active lexer, or nil if the stack is empty.
func (ls *lexerStack) top() *Lexer {
	if ls.empty() {
		return nil
	}
	return ls.lexers[0]
}

// Next returns the next token from the logical stream, transparently
// popping exhausted lexers (spec.md §4.2).
func (ls *lexerStack) Next() (Token, error) {
	for {
		if ls.empty() {
			return Token{}, errEndOfInput
		}
		tok, err := ls.lexers[0].Next()
		if err == errEndOfInput {
			lexerStackLogger.Debugf("end of input for %s; popping lexer stack", ls.lexers[0].Path())
			ls.lexers = ls.lexers[1:]
			continue
		}
		return tok, err
	}
}

// pushInclude adds a new active lexer (used by Include), reading path relative to
// the currently active lexer's directory.
func (ls *lexerStack) pushInclude(path string) error {
	top := ls.top()
	resolved := resolveRelative(path, top)

	data, err := os.ReadFile(resolved)
	if err != nil {
		line, col := 0, 0
		file := ""
		if top != nil {
			line, col = top.line, top.column
			file = top.name
		}
		return newSyntaxError(file, line, col, "could not read included file %q: %s", resolved, err.Error())
	}

	ls.lexers = append([]*Lexer{NewLexer(data, resolved, resolved)}, ls.lexers...)
	return nil
}

// resolveRelative resolves pathToResource against relTo's directory,
// matching spec.md §4.2: "relative paths resolve against the including
// file's directory; absolute and drive-qualified paths pass through
// unchanged; path separators are normalized to forward slash".
func resolveRelative(pathToResource string, relTo *Lexer) string {
	normalized := normalizePathSeparators(pathToResource)
	if filepath.IsAbs(normalized) || isDriveQualified(normalized) {
		return normalized
	}
	if relTo == nil {
		return normalized
	}
	dir := filepath.Dir(relTo.Path())
	return normalizePathSeparators(filepath.Join(dir, normalized))
}

// isDriveQualified reports whether p looks like a Windows drive-qualified
// path ("C:/...") which must pass through unmodified per spec.md §4.2.
func isDriveQualified(p string) bool {
	return len(p) >= 2 && p[1] == ':' && isAlpha(p[0])
}
