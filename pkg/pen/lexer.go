// Package pen reads the pen dungeon description language into a
// level.Map.
//
// A pen file is a list of ROOM blocks terminated by "END.". Tokens are
// separated by whitespace and a '#' starts a comment running to the end of
// the line.
package pen

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Token is one whitespace-delimited word and the line it was read from.
type Token struct {
	Text string
	Line int
}

// EOF is the text of the token returned past the end of input.
const EOF = "<eof>"

// Lex splits r into tokens.
func Lex(r io.Reader) ([]Token, error) {
	var toks []Token
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, w := range strings.Fields(text) {
			toks = append(toks, Token{Text: w, Line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading pen source")
	}
	toks = append(toks, Token{Text: EOF, Line: line})
	return toks, nil
}
