package engine

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/penmap/pkg/diag"
	"github.com/pkg/errors"
)

// ReadDefines reads the line-oriented defaults format:
//
//	define wall textures/hell/cbrick2
//	define wall_transform ( ( 0.0078125 0 0.5 ) ( 0 -0.0078125 -1 ) )
//
// Text after '#' is ignored, as is every line not starting with define.
// The value is the rest of the line.
func ReadDefines(r io.Reader) (*Defaults, error) {
	d := NewDefaults()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(text)
		if len(fields) == 0 || fields[0] != "define" {
			continue
		}
		if len(fields) < 3 {
			return nil, diag.Linef(line, "define needs a name and a value")
		}
		d.Textures[fields[1]] = strings.Join(fields[2:], " ")
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading defines")
	}
	return d, nil
}

// LoadFile reads a defaults file. Files ending in .ss use the define
// format; anything else is evaluated as a script.
func (e *Engine) LoadFile(path string) (*Defaults, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open defaults file %s", path)
	}
	defer f.Close()

	if filepath.Ext(path) == ".ss" {
		d, err := ReadDefines(f)
		return d, errors.Wrapf(err, "defaults file %s", path)
	}
	src, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading defaults file %s", path)
	}
	d, evalErrs, err := e.Evaluate(string(src))
	if err != nil {
		return nil, errors.Wrapf(err, "defaults file %s", path)
	}
	if len(evalErrs) > 0 {
		first := evalErrs[0]
		return nil, diag.Linef(first.Line, "defaults file %s: %s", path, first.Message)
	}
	return d, nil
}
