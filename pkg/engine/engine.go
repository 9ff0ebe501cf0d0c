// Package engine evaluates penmap defaults scripts. A defaults script is a
// small Lisp program, run in a zygomys sandbox, that sets the texture,
// transform and light colour tables a compile starts from.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/scope"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a parse or runtime error in a defaults script.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Defaults is what a defaults script produces.
type Defaults struct {
	// Textures holds material names and their _transform entries.
	Textures scope.Table
	Colours  map[level.LightOn]level.Colour
}

// NewDefaults returns empty tables.
func NewDefaults() *Defaults {
	return &Defaults{
		Textures: make(scope.Table),
		Colours:  make(map[level.LightOn]level.Colour),
	}
}

// Table returns the built-in global table overlaid with the script's
// entries.
func (d *Defaults) Table() scope.Table {
	return scope.Defaults().Merge(d.Textures)
}

// Engine wraps the zygomys interpreter. Each call to Evaluate creates a
// fresh sandbox.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	// Timeout bounds a single evaluation.
	Timeout time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs a defaults script.
//
// Return semantics:
//   - On success: returns defaults + nil errors + nil error
//   - On parse/eval failure: returns nil defaults + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Defaults, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source)
		ch <- evalResult{defaults: d, errors: evalErrs, err: err}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return waitWithTimeout(ch, gen, &e.mu, &e.generation, timeout)
}

func (e *Engine) evaluate(source string) (*Defaults, []EvalError, error) {
	d := NewDefaults()
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, d)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return d, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// keeping the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
