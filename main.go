// Command penmap compiles a pen dungeon description into a Doom 3 .map
// file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/config"
	"github.com/chazu/penmap/pkg/plan"
	"github.com/chazu/penmap/pkg/view"
)

// Exit statuses.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.Load()
	fs := flag.NewFlagSet("penmap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: penmap [flags] <input.pen|->\n")
		fs.PrintDefaults()
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	logger := log.New(stderr, "penmap: ", 0)
	if err := cfg.Validate(); err != nil {
		logger.Printf("%v", err)
		return exitUsage
	}

	input := fs.Arg(0)
	src, err := readInput(input, stdin)
	if err != nil {
		logger.Printf("%v", err)
		return exitFatal
	}

	app := NewApp(cfg, logger)
	res, err := app.Compile(context.Background(), input, string(src))
	if err != nil {
		logger.Printf("%v", err)
		return exitFatal
	}
	if cfg.Stats {
		app.LogStats(res)
	}

	if err := writeOutput(cfg.Output, res.Output, stdout); err != nil {
		logger.Printf("%v", err)
		return exitFatal
	}
	if cfg.Plan != "" {
		if err := savePlan(res, cfg.Plan, cfg.CellPx); err != nil {
			logger.Printf("%v", err)
			return exitFatal
		}
	}
	if cfg.Preview != "" {
		if err := savePreview(app, res, cfg.Preview); err != nil {
			logger.Printf("%v", err)
			return exitFatal
		}
	}
	if cfg.Terminal {
		if err := showPlan(res); err != nil {
			logger.Printf("%v", err)
			return exitFatal
		}
	}
	return exitOK
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		src, err := io.ReadAll(stdin)
		return src, errors.Wrap(err, "reading standard input")
	}
	src, err := os.ReadFile(path)
	return src, errors.Wrapf(err, "cannot open %s", path)
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return errors.Wrap(err, "writing standard output")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

func savePlan(res *Result, path string, cellPx int) error {
	dc, err := plan.Render(res.Map, res.Grid, cellPx)
	if err != nil {
		return err
	}
	defer dc.Close()
	return errors.Wrapf(dc.SavePNG(path), "writing %s", path)
}

func savePreview(app *App, res *Result, path string) error {
	meshes, err := app.Preview(res)
	if err != nil {
		return err
	}
	data, err := json.Marshal(meshes)
	if err != nil {
		return errors.Wrap(err, "encoding preview")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

func showPlan(res *Result) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "opening terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "opening terminal")
	}
	defer screen.Fini()
	view.New(screen, res.Map, res.Grid).Run()
	return nil
}
