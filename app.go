package main

import (
	"bytes"
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/compiler"
	"github.com/chazu/penmap/pkg/config"
	"github.com/chazu/penmap/pkg/engine"
	"github.com/chazu/penmap/pkg/grid"
	"github.com/chazu/penmap/pkg/kernel"
	"github.com/chazu/penmap/pkg/kernel/sdfx"
	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/mapfile"
	"github.com/chazu/penmap/pkg/pen"
	"github.com/chazu/penmap/pkg/plan"
	"github.com/chazu/penmap/pkg/scope"
	"github.com/chazu/penmap/pkg/tessellate"
)

// App runs the compile pipeline for one configuration.
type App struct {
	cfg    *config.Config
	logger *log.Logger
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON mesh format written by -P.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// Stats summarises a compile.
type Stats struct {
	Rooms     int
	Cuboids   int
	Extended  int
	Polyhedra int
	Doors     int
	Lights    int
	Entities  int
	Brushes   int
}

// Result is a successful compile. Output holds the rendered .map file, or
// the text plan in text mode, and is complete.
type Result struct {
	RunID    uuid.UUID
	Output   []byte
	Map      *level.Map
	Grid     *grid.Grid
	State    *compiler.State
	Warnings []level.ValidationError
	Stats    Stats
}

// NewApp creates an App with its own defaults engine and an sdfx kernel.
func NewApp(cfg *config.Config, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		engine: engine.NewEngine(),
		kernel: sdfx.New(cfg.MeshCells),
	}
}

func (a *App) verbosef(format string, args ...interface{}) {
	if a.cfg.Verbose {
		a.logger.Printf(format, args...)
	}
}

// loadDefaults reads the configured defaults file, or returns empty
// tables when there is none.
func (a *App) loadDefaults() (*engine.Defaults, error) {
	if a.cfg.Defaults == "" {
		return engine.NewDefaults(), nil
	}
	a.verbosef("reading defaults from %s", a.cfg.Defaults)
	return a.engine.LoadFile(a.cfg.Defaults)
}

// Compile parses src and renders it in the configured mode. Nothing is
// returned but the error when any stage fails.
func (a *App) Compile(ctx context.Context, name, src string) (*Result, error) {
	res := &Result{RunID: uuid.New()}
	a.verbosef("run %s: compiling %s", res.RunID, name)

	defaults, err := a.loadDefaults()
	if err != nil {
		return nil, err
	}

	m, err := pen.ParseString(name, src, pen.WithColours(defaults.Colours))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", name)
	}
	res.Map = m
	res.Stats.Rooms = m.Len()

	v := level.ValidateAll(m)
	for _, w := range v.Warnings {
		a.logger.Printf("warning: %v", w)
	}
	res.Warnings = v.Warnings
	if err := v.Err(); err != nil {
		return nil, err
	}

	if !m.AssignFloorLevels(a.cfg.Stepped) {
		a.logger.Printf("warning: no player spawn, all floors are level")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := grid.Build(m)
	if err != nil {
		return nil, err
	}
	res.Grid = g
	if err := (level.ValidationResult{Errors: level.ValidateGrid(m, g)}).Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if a.cfg.Mode == config.ModeText {
		if err := grid.RenderText(&buf, m); err != nil {
			return nil, errors.Wrap(err, "rendering plan")
		}
		res.Output = buf.Bytes()
		return res, nil
	}

	var resolver *scope.Resolver
	if a.cfg.Random {
		resolver = scope.NewRandomResolver(a.cfg.Seed)
	}
	s := compiler.New(m, g, compiler.Config{
		Options:  a.cfg.Compiler,
		Globals:  defaults.Table(),
		Colours:  defaults.Colours,
		Resolver: resolver,
		Logger:   a.logger,
		Verbose:  a.cfg.Verbose,
	})
	if err := s.Compile(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.State = s

	stats, err := mapfile.Write(&buf, m, s, mapfile.Options{
		Source:     name,
		RunID:      res.RunID,
		Deathmatch: a.cfg.Deathmatch,
	})
	if err != nil {
		return nil, err
	}
	res.Output = buf.Bytes()
	res.Stats.Cuboids = s.Store().Len()
	res.Stats.Extended = s.Store().Extended()
	res.Stats.Polyhedra = len(s.Store().Polyhedra())
	res.Stats.Doors = s.DoorsBuilt()
	res.Stats.Lights = len(s.Lights())
	res.Stats.Entities = stats.Entities
	res.Stats.Brushes = stats.Brushes
	return res, nil
}

// Preview meshes a compiled result, one mesh per material.
func (a *App) Preview(res *Result) ([]MeshData, error) {
	if res.State == nil {
		return nil, errors.New("preview needs a compiled map")
	}
	meshes, err := tessellate.Tessellate(res.State.Store(), a.kernel)
	if err != nil {
		a.logger.Printf("Tessellate error: %v", err)
		return nil, err
	}
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    plan.RoomColour(i),
		})
	}
	return out, nil
}

// LogStats writes the statistics of res through the app logger.
func (a *App) LogStats(res *Result) {
	s := res.Stats
	a.logger.Printf("run %s: %d rooms, %d doors", res.RunID, s.Rooms, s.Doors)
	a.logger.Printf("%d cuboids (%d extended), %d polyhedra, %d lights", s.Cuboids, s.Extended, s.Polyhedra, s.Lights)
	a.logger.Printf("%d entities, %d brushes", s.Entities, s.Brushes)
}
