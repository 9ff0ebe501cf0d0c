package main

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
)

func compile(t *testing.T, src string, modify func(*App)) (*Result, error) {
	t.Helper()
	app := NewApp(testConfig(), log.New(io.Discard, "", 0))
	if modify != nil {
		modify(app)
	}
	return app.Compile(context.Background(), "edge.pen", src)
}

func TestE2EEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n"} {
		if _, err := compile(t, src, nil); err == nil {
			t.Errorf("source %q compiled", src)
		}
	}
}

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	src := "ROOM 1\n    WALL 0 0 0 4\n    DOOR 0 1 0 2 STATUS AJAR LEADS TO 2\nEND\nEND.\n"
	_, err := compile(t, src, nil)
	if err == nil {
		t.Fatal("expected parse error")
	}
	d, ok := diag.As(err)
	if !ok {
		t.Fatalf("error %v carries no diagnostic", err)
	}
	if d.Line != 3 {
		t.Errorf("error line = %d, want 3", d.Line)
	}
}

func TestE2EOpenRoomIsStructural(t *testing.T) {
	// The east wall is missing, so the flood escapes the room.
	src := `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 0 0 0
    INSIDE AT 1 1
END
END.
`
	_, err := compile(t, src, nil)
	if err == nil {
		t.Fatal("open room compiled")
	}
	if k := diag.KindOf(err); k != diag.Structural {
		t.Errorf("kind = %v, want structural", k)
	}
}

func TestE2EMissingDefaults(t *testing.T) {
	_, err := compile(t, readExample(t), func(a *App) { a.cfg.Defaults = "examples/none.lisp" })
	if err == nil || !strings.Contains(err.Error(), "none.lisp") {
		t.Fatalf("err = %v", err)
	}
}

func TestE2EBuiltInTablesCoverPlinths(t *testing.T) {
	src := `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 4 4 0  4 0 0 0
    INSIDE AT 1 1
    PLINTH 2 2 24
END
END.
`
	_, err := compile(t, src, func(a *App) { a.cfg.Defaults = "" })
	if err != nil {
		t.Fatalf("built-in tables should cover every material: %v", err)
	}
}

func TestE2ECancelled(t *testing.T) {
	app := NewApp(testConfig(), log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := app.Compile(ctx, "crypt.pen", readExample(t))
	if errors.Cause(err) != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestE2ESteppedFloors(t *testing.T) {
	res, err := compile(t, readExample(t), func(a *App) { a.cfg.Stepped = true })
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// Rooms 1 and 2 share a secret door and sit together at 0; room 3 is
	// one flight down.
	for id, want := range map[int]float64{1: 0, 2: 0, 3: -1} {
		r := res.Map.Get(level.RoomID(id))
		if r.FloorLevel != want {
			t.Errorf("room %d floor = %g, want %g", id, r.FloorLevel, want)
		}
	}
}

func TestE2ERandomTexturesAreSeeded(t *testing.T) {
	body := func(seed int64) string {
		res, err := compile(t, readExample(t), func(a *App) {
			a.cfg.Random = true
			a.cfg.Seed = seed
		})
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		// Drop the header, which carries the run id.
		out := string(res.Output)
		return out[strings.Index(out, "Version 2"):]
	}
	if body(7) != body(7) {
		t.Error("same seed gave different maps")
	}
}

func TestE2ERunIDsDiffer(t *testing.T) {
	a, err := compile(t, readExample(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := compile(t, readExample(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.RunID == b.RunID {
		t.Error("two runs share an id")
	}
}

func TestE2EPreviewNeedsMap(t *testing.T) {
	app := NewApp(testConfig(), log.New(io.Discard, "", 0))
	if _, err := app.Preview(&Result{}); err == nil {
		t.Error("preview of a text plan succeeded")
	}
}
