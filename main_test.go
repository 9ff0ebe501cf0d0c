package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runArgs(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"two inputs", []string{"a.pen", "b.pen"}},
		{"unknown flag", []string{"-nope", "a.pen"}},
		{"bad mode", []string{"-m", "obj", "a.pen"}},
		{"bad cell", []string{"-cell", "0", "a.pen"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runArgs(t, "", tt.args...); code != exitUsage {
				t.Errorf("exit = %d, want %d", code, exitUsage)
			}
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	code, stdout, stderr := runArgs(t, "", filepath.Join(t.TempDir(), "none.pen"))
	if code != exitFatal {
		t.Errorf("exit = %d, want %d", code, exitFatal)
	}
	if stdout != "" {
		t.Errorf("output written on failure: %q", stdout)
	}
	if !strings.Contains(stderr, "penmap: cannot open") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunStdinToStdout(t *testing.T) {
	code, stdout, stderr := runArgs(t, readExample(t), "-m", "txt", "-")
	if code != exitOK {
		t.Fatalf("exit = %d: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "####    \n") {
		t.Errorf("plan = %q", stdout)
	}
}

func TestRunCompileErrorWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bad.map")
	code, _, stderr := runArgs(t, "ROOM 1\nEND\n", "-o", out, "-")
	if code != exitFatal {
		t.Fatalf("exit = %d, want %d", code, exitFatal)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file exists after a failed compile: %v", err)
	}
	if stderr == "" {
		t.Error("no diagnostic printed")
	}
}

func TestRunAllOutputs(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "crypt.map")
	pngPath := filepath.Join(dir, "crypt.png")
	jsonPath := filepath.Join(dir, "crypt.json")
	t.Setenv("PENMAP_MESH_CELLS", "20")

	code, _, stderr := runArgs(t, "",
		"-o", mapPath, "-g", pngPath, "-cell", "8", "-P", jsonPath,
		"-d", "examples/crypt.lisp", "-s", "-v", "examples/crypt.pen")
	if code != exitOK {
		t.Fatalf("exit = %d: %s", code, stderr)
	}

	data, err := os.ReadFile(mapPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Version 2") {
		t.Error("map file has no version line")
	}

	png, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("plan is not a PNG")
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var meshes []MeshData
	if err := json.Unmarshal(raw, &meshes); err != nil {
		t.Fatalf("preview JSON: %v", err)
	}
	if len(meshes) == 0 || meshes[0].PartName == "" {
		t.Errorf("preview = %d meshes", len(meshes))
	}

	for _, want := range []string{"penmap: run ", "rooms", "brushes"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("log is missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunVisportalsAndOptimise(t *testing.T) {
	brushes := func(args ...string) (int, string) {
		t.Helper()
		args = append(args, "-d", "examples/crypt.lisp", "examples/crypt.pen")
		code, stdout, stderr := runArgs(t, "", args...)
		if code != exitOK {
			t.Fatalf("exit = %d: %s", code, stderr)
		}
		return strings.Count(stdout, "brushDef3"), stdout
	}

	plain, out := brushes()
	if strings.Contains(out, "textures/editor/visportal") {
		t.Error("visportal written without -p")
	}
	withPortals, out := brushes("-p")
	if !strings.Contains(out, `"textures/editor/visportal"`) {
		t.Error("-p wrote no visportal brush")
	}
	if withPortals <= plain {
		t.Errorf("-p: %d brushes, without: %d", withPortals, plain)
	}
	if unmerged, _ := brushes("-O=false"); unmerged <= plain {
		t.Errorf("-O=false: %d brushes, optimised: %d", unmerged, plain)
	}
}
