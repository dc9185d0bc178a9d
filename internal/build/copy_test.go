package build

import (
	"testing"
)

func TestParseCopy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		workdir string
		src     string
		dest    string
		wantErr bool
	}{
		{
			name:  "absolute dest",
			input: "profolio.csv /app/profolio.csv",
			src:   "profolio.csv",
			dest:  "/app/profolio.csv",
		},
		{
			name:    "relative dest with workdir",
			input:   "profolio.csv data/",
			workdir: "/app",
			src:     "profolio.csv",
			dest:    "/app/data",
		},
		{
			name:    "relative dest without workdir",
			input:   "profolio.csv data/",
			wantErr: true,
		},
		{
			name:    "missing destination",
			input:   "profolio.csv",
			wantErr: true,
		},
		{
			name:    "too many tokens",
			input:   "a b c",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dest, err := parseCopy(tt.input, tt.workdir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertParseCopy(t, src, dest, tt.src, tt.dest)
		})
	}
}

func assertParseCopy(t *testing.T, gotSrc, gotDest, wantSrc, wantDest string) {
	t.Helper()
	if gotSrc != wantSrc {
		t.Errorf("src = %q, want %q", gotSrc, wantSrc)
	}
	if gotDest != wantDest {
		t.Errorf("dest = %q, want %q", gotDest, wantDest)
	}
}

func TestParseStageCopy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stage string
		path  string
		ok    bool
	}{
		{
			name:  "valid stage copy",
			input: "deps:/app/venv",
			stage: "deps",
			path:  "/app/venv",
			ok:    true,
		},
		{
			name:  "no colon",
			input: "/usr/local/bin",
		},
		{
			name:  "colon at start",
			input: ":/some/path",
		},
		{
			name:  "colon after slash",
			input: "/foo:bar",
		},
		{
			name:  "slash in prefix",
			input: "some/stage:path",
		},
		{
			name:  "simple host path",
			input: "profolio.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, path, ok := parseStageCopy(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if stage != tt.stage {
				t.Errorf("stage = %q, want %q", stage, tt.stage)
			}
			if path != tt.path {
				t.Errorf("path = %q, want %q", path, tt.path)
			}
		})
	}
}
