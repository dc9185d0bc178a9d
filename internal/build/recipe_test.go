package build

import (
	"testing"
)

func TestContainerID(t *testing.T) {
	r := &recipe{resource: "hkfolio"}

	tests := []struct {
		name      string
		stageName string
		index     int
		platform  string
		want      string
	}{
		{
			name:      "named stage",
			stageName: "deps",
			index:     0,
			platform:  "linux/amd64",
			want:      "hkfolio-linux-amd64-stage-deps",
		},
		{
			name:     "unnamed stage uses 1-based index",
			index:    1,
			platform: "linux/arm64",
			want:     "hkfolio-linux-arm64-stage-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.containerID(tt.stageName, tt.index, tt.platform)
			if got != tt.want {
				t.Errorf("containerID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlatformOutput(t *testing.T) {
	single := &recipe{output: "/out", platforms: []string{"linux/amd64"}}
	if got := single.platformOutput("linux/amd64"); got != "/out" {
		t.Errorf("single platform output = %q, want /out", got)
	}

	multi := &recipe{output: "/out", platforms: []string{"linux/amd64", "linux/arm64"}}
	if got := multi.platformOutput("linux/arm64"); got != "/out/linux-arm64" {
		t.Errorf("multi platform output = %q, want /out/linux-arm64", got)
	}
}

func TestStageLabel(t *testing.T) {
	if got := stageLabel("deps", 0); got != `"deps"` {
		t.Errorf("named label = %s, want \"deps\"", got)
	}
	if got := stageLabel("", 2); got != "3" {
		t.Errorf("unnamed label = %s, want 3", got)
	}
}
