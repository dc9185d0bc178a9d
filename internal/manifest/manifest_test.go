package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`
entrypoint: ["/app/hkfolio", "analyze"]
stages:
  - name: deps
    from: base/python-slim.tar
    transient: true
    steps:
      - workdir: /build
      - run: pip install -r requirements.txt
  - from: base/python-slim.tar
    steps:
      - workdir: /app
      - copy: "deps:/build/site-packages /app/site-packages"
      - copy: profolio.csv profolio.csv
      - env:
          TZ: Asia/Hong_Kong
`)

	r, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"/app/hkfolio", "analyze"}, r.Entrypoint)
	require.Len(t, r.Stages, 2)

	deps := r.Stages[0]
	assert.Equal(t, "deps", deps.Name)
	assert.True(t, deps.Transient)
	assert.Equal(t, "base/python-slim.tar", deps.From)
	require.Len(t, deps.Steps, 2)
	assert.Equal(t, "/build", deps.Steps[0].Workdir)
	assert.Equal(t, "pip install -r requirements.txt", deps.Steps[1].Run)

	out := r.Stages[1]
	assert.False(t, out.Transient)
	assert.Equal(t, "Asia/Hong_Kong", out.Steps[3].Env["TZ"])
}

func TestParseRejectsEmptyRecipe(t *testing.T) {
	_, err := Parse([]byte("stages: []"))
	assert.ErrorIs(t, err, ErrNoStages)

	_, err = Parse([]byte(""))
	assert.ErrorIs(t, err, ErrNoStages)
}

func TestParseRejectsMissingFrom(t *testing.T) {
	_, err := Parse([]byte(`
stages:
  - name: broken
    steps:
      - run: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stage "broken"`)
}

func TestParseRejectsAllTransient(t *testing.T) {
	_, err := Parse([]byte(`
stages:
  - from: base.tar
    transient: true
`))
	assert.ErrorIs(t, err, ErrNoOutputStage)
}

func TestValidateUnnamedStageRef(t *testing.T) {
	r := &Recipe{Stages: []Stage{{From: "a.tar"}, {}}}
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage 2")
}
