package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, body string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	return file
}

func TestLoadSuite(t *testing.T) {
	file := writeSuite(t, `
scenarios:
  - name: add
    source: |
      print 1 + 2;
    stdout: ["3"]
  - name: bad
    source: "print ;"
    exit: 65
    diagnostics:
      - code: E_PARSE
        message: "at ';': Expect expression."
        line: 1
`)
	s, err := LoadSuite(file)
	require.NoError(t, err)
	require.Len(t, s.Scenarios, 2)
	assert.Equal(t, "print 1 + 2;\n", s.Scenarios[0].Source)
	assert.Equal(t, []string{"3"}, s.Scenarios[0].Stdout)
	assert.Equal(t, 65, s.Scenarios[1].Exit)
	assert.Equal(t, ExpectedDiag{Code: "E_PARSE", Message: "at ';': Expect expression.", Line: 1}, s.Scenarios[1].Diagnostics[0])
}

func TestLoadSuiteRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key": "scenarios:\n  - name: a\n    sauce: x\n",
		"no name":     "scenarios:\n  - source: x\n",
		"duplicate":   "scenarios:\n  - name: a\n  - name: a\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSuite(writeSuite(t, body))
			assert.Error(t, err)
		})
	}
}

func TestListSuites(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	files, err := ListSuites(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")}, files)
}
