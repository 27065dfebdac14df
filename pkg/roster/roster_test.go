package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoster(t *testing.T) {
	r := Default()

	assert.Equal(t, "2025-11", r.Version)
	assert.Len(t, r.QualifyingSchools, 12)
	assert.Len(t, r.AllSchools(), 16)
	assert.Equal(t, 6500, r.Program.Amount)
	assert.Equal(t, "November 10 - December 12, 2025", r.Program.ApplicationWindow)
}

func TestQualifiesIgnoresCase(t *testing.T) {
	r := Default()

	assert.True(t, r.Qualifies("DeRenne Middle School"))
	assert.True(t, r.Qualifies("derenne middle school"))
	assert.True(t, r.Qualifies("HERSCHEL V. JENKINS HIGH SCHOOL"))
	assert.False(t, r.Qualifies("Private School"))
	assert.False(t, r.Qualifies(""))

	var missing *Roster
	assert.False(t, missing.Qualifies("DeRenne Middle School"))
}

func TestParseRejectsIncompleteDocuments(t *testing.T) {
	_, err := Parse([]byte("qualifying_schools:\n  - name: A\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("version: v1\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("version: v1\nqualifying_schools:\n  - type: high\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("version: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: test\nqualifying_schools:\n  - name: Test Academy\n    type: high\n"), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.True(t, r.Qualifies("test academy"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
