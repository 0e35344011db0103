package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = `
school_id: school-1
term: {id: term-1, name: First Term}
session: {id: session-1, name: 2024/2025}
assessments:
  - {id: ca, name: CA, max_score: 40}
  - {id: exam, name: Exam, max_score: 60}
grade_rules:
  - {min_score: 50, max_score: 100, grade: P, comment: Pass}
  - {min_score: 0, max_score: 49, grade: F, comment: Fail}
classes:
  - id: class-1
    name: JSS 1
    subjects:
      - {id: sub-1, name: English}
    students:
      - id: stu-1
        name: Ada
        scores:
          sub-1: {ca: 30, exam: 50}
      - id: stu-2
        name: Bola
        scores:
          sub-1: {ca: 10, exam: 20}
`

func TestSimulateCommandPrintsStandings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "school.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o600))

	cmd := newSimulateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", path})

	require.NoError(t, cmd.Execute())
	text := out.String()
	assert.Contains(t, text, "classes processed: 1")
	assert.Contains(t, text, "stu-1")
	assert.Contains(t, text, "1st")
	assert.Contains(t, text, "2nd")
}

func TestSimulateCommandRequiresFile(t *testing.T) {
	cmd := newSimulateCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}
