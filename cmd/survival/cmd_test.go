package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFile(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked\n")
	ports := []string{"S", "C", "Q"}
	for i := range 100 {
		sex, survived := "male", 0
		if i%2 == 0 {
			sex = "female"
		}
		if (i%2 == 0) != (i%7 == 0) {
			survived = 1
		}
		age := ""
		if i%6 != 0 {
			age = fmt.Sprint(5 + i%60)
		}
		cabin := ""
		if i%3 == 0 {
			cabin = fmt.Sprintf("B%d", i)
		}
		fmt.Fprintf(&b, "%d,%d,%d,Name %d,%s,%s,%d,%d,T%d,%.2f,%s,%s\n",
			i+1, survived, 1+i%3, i, sex, age, i%4, i%3, i, 7.25+float64(i%11)*3.5, cabin, ports[i%3])
	}
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func execArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env-file", ""))
	err := root.Execute()
	return out.String(), err
}

func TestRootRunsBothPaths(t *testing.T) {
	out, err := execArgs(t, "--source", tableFile(t), "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "Baseline Accuracy: ")
	assert.Contains(t, out, "F1 Score: ")
	assert.Contains(t, out, "test_recall: ")
}

func TestSubcommands(t *testing.T) {
	src := tableFile(t)
	out, err := execArgs(t, "baseline", "--source", src, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "Baseline Accuracy: "))

	out, err = execArgs(t, "cleaned", "--source", src, "--log-level", "error", "--cv-folds", "3")
	require.NoError(t, err)
	assert.NotContains(t, out, "Baseline")
	assert.Equal(t, 8, strings.Count(out, "\n"))
}

func TestConfigCommandLayersFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(file, []byte("seed: 7\ncv_folds: 4\n"), 0o600))

	out, err := execArgs(t, "config", "--config", file, "--cv-folds", "3", "--solver", "gd")
	require.NoError(t, err)
	assert.Contains(t, out, "seed: 7")
	assert.Contains(t, out, "cv_folds: 3")
	assert.Contains(t, out, "solver: gd")
	assert.Contains(t, out, "test_fraction: 0.2")
}

func TestInvalidFlagsFail(t *testing.T) {
	_, err := execArgs(t, "config", "--test-fraction", "2")
	assert.Error(t, err)

	_, err = execArgs(t, "baseline", "--source", filepath.Join(t.TempDir(), "none.csv"), "--log-level", "error")
	assert.Error(t, err)
}

func TestPrepare(t *testing.T) {
	src := tableFile(t)
	out, err := execArgs(t, "prepare", "--source", src, "--preview", "3", "--log-level", "error")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "FamilySize")
	assert.NotContains(t, lines[0], "Ticket")

	dest := filepath.Join(t.TempDir(), "baseline.csv")
	_, err = execArgs(t, "prepare", "--source", src, "--path", "baseline", "-o", dest, "--log-level", "error")
	require.NoError(t, err)
	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "PassengerId,Survived,Pclass,SibSp,Parch,Fare\n"))
	assert.Equal(t, 101, strings.Count(string(raw), "\n"))
}
