package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Periodo;Tecnologia;Empresas_Adotantes;Taxa_Adocao_Percent;Investimento_Milhoes;Profissionais_Treinados;Satisfacao_Media;Tempo_Implementacao_Meses\n" +
	"Q1_2023;IoT;100;10,0;1,0;400;7,1;8\n" +
	"Q2_2023;IoT;140;50,0;5,0;520;7,4;7\n" +
	"Q1_2023;Cloud Computing;300;45,0;6,0;900;8,0;5\n" +
	"Q2_2023;Cloud Computing;320;20,0;2,0;950;8,2;4\n"

func writeSample(t *testing.T) string {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("ADOPTION_THRESHOLD", "")
	t.Setenv("INVESTMENT_BASELINE", "")
	path := filepath.Join(t.TempDir(), "database.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDescribe(t *testing.T) {
	path := writeSample(t)

	out, err := run(t, "describe", "--source", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Taxa_Adocao_Percent")
	assert.Contains(t, out, "31.25")

	out, err = run(t, "describe", "--source", path, "--technology", "Blockchain")
	require.NoError(t, err)
	assert.Contains(t, out, "No observations match")
}

func TestEstimate(t *testing.T) {
	path := writeSample(t)

	out, err := run(t, "estimate", "--source", path)
	require.NoError(t, err)
	assert.Contains(t, out, "= 0.5000  (2 of 4)")
	assert.Contains(t, out, "= 1.0000  (2 of 2)")

	out, err = run(t, "estimate", "--source", path, "--threshold", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "= 0.0000  (0 of 4)")

	_, err = run(t, "estimate", "--source", path, "--baseline", "mode")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	path := writeSample(t)
	dir := filepath.Join(t.TempDir(), "export")

	_, err := run(t, "export", "--source", path, "--out", dir, "--format", "svg")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "trend.svg"))
	assert.FileExists(t, filepath.Join(dir, "summary.xlsx"))
	assert.FileExists(t, filepath.Join(dir, "report.md"))
}

func TestSeed_SQLiteRoundTrip(t *testing.T) {
	path := writeSample(t)
	db := filepath.Join(t.TempDir(), "adoption.db")

	out, err := run(t, "seed", "--source", path, "--dsn", "sqlite://"+db)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 4 observations")

	out, err = run(t, "estimate", "--source", "sqlite://"+db)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 of 4)")
}
