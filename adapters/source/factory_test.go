package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/adapters/s3source"
	"adoptdash/adapters/sqlstore"
	"adoptdash/adapters/tabular"
	"adoptdash/internal"
	"adoptdash/internal/config"
)

func testConfig(source string) *config.Config {
	return &config.Config{
		Data: config.DataConfig{
			Source:    source,
			Delimiter: ';',
			Decimal:   ',',
			Encoding:  "utf-8",
			Table:     "observations",
		},
		S3: config.S3Config{Region: "us-east-1", Endpoint: "http://localhost:9000", PathStyle: true},
	}
}

func TestNew_PicksSourceByScheme(t *testing.T) {
	ctx := context.Background()
	logger := internal.NewDiscardLogger()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	src, closer, err := New(ctx, testConfig("data/database.csv"), logger)
	require.NoError(t, err)
	assert.IsType(t, &tabular.FileSource{}, src)
	assert.NoError(t, closer.Close())

	src, closer, err = New(ctx, testConfig("s3://bucket/database.csv"), logger)
	require.NoError(t, err)
	assert.IsType(t, &s3source.Source{}, src)
	assert.Equal(t, "s3://bucket/database.csv", src.Describe())
	assert.NoError(t, closer.Close())

	src, closer, err = New(ctx, testConfig("sqlite://"+filepath.Join(t.TempDir(), "a.db")), logger)
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Source{}, src)
	assert.NoError(t, closer.Close())
}

func TestNew_BadS3URL(t *testing.T) {
	_, _, err := New(context.Background(), testConfig("s3://bucket"), internal.NewDiscardLogger())
	assert.Error(t, err)
}

func TestTabularConfig(t *testing.T) {
	cfg := testConfig("x.csv")
	cfg.Data.PeriodOrder = []string{"Q1_2023"}
	tc := TabularConfig(cfg.Data)
	assert.Equal(t, ';', tc.Delimiter)
	assert.Equal(t, ',', tc.Decimal)
	assert.Equal(t, []string{"Q1_2023"}, tc.PeriodOrder)
}
