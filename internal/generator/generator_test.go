package generator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
	"github.com/avdeenko/cryptoflow/backend/internal/service"
)

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := Config{NumCases: 2, TransfersPerStage: 3, Seed: 7}

	first, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratedWorkbookParses(t *testing.T) {
	workbook, err := New(Config{NumCases: 1, TransfersPerStage: 3, Seed: 42}).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, workbook.Sheets, 1)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := service.NewAnalyzer(logger, 180*time.Minute, 1)

	parsed, err := analyzer.Parse(context.Background(), workbook.Sheets)
	require.NoError(t, err)

	c := parsed.Cases[0]
	require.Len(t, c.Exchanges, 2)
	assert.NotEmpty(t, c.CaseID)
	assert.NotEmpty(t, c.Country)
	assert.NotEmpty(t, c.ClientName)
}

func TestGeneratedWorkbookExercisesGraphFeatures(t *testing.T) {
	workbook, err := New(Config{NumCases: 1, TransfersPerStage: 3, Seed: 42}).Generate(context.Background())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := service.NewAnalyzer(logger, 180*time.Minute, 1)

	parsed, err := analyzer.Parse(context.Background(), workbook.Sheets)
	require.NoError(t, err)

	// The first exchange section carries the specials: a grouped route, a
	// swap, a multi-input transfer, a bridge pair and a dual-integration row.
	exchange := parsed.Cases[0].Exchanges[0].Name
	result, err := analyzer.BuildGraph(parsed, service.BuildParams{Exchange: exchange})
	require.NoError(t, err)
	require.False(t, result.NoData)

	assert.Equal(t, 1, result.SwapsExcluded)
	assert.NotEmpty(t, result.Bridges)

	kinds := make(map[domain.EdgeKind]int)
	for _, edge := range result.Graph.Edges {
		kinds[edge.Kind]++
	}
	assert.NotZero(t, kinds[domain.EdgeGrouped])
	assert.NotZero(t, kinds[domain.EdgeMultiInputLine])
	assert.NotZero(t, kinds[domain.EdgeMultiInputFinal])
	assert.NotZero(t, kinds[domain.EdgeDualIntegration])
	assert.NotZero(t, kinds[domain.EdgeBridge])
	assert.NotZero(t, kinds[domain.EdgeVASPConnection])
}
