package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAnalyzer() *Analyzer {
	return NewAnalyzer(testLogger(), 180*time.Minute, 2)
}

func caseSheet(name, exchange string) Sheet {
	return Sheet{
		Name: name,
		Rows: [][]string{
			{name, "", "", "Country: Estonia", "Broker: AxiTrade"},
			{"Jane Tamm – statement"},
			{"Advanced transaction analysis – Layering"},
			{exchange},
			{"Placement / Pre-layering"},
			{"№/ID", "Date", "Input address", "Hash", "Output address", "Amount", "Currency", "Chain analysis", "Comment"},
			{"1", "3.15.2024 10:00:00", "0xaaa0000000", "0xhash1", "0xbbb0000000", "2.5", "ETH", "Direct transfer", ""},
			{"2", "3.15.2024 10:30:00", "0xbbb0000000", "0xhash2", "0xccc0000000", "100", "USDT", "", ""},
		},
	}
}

func TestParseKeepsSheetOrder(t *testing.T) {
	analyzer := testAnalyzer()
	workbook, err := analyzer.Parse(context.Background(), []Sheet{
		caseSheet("CASE-0001", "Binance"),
		caseSheet("CASE-0002", "Kraken"),
		caseSheet("CASE-0003", "OKX"),
	})
	require.NoError(t, err)

	require.Len(t, workbook.Cases, 3)
	assert.Equal(t, "CASE-0001", workbook.Cases[0].Name)
	assert.Equal(t, "CASE-0002", workbook.Cases[1].Name)
	assert.Equal(t, "CASE-0003", workbook.Cases[2].Name)
	assert.Equal(t, []string{"ETH", "USDT"}, workbook.Currencies)
}

func TestParseSummarizesExchanges(t *testing.T) {
	analyzer := testAnalyzer()
	workbook, err := analyzer.Parse(context.Background(), []Sheet{caseSheet("CASE-0001", "Binance")})
	require.NoError(t, err)

	c := workbook.Cases[0]
	assert.Equal(t, "CASE-0001", c.CaseID)
	assert.Equal(t, "Estonia", c.Country)
	assert.Equal(t, "AxiTrade", c.Broker)
	assert.Equal(t, "Jane Tamm", c.ClientName)
	require.Len(t, c.Exchanges, 1)
	assert.Equal(t, "Binance", c.Exchanges[0].Name)
	assert.Equal(t, 2, c.Exchanges[0].TransactionCount)
}

func TestParseEmptyWorkbook(t *testing.T) {
	_, err := testAnalyzer().Parse(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testAnalyzer().Parse(ctx, []Sheet{caseSheet("CASE-0001", "Binance")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildGraphDefaultsToFirstCaseAndExchange(t *testing.T) {
	analyzer := testAnalyzer()
	workbook, err := analyzer.Parse(context.Background(), []Sheet{
		caseSheet("CASE-0001", "Binance"),
		caseSheet("CASE-0002", "Kraken"),
	})
	require.NoError(t, err)

	result, err := analyzer.BuildGraph(workbook, BuildParams{})
	require.NoError(t, err)
	assert.False(t, result.NoData)
	// Three wallets plus an exchange label on each pre-layering input.
	assert.Equal(t, 5, result.Graph.Stats.NodeCount)
	assert.Equal(t, 2, result.Graph.Stats.EdgeCount)
}

func TestBuildGraphUnknownCase(t *testing.T) {
	analyzer := testAnalyzer()
	workbook, err := analyzer.Parse(context.Background(), []Sheet{caseSheet("CASE-0001", "Binance")})
	require.NoError(t, err)

	_, err = analyzer.BuildGraph(workbook, BuildParams{Case: "CASE-9999"})
	assert.ErrorIs(t, err, ErrUnknownCase)
}

func TestBuildGraphNoData(t *testing.T) {
	analyzer := testAnalyzer()
	workbook, err := analyzer.Parse(context.Background(), []Sheet{caseSheet("CASE-0001", "Binance")})
	require.NoError(t, err)

	result, err := analyzer.BuildGraph(workbook, BuildParams{CurrencyFilter: "XRP"})
	require.NoError(t, err)
	assert.True(t, result.NoData)
	assert.Equal(t, []string{"ETH", "USDT"}, result.AvailableCurrencies)
	assert.Empty(t, result.Graph.Nodes)
}

func TestBuildGraphStageFilter(t *testing.T) {
	analyzer := testAnalyzer()
	workbook, err := analyzer.Parse(context.Background(), []Sheet{caseSheet("CASE-0001", "Binance")})
	require.NoError(t, err)

	result, err := analyzer.BuildGraph(workbook, BuildParams{
		Stages: []domain.Stage{domain.StageLayeringVASP},
	})
	require.NoError(t, err)
	assert.True(t, result.NoData)
}
