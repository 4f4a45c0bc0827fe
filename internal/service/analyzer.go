// Package service coordinates workbook analysis: concurrent sheet parsing,
// case summaries, and graph builds over the extracted datasets.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avdeenko/cryptoflow/backend/internal/bridge"
	"github.com/avdeenko/cryptoflow/backend/internal/domain"
	"github.com/avdeenko/cryptoflow/backend/internal/extract"
	"github.com/avdeenko/cryptoflow/backend/internal/flowgraph"
)

// ErrEmptyWorkbook reports an uploaded workbook with no sheets.
var ErrEmptyWorkbook = errors.New("workbook contains no sheets")

// ErrUnknownCase reports a graph request naming a sheet the workbook does not
// have.
var ErrUnknownCase = errors.New("case not found in workbook")

// Sheet is one uploaded spreadsheet tab: a name and its raw cell grid.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// ExchangeSummary describes one exchange section of a case, with its
// transaction count.
type ExchangeSummary struct {
	Name             string `json:"name"`
	TransactionCount int    `json:"transactionCount"`
}

// Case is one parsed sheet of a workbook.
type Case struct {
	Name       string             `json:"name"`
	CaseID     string             `json:"caseId,omitempty"`
	Country    string             `json:"country,omitempty"`
	Broker     string             `json:"broker,omitempty"`
	ClientName string             `json:"clientName,omitempty"`
	Exchanges  []ExchangeSummary  `json:"exchanges"`
	dataset    domain.CaseDataset
}

// Workbook is a fully parsed upload: one case per sheet, in upload order,
// plus the currency inventory across all sheets.
type Workbook struct {
	Cases      []Case   `json:"cases"`
	Currencies []string `json:"currencies"`
}

// Dataset returns the case's extracted transactions. The zero dataset is
// returned for cases built outside Parse.
func (c Case) Dataset() domain.CaseDataset {
	return c.dataset
}

// Analyzer parses workbooks and builds flow graphs from them.
type Analyzer struct {
	logger  *slog.Logger
	builder *flowgraph.Builder
	workers int
}

// NewAnalyzer wires an Analyzer. bridgeWindow bounds lock/burn to minting
// matching; workers caps concurrent sheet parsing, minimum one.
func NewAnalyzer(logger *slog.Logger, bridgeWindow time.Duration, workers int) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		logger:  logger,
		builder: flowgraph.New(bridge.Detector{Window: bridgeWindow}),
		workers: workers,
	}
}

// Parse extracts every sheet of the workbook. Sheets parse concurrently but
// the resulting cases keep upload order. Parsing a sheet never fails, so the
// only errors are an empty workbook or a cancelled context.
func (a *Analyzer) Parse(ctx context.Context, sheets []Sheet) (*Workbook, error) {
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	start := time.Now()
	results := make([]extract.SheetResult, len(sheets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, sheet := range sheets {
		i, sheet := i, sheet
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = extract.ParseSheet(sheet.Rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}

	workbook := &Workbook{Cases: make([]Case, 0, len(sheets))}
	currencies := make(map[string]struct{})
	totalTxs := 0

	for i, sheet := range sheets {
		dataset := results[i].Dataset
		c := Case{
			Name:       sheet.Name,
			CaseID:     dataset.CaseID,
			Country:    dataset.Country,
			Broker:     dataset.Broker,
			ClientName: dataset.ClientName,
			Exchanges:  summarizeExchanges(dataset),
			dataset:    dataset,
		}
		for _, ex := range c.Exchanges {
			totalTxs += ex.TransactionCount
		}
		for _, currency := range results[i].Currencies {
			currencies[currency] = struct{}{}
		}
		workbook.Cases = append(workbook.Cases, c)
	}
	workbook.Currencies = sortedKeys(currencies)

	a.logger.Info("workbook parsed",
		"sheets", len(sheets),
		"transactions", totalTxs,
		"currencies", len(workbook.Currencies),
		"duration", time.Since(start),
	)
	return workbook, nil
}

// BuildParams selects one graph build.
type BuildParams struct {
	// Case is the sheet name. Empty selects the first case.
	Case     string
	Exchange string
	// Stages empty means all stages.
	Stages []domain.Stage
	// CurrencyFilter empty disables currency filtering.
	CurrencyFilter string
}

// GraphResult is the outcome of one build. NoData marks builds where the
// filters left nothing to draw; AvailableCurrencies is populated either way.
type GraphResult struct {
	Graph               domain.Graph    `json:"graph"`
	Bridges             []domain.Bridge `json:"bridges"`
	AvailableCurrencies []string        `json:"availableCurrencies"`
	SwapsExcluded       int             `json:"swapsExcluded"`
	NoData              bool            `json:"noData"`
}

// BuildGraph assembles the flow graph for one case and exchange of the
// workbook.
func (a *Analyzer) BuildGraph(workbook *Workbook, params BuildParams) (*GraphResult, error) {
	c, err := findCase(workbook, params.Case)
	if err != nil {
		return nil, err
	}

	exchange := params.Exchange
	if exchange == "" && len(c.dataset.ExchangeOrder) > 0 {
		exchange = c.dataset.ExchangeOrder[0]
	}

	built, err := a.builder.Build(c.dataset, flowgraph.Params{
		Exchange:       exchange,
		ActiveStages:   params.Stages,
		CurrencyFilter: params.CurrencyFilter,
	})
	if err != nil {
		if errors.Is(err, flowgraph.ErrNoTransactions) {
			a.logger.Info("graph build matched no transactions",
				"case", c.Name, "exchange", exchange, "currency", params.CurrencyFilter)
			return &GraphResult{
				AvailableCurrencies: built.AvailableCurrencies,
				NoData:              true,
			}, nil
		}
		return nil, err
	}

	a.logger.Info("graph built",
		"case", c.Name,
		"exchange", exchange,
		"nodes", built.Graph.Stats.NodeCount,
		"edges", built.Graph.Stats.EdgeCount,
		"bridges", len(built.Bridges),
		"swapsExcluded", built.SwapsExcluded,
	)

	return &GraphResult{
		Graph:               built.Graph,
		Bridges:             built.Bridges,
		AvailableCurrencies: built.AvailableCurrencies,
		SwapsExcluded:       built.SwapsExcluded,
	}, nil
}

// summarizeExchanges lists the case's exchanges in sheet order, skipping
// sections that yielded no transactions.
func summarizeExchanges(dataset domain.CaseDataset) []ExchangeSummary {
	summaries := make([]ExchangeSummary, 0, len(dataset.ExchangeOrder))
	for _, name := range dataset.ExchangeOrder {
		count := dataset.Exchanges[name].TransactionCount()
		if count == 0 {
			continue
		}
		summaries = append(summaries, ExchangeSummary{Name: name, TransactionCount: count})
	}
	return summaries
}

func findCase(workbook *Workbook, name string) (*Case, error) {
	if len(workbook.Cases) == 0 {
		return nil, ErrEmptyWorkbook
	}
	if name == "" {
		return &workbook.Cases[0], nil
	}
	for i := range workbook.Cases {
		if workbook.Cases[i].Name == name {
			return &workbook.Cases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCase, name)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
