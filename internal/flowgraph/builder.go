// Package flowgraph synthesizes the renderable wallet-flow graph from an
// extracted case dataset: stage and currency filtering, swap exclusion,
// multi-input hub fan-in, same-route edge grouping, VASP endpoints, and
// cross-chain bridge links.
package flowgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/avdeenko/cryptoflow/backend/internal/bridge"
	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

// ErrNoTransactions reports that no transactions survived the active-stage
// and currency filters. This is the normal "nothing to show" outcome, not a
// failure.
var ErrNoTransactions = errors.New("no transactions match the active filters")

// ErrUnknownExchange reports that the requested exchange does not exist in
// the case dataset.
var ErrUnknownExchange = errors.New("exchange not found in case dataset")

const (
	walletNodeWidth   = 100
	hubNodeWidth      = 10
	exchangeNodeWidth = 120
)

// Params selects what to build.
type Params struct {
	Exchange string
	// ActiveStages defaults to all four stages when empty.
	ActiveStages []domain.Stage
	// CurrencyFilter is an exact, case-sensitive match; empty disables it.
	CurrencyFilter string
}

// Result is the output of one build.
type Result struct {
	Graph domain.Graph
	// AvailableCurrencies is the currency inventory of the active stages
	// before the currency filter was applied, sorted. Populated even when
	// the build reports ErrNoTransactions so hosts can repopulate filters.
	AvailableCurrencies []string
	SwapsExcluded       int
	Bridges             []domain.Bridge
}

// Builder synthesizes graphs. It carries no per-build state: every Build call
// re-reads the dataset and filters, so repeated builds are independent.
type Builder struct {
	detector bridge.Detector
}

// New returns a Builder using the provided bridge detector.
func New(detector bridge.Detector) *Builder {
	return &Builder{detector: detector}
}

// Build assembles the graph for one exchange of the dataset. The returned
// error is ErrNoTransactions when the filters leave nothing to draw; the
// Result still carries the available-currency inventory in that case.
func (b *Builder) Build(dataset domain.CaseDataset, params Params) (*Result, error) {
	buckets, ok := dataset.Exchanges[params.Exchange]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExchange, params.Exchange)
	}

	stages := params.ActiveStages
	if len(stages) == 0 {
		stages = domain.AllStages
	}
	active := make(map[domain.Stage]bool, len(stages))
	for _, stage := range stages {
		active[stage] = true
	}

	available := make(map[string]struct{})
	var txs []domain.Transaction
	vaspNames := make(map[string]struct{})
	var vaspOrder []string

	for _, stage := range domain.AllStages {
		if !active[stage] {
			continue
		}
		for _, tx := range buckets[stage] {
			if tx.Currency != "" {
				available[tx.Currency] = struct{}{}
			}
		}
		for _, tx := range buckets[stage] {
			if params.CurrencyFilter != "" && tx.Currency != params.CurrencyFilter {
				continue
			}
			txs = append(txs, tx)

			if (stage == domain.StageLayeringVASP || stage == domain.StageDualIntegration) && tx.Comment != "" {
				name := ExtractExchangeName(tx.Comment)
				if len(name) > 2 {
					if _, seen := vaspNames[name]; !seen {
						vaspNames[name] = struct{}{}
						vaspOrder = append(vaspOrder, name)
					}
				}
			}
		}
	}

	result := &Result{AvailableCurrencies: sortedKeys(available)}
	if len(txs) == 0 {
		return result, ErrNoTransactions
	}

	result.Bridges = b.detector.Detect(txs)

	arena := newNodeArena()
	var edges []domain.Edge
	multiInputCount := 0

	for i, tx := range txs {
		if isSwap(tx) {
			result.SwapsExcluded++
			continue
		}

		switch {
		case tx.Stage == domain.StageDualIntegration:
			edges = append(edges, b.addDualIntegration(arena, tx, i))
		case isMultiInput(tx):
			edges = append(edges, b.addMultiInput(arena, tx, i, multiInputCount)...)
			multiInputCount++
		default:
			// Regular transactions only materialise their wallet nodes here;
			// edges come from the grouping pass so same-route transfers
			// collapse together.
			arena.add(walletNode(tx.Input, tx.InputDisplay, tx.Stage, tx))
			arena.add(walletNode(tx.Output, tx.OutputDisplay, tx.Stage, tx))
		}
	}

	edges = append(edges, groupRegularEdges(txs)...)

	for i, br := range result.Bridges {
		edges = append(edges, domain.Edge{
			ID:     fmt.Sprintf("bridge-%d", i),
			Source: br.LockBurnWallet,
			Target: br.MintingWallet,
			Label:  "Cross-Chain Bridge",
			Kind:   domain.EdgeBridge,
		})
	}

	for _, name := range vaspOrder {
		arena.add(domain.Node{
			ID:          "vasp-" + name,
			Label:       name,
			Address:     name,
			Color:       colorExchange,
			BorderColor: colorExchangeBorder,
			BorderWidth: 3,
			Width:       exchangeNodeWidth,
			Stage:       "vasp-exchange",
			Kind:        domain.NodeExchange,
		})
	}
	edges = append(edges, vaspConnections(txs, vaspNames)...)

	addExchangeLabels(arena, txs, params.Exchange)

	currencies := make(map[string]struct{})
	for _, tx := range txs {
		if tx.Currency != "" {
			currencies[tx.Currency] = struct{}{}
		}
	}

	result.Graph = domain.Graph{
		Nodes: arena.nodes,
		Edges: edges,
		Stats: domain.Stats{
			NodeCount:  arena.len(),
			EdgeCount:  len(edges),
			Currencies: sortedKeys(currencies),
		},
	}
	return result, nil
}

// addDualIntegration draws the direct exchange-to-exchange leg: the input
// wallet takes pre-layering coloring, the output wallet layering-vasp
// coloring, independent of the transaction's own stage bucket.
func (b *Builder) addDualIntegration(arena *nodeArena, tx domain.Transaction, index int) domain.Edge {
	arena.add(walletNode(tx.Input, tx.InputDisplay, domain.StagePreLayering, tx))
	arena.add(walletNode(tx.Output, tx.OutputDisplay, domain.StageLayeringVASP, tx))

	return domain.Edge{
		ID:       fmt.Sprintf("dual-integration-%d", index),
		Source:   tx.Input,
		Target:   tx.Output,
		Label:    fmt.Sprintf("%s %s\n\n%s", FormatAmount(tx.Amount, tx.Currency), tx.Currency, FormatDateShort(tx.Date)),
		Amount:   tx.Amount,
		Currency: tx.Currency,
		Date:     tx.Date,
		Kind:     domain.EdgeDualIntegration,
	}
}

// addMultiInput synthesizes the fan-in hub for a transaction whose input cell
// lists several newline-separated wallets: one unlabeled line per input
// wallet into the hub, then a single labeled edge from the hub to the output.
func (b *Builder) addMultiInput(arena *nodeArena, tx domain.Transaction, index, hubSeq int) []domain.Edge {
	hubID := fmt.Sprintf("multi-input-hub-%d", hubSeq)
	arena.add(domain.Node{
		ID:          hubID,
		Address:     hubID,
		Color:       colorNeutral,
		BorderColor: colorNeutral,
		Width:       hubNodeWidth,
		Stage:       "multi-input-hub",
		Kind:        domain.NodeMultiInputHub,
	})

	var edges []domain.Edge
	for _, wallet := range splitInputWallets(tx.Input) {
		arena.add(walletNode(wallet, wallet, tx.Stage, tx))
		edges = append(edges, domain.Edge{
			ID:     fmt.Sprintf("multi-input-line-%d-%s", index, wallet),
			Source: wallet,
			Target: hubID,
			Kind:   domain.EdgeMultiInputLine,
		})
	}

	arena.add(walletNode(tx.Output, tx.OutputDisplay, tx.Stage, tx))
	edges = append(edges, domain.Edge{
		ID:       fmt.Sprintf("multi-input-final-%d", index),
		Source:   hubID,
		Target:   tx.Output,
		Label:    fmt.Sprintf("%s %s\n\n%s", FormatAmount(tx.Amount, tx.Currency), tx.Currency, FormatDateShort(tx.Date)),
		Amount:   tx.Amount,
		Currency: tx.Currency,
		Date:     tx.Date,
		Kind:     domain.EdgeMultiInputFinal,
	})
	return edges
}

// groupRegularEdges groups regular transactions by (input, output, currency).
// A singleton group yields one labeled edge; larger groups collapse into a
// single grouped edge with the summed amount, count, and first/last dates.
func groupRegularEdges(txs []domain.Transaction) []domain.Edge {
	type entry struct {
		amount float64
		date   string
		index  int
	}
	groups := make(map[string][]entry)
	var order []string

	for i, tx := range txs {
		if isSwap(tx) || tx.Stage == domain.StageDualIntegration || isMultiInput(tx) {
			continue
		}
		key := tx.Input + "|" + tx.Output + "|" + tx.Currency
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry{amount: tx.Amount, date: tx.Date, index: i})
	}

	var edges []domain.Edge
	for _, key := range order {
		parts := strings.SplitN(key, "|", 3)
		source, target, currency := parts[0], parts[1], parts[2]
		entries := groups[key]

		if len(entries) == 1 {
			e := entries[0]
			edges = append(edges, domain.Edge{
				ID:       fmt.Sprintf("tx-%d", e.index),
				Source:   source,
				Target:   target,
				Label:    fmt.Sprintf("%s %s\n%s", FormatAmount(e.amount, currency), currency, FormatDateShort(e.date)),
				Amount:   e.amount,
				Currency: currency,
				Date:     e.date,
				Kind:     domain.EdgeSingle,
			})
			continue
		}

		total := 0.0
		for _, e := range entries {
			total += e.amount
		}

		sorted := append([]entry(nil), entries...)
		sort.SliceStable(sorted, func(a, b int) bool {
			ta, _ := bridge.ParseDate(sorted[a].date)
			tb, _ := bridge.ParseDate(sorted[b].date)
			return ta.Before(tb)
		})
		first := FormatDateShort(sorted[0].date)
		last := FormatDateShort(sorted[len(sorted)-1].date)

		edges = append(edges, domain.Edge{
			ID:       fmt.Sprintf("tx-grouped-%s-%s-%s", source, target, currency),
			Source:   source,
			Target:   target,
			Label:    fmt.Sprintf("%s %s (%d tx)\nF: %s\nL: %s", FormatAmount(total, currency), currency, len(entries), first, last),
			Amount:   total,
			Currency: currency,
			Date:     sorted[0].date,
			TxCount:  len(entries),
			Kind:     domain.EdgeGrouped,
		})
	}
	return edges
}

// addExchangeLabels tags every pre-layering and dual-integration input wallet
// with a label node naming the exchange the funds left. One label per wallet,
// and only for wallets the build actually materialised.
func addExchangeLabels(arena *nodeArena, txs []domain.Transaction, exchange string) {
	for _, tx := range txs {
		if tx.Stage != domain.StagePreLayering && tx.Stage != domain.StageDualIntegration {
			continue
		}
		if isSwap(tx) {
			continue
		}

		wallets := []string{tx.Input}
		if isMultiInput(tx) {
			wallets = splitInputWallets(tx.Input)
		}
		for _, wallet := range wallets {
			if !arena.has(wallet) {
				continue
			}
			arena.add(domain.Node{
				ID:          "exchange-label-" + wallet,
				Label:       exchange,
				Address:     wallet,
				Color:       colorSourceLabel,
				BorderColor: colorSourceBorder,
				BorderWidth: 2,
				Width:       exchangeNodeWidth,
				Stage:       "exchange-label",
				Kind:        domain.NodeExchangeLabel,
			})
		}
	}
}

// vaspConnections links output wallets to their discovered exchange nodes,
// layering-vasp transactions first, then dual-integration ones, with one
// shared dedup set over (outputWallet, exchangeName).
func vaspConnections(txs []domain.Transaction, vaspNames map[string]struct{}) []domain.Edge {
	seen := make(map[string]struct{})
	var edges []domain.Edge

	connect := func(stage domain.Stage, idPrefix string) {
		for _, tx := range txs {
			if tx.Stage != stage || tx.Comment == "" {
				continue
			}
			name := ExtractExchangeName(tx.Comment)
			if name == "" {
				continue
			}
			if _, known := vaspNames[name]; !known {
				continue
			}
			key := tx.Output + "|" + name
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, domain.Edge{
				ID:     fmt.Sprintf("%s-%s-%s", idPrefix, tx.Output, name),
				Source: tx.Output,
				Target: "vasp-" + name,
				Kind:   domain.EdgeVASPConnection,
			})
		}
	}

	connect(domain.StageLayeringVASP, "vasp")
	connect(domain.StageDualIntegration, "dual")
	return edges
}

// isSwap reports an intra-wallet conversion: identical normalized input and
// output addresses. Address equality is the only swap criterion; "swap"
// wording in the analysis or comment text never excludes a transfer between
// distinct wallets.
func isSwap(tx domain.Transaction) bool {
	input := strings.ToLower(strings.TrimSpace(tx.Input))
	output := strings.ToLower(strings.TrimSpace(tx.Output))
	return input != "" && input == output
}

func isMultiInput(tx domain.Transaction) bool {
	return strings.Contains(tx.Input, "\n")
}

// splitInputWallets breaks a multi-input cell into its individual addresses.
func splitInputWallets(input string) []string {
	var wallets []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			wallets = append(wallets, line)
		}
	}
	return wallets
}

func walletNode(id, display string, stage domain.Stage, tx domain.Transaction) domain.Node {
	return domain.Node{
		ID:          id,
		Label:       TruncateAddress(display),
		Address:     display,
		Color:       StageColor(stage),
		BorderColor: riskBorderColor(tx),
		BorderWidth: 2,
		Width:       walletNodeWidth,
		Stage:       string(stage),
		Kind:        domain.NodeWallet,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
