// Package generator produces synthetic investigation workbooks shaped like
// the real forensic spreadsheet exports: header rows, section markers,
// exchange and stage headers, and transaction rows with addresses, amounts
// and analyst comments.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/avdeenko/cryptoflow/backend/internal/service"
)

// Workbook is the generated upload payload.
type Workbook struct {
	Sheets []service.Sheet `json:"sheets"`
}

// Generator produces synthetic workbooks aligned with the sheet layout the
// extractor expects.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumCases <= 0 {
		cfg.NumCases = DefaultConfig().NumCases
	}
	if cfg.TransfersPerStage <= 0 {
		cfg.TransfersPerStage = DefaultConfig().TransfersPerStage
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var (
	currencies = []string{"BTC", "ETH", "USDT", "TRX"}
	exchanges  = []string{"Binance", "Kraken", "Bybit", "OKX", "HTX"}
	countries  = []string{"Estonia", "Lithuania", "Poland", "Czech Republic"}
	brokers    = []string{"AxiTrade", "FxPrime", "OmegaMarkets"}
	clients    = []string{"J. Tamm", "M. Kask", "A. Saar", "K. Lepik"}
	analyses   = []string{
		"Direct transfer",
		"Mixing service exposure",
		"High-risk: sanctioned cluster",
		"Unhosted wallet",
	}
)

// Generate synthesises one sheet per case. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Workbook, error) {
	sheets := make([]service.Sheet, 0, g.cfg.NumCases)
	for i := 0; i < g.cfg.NumCases; i++ {
		if err := ctx.Err(); err != nil {
			return Workbook{}, err
		}
		sheets = append(sheets, g.generateSheet(i))
	}
	return Workbook{Sheets: sheets}, nil
}

func (g *Generator) generateSheet(index int) service.Sheet {
	caseID := fmt.Sprintf("CASE-%04d", 1000+index)
	client := clients[g.rand.Intn(len(clients))]
	base := time.Date(2024, time.March, 10+index, 9, 0, 0, 0, time.UTC)

	rows := [][]string{
		{caseID, "", "", "Country: " + countries[g.rand.Intn(len(countries))], "Broker: " + brokers[g.rand.Intn(len(brokers))]},
		{client + " – victim statement on file"},
		{},
	}

	primary := exchanges[g.rand.Intn(len(exchanges))]
	secondary := exchanges[(g.rand.Intn(len(exchanges)-1)+1+indexOf(primary))%len(exchanges)]

	// Each exchange block opens with its own section marker; the scanner only
	// accepts an exchange header right after one.
	seq := newTxSequence(base)
	rows = append(rows, []string{"Advanced transaction analysis – Layering"})
	rows = append(rows, g.exchangeSection(seq, primary, true)...)
	rows = append(rows, []string{"Advanced transaction analysis – Layering"})
	rows = append(rows, g.exchangeSection(seq, secondary, false)...)
	rows = append(rows, []string{"Subset of assets traced to beneficiary"})

	return service.Sheet{Name: caseID, Rows: rows}
}

// exchangeSection emits one exchange block. The first section carries the
// structural specials: a grouped route, a multi-input transfer, a swap, a
// bridge pair and a dual-integration row.
func (g *Generator) exchangeSection(seq *txSequence, exchange string, withSpecials bool) [][]string {
	rows := [][]string{
		{exchange},
		{"Placement / Pre-layering"},
		{"№/ID", "Date", "Input address", "Hash", "Output address", "Amount", "Currency", "Chain analysis", "Comment"},
	}

	preWallet := g.address()
	for i := 0; i < g.cfg.TransfersPerStage; i++ {
		rows = append(rows, seq.row(g, preWallet, g.address(), "", ""))
	}

	if withSpecials {
		// Same route three times so the build collapses them into one edge.
		routeIn, routeOut := g.address(), g.address()
		for i := 0; i < 3; i++ {
			rows = append(rows, seq.rowWithCurrency(g, routeIn, routeOut, "USDT", "", ""))
		}
		// Lock/burn leg of the bridge; the minting leg lands in the next stage.
		rows = append(rows, seq.bridgeLockBurn(g))
	}

	rows = append(rows, []string{"Layering non-VASP"})
	nonVASPWallet := g.address()
	for i := 0; i < g.cfg.TransfersPerStage; i++ {
		rows = append(rows, seq.row(g, nonVASPWallet, g.address(), "", ""))
	}

	if withSpecials {
		rows = append(rows, seq.bridgeMinting(g))
		// Conversion inside one wallet; excluded from the graph as a swap.
		swapWallet := g.address()
		rows = append(rows, seq.row(g, swapWallet, swapWallet, "Internal swap", ""))
		// Three source wallets consolidating into one output.
		multi := g.address() + "\n" + g.address() + "\n" + g.address()
		rows = append(rows, seq.row(g, multi, g.address(), "", "Consolidation"))
	}

	rows = append(rows, []string{"Layering VASP"})
	for i := 0; i < g.cfg.TransfersPerStage; i++ {
		rows = append(rows, seq.row(g, g.address(), g.address(), "", "Deposit to "+exchange))
	}

	if withSpecials {
		rows = append(rows, []string{"Placement and Dual Integration"})
		rows = append(rows, seq.row(g, g.address(), g.address(), "", "Direct transfer to "+exchange))
	}

	return rows
}

// txSequence numbers transactions and spaces their timestamps so generated
// sheets stay chronologically plausible.
type txSequence struct {
	next     int
	clock    time.Time
	bridgeID int
	lockedAt time.Time
}

func newTxSequence(base time.Time) *txSequence {
	return &txSequence{next: 1, clock: base}
}

func (s *txSequence) row(g *Generator, input, output, analysis, comment string) []string {
	return s.rowWithCurrency(g, input, output, currencies[g.rand.Intn(len(currencies))], analysis, comment)
}

func (s *txSequence) rowWithCurrency(g *Generator, input, output, currency, analysis, comment string) []string {
	id := s.next
	s.next++
	s.clock = s.clock.Add(time.Duration(5+g.rand.Intn(40)) * time.Minute)

	if analysis == "" {
		analysis = analyses[g.rand.Intn(len(analyses))]
	}
	amount := g.rand.Float64()*9000 + 50

	return []string{
		fmt.Sprintf("%d", id),
		formatDate(s.clock),
		input,
		g.hash(),
		output,
		fmt.Sprintf("%.6f", amount),
		currency,
		analysis,
		comment,
	}
}

// bridgeLockBurn emits the source-chain leg and remembers its ID so the
// minting leg can reference it within the matching window.
func (s *txSequence) bridgeLockBurn(g *Generator) []string {
	row := s.rowWithCurrency(g, g.address(), g.address(), "ETH", "Lock on Ethereum bridge contract", "")
	s.bridgeID = s.next - 1
	s.lockedAt = s.clock
	return row
}

func (s *txSequence) bridgeMinting(g *Generator) []string {
	// 45 minutes after the lock keeps the pair inside the default window.
	mintedAt := s.lockedAt.Add(45 * time.Minute)
	return []string{
		fmt.Sprintf("%d", s.bridgeID),
		formatDate(mintedAt),
		g.address(),
		g.hash(),
		g.address(),
		fmt.Sprintf("%.6f", g.rand.Float64()*9000+50),
		"TRX",
		"Mint on destination chain",
		"",
	}
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d %d:%02d:%02d",
		int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute(), t.Second())
}

const hexDigits = "0123456789abcdef"

func (g *Generator) address() string {
	buf := make([]byte, 40)
	for i := range buf {
		buf[i] = hexDigits[g.rand.Intn(len(hexDigits))]
	}
	return "0x" + string(buf)
}

func (g *Generator) hash() string {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = hexDigits[g.rand.Intn(len(hexDigits))]
	}
	return "0x" + string(buf)
}

func indexOf(exchange string) int {
	for i, name := range exchanges {
		if name == exchange {
			return i
		}
	}
	return 0
}
