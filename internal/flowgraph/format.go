package flowgraph

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/avdeenko/cryptoflow/backend/internal/bridge"
	"github.com/avdeenko/cryptoflow/backend/internal/domain"
)

// Stablecoins and synthetic assets render as whole numbers; everything else
// gets six decimal places. Lookup is case-insensitive.
var integerCurrencyCodes = []string{
	"DAI", "USDT", "USDC", "BUSD", "TUSD", "PAX", "USDP", "GUSD", "HUSD", "sUSD",
	"FRAX", "USTC", "CUSD", "USDX", "EURS", "ALUSD", "LUSD", "USDD", "VAI", "DUSD",
	"MIM", "FEI", "RAI", "USDK", "GYEN", "USN", "EURT", "XSGD", "LINA", "USDQ",
	"QCAD", "OUSD", "UST", "mUSD", "EUSD", "jEUR", "jJPY", "jGBP", "jCHF", "jCAD",
	"jAUD", "jNZD", "jSGD", "DOLA", "DSD", "sEUR", "sJPY", "sGBP", "sAUD", "sCHF",
	"sKRW", "sCNY", "sSGD", "sCAD", "sNZD", "sXAU", "sXAG", "sBTC", "sETH", "sLINK",
	"sAAVE", "sUNI", "sDOT", "sYFI", "sCOMP", "sSNX", "sMKR", "sCRV", "sBAL", "sSUSHI",
	"sMANA", "sCHZ", "sENJ", "sKNC", "sREN", "sBNT", "sLRC", "sZRX", "sUMA", "s1INCH",
	"sALCX", "sCEL", "sDOGE", "sFIL", "sFTM", "sGRT", "sMATIC", "sNEO", "sQTUM", "sSTX",
	"sTRX", "sVET", "sXLM", "sXMR", "sXTZ", "sYFII", "sZIL", "sAVAX", "sSOL", "sBNB",
	"sADA", "sEGLD", "sFLOW", "sICP", "sLUNA", "sAXS", "sSAND", "sRUNE", "sOMG", "sBAT",
	"sKSM", "sALGO", "sATOM", "sNEAR", "sFTT", "sTHETA", "sCAKE", "sONE", "sMIOTA",
	"sIOTA", "sONT", "sDGB", "sZEC", "sSHIB", "sUSTC", "sUSDP", "sUSDD", "sPYUSD",
	"sUSD1", "sETHENA", "sCNGN",
}

var integerCurrencies = buildCurrencySet(integerCurrencyCodes)

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

func buildCurrencySet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[strings.ToUpper(code)] = struct{}{}
	}
	return set
}

// FormatAmount renders an amount for an edge label. Integer-class currencies
// truncate the fractional part and group digits; all others show exactly six
// decimals.
func FormatAmount(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0"
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := integerCurrencies[code]; ok {
		return amountPrinter.Sprintf("%d", int64(math.Floor(amount)))
	}
	return strconv.FormatFloat(amount, 'f', 6, 64)
}

// FormatDateShort renders a raw date cell as "M/D/YY h:mm AM/PM", or an
// empty string when the date cannot be parsed.
func FormatDateShort(raw string) string {
	t, ok := bridge.ParseDate(raw)
	if !ok {
		return ""
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	meridiem := "AM"
	if t.Hour() >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d/%d/%d %d:%02d %s",
		int(t.Month()), t.Day(), t.Year()%100, hour, t.Minute(), meridiem)
}

// TruncateAddress shortens long addresses for node labels.
func TruncateAddress(addr string) string {
	if addr == "" {
		return "Unknown"
	}
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

const (
	colorPreLayering     = "#3498db"
	colorLayeringNonVASP = "#000000"
	colorLayeringVASP    = "#ffd700"
	colorNeutral         = "#95a5a6"
	colorHighRisk        = "#e74c3c"
	colorBorderNeutral   = "#2c3e50"
	colorExchange        = "#27ae60"
	colorExchangeBorder  = "#229954"
	colorSourceLabel     = "#9b59b6"
	colorSourceBorder    = "#8e44ad"
)

// StageColor maps a stage to its node color. Stages without a dedicated
// color (and synthetic nodes) fall back to neutral gray.
func StageColor(stage domain.Stage) string {
	switch stage {
	case domain.StagePreLayering:
		return colorPreLayering
	case domain.StageLayeringNonVASP:
		return colorLayeringNonVASP
	case domain.StageLayeringVASP:
		return colorLayeringVASP
	default:
		return colorNeutral
	}
}

var highRiskKeywords = []string{"high-risk", "phishing", "scam", "sanctioned"}

// IsHighRisk reports whether the chain-analysis text flags the transaction.
func IsHighRisk(tx domain.Transaction) bool {
	lower := strings.ToLower(tx.ChainAnalysis)
	for _, keyword := range highRiskKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func riskBorderColor(tx domain.Transaction) string {
	if IsHighRisk(tx) {
		return colorHighRisk
	}
	return colorBorderNeutral
}

// ExtractExchangeName derives a VASP name from a free-text comment: the text
// after the last " to " separator, or the whole trimmed comment.
func ExtractExchangeName(comment string) string {
	trimmed := strings.TrimSpace(comment)
	if strings.Contains(trimmed, " to ") {
		parts := strings.Split(trimmed, " to ")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return trimmed
}
