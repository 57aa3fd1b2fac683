package domain

type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Trader is one literal leaderboard row. Values are display strings.
type Trader struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Price  string `json:"price"`
	Total  string `json:"total"`
}

type Leaderboard struct {
	Buyers  []Trader `json:"buyers"`
	Sellers []Trader `json:"sellers"`
}

// TradingVolume holds the static volume label per timeframe.
type TradingVolume struct {
	Day   string `json:"day"`
	Week  string `json:"week"`
	Month string `json:"month"`
}

func (v TradingVolume) For(tf Timeframe) string {
	switch tf {
	case TimeframeDay:
		return v.Day
	case TimeframeWeek:
		return v.Week
	case TimeframeMonth:
		return v.Month
	}
	return ""
}

var DefaultVolume = TradingVolume{
	Day:   "1,234 BTC",
	Week:  "8,567 BTC",
	Month: "34,892 BTC",
}

var DefaultBuyers = []Trader{
	{Name: "TradePro_88", Amount: "2.45 BTC", Price: "$45,290", Total: "$110,960"},
	{Name: "CryptoWhale", Amount: "5.12 BTC", Price: "$45,285", Total: "$231,859"},
	{Name: "BTCMaster", Amount: "1.89 BTC", Price: "$45,282", Total: "$85,583"},
	{Name: "InvestorX", Amount: "3.67 BTC", Price: "$45,280", Total: "$166,177"},
	{Name: "DigiGold", Amount: "0.98 BTC", Price: "$45,275", Total: "$44,370"},
}

var DefaultSellers = []Trader{
	{Name: "QuickSell_99", Amount: "1.75 BTC", Price: "$45,295", Total: "$79,266"},
	{Name: "BTCTrader", Amount: "4.23 BTC", Price: "$45,298", Total: "$191,610"},
	{Name: "CoinDealer", Amount: "2.11 BTC", Price: "$45,300", Total: "$95,583"},
	{Name: "FastExit", Amount: "6.45 BTC", Price: "$45,305", Total: "$292,217"},
	{Name: "ProfitTaker", Amount: "1.33 BTC", Price: "$45,310", Total: "$60,262"},
}

// DefaultLeaderboard returns copies of the built-in lists, truncated to limit
// when limit > 0.
func DefaultLeaderboard(limit int) Leaderboard {
	return Leaderboard{
		Buyers:  truncate(DefaultBuyers, limit),
		Sellers: truncate(DefaultSellers, limit),
	}
}

func truncate(in []Trader, limit int) []Trader {
	n := len(in)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Trader, n)
	copy(out, in[:n])
	return out
}
