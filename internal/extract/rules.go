package extract

// FieldRule binds one summary field to the anchor phrases that precede its
// value in the rendered report text. Rules are evaluated in order by a
// single generic loop; adding a field is a data change, not a code change.
// A line consumed by an earlier rule is never re-matched, so more specific
// anchors ("Change (%)") must be listed before their prefixes ("Change").
type FieldRule struct {
	Field   string
	Anchors []string
}

// Summary field names. These are the assignment keys used by the extraction
// loop, not output column headers.
const (
	fieldTradingVolume   = "trading_volume"
	fieldAdvancedStocks  = "advanced_stocks"
	fieldDeclinedStocks  = "declined_stocks"
	fieldUnchangedStocks = "unchanged_stocks"
	fieldTurnover        = "turnover_hkd"
	fieldDeals           = "deals"
	fieldMorningClose    = "morning_close"
	fieldAfternoonClose  = "afternoon_close"
	fieldChange          = "change"
	fieldChangePercent   = "change_percent"
)

// summaryRules covers the aggregate statistics block. The report family is
// published in English and Chinese, so both header phrases are recognized.
var summaryRules = []FieldRule{
	{Field: fieldTradingVolume, Anchors: []string{"Trading Volume", "成交股數"}},
	{Field: fieldAdvancedStocks, Anchors: []string{"Advanced Stocks", "上升股份"}},
	{Field: fieldDeclinedStocks, Anchors: []string{"Declined Stocks", "下跌股份"}},
	{Field: fieldUnchangedStocks, Anchors: []string{"Unchanged Stocks", "無升跌股份"}},
	{Field: fieldTurnover, Anchors: []string{"Turnover", "成交金額"}},
	{Field: fieldDeals, Anchors: []string{"Deals", "成交宗數"}},
	{Field: fieldMorningClose, Anchors: []string{"Morning Close", "早市收市"}},
	{Field: fieldAfternoonClose, Anchors: []string{"Afternoon Close", "午市收市"}},
	{Field: fieldChangePercent, Anchors: []string{"Change (%)", "升跌 (%)"}},
	{Field: fieldChange, Anchors: []string{"Change", "升跌"}},
}

// Section anchors locate the three extractable blocks. A block spans from
// its anchor line to the next section anchor or end of text.
var (
	summarySectionAnchors = []string{
		"MARKET SUMMARY",
		"Market Summary",
		"市場概況",
	}
	bySharesSectionAnchors = []string{
		"TEN MOST ACTIVES (BY SHARES TRADED)",
		"Ten Most Actives (by Shares Traded)",
		"十大成交股份 (按成交股數)",
	}
	byTurnoverSectionAnchors = []string{
		"TEN MOST ACTIVES (BY TURNOVER)",
		"Ten Most Actives (by Turnover)",
		"十大成交股份 (按成交金額)",
	}
)
