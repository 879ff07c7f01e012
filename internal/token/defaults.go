package token

// BuyTheDipSentinel in BUYPRICEINBASE keeps the dip-buy price computed by the
// bot across reloads.
const BuyTheDipSentinel = "BUY_THE_DIP"

// Keys that every token must define.
var requiredKeys = []string{
	"ADDRESS",
	"BUYAMOUNTINBASE",
	"BUYPRICEINBASE",
	"SELLPRICEINBASE",
}

var defaultFalseKeys = []string{
	"ENABLED",
	"USECUSTOMBASEPAIR",
	"HASFEES",
	"RUGDOC_CHECK",
	"MULTIPLEBUYS",
	"ALWAYS_CHECK_BALANCE",
	"WAIT_FOR_OPEN_TRADE",
	"WATCH_STABLES_PAIRS",
}

var defaultTrueKeys = []string{
	"LIQUIDITYINNATIVETOKEN",
}

type valueDefault struct {
	key   string
	value any
}

// valueDefaults is applied in order; map-valued defaults are cloned per token.
var valueDefaults = []valueDefault{
	{"SLIPPAGE", int64(49)},
	{"BUYAMOUNTINTOKEN", int64(0)},
	{"MAXTOKENS", int64(0)},
	{"MOONBAG", int64(0)},
	{"MINIMUM_LIQUIDITY_IN_DOLLARS", int64(10000)},
	{"MAX_BASE_AMOUNT_PER_EXACT_TOKENS_TRANSACTION", 0.5},
	{"SELLAMOUNTINTOKENS", "all"},
	{"GAS", int64(8)},
	{"MAX_GAS", int64(99999)},
	{"BOOSTPERCENT", int64(50)},
	{"GASLIMIT", int64(1000000)},
	{"BUYAFTER_XXX_SECONDS", int64(0)},
	{"XXX_SECONDS_COOLDOWN_AFTER_BUY_SUCCESS_TX", int64(0)},
	{"XXX_SECONDS_COOLDOWN_AFTER_SELL_SUCCESS_TX", int64(0)},
	{"MAX_FAILED_TRANSACTIONS_IN_A_ROW", int64(2)},
	{"MAX_SUCCESS_TRANSACTIONS_IN_A_ROW", int64(2)},
	{"GASPRIORITY_FOR_ETH_ONLY", 1.5},
	{"STOPLOSSPRICEINBASE", int64(0)},
	{"BUYCOUNT", int64(0)},
	{"TRAILING_STOP_LOSS", int64(0)},
	{"ANTI_DUMP_PRICE", int64(0)},
	{"PINKSALE_PRESALE_ADDRESS", ""},
	{"KIND_OF_SWAP", "base"},
	{"BASESYMBOL", ""},
	{"BASEADDRESS", ""},
	{"_STABLE_BASES", map[string]any{}},
}

// Word-valued keys stored lower-cased so later comparisons are exact.
var lowerCaseKeys = []string{
	"SELLAMOUNTINTOKENS",
	"KIND_OF_SWAP",
	"GAS",
}

// Initial runtime values that differ from the zero value.
const (
	initialCalculatedSellPrice = 99999
	initialPairToDisplay       = "Pair"
)
