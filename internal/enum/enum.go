package enum

// ── Tabs in the backing spreadsheet ──

const (
	TabLocations      = "Locations"
	TabProducts       = "Products"
	TabStocks         = "STOCKS"
	TabStockMovements = "STOCK_MOVEMENTS"
	TabDailyStocks    = "DAILY_STOCKS"
	TabStaff          = "Staff"
)

// TabLegacyMovements is the 7-column ledger some older deployments still write
// to. Its header set differs from the 8-column STOCK_MOVEMENTS ledger, so its
// rows are never read or merged. The name stays reserved so no location tab
// can take it.
const TabLegacyMovements = "MOVEMENTS"

// ── Roles carried in access tokens ──

const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
)

// ── Payment methods (free-form in the sheet; these are the POS buttons) ──

const (
	PaymentCash      = "cash"
	PaymentTransfer  = "transfer"
	PaymentPromptPay = "promptpay"
	PaymentLineman   = "lineman"
)

// ── Movement reasons ──

const (
	ReasonSale    = "sale"
	ReasonWaste   = "waste"
	ReasonRestock = "restock"
	ReasonAdjust  = "adjust"
)

// ── Report periods ──

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ── Snapshot kinds ──

const (
	SnapshotOpening = "opening"
	SnapshotClosing = "closing"
)

// ── Live feed events ──

const (
	EventOrderCreated  = "order.created"
	EventStockAdjusted = "stock.adjusted"
)

// AllLocations selects every registered location in report queries.
const AllLocations = "ALL"
