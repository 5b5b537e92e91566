package broker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/normalize"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

const (
	ibkrIntroduction = "introduction"
	ibkrProfile      = "profile"
	ibkrKeyStats     = "key statistics"
	ibkrPerformance  = "historical performance"
	ibkrPositions    = "open position summary"
	ibkrOpenPos      = "open positions"
)

var ibkrPositionSchema = tabular.Schema{
	Columns: map[tabular.Role][]string{
		tabular.RoleSymbol:        {"symbol"},
		tabular.RoleName:          {"description"},
		tabular.RoleISIN:          {"isin", "security id"},
		tabular.RoleQuantity:      {"quantity"},
		tabular.RolePrice:         {"closeprice", "close price"},
		tabular.RoleValue:         {"value"},
		tabular.RoleCostBasis:     {"cost basis", "costbasis"},
		tabular.RoleAverageCost:   {"cost price"},
		tabular.RoleUnrealizedPnL: {"unrealizedp&l", "unrealized p&l", "unrealized p/l"},
		tabular.RoleCurrency:      {"currency"},
		tabular.RoleAssetType:     {"financialinstrument", "financial instrument", "asset category"},
		tabular.RoleSector:        {"sector"},
		tabular.RoleExchange:      {"listing exchange", "exchange"},
		tabular.RoleDate:          {"date"},
		tabular.RoleFXRate:        {"fx rate to base", "fxratetobase"},
		tabular.RoleComment:       {"datadiscriminator"},
	},
	Required: []tabular.Role{tabular.RoleSymbol, tabular.RoleQuantity},
}

var (
	ibkrQuarterRegex = regexp.MustCompile(`(?i)^(q[1-4]\s*\d{4}|\d{4}\s*q[1-4])$`)
	ibkrYearRegex    = regexp.MustCompile(`^\d{4}$`)
)

// IBKR reads Interactive Brokers PortfolioAnalyst exports. Every row starts with a
// section name and a Header/Data marker; each section keeps its own header.
type IBKR struct{ base }

func NewIBKR() *IBKR { return &IBKR{newBase(domain.BrokerIBKR)} }

type ibkrSection struct {
	header []string
	cm     tabular.ColumnMap
}

func (e *IBKR) Parse(content string) (Result, error) {
	t := tabular.Read(content, ',')
	if t.IsEmpty() {
		return Result{}, domain.ErrEmptyInput
	}

	portfolio := e.newPortfolio()
	var skipped skips
	sections := map[string]*ibkrSection{}
	seen := false

	for i, row := range t.Rows {
		if len(row) < 3 {
			continue
		}
		name := sectionName(row[0])
		kind := strings.ToLower(row[1])
		cells := tabular.Row(row[2:])

		if kind == "header" {
			sec := &ibkrSection{header: lowerAll(cells)}
			if name == ibkrPositions || name == ibkrOpenPos {
				sec.cm = ibkrPositionSchema.Resolve(cells)
			}
			sections[name] = sec
			continue
		}
		if kind != "data" {
			continue
		}
		sec, ok := sections[name]
		if !ok {
			continue
		}

		switch name {
		case ibkrIntroduction:
			seen = true
			e.introduction(&portfolio, sec, cells)
		case ibkrProfile:
			seen = true
			portfolio.Profile = ibkrProfileFrom(sec, cells)
		case ibkrKeyStats:
			seen = true
			portfolio.Statistics = ibkrStatistics(sec, cells)
		case ibkrPerformance:
			seen = true
			if rec, ok := ibkrPerformanceRecord(sec, cells); ok {
				portfolio.Performance = append(portfolio.Performance, rec)
			}
		case ibkrPositions, ibkrOpenPos:
			seen = true
			if !ibkrPositionSchema.Matches(sec.cm) {
				skipped.add(t.Line(i), "position header lacks symbol or quantity")
				continue
			}
			if ibkrIsTotal(sec.cm, cells) {
				continue
			}
			// activity statements list lots under each summary row
			if disc := sec.cm.Get(cells, tabular.RoleComment); disc != "" && !strings.EqualFold(disc, "summary") {
				continue
			}
			p := snapshotPosition(sec.cm, cells, num)
			if p.Symbol == "" {
				skipped.add(t.Line(i), "position without symbol")
				continue
			}
			if p.IsEmpty() {
				continue
			}
			portfolio.Positions = append(portfolio.Positions, p)
		}
	}

	if !seen {
		return Result{}, fmt.Errorf("%w: no PortfolioAnalyst sections", domain.ErrUnrecognizedStructure)
	}
	return Result{Portfolio: portfolio, Skipped: skipped}, nil
}

func (e *IBKR) introduction(p *domain.Portfolio, sec *ibkrSection, cells tabular.Row) {
	get := sec.getter(cells)
	p.AccountID = get("account")
	p.AccountName = lo.CoalesceOrEmpty(get("alias"), get("name"))
	p.BaseCurrency = strings.ToUpper(get("basecurrency", "base currency"))
}

func ibkrProfileFrom(sec *ibkrSection, cells tabular.Row) *domain.PortfolioProfile {
	get := sec.getter(cells)
	return &domain.PortfolioProfile{
		HolderName:   get("name"),
		AccountType:  get("accounttype", "account type"),
		CustomerType: get("customertype", "customer type"),
		Capabilities: get("accountcapabilities", "account capabilities"),
		BaseCurrency: strings.ToUpper(get("basecurrency", "base currency")),
	}
}

func ibkrStatistics(sec *ibkrSection, cells tabular.Row) *domain.PortfolioStatistics {
	get := sec.getter(cells)
	opt := func(keys ...string) *decimal.Decimal {
		raw := get(keys...)
		if !normalize.HasValue(raw) {
			return nil
		}
		return domain.DecimalPtr(num(raw))
	}

	return &domain.PortfolioStatistics{
		NAVBegin:         opt("beginningnav", "beginning nav", "startingnav"),
		NAVEnd:           opt("endingnav", "ending nav"),
		NAVChange:        opt("changeinnav", "change in nav", "navchange"),
		CumulativeReturn: opt("cumulativereturn", "cumulative return"),
		Return1M:         opt("1monthreturn", "1 month return"),
		Return3M:         opt("3monthreturn", "3 month return"),
		BestMonth:        opt("bestreturn", "best return", "bestmonth"),
		BestMonthDate:    get("bestreturndate", "best return date", "bestmonthdate"),
		WorstMonth:       opt("worstreturn", "worst return", "worstmonth"),
		WorstMonthDate:   get("worstreturndate", "worst return date", "worstmonthdate"),
		Dividends:        opt("dividends"),
		Interest:         opt("interest"),
		Fees:             opt("fees", "feescommissions", "fees & commissions"),
	}
}

// ibkrPerformanceRecord reads the period label from the first column and the account
// return from the first later column whose header mentions the account or a return.
func ibkrPerformanceRecord(sec *ibkrSection, cells tabular.Row) (domain.PerformanceRecord, bool) {
	period := cells.Cell(0)
	if period == "" || isSummaryLabel(period) {
		return domain.PerformanceRecord{}, false
	}

	rec := domain.PerformanceRecord{Period: period, PeriodType: ibkrPeriodType(period)}
	for i, h := range sec.header {
		if i == 0 || !(strings.Contains(h, "account") || strings.Contains(h, "return")) {
			continue
		}
		if raw := cells.Cell(i); normalize.HasValue(raw) {
			rec.AccountReturn = domain.DecimalPtr(num(raw))
		}
		break
	}
	return rec, true
}

func ibkrPeriodType(label string) domain.PeriodType {
	s := strings.TrimSpace(label)
	switch {
	case ibkrQuarterRegex.MatchString(s):
		return domain.PeriodQuarter
	case ibkrYearRegex.MatchString(s):
		return domain.PeriodYear
	default:
		return domain.PeriodMonth
	}
}

func ibkrIsTotal(cm tabular.ColumnMap, cells tabular.Row) bool {
	for _, role := range []tabular.Role{tabular.RoleDate, tabular.RoleAssetType, tabular.RoleComment, tabular.RoleSymbol} {
		if isSummaryLabel(cm.Get(cells, role)) {
			return true
		}
	}
	return false
}

// getter looks a data cell up by any of the given lowercased header names.
func (s *ibkrSection) getter(cells tabular.Row) func(keys ...string) string {
	return func(keys ...string) string {
		for _, k := range keys {
			for i, h := range s.header {
				if h == k {
					return cells.Cell(i)
				}
			}
		}
		return ""
	}
}

// sectionName lowercases a section cell and drops qualifiers such as "(Annualized)".
func sectionName(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	if idx := strings.Index(s, "("); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	if strings.HasPrefix(s, ibkrPerformance) {
		return ibkrPerformance
	}
	return s
}

func lowerAll(cells tabular.Row) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = tabular.NormalizeHeader(c)
	}
	return out
}
