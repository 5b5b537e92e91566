package tabular

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// Role is the semantic meaning of a statement column.
type Role int

const (
	RoleSymbol Role = iota
	RoleName
	RoleISIN
	RoleQuantity
	RolePrice
	RoleValue
	RoleCostBasis
	RoleAverageCost
	RoleUnrealizedPnL
	RoleCurrency
	RoleAssetType
	RoleSector
	RoleExchange
	RoleDate
	RoleTime
	RoleAction
	RoleAmount
	RoleComment
	RoleFXRate
	RoleFees
	RoleDescription
	RoleAccount
	roleCount
)

var roleNames = [...]string{
	"symbol", "name", "isin", "quantity", "price", "value", "cost basis", "average cost",
	"unrealized pnl", "currency", "asset type", "sector", "exchange", "date", "time",
	"action", "amount", "comment", "fx rate", "fees", "description", "account",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Schema declares how a broker names its columns.
// Aliases are compared against lowercased, whitespace-collapsed header cells.
type Schema struct {
	Columns  map[Role][]string
	Required []Role
	// AnyOf requires at least one of the listed roles when non-empty.
	AnyOf []Role
	// Contains matches an alias anywhere inside a header cell instead of exactly.
	Contains bool
}

// ColumnMap maps roles to column indexes of one header row.
type ColumnMap map[Role]int

// Get returns the trimmed cell for role, or "" when the role is unmapped or the row is short.
func (m ColumnMap) Get(row Row, role Role) string {
	idx, ok := m[role]
	if !ok {
		return ""
	}
	return row.Cell(idx)
}

// Has reports whether role was found in the header.
func (m ColumnMap) Has(role Role) bool {
	_, ok := m[role]
	return ok
}

// NormalizeHeader lowercases a header cell and collapses its whitespace.
func NormalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	cell = strings.Trim(strings.TrimSpace(cell), `"`)
	return strings.ToLower(strings.Join(strings.Fields(cell), " "))
}

// Resolve maps the header row to roles. Roles are resolved in enumeration order,
// aliases in declaration order, and a column is claimed by at most one role.
func (s Schema) Resolve(header Row) ColumnMap {
	cells := lo.Map(header, func(c string, _ int) string { return NormalizeHeader(c) })
	used := make(map[int]bool, len(cells))
	m := ColumnMap{}

	for role := Role(0); role < roleCount; role++ {
		aliases, ok := s.Columns[role]
		if !ok {
			continue
		}
	aliasLoop:
		for _, alias := range aliases {
			for i, cell := range cells {
				if used[i] || cell == "" || !s.matches(cell, alias) {
					continue
				}
				m[role] = i
				used[i] = true
				break aliasLoop
			}
		}
	}
	return m
}

func (s Schema) matches(cell, alias string) bool {
	if s.Contains {
		return strings.Contains(cell, alias)
	}
	return cell == alias
}

// Missing lists the roles that keep m from satisfying the schema.
func (s Schema) Missing(m ColumnMap) []Role {
	missing := lo.Filter(s.Required, func(r Role, _ int) bool { return !m.Has(r) })
	if len(s.AnyOf) > 0 && !lo.SomeBy(s.AnyOf, m.Has) {
		missing = append(missing, s.AnyOf...)
	}
	return missing
}

// Matches reports whether m satisfies the schema.
func (s Schema) Matches(m ColumnMap) bool {
	return len(s.Missing(m)) == 0
}

// FindHeader scans the first maxLines rows for a row satisfying the schema and returns
// its index with the resolved column map. maxLines <= 0 scans the whole table.
func (s Schema) FindHeader(t Table, maxLines int) (int, ColumnMap, error) {
	if t.IsEmpty() {
		return -1, nil, domain.ErrEmptyInput
	}

	limit := len(t.Rows)
	if maxLines > 0 && maxLines < limit {
		limit = maxLines
	}

	var closest []Role
	for i := 0; i < limit; i++ {
		row := t.Rows[i]
		if row.IsBlank() {
			continue
		}
		m := s.Resolve(row)
		missing := s.Missing(m)
		if len(missing) == 0 {
			return i, m, nil
		}
		if closest == nil || len(missing) < len(closest) {
			closest = missing
		}
	}

	names := lo.Map(closest, func(r Role, _ int) string { return r.String() })
	return -1, nil, fmt.Errorf("%w: no header with columns %s", domain.ErrUnrecognizedStructure, strings.Join(names, ", "))
}
