package persistence

import (
	"slices"
	"strings"

	"github.com/spares/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortable whitelists the columns a listing may be ordered by. OrderBy values
// outside columns fall back to by, so no client string reaches the SQL.
type sortable struct {
	table   string
	columns []string
	by      string
	desc    bool
	// ties breaks equal keys in the direction of the main sort
	ties string
}

var (
	manufacturerSort = sortable{
		table:   "manufacturers",
		columns: []string{"id", "created_at", "updated_at", "name", "slug"},
		by:      "name",
	}
	locationSort = sortable{
		table:   "locations",
		columns: []string{"id", "created_at", "updated_at", "name", "slug"},
		by:      "name",
	}
	equipmentModelSort = sortable{
		table:   "equipment_models",
		columns: []string{"id", "created_at", "updated_at", "model", "slug", "manufacturer_id"},
		by:      "model",
	}
	equipmentSort = sortable{
		table:   "equipment",
		columns: []string{"id", "created_at", "updated_at", "name", "model_id", "location_id"},
		by:      "name",
	}
	actorSort = sortable{
		table:   "actors",
		columns: []string{"id", "created_at", "updated_at", "username", "display_name"},
		by:      "username",
	}
	partTypeSort = sortable{
		table: "part_types",
		columns: []string{
			"id", "created_at", "updated_at", "name", "slug",
			"category", "manufacturer_id", "part_number", "unit_cost",
		},
		by: "name",
	}
	recordSort = sortable{
		table: "inventory_records",
		columns: []string{
			"id", "created_at", "updated_at", "part_type_id", "location_id",
			"quantity_on_hand", "quantity_reserved", "minimum_quantity", "reorder_quantity", "storage_detail",
		},
		by:   "created_at",
		desc: true,
		ties: "id",
	}
	transactionSort = sortable{
		table:   "inventory_transactions",
		columns: []string{"id", "created_at", "occurred_at", "transaction_type", "quantity"},
		by:      "occurred_at",
		desc:    true,
		// rows written in the same instant keep insertion order
		ties: "created_at",
	}
)

func (s sortable) has(field string) bool {
	return slices.Contains(s.columns, strings.TrimSpace(field))
}

func (s sortable) column(name string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Table: s.table, Name: name}, Desc: desc}
}

// apply orders query by the filter's field and direction. An empty or unknown
// direction keeps the listing's default.
func (s sortable) apply(query *gorm.DB, filter shared.Filter) *gorm.DB {
	name, desc := s.by, s.desc
	if s.has(filter.OrderBy) {
		name = strings.TrimSpace(filter.OrderBy)
	}
	switch strings.ToLower(strings.TrimSpace(filter.OrderDir)) {
	case "asc":
		desc = false
	case "desc":
		desc = true
	}

	query = query.Order(s.column(name, desc))
	if s.ties != "" && s.ties != name {
		query = query.Order(s.column(s.ties, desc))
	}
	return query
}

// applySearch adds a case-insensitive substring match over the given columns.
// LOWER/LIKE runs unchanged on postgres and sqlite.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	var cond strings.Builder
	args := make([]any, 0, len(columns))
	for i, col := range columns {
		if i > 0 {
			cond.WriteString(" OR ")
		}
		cond.WriteString("LOWER(" + col + ") LIKE ?")
		args = append(args, pattern)
	}
	return query.Where("("+cond.String()+")", args...)
}

// paginate limits query to the filter's page. A non-positive page size
// returns every row.
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}
