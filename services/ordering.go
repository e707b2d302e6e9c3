package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyOrdering adds ORDER BY clauses for a comma separated ordering
// parameter such as "price,-title". Only keys present in fields (query name
// to column) are honoured; the rest are ignored. Rows fall back to id order.
func ApplyOrdering(q *gorm.DB, param string, fields map[string]string) *gorm.DB {
	for _, key := range strings.Split(param, ",") {
		key = strings.TrimSpace(key)
		desc := strings.HasPrefix(key, "-")
		column, ok := fields[strings.TrimPrefix(key, "-")]
		if !ok {
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}
