package data_source

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// ColumnName normalises a record field name to a snake case column name
func ColumnName(field string) string {
	return strcase.ToSnake(strings.TrimSpace(field))
}
