package generator

import (
	"strings"

	"github.com/koba/schema-diff/internal/diff"
)

// GenerateSQL generates migration SQL from a diff result
func GenerateSQL(result *diff.DiffResult, dbType string) string {
	var sqlStatements []string

	ddlGen := NewDDLGenerator(dbType)
	for _, tableName := range result.TableNames() {
		sql := ddlGen.Generate(result.SchemaDiffs[tableName])
		if sql != "" {
			sqlStatements = append(sqlStatements, sql)
		}
	}

	return strings.Join(sqlStatements, "\n\n")
}
