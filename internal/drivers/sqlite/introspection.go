/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sqlite

import (
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"regexp"
	"strconv"
	"strings"
)

var declaredTypeRegex = regexp.MustCompile(`^([A-Z]+)(?:\s*\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?(\s+UNSIGNED)?$`)

var integerBits = map[string]int{
	"TINYINT":   8,
	"SMALLINT":  16,
	"MEDIUMINT": 24,
	"INT":       32,
	"INTEGER":   32,
	"BIGINT":    64,
}

var geometryTypes = map[string]schema.GeometryType{
	"GEOMETRY":           schema.GeometryAny,
	"POINT":              schema.GeometryPoint,
	"LINESTRING":         schema.GeometryLineString,
	"POLYGON":            schema.GeometryPolygon,
	"MULTIPOINT":         schema.GeometryMultiPoint,
	"MULTILINESTRING":    schema.GeometryMultiLineString,
	"MULTIPOLYGON":       schema.GeometryMultiPolygon,
	"GEOMETRYCOLLECTION": schema.GeometryGeometryCollection,
}

// columnFromRow maps the declared column type back to a column. The
// CREATE TABLE statement provides what the pragma doesn't report,
// the AUTOINCREMENT flag and the enum value lists.
func (d *sqliteDriver) columnFromRow(
	table string, row statement.Row, createSql string,
) (schema.Column, error) {

	name := row.String("column_name")
	declaredType := strings.ToUpper(strings.TrimSpace(row.String("column_type")))

	matches := declaredTypeRegex.FindStringSubmatch(declaredType)
	if matches == nil {
		return schema.Column{}, driver.NewSchemaMappingError(table, name, declaredType)
	}
	typeName := matches[1]
	size, _ := strconv.Atoi(matches[2])
	scale, _ := strconv.Atoi(matches[3])
	unsigned := matches[4] != ""

	var column schema.Column
	switch typeName {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT":
		column = schema.IntegerBits(name, integerBits[typeName])
		if unsigned {
			column = column.Unsigned()
		}
		if typeName == "INTEGER" && row.Int("pk") > 0 && d.isAutoIncrement(name, createSql) {
			column = column.AutoIncrement()
		}
	case "BOOLEAN":
		column = schema.Boolean(name)
	case "CHAR":
		column = schema.Char(name, size)
	case "VARCHAR":
		column = schema.Varchar(name, size)
	case "NCHAR":
		column = schema.NChar(name, size)
	case "NVARCHAR":
		column = schema.NVarchar(name, size)
	case "TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT":
		column = schema.Text(name, tier(textTypes, typeName))
	case "TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB":
		column = schema.Blob(name, tier(blobTypes, typeName))
	case "BINARY":
		column = schema.Binary(name, size)
	case "VARBINARY":
		column = schema.VarBinary(name, size)
	case "FLOAT":
		column = schema.Float(name, 23)
	case "DOUBLE", "REAL":
		column = schema.Double(name)
	case "DECIMAL", "NUMERIC":
		column = schema.Decimal(name, size, scale)
	case "TIMESTAMP":
		column = schema.Timestamp(name, size)
	case "DATETIME":
		column = schema.Datetime(name, size)
	case "TIME":
		column = schema.Time(name, size)
	case "DATE":
		column = schema.Date(name)
	case "YEAR":
		column = schema.Year(name)
	case "UUID":
		column = schema.Uuid(name)
	case "JSON":
		column = schema.Json(name)
	case "ENUM":
		values := d.enumValues(name, createSql)
		if len(values) == 0 {
			return schema.Column{}, driver.NewSchemaMappingError(table, name, declaredType)
		}
		column = schema.Enum(name, values...)
	default:
		geometryType, ok := geometryTypes[typeName]
		if !ok {
			return schema.Column{}, driver.NewSchemaMappingError(table, name, declaredType)
		}
		column = schema.GeometryOf(name, geometryType)
	}

	if err := column.Err(); err != nil {
		return schema.Column{}, driver.NewSchemaMappingError(table, name, declaredType)
	}

	if !row.Bool("not_null") {
		column = column.Nullable()
	}
	if defaultValue, ok := row.NullableString("column_default"); ok {
		column = column.WithDefault(classifyDefault(defaultValue))
	}
	return column, nil
}

func (d *sqliteDriver) isAutoIncrement(
	column, createSql string,
) bool {

	pattern := `(?i)` + regexp.QuoteMeta(d.Quote(column)) + `\s+INTEGER\s+PRIMARY\s+KEY\s+AUTOINCREMENT`
	return regexp.MustCompile(pattern).MatchString(createSql)
}

func (d *sqliteDriver) enumValues(
	column, createSql string,
) []string {

	pattern := `(?i)CHECK\s*\(\s*` + regexp.QuoteMeta(d.Quote(column)) + `\s+IN\s*\(((?:'(?:[^']|'')*'|[\s,])*)\)\s*\)`
	matches := regexp.MustCompile(pattern).FindStringSubmatch(createSql)
	if matches == nil {
		return nil
	}
	return driver.ParseQuotedValues(matches[1])
}

func tier(
	names []string, name string,
) int {

	for i, candidate := range names {
		if candidate == name {
			return i + 1
		}
	}
	return 0
}

func classifyDefault(
	value string,
) any {

	if strings.EqualFold(value, "NULL") {
		return nil
	}
	if literal, ok := driver.UnquoteLiteral(value); ok {
		return literal
	}
	if schema.IsNumeric(value) {
		return value
	}
	if strings.EqualFold(value, "CURRENT_TIMESTAMP") {
		return schema.CurrentTimestamp
	}
	return schema.Raw(value)
}
