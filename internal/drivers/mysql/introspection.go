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

package mysql

import (
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"strings"
)

var geometryTypes = map[string]schema.GeometryType{
	"geometry":           schema.GeometryAny,
	"point":              schema.GeometryPoint,
	"linestring":         schema.GeometryLineString,
	"polygon":            schema.GeometryPolygon,
	"multipoint":         schema.GeometryMultiPoint,
	"multilinestring":    schema.GeometryMultiLineString,
	"multipolygon":       schema.GeometryMultiPolygon,
	"geometrycollection": schema.GeometryGeometryCollection,
	"geomcollection":     schema.GeometryGeometryCollection,
}

func (d *mysqlDriver) columnFromRow(
	table string, row statement.Row,
) (schema.Column, error) {

	name := row.String("column_name")
	dataType := strings.ToLower(row.String("data_type"))
	columnType := strings.ToLower(row.String("column_type"))
	extra := strings.ToLower(row.String("extra"))
	collation := row.String("collation_name")
	length := row.Int("character_maximum_length")

	integer := func(bits int) schema.Column {
		c := schema.IntegerBits(name, bits)
		if strings.Contains(columnType, "unsigned") {
			c = c.Unsigned()
		}
		if strings.Contains(extra, "auto_increment") {
			c = c.AutoIncrement()
		}
		return c
	}

	var column schema.Column
	switch dataType {
	case "tinyint":
		column = integer(8)
	case "smallint":
		column = integer(16)
	case "mediumint":
		column = integer(24)
	case "int", "integer":
		column = integer(32)
	case "bigint":
		column = integer(64)
	case "char":
		if strings.HasPrefix(collation, "utf") {
			column = schema.NChar(name, length).WithCollation(collation)
		} else {
			column = schema.Char(name, length).WithCollation(collation)
		}
	case "varchar":
		if strings.HasPrefix(collation, "utf") {
			column = schema.NVarchar(name, length).WithCollation(collation)
		} else {
			column = schema.Varchar(name, length).WithCollation(collation)
		}
	case "tinytext":
		column = schema.Text(name, 1).WithCollation(collation)
	case "text":
		column = schema.Text(name, 2).WithCollation(collation)
	case "mediumtext":
		column = schema.Text(name, 3).WithCollation(collation)
	case "longtext":
		column = schema.Text(name, 4).WithCollation(collation)
	case "tinyblob":
		column = schema.Blob(name, 1)
	case "blob":
		column = schema.Blob(name, 2)
	case "mediumblob":
		column = schema.Blob(name, 3)
	case "longblob":
		column = schema.Blob(name, 4)
	case "binary":
		column = schema.Binary(name, length)
	case "varbinary":
		column = schema.VarBinary(name, length)
	case "float":
		column = schema.Float(name, 23)
	case "double":
		column = schema.Double(name)
	case "decimal":
		column = schema.Decimal(name, row.Int("numeric_precision"), row.Int("numeric_scale"))
	case "timestamp":
		column = schema.Timestamp(name, row.Int("datetime_precision"))
	case "datetime":
		column = schema.Datetime(name, row.Int("datetime_precision"))
	case "time":
		column = schema.Time(name, row.Int("datetime_precision"))
	case "date":
		column = schema.Date(name)
	case "year":
		column = schema.Year(name)
	case "enum":
		column = schema.Enum(name, driver.ParseQuotedValues(row.String("column_type"))...)
	case "set":
		column = schema.Set(name, driver.ParseQuotedValues(row.String("column_type"))...)
	case "json":
		column = schema.Json(name)
	default:
		geometryType, ok := geometryTypes[dataType]
		if !ok {
			return schema.Column{}, driver.NewSchemaMappingError(table, name, dataType)
		}
		column = schema.GeometryOf(name, geometryType).WithSrid(row.Int("srs_id"))
	}

	if row.String("is_nullable") == "YES" {
		column = column.Nullable()
	}
	if strings.Contains(extra, "invisible") {
		column = column.Invisible()
	}

	return column.
		WithDefault(d.classifyDefault(row, dataType, extra)).
		WithComment(row.String("column_comment")), nil
}

// classifyDefault turns the textual catalog default into a literal,
// an expression or no default at all
func (d *mysqlDriver) classifyDefault(
	row statement.Row, dataType, extra string,
) any {

	value, ok := row.NullableString("column_default")
	if !ok {
		return nil
	}

	if d.unquotesDefaults() {
		if value == "NULL" {
			return nil
		}
		if unquoted, quoted := driver.UnquoteLiteral(value); quoted {
			return strings.ReplaceAll(unquoted, `\\`, `\`)
		}
	}

	if schema.IsNumeric(value) {
		return value
	}

	switch dataType {
	case "timestamp", "datetime":
		lower := strings.ToLower(value)
		if lower == "current_timestamp" || lower == "current_timestamp()" {
			return schema.CurrentTimestamp
		}
		if strings.HasPrefix(lower, "current_timestamp") {
			return schema.Raw(value)
		}
	}

	if strings.Contains(extra, "default_generated") || d.unquotesDefaults() {
		return schema.Raw(value)
	}
	return value
}
