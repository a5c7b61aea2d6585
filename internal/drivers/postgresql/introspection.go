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

package postgresql

import (
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"regexp"
	"strconv"
	"strings"
)

var (
	castLiteralRegex  = regexp.MustCompile(`^'((?:[^']|'')*)'(?:::[\w\s".\[\]]+)?$`)
	geometryTypeRegex = regexp.MustCompile(`^geometry(?:\((\w+)(?:,(\d+))?\))?$`)
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
}

func columnFromRow(
	table string, row statement.Row, checks []string,
) (schema.Column, error) {

	name := row.String("column_name")
	udtName := row.String("udt_name")
	defaultValue, hasDefault := row.NullableString("column_default")
	length := row.Int("character_maximum_length")
	precision := row.Int("datetime_precision")

	integer := func(bits int) schema.Column {
		c := schema.IntegerBits(name, bits)
		if row.String("is_identity") == "YES" ||
			(hasDefault && strings.HasPrefix(defaultValue, "nextval(")) {
			c = c.AutoIncrement()
		}
		return c
	}

	var column schema.Column
	switch udtName {
	case "int2":
		column = integer(16)
	case "int4":
		column = integer(32)
	case "int8":
		column = integer(64)
	case "bool":
		column = schema.Boolean(name)
	case "bpchar":
		column = schema.Char(name, length)
	case "varchar":
		if values := enumValues(checks); len(values) > 0 {
			column = schema.Enum(name, values...)
		} else if length == 0 {
			column = schema.Text(name, 4)
		} else {
			column = schema.Varchar(name, length)
		}
	case "text":
		column = schema.Text(name, 4)
	case "bytea":
		column = schema.Blob(name, 4)
	case "float4":
		column = schema.Float(name, 23)
	case "float8":
		column = schema.Double(name)
	case "numeric":
		if row.IsNull("numeric_precision") {
			return schema.Column{}, driver.NewSchemaMappingError(table, name, "numeric")
		}
		column = schema.Decimal(name, row.Int("numeric_precision"), row.Int("numeric_scale"))
	case "timestamp", "timestamptz":
		column = schema.Timestamp(name, precision)
	case "time", "timetz":
		column = schema.Time(name, precision)
	case "date":
		column = schema.Date(name)
	case "uuid":
		column = schema.Uuid(name)
	case "json", "jsonb":
		column = schema.Json(name)
	case "geometry":
		c, ok := geometryColumn(name, row.String("formatted_type"))
		if !ok {
			return schema.Column{}, driver.NewSchemaMappingError(table, name, row.String("formatted_type"))
		}
		column = c
	default:
		return schema.Column{}, driver.NewSchemaMappingError(table, name, udtName)
	}

	if row.String("is_nullable") == "YES" {
		column = column.Nullable()
	}
	if collation, ok := row.NullableString("collation_name"); ok {
		column = column.WithCollation(collation)
	}
	if comment, ok := row.NullableString("column_comment"); ok {
		column = column.WithComment(comment)
	}
	if hasDefault {
		column = column.WithDefault(classifyDefault(defaultValue))
	}
	return column, nil
}

// enumValues extracts the allowed values of a CHECK (col IN (...))
// constraint, which the server reports as = ANY (ARRAY[...])
func enumValues(
	checks []string,
) []string {

	for _, check := range checks {
		if strings.Contains(check, "ANY") && strings.Contains(check, "ARRAY[") {
			if values := driver.ParseQuotedValues(check); len(values) > 0 {
				return values
			}
		}
	}
	return nil
}

func geometryColumn(
	name, formattedType string,
) (schema.Column, bool) {

	matches := geometryTypeRegex.FindStringSubmatch(strings.ToLower(formattedType))
	if matches == nil {
		return schema.Column{}, false
	}

	geometryType := schema.GeometryAny
	if matches[1] != "" {
		t, ok := geometryTypes[matches[1]]
		if !ok {
			return schema.Column{}, false
		}
		geometryType = t
	}

	column := schema.GeometryOf(name, geometryType)
	if matches[2] != "" {
		srid, err := strconv.Atoi(matches[2])
		if err != nil {
			return schema.Column{}, false
		}
		column = column.WithSrid(srid)
	}
	return column, true
}

func classifyDefault(
	value string,
) any {

	if strings.HasPrefix(value, "nextval(") {
		return nil
	}
	if matches := castLiteralRegex.FindStringSubmatch(value); matches != nil {
		return strings.ReplaceAll(matches[1], "''", "'")
	}

	lower := strings.ToLower(value)
	switch lower {
	case "true":
		return true
	case "false":
		return false
	case "current_timestamp", "now()":
		return schema.CurrentTimestamp
	}

	if schema.IsNumeric(value) {
		return value
	}
	return schema.Raw(value)
}
