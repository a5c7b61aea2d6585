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

package sqlserver

import (
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"regexp"
	"slices"
	"strings"
)

// SQL Server stores IN (...) checks as a chain of equality tests
var enumCheckRegex = regexp.MustCompile(`^\(?(?:\[[^\]]+\]\s*=\s*N?'(?:[^']|'')*'\s*(?:OR\s*)?)+\)?$`)

var currentTimestampFunctions = []string{"getdate()", "current_timestamp", "sysdatetime()"}

func columnFromRow(
	table string, row statement.Row, checks []string,
) (schema.Column, error) {

	name := row.String("column_name")
	dataType := strings.ToLower(row.String("data_type"))
	length := row.Int("character_maximum_length")
	precision := min(row.Int("datetime_precision"), 6)

	var column schema.Column
	switch dataType {
	case "tinyint":
		column = schema.TinyInteger(name)
	case "smallint":
		column = schema.SmallInteger(name)
	case "int":
		column = schema.Integer(name)
	case "bigint":
		column = schema.BigInteger(name)
	case "bit":
		column = schema.Boolean(name)
	case "char":
		column = schema.Char(name, length)
	case "nchar":
		column = schema.NChar(name, length)
	case "varchar", "nvarchar":
		if values := enumValues(checks); len(values) > 0 {
			column = schema.Enum(name, values...)
		} else if length == -1 {
			column = schema.Text(name, 4)
		} else if dataType == "varchar" {
			column = schema.Varchar(name, length)
		} else {
			column = schema.NVarchar(name, length)
		}
	case "text", "ntext":
		column = schema.Text(name, 4)
	case "binary":
		column = schema.Binary(name, length)
	case "varbinary":
		if length == -1 {
			column = schema.Blob(name, 4)
		} else {
			column = schema.VarBinary(name, length)
		}
	case "image":
		column = schema.Blob(name, 4)
	case "real":
		column = schema.Float(name, 24)
	case "float":
		column = schema.Double(name)
	case "decimal", "numeric":
		column = schema.Decimal(name, row.Int("numeric_precision"), row.Int("numeric_scale"))
	case "datetime2", "datetime", "smalldatetime", "datetimeoffset":
		column = schema.Timestamp(name, precision)
	case "time":
		column = schema.Time(name, precision)
	case "date":
		column = schema.Date(name)
	case "uniqueidentifier":
		column = schema.Uuid(name)
	case "geometry":
		column = schema.Geometry(name)
	default:
		return schema.Column{}, driver.NewSchemaMappingError(table, name, dataType)
	}

	if err := column.Err(); err != nil {
		return schema.Column{}, driver.NewSchemaMappingError(table, name, dataType)
	}

	if row.Int("is_identity") == 1 {
		column = column.AutoIncrement()
	}
	if row.String("is_nullable") == "YES" {
		column = column.Nullable()
	}
	if defaultValue, ok := row.NullableString("column_default"); ok {
		column = column.WithDefault(classifyDefault(defaultValue))
	}
	return column, nil
}

func enumValues(
	checks []string,
) []string {

	for _, check := range checks {
		if enumCheckRegex.MatchString(strings.TrimSpace(check)) {
			values := driver.ParseQuotedValues(check)
			slices.Sort(values)
			return slices.Compact(values)
		}
	}
	return nil
}

// classifyDefault reads the default definition, which the server
// reports wrapped into one or more pairs of parentheses
func classifyDefault(
	value string,
) any {

	value = stripParentheses(strings.TrimSpace(value))

	if strings.EqualFold(value, "NULL") {
		return nil
	}
	if literal, ok := driver.UnquoteLiteral(strings.TrimPrefix(value, "N")); ok {
		return literal
	}
	if schema.IsNumeric(value) {
		return value
	}
	for _, function := range currentTimestampFunctions {
		if strings.EqualFold(value, function) {
			return schema.CurrentTimestamp
		}
	}
	return schema.Raw(value)
}

func stripParentheses(
	value string,
) string {

	for len(value) >= 2 && value[0] == '(' && value[len(value)-1] == ')' && enclosesAll(value) {
		value = strings.TrimSpace(value[1 : len(value)-1])
	}
	return value
}

// enclosesAll reports whether the opening parenthesis at the start
// is closed by the one at the end
func enclosesAll(
	value string,
) bool {

	depth := 0
	quoted := false
	for i, r := range value {
		switch {
		case r == '\'':
			quoted = !quoted
		case quoted:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth == 0 && i < len(value)-1 {
				return false
			}
		}
	}
	return depth == 0
}
