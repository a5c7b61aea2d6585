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
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/samber/lo"
	"strings"
)

var geometryTypeNames = map[schema.GeometryType]string{
	schema.GeometryAny:                "Geometry",
	schema.GeometryPoint:              "Point",
	schema.GeometryLineString:         "LineString",
	schema.GeometryPolygon:            "Polygon",
	schema.GeometryMultiPoint:         "MultiPoint",
	schema.GeometryMultiLineString:    "MultiLineString",
	schema.GeometryMultiPolygon:       "MultiPolygon",
	schema.GeometryGeometryCollection: "GeometryCollection",
}

func (d *postgresDriver) GenerateTableSQL(
	table *schema.Table,
) ([]string, error) {

	tableName := d.QuoteTable(table.Name())

	components := make([]string, 0)
	comments := make([]string, 0)
	for _, column := range table.Columns() {
		columnSql, err := d.ColumnSQL(column)
		if err != nil {
			return nil, errors.Errorf("table '%s': %w", table.Name(), err)
		}
		components = append(components, columnSql)

		if column.Comment() != "" {
			comments = append(comments, d.commentSQL(table.Name(), column))
		}
	}

	for _, primaryKey := range table.PrimaryKeys() {
		components = append(components, "PRIMARY KEY ("+d.QuoteColumns(primaryKey.Columns())+")")
	}

	for _, uniqueIndex := range table.UniqueIndexes() {
		name := d.GeneratedName(table.Name(), uniqueIndex.Name(), uniqueIndex.Columns(), "unique")
		components = append(components,
			"CONSTRAINT "+d.Quote(name)+" UNIQUE ("+d.QuoteColumns(uniqueIndex.Columns())+")",
		)
	}

	statements := []string{
		"CREATE TABLE " + tableName + " (" + strings.Join(components, ", ") + ")",
	}

	for _, index := range table.Indexes() {
		name := d.GeneratedName(table.Name(), index.Name(), index.Columns(), "index")
		statements = append(statements,
			"CREATE INDEX "+d.Quote(name)+" ON "+tableName+" ("+d.QuoteColumns(index.Columns())+")",
		)
	}

	return append(statements, comments...), nil
}

func (d *postgresDriver) AddColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "ADD COLUMN " + columnSql, nil
}

func (d *postgresDriver) DropColumnSQL(
	column string,
) string {

	return "DROP COLUMN " + d.Quote(column)
}

// AlterColumnSQL changes type, nullability and default value of the
// column and replaces its enum CHECK constraint. Identity is left
// untouched.
func (d *postgresDriver) AlterColumnSQL(
	column schema.Column,
) (string, error) {

	dataType, err := d.dataType(column)
	if err != nil {
		return "", err
	}
	if column.Collation() != "" {
		dataType += " COLLATE " + d.Quote(column.Collation())
	}

	name := d.Quote(column.Name())
	clauses := []string{
		"DROP CONSTRAINT IF EXISTS " + d.Quote(checkName(column.Name())),
		fmt.Sprintf("ALTER COLUMN %s TYPE %s USING %s::%s", name, dataType, name, stripCollation(dataType)),
	}

	if column.IsNullable() {
		clauses = append(clauses, "ALTER COLUMN "+name+" DROP NOT NULL")
	} else {
		clauses = append(clauses, "ALTER COLUMN "+name+" SET NOT NULL")
	}

	if !column.IsAutoIncrement() {
		if defaultSql := d.DefaultSQL(column, booleans); defaultSql != "" {
			clauses = append(clauses, "ALTER COLUMN "+name+" SET "+defaultSql)
		} else {
			clauses = append(clauses, "ALTER COLUMN "+name+" DROP DEFAULT")
		}
	}

	if check := d.checkSQL(column); check != "" {
		clauses = append(clauses, "ADD "+check)
	}
	return strings.Join(clauses, ", "), nil
}

// ColumnChangeSQL sets the comment of added and altered columns,
// comments are not part of the column definition
func (d *postgresDriver) ColumnChangeSQL(
	table string, source, target schema.Column, _ bool,
) ([]string, []string, error) {

	if target.Name() == "" || source.Comment() == target.Comment() {
		return nil, nil, nil
	}
	return nil, []string{d.commentSQL(table, target)}, nil
}

func (d *postgresDriver) commentSQL(
	table string, column schema.Column,
) string {

	comment := "NULL"
	if column.Comment() != "" {
		comment = d.QuoteValue(column.Comment()).String()
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", d.QuoteTable(table), d.Quote(column.Name()), comment)
}

// checkSQL renders the named CHECK constraint restricting an enum
// column to its values
func (d *postgresDriver) checkSQL(
	column schema.Column,
) string {

	if column.Kind() != schema.EnumKind {
		return ""
	}
	return "CONSTRAINT " + d.Quote(checkName(column.Name())) +
		" CHECK (" + d.Quote(column.Name()) + " IN (" + d.QuoteValues(column.Values()) + "))"
}

func checkName(
	column string,
) string {

	return column + "_check"
}

func (d *postgresDriver) AlterTableSQL(
	table string, fragments []string,
) []string {

	return base.CombinedAlterTable(d.QuoteTable(table), fragments)
}

func (d *postgresDriver) AddForeignKeySQL(
	table string, foreignKey schema.ForeignKey,
) (string, error) {

	constraint := ""
	if foreignKey.Name() != "" {
		constraint = "CONSTRAINT " + d.Quote(foreignKey.Name())
	}

	return base.JoinClauses(
		"ALTER TABLE "+d.QuoteTable(table)+" ADD",
		constraint,
		"FOREIGN KEY ("+d.QuoteColumns(foreignKey.Columns())+")",
		"REFERENCES "+d.QuoteTable(foreignKey.ForeignTable())+" ("+d.QuoteColumns(foreignKey.ForeignColumns())+")",
		base.ReferentialActions(foreignKey, schema.ReferentialAction.String),
	), nil
}

func (d *postgresDriver) DropForeignKeySQL(
	table string, foreignKey schema.ForeignKey,
) (string, error) {

	if foreignKey.Name() == "" {
		return "", driver.NewUnsupportedError("dropping unnamed foreign key on table '%s'", table)
	}
	return "ALTER TABLE " + d.QuoteTable(table) + " DROP CONSTRAINT " + d.Quote(foreignKey.Name()), nil
}

// ColumnSQL renders the column definition. Comments are not part of
// the definition, they are emitted as COMMENT ON COLUMN statements.
func (d *postgresDriver) ColumnSQL(
	column schema.Column,
) (string, error) {

	dataType, err := d.dataType(column)
	if err != nil {
		return "", err
	}

	identity := ""
	if column.IsAutoIncrement() && column.Kind() == schema.IntegerKind {
		if d.supportsIdentity() {
			identity = "GENERATED BY DEFAULT AS IDENTITY"
		} else {
			dataType = serialTypes[dataType]
		}
	}

	collation := ""
	if column.Collation() != "" {
		collation = "COLLATE " + d.Quote(column.Collation())
	}

	return base.JoinClauses(
		d.Quote(column.Name()),
		dataType,
		identity,
		collation,
		base.NullableSQL(column),
		d.DefaultSQL(column, booleans),
		d.checkSQL(column),
	), nil
}

var serialTypes = map[string]string{
	"SMALLINT": "SMALLSERIAL",
	"INTEGER":  "SERIAL",
	"BIGINT":   "BIGSERIAL",
}

func (d *postgresDriver) dataType(
	column schema.Column,
) (string, error) {

	switch column.Kind() {
	case schema.IntegerKind:
		switch {
		case column.Bits() <= 16:
			return "SMALLINT", nil
		case column.Bits() <= 32:
			return "INTEGER", nil
		default:
			return "BIGINT", nil
		}

	case schema.BooleanKind:
		return "BOOLEAN", nil

	case schema.CharacterKind:
		if column.IsVarying() {
			return fmt.Sprintf("VARCHAR(%d)", column.Length()), nil
		}
		return fmt.Sprintf("CHAR(%d)", column.Length()), nil

	case schema.TextKind:
		return "TEXT", nil

	case schema.BlobKind, schema.BinaryKind:
		return "BYTEA", nil

	case schema.FloatKind:
		if column.Bits() > 23 {
			return "DOUBLE PRECISION", nil
		}
		return "REAL", nil

	case schema.DecimalKind:
		return fmt.Sprintf("NUMERIC(%d,%d)", column.Precision(), column.Scale()), nil

	case schema.TimestampKind, schema.DatetimeKind:
		return fmt.Sprintf("TIMESTAMP(%d)", column.Precision()), nil

	case schema.TimeKind:
		return fmt.Sprintf("TIME(%d)", column.Precision()), nil

	case schema.DateKind:
		return "DATE", nil

	case schema.YearKind:
		return "SMALLINT", nil

	case schema.UuidKind:
		return "UUID", nil

	case schema.JsonKind:
		return "JSONB", nil

	case schema.EnumKind:
		length := lo.Max(lo.Map(column.Values(), func(value string, _ int) int {
			return len([]rune(value))
		}))
		return fmt.Sprintf("VARCHAR(%d)", max(length, 1)), nil

	case schema.GeometryKind:
		name := geometryTypeNames[column.GeometryType()]
		if column.Srid() > 0 {
			return fmt.Sprintf("geometry(%s,%d)", name, column.Srid()), nil
		}
		if column.GeometryType() == schema.GeometryAny {
			return "geometry", nil
		}
		return fmt.Sprintf("geometry(%s)", name), nil

	case schema.SetKind:
		return "", driver.NewUnsupportedError("set column '%s' has no PostgreSQL representation", column.Name())
	}
	return "", driver.NewUnsupportedError("column '%s' of kind %s", column.Name(), column.Kind())
}

func booleans(
	value bool,
) string {

	if value {
		return "TRUE"
	}
	return "FALSE"
}

func stripCollation(
	dataType string,
) string {

	if i := strings.Index(dataType, " COLLATE "); i >= 0 {
		return dataType[:i]
	}
	return dataType
}
