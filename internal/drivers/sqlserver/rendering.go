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
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/samber/lo"
	"slices"
	"strings"
)

var integerTypes = map[int]string{
	8:  "TINYINT",
	16: "SMALLINT",
	24: "INT",
	32: "INT",
	64: "BIGINT",
}

var textTypes = []string{"NVARCHAR(255)", "NVARCHAR(4000)", "NVARCHAR(MAX)", "NVARCHAR(MAX)"}

var blobTypes = []string{"VARBINARY(255)", "VARBINARY(8000)", "VARBINARY(MAX)", "VARBINARY(MAX)"}

func (d *sqlServerDriver) GenerateTableSQL(
	table *schema.Table,
) ([]string, error) {

	tableName := d.QuoteTable(table.Name())

	components := make([]string, 0)
	for _, column := range table.Columns() {
		columnSql, err := d.ColumnSQL(column)
		if err != nil {
			return nil, errors.Errorf("table '%s': %w", table.Name(), err)
		}
		components = append(components, columnSql)
	}

	if primaryKey, ok := table.PrimaryKey(); ok {
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
	return statements, nil
}

func (d *sqlServerDriver) AddColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "ADD " + columnSql, nil
}

func (d *sqlServerDriver) DropColumnSQL(
	column string,
) string {

	return "DROP COLUMN " + d.Quote(column)
}

// AlterColumnSQL changes type and nullability. Default and CHECK
// constraints are replaced by ColumnChangeSQL.
func (d *sqlServerDriver) AlterColumnSQL(
	column schema.Column,
) (string, error) {

	dataType, err := d.dataType(column)
	if err != nil {
		return "", err
	}
	return base.JoinClauses(
		"ALTER COLUMN",
		d.Quote(column.Name()),
		dataType,
		base.NullableSQL(column),
	), nil
}

func (d *sqlServerDriver) AlterTableSQL(
	table string, fragments []string,
) []string {

	return base.SeparateAlterTable(d.QuoteTable(table), fragments)
}

func (d *sqlServerDriver) AddForeignKeySQL(
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
		base.ReferentialActions(foreignKey, referentialAction),
	), nil
}

func (d *sqlServerDriver) DropForeignKeySQL(
	table string, foreignKey schema.ForeignKey,
) (string, error) {

	if foreignKey.Name() == "" {
		return "", driver.NewUnsupportedError("dropping unnamed foreign key on table '%s'", table)
	}
	return "ALTER TABLE " + d.QuoteTable(table) + " DROP CONSTRAINT " + d.Quote(foreignKey.Name()), nil
}

// ColumnSQL renders the column definition. Collations and comments
// are not rendered.
func (d *sqlServerDriver) ColumnSQL(
	column schema.Column,
) (string, error) {

	dataType, err := d.dataType(column)
	if err != nil {
		return "", err
	}

	return base.JoinClauses(
		d.Quote(column.Name()),
		dataType,
		base.When(column.IsAutoIncrement() && column.Kind() == schema.IntegerKind, "IDENTITY(1,1)"),
		base.NullableSQL(column),
		d.DefaultSQL(column, base.NumericBooleans),
		d.checkSQL(column),
	), nil
}

// ColumnChangeSQL drops the default and CHECK constraints of altered
// and dropped columns and adds the target's ones back afterward. SQL
// Server generates the constraint names and refuses to alter or drop
// a column they depend on.
func (d *sqlServerDriver) ColumnChangeSQL(
	table string, source, target schema.Column, altered bool,
) ([]string, []string, error) {

	switch {
	case source.Name() == "":
		return nil, nil, nil
	case target.Name() == "":
		if source.HasDefault() || source.Kind() == schema.EnumKind {
			return []string{d.dropColumnConstraintsSQL(table, source.Name())}, nil, nil
		}
		return nil, nil, nil
	case !altered:
		return nil, nil, nil
	}

	tableName := d.QuoteTable(table)
	after := make([]string, 0)
	if defaultSql := d.DefaultSQL(target, base.NumericBooleans); defaultSql != "" {
		after = append(after, "ALTER TABLE "+tableName+" ADD "+defaultSql+" FOR "+d.Quote(target.Name()))
	}
	if check := d.checkSQL(target); check != "" {
		after = append(after, "ALTER TABLE "+tableName+" ADD "+check)
	}
	return []string{d.dropColumnConstraintsSQL(table, source.Name())}, after, nil
}

func (d *sqlServerDriver) dropColumnConstraintsSQL(
	table, column string,
) string {

	tableName := d.QuoteTable(table)
	return fmt.Sprintf(dropColumnConstraints,
		d.QuoteValue("ALTER TABLE "+tableName+" DROP CONSTRAINT "),
		d.QuoteValue(tableName),
		d.QuoteValue(column),
	)
}

func (d *sqlServerDriver) checkSQL(
	column schema.Column,
) string {

	if column.Kind() != schema.EnumKind {
		return ""
	}
	values := slices.Clone(column.Values())
	slices.Sort(values)
	return "CHECK (" + d.Quote(column.Name()) + " IN (" + d.QuoteValues(values) + "))"
}

func (d *sqlServerDriver) dataType(
	column schema.Column,
) (string, error) {

	switch column.Kind() {
	case schema.IntegerKind:
		return integerTypes[column.Bits()], nil

	case schema.BooleanKind:
		return "BIT", nil

	case schema.CharacterKind:
		name := "CHAR"
		if column.IsVarying() {
			name = "VARCHAR"
		}
		if column.IsNational() {
			name = "N" + name
		}
		return fmt.Sprintf("%s(%d)", name, column.Length()), nil

	case schema.TextKind:
		return textTypes[column.Size()-1], nil

	case schema.BlobKind:
		return blobTypes[column.Size()-1], nil

	case schema.BinaryKind:
		if column.IsVarying() {
			return fmt.Sprintf("VARBINARY(%d)", column.Length()), nil
		}
		return fmt.Sprintf("BINARY(%d)", column.Length()), nil

	case schema.FloatKind:
		if column.Bits() > 24 {
			return "FLOAT", nil
		}
		return "REAL", nil

	case schema.DecimalKind:
		return fmt.Sprintf("DECIMAL(%d,%d)", column.Precision(), column.Scale()), nil

	case schema.TimestampKind, schema.DatetimeKind:
		return fmt.Sprintf("DATETIME2(%d)", column.Precision()), nil

	case schema.TimeKind:
		return fmt.Sprintf("TIME(%d)", column.Precision()), nil

	case schema.DateKind:
		return "DATE", nil

	case schema.YearKind:
		return "SMALLINT", nil

	case schema.UuidKind:
		return "UNIQUEIDENTIFIER", nil

	case schema.JsonKind:
		return "NVARCHAR(MAX)", nil

	case schema.EnumKind:
		length := lo.Max(lo.Map(column.Values(), func(value string, _ int) int {
			return len([]rune(value))
		}))
		return fmt.Sprintf("NVARCHAR(%d)", max(length, 1)), nil

	case schema.GeometryKind:
		return "GEOMETRY", nil

	case schema.SetKind:
		return "", driver.NewUnsupportedError("set column '%s' has no SQL Server representation", column.Name())
	}
	return "", driver.NewUnsupportedError("column '%s' of kind %s", column.Name(), column.Kind())
}

// NormalizeReferentialAction maps RESTRICT to NO ACTION, which is the
// closest SQL Server offers
func (d *sqlServerDriver) NormalizeReferentialAction(
	action schema.ReferentialAction,
) schema.ReferentialAction {

	return normalizeReferentialAction(action)
}

func normalizeReferentialAction(
	action schema.ReferentialAction,
) schema.ReferentialAction {

	if action == schema.Restrict {
		return schema.NoAction
	}
	return action
}

func referentialAction(
	action schema.ReferentialAction,
) string {

	return normalizeReferentialAction(action).String()
}
