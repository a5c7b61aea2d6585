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
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/samber/lo"
	"strings"
)

var integerTypes = map[int]string{
	8:  "TINYINT",
	16: "SMALLINT",
	24: "MEDIUMINT",
	32: "INTEGER",
	64: "BIGINT",
}

var textTypes = []string{"TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT"}

var blobTypes = []string{"TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB"}

// GenerateTableSQL renders the CREATE TABLE statement with inline
// foreign keys, followed by one CREATE INDEX statement per index.
// An auto increment column carries the primary key itself.
func (d *sqliteDriver) GenerateTableSQL(
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

	autoIncrement := lo.ContainsBy(table.Columns(), func(column schema.Column) bool {
		return isRowIdAlias(column)
	})
	if primaryKey, ok := table.PrimaryKey(); ok && !autoIncrement {
		components = append(components, "PRIMARY KEY ("+d.QuoteColumns(primaryKey.Columns())+")")
	}

	for _, foreignKey := range table.ForeignKeys() {
		components = append(components, d.foreignKeySql(foreignKey))
	}

	statements := []string{
		"CREATE TABLE " + tableName + " (" + strings.Join(components, ", ") + ")",
	}

	for _, uniqueIndex := range table.UniqueIndexes() {
		name := d.GeneratedName(table.Name(), uniqueIndex.Name(), uniqueIndex.Columns(), "unique")
		statements = append(statements,
			"CREATE UNIQUE INDEX "+d.Quote(name)+" ON "+tableName+" ("+d.QuoteColumns(uniqueIndex.Columns())+")",
		)
	}

	for _, index := range table.Indexes() {
		name := d.GeneratedName(table.Name(), index.Name(), index.Columns(), "index")
		statements = append(statements,
			"CREATE INDEX "+d.Quote(name)+" ON "+tableName+" ("+d.QuoteColumns(index.Columns())+")",
		)
	}
	return statements, nil
}

func (d *sqliteDriver) AddColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "ADD COLUMN " + columnSql, nil
}

func (d *sqliteDriver) DropColumnSQL(
	column string,
) string {

	return "DROP COLUMN " + d.Quote(column)
}

func (d *sqliteDriver) AlterColumnSQL(
	column schema.Column,
) (string, error) {

	return "", driver.NewUnsupportedError("altering column '%s' requires rebuilding the table", column.Name())
}

func (d *sqliteDriver) AlterTableSQL(
	table string, fragments []string,
) []string {

	return base.SeparateAlterTable(d.QuoteTable(table), fragments)
}

func (d *sqliteDriver) AddForeignKeySQL(
	table string, _ schema.ForeignKey,
) (string, error) {

	return "", driver.NewUnsupportedError("adding a foreign key to existing table '%s'", table)
}

func (d *sqliteDriver) DropForeignKeySQL(
	table string, _ schema.ForeignKey,
) (string, error) {

	return "", driver.NewUnsupportedError("dropping a foreign key from table '%s'", table)
}

// ColumnSQL renders the column definition. Collations, comments and
// invisibility have no SQLite counterpart and are left out.
func (d *sqliteDriver) ColumnSQL(
	column schema.Column,
) (string, error) {

	if isRowIdAlias(column) {
		return base.JoinClauses(
			d.Quote(column.Name()),
			"INTEGER PRIMARY KEY AUTOINCREMENT",
			base.NullableSQL(column),
		), nil
	}

	dataType, err := d.dataType(column)
	if err != nil {
		return "", err
	}

	check := ""
	if column.Kind() == schema.EnumKind {
		check = "CHECK (" + d.Quote(column.Name()) + " IN (" + d.QuoteValues(column.Values()) + "))"
	}

	return base.JoinClauses(
		d.Quote(column.Name()),
		dataType,
		base.NullableSQL(column),
		d.DefaultSQL(column, base.NumericBooleans),
		check,
	), nil
}

func (d *sqliteDriver) foreignKeySql(
	foreignKey schema.ForeignKey,
) string {

	constraint := ""
	if foreignKey.Name() != "" {
		constraint = "CONSTRAINT " + d.Quote(foreignKey.Name())
	}

	return base.JoinClauses(
		constraint,
		"FOREIGN KEY ("+d.QuoteColumns(foreignKey.Columns())+")",
		"REFERENCES "+d.QuoteTable(foreignKey.ForeignTable())+" ("+d.QuoteColumns(foreignKey.ForeignColumns())+")",
		base.ReferentialActions(foreignKey, schema.ReferentialAction.String),
	)
}

func (d *sqliteDriver) dataType(
	column schema.Column,
) (string, error) {

	switch column.Kind() {
	case schema.IntegerKind:
		return integerTypes[column.Bits()] + base.When(column.IsUnsigned(), " UNSIGNED"), nil

	case schema.BooleanKind:
		return "BOOLEAN", nil

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
		if column.Bits() > 23 {
			return "DOUBLE", nil
		}
		return "FLOAT", nil

	case schema.DecimalKind:
		return fmt.Sprintf("DECIMAL(%d,%d)", column.Precision(), column.Scale()), nil

	case schema.TimestampKind:
		return withPrecision("TIMESTAMP", column.Precision()), nil

	case schema.DatetimeKind:
		return withPrecision("DATETIME", column.Precision()), nil

	case schema.TimeKind:
		return withPrecision("TIME", column.Precision()), nil

	case schema.DateKind:
		return "DATE", nil

	case schema.YearKind:
		return "YEAR", nil

	case schema.UuidKind:
		return "UUID", nil

	case schema.JsonKind:
		return "JSON", nil

	case schema.EnumKind:
		return "ENUM", nil

	case schema.GeometryKind:
		return string(column.GeometryType()), nil

	case schema.SetKind:
		return "", driver.NewUnsupportedError("set column '%s' has no SQLite representation", column.Name())
	}
	return "", driver.NewUnsupportedError("column '%s' of kind %s", column.Name(), column.Kind())
}

// isRowIdAlias reports whether the column becomes the INTEGER
// PRIMARY KEY AUTOINCREMENT alias of the rowid
func isRowIdAlias(
	column schema.Column,
) bool {

	return column.Kind() == schema.IntegerKind && column.IsAutoIncrement()
}

func withPrecision(
	dataType string, precision int,
) string {

	if precision > 0 {
		return fmt.Sprintf("%s(%d)", dataType, precision)
	}
	return dataType
}
