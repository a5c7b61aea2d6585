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
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"strings"
)

var integerTypes = map[int]string{
	8:  "TINYINT",
	16: "SMALLINT",
	24: "MEDIUMINT",
	32: "INT",
	64: "BIGINT",
}

var textTypes = map[int]string{
	1: "TINYTEXT",
	2: "TEXT",
	3: "MEDIUMTEXT",
	4: "LONGTEXT",
}

var blobTypes = map[int]string{
	1: "TINYBLOB",
	2: "BLOB",
	3: "MEDIUMBLOB",
	4: "LONGBLOB",
}

func (d *mysqlDriver) GenerateTableSQL(
	table *schema.Table,
) ([]string, error) {

	components := make([]string, 0)
	for _, column := range table.Columns() {
		columnSql, err := d.ColumnSQL(column)
		if err != nil {
			return nil, errors.Errorf("table '%s': %w", table.Name(), err)
		}
		components = append(components, columnSql)
	}

	for _, primaryKey := range table.PrimaryKeys() {
		components = append(components, "PRIMARY KEY ("+d.QuoteColumns(primaryKey.Columns())+")")
	}

	for _, uniqueIndex := range table.UniqueIndexes() {
		name := d.GeneratedName(table.Name(), uniqueIndex.Name(), uniqueIndex.Columns(), "unique")
		components = append(components,
			"UNIQUE INDEX "+d.Quote(name)+" ("+d.QuoteColumns(uniqueIndex.Columns())+")",
		)
	}

	for _, index := range table.Indexes() {
		name := d.GeneratedName(table.Name(), index.Name(), index.Columns(), "index")
		components = append(components,
			"INDEX "+d.Quote(name)+" ("+d.QuoteColumns(index.Columns())+")",
		)
	}

	return []string{
		"CREATE TABLE " + d.QuoteTable(table.Name()) + " (" + strings.Join(components, ", ") + ")",
	}, nil
}

func (d *mysqlDriver) AddColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "ADD COLUMN " + columnSql, nil
}

func (d *mysqlDriver) DropColumnSQL(
	column string,
) string {

	return "DROP COLUMN " + d.Quote(column)
}

func (d *mysqlDriver) AlterColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "CHANGE COLUMN " + d.Quote(column.Name()) + " " + columnSql, nil
}

func (d *mysqlDriver) AlterTableSQL(
	table string, fragments []string,
) []string {

	return base.CombinedAlterTable(d.QuoteTable(table), fragments)
}

func (d *mysqlDriver) AddForeignKeySQL(
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

func (d *mysqlDriver) DropForeignKeySQL(
	table string, foreignKey schema.ForeignKey,
) (string, error) {

	if foreignKey.Name() == "" {
		return "", driver.NewUnsupportedError("dropping unnamed foreign key on table '%s'", table)
	}
	return "ALTER TABLE " + d.QuoteTable(table) + " DROP FOREIGN KEY " + d.Quote(foreignKey.Name()), nil
}

func (d *mysqlDriver) ColumnSQL(
	column schema.Column,
) (string, error) {

	dataType, err := d.dataType(column)
	if err != nil {
		return "", err
	}

	invisible := ""
	if column.IsInvisible() {
		invisible = "/*!80023 INVISIBLE */"
	}

	comment := ""
	if column.Comment() != "" {
		comment = "COMMENT " + d.QuoteValue(column.Comment()).String()
	}

	return base.JoinClauses(
		d.Quote(column.Name()),
		dataType,
		base.NullableSQL(column),
		d.DefaultSQL(column, base.NumericBooleans),
		invisible,
		comment,
	), nil
}

func (d *mysqlDriver) dataType(
	column schema.Column,
) (string, error) {

	switch column.Kind() {
	case schema.IntegerKind:
		return base.JoinClauses(
			integerTypes[column.Bits()],
			base.When(column.IsUnsigned(), "UNSIGNED"),
			base.When(column.IsAutoIncrement(), "AUTO_INCREMENT"),
		), nil

	case schema.BooleanKind:
		return "TINYINT", nil

	case schema.CharacterKind:
		keyword := "CHAR"
		if column.IsVarying() {
			keyword = "VARCHAR"
		}
		return fmt.Sprintf("%s(%d) COLLATE %s", keyword, column.Length(), d.collation(column)), nil

	case schema.TextKind:
		return textTypes[column.Size()] + " COLLATE " + d.collation(column), nil

	case schema.BlobKind:
		return blobTypes[column.Size()], nil

	case schema.BinaryKind:
		keyword := "BINARY"
		if column.IsVarying() {
			keyword = "VARBINARY"
		}
		return fmt.Sprintf("%s(%d)", keyword, column.Length()), nil

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

	case schema.EnumKind:
		return "ENUM(" + d.QuoteValues(column.Values()) + ")", nil

	case schema.SetKind:
		return "SET(" + d.QuoteValues(column.Values()) + ")", nil

	case schema.UuidKind:
		return "CHAR(36) COLLATE ascii_bin", nil

	case schema.JsonKind:
		return "JSON", nil

	case schema.GeometryKind:
		if column.Srid() > 0 {
			return fmt.Sprintf("%s /*!80003 SRID %d */", column.GeometryType(), column.Srid()), nil
		}
		return string(column.GeometryType()), nil
	}
	return "", driver.NewUnsupportedError("column '%s' of kind %s", column.Name(), column.Kind())
}

// collation returns the explicit collation or the binary collation
// matching the column's character set
func (d *mysqlDriver) collation(
	column schema.Column,
) string {

	if column.Collation() != "" {
		return column.Collation()
	}
	if column.IsNational() {
		return d.utf8Collation()
	}
	return "ascii_bin"
}

func withPrecision(
	keyword string, precision int,
) string {

	if precision == 0 {
		return keyword
	}
	return fmt.Sprintf("%s(%d)", keyword, precision)
}
