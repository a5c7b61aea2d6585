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

package fakes

import (
	"context"
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/samber/lo"
	"strings"
)

var ErrNotIntrospected = errors.New("fake driver only introspects whole schemas")

// Driver is a driver.Driver which "introspects" a fixed source
// schema and renders a compact pseudo DDL, used to test the diff
// engine independent of any dialect
type Driver struct {
	Source        *schema.Schema
	InlineForeign bool
	Introspected  int
	// Comments enables COMMENT statements for changed column comments
	Comments bool
	// StoredActions maps referential actions to the action the
	// database reports back for them
	StoredActions map[schema.ReferentialAction]schema.ReferentialAction
}

func NewDriver(
	source *schema.Schema,
) *Driver {

	return &Driver{Source: source}
}

func (d *Driver) ListTables(
	_ context.Context,
) ([]string, error) {

	return d.Source.TableNames(), nil
}

func (d *Driver) ListColumns(
	_ context.Context, table string,
) ([]string, error) {

	t, ok := d.Source.Table(table)
	if !ok {
		return []string{}, nil
	}
	return t.ColumnNames(), nil
}

func (d *Driver) ListPrimaryKeys(
	_ context.Context, _ string,
) ([]string, error) {

	return nil, ErrNotIntrospected
}

func (d *Driver) ListUniqueIndexes(
	_ context.Context, _ string,
) ([]string, error) {

	return nil, ErrNotIntrospected
}

func (d *Driver) ListIndexes(
	_ context.Context, _ string,
) ([]string, error) {

	return nil, ErrNotIntrospected
}

func (d *Driver) ListForeignKeys(
	_ context.Context, _ string,
) ([]string, error) {

	return nil, ErrNotIntrospected
}

func (d *Driver) IntrospectSchema(
	_ context.Context,
) (*schema.Schema, error) {

	d.Introspected++
	return d.Source, nil
}

func (d *Driver) IntrospectTable(
	_ context.Context, table string,
) (*schema.Table, error) {

	t, ok := d.Source.Table(table)
	if !ok {
		return nil, errors.Errorf("table '%s' not found", table)
	}
	return t, nil
}

func (d *Driver) IntrospectColumn(
	_ context.Context, _, _ string,
) (schema.Column, error) {

	return schema.Column{}, ErrNotIntrospected
}

func (d *Driver) IntrospectPrimaryKey(
	_ context.Context, _, _ string,
) (schema.PrimaryKey, error) {

	return schema.PrimaryKey{}, ErrNotIntrospected
}

func (d *Driver) IntrospectUniqueIndex(
	_ context.Context, _, _ string,
) (schema.UniqueIndex, error) {

	return schema.UniqueIndex{}, ErrNotIntrospected
}

func (d *Driver) IntrospectIndex(
	_ context.Context, _, _ string,
) (schema.Index, error) {

	return schema.Index{}, ErrNotIntrospected
}

func (d *Driver) IntrospectForeignKey(
	_ context.Context, _, _ string,
) (schema.ForeignKey, error) {

	return schema.ForeignKey{}, ErrNotIntrospected
}

func (d *Driver) GenerateTableSQL(
	table *schema.Table,
) ([]string, error) {

	columns := make([]string, 0)
	for _, column := range table.Columns() {
		columnSql, err := d.ColumnSQL(column)
		if err != nil {
			return nil, err
		}
		columns = append(columns, columnSql)
	}
	if d.InlineForeign {
		for _, foreignKey := range table.ForeignKeys() {
			columns = append(columns, foreignKeySql(foreignKey))
		}
	}
	return []string{"CREATE TABLE " + table.Name() + " (" + strings.Join(columns, ", ") + ")"}, nil
}

func (d *Driver) AddColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "ADD " + columnSql, nil
}

func (d *Driver) DropColumnSQL(
	column string,
) string {

	return "DROP " + column
}

func (d *Driver) AlterColumnSQL(
	column schema.Column,
) (string, error) {

	columnSql, err := d.ColumnSQL(column)
	if err != nil {
		return "", err
	}
	return "ALTER " + columnSql, nil
}

func (d *Driver) AlterTableSQL(
	table string, fragments []string,
) []string {

	return []string{"ALTER TABLE " + table + " " + strings.Join(fragments, ", ")}
}

// ColumnSQL renders name, kind, length, nullability and default
func (d *Driver) ColumnSQL(
	column schema.Column,
) (string, error) {

	if err := column.Err(); err != nil {
		return "", err
	}

	columnSql := column.Name() + " " + strings.ToUpper(column.Kind().String())
	if column.Length() > 0 {
		columnSql += fmt.Sprintf("(%d)", column.Length())
	}
	columnSql += lo.Ternary(column.IsNullable(), " NULL", " NOT NULL")
	if column.HasDefault() {
		columnSql += fmt.Sprintf(" DEFAULT %v", column.Default())
	}
	return columnSql, nil
}

func (d *Driver) AddForeignKeySQL(
	table string, foreignKey schema.ForeignKey,
) (string, error) {

	return "ALTER TABLE " + table + " ADD " + foreignKeySql(foreignKey), nil
}

func (d *Driver) DropForeignKeySQL(
	table string, foreignKey schema.ForeignKey,
) (string, error) {

	if foreignKey.Name() == "" {
		return "", driver.NewUnsupportedError("dropping unnamed foreign key on table '%s'", table)
	}
	return "ALTER TABLE " + table + " DROP FK " + foreignKey.Name(), nil
}

func (d *Driver) ColumnChangeSQL(
	table string, source, target schema.Column, _ bool,
) ([]string, []string, error) {

	if !d.Comments || target.Name() == "" || source.Comment() == target.Comment() {
		return nil, nil, nil
	}
	return nil, []string{
		fmt.Sprintf("COMMENT %s.%s %s", table, target.Name(), driver.QuoteLiteral(target.Comment())),
	}, nil
}

func (d *Driver) NormalizeReferentialAction(
	action schema.ReferentialAction,
) schema.ReferentialAction {

	if stored, ok := d.StoredActions[action]; ok {
		return stored
	}
	return action
}

func (d *Driver) InlinesForeignKeys() bool {
	return d.InlineForeign
}

func (d *Driver) QuoteIdentifier(
	identifier string,
) schema.Expression {

	return schema.Raw(identifier)
}

func (d *Driver) QuoteValue(
	value string,
) schema.Expression {

	return schema.Raw(driver.QuoteLiteral(value))
}

func foreignKeySql(
	foreignKey schema.ForeignKey,
) string {

	return fmt.Sprintf("FK %s(%s) -> %s(%s)",
		foreignKey.Name(),
		strings.Join(foreignKey.Columns(), ","),
		foreignKey.ForeignTable(),
		strings.Join(foreignKey.ForeignColumns(), ","),
	)
}
