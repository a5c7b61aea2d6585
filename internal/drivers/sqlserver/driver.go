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
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/samber/lo"
)

func init() {
	driver.RegisterDriver(config.SQLServer, NewDriver)
}

type sqlServerDriver struct {
	*base.Base
}

func NewDriver(
	handle driver.Handle, prefix string,
) (driver.Driver, error) {

	b, err := base.New(handle, prefix, "SQLServerDriver", "[", "]")
	if err != nil {
		return nil, err
	}
	return &sqlServerDriver{Base: b}, nil
}

func (d *sqlServerDriver) ListTables(
	ctx context.Context,
) ([]string, error) {

	tables, err := d.Runner().QueryStrings(ctx, "table_name", queryListTables, statement.Named(map[string]any{
		"prefix": d.PrefixPattern(),
	}))
	if err != nil {
		return nil, err
	}
	return d.FilterPrefixed(tables), nil
}

func (d *sqlServerDriver) ListColumns(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "column_name", queryListColumns, d.tableBindings(table))
}

func (d *sqlServerDriver) ListPrimaryKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "PRIMARY KEY")
}

func (d *sqlServerDriver) ListUniqueIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "UNIQUE")
}

func (d *sqlServerDriver) ListIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "index_name", queryListIndexes, d.tableBindings(table))
}

func (d *sqlServerDriver) ListForeignKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "FOREIGN KEY")
}

func (d *sqlServerDriver) listConstraints(
	ctx context.Context, table, constraintType string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "constraint_name", queryListConstraints, statement.Named(map[string]any{
		"table_name":      d.TableName(table),
		"constraint_type": constraintType,
	}))
}

func (d *sqlServerDriver) IntrospectSchema(
	ctx context.Context,
) (*schema.Schema, error) {

	return base.IntrospectSchema(ctx, d)
}

func (d *sqlServerDriver) IntrospectTable(
	ctx context.Context, table string,
) (*schema.Table, error) {

	d.Logger().Verbosef("Introspecting table %s", d.TableName(table))
	return base.IntrospectTable(ctx, d, table)
}

func (d *sqlServerDriver) IntrospectColumn(
	ctx context.Context, table, column string,
) (schema.Column, error) {

	bindings := statement.Named(map[string]any{
		"table_name":  d.TableName(table),
		"column_name": column,
	})

	row, found, err := d.Runner().QueryRow(ctx, queryReadColumn, bindings)
	if err != nil {
		return schema.Column{}, err
	}
	if !found {
		return schema.Column{}, errors.Errorf("column '%s.%s' not found", table, column)
	}

	checks, err := d.Runner().QueryStrings(ctx, "definition", queryReadColumnChecks, bindings)
	if err != nil {
		return schema.Column{}, err
	}
	return columnFromRow(table, row, checks)
}

func (d *sqlServerDriver) IntrospectPrimaryKey(
	ctx context.Context, table, key string,
) (schema.PrimaryKey, error) {

	columns, err := d.keyColumns(ctx, queryReadConstraintColumns, table, key)
	if err != nil {
		return schema.PrimaryKey{}, err
	}
	return schema.NewPrimaryKey(columns...).Named(key), nil
}

func (d *sqlServerDriver) IntrospectUniqueIndex(
	ctx context.Context, table, key string,
) (schema.UniqueIndex, error) {

	columns, err := d.keyColumns(ctx, queryReadConstraintColumns, table, key)
	if err != nil {
		return schema.UniqueIndex{}, err
	}
	return schema.NewUniqueIndex(columns...).Named(key), nil
}

func (d *sqlServerDriver) IntrospectIndex(
	ctx context.Context, table, key string,
) (schema.Index, error) {

	columns, err := d.keyColumns(ctx, queryReadIndexColumns, table, key)
	if err != nil {
		return schema.Index{}, err
	}
	return schema.NewIndex(columns...).Named(key), nil
}

func (d *sqlServerDriver) IntrospectForeignKey(
	ctx context.Context, table, key string,
) (schema.ForeignKey, error) {

	rows, err := d.Runner().Query(ctx, queryReadForeignKey, statement.Named(map[string]any{
		"table_name": d.TableName(table),
		"key_name":   key,
	}))
	if err != nil {
		return schema.ForeignKey{}, err
	}
	if len(rows) == 0 {
		return schema.ForeignKey{}, errors.Errorf("foreign key '%s' on table '%s' not found", key, table)
	}

	localColumns := lo.Map(rows, func(row statement.Row, _ int) string {
		return row.String("column_name")
	})
	foreignColumns := lo.Map(rows, func(row statement.Row, _ int) string {
		return row.String("foreign_column")
	})

	// sys.foreign_keys reports NO_ACTION, CASCADE, SET_NULL and SET_DEFAULT
	onUpdate, err := schema.ParseReferentialAction(rows[0].String("update_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}
	onDelete, err := schema.ParseReferentialAction(rows[0].String("delete_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}

	return schema.NewForeignKey(localColumns, d.StripPrefix(rows[0].String("foreign_table")), foreignColumns...).
		Named(key).
		OnUpdate(onUpdate).
		OnDelete(onDelete), nil
}

func (d *sqlServerDriver) InlinesForeignKeys() bool {
	return false
}

func (d *sqlServerDriver) keyColumns(
	ctx context.Context, query, table, key string,
) ([]string, error) {

	columns, err := d.Runner().QueryStrings(ctx, "column_name", query, statement.Named(map[string]any{
		"table_name": d.TableName(table),
		"key_name":   key,
	}))
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("key '%s' on table '%s' not found", key, table)
	}
	return columns, nil
}

func (d *sqlServerDriver) tableBindings(
	table string,
) statement.Bindings {

	return statement.Named(map[string]any{
		"table_name": d.TableName(table),
	})
}
