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
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/samber/lo"
	"strconv"
)

func init() {
	driver.RegisterDriver(config.SQLite, NewDriver)
}

type sqliteDriver struct {
	*base.Base
}

func NewDriver(
	handle driver.Handle, prefix string,
) (driver.Driver, error) {

	b, err := base.New(handle, prefix, "SQLiteDriver", `"`, `"`)
	if err != nil {
		return nil, err
	}
	return &sqliteDriver{Base: b}, nil
}

func (d *sqliteDriver) ListTables(
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

func (d *sqliteDriver) ListColumns(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "column_name", queryListColumns, d.tableBindings(table))
}

// ListPrimaryKeys returns a single unnamed entry if the table has a
// primary key. SQLite does not keep the constraint name.
func (d *sqliteDriver) ListPrimaryKeys(
	ctx context.Context, table string,
) ([]string, error) {

	columns, err := d.Runner().QueryStrings(ctx, "column_name", queryReadPrimaryKeyColumns, d.tableBindings(table))
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return []string{}, nil
	}
	return []string{""}, nil
}

func (d *sqliteDriver) ListUniqueIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "index_name", queryListUniqueIndexes, d.tableBindings(table))
}

func (d *sqliteDriver) ListIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "index_name", queryListIndexes, d.tableBindings(table))
}

// ListForeignKeys returns the catalog ids of the foreign keys, as
// SQLite does not keep constraint names either
func (d *sqliteDriver) ListForeignKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "key_name", queryListForeignKeys, d.tableBindings(table))
}

func (d *sqliteDriver) IntrospectSchema(
	ctx context.Context,
) (*schema.Schema, error) {

	return base.IntrospectSchema(ctx, d)
}

func (d *sqliteDriver) IntrospectTable(
	ctx context.Context, table string,
) (*schema.Table, error) {

	d.Logger().Verbosef("Introspecting table %s", d.TableName(table))
	return base.IntrospectTable(ctx, d, table)
}

func (d *sqliteDriver) IntrospectColumn(
	ctx context.Context, table, column string,
) (schema.Column, error) {

	row, found, err := d.Runner().QueryRow(ctx, queryReadColumn, statement.Named(map[string]any{
		"table_name":  d.TableName(table),
		"column_name": column,
	}))
	if err != nil {
		return schema.Column{}, err
	}
	if !found {
		return schema.Column{}, errors.Errorf("column '%s.%s' not found", table, column)
	}

	createSql, err := d.createTableSql(ctx, table)
	if err != nil {
		return schema.Column{}, err
	}
	return d.columnFromRow(table, row, createSql)
}

func (d *sqliteDriver) IntrospectPrimaryKey(
	ctx context.Context, table, _ string,
) (schema.PrimaryKey, error) {

	columns, err := d.Runner().QueryStrings(ctx, "column_name", queryReadPrimaryKeyColumns, d.tableBindings(table))
	if err != nil {
		return schema.PrimaryKey{}, err
	}
	if len(columns) == 0 {
		return schema.PrimaryKey{}, errors.Errorf("table '%s' has no primary key", table)
	}
	return schema.NewPrimaryKey(columns...), nil
}

func (d *sqliteDriver) IntrospectUniqueIndex(
	ctx context.Context, table, key string,
) (schema.UniqueIndex, error) {

	columns, err := d.indexColumns(ctx, table, key)
	if err != nil {
		return schema.UniqueIndex{}, err
	}
	return schema.NewUniqueIndex(columns...).Named(key), nil
}

func (d *sqliteDriver) IntrospectIndex(
	ctx context.Context, table, key string,
) (schema.Index, error) {

	columns, err := d.indexColumns(ctx, table, key)
	if err != nil {
		return schema.Index{}, err
	}
	return schema.NewIndex(columns...).Named(key), nil
}

// IntrospectForeignKey reads the foreign key by its catalog id. The
// key is returned unnamed. A reference without explicit columns
// points to the primary key of the foreign table.
func (d *sqliteDriver) IntrospectForeignKey(
	ctx context.Context, table, key string,
) (schema.ForeignKey, error) {

	id, err := strconv.Atoi(key)
	if err != nil {
		return schema.ForeignKey{}, errors.Errorf("foreign key id '%s' on table '%s': %w", key, table, err)
	}

	rows, err := d.Runner().Query(ctx, queryReadForeignKey, statement.Named(map[string]any{
		"table_name": d.TableName(table),
		"key_id":     id,
	}))
	if err != nil {
		return schema.ForeignKey{}, err
	}
	if len(rows) == 0 {
		return schema.ForeignKey{}, errors.Errorf("foreign key '%s' on table '%s' not found", key, table)
	}

	foreignTable := d.StripPrefix(rows[0].String("foreign_table"))
	localColumns := lo.Map(rows, func(row statement.Row, _ int) string {
		return row.String("column_name")
	})

	var foreignColumns []string
	if rows[0].IsNull("foreign_column") {
		foreignColumns, err = d.Runner().QueryStrings(
			ctx, "column_name", queryReadPrimaryKeyColumns, d.tableBindings(foreignTable),
		)
		if err != nil {
			return schema.ForeignKey{}, err
		}
	} else {
		foreignColumns = lo.Map(rows, func(row statement.Row, _ int) string {
			return row.String("foreign_column")
		})
	}

	onUpdate, err := schema.ParseReferentialAction(rows[0].String("update_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}
	onDelete, err := schema.ParseReferentialAction(rows[0].String("delete_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}

	return schema.NewForeignKey(localColumns, foreignTable, foreignColumns...).
		OnUpdate(onUpdate).
		OnDelete(onDelete), nil
}

func (d *sqliteDriver) InlinesForeignKeys() bool {
	return true
}

func (d *sqliteDriver) indexColumns(
	ctx context.Context, table, key string,
) ([]string, error) {

	columns, err := d.Runner().QueryStrings(ctx, "column_name", queryReadIndexColumns, statement.Named(map[string]any{
		"key_name": key,
	}))
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("index '%s' on table '%s' not found", key, table)
	}
	return columns, nil
}

func (d *sqliteDriver) createTableSql(
	ctx context.Context, table string,
) (string, error) {

	row, found, err := d.Runner().QueryRow(ctx, queryReadCreateTable, d.tableBindings(table))
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.Errorf("table '%s' not found", table)
	}
	return row.String("create_sql"), nil
}

func (d *sqliteDriver) tableBindings(
	table string,
) statement.Bindings {

	return statement.Named(map[string]any{
		"table_name": d.TableName(table),
	})
}
