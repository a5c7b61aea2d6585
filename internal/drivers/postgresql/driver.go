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
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/drivers/base"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/noctarius/schemadiff/spi/version"
	"github.com/samber/lo"
)

func init() {
	driver.RegisterDriver(config.PostgreSQL, NewDriver)
}

type postgresDriver struct {
	*base.Base
}

func NewDriver(
	handle driver.Handle, prefix string,
) (driver.Driver, error) {

	b, err := base.New(handle, prefix, "PostgreSQLDriver", `"`, `"`)
	if err != nil {
		return nil, err
	}
	return &postgresDriver{Base: b}, nil
}

func (d *postgresDriver) ListTables(
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

func (d *postgresDriver) ListColumns(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "column_name", queryListColumns, statement.Named(map[string]any{
		"table_name": d.TableName(table),
	}))
}

func (d *postgresDriver) ListPrimaryKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "PRIMARY KEY")
}

func (d *postgresDriver) ListUniqueIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "UNIQUE")
}

func (d *postgresDriver) ListIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "index_name", queryListIndexes, statement.Named(map[string]any{
		"table_name": d.TableName(table),
	}))
}

func (d *postgresDriver) ListForeignKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "FOREIGN KEY")
}

func (d *postgresDriver) listConstraints(
	ctx context.Context, table, constraintType string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "constraint_name", queryListConstraints, statement.Named(map[string]any{
		"table_name":      d.TableName(table),
		"constraint_type": constraintType,
	}))
}

func (d *postgresDriver) IntrospectSchema(
	ctx context.Context,
) (*schema.Schema, error) {

	return base.IntrospectSchema(ctx, d)
}

func (d *postgresDriver) IntrospectTable(
	ctx context.Context, table string,
) (*schema.Table, error) {

	d.Logger().Verbosef("Introspecting table %s", d.TableName(table))
	return base.IntrospectTable(ctx, d, table)
}

func (d *postgresDriver) IntrospectColumn(
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

	checks, err := d.Runner().QueryStrings(ctx, "definition", queryReadColumnCheck, bindings)
	if err != nil {
		return schema.Column{}, err
	}
	return columnFromRow(table, row, checks)
}

func (d *postgresDriver) IntrospectPrimaryKey(
	ctx context.Context, table, key string,
) (schema.PrimaryKey, error) {

	columns, err := d.keyColumns(ctx, queryReadConstraintColumns, table, key)
	if err != nil {
		return schema.PrimaryKey{}, err
	}
	return schema.NewPrimaryKey(columns...).Named(key), nil
}

func (d *postgresDriver) IntrospectUniqueIndex(
	ctx context.Context, table, key string,
) (schema.UniqueIndex, error) {

	columns, err := d.keyColumns(ctx, queryReadConstraintColumns, table, key)
	if err != nil {
		return schema.UniqueIndex{}, err
	}
	return schema.NewUniqueIndex(columns...).Named(key), nil
}

func (d *postgresDriver) IntrospectIndex(
	ctx context.Context, table, key string,
) (schema.Index, error) {

	columns, err := d.keyColumns(ctx, queryReadIndexColumns, table, key)
	if err != nil {
		return schema.Index{}, err
	}
	return schema.NewIndex(columns...).Named(key), nil
}

func (d *postgresDriver) IntrospectForeignKey(
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

	onUpdate, err := parseActionCode(rows[0].String("update_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}
	onDelete, err := parseActionCode(rows[0].String("delete_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}

	foreignTable := d.StripPrefix(rows[0].String("foreign_table"))
	return schema.NewForeignKey(localColumns, foreignTable, foreignColumns...).
		Named(key).
		OnUpdate(onUpdate).
		OnDelete(onDelete), nil
}

func (d *postgresDriver) keyColumns(
	ctx context.Context, query, table, key string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "column_name", query, statement.Named(map[string]any{
		"table_name": d.TableName(table),
		"key_name":   key,
	}))
}

func (d *postgresDriver) InlinesForeignKeys() bool {
	return false
}

// supportsIdentity reports whether identity columns are available,
// older servers fall back to serial types
func (d *postgresDriver) supportsIdentity() bool {
	return d.ServerVersion() >= version.PostgreSQL_10_VERSION
}

// parseActionCode maps pg_constraint.confupdtype / confdeltype
func parseActionCode(
	code string,
) (schema.ReferentialAction, error) {

	switch code {
	case "a", "":
		return schema.NoAction, nil
	case "r":
		return schema.Restrict, nil
	case "c":
		return schema.Cascade, nil
	case "n":
		return schema.SetNull, nil
	case "d":
		return schema.SetDefault, nil
	}
	return schema.NoAction, errors.Errorf("%w: action code '%s'", schema.ErrInvalidAction, code)
}
