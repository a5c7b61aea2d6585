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
	"context"
	"fmt"
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
	driver.RegisterDriver(config.MySQL, NewDriver)
}

// mysqlDriver is the driver for MySQL and MariaDB servers
type mysqlDriver struct {
	*base.Base
}

func NewDriver(
	handle driver.Handle, prefix string,
) (driver.Driver, error) {

	b, err := base.New(handle, prefix, "MySQLDriver", "`", "`")
	if err != nil {
		return nil, err
	}
	return &mysqlDriver{Base: b}, nil
}

func (d *mysqlDriver) ListTables(
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

func (d *mysqlDriver) ListColumns(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "column_name", queryListColumns, statement.Named(map[string]any{
		"table_name": d.TableName(table),
	}))
}

func (d *mysqlDriver) ListPrimaryKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "PRIMARY KEY")
}

func (d *mysqlDriver) ListUniqueIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "UNIQUE")
}

func (d *mysqlDriver) ListIndexes(
	ctx context.Context, table string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "index_name", queryListIndexes, statement.Named(map[string]any{
		"table_name": d.TableName(table),
	}))
}

func (d *mysqlDriver) ListForeignKeys(
	ctx context.Context, table string,
) ([]string, error) {

	return d.listConstraints(ctx, table, "FOREIGN KEY")
}

func (d *mysqlDriver) listConstraints(
	ctx context.Context, table, constraintType string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "constraint_name", queryListConstraints, statement.Named(map[string]any{
		"table_name":      d.TableName(table),
		"constraint_type": constraintType,
	}))
}

func (d *mysqlDriver) IntrospectSchema(
	ctx context.Context,
) (*schema.Schema, error) {

	return base.IntrospectSchema(ctx, d)
}

func (d *mysqlDriver) IntrospectTable(
	ctx context.Context, table string,
) (*schema.Table, error) {

	d.Logger().Verbosef("Introspecting table %s", d.TableName(table))
	return base.IntrospectTable(ctx, d, table)
}

func (d *mysqlDriver) IntrospectColumn(
	ctx context.Context, table, column string,
) (schema.Column, error) {

	srsIdColumn := ""
	if d.supportsSrid() {
		srsIdColumn = querySrsIdColumn
	}

	row, found, err := d.Runner().QueryRow(
		ctx, fmt.Sprintf(queryReadColumnTemplate, srsIdColumn), statement.Named(map[string]any{
			"table_name":  d.TableName(table),
			"column_name": column,
		}),
	)
	if err != nil {
		return schema.Column{}, err
	}
	if !found {
		return schema.Column{}, errors.Errorf("column '%s.%s' not found", table, column)
	}
	return d.columnFromRow(table, row)
}

func (d *mysqlDriver) IntrospectPrimaryKey(
	ctx context.Context, table, key string,
) (schema.PrimaryKey, error) {

	columns, err := d.keyColumns(ctx, queryReadPrimaryKeyColumns, table, key)
	if err != nil {
		return schema.PrimaryKey{}, err
	}
	// primary keys are always named PRIMARY and the name can't be changed
	return schema.NewPrimaryKey(columns...), nil
}

func (d *mysqlDriver) IntrospectUniqueIndex(
	ctx context.Context, table, key string,
) (schema.UniqueIndex, error) {

	columns, err := d.keyColumns(ctx, queryReadIndexColumns, table, key)
	if err != nil {
		return schema.UniqueIndex{}, err
	}
	return schema.NewUniqueIndex(columns...).Named(key), nil
}

func (d *mysqlDriver) IntrospectIndex(
	ctx context.Context, table, key string,
) (schema.Index, error) {

	columns, err := d.keyColumns(ctx, queryReadIndexColumns, table, key)
	if err != nil {
		return schema.Index{}, err
	}
	return schema.NewIndex(columns...).Named(key), nil
}

func (d *mysqlDriver) IntrospectForeignKey(
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
		return row.String("referenced_column_name")
	})

	onUpdate, err := schema.ParseReferentialAction(rows[0].String("update_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}
	onDelete, err := schema.ParseReferentialAction(rows[0].String("delete_rule"))
	if err != nil {
		return schema.ForeignKey{}, err
	}

	foreignTable := d.StripPrefix(rows[0].String("referenced_table_name"))
	return schema.NewForeignKey(localColumns, foreignTable, foreignColumns...).
		Named(key).
		OnUpdate(onUpdate).
		OnDelete(onDelete), nil
}

func (d *mysqlDriver) keyColumns(
	ctx context.Context, query, table, key string,
) ([]string, error) {

	return d.Runner().QueryStrings(ctx, "column_name", query, statement.Named(map[string]any{
		"table_name": d.TableName(table),
		"key_name":   key,
	}))
}

func (d *mysqlDriver) InlinesForeignKeys() bool {
	return false
}

// supportsSrid reports whether INFORMATION_SCHEMA.COLUMNS carries
// the SRS_ID column, which MySQL added in 8.0.3
func (d *mysqlDriver) supportsSrid() bool {
	return !d.IsMariaDB() && d.ServerVersion() >= version.MySQL_803_VERSION
}

// unquotesDefaults reports whether the server reports literal
// defaults quoted, which MariaDB does since 10.2.7
func (d *mysqlDriver) unquotesDefaults() bool {
	return d.IsMariaDB() && d.ServerVersion() >= version.MariaDB_1027_VERSION
}

// utf8Collation returns the binary collation of the best available
// UTF-8 character set
func (d *mysqlDriver) utf8Collation() string {
	serverVersion := d.ServerVersion()
	if serverVersion >= version.MariaDB_102_VERSION {
		return "utf8mb4_bin"
	}
	if serverVersion >= version.MySQL_57_VERSION && serverVersion < version.MySQL_10_VERSION {
		return "utf8mb4_bin"
	}
	return "utf8mb3_bin"
}
