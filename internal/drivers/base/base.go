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

package base

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/supporting/logging"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/noctarius/schemadiff/spi/version"
	"github.com/samber/lo"
	"strings"
)

// Base carries the handle bound state shared by all drivers:
// the statement runner, identifier quoting and the table prefix
type Base struct {
	handle        driver.Handle
	prefix        string
	openQuote     string
	closeQuote    string
	runner        *statement.Runner
	logger        *logging.Logger
	serverVersion version.ServerVersion
}

func New(
	handle driver.Handle, prefix, loggerName, openQuote, closeQuote string,
) (*Base, error) {

	logger, err := logging.NewLogger(loggerName)
	if err != nil {
		return nil, err
	}

	runner, err := statement.NewRunner(handle)
	if err != nil {
		return nil, err
	}

	serverVersion, err := version.ParseServerVersion(handle.ServerVersion())
	if err != nil {
		logger.Warnf("Unable to parse server version '%s', assuming oldest", handle.ServerVersion())
	}

	return &Base{
		handle:        handle,
		prefix:        prefix,
		openQuote:     openQuote,
		closeQuote:    closeQuote,
		runner:        runner,
		logger:        logger,
		serverVersion: serverVersion,
	}, nil
}

func (b *Base) Handle() driver.Handle {
	return b.handle
}

func (b *Base) Runner() *statement.Runner {
	return b.runner
}

func (b *Base) Logger() *logging.Logger {
	return b.logger
}

func (b *Base) Prefix() string {
	return b.prefix
}

func (b *Base) ServerVersion() version.ServerVersion {
	return b.serverVersion
}

// IsMariaDB reports whether the server is a MariaDB server
func (b *Base) IsMariaDB() bool {
	return version.IsMariaDB(b.handle.ServerVersion())
}

func (b *Base) QuoteIdentifier(
	identifier string,
) schema.Expression {

	return schema.Raw(driver.QuoteIdentifier(identifier, b.openQuote, b.closeQuote))
}

func (b *Base) QuoteValue(
	value string,
) schema.Expression {

	return schema.Raw(b.handle.QuoteString(value))
}

// Quote is QuoteIdentifier as plain string
func (b *Base) Quote(
	identifier string,
) string {

	return b.QuoteIdentifier(identifier).String()
}

// QuoteTable quotes the prefixed table name
func (b *Base) QuoteTable(
	table string,
) string {

	return b.Quote(b.TableName(table))
}

// QuoteColumns quotes and comma separates the column names
func (b *Base) QuoteColumns(
	columns []string,
) string {

	return strings.Join(lo.Map(columns, func(column string, _ int) string {
		return b.Quote(column)
	}), ", ")
}

// QuoteValues quotes and comma separates the values
func (b *Base) QuoteValues(
	values []string,
) string {

	return strings.Join(lo.Map(values, func(value string, _ int) string {
		return b.QuoteValue(value).String()
	}), ",")
}

// TableName returns the prefixed name of the table
func (b *Base) TableName(
	table string,
) string {

	return b.prefix + table
}

// StripPrefix removes the prefix from the table name. Tables which
// don't carry the prefix, e.g. foreign tables outside the prefixed
// set, are returned unchanged.
func (b *Base) StripPrefix(
	table string,
) string {

	return strings.TrimPrefix(table, b.prefix)
}

// FilterPrefixed keeps the prefixed table names and strips the prefix
func (b *Base) FilterPrefixed(
	tables []string,
) []string {

	return lo.FilterMap(tables, func(table string, _ int) (string, bool) {
		if !strings.HasPrefix(table, b.prefix) {
			return "", false
		}
		return strings.TrimPrefix(table, b.prefix), true
	})
}

// PrefixPattern returns a LIKE pattern matching all prefixed tables,
// using ! as escape character
func (b *Base) PrefixPattern() string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(b.prefix)
	return escaped + "%"
}

// GeneratedName returns the key name or a deterministic name derived
// from the prefixed table and the columns if the key is unnamed
func (b *Base) GeneratedName(
	table, name string, columns []string, suffix string,
) string {

	if name != "" {
		return name
	}
	return schema.GeneratedName(b.TableName(table), columns, suffix)
}

// DefaultSQL renders the DEFAULT clause of the column, or an empty
// string if the column has no default value
func (b *Base) DefaultSQL(
	column schema.Column, booleans func(value bool) string,
) string {

	if !column.HasDefault() {
		return ""
	}

	switch v := column.Default().(type) {
	case schema.Expression:
		return "DEFAULT " + v.String()
	case bool:
		return "DEFAULT " + booleans(v)
	case string:
		if numeric, ok := schema.NumericDefault(v); ok {
			return "DEFAULT " + numeric
		}
		return "DEFAULT " + b.QuoteValue(v).String()
	default:
		numeric, _ := schema.NumericDefault(v)
		return "DEFAULT " + numeric
	}
}

// NullableSQL renders the explicit nullability clause
func NullableSQL(
	column schema.Column,
) string {

	if column.IsNullable() {
		return "NULL"
	}
	return "NOT NULL"
}

// NumericBooleans renders booleans as 1 and 0
func NumericBooleans(
	value bool,
) string {

	if value {
		return "1"
	}
	return "0"
}

// ReferentialActions renders the ON DELETE and ON UPDATE clauses
func ReferentialActions(
	foreignKey schema.ForeignKey, render func(action schema.ReferentialAction) string,
) string {

	return "ON DELETE " + render(foreignKey.OnDeleteAction()) +
		" ON UPDATE " + render(foreignKey.OnUpdateAction())
}

// When returns the clause if the condition holds
func When(
	condition bool, clause string,
) string {

	if condition {
		return clause
	}
	return ""
}

// JoinClauses joins the non-empty SQL clauses with a single space
func JoinClauses(
	clauses ...string,
) string {

	return strings.Join(lo.Compact(clauses), " ")
}

// CombinedAlterTable assembles all fragments into a single statement
func CombinedAlterTable(
	quotedTable string, fragments []string,
) []string {

	if len(fragments) == 0 {
		return nil
	}
	return []string{"ALTER TABLE " + quotedTable + " " + strings.Join(fragments, ", ")}
}

// SeparateAlterTable assembles one statement per fragment
func SeparateAlterTable(
	quotedTable string, fragments []string,
) []string {

	return lo.Map(fragments, func(fragment string, _ int) string {
		return "ALTER TABLE " + quotedTable + " " + fragment
	})
}

// IntrospectSchema reads all tables visible to the driver
func IntrospectSchema(
	ctx context.Context, d driver.Driver,
) (*schema.Schema, error) {

	tableNames, err := d.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]*schema.Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := d.IntrospectTable(ctx, tableName)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return schema.New(tables...), nil
}

// IntrospectTable reads the table by listing and introspecting its
// columns, primary key, unique indexes, indexes and foreign keys
func IntrospectTable(
	ctx context.Context, d driver.Driver, table string,
) (*schema.Table, error) {

	components := make([]schema.Component, 0)

	columns, err := d.ListColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, name := range columns {
		column, err := d.IntrospectColumn(ctx, table, name)
		if err != nil {
			return nil, err
		}
		components = append(components, column)
	}

	primaryKeys, err := d.ListPrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, name := range primaryKeys {
		primaryKey, err := d.IntrospectPrimaryKey(ctx, table, name)
		if err != nil {
			return nil, err
		}
		components = append(components, primaryKey)
	}

	uniqueIndexes, err := d.ListUniqueIndexes(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, name := range uniqueIndexes {
		uniqueIndex, err := d.IntrospectUniqueIndex(ctx, table, name)
		if err != nil {
			return nil, err
		}
		components = append(components, uniqueIndex)
	}

	indexes, err := d.ListIndexes(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, name := range indexes {
		index, err := d.IntrospectIndex(ctx, table, name)
		if err != nil {
			return nil, err
		}
		components = append(components, index)
	}

	foreignKeys, err := d.ListForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, name := range foreignKeys {
		foreignKey, err := d.IntrospectForeignKey(ctx, table, name)
		if err != nil {
			return nil, err
		}
		components = append(components, foreignKey)
	}

	t, err := schema.NewTable(table, components...)
	if err != nil {
		return nil, errors.Errorf("introspected table '%s' is invalid: %w", table, err)
	}
	return t, nil
}
