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

package connection

import (
	"context"
	"github.com/noctarius/schemadiff/internal/supporting/logging"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/samber/lo"
)

type Option = func(connection *Connection)

// WithAlwaysAlterColumns makes DiffSchema emit an alter fragment for
// every column present in source and target, not only for changed ones
func WithAlwaysAlterColumns(
	enabled bool,
) Option {

	return func(connection *Connection) {
		connection.alwaysAlterColumns = enabled
	}
}

// WithSnapshot controls whether introspection runs inside a read-only
// transaction when the handle supports it. Enabled by default.
func WithSnapshot(
	enabled bool,
) Option {

	return func(connection *Connection) {
		connection.snapshot = enabled
	}
}

// Connection binds a driver, selected by the engine of the handle,
// to a table prefix and computes the migration between the live
// database and a target schema
type Connection struct {
	handle             driver.Handle
	prefix             string
	driver             driver.Driver
	alwaysAlterColumns bool
	snapshot           bool
	logger             *logging.Logger
}

func New(
	handle driver.Handle, prefix string, options ...Option,
) (*Connection, error) {

	d, err := driver.NewDriver(handle.Engine(), handle, prefix)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger("Connection")
	if err != nil {
		return nil, err
	}

	connection := &Connection{
		handle:   handle,
		prefix:   prefix,
		driver:   d,
		snapshot: true,
		logger:   logger,
	}
	for _, option := range options {
		option(connection)
	}
	return connection, nil
}

func (c *Connection) Driver() driver.Driver {
	return c.driver
}

func (c *Connection) Prefix() string {
	return c.prefix
}

// TableExists reports whether the table exists, the name is given
// without the prefix
func (c *Connection) TableExists(
	ctx context.Context, table string,
) (bool, error) {

	tables, err := c.driver.ListTables(ctx)
	if err != nil {
		return false, err
	}
	return lo.Contains(tables, table), nil
}

func (c *Connection) ColumnExists(
	ctx context.Context, table, column string,
) (bool, error) {

	columns, err := c.driver.ListColumns(ctx, table)
	if err != nil {
		return false, err
	}
	return lo.Contains(columns, column), nil
}

// IntrospectSchema reads the prefixed tables of the database. When
// snapshots are enabled and the handle supports them, all catalog
// reads happen inside one read-only transaction.
func (c *Connection) IntrospectSchema(
	ctx context.Context,
) (*schema.Schema, error) {

	snapshotHandle, ok := c.handle.(driver.SnapshotHandle)
	if !c.snapshot || !ok {
		return c.driver.IntrospectSchema(ctx)
	}

	var source *schema.Schema
	err := snapshotHandle.WithSnapshot(ctx, func(handle driver.Handle) error {
		d, err := driver.NewDriver(handle.Engine(), handle, c.prefix)
		if err != nil {
			return err
		}
		c.logger.Debugln("Introspecting schema inside a snapshot")
		source, err = d.IntrospectSchema(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}
