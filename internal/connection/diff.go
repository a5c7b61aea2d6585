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
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/samber/lo"
	"slices"
)

// migration collects the statements of a diff in three buckets,
// which are executed in order: foreign key drops, table creates and
// alters, foreign key creates
type migration struct {
	foreignKeyDrops   []string
	tableChanges      []string
	foreignKeyCreates []string
}

func (m *migration) statements() []string {
	statements := make([]string, 0, len(m.foreignKeyDrops)+len(m.tableChanges)+len(m.foreignKeyCreates))
	statements = append(statements, m.foreignKeyDrops...)
	statements = append(statements, m.tableChanges...)
	return append(statements, m.foreignKeyCreates...)
}

// DiffSchema introspects the database and returns the ordered DDL
// statements turning it into the target schema. Tables only present
// in the database are left untouched.
func (c *Connection) DiffSchema(
	ctx context.Context, target *schema.Schema,
) ([]string, error) {

	source, err := c.IntrospectSchema(ctx)
	if err != nil {
		return nil, err
	}
	return c.diff(source, target)
}

// CreateSchemaSQL returns the statements creating the target schema
// in an empty database, without reading the database
func (c *Connection) CreateSchemaSQL(
	target *schema.Schema,
) ([]string, error) {

	return c.diff(schema.New(), target)
}

func (c *Connection) diff(
	source, target *schema.Schema,
) ([]string, error) {

	m := &migration{}

	tableNames := target.TableNames()
	slices.Sort(tableNames)

	// columns dropped or altered per existing table, foreign keys
	// using them have to be dropped before and recreated afterward
	changedColumns := make(map[string][]string)
	existingTables := make([]string, 0)

	for _, tableName := range tableNames {
		targetTable, _ := target.Table(tableName)
		sourceTable, exists := source.Table(tableName)
		if !exists {
			if err := c.createTable(m, targetTable); err != nil {
				return nil, err
			}
			continue
		}

		changed, err := c.alterTable(m, sourceTable, targetTable)
		if err != nil {
			return nil, err
		}
		changedColumns[tableName] = changed
		existingTables = append(existingTables, tableName)
	}

	for _, tableName := range existingTables {
		targetTable, _ := target.Table(tableName)
		sourceTable, _ := source.Table(tableName)
		if err := c.diffForeignKeys(m, sourceTable, targetTable, changedColumns); err != nil {
			return nil, err
		}
	}

	c.logger.Debugf(
		"Schema diff: %d foreign key drops, %d table changes, %d foreign key creates",
		len(m.foreignKeyDrops), len(m.tableChanges), len(m.foreignKeyCreates),
	)
	return m.statements(), nil
}

func (c *Connection) createTable(
	m *migration, table *schema.Table,
) error {

	statements, err := c.driver.GenerateTableSQL(table)
	if err != nil {
		return err
	}
	m.tableChanges = append(m.tableChanges, statements...)

	if c.driver.InlinesForeignKeys() {
		return nil
	}
	for _, foreignKey := range table.ForeignKeys() {
		statement, err := c.driver.AddForeignKeySQL(table.Name(), foreignKey)
		if err != nil {
			return err
		}
		m.foreignKeyCreates = append(m.foreignKeyCreates, statement)
	}
	return nil
}

// alterTable adds the drop, alter and add fragments for the columns
// of an existing table and returns the names of the dropped and
// altered columns
func (c *Connection) alterTable(
	m *migration, source, target *schema.Table,
) ([]string, error) {

	sourceColumns := source.ColumnNames()
	targetColumns := target.ColumnNames()

	dropped := lo.Without(sourceColumns, targetColumns...)
	added := lo.Without(targetColumns, sourceColumns...)
	common := lo.Filter(targetColumns, func(column string, _ int) bool {
		return lo.Contains(sourceColumns, column)
	})

	before := make([]string, 0)
	after := make([]string, 0)
	columnChange := func(sourceColumn, targetColumn schema.Column, altered bool) error {
		renderer, ok := c.driver.(driver.ColumnChangeRenderer)
		if !ok {
			return nil
		}
		b, a, err := renderer.ColumnChangeSQL(target.Name(), sourceColumn, targetColumn, altered)
		if err != nil {
			return errors.Errorf("table '%s': %w", target.Name(), err)
		}
		before = append(before, b...)
		after = append(after, a...)
		return nil
	}

	fragments := make([]string, 0)
	for _, name := range dropped {
		column, _ := source.Column(name)
		if err := columnChange(column, schema.Column{}, false); err != nil {
			return nil, err
		}
		fragments = append(fragments, c.driver.DropColumnSQL(name))
	}

	altered := make([]string, 0)
	for _, name := range common {
		targetColumn, _ := target.Column(name)
		sourceColumn, _ := source.Column(name)

		changed, err := c.columnChanged(sourceColumn, targetColumn)
		if err != nil {
			return nil, errors.Errorf("table '%s': %w", target.Name(), err)
		}
		if err := columnChange(sourceColumn, targetColumn, changed); err != nil {
			return nil, err
		}
		if !changed {
			continue
		}

		fragment, err := c.driver.AlterColumnSQL(targetColumn)
		if err != nil {
			return nil, errors.Errorf("table '%s': %w", target.Name(), err)
		}
		fragments = append(fragments, fragment)
		altered = append(altered, name)
	}

	for _, name := range added {
		column, _ := target.Column(name)
		fragment, err := c.driver.AddColumnSQL(column)
		if err != nil {
			return nil, errors.Errorf("table '%s': %w", target.Name(), err)
		}
		if err := columnChange(schema.Column{}, column, false); err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}

	if len(fragments) > 0 {
		c.logger.Verbosef("Table %s: %d dropped, %d altered, %d added columns",
			target.Name(), len(dropped), len(altered), len(added),
		)
	}
	m.tableChanges = append(m.tableChanges, before...)
	if len(fragments) > 0 {
		m.tableChanges = append(m.tableChanges, c.driver.AlterTableSQL(target.Name(), fragments)...)
	}
	m.tableChanges = append(m.tableChanges, after...)
	return append(dropped, altered...), nil
}

// columnChanged compares the rendered definitions, so differences
// the dialect can't express never produce an alter
func (c *Connection) columnChanged(
	source, target schema.Column,
) (bool, error) {

	if c.alwaysAlterColumns {
		return true, nil
	}

	sourceSql, err := c.driver.ColumnSQL(source)
	if err != nil {
		return false, err
	}
	targetSql, err := c.driver.ColumnSQL(target)
	if err != nil {
		return false, err
	}
	return sourceSql != targetSql, nil
}

func (c *Connection) diffForeignKeys(
	m *migration, source, target *schema.Table, changedColumns map[string][]string,
) error {

	affected := func(foreignKey schema.ForeignKey) bool {
		return foreignKey.References(changedColumns[source.Name()]) ||
			foreignKey.ReferencesForeign(foreignKey.ForeignTable(), changedColumns[foreignKey.ForeignTable()])
	}

	targetKeys := lo.Map(target.ForeignKeys(), func(foreignKey schema.ForeignKey, _ int) schema.ForeignKey {
		return c.normalizeForeignKey(foreignKey)
	})

	recreate := make([]schema.ForeignKey, 0)
	for _, sourceKey := range source.ForeignKeys() {
		wanted, ok := lo.Find(targetKeys, sourceKey.SameDefinition)
		if ok && !affected(sourceKey) {
			continue
		}

		statement, err := c.driver.DropForeignKeySQL(source.Name(), sourceKey)
		if err != nil {
			return err
		}
		m.foreignKeyDrops = append(m.foreignKeyDrops, statement)
		if ok {
			recreate = append(recreate, wanted)
		}
	}

	for _, targetKey := range targetKeys {
		existing := lo.ContainsBy(source.ForeignKeys(), targetKey.SameDefinition)
		if existing && !lo.ContainsBy(recreate, targetKey.SameDefinition) {
			continue
		}

		statement, err := c.driver.AddForeignKeySQL(target.Name(), targetKey)
		if err != nil {
			return err
		}
		m.foreignKeyCreates = append(m.foreignKeyCreates, statement)
	}
	return nil
}

// normalizeForeignKey replaces the referential actions of the key with
// the ones the database reports back after creating it
func (c *Connection) normalizeForeignKey(
	foreignKey schema.ForeignKey,
) schema.ForeignKey {

	normalizer, ok := c.driver.(driver.ReferentialActionNormalizer)
	if !ok {
		return foreignKey
	}
	return foreignKey.
		OnDelete(normalizer.NormalizeReferentialAction(foreignKey.OnDeleteAction())).
		OnUpdate(normalizer.NormalizeReferentialAction(foreignKey.OnUpdateAction()))
}
