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

package schemadiffer

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/connection"
	"github.com/noctarius/schemadiff/internal/database"
	"github.com/noctarius/schemadiff/internal/supporting/logging"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
)

// SchemaDiffer brings a database to a target schema
type SchemaDiffer struct {
	database   *database.Database
	executor   driver.Executor
	connection *connection.Connection
	target     *schema.Schema
	logger     *logging.Logger
}

func NewSchemaDiffer(
	database *database.Database, connection *connection.Connection, target *schema.Schema,
) (*SchemaDiffer, error) {

	logger, err := logging.NewLogger("SchemaDiffer")
	if err != nil {
		return nil, err
	}

	return &SchemaDiffer{
		database:   database,
		executor:   database,
		connection: connection,
		target:     target,
		logger:     logger,
	}, nil
}

// Diff returns the statements migrating the database to the target
func (s *SchemaDiffer) Diff(
	ctx context.Context,
) ([]string, error) {

	statements, err := s.connection.DiffSchema(ctx, s.target)
	if err != nil {
		return nil, err
	}
	if len(statements) == 0 {
		s.logger.Infof("Database schema is up to date")
	} else {
		s.logger.Infof("Database schema differs, %d statements required", len(statements))
	}
	return statements, nil
}

// Apply executes the statements in order and stops at the first
// failing statement
func (s *SchemaDiffer) Apply(
	ctx context.Context, statements []string,
) error {

	for i, sql := range statements {
		s.logger.Verbosef("Applying statement %d of %d", i+1, len(statements))
		if _, err := s.executor.ExecContext(ctx, sql); err != nil {
			return errors.Wrap(&statement.Error{
				Kind: statement.ExecuteFailure,
				SQL:  sql,
				Err:  err,
			}, 0)
		}
	}
	if len(statements) > 0 {
		s.logger.Infof("Applied %d statements", len(statements))
	}
	return nil
}

// Migrate computes the diff and applies it
func (s *SchemaDiffer) Migrate(
	ctx context.Context,
) ([]string, error) {

	statements, err := s.Diff(ctx)
	if err != nil {
		return nil, err
	}
	return statements, s.Apply(ctx, statements)
}

// Dump introspects the current database schema
func (s *SchemaDiffer) Dump(
	ctx context.Context,
) (*schema.Schema, error) {

	return s.connection.IntrospectSchema(ctx)
}

// CreateStatements returns the statements creating the target
// schema from scratch
func (s *SchemaDiffer) CreateStatements() ([]string, error) {
	return s.connection.CreateSchemaSQL(s.target)
}

func (s *SchemaDiffer) Target() *schema.Schema {
	return s.target
}

// Shutdown closes the database, it is called when the container
// shuts down
func (s *SchemaDiffer) Shutdown() error {
	s.logger.Debugln("Closing database connection")
	return s.database.Close()
}
