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
	"github.com/noctarius/schemadiff/internal/sample"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func newTestDiffer(
	t *testing.T,
) *SchemaDiffer {

	differ, container, err := New(&config.Config{
		Database: config.DatabaseConfig{
			Engine:     config.SQLite,
			Connection: ":memory:",
			Prefix:     "wt_",
		},
	}, sample.Schema())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, container.Shutdown())
	})
	return differ
}

func Test_Migrate_Sample_Schema(t *testing.T) {
	ctx := context.Background()
	differ := newTestDiffer(t)

	statements, err := differ.Migrate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, statements)

	statements, err = differ.Diff(ctx)
	require.NoError(t, err)
	assert.Empty(t, statements)

	dumped, err := differ.Dump(ctx)
	require.NoError(t, err)
	assert.Equal(t, differ.Target().TableNames(), dumped.TableNames())
}

func Test_Create_Statements(t *testing.T) {
	differ := newTestDiffer(t)

	statements, err := differ.CreateStatements()
	require.NoError(t, err)
	assert.Contains(t, statements[0], `CREATE TABLE "wt_block"`)

	dumped, err := differ.Dump(context.Background())
	require.NoError(t, err)
	assert.Zero(t, dumped.Len())
}

func Test_Apply_Stops_At_Failing_Statement(t *testing.T) {
	ctx := context.Background()
	differ := newTestDiffer(t)

	err := differ.Apply(ctx, []string{
		`CREATE TABLE "wt_first" ("id" INTEGER NOT NULL)`,
		`CREATE TABLE broken (`,
		`CREATE TABLE "wt_second" ("id" INTEGER NOT NULL)`,
	})
	require.ErrorIs(t, err, statement.ErrExecute)

	var statementError *statement.Error
	require.ErrorAs(t, err, &statementError)
	assert.Equal(t, `CREATE TABLE broken (`, statementError.SQL)

	dumped, err := differ.Dump(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, dumped.TableNames())
}
