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
	"github.com/noctarius/schemadiff/internal/sample"
	"github.com/noctarius/schemadiff/internal/testing/containers"
	"github.com/noctarius/schemadiff/internal/testing/testrunner"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/stretchr/testify/suite"
	"testing"
)

type PostgreSQLIntegrationTestSuite struct {
	*testrunner.TestRunner
}

func TestPostgreSQLIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration tests require a container runtime")
	}
	suite.Run(t, &PostgreSQLIntegrationTestSuite{
		TestRunner: testrunner.NewTestRunner(containers.SetupPostgreSQLContainer),
	})
}

func (its *PostgreSQLIntegrationTestSuite) migrate(
	ctx testrunner.Context, target *schema.Schema,
) []string {

	statements, err := ctx.Connection().DiffSchema(ctx, target)
	its.Require().NoError(err)
	for _, statement := range statements {
		its.Require().NoError(ctx.Exec(statement), statement)
	}
	return statements
}

func (its *PostgreSQLIntegrationTestSuite) Test_Sample_Schema_Round_Trip() {
	its.RunTest(func(ctx testrunner.Context) {
		target := sample.Schema()
		its.NotEmpty(its.migrate(ctx, target))

		statements, err := ctx.Connection().DiffSchema(ctx, target)
		its.Require().NoError(err)
		its.Empty(statements)

		exists, err := ctx.Connection().TableExists(ctx, "user")
		its.Require().NoError(err)
		its.True(exists)
	})
}

func (its *PostgreSQLIntegrationTestSuite) Test_Alter_Existing_Table() {
	its.RunTest(func(ctx testrunner.Context) {
		its.migrate(ctx, schema.New(
			schema.MustTable("gedcom",
				schema.Integer("gedcom_id").AutoIncrement(),
				schema.Varchar("gedcom_name", 64),
				schema.Integer("sort_order"),
				schema.NewPrimaryKey("gedcom_id"),
			),
		))

		target := schema.New(
			schema.MustTable("gedcom",
				schema.Integer("gedcom_id").AutoIncrement(),
				schema.Varchar("gedcom_name", 255),
				schema.Varchar("gedcom_title", 255).Nullable(),
				schema.NewPrimaryKey("gedcom_id"),
			),
			schema.MustTable("gedcom_setting",
				schema.Integer("gedcom_id"),
				schema.Varchar("setting_name", 32),
				schema.NewPrimaryKey("gedcom_id", "setting_name"),
				schema.NewForeignKey([]string{"gedcom_id"}, "gedcom").OnDeleteCascade(),
			),
		)
		its.NotEmpty(its.migrate(ctx, target))

		exists, err := ctx.Connection().ColumnExists(ctx, "gedcom", "sort_order")
		its.Require().NoError(err)
		its.False(exists)

		statements, err := ctx.Connection().DiffSchema(ctx, target)
		its.Require().NoError(err)
		its.Empty(statements)
	})
}

func (its *PostgreSQLIntegrationTestSuite) Test_Alter_Enum_Values_And_Comment() {
	its.RunTest(func(ctx testrunner.Context) {
		its.migrate(ctx, schema.New(
			schema.MustTable("media",
				schema.Integer("media_id"),
				schema.Enum("kind", "photo", "audio").WithComment("media kind"),
			),
		))

		target := schema.New(
			schema.MustTable("media",
				schema.Integer("media_id"),
				schema.Enum("kind", "photo", "video").WithComment("kind of media"),
			),
		)
		its.NotEmpty(its.migrate(ctx, target))

		column, err := ctx.Connection().Driver().IntrospectColumn(ctx, "media", "kind")
		its.Require().NoError(err)
		its.Equal([]string{"photo", "video"}, column.Values())
		its.Equal("kind of media", column.Comment())

		statements, err := ctx.Connection().DiffSchema(ctx, target)
		its.Require().NoError(err)
		its.Empty(statements)
	})
}
