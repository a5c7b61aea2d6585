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
	"github.com/noctarius/schemadiff/internal/testing/fakes"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func newTestDriver(
	t *testing.T,
) *sqlServerDriver {

	d, err := NewDriver(fakes.NewHandle(config.SQLServer, "16.0.4135.4"), "wt_")
	require.NoError(t, err)
	return d.(*sqlServerDriver)
}

func Test_Driver_Registered(t *testing.T) {
	d, err := driver.NewDriver(config.SQLServer, fakes.NewHandle(config.SQLServer, "16.0.4135.4"), "")
	require.NoError(t, err)
	assert.IsType(t, &sqlServerDriver{}, d)
}

func Test_Column_SQL(t *testing.T) {
	d := newTestDriver(t)

	testCases := []struct {
		column   schema.Column
		expected string
	}{
		{schema.Integer("id").AutoIncrement(), "[id] INT IDENTITY(1,1) NOT NULL"},
		{schema.MediumInteger("count"), "[count] INT NOT NULL"},
		{schema.TinyInteger("flags").Unsigned(), "[flags] TINYINT NOT NULL"},
		{schema.Boolean("active").WithDefault(true), "[active] BIT NOT NULL DEFAULT 1"},
		{schema.NVarchar("name", 64).WithCollation("Latin1_General_BIN"), "[name] NVARCHAR(64) NOT NULL"},
		{schema.Char("iso", 2).Nullable(), "[iso] CHAR(2) NULL"},
		{schema.Text("body", 1), "[body] NVARCHAR(255) NOT NULL"},
		{schema.Text("body", 2), "[body] NVARCHAR(4000) NOT NULL"},
		{schema.Text("body", 3), "[body] NVARCHAR(MAX) NOT NULL"},
		{schema.Blob("data", 4), "[data] VARBINARY(MAX) NOT NULL"},
		{schema.Float("ratio", 20), "[ratio] REAL NOT NULL"},
		{schema.Double("ratio"), "[ratio] FLOAT NOT NULL"},
		{schema.Decimal("price", 10, 2), "[price] DECIMAL(10,2) NOT NULL"},
		{schema.Timestamp("created", 0).DefaultCurrentTimestamp(), "[created] DATETIME2(0) NOT NULL DEFAULT CURRENT_TIMESTAMP"},
		{schema.Time("at", 3), "[at] TIME(3) NOT NULL"},
		{schema.Year("year"), "[year] SMALLINT NOT NULL"},
		{schema.Uuid("uuid"), "[uuid] UNIQUEIDENTIFIER NOT NULL"},
		{schema.Json("doc").Nullable(), "[doc] NVARCHAR(MAX) NULL"},
		{schema.Point("location"), "[location] GEOMETRY NOT NULL"},
		{schema.Enum("sex", "male", "female").WithDefault("male"),
			"[sex] NVARCHAR(6) NOT NULL DEFAULT 'male' CHECK ([sex] IN ('female','male'))"},
	}

	for _, testCase := range testCases {
		actual, err := d.ColumnSQL(testCase.column)
		require.NoError(t, err)
		assert.Equal(t, testCase.expected, actual)
	}

	_, err := d.ColumnSQL(schema.Set("tags", "a"))
	assert.ErrorIs(t, err, driver.ErrUnsupported)
}

func Test_Generate_Table_SQL(t *testing.T) {
	d := newTestDriver(t)

	table := schema.MustTable("user",
		schema.Integer("id").AutoIncrement(),
		schema.NVarchar("email", 64),
		schema.NewPrimaryKey("id"),
		schema.NewUniqueIndex("email").Named("uq_email"),
		schema.NewIndex("email", "id"),
	)

	statements, err := d.GenerateTableSQL(table)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE [wt_user] (" +
			"[id] INT IDENTITY(1,1) NOT NULL, " +
			"[email] NVARCHAR(64) NOT NULL, " +
			"PRIMARY KEY ([id]), " +
			"CONSTRAINT [uq_email] UNIQUE ([email]))",
		"CREATE INDEX [wt_user_email_id_index] ON [wt_user] ([email], [id])",
	}, statements)
}

func Test_Alter_Table_SQL(t *testing.T) {
	d := newTestDriver(t)

	add, err := d.AddColumnSQL(schema.Date("born").Nullable())
	require.NoError(t, err)
	alter, err := d.AlterColumnSQL(schema.NVarchar("name", 128))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ALTER TABLE [wt_user] ADD [born] DATE NULL",
		"ALTER TABLE [wt_user] ALTER COLUMN [name] NVARCHAR(128) NOT NULL",
		"ALTER TABLE [wt_user] DROP COLUMN [legacy]",
	}, d.AlterTableSQL("user", []string{add, alter, d.DropColumnSQL("legacy")}))
}

func Test_Column_Change_SQL_Default(t *testing.T) {
	d := newTestDriver(t)

	source := schema.Integer("n").WithDefault(0)
	target := schema.Integer("n").WithDefault(1)

	sourceSql, err := d.ColumnSQL(source)
	require.NoError(t, err)
	targetSql, err := d.ColumnSQL(target)
	require.NoError(t, err)
	assert.NotEqual(t, sourceSql, targetSql)

	dropConstraints := "DECLARE @statements NVARCHAR(MAX) = N'';\n" +
		"SELECT @statements = @statements + 'ALTER TABLE [wt_counter] DROP CONSTRAINT ' + QUOTENAME(k.name) + N'; '\n"

	before, after, err := d.ColumnChangeSQL("counter", source, target, true)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.True(t, strings.HasPrefix(before[0], dropConstraints))
	assert.Contains(t, before[0], "WHERE k.parent_object_id = OBJECT_ID('[wt_counter]')\n  AND c.name = 'n';")
	assert.Equal(t, []string{"ALTER TABLE [wt_counter] ADD DEFAULT 1 FOR [n]"}, after)

	before, after, err = d.ColumnChangeSQL("counter", source, source, false)
	require.NoError(t, err)
	assert.Empty(t, before)
	assert.Empty(t, after)
}

func Test_Column_Change_SQL_Enum_And_Dropped(t *testing.T) {
	d := newTestDriver(t)

	before, after, err := d.ColumnChangeSQL("media",
		schema.Enum("kind", "photo", "audio"), schema.Enum("kind", "video", "photo"), true,
	)
	require.NoError(t, err)
	assert.Len(t, before, 1)
	assert.Equal(t, []string{"ALTER TABLE [wt_media] ADD CHECK ([kind] IN ('photo','video'))"}, after)

	before, after, err = d.ColumnChangeSQL("media", schema.Integer("n").WithDefault(0), schema.Column{}, false)
	require.NoError(t, err)
	assert.Len(t, before, 1)
	assert.Empty(t, after)

	before, _, err = d.ColumnChangeSQL("media", schema.Integer("n"), schema.Column{}, false)
	require.NoError(t, err)
	assert.Empty(t, before)

	before, after, err = d.ColumnChangeSQL("media", schema.Column{}, schema.Integer("n").WithDefault(0), false)
	require.NoError(t, err)
	assert.Empty(t, before)
	assert.Empty(t, after)
}

func Test_Normalize_Referential_Action(t *testing.T) {
	d := newTestDriver(t)
	assert.Equal(t, schema.NoAction, d.NormalizeReferentialAction(schema.Restrict))
	assert.Equal(t, schema.Cascade, d.NormalizeReferentialAction(schema.Cascade))
}

func Test_Foreign_Key_SQL(t *testing.T) {
	d := newTestDriver(t)

	foreignKey := schema.NewForeignKey([]string{"user_id"}, "user", "id").
		Named("fk_login_user").
		OnDelete(schema.Restrict).
		OnUpdateCascade()

	add, err := d.AddForeignKeySQL("login", foreignKey)
	require.NoError(t, err)
	assert.Equal(t,
		"ALTER TABLE [wt_login] ADD CONSTRAINT [fk_login_user] FOREIGN KEY ([user_id]) "+
			"REFERENCES [wt_user] ([id]) ON DELETE NO ACTION ON UPDATE CASCADE",
		add,
	)

	drop, err := d.DropForeignKeySQL("login", foreignKey)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE [wt_login] DROP CONSTRAINT [fk_login_user]", drop)
}

func Test_Column_From_Row_Enum(t *testing.T) {
	column, err := columnFromRow("user", statement.Row{
		"column_name":              "sex",
		"data_type":                "nvarchar",
		"is_nullable":              "NO",
		"column_default":           "('male')",
		"character_maximum_length": int64(6),
		"is_identity":              int64(0),
	}, []string{"([sex]='male' OR [sex]='female')"})
	require.NoError(t, err)
	assert.Equal(t, schema.EnumKind, column.Kind())
	assert.Equal(t, []string{"female", "male"}, column.Values())
	assert.Equal(t, "male", column.Default())

	d := newTestDriver(t)
	expected, err := d.ColumnSQL(schema.Enum("sex", "male", "female").WithDefault("male"))
	require.NoError(t, err)
	actual, err := d.ColumnSQL(column)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func Test_Column_From_Row_Identity(t *testing.T) {
	column, err := columnFromRow("user", statement.Row{
		"column_name": "id",
		"data_type":   "int",
		"is_nullable": "NO",
		"is_identity": int64(1),
	}, nil)
	require.NoError(t, err)
	assert.True(t, column.IsAutoIncrement())
	assert.Equal(t, 32, column.Bits())
}

func Test_Column_From_Row_Max_Length(t *testing.T) {
	column, err := columnFromRow("user", statement.Row{
		"column_name":              "bio",
		"data_type":                "nvarchar",
		"is_nullable":              "YES",
		"character_maximum_length": int64(-1),
		"is_identity":              int64(0),
	}, []string{"(len([bio])>(0))"})
	require.NoError(t, err)
	assert.Equal(t, schema.TextKind, column.Kind())
	assert.True(t, column.IsNullable())
}

func Test_Column_From_Row_Unmapped_Type(t *testing.T) {
	_, err := columnFromRow("user", statement.Row{
		"column_name": "balance",
		"data_type":   "money",
		"is_nullable": "NO",
	}, nil)
	assert.ErrorIs(t, err, driver.ErrUnmappedType)
}

func Test_Classify_Default(t *testing.T) {
	assert.Equal(t, "0", classifyDefault("((0))"))
	assert.Equal(t, "abc", classifyDefault("(N'abc')"))
	assert.Equal(t, "it's", classifyDefault("('it''s')"))
	assert.Equal(t, schema.CurrentTimestamp, classifyDefault("(getdate())"))
	assert.Equal(t, schema.Raw("newid()"), classifyDefault("(newid())"))
	assert.Equal(t, schema.Raw("(1)+(2)"), classifyDefault("((1)+(2))"))
	assert.Nil(t, classifyDefault("(NULL)"))
}
