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
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/internal/testing/fakes"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func newTestDriver(
	t *testing.T, serverVersion string,
) *mysqlDriver {

	d, err := NewDriver(fakes.NewHandle(config.MySQL, serverVersion), "wt_")
	require.NoError(t, err)
	return d.(*mysqlDriver)
}

func Test_Driver_Registered(t *testing.T) {
	d, err := driver.NewDriver(config.MySQL, fakes.NewHandle(config.MySQL, "8.0.36"), "")
	require.NoError(t, err)
	assert.IsType(t, &mysqlDriver{}, d)
}

func Test_Utf8_Collation_By_Version(t *testing.T) {
	testCases := map[string]string{
		"5.6.51":                  "utf8mb3_bin",
		"5.7.44-log":              "utf8mb4_bin",
		"8.0.36":                  "utf8mb4_bin",
		"5.5.5-10.1.48-MariaDB":   "utf8mb3_bin",
		"10.2.44-MariaDB-1:10.2":  "utf8mb4_bin",
		"10.11.6-MariaDB-ubu2204": "utf8mb4_bin",
	}

	for serverVersion, expected := range testCases {
		d := newTestDriver(t, serverVersion)
		assert.Equal(t, expected, d.utf8Collation(), serverVersion)

		columnSql, err := d.ColumnSQL(schema.NVarchar("name", 10))
		require.NoError(t, err)
		assert.Equal(t, "`name` VARCHAR(10) COLLATE "+expected+" NOT NULL", columnSql, serverVersion)
	}
}

func Test_Column_SQL(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	testCases := []struct {
		column   schema.Column
		expected string
	}{
		{schema.Integer("id").Unsigned().AutoIncrement(), "`id` INT UNSIGNED AUTO_INCREMENT NOT NULL"},
		{schema.Varchar("code", 8).Nullable(), "`code` VARCHAR(8) COLLATE ascii_bin NULL"},
		{schema.NChar("iso", 2).WithCollation("utf8mb4_unicode_ci"), "`iso` CHAR(2) COLLATE utf8mb4_unicode_ci NOT NULL"},
		{schema.Text("body", 1), "`body` TINYTEXT COLLATE utf8mb4_bin NOT NULL"},
		{schema.Text("body", 2), "`body` TEXT COLLATE utf8mb4_bin NOT NULL"},
		{schema.Text("body", 3), "`body` MEDIUMTEXT COLLATE utf8mb4_bin NOT NULL"},
		{schema.Text("body", 4), "`body` LONGTEXT COLLATE utf8mb4_bin NOT NULL"},
		{schema.Blob("data", 4).Nullable(), "`data` LONGBLOB NULL"},
		{schema.VarBinary("hash", 20), "`hash` VARBINARY(20) NOT NULL"},
		{schema.Enum("status", "a", "it's").WithDefault("a"), "`status` ENUM('a','it''s') NOT NULL DEFAULT 'a'"},
		{schema.Set("flags", "x", "y"), "`flags` SET('x','y') NOT NULL"},
		{schema.Timestamp("created", 0).DefaultCurrentTimestamp(), "`created` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"},
		{schema.Datetime("changed", 3).Nullable(), "`changed` DATETIME(3) NULL"},
		{schema.Boolean("active").WithDefault(true), "`active` TINYINT NOT NULL DEFAULT 1"},
		{schema.Integer("n").WithDefault(0), "`n` INT NOT NULL DEFAULT 0"},
		{schema.Decimal("amount", 10, 2), "`amount` DECIMAL(10,2) NOT NULL"},
		{schema.Double("ratio"), "`ratio` DOUBLE NOT NULL"},
		{schema.Float("f", 12), "`f` FLOAT NOT NULL"},
		{schema.Point("location").WithSrid(4326), "`location` POINT /*!80003 SRID 4326 */ NOT NULL"},
		{schema.Json("meta").Nullable(), "`meta` JSON NULL"},
		{
			schema.Uuid("uuid").Invisible().WithComment("it's"),
			"`uuid` CHAR(36) COLLATE ascii_bin NOT NULL /*!80023 INVISIBLE */ COMMENT 'it''s'",
		},
		{schema.Char("we`ird", 1), "`we``ird` CHAR(1) COLLATE ascii_bin NOT NULL"},
	}

	for _, testCase := range testCases {
		columnSql, err := d.ColumnSQL(testCase.column)
		require.NoError(t, err)
		assert.Equal(t, testCase.expected, columnSql)
	}
}

func Test_Generate_Table_SQL(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	table := schema.MustTable("user",
		schema.Integer("user_id").AutoIncrement(),
		schema.NVarchar("user_name", 32),
		schema.NVarchar("real_name", 64),
		schema.NewPrimaryKey("user_id"),
		schema.NewUniqueIndex("user_name"),
		schema.NewIndex("real_name").Named("ix_real_name"),
	)

	statements, err := d.GenerateTableSQL(table)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE `wt_user` (" +
			"`user_id` INT AUTO_INCREMENT NOT NULL, " +
			"`user_name` VARCHAR(32) COLLATE utf8mb4_bin NOT NULL, " +
			"`real_name` VARCHAR(64) COLLATE utf8mb4_bin NOT NULL, " +
			"PRIMARY KEY (`user_id`), " +
			"UNIQUE INDEX `wt_user_user_name_unique` (`user_name`), " +
			"INDEX `ix_real_name` (`real_name`))",
	}, statements)
}

func Test_Alter_Table_SQL(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	alter, err := d.AlterColumnSQL(schema.Integer("a").Nullable())
	require.NoError(t, err)
	add, err := d.AddColumnSQL(schema.Integer("b"))
	require.NoError(t, err)

	statements := d.AlterTableSQL("user", []string{d.DropColumnSQL("c"), alter, add})
	assert.Equal(t, []string{
		"ALTER TABLE `wt_user` DROP COLUMN `c`, CHANGE COLUMN `a` `a` INT NULL, ADD COLUMN `b` INT NOT NULL",
	}, statements)

	assert.Empty(t, d.AlterTableSQL("user", nil))
}

func Test_Foreign_Key_SQL(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	foreignKey := schema.NewForeignKey([]string{"gedcom_id"}, "gedcom").OnDeleteCascade()
	addSql, err := d.AddForeignKeySQL("user_setting", foreignKey)
	require.NoError(t, err)
	assert.Equal(t,
		"ALTER TABLE `wt_user_setting` ADD FOREIGN KEY (`gedcom_id`) "+
			"REFERENCES `wt_gedcom` (`gedcom_id`) ON DELETE CASCADE ON UPDATE NO ACTION",
		addSql,
	)

	_, err = d.DropForeignKeySQL("user_setting", foreignKey)
	assert.ErrorIs(t, err, driver.ErrUnsupported)

	named := foreignKey.Named("fk1").OnUpdateCascade()
	addSql, err = d.AddForeignKeySQL("user_setting", named)
	require.NoError(t, err)
	assert.Equal(t,
		"ALTER TABLE `wt_user_setting` ADD CONSTRAINT `fk1` FOREIGN KEY (`gedcom_id`) "+
			"REFERENCES `wt_gedcom` (`gedcom_id`) ON DELETE CASCADE ON UPDATE CASCADE",
		addSql,
	)

	dropSql, err := d.DropForeignKeySQL("user_setting", named)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE `wt_user_setting` DROP FOREIGN KEY `fk1`", dropSql)
}

func Test_Column_From_Row(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	column, err := d.columnFromRow("user", statement.Row{
		"column_name":              "user_name",
		"data_type":                "varchar",
		"column_type":              "varchar(32)",
		"is_nullable":              "NO",
		"column_default":           nil,
		"extra":                    "",
		"column_comment":           "login",
		"collation_name":           "utf8mb4_bin",
		"character_maximum_length": int64(32),
	})
	require.NoError(t, err)
	assert.Equal(t, schema.CharacterKind, column.Kind())
	assert.True(t, column.IsNational())
	assert.True(t, column.IsVarying())
	assert.Equal(t, 32, column.Length())
	assert.Equal(t, "login", column.Comment())
	assert.False(t, column.HasDefault())

	expected, err := d.ColumnSQL(schema.NVarchar("user_name", 32).WithComment("login"))
	require.NoError(t, err)
	actual, err := d.ColumnSQL(column)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func Test_Column_From_Row_Enum(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	column, err := d.columnFromRow("user", statement.Row{
		"column_name":    "status",
		"data_type":      "enum",
		"column_type":    "enum('on','it''s')",
		"is_nullable":    "YES",
		"column_default": "on",
		"extra":          "",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"on", "it's"}, column.Values())
	assert.True(t, column.IsNullable())
	assert.Equal(t, "on", column.Default())
}

func Test_Column_From_Row_Integer(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	column, err := d.columnFromRow("user", statement.Row{
		"column_name":    "user_id",
		"data_type":      "int",
		"column_type":    "int unsigned",
		"is_nullable":    "NO",
		"column_default": nil,
		"extra":          "auto_increment",
	})
	require.NoError(t, err)
	assert.Equal(t, 32, column.Bits())
	assert.True(t, column.IsUnsigned())
	assert.True(t, column.IsAutoIncrement())
}

func Test_Column_From_Row_Unmapped_Type(t *testing.T) {
	d := newTestDriver(t, "8.0.36")

	_, err := d.columnFromRow("user", statement.Row{
		"column_name": "v",
		"data_type":   "vector",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrUnmappedType)

	var mappingError *driver.SchemaMappingError
	require.True(t, errors.As(err, &mappingError))
	assert.Equal(t, "user", mappingError.Table)
	assert.Equal(t, "v", mappingError.Column)
	assert.Equal(t, "vector", mappingError.Type)
}

func Test_Classify_Default(t *testing.T) {
	mysql8 := newTestDriver(t, "8.0.36")
	mariadb := newTestDriver(t, "10.6.16-MariaDB")

	assert.Nil(t, mysql8.classifyDefault(statement.Row{"column_default": nil}, "int", ""))
	assert.Equal(t, "0", mysql8.classifyDefault(statement.Row{"column_default": "0"}, "int", ""))
	assert.Equal(t, "abc", mysql8.classifyDefault(statement.Row{"column_default": "abc"}, "varchar", ""))
	assert.Equal(t, schema.CurrentTimestamp,
		mysql8.classifyDefault(statement.Row{"column_default": "CURRENT_TIMESTAMP"}, "timestamp", "default_generated"),
	)
	assert.Equal(t, schema.Raw("(uuid())"),
		mysql8.classifyDefault(statement.Row{"column_default": "(uuid())"}, "char", "default_generated"),
	)

	assert.Nil(t, mariadb.classifyDefault(statement.Row{"column_default": "NULL"}, "varchar", ""))
	assert.Equal(t, "it's", mariadb.classifyDefault(statement.Row{"column_default": "'it''s'"}, "varchar", ""))
	assert.Equal(t, "1", mariadb.classifyDefault(statement.Row{"column_default": "1"}, "int", ""))
	assert.Equal(t, schema.CurrentTimestamp,
		mariadb.classifyDefault(statement.Row{"column_default": "current_timestamp()"}, "timestamp", ""),
	)
}

func Test_Version_Gates(t *testing.T) {
	assert.True(t, newTestDriver(t, "8.0.36").supportsSrid())
	assert.False(t, newTestDriver(t, "8.0.2").supportsSrid())
	assert.False(t, newTestDriver(t, "10.6.16-MariaDB").supportsSrid())

	assert.True(t, newTestDriver(t, "10.2.7-MariaDB").unquotesDefaults())
	assert.False(t, newTestDriver(t, "10.2.6-MariaDB").unquotesDefaults())
	assert.False(t, newTestDriver(t, "8.0.36").unquotesDefaults())
}
