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
) *postgresDriver {

	d, err := NewDriver(fakes.NewHandle(config.PostgreSQL, serverVersion), "wt_")
	require.NoError(t, err)
	return d.(*postgresDriver)
}

func Test_Driver_Registered(t *testing.T) {
	d, err := driver.NewDriver(config.PostgreSQL, fakes.NewHandle(config.PostgreSQL, "16.2"), "")
	require.NoError(t, err)
	assert.IsType(t, &postgresDriver{}, d)
}

func Test_Column_SQL(t *testing.T) {
	d := newTestDriver(t, "16.2")

	testCases := []struct {
		column   schema.Column
		expected string
	}{
		{schema.Integer("id").AutoIncrement(), `"id" INTEGER GENERATED BY DEFAULT AS IDENTITY NOT NULL`},
		{schema.TinyInteger("flags"), `"flags" SMALLINT NOT NULL`},
		{schema.MediumInteger("count"), `"count" INTEGER NOT NULL`},
		{schema.BigInteger("total").Nullable(), `"total" BIGINT NULL`},
		{schema.Boolean("active").WithDefault(true), `"active" BOOLEAN NOT NULL DEFAULT TRUE`},
		{schema.Varchar("code", 8).WithCollation("C"), `"code" VARCHAR(8) COLLATE "C" NOT NULL`},
		{schema.NChar("iso", 2), `"iso" CHAR(2) NOT NULL`},
		{schema.Text("body", 2), `"body" TEXT NOT NULL`},
		{schema.Blob("data", 3), `"data" BYTEA NOT NULL`},
		{schema.Float("ratio", 12), `"ratio" REAL NOT NULL`},
		{schema.Double("ratio"), `"ratio" DOUBLE PRECISION NOT NULL`},
		{schema.Decimal("price", 10, 2).WithDefault("0.00"), `"price" NUMERIC(10,2) NOT NULL DEFAULT 0.00`},
		{schema.Timestamp("created", 0).DefaultCurrentTimestamp(), `"created" TIMESTAMP(0) NOT NULL DEFAULT CURRENT_TIMESTAMP`},
		{schema.Time("at", 3), `"at" TIME(3) NOT NULL`},
		{schema.Date("born").Nullable(), `"born" DATE NULL`},
		{schema.Year("year"), `"year" SMALLINT NOT NULL`},
		{schema.Uuid("uuid"), `"uuid" UUID NOT NULL`},
		{schema.Json("doc"), `"doc" JSONB NOT NULL`},
		{schema.Enum("sex", "male", "female").WithDefault("male"),
			`"sex" VARCHAR(6) NOT NULL DEFAULT 'male' CONSTRAINT "sex_check" CHECK ("sex" IN ('male','female'))`},
		{schema.Geometry("shape"), `"shape" geometry NOT NULL`},
		{schema.Point("location").WithSrid(4326), `"location" geometry(Point,4326) NOT NULL`},
		{schema.Polygon("area"), `"area" geometry(Polygon) NOT NULL`},
	}

	for _, testCase := range testCases {
		actual, err := d.ColumnSQL(testCase.column)
		require.NoError(t, err)
		assert.Equal(t, testCase.expected, actual)
	}
}

func Test_Column_SQL_Serial_Before_Identity(t *testing.T) {
	d := newTestDriver(t, "9.6.24")

	actual, err := d.ColumnSQL(schema.BigInteger("id").AutoIncrement())
	require.NoError(t, err)
	assert.Equal(t, `"id" BIGSERIAL NOT NULL`, actual)
}

func Test_Column_SQL_Set_Unsupported(t *testing.T) {
	d := newTestDriver(t, "16.2")

	_, err := d.ColumnSQL(schema.Set("tags", "a", "b"))
	assert.ErrorIs(t, err, driver.ErrUnsupported)
}

func Test_Generate_Table_SQL(t *testing.T) {
	d := newTestDriver(t, "16.2")

	table := schema.MustTable("user",
		schema.Integer("id").AutoIncrement(),
		schema.Varchar("email", 64).WithComment("login"),
		schema.Varchar("city", 32),
		schema.NewPrimaryKey("id"),
		schema.NewUniqueIndex("email"),
		schema.NewIndex("city").Named("idx_city"),
	)

	statements, err := d.GenerateTableSQL(table)
	require.NoError(t, err)
	require.Len(t, statements, 3)
	assert.Equal(t,
		`CREATE TABLE "wt_user" (`+
			`"id" INTEGER GENERATED BY DEFAULT AS IDENTITY NOT NULL, `+
			`"email" VARCHAR(64) NOT NULL, `+
			`"city" VARCHAR(32) NOT NULL, `+
			`PRIMARY KEY ("id"), `+
			`CONSTRAINT "`+schema.GeneratedName("wt_user", []string{"email"}, "unique")+`" UNIQUE ("email"))`,
		statements[0],
	)
	assert.Equal(t, `CREATE INDEX "idx_city" ON "wt_user" ("city")`, statements[1])
	assert.Equal(t, `COMMENT ON COLUMN "wt_user"."email" IS 'login'`, statements[2])
}

func Test_Alter_Column_SQL(t *testing.T) {
	d := newTestDriver(t, "16.2")

	fragment, err := d.AlterColumnSQL(schema.Varchar("name", 64).Nullable().WithDefault("none"))
	require.NoError(t, err)
	assert.Equal(t,
		`DROP CONSTRAINT IF EXISTS "name_check", `+
			`ALTER COLUMN "name" TYPE VARCHAR(64) USING "name"::VARCHAR(64), `+
			`ALTER COLUMN "name" DROP NOT NULL, `+
			`ALTER COLUMN "name" SET DEFAULT 'none'`,
		fragment,
	)

	fragment, err = d.AlterColumnSQL(schema.Integer("count"))
	require.NoError(t, err)
	assert.Equal(t,
		`DROP CONSTRAINT IF EXISTS "count_check", `+
			`ALTER COLUMN "count" TYPE INTEGER USING "count"::INTEGER, `+
			`ALTER COLUMN "count" SET NOT NULL, `+
			`ALTER COLUMN "count" DROP DEFAULT`,
		fragment,
	)

	statements := d.AlterTableSQL("user", []string{fragment, d.DropColumnSQL("legacy")})
	assert.Equal(t, []string{
		`ALTER TABLE "wt_user" ` + fragment + `, DROP COLUMN "legacy"`,
	}, statements)
}

func Test_Alter_Column_SQL_Enum_Replaces_Check(t *testing.T) {
	d := newTestDriver(t, "16.2")

	source, err := d.ColumnSQL(schema.Enum("k", "a", "b"))
	require.NoError(t, err)
	target, err := d.ColumnSQL(schema.Enum("k", "a", "c"))
	require.NoError(t, err)
	assert.NotEqual(t, source, target)

	fragment, err := d.AlterColumnSQL(schema.Enum("k", "a", "c"))
	require.NoError(t, err)
	assert.Equal(t,
		`DROP CONSTRAINT IF EXISTS "k_check", `+
			`ALTER COLUMN "k" TYPE VARCHAR(1) USING "k"::VARCHAR(1), `+
			`ALTER COLUMN "k" SET NOT NULL, `+
			`ALTER COLUMN "k" DROP DEFAULT, `+
			`ADD CONSTRAINT "k_check" CHECK ("k" IN ('a','c'))`,
		fragment,
	)
}

func Test_Column_Change_SQL_Comments(t *testing.T) {
	d := newTestDriver(t, "16.2")

	before, after, err := d.ColumnChangeSQL("user",
		schema.Varchar("email", 64).WithComment("login"),
		schema.Varchar("email", 64).WithComment("contact"),
		false,
	)
	require.NoError(t, err)
	assert.Empty(t, before)
	assert.Equal(t, []string{`COMMENT ON COLUMN "wt_user"."email" IS 'contact'`}, after)

	_, after, err = d.ColumnChangeSQL("user",
		schema.Varchar("email", 64).WithComment("login"), schema.Varchar("email", 64), true,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{`COMMENT ON COLUMN "wt_user"."email" IS NULL`}, after)

	_, after, err = d.ColumnChangeSQL("user",
		schema.Varchar("email", 64).WithComment("login"), schema.Varchar("email", 64).WithComment("login"), true,
	)
	require.NoError(t, err)
	assert.Empty(t, after)

	_, after, err = d.ColumnChangeSQL("user", schema.Column{}, schema.Varchar("city", 64).WithComment("town"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{`COMMENT ON COLUMN "wt_user"."city" IS 'town'`}, after)

	_, after, err = d.ColumnChangeSQL("user", schema.Varchar("city", 64).WithComment("town"), schema.Column{}, false)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func Test_Foreign_Key_SQL(t *testing.T) {
	d := newTestDriver(t, "16.2")

	foreignKey := schema.NewForeignKey([]string{"user_id"}, "user", "id").
		Named("fk_login_user").
		OnDeleteCascade()

	add, err := d.AddForeignKeySQL("login", foreignKey)
	require.NoError(t, err)
	assert.Equal(t,
		`ALTER TABLE "wt_login" ADD CONSTRAINT "fk_login_user" FOREIGN KEY ("user_id") `+
			`REFERENCES "wt_user" ("id") ON DELETE CASCADE ON UPDATE NO ACTION`,
		add,
	)

	drop, err := d.DropForeignKeySQL("login", foreignKey)
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "wt_login" DROP CONSTRAINT "fk_login_user"`, drop)

	_, err = d.DropForeignKeySQL("login", schema.NewForeignKey([]string{"user_id"}, "user", "id"))
	assert.ErrorIs(t, err, driver.ErrUnsupported)
}

func Test_Column_From_Row(t *testing.T) {
	column, err := columnFromRow("user", statement.Row{
		"column_name":              "id",
		"udt_name":                 "int4",
		"is_nullable":              "NO",
		"column_default":           nil,
		"is_identity":              "YES",
		"formatted_type":           "integer",
		"column_comment":           nil,
		"collation_name":           nil,
		"character_maximum_length": nil,
		"datetime_precision":       nil,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.IntegerKind, column.Kind())
	assert.Equal(t, 32, column.Bits())
	assert.True(t, column.IsAutoIncrement())
	assert.False(t, column.IsNullable())
	assert.False(t, column.HasDefault())
}

func Test_Column_From_Row_Enum(t *testing.T) {
	column, err := columnFromRow("user", statement.Row{
		"column_name":              "sex",
		"udt_name":                 "varchar",
		"is_nullable":              "NO",
		"column_default":           "'male'::character varying",
		"is_identity":              "NO",
		"character_maximum_length": int64(6),
		"formatted_type":           "character varying(6)",
	}, []string{
		`CHECK (((sex)::text = ANY ((ARRAY['male'::character varying, 'female'::character varying])::text[])))`,
	})
	require.NoError(t, err)
	assert.Equal(t, schema.EnumKind, column.Kind())
	assert.Equal(t, []string{"male", "female"}, column.Values())
	assert.Equal(t, "male", column.Default())

	d := newTestDriver(t, "16.2")
	expected, err := d.ColumnSQL(schema.Enum("sex", "male", "female").WithDefault("male"))
	require.NoError(t, err)
	actual, err := d.ColumnSQL(column)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func Test_Column_From_Row_Geometry(t *testing.T) {
	column, err := columnFromRow("place", statement.Row{
		"column_name":    "location",
		"udt_name":       "geometry",
		"is_nullable":    "YES",
		"is_identity":    "NO",
		"formatted_type": "geometry(Point,4326)",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.GeometryPoint, column.GeometryType())
	assert.Equal(t, 4326, column.Srid())
	assert.True(t, column.IsNullable())
}

func Test_Column_From_Row_Unmapped_Type(t *testing.T) {
	_, err := columnFromRow("user", statement.Row{
		"column_name":    "range",
		"udt_name":       "int4range",
		"is_nullable":    "NO",
		"is_identity":    "NO",
		"formatted_type": "int4range",
	}, nil)
	require.Error(t, err)

	var mappingError *driver.SchemaMappingError
	require.True(t, errors.As(err, &mappingError))
	assert.Equal(t, "int4range", mappingError.Type)
	assert.ErrorIs(t, err, driver.ErrUnmappedType)
}

func Test_Classify_Default(t *testing.T) {
	assert.Nil(t, classifyDefault("nextval('wt_user_id_seq'::regclass)"))
	assert.Equal(t, "it's", classifyDefault("'it''s'::text"))
	assert.Equal(t, "abc", classifyDefault("'abc'::character varying"))
	assert.Equal(t, true, classifyDefault("true"))
	assert.Equal(t, false, classifyDefault("false"))
	assert.Equal(t, "42", classifyDefault("42"))
	assert.Equal(t, schema.CurrentTimestamp, classifyDefault("CURRENT_TIMESTAMP"))
	assert.Equal(t, schema.CurrentTimestamp, classifyDefault("now()"))
	assert.Equal(t, schema.Raw("gen_random_uuid()"), classifyDefault("gen_random_uuid()"))
}
