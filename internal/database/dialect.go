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

package database

import (
	"github.com/go-errors/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"strconv"
	"strings"
)

const (
	mysqlParseError        = 1064
	mysqlEmptyQueryError   = 1065
	sqlServerSyntaxError   = 102
	sqlServerKeywordError  = 156
	sqlServerInvalidObject = 208
)

func placeholder(
	engine config.EngineType, position int,
) string {

	switch engine {
	case config.PostgreSQL:
		return "$" + strconv.Itoa(position)
	case config.SQLServer:
		return "@p" + strconv.Itoa(position)
	default:
		return "?"
	}
}

func quoteString(
	engine config.EngineType, value string,
) string {

	switch engine {
	case config.PostgreSQL:
		// pq prefixes escape string literals with a space
		return strings.TrimSpace(pq.QuoteLiteral(value))
	case config.MySQL:
		// the default sql_mode treats backslashes as escape characters
		value = strings.ReplaceAll(value, `\`, `\\`)
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	default:
		return driver.QuoteLiteral(value)
	}
}

// isPrepareError reports whether the error was raised while the
// server compiled the statement, which some drivers only report
// at first execution
func isPrepareError(
	engine config.EngineType, err error,
) bool {

	if err == nil {
		return false
	}

	switch engine {
	case config.PostgreSQL:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return pgerrcode.IsSyntaxErrororAccessRuleViolation(pgErr.Code)
		}

	case config.MySQL:
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			return mysqlErr.Number == mysqlParseError || mysqlErr.Number == mysqlEmptyQueryError
		}

	case config.SQLServer:
		var mssqlErr mssql.Error
		if errors.As(err, &mssqlErr) {
			switch mssqlErr.Number {
			case sqlServerSyntaxError, sqlServerKeywordError, sqlServerInvalidObject:
				return true
			}
		}

	case config.SQLite:
		// modernc.org/sqlite only exposes the result code, which is
		// the generic SQLITE_ERROR for syntax errors
		message := strings.ToLower(err.Error())
		return strings.Contains(message, "syntax error") || strings.Contains(message, "no such table")
	}
	return false
}
