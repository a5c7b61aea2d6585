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
	"context"
	"database/sql"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-errors/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/microsoft/go-mssqldb/msdsn"
	"github.com/noctarius/schemadiff/internal/supporting/logging"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

const defaultTimeout = time.Second * 10

var versionQueries = map[config.EngineType]string{
	config.MySQL:      "SELECT VERSION()",
	config.PostgreSQL: "SHOW server_version",
	config.SQLite:     "SELECT sqlite_version()",
	config.SQLServer:  "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))",
}

// Database is a connection pool to one of the supported engines and
// the driver.Handle the schema drivers operate on
type Database struct {
	engine        config.EngineType
	db            *sql.DB
	serverVersion string
	logger        *logging.Logger
}

// Open creates the connection pool for the configured engine, waits
// for the server to become reachable and reads the server version
func Open(
	ctx context.Context, c *config.Config,
) (*Database, error) {

	engine := config.EngineType(
		config.GetOrDefault(c, config.PropertyDatabaseEngine, string(c.Database.Engine)),
	)
	connection := config.GetOrDefault(c, config.PropertyDatabaseConnection, "")
	password := config.GetOrDefault(c, config.PropertyDatabasePassword, "")
	timeout := config.GetOrDefault(c, config.PropertyDatabaseTimeout, defaultTimeout)

	if connection == "" {
		return nil, errors.Errorf("no connection configured for engine '%s'", engine)
	}

	db, err := openPool(engine, connection, password)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	database, err := newDatabase(connectCtx, engine, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return database, nil
}

// Wrap creates a Database from an already opened pool
func Wrap(
	ctx context.Context, engine config.EngineType, db *sql.DB,
) (*Database, error) {

	return newDatabase(ctx, engine, db)
}

func newDatabase(
	ctx context.Context, engine config.EngineType, db *sql.DB,
) (*Database, error) {

	logger, err := logging.NewLogger("Database")
	if err != nil {
		return nil, err
	}

	versionQuery, ok := versionQueries[engine]
	if !ok {
		return nil, errors.Errorf("%w: '%s'", driver.ErrUnknownEngine, engine)
	}

	operation := func() error {
		return db.PingContext(ctx)
	}
	notify := func(err error, next time.Duration) {
		logger.Warnf("Database not reachable, retrying in %s: %s", next, err.Error())
	}
	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8), ctx)
	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return nil, errors.Errorf("failed to connect to %s database: %w", engine, err)
	}

	var serverVersion string
	if err := db.QueryRowContext(ctx, versionQuery).Scan(&serverVersion); err != nil {
		return nil, errors.Errorf("failed to read %s server version: %w", engine, err)
	}
	logger.Infof("Connected to %s server version %s", engine, serverVersion)

	return &Database{
		engine:        engine,
		db:            db,
		serverVersion: serverVersion,
		logger:        logger,
	}, nil
}

func openPool(
	engine config.EngineType, connection, password string,
) (*sql.DB, error) {

	switch engine {
	case config.MySQL:
		mysqlConfig, err := mysql.ParseDSN(connection)
		if err != nil {
			return nil, errors.Errorf("invalid mysql connection: %w", err)
		}
		if password != "" {
			mysqlConfig.Passwd = password
		}
		mysqlConfig.ParseTime = true
		connector, err := mysql.NewConnector(mysqlConfig)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		return sql.OpenDB(connector), nil

	case config.PostgreSQL:
		connConfig, err := pgx.ParseConfig(connection)
		if err != nil {
			return nil, errors.Errorf("invalid postgres connection: %w", err)
		}
		if password != "" {
			connConfig.Password = password
		}
		return stdlib.OpenDB(*connConfig), nil

	case config.SQLite:
		db, err := sql.Open("sqlite", connection)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		// every connection to an in-memory database sees its own database
		db.SetMaxOpenConns(1)
		return db, nil

	case config.SQLServer:
		if _, err := msdsn.Parse(connection); err != nil {
			return nil, errors.Errorf("invalid sqlsrv connection: %w", err)
		}
		dsn, err := withSqlServerPassword(connection, password)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlserver", dsn)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		return db, nil
	}
	return nil, errors.Errorf("%w: '%s'", driver.ErrUnknownEngine, engine)
}

func withSqlServerPassword(
	connection, password string,
) (string, error) {

	if password == "" {
		return connection, nil
	}
	u, err := url.Parse(connection)
	if err != nil || u.Scheme != "sqlserver" {
		// ADO style key/value connection string
		return connection + ";password=" + password, nil
	}
	username := ""
	if u.User != nil {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, password)
	return u.String(), nil
}

func (d *Database) Engine() config.EngineType {
	return d.engine
}

func (d *Database) ServerVersion() string {
	return d.serverVersion
}

// DB returns the underlying connection pool
func (d *Database) DB() *sql.DB {
	return d.db
}

func (d *Database) QueryContext(
	ctx context.Context, query string, args ...any,
) (*sql.Rows, error) {

	return d.db.QueryContext(ctx, query, args...)
}

func (d *Database) PrepareContext(
	ctx context.Context, query string,
) (*sql.Stmt, error) {

	return d.db.PrepareContext(ctx, query)
}

func (d *Database) ExecContext(
	ctx context.Context, query string, args ...any,
) (sql.Result, error) {

	d.logger.Verbosef("Executing: %s", query)
	return d.db.ExecContext(ctx, query, args...)
}

func (d *Database) Placeholder(
	position int,
) string {

	return placeholder(d.engine, position)
}

func (d *Database) QuoteString(
	value string,
) string {

	return quoteString(d.engine, value)
}

func (d *Database) IsPrepareError(
	err error,
) bool {

	return isPrepareError(d.engine, err)
}

// WithSnapshot runs fn inside a read-only transaction. The handle
// passed to fn is bound to the transaction and must not be used
// after fn returns. The transaction is always rolled back.
func (d *Database) WithSnapshot(
	ctx context.Context, fn func(handle driver.Handle) error,
) error {

	tx, err := d.db.BeginTx(ctx, snapshotOptions(d.engine))
	if err != nil {
		return errors.Errorf("failed to start snapshot transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			d.logger.Warnf("Failed to release snapshot transaction: %s", err.Error())
		}
	}()

	d.logger.Debugf("Started snapshot transaction")
	return fn(&txHandle{parent: d, tx: tx})
}

func (d *Database) Close() error {
	return d.db.Close()
}

func snapshotOptions(
	engine config.EngineType,
) *sql.TxOptions {

	switch engine {
	case config.MySQL, config.PostgreSQL:
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	default:
		return &sql.TxOptions{}
	}
}

type txHandle struct {
	parent *Database
	tx     *sql.Tx
}

func (t *txHandle) Engine() config.EngineType {
	return t.parent.engine
}

func (t *txHandle) ServerVersion() string {
	return t.parent.serverVersion
}

func (t *txHandle) QueryContext(
	ctx context.Context, query string, args ...any,
) (*sql.Rows, error) {

	return t.tx.QueryContext(ctx, query, args...)
}

func (t *txHandle) PrepareContext(
	ctx context.Context, query string,
) (*sql.Stmt, error) {

	return t.tx.PrepareContext(ctx, query)
}

func (t *txHandle) Placeholder(
	position int,
) string {

	return t.parent.Placeholder(position)
}

func (t *txHandle) QuoteString(
	value string,
) string {

	return t.parent.QuoteString(value)
}

func (t *txHandle) IsPrepareError(
	err error,
) bool {

	return t.parent.IsPrepareError(err)
}
