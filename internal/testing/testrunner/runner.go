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

package testrunner

import (
	"context"
	"fmt"
	"github.com/noctarius/schemadiff/internal/connection"
	"github.com/noctarius/schemadiff/internal/database"
	"github.com/noctarius/schemadiff/internal/supporting"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type ContainerSetup = func() (testcontainers.Container, *config.Config, error)

// Context is handed to every integration test
type Context interface {
	context.Context
	// Connection is bound to the table prefix of the test
	Connection() *connection.Connection
	Prefix() string
	Exec(sql string) error
}

// TestRunner is embedded into integration suites. It starts one
// database container per suite, every test uses its own random
// table prefix.
type TestRunner struct {
	suite.Suite
	setup     ContainerSetup
	container testcontainers.Container
	database  *database.Database
}

func NewTestRunner(
	setup ContainerSetup,
) *TestRunner {

	return &TestRunner{setup: setup}
}

func (tr *TestRunner) SetupSuite() {
	container, c, err := tr.setup()
	tr.Require().NoError(err, "failed to start database container")
	tr.container = container

	tr.database, err = database.Open(context.Background(), c)
	tr.Require().NoError(err, "failed to connect to database container")
}

func (tr *TestRunner) TearDownSuite() {
	if tr.database != nil {
		tr.NoError(tr.database.Close())
	}
	if tr.container != nil {
		tr.NoError(tr.container.Terminate(context.Background()))
	}
}

func (tr *TestRunner) Database() *database.Database {
	return tr.database
}

func (tr *TestRunner) RunTest(
	fn func(ctx Context), options ...connection.Option,
) {

	prefix := fmt.Sprintf("t%s_", supporting.RandomTextString(8))
	conn, err := connection.New(tr.database, prefix, options...)
	tr.Require().NoError(err)

	fn(&testContext{
		Context:    context.Background(),
		connection: conn,
		prefix:     prefix,
		database:   tr.database,
	})
}

type testContext struct {
	context.Context
	connection *connection.Connection
	prefix     string
	database   *database.Database
}

func (t *testContext) Connection() *connection.Connection {
	return t.connection
}

func (t *testContext) Prefix() string {
	return t.prefix
}

func (t *testContext) Exec(
	sql string,
) error {

	_, err := t.database.ExecContext(t, sql)
	return err
}
