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

package containers

import (
	"fmt"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"time"
)

const postgresPassword = "postgres"

// SetupPostgreSQLContainer starts a PostgreSQL server with an empty
// database
func SetupPostgreSQLContainer() (testcontainers.Container, *config.Config, error) {
	d := &databaseContainer{
		engine: config.PostgreSQL,
		image:  "postgres:16-alpine",
		port:   "5432/tcp",
		cmd:    []string{"-c", "fsync=off"},
		env: map[string]string{
			"POSTGRES_DB":       databaseName,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_USER":     "postgres",
		},
		// the init scripts run against a temporary server first
		waitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
		password: postgresPassword,
		connectionFor: func(host string, port int) string {
			return fmt.Sprintf("postgres://postgres@%s:%d/%s?sslmode=disable", host, port, databaseName)
		},
	}
	return d.start()
}
