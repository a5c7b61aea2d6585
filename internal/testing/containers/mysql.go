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

const mysqlPassword = "mysql"

// SetupMySQLContainer starts a MySQL server with an empty database
func SetupMySQLContainer() (testcontainers.Container, *config.Config, error) {
	d := &databaseContainer{
		engine: config.MySQL,
		image:  "mysql:8.4",
		port:   "3306/tcp",
		env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      databaseName,
		},
		// the entrypoint starts a temporary server without networking first
		waitingFor: wait.ForAll(
			wait.ForLog("port: 3306  MySQL Community Server"),
			wait.ForListeningPort("3306/tcp"),
		).WithDeadline(3 * time.Minute),
		password: mysqlPassword,
		connectionFor: func(host string, port int) string {
			return fmt.Sprintf("root@tcp(%s:%d)/%s", host, port, databaseName)
		},
	}
	return d.start()
}
