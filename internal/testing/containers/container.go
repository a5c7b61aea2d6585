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
	"context"
	"github.com/docker/go-connections/nat"
	"github.com/noctarius/schemadiff/internal/supporting/logging"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const databaseName = "schemadiff"

type logConsumer struct {
	logger *logging.Logger
}

func (l *logConsumer) Accept(log testcontainers.Log) {
	if log.LogType == testcontainers.StderrLog {
		l.logger.Verboseln(string(log.Content))
	} else {
		l.logger.Traceln(string(log.Content))
	}
}

type databaseContainer struct {
	engine        config.EngineType
	image         string
	port          string
	env           map[string]string
	cmd           []string
	waitingFor    wait.Strategy
	password      string
	connectionFor func(host string, port int) string
}

// start runs the container and returns a configuration connecting
// to its database
func (d *databaseContainer) start() (testcontainers.Container, *config.Config, error) {
	logger, err := logging.NewLogger("testcontainers")
	if err != nil {
		return nil, nil, err
	}
	containerLogger, err := logging.NewLogger("testcontainers-" + string(d.engine))
	if err != nil {
		return nil, nil, err
	}

	container, err := testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        d.image,
				ExposedPorts: []string{d.port},
				Env:          d.env,
				Cmd:          d.cmd,
				WaitingFor:   d.waitingFor,
				LogConsumerCfg: &testcontainers.LogConsumerConfig{
					Consumers: []testcontainers.LogConsumer{&logConsumer{logger: containerLogger}},
				},
			},
			Started: true,
			Logger:  logger,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	host, err := container.Host(context.Background())
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, nil, err
	}

	port, err := container.MappedPort(context.Background(), nat.Port(d.port))
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, nil, err
	}

	logger.Infof("Started %s container at %s:%d", d.engine, host, port.Int())
	return container, &config.Config{
		Database: config.DatabaseConfig{
			Engine:     d.engine,
			Connection: d.connectionFor(host, port.Int()),
			Password:   d.password,
		},
	}, nil
}
