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

package schemadiffer

import (
	"context"
	"github.com/noctarius/schemadiff/internal/connection"
	"github.com/noctarius/schemadiff/internal/database"
	_ "github.com/noctarius/schemadiff/internal/drivers/all"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/schema"
	"github.com/noctarius/schemadiff/spi/wiring"
)

var StaticModule = wiring.DefineModule(
	"Static", func(module wiring.Module) {
		module.Provide(func(c *config.Config) (*database.Database, error) {
			return database.Open(context.Background(), c)
		})

		module.Provide(func(c *config.Config, db *database.Database) (*connection.Connection, error) {
			prefix := config.GetOrDefault(c, config.PropertyDatabasePrefix, "")
			alwaysAlter := config.GetOrDefault(c, config.PropertyDiffAlwaysAlter, false)
			snapshot := config.GetOrDefault(c, config.PropertyDiffSnapshot, true)

			return connection.New(db, prefix,
				connection.WithAlwaysAlterColumns(alwaysAlter),
				connection.WithSnapshot(snapshot),
			)
		})

		module.Provide(NewSchemaDiffer)
	},
)

// NewContainer wires the schema differ for the configured database
// and the given target schema. Further modules may replace any of
// the static services.
func NewContainer(
	c *config.Config, target *schema.Schema, modules ...wiring.Module,
) (wiring.Container, error) {

	dynamicModule := wiring.DefineModule(
		"Dynamic", func(module wiring.Module) {
			module.Supply(c)
			module.Supply(target)
		},
	)

	return wiring.NewContainer(append([]wiring.Module{dynamicModule, StaticModule}, modules...)...)
}

// New resolves a schema differ from a freshly wired container
func New(
	c *config.Config, target *schema.Schema,
) (*SchemaDiffer, wiring.Container, error) {

	container, err := NewContainer(c, target)
	if err != nil {
		return nil, nil, err
	}

	var differ *SchemaDiffer
	if err := container.Service(&differ); err != nil {
		_ = container.Shutdown()
		return nil, nil, err
	}
	return differ, container, nil
}
