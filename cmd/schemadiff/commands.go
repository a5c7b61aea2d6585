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

package main

import (
	"context"
	"fmt"
	"github.com/goccy/go-json"
	"github.com/noctarius/schemadiff/internal/sample"
	"github.com/noctarius/schemadiff/internal/schemadiffer"
	"github.com/noctarius/schemadiff/internal/supporting"
	spiconfig "github.com/noctarius/schemadiff/spi/config"
	"github.com/urfave/cli"
	"os"
	"os/signal"
	"syscall"
)

var (
	jsonOutput bool
	apply      bool
)

var diffCommand = cli.Command{
	Name:  "diff",
	Usage: "Prints the statements migrating the database to the sample schema",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Prints the statements as a JSON array",
			Destination: &jsonOutput,
		},
		&cli.BoolFlag{
			Name:        "apply",
			Usage:       "Executes the statements against the database",
			Destination: &apply,
		},
	},
	Action: func(*cli.Context) error {
		return withSchemaDiffer(func(ctx context.Context, differ *schemadiffer.SchemaDiffer) error {
			statements, err := differ.Diff(ctx)
			if err != nil {
				return supporting.AdaptError(err, supporting.ExitCodeIntrospection)
			}
			if err := printStatements(statements); err != nil {
				return err
			}
			if apply {
				if err := differ.Apply(ctx, statements); err != nil {
					return supporting.AdaptError(err, supporting.ExitCodeApply)
				}
			}
			return nil
		})
	},
}

var dumpCommand = cli.Command{
	Name:  "dump",
	Usage: "Prints the introspected database schema as JSON",
	Action: func(*cli.Context) error {
		return withSchemaDiffer(func(ctx context.Context, differ *schemadiffer.SchemaDiffer) error {
			source, err := differ.Dump(ctx)
			if err != nil {
				return supporting.AdaptError(err, supporting.ExitCodeIntrospection)
			}
			content, err := json.MarshalIndent(source, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, string(content))
			return err
		})
	},
}

var createCommand = cli.Command{
	Name:  "create",
	Usage: "Prints the statements creating the sample schema in an empty database",
	Action: func(*cli.Context) error {
		return withSchemaDiffer(func(_ context.Context, differ *schemadiffer.SchemaDiffer) error {
			statements, err := differ.CreateStatements()
			if err != nil {
				return supporting.AdaptError(err, supporting.ExitCodeIntrospection)
			}
			return printStatements(statements)
		})
	},
}

func withSchemaDiffer(
	fn func(ctx context.Context, differ *schemadiffer.SchemaDiffer) error,
) error {

	if spiconfig.GetOrDefault(config, spiconfig.PropertyDatabaseConnection, "") == "" {
		return cli.NewExitError("Database connection string required", supporting.ExitCodeConfiguration)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	differ, container, err := schemadiffer.New(config, sample.Schema())
	if err != nil {
		return supporting.AdaptError(err, supporting.ExitCodeConnection)
	}
	defer func() {
		if err := container.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down: %v\n", err)
		}
	}()

	return fn(ctx, differ)
}

func printStatements(
	statements []string,
) error {

	if jsonOutput {
		content, err := json.Marshal(statements)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(content))
		return err
	}

	for _, statement := range statements {
		if _, err := fmt.Fprintf(os.Stdout, "%s;\n", statement); err != nil {
			return err
		}
	}
	return nil
}
