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
	"fmt"
	"github.com/noctarius/schemadiff/internal/supporting"
	"github.com/noctarius/schemadiff/internal/supporting/logging"
	"github.com/noctarius/schemadiff/internal/version"
	spiconfig "github.com/noctarius/schemadiff/spi/config"
	"github.com/urfave/cli"
	"log"
	"os"
)

var (
	configurationFile string
	verbose           bool
	withCaller        bool
	logToStdErr       bool
	versionOnly       bool
)

var config = &spiconfig.Config{}

func main() {
	app := &cli.App{
		Name:    version.BinName,
		Usage:   "Schema introspection and migration for MySQL, PostgreSQL, SQLite and SQL Server",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config,c",
				Value:       "",
				Usage:       "Load configuration from `FILE`",
				Destination: &configurationFile,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Show verbose output",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "caller",
				Usage:       "Collect caller information for log messages",
				Destination: &withCaller,
			},
			&cli.BoolFlag{
				Name:        "log-to-stderr",
				Usage:       "Redirects logging output to stderr, keeping stdout for the generated statements",
				Destination: &logToStdErr,
			},
			&cli.BoolFlag{
				Name:        "version",
				Usage:       "Prints the version and exits",
				Destination: &versionOnly,
			},
		},
		HideVersion: true,
		Before:      initialize,
		Action:      printVersion,
		Commands: []cli.Command{
			diffCommand,
			dumpCommand,
			createCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printVersion(*cli.Context) error {
	fmt.Fprintf(os.Stderr, "%s version %s (git revision %s; branch %s)\n",
		version.BinName, version.Version, version.CommitHash, version.Branch,
	)
	return nil
}

func initialize(*cli.Context) error {
	if versionOnly {
		if err := printVersion(nil); err != nil {
			return err
		}
		os.Exit(0)
	}

	logging.WithCaller = withCaller
	logging.WithVerbose = verbose

	// No configuration file set? Try env variable!
	if configurationFile == "" {
		if cf, present := os.LookupEnv("SCHEMADIFF_CONFIG"); present {
			fmt.Fprintf(os.Stderr, "Using configuration file from environment variable\n")
			configurationFile = cf
		}
	}

	if configurationFile != "" {
		fmt.Fprintf(os.Stderr, "Loading configuration file: %s\n", configurationFile)
		if err := spiconfig.LoadFile(configurationFile, config); err != nil {
			return supporting.AdaptError(err, supporting.ExitCodeConfiguration)
		}
	}

	if err := logging.InitializeLogging(config, logToStdErr); err != nil {
		return supporting.AdaptError(err, supporting.ExitCodeConfiguration)
	}
	return nil
}
