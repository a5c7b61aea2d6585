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

package fakes

import (
	"context"
	"database/sql"
	"github.com/go-errors/errors"
	"github.com/noctarius/schemadiff/spi/config"
	"github.com/noctarius/schemadiff/spi/driver"
	"strconv"
)

var ErrNoDatabase = errors.New("fake handle has no database")

// Handle is a driver.Handle without a database behind it, used to
// test the rendering of drivers against a specific server version
type Handle struct {
	EngineType config.EngineType
	Version    string
}

func NewHandle(
	engine config.EngineType, serverVersion string,
) *Handle {

	return &Handle{
		EngineType: engine,
		Version:    serverVersion,
	}
}

func (h *Handle) Engine() config.EngineType {
	return h.EngineType
}

func (h *Handle) ServerVersion() string {
	return h.Version
}

func (h *Handle) QueryContext(
	_ context.Context, _ string, _ ...any,
) (*sql.Rows, error) {

	return nil, ErrNoDatabase
}

func (h *Handle) PrepareContext(
	_ context.Context, _ string,
) (*sql.Stmt, error) {

	return nil, ErrNoDatabase
}

func (h *Handle) Placeholder(
	position int,
) string {

	switch h.EngineType {
	case config.PostgreSQL:
		return "$" + strconv.Itoa(position)
	case config.SQLServer:
		return "@p" + strconv.Itoa(position)
	}
	return "?"
}

func (h *Handle) QuoteString(
	value string,
) string {

	return driver.QuoteLiteral(value)
}

// SnapshotHandle counts the snapshots requested through it
type SnapshotHandle struct {
	*Handle
	Snapshots int
}

func NewSnapshotHandle(
	engine config.EngineType, serverVersion string,
) *SnapshotHandle {

	return &SnapshotHandle{Handle: NewHandle(engine, serverVersion)}
}

func (h *SnapshotHandle) WithSnapshot(
	_ context.Context, fn func(handle driver.Handle) error,
) error {

	h.Snapshots++
	return fn(h.Handle)
}
