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

package sqlite

const queryListTables = `
SELECT name AS table_name
FROM sqlite_master
WHERE type = 'table'
  AND name NOT LIKE 'sqlite!_%' ESCAPE '!'
  AND name LIKE :prefix ESCAPE '!'
ORDER BY name`

const queryListColumns = `
SELECT name AS column_name
FROM pragma_table_info(:table_name)
ORDER BY cid`

const queryReadCreateTable = `
SELECT sql AS create_sql
FROM sqlite_master
WHERE type = 'table'
  AND name = :table_name`

const queryReadColumn = `
SELECT name AS column_name,
       type AS column_type,
       "notnull" AS not_null,
       dflt_value AS column_default,
       pk AS pk
FROM pragma_table_info(:table_name)
WHERE name = :column_name`

const queryReadPrimaryKeyColumns = `
SELECT name AS column_name
FROM pragma_table_info(:table_name)
WHERE pk > 0
ORDER BY pk`

const queryListUniqueIndexes = `
SELECT name AS index_name
FROM pragma_index_list(:table_name)
WHERE "unique" = 1
  AND origin IN ('c', 'u')
ORDER BY name`

const queryListIndexes = `
SELECT name AS index_name
FROM pragma_index_list(:table_name)
WHERE "unique" = 0
  AND origin = 'c'
ORDER BY name`

const queryReadIndexColumns = `
SELECT name AS column_name
FROM pragma_index_info(:key_name)
ORDER BY seqno`

const queryListForeignKeys = `
SELECT DISTINCT CAST(id AS TEXT) AS key_name, id
FROM pragma_foreign_key_list(:table_name)
ORDER BY id`

const queryReadForeignKey = `
SELECT "table" AS foreign_table,
       "from" AS column_name,
       "to" AS foreign_column,
       on_update AS update_rule,
       on_delete AS delete_rule
FROM pragma_foreign_key_list(:table_name)
WHERE id = :key_id
ORDER BY seq`
