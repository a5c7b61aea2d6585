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

package postgresql

const queryListTables = `
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema = current_schema()
  AND table_name LIKE :prefix ESCAPE '!'
ORDER BY table_name`

const queryListColumns = `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema()
  AND table_name = :table_name
ORDER BY ordinal_position`

const queryListConstraints = `
SELECT constraint_name
FROM information_schema.table_constraints
WHERE table_schema = current_schema()
  AND table_name = :table_name
  AND constraint_type = :constraint_type
ORDER BY constraint_name`

const queryListIndexes = `
SELECT i.relname AS index_name
FROM pg_catalog.pg_index x
JOIN pg_catalog.pg_class i ON i.oid = x.indexrelid
JOIN pg_catalog.pg_class t ON t.oid = x.indrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
WHERE n.nspname = current_schema()
  AND t.relname = :table_name
  AND NOT EXISTS (
    SELECT 1
    FROM pg_catalog.pg_constraint c
    WHERE c.conindid = x.indexrelid
      AND c.conrelid = x.indrelid
      AND c.contype IN ('p', 'u', 'x')
  )
ORDER BY i.relname`

const queryReadColumn = `
SELECT c.column_name,
       c.udt_name,
       c.is_nullable,
       c.column_default,
       c.character_maximum_length,
       c.numeric_precision,
       c.numeric_scale,
       c.datetime_precision,
       c.collation_name,
       c.is_identity,
       format_type(a.atttypid, a.atttypmod) AS formatted_type,
       col_description(a.attrelid, a.attnum) AS column_comment
FROM information_schema.columns c
JOIN pg_catalog.pg_namespace n ON n.nspname = c.table_schema
JOIN pg_catalog.pg_class t ON t.relnamespace = n.oid AND t.relname = c.table_name
JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attname = c.column_name
WHERE c.table_schema = current_schema()
  AND c.table_name = :table_name
  AND c.column_name = :column_name`

const queryReadColumnCheck = `
SELECT pg_get_constraintdef(co.oid) AS definition
FROM pg_catalog.pg_constraint co
JOIN pg_catalog.pg_class t ON t.oid = co.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
JOIN pg_catalog.pg_attribute a ON a.attrelid = co.conrelid AND a.attnum = co.conkey[1]
WHERE co.contype = 'c'
  AND n.nspname = current_schema()
  AND t.relname = :table_name
  AND a.attname = :column_name
  AND array_length(co.conkey, 1) = 1
ORDER BY co.conname`

const queryReadConstraintColumns = `
SELECT column_name
FROM information_schema.key_column_usage
WHERE table_schema = current_schema()
  AND table_name = :table_name
  AND constraint_name = :key_name
ORDER BY ordinal_position`

const queryReadIndexColumns = `
SELECT a.attname AS column_name
FROM pg_catalog.pg_index x
JOIN pg_catalog.pg_class i ON i.oid = x.indexrelid
JOIN pg_catalog.pg_namespace n ON n.oid = i.relnamespace
CROSS JOIN LATERAL unnest(x.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
JOIN pg_catalog.pg_attribute a ON a.attrelid = x.indrelid AND a.attnum = k.attnum
WHERE n.nspname = current_schema()
  AND i.relname = :key_name
ORDER BY k.ord`

const queryReadForeignKey = `
SELECT la.attname AS column_name,
       ft.relname AS foreign_table,
       fa.attname AS foreign_column,
       c.confupdtype::text AS update_rule,
       c.confdeltype::text AS delete_rule
FROM pg_catalog.pg_constraint c
JOIN pg_catalog.pg_class t ON t.oid = c.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
JOIN pg_catalog.pg_class ft ON ft.oid = c.confrelid
CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(local_attnum, foreign_attnum, ord)
JOIN pg_catalog.pg_attribute la ON la.attrelid = c.conrelid AND la.attnum = k.local_attnum
JOIN pg_catalog.pg_attribute fa ON fa.attrelid = c.confrelid AND fa.attnum = k.foreign_attnum
WHERE c.contype = 'f'
  AND n.nspname = current_schema()
  AND t.relname = :table_name
  AND c.conname = :key_name
ORDER BY k.ord`
