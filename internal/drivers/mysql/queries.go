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

package mysql

const queryListTables = `
SELECT TABLE_NAME AS table_name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
  AND TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME LIKE :prefix ESCAPE '!'
ORDER BY TABLE_NAME`

const queryListColumns = `
SELECT COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME = :table_name
ORDER BY ORDINAL_POSITION`

const queryListConstraints = `
SELECT CONSTRAINT_NAME AS constraint_name
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS
WHERE TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME = :table_name
  AND CONSTRAINT_TYPE = :constraint_type
ORDER BY CONSTRAINT_NAME`

const queryListIndexes = `
SELECT DISTINCT s.INDEX_NAME AS index_name
FROM INFORMATION_SCHEMA.STATISTICS s
LEFT JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
       ON tc.TABLE_SCHEMA = s.TABLE_SCHEMA
      AND tc.TABLE_NAME = s.TABLE_NAME
      AND tc.CONSTRAINT_NAME = s.INDEX_NAME
WHERE tc.CONSTRAINT_NAME IS NULL
  AND s.TABLE_SCHEMA = DATABASE()
  AND s.TABLE_NAME = :table_name
ORDER BY s.INDEX_NAME`

const queryReadColumnTemplate = `
SELECT COLUMN_NAME AS column_name,
       DATA_TYPE AS data_type,
       COLUMN_TYPE AS column_type,
       IS_NULLABLE AS is_nullable,
       COLUMN_DEFAULT AS column_default,
       EXTRA AS extra,
       COLUMN_COMMENT AS column_comment,
       COLLATION_NAME AS collation_name,
       CHARACTER_MAXIMUM_LENGTH AS character_maximum_length,
       NUMERIC_PRECISION AS numeric_precision,
       NUMERIC_SCALE AS numeric_scale,
       DATETIME_PRECISION AS datetime_precision%s
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME = :table_name
  AND COLUMN_NAME = :column_name`

const querySrsIdColumn = `,
       SRS_ID AS srs_id`

const queryReadPrimaryKeyColumns = `
SELECT COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME = :table_name
  AND CONSTRAINT_NAME = :key_name
ORDER BY ORDINAL_POSITION`

const queryReadIndexColumns = `
SELECT COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.STATISTICS
WHERE TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME = :table_name
  AND INDEX_NAME = :key_name
ORDER BY SEQ_IN_INDEX`

const queryReadForeignKey = `
SELECT k.COLUMN_NAME AS column_name,
       k.REFERENCED_TABLE_NAME AS referenced_table_name,
       k.REFERENCED_COLUMN_NAME AS referenced_column_name,
       r.UPDATE_RULE AS update_rule,
       r.DELETE_RULE AS delete_rule
FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS r
  ON r.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA
 AND r.TABLE_NAME = k.TABLE_NAME
 AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME
WHERE k.TABLE_SCHEMA = DATABASE()
  AND k.TABLE_NAME = :table_name
  AND k.CONSTRAINT_NAME = :key_name
ORDER BY k.ORDINAL_POSITION`
