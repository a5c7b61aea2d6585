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

package sqlserver

const queryListTables = `
SELECT TABLE_NAME AS table_name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
  AND TABLE_SCHEMA = SCHEMA_NAME()
  AND TABLE_NAME LIKE :prefix ESCAPE '!'
ORDER BY TABLE_NAME`

const queryListColumns = `
SELECT COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = SCHEMA_NAME()
  AND TABLE_NAME = :table_name
ORDER BY ORDINAL_POSITION`

const queryListConstraints = `
SELECT CONSTRAINT_NAME AS constraint_name
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS
WHERE TABLE_SCHEMA = SCHEMA_NAME()
  AND TABLE_NAME = :table_name
  AND CONSTRAINT_TYPE = :constraint_type
ORDER BY CONSTRAINT_NAME`

const queryListIndexes = `
SELECT i.name AS index_name
FROM sys.indexes i
WHERE i.object_id = OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + '.' + QUOTENAME(:table_name))
  AND i.type > 0
  AND i.is_primary_key = 0
  AND i.is_unique_constraint = 0
  AND i.is_unique = 0
ORDER BY i.name`

const queryReadColumn = `
SELECT c.COLUMN_NAME AS column_name,
       c.DATA_TYPE AS data_type,
       c.IS_NULLABLE AS is_nullable,
       c.COLUMN_DEFAULT AS column_default,
       c.CHARACTER_MAXIMUM_LENGTH AS character_maximum_length,
       c.NUMERIC_PRECISION AS numeric_precision,
       c.NUMERIC_SCALE AS numeric_scale,
       c.DATETIME_PRECISION AS datetime_precision,
       COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)),
                      c.COLUMN_NAME, 'IsIdentity') AS is_identity
FROM INFORMATION_SCHEMA.COLUMNS c
WHERE c.TABLE_SCHEMA = SCHEMA_NAME()
  AND c.TABLE_NAME = :table_name
  AND c.COLUMN_NAME = :column_name`

const queryReadColumnChecks = `
SELECT cc.definition AS definition
FROM sys.check_constraints cc
JOIN sys.columns c
  ON c.object_id = cc.parent_object_id
 AND c.column_id = cc.parent_column_id
WHERE cc.parent_object_id = OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + '.' + QUOTENAME(:table_name))
  AND c.name = :column_name
ORDER BY cc.name`

const queryReadConstraintColumns = `
SELECT COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = SCHEMA_NAME()
  AND TABLE_NAME = :table_name
  AND CONSTRAINT_NAME = :key_name
ORDER BY ORDINAL_POSITION`

const queryReadIndexColumns = `
SELECT c.name AS column_name
FROM sys.indexes i
JOIN sys.index_columns ic
  ON ic.object_id = i.object_id
 AND ic.index_id = i.index_id
JOIN sys.columns c
  ON c.object_id = ic.object_id
 AND c.column_id = ic.column_id
WHERE i.object_id = OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + '.' + QUOTENAME(:table_name))
  AND i.name = :key_name
  AND ic.is_included_column = 0
ORDER BY ic.key_ordinal`

const queryReadForeignKey = `
SELECT pc.name AS column_name,
       OBJECT_NAME(fk.referenced_object_id) AS foreign_table,
       rc.name AS foreign_column,
       fk.update_referential_action_desc AS update_rule,
       fk.delete_referential_action_desc AS delete_rule
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc
  ON fkc.constraint_object_id = fk.object_id
JOIN sys.columns pc
  ON pc.object_id = fkc.parent_object_id
 AND pc.column_id = fkc.parent_column_id
JOIN sys.columns rc
  ON rc.object_id = fkc.referenced_object_id
 AND rc.column_id = fkc.referenced_column_id
WHERE fk.parent_object_id = OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + '.' + QUOTENAME(:table_name))
  AND fk.name = :key_name
ORDER BY fkc.constraint_column_id`

// dropColumnConstraints drops every default and column CHECK
// constraint of a column, whatever name the server generated for them
const dropColumnConstraints = `DECLARE @statements NVARCHAR(MAX) = N'';
SELECT @statements = @statements + %[1]s + QUOTENAME(k.name) + N'; '
FROM (
  SELECT name, parent_object_id, parent_column_id FROM sys.default_constraints
  UNION ALL
  SELECT name, parent_object_id, parent_column_id FROM sys.check_constraints
) k
JOIN sys.columns c
  ON c.object_id = k.parent_object_id
 AND c.column_id = k.parent_column_id
WHERE k.parent_object_id = OBJECT_ID(%[2]s)
  AND c.name = %[3]s;
EXEC sp_executesql @statements`
