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

// Package sample provides the genealogy database schema that is
// used as the default target schema and as a fixture in tests.
package sample

import (
	s "github.com/noctarius/schemadiff/spi/schema"
)

func fkCascade(
	column, table string,
) s.ForeignKey {

	return s.NewForeignKey([]string{column}, table).OnDeleteCascade().OnUpdateCascade()
}

// Schema returns the full genealogy schema
func Schema() *s.Schema {
	return s.New(
		block(), blockSetting(), change(), dates(), defaultResn(), families(),
		favorite(), gedcom(), gedcomChunk(), gedcomSetting(), hitCounter(),
		individuals(), link(), log(), media(), mediaFile(), message(), module(),
		modulePrivacy(), moduleSetting(), name(), news(), other(), placeLocation(),
		placeLinks(), places(), session(), siteSetting(), sources(), user(),
		userGedcomSetting(), userSetting(),
	)
}

func block() *s.Table {
	return s.MustTable("block",
		s.Integer("block_id").AutoIncrement(),
		s.Integer("gedcom_id").Nullable(),
		s.Integer("user_id").Nullable(),
		s.Varchar("xref", 20).Nullable(),
		s.Enum("location", "main", "side").Nullable(),
		s.Integer("block_order"),
		s.NVarchar("module_name", 32),
		s.NewPrimaryKey("block_id"),
		fkCascade("gedcom_id", "gedcom"),
		fkCascade("user_id", "user"),
		fkCascade("module_name", "module"),
	)
}

func blockSetting() *s.Table {
	return s.MustTable("block_setting",
		s.Integer("block_id"),
		s.Varchar("setting_name", 32),
		s.Text("setting_value", 2),
		s.NewPrimaryKey("block_id", "setting_name"),
		fkCascade("block_id", "block"),
	)
}

func change() *s.Table {
	return s.MustTable("change",
		s.Integer("change_id").AutoIncrement(),
		s.Timestamp("change_time", 0).DefaultCurrentTimestamp(),
		s.Varchar("status", 8).WithDefault("pending"),
		s.Integer("gedcom_id"),
		s.Varchar("xref", 20),
		s.Text("old_gedcom", 3),
		s.Text("new_gedcom", 3),
		s.Integer("user_id").Nullable(),
		s.NewPrimaryKey("change_id"),
		s.NewIndex("gedcom_id", "status", "xref"),
		fkCascade("gedcom_id", "gedcom"),
		s.NewForeignKey([]string{"user_id"}, "user").OnDeleteSetNull().OnUpdateCascade(),
	)
}

func dates() *s.Table {
	return s.MustTable("dates",
		s.SmallInteger("d_day"),
		s.Char("d_month", 5),
		s.SmallInteger("d_mon"),
		s.SmallInteger("d_year"),
		s.MediumInteger("d_julianday1"),
		s.MediumInteger("d_julianday2"),
		s.Varchar("d_fact", 15),
		s.Varchar("d_gid", 20),
		s.Integer("d_file"),
		s.Varchar("d_type", 13),
		s.NewIndex("d_day"),
		s.NewIndex("d_month"),
		s.NewIndex("d_mon"),
		s.NewIndex("d_year"),
		s.NewIndex("d_julianday1"),
		s.NewIndex("d_julianday2"),
		s.NewIndex("d_gid"),
		s.NewIndex("d_file"),
		s.NewIndex("d_type"),
		s.NewIndex("d_fact", "d_gid"),
	)
}

func defaultResn() *s.Table {
	return s.MustTable("default_resn",
		s.Integer("default_resn_id").AutoIncrement(),
		s.Integer("gedcom_id"),
		s.Varchar("xref", 20).Nullable(),
		s.Varchar("tag_type", 15).Nullable(),
		s.Varchar("resn", 12),
		s.NVarchar("comment", 255).Nullable(),
		s.Timestamp("updated", 0).DefaultCurrentTimestamp(),
		s.NewPrimaryKey("default_resn_id"),
		s.NewIndex("gedcom_id", "xref", "tag_type"),
		fkCascade("gedcom_id", "gedcom"),
	)
}

func families() *s.Table {
	return s.MustTable("families",
		s.Varchar("f_id", 20),
		s.Integer("f_file"),
		s.Varchar("f_husb", 20).Nullable(),
		s.Varchar("f_wife", 20).Nullable(),
		s.Text("f_gedcom", 3),
		s.Integer("f_numchil"),
		s.NewPrimaryKey("f_id", "f_file"),
		s.NewUniqueIndex("f_file", "f_id"),
		s.NewIndex("f_husb"),
		s.NewIndex("f_wife"),
	)
}

func favorite() *s.Table {
	return s.MustTable("favorite",
		s.Integer("favorite_id").AutoIncrement(),
		s.Integer("user_id").Nullable(),
		s.Integer("gedcom_id"),
		s.Varchar("xref", 20).Nullable(),
		s.Varchar("favorite_type", 4),
		s.NVarchar("url", 255).Nullable(),
		s.NVarchar("title", 255).Nullable(),
		s.NVarchar("note", 1000).Nullable(),
		s.NewPrimaryKey("favorite_id"),
		s.NewIndex("user_id"),
		s.NewIndex("gedcom_id", "user_id"),
		fkCascade("user_id", "user"),
		fkCascade("gedcom_id", "gedcom"),
	)
}

func gedcom() *s.Table {
	return s.MustTable("gedcom",
		s.Integer("gedcom_id").AutoIncrement(),
		s.NVarchar("gedcom_name", 255),
		s.Integer("sort_order").WithDefault(0),
		s.NewPrimaryKey("gedcom_id"),
		s.NewUniqueIndex("gedcom_name"),
		s.NewIndex("sort_order"),
	)
}

func gedcomChunk() *s.Table {
	return s.MustTable("gedcom_chunk",
		s.Integer("gedcom_chunk_id").AutoIncrement(),
		s.Integer("gedcom_id"),
		s.Text("chunk_data", 4),
		s.TinyInteger("imported").WithDefault(0),
		s.NewPrimaryKey("gedcom_chunk_id"),
		s.NewIndex("gedcom_id", "imported"),
		fkCascade("gedcom_id", "gedcom"),
	)
}

func gedcomSetting() *s.Table {
	return s.MustTable("gedcom_setting",
		s.Integer("gedcom_id"),
		s.NVarchar("setting_name", 32),
		s.NVarchar("setting_value", 255),
		s.NewPrimaryKey("gedcom_id", "setting_name"),
		fkCascade("gedcom_id", "gedcom"),
	)
}

func hitCounter() *s.Table {
	return s.MustTable("hit_counter",
		s.Integer("gedcom_id"),
		s.Varchar("page_name", 32),
		s.Varchar("page_parameter", 20),
		s.Integer("page_count"),
		s.NewPrimaryKey("gedcom_id", "page_name", "page_parameter"),
		fkCascade("gedcom_id", "gedcom"),
	)
}

func individuals() *s.Table {
	return s.MustTable("individuals",
		s.Varchar("i_id", 20),
		s.Integer("i_file"),
		s.NVarchar("i_rin", 20),
		s.Varchar("i_sex", 1),
		s.Text("i_gedcom", 3),
		s.NewPrimaryKey("i_id", "i_file"),
		s.NewUniqueIndex("i_file", "i_id"),
	)
}

func link() *s.Table {
	return s.MustTable("link",
		s.Integer("l_file"),
		s.Varchar("l_from", 20),
		s.Varchar("l_type", 15),
		s.Varchar("l_to", 20),
		s.NewPrimaryKey("l_from", "l_file", "l_type", "l_to"),
		s.NewUniqueIndex("l_to", "l_file", "l_type", "l_from"),
	)
}

func log() *s.Table {
	return s.MustTable("log",
		s.Integer("log_id").AutoIncrement(),
		s.Timestamp("log_time", 0).DefaultCurrentTimestamp(),
		s.Varchar("log_type", 6),
		s.Text("log_message", 3),
		s.Varchar("ip_address", 45),
		s.Integer("user_id").Nullable(),
		s.Integer("gedcom_id").Nullable(),
		s.NewPrimaryKey("log_id"),
		s.NewIndex("log_time"),
		s.NewIndex("log_type"),
		s.NewIndex("ip_address"),
		s.NewIndex("user_id"),
		s.NewIndex("gedcom_id"),
		fkCascade("gedcom_id", "gedcom"),
		fkCascade("user_id", "user"),
	)
}

func media() *s.Table {
	return s.MustTable("media",
		s.Varchar("m_id", 20),
		s.Integer("m_file"),
		s.Text("m_gedcom", 3),
		s.NewPrimaryKey("m_id", "m_file"),
		s.NewUniqueIndex("m_file", "m_id"),
	)
}

func mediaFile() *s.Table {
	return s.MustTable("media_file",
		s.Integer("id").AutoIncrement(),
		s.Varchar("m_id", 20),
		s.Integer("m_file"),
		s.NVarchar("multimedia_file_refn", 246),
		s.NVarchar("multimedia_format", 4),
		s.NVarchar("source_media_type", 15),
		s.NVarchar("descriptive_title", 248),
		s.NewPrimaryKey("id"),
		s.NewIndex("m_id", "m_file"),
		s.NewIndex("m_file", "m_id"),
		s.NewIndex("m_file", "multimedia_file_refn"),
		s.NewIndex("m_file", "multimedia_format"),
		s.NewIndex("m_file", "source_media_type"),
		s.NewIndex("m_file", "descriptive_title"),
	)
}

func message() *s.Table {
	return s.MustTable("message",
		s.Integer("message_id").AutoIncrement(),
		s.NVarchar("sender", 64),
		s.Varchar("ip_address", 45),
		s.Integer("user_id"),
		s.NVarchar("subject", 255),
		s.Text("body", 2),
		s.Timestamp("created", 0).DefaultCurrentTimestamp(),
		s.NewPrimaryKey("message_id"),
		s.NewIndex("user_id"),
		fkCascade("user_id", "user"),
	)
}

func module() *s.Table {
	return s.MustTable("module",
		s.NVarchar("module_name", 32),
		s.Varchar("status", 8),
		s.Integer("tab_order").Nullable(),
		s.Integer("menu_order").Nullable(),
		s.Integer("sidebar_order").Nullable(),
		s.Integer("footer_order").Nullable(),
		s.NewPrimaryKey("module_name"),
	)
}

func modulePrivacy() *s.Table {
	return s.MustTable("module_privacy",
		s.Integer("id").AutoIncrement(),
		s.NVarchar("module_name", 32),
		s.Integer("gedcom_id"),
		s.Varchar("interface", 255),
		s.TinyInteger("access_level"),
		s.NewPrimaryKey("id"),
		s.NewUniqueIndex("gedcom_id", "module_name", "interface"),
		s.NewUniqueIndex("module_name", "gedcom_id", "interface"),
		fkCascade("gedcom_id", "gedcom"),
		fkCascade("module_name", "module"),
	)
}

func moduleSetting() *s.Table {
	return s.MustTable("module_setting",
		s.NVarchar("module_name", 32),
		s.NVarchar("setting_name", 32),
		s.Text("setting_value", 3),
		s.NewPrimaryKey("module_name", "setting_name"),
		fkCascade("module_name", "module"),
	)
}

func name() *s.Table {
	return s.MustTable("name",
		s.Integer("n_file"),
		s.Varchar("n_id", 20),
		s.Integer("n_num"),
		s.Varchar("n_type", 15),
		s.NVarchar("n_sort", 255),
		s.NVarchar("n_full", 255),
		s.NVarchar("n_surname", 255),
		s.NVarchar("n_surn", 255),
		s.NVarchar("n_givn", 255),
		s.Varchar("n_soundex_givn_std", 255),
		s.Varchar("n_soundex_surn_std", 255),
		s.Varchar("n_soundex_givn_dm", 255),
		s.Varchar("n_soundex_surn_dm", 255),
		s.NewPrimaryKey("n_id", "n_file", "n_num"),
		s.NewIndex("n_full", "n_id", "n_file"),
		s.NewIndex("n_surn", "n_file", "n_type", "n_id"),
		s.NewIndex("n_givn", "n_file", "n_type", "n_id"),
	)
}

func news() *s.Table {
	return s.MustTable("news",
		s.Integer("news_id").AutoIncrement(),
		s.Integer("user_id").Nullable(),
		s.Integer("gedcom_id").Nullable(),
		s.Varchar("subject", 255),
		s.Text("body", 2),
		s.Timestamp("updated", 0).DefaultCurrentTimestamp(),
		s.NewPrimaryKey("news_id"),
		s.NewIndex("user_id", "updated"),
		s.NewIndex("gedcom_id", "updated"),
		fkCascade("gedcom_id", "gedcom"),
		fkCascade("user_id", "user"),
	)
}

func other() *s.Table {
	return s.MustTable("other",
		s.Varchar("o_id", 20),
		s.Integer("o_file"),
		s.Varchar("o_type", 15),
		s.Text("o_gedcom", 3),
		s.NewPrimaryKey("o_id", "o_file"),
		s.NewUniqueIndex("o_file", "o_id"),
	)
}

func placeLocation() *s.Table {
	return s.MustTable("place_location",
		s.Integer("id").AutoIncrement(),
		s.Integer("parent_id").Nullable(),
		s.NVarchar("place", 120),
		s.Float("latitude", 24).Nullable(),
		s.Float("longitude", 24).Nullable(),
		s.NewPrimaryKey("id"),
		s.NewUniqueIndex("parent_id", "place"),
		s.NewUniqueIndex("place", "parent_id"),
		s.NewIndex("latitude"),
		s.NewIndex("longitude"),
		s.NewForeignKey([]string{"parent_id"}, "place_location", "id").OnDeleteCascade().OnUpdateCascade(),
	)
}

func placeLinks() *s.Table {
	return s.MustTable("placelinks",
		s.Integer("pl_p_id"),
		s.Varchar("pl_gid", 20),
		s.Integer("pl_file"),
		s.NewPrimaryKey("pl_p_id", "pl_gid", "pl_file"),
		s.NewIndex("pl_gid"),
		s.NewIndex("pl_file"),
	)
}

func places() *s.Table {
	return s.MustTable("places",
		s.Integer("p_id").AutoIncrement(),
		s.NVarchar("p_place", 150),
		s.Integer("p_parent_id").Nullable(),
		s.Integer("p_file"),
		s.Text("p_std_soundex", 2),
		s.Text("p_dm_soundex", 2),
		s.NewPrimaryKey("p_id"),
		s.NewUniqueIndex("p_parent_id", "p_file", "p_place"),
		s.NewIndex("p_file", "p_place"),
	)
}

func session() *s.Table {
	return s.MustTable("session",
		s.Varchar("session_id", 32),
		s.Timestamp("session_time", 0).DefaultCurrentTimestamp(),
		s.Integer("user_id"),
		s.Varchar("ip_address", 45),
		s.Blob("session_data", 4),
		s.NewPrimaryKey("session_id"),
		s.NewIndex("session_time"),
		s.NewIndex("user_id", "ip_address"),
	)
}

func siteSetting() *s.Table {
	return s.MustTable("site_setting",
		s.NVarchar("setting_name", 32),
		s.NVarchar("setting_value", 2000),
		s.NewPrimaryKey("setting_name"),
	)
}

func sources() *s.Table {
	return s.MustTable("sources",
		s.Varchar("s_id", 20),
		s.Integer("s_file"),
		s.NVarchar("s_name", 255),
		s.Text("s_gedcom", 3),
		s.NewPrimaryKey("s_id", "s_file"),
		s.NewUniqueIndex("s_file", "s_id"),
		s.NewIndex("s_name", "s_file"),
	)
}

func user() *s.Table {
	return s.MustTable("user",
		s.Integer("user_id").AutoIncrement(),
		s.NVarchar("user_name", 32),
		s.NVarchar("real_name", 64),
		s.NVarchar("email", 64),
		s.NVarchar("password", 128),
		s.NewPrimaryKey("user_id"),
		s.NewUniqueIndex("user_name"),
		s.NewUniqueIndex("email"),
	)
}

func userGedcomSetting() *s.Table {
	return s.MustTable("user_gedcom_setting",
		s.Integer("user_id"),
		s.Integer("gedcom_id"),
		s.NVarchar("setting_name", 32),
		s.NVarchar("setting_value", 255),
		s.NewPrimaryKey("user_id", "gedcom_id", "setting_name"),
		s.NewIndex("gedcom_id"),
		fkCascade("gedcom_id", "gedcom"),
		fkCascade("user_id", "user"),
	)
}

func userSetting() *s.Table {
	return s.MustTable("user_setting",
		s.Integer("user_id"),
		s.NVarchar("setting_name", 32),
		s.NVarchar("setting_value", 255),
		s.NewPrimaryKey("user_id", "setting_name"),
		fkCascade("user_id", "user"),
	)
}
