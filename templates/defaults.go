package templates

import (
	"fmt"
	"os"
	"path/filepath"
)

// Starter templates written by "tapigen init". They are a working baseline;
// projects are expected to edit them in place.
var defaultTemplates = map[string]string{
	"packages/spec/package_header.tpt": `create or replace package %package_owner_lc%.%table_name_lc%_tapi
as
%STAB%-- Table API specification for %schema_name_lc%.%table_name_lc%
%STAB%-- Generated by tapigen on %run_date_time%
%STAB%-- Copyright (c) %copyright_year% %company_name%
`,
	"packages/spec/package_footer.tpt": `end %table_name_lc%_tapi;
/
`,
	"packages/body/package_header.tpt": `create or replace package body %package_owner_lc%.%table_name_lc%_tapi
as
%STAB%-- Table API body for %schema_name_lc%.%table_name_lc%
%STAB%-- Generated by tapigen on %run_date_time%
`,
	"packages/body/package_footer.tpt": `end %table_name_lc%_tapi;
/
`,
	"packages/procedures/insert.tpt": `%procedure_signature%
%STAB%begin
%STAB%%STAB%insert into %schema_name_lc%.%table_name_lc%
%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%column_list_string_lc%
%STAB%%STAB%%STAB%)
%STAB%%STAB%values
%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%parameter_list_string_lc%
%STAB%%STAB%%STAB%)
%STAB%%STAB%%STAB%%returning_clause_lc%;
%STAB%end %procedure_name%;
`,
	"packages/procedures/select.tpt": `%procedure_signature%
%STAB%begin
%STAB%%STAB%select
%STAB%%STAB%%STAB%%column_list_string_lc%
%STAB%%STAB%into
%STAB%%STAB%%STAB%%parameter_list_string_lc%
%STAB%%STAB%from %schema_name_lc%.%table_name_lc%
%STAB%%STAB%where
%STAB%%STAB%%key_predicates_string_lc%;
%STAB%end %procedure_name%;
`,
	"packages/procedures/update.tpt": `%procedure_signature%
%STAB%begin
%STAB%%STAB%update %schema_name_lc%.%table_name_lc%
%STAB%%STAB%set
%STAB%%STAB%%STAB%%update_assignments_string_lc%
%STAB%%STAB%where
%STAB%%STAB%%STAB%%key_predicates_string_lc%
%STAB%%STAB%%STAB%%returning_clause_lc%;
%STAB%end %procedure_name%;
`,
	"packages/procedures/upsert.tpt": `%procedure_signature%
%STAB%begin
%STAB%%STAB%update %schema_name_lc%.%table_name_lc%
%STAB%%STAB%set
%STAB%%STAB%%STAB%%update_assignments_string_lc%
%STAB%%STAB%where
%STAB%%STAB%%STAB%%key_predicates_string_lc%
%STAB%%STAB%%STAB%%upd_returning_clause_lc%;
%STAB%%STAB%if sql%rowcount = 0 then
%STAB%%STAB%%STAB%insert into %schema_name_lc%.%table_name_lc%
%STAB%%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%column_list_string_lc%
%STAB%%STAB%%STAB%%STAB%)
%STAB%%STAB%%STAB%values
%STAB%%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%parameter_list_string_lc%
%STAB%%STAB%%STAB%%STAB%)
%STAB%%STAB%%STAB%%ins_returning_clause_lc%;
%STAB%%STAB%end if;
%STAB%end %procedure_name%;
`,
	"packages/procedures/delete.tpt": `%procedure_signature%
%STAB%begin
%STAB%%STAB%delete from %schema_name_lc%.%table_name_lc%
%STAB%%STAB%where
%STAB%%STAB%%STAB%%key_predicates_string_lc%
%STAB%%STAB%%STAB%%returning_clause_lc%;
%STAB%end %procedure_name%;
`,
	"packages/procedures/merge.tpt": `%procedure_signature%
%STAB%begin
%STAB%%STAB%merge into %schema_name_lc%.%table_name_lc% tgt
%STAB%%STAB%using
%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%select
%STAB%%STAB%%STAB%%STAB%%STAB%%STAB%%mrg_param_alias_list_lc%
%STAB%%STAB%%STAB%%STAB%from dual
%STAB%%STAB%%STAB%) src
%STAB%%STAB%on
%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%STAB%%mrg_predicates_string_lc%
%STAB%%STAB%%STAB%)
%STAB%%STAB%when matched then
%STAB%%STAB%%STAB%update set
%STAB%%STAB%%STAB%%STAB%%update_assignments_string_lc%
%STAB%%STAB%when not matched then
%STAB%%STAB%%STAB%insert
%STAB%%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%STAB%%column_list_string_lc%
%STAB%%STAB%%STAB%%STAB%)
%STAB%%STAB%%STAB%values
%STAB%%STAB%%STAB%%STAB%(
%STAB%%STAB%%STAB%%STAB%%STAB%%mrg_src_column_list_string_lc%
%STAB%%STAB%%STAB%%STAB%);
%STAB%end %procedure_name%;
`,
	"triggers/biu.tpt": `create or replace trigger %schema_name_lc%.%table_name_lc%_biu
before insert or update on %schema_name_lc%.%table_name_lc%
for each row
begin
%STAB%if inserting then
%STAB%%STAB%:new.created_by   := coalesce(sys_context('apex$session', 'app_user'), user);
%STAB%%STAB%:new.created_on   := current_timestamp;
%STAB%end if;
%STAB%:new.updated_by := coalesce(sys_context('apex$session', 'app_user'), user);
%STAB%:new.updated_on := current_timestamp;
%STAB%:new.%row_vers_column_name% := coalesce(:old.%row_vers_column_name%, 0) + 1;
end %table_name_lc%_biu;
/
`,
	"views/base.tpt": `create or replace view %schema_name_lc%.%table_name_lc%_v
as
select
%STAB%%STAB%%column_list_string_lc%
from %schema_name_lc%.%table_name_lc%;
`,
	"column_expressions/inserts/created_by.tpt":  "coalesce(sys_context('apex$session', 'app_user'), user)",
	"column_expressions/inserts/created_on.tpt":  "current_timestamp",
	"column_expressions/inserts/updated_by.tpt":  "coalesce(sys_context('apex$session', 'app_user'), user)",
	"column_expressions/inserts/updated_on.tpt":  "current_timestamp",
	"column_expressions/inserts/row_version.tpt": "1",
	// Self-references: updates leave the creation audit columns untouched.
	"column_expressions/updates/created_by.tpt":  "created_by",
	"column_expressions/updates/created_on.tpt":  "created_on",
	"column_expressions/updates/updated_by.tpt":  "coalesce(sys_context('apex$session', 'app_user'), user)",
	"column_expressions/updates/updated_on.tpt":  "current_timestamp",
	"column_expressions/updates/row_version.tpt": "%row_vers_column_name% + 1",
}

// WriteDefaults materialises the starter template tree beneath root. Files
// that already exist are left untouched so re-running init never clobbers
// project edits.
func WriteDefaults(root string) error {
	for rel, content := range defaultTemplates {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create template directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write default template %s: %w", rel, err)
		}
	}
	return nil
}
