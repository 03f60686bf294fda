package service

import (
	"encoding/json"
	"testing"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/datatypes"
)

func textField(name string, required bool, rules string) *model.FieldDefinition {
	def := &model.FieldDefinition{
		FieldName:  name,
		FieldLabel: name,
		FieldType:  model.FieldTypeText,
		IsRequired: required,
	}
	if rules != "" {
		def.ValidationRules = datatypes.JSON(rules)
	}
	return def
}

func choiceField(name string, fieldType model.FieldType, required bool) *model.FieldDefinition {
	return &model.FieldDefinition{
		FieldName:  name,
		FieldLabel: name,
		FieldType:  fieldType,
		IsRequired: required,
	}
}

var branchOptions = []model.FieldOption{
	{Value: "BR001", Label: "城东支行"},
	{Value: "BR002", Label: "城西支行"},
	{Value: "BR003", Label: "开发区支行"},
}

func TestValidateFieldRequired(t *testing.T) {
	tests := []struct {
		name string
		def  *model.FieldDefinition
		raw  interface{}
		code string
	}{
		{"必填字段缺失", textField("reason", true, ""), nil, ErrCodeRequired},
		{"必填字段为空串", textField("reason", true, ""), "", ErrCodeRequired},
		{"必填多选字段为空数组", choiceField("branches", model.FieldTypeCheckbox, true), []interface{}{}, ErrCodeRequired},
		{"可选字段缺失不报错", textField("note", false, ""), nil, ""},
		{"可选字段为空串不报错", textField("note", false, ""), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ferr := ValidateField(tt.def, tt.raw, branchOptions)
			if tt.code == "" {
				if ferr != nil {
					t.Fatalf("期望通过，实际错误: %+v", ferr)
				}
				return
			}
			if ferr == nil {
				t.Fatal("期望校验失败，实际通过")
			}
			if ferr.Code != tt.code {
				t.Errorf("错误码 = %s, want %s", ferr.Code, tt.code)
			}
		})
	}
}

func TestValidateFieldText(t *testing.T) {
	tests := []struct {
		name  string
		def   *model.FieldDefinition
		raw   interface{}
		want  string
		code  string
	}{
		{"普通文本通过", textField("title", true, ""), "网点打印机故障", "网点打印机故障", ""},
		{"非字符串被拒", textField("title", true, ""), 42.0, "", ErrCodeInvalidFormat},
		{"超长被拒", textField("title", true, `{"max_length":5}`), "这是一段超过五个字的文本", "", ErrCodeMaxLength},
		{"长度边界内通过", textField("title", true, `{"max_length":5}`), "五个字以内", "五个字以内", ""},
		{"正则不匹配被拒", textField("code", true, `{"pattern":"^BR[0-9]{3}$"}`), "XX001", "", ErrCodePattern},
		{"正则匹配通过", textField("code", true, `{"pattern":"^BR[0-9]{3}$"}`), "BR001", "BR001", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ferr := ValidateField(tt.def, tt.raw, nil)
			if tt.code != "" {
				if ferr == nil || ferr.Code != tt.code {
					t.Fatalf("期望错误码 %s, 实际 %+v", tt.code, ferr)
				}
				return
			}
			if ferr != nil {
				t.Fatalf("期望通过，实际错误: %+v", ferr)
			}
			if got != tt.want {
				t.Errorf("规范化值 = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateFieldNumber(t *testing.T) {
	min := 1.0
	max := 100.0
	rules, _ := json.Marshal(model.ValidationRules{Min: &min, Max: &max})

	def := &model.FieldDefinition{
		FieldName:       "quantity",
		FieldLabel:      "quantity",
		FieldType:       model.FieldTypeNumber,
		IsRequired:      true,
		ValidationRules: datatypes.JSON(rules),
	}

	tests := []struct {
		name string
		raw  interface{}
		want string
		code string
	}{
		{"JSON数字通过", 5.0, "5", ""},
		{"小数保留", 2.5, "2.5", ""},
		{"数字字符串通过", "42", "42", ""},
		{"非数字字符串被拒", "abc", "", ErrCodeInvalidFormat},
		{"低于下限被拒", 0.5, "", ErrCodeOutOfRange},
		{"高于上限被拒", 200.0, "", ErrCodeOutOfRange},
		{"布尔值被拒", true, "", ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ferr := ValidateField(def, tt.raw, nil)
			if tt.code != "" {
				if ferr == nil || ferr.Code != tt.code {
					t.Fatalf("期望错误码 %s, 实际 %+v", tt.code, ferr)
				}
				return
			}
			if ferr != nil {
				t.Fatalf("期望通过，实际错误: %+v", ferr)
			}
			if got != tt.want {
				t.Errorf("规范化值 = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateFieldDate(t *testing.T) {
	dateDef := &model.FieldDefinition{
		FieldName: "effective_date", FieldLabel: "effective_date",
		FieldType: model.FieldTypeDate, IsRequired: true,
	}
	datetimeDef := &model.FieldDefinition{
		FieldName: "occurred_at", FieldLabel: "occurred_at",
		FieldType: model.FieldTypeDateTime, IsRequired: true,
	}

	if got, ferr := ValidateField(dateDef, "2026-08-29", nil); ferr != nil || got != "2026-08-29" {
		t.Errorf("合法日期: got=%q, err=%+v", got, ferr)
	}
	if _, ferr := ValidateField(dateDef, "29/08/2026", nil); ferr == nil || ferr.Code != ErrCodeInvalidFormat {
		t.Errorf("非法日期格式应被拒，实际 %+v", ferr)
	}
	if _, ferr := ValidateField(dateDef, "2026-02-30", nil); ferr == nil {
		t.Error("不存在的日期应被拒")
	}
	if got, ferr := ValidateField(datetimeDef, "2026-08-29T10:30:00+07:00", nil); ferr != nil || got == "" {
		t.Errorf("合法RFC3339时间: got=%q, err=%+v", got, ferr)
	}
	if _, ferr := ValidateField(datetimeDef, "2026-08-29 10:30", nil); ferr == nil {
		t.Error("非RFC3339时间应被拒")
	}
}

func TestValidateFieldSingleChoice(t *testing.T) {
	def := choiceField("branch", model.FieldTypeDropdown, true)

	if got, ferr := ValidateField(def, "BR002", branchOptions); ferr != nil || got != "BR002" {
		t.Errorf("合法选项: got=%q, err=%+v", got, ferr)
	}
	if _, ferr := ValidateField(def, "BR999", branchOptions); ferr == nil || ferr.Code != ErrCodeInvalidOption {
		t.Errorf("不在选项中的值应被拒，实际 %+v", ferr)
	}
	if _, ferr := ValidateField(def, 1.0, branchOptions); ferr == nil || ferr.Code != ErrCodeInvalidFormat {
		t.Errorf("非字符串选项值应被拒，实际 %+v", ferr)
	}
}

func TestValidateFieldMultiChoice(t *testing.T) {
	def := choiceField("branches", model.FieldTypeCheckbox, true)

	got, ferr := ValidateField(def, []interface{}{"BR001", "BR003"}, branchOptions)
	if ferr != nil {
		t.Fatalf("合法多选应通过，实际错误: %+v", ferr)
	}
	var selected []string
	if err := json.Unmarshal([]byte(got), &selected); err != nil {
		t.Fatalf("规范化值应为JSON数组: %v", err)
	}
	if len(selected) != 2 || selected[0] != "BR001" || selected[1] != "BR003" {
		t.Errorf("规范化多选值 = %v", selected)
	}

	// 重复值去重
	got, ferr = ValidateField(def, []interface{}{"BR001", "BR001"}, branchOptions)
	if ferr != nil {
		t.Fatalf("重复选项应通过，实际错误: %+v", ferr)
	}
	if got != `["BR001"]` {
		t.Errorf("重复选项应去重，实际 %q", got)
	}

	// 单个字符串规范化为单元素集合
	got, ferr = ValidateField(def, "BR002", branchOptions)
	if ferr != nil || got != `["BR002"]` {
		t.Errorf("单值多选: got=%q, err=%+v", got, ferr)
	}

	if _, ferr = ValidateField(def, []interface{}{"BR001", "BR999"}, branchOptions); ferr == nil || ferr.Code != ErrCodeInvalidOption {
		t.Errorf("含非法选项的多选应被拒，实际 %+v", ferr)
	}
	if _, ferr = ValidateField(def, []interface{}{"BR001", 2.0}, branchOptions); ferr == nil || ferr.Code != ErrCodeInvalidFormat {
		t.Errorf("含非字符串的多选应被拒，实际 %+v", ferr)
	}
}
