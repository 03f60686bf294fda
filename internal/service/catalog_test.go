package service

import (
	"errors"
	"testing"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/datatypes"
)

// fakeMasterDataSource 内存主数据，测试选项解析用
type fakeMasterDataSource struct {
	entries map[string][]model.MasterDataEntry
}

func (f *fakeMasterDataSource) ListActive(dataType string) ([]model.MasterDataEntry, error) {
	return f.entries[dataType], nil
}

func (f *fakeMasterDataSource) ListDataTypes() ([]string, error) {
	var types []string
	for t := range f.entries {
		types = append(types, t)
	}
	return types, nil
}

func TestCheckFieldShape(t *testing.T) {
	staticOpts := datatypes.JSON(`[{"value":"a","label":"A"},{"value":"b","label":"B"}]`)

	tests := []struct {
		name    string
		def     *model.FieldDefinition
		wantErr bool
	}{
		{"文本字段无选项来源", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeText}, false},
		{"下拉字段静态选项", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeDropdown, Options: staticOpts}, false},
		{"下拉字段主数据引用", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeDropdown, DataType: "branch"}, false},
		{"下拉字段两种来源都配置", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeDropdown, Options: staticOpts, DataType: "branch"}, true},
		{"下拉字段无选项来源", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeDropdown}, true},
		{"文本字段配置了选项", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeText, Options: staticOpts}, true},
		{"文本字段配置了主数据引用", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeText, DataType: "branch"}, true},
		{"未知字段类型", &model.FieldDefinition{FieldName: "f", FieldType: "slider"}, true},
		{"缺少机器键", &model.FieldDefinition{FieldType: model.FieldTypeText}, true},
		{"静态选项JSON损坏", &model.FieldDefinition{FieldName: "f", FieldType: model.FieldTypeRadio, Options: datatypes.JSON(`{bad`)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFieldShape(tt.def)
			if tt.wantErr && err == nil {
				t.Fatal("期望校验失败，实际通过")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("期望通过，实际错误: %v", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("错误应属于ErrInvalidArgument，实际 %v", err)
			}
		})
	}
}

func TestResolveOptionsStatic(t *testing.T) {
	svc := &CatalogService{masterData: &fakeMasterDataSource{}}

	def := &model.FieldDefinition{
		FieldName: "channel",
		FieldType: model.FieldTypeDropdown,
		Options:   datatypes.JSON(`[{"value":"atm","label":"ATM","is_default":true},{"value":"counter","label":"柜面"}]`),
	}

	opts, err := svc.ResolveOptions(def)
	if err != nil {
		t.Fatalf("ResolveOptions() error = %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("选项数 = %d, want 2", len(opts))
	}
	if opts[0].Value != "atm" || !opts[0].IsDefault {
		t.Errorf("静态选项应原样返回: %+v", opts[0])
	}
}

func TestResolveOptionsMasterData(t *testing.T) {
	source := &fakeMasterDataSource{entries: map[string][]model.MasterDataEntry{
		"branch": {
			{DataType: "branch", Code: "BR001", DisplayName: "城东支行"},
			{DataType: "branch", Code: "BR002", DisplayName: "城西支行"},
		},
	}}
	svc := &CatalogService{masterData: source}

	def := &model.FieldDefinition{
		FieldName:    "branch",
		FieldType:    model.FieldTypeDropdown,
		DataType:     "branch",
		DefaultValue: "BR002",
	}

	opts, err := svc.ResolveOptions(def)
	if err != nil {
		t.Fatalf("ResolveOptions() error = %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("选项数 = %d, want 2", len(opts))
	}
	if opts[0].Value != "BR001" || opts[0].Label != "城东支行" {
		t.Errorf("主数据应映射为 code/displayName: %+v", opts[0])
	}
	if opts[0].IsDefault {
		t.Error("BR001 不应为默认选项")
	}
	if !opts[1].IsDefault {
		t.Error("BR002 应标记为默认选项")
	}
}

func TestResolveOptionsUnknownDataType(t *testing.T) {
	svc := &CatalogService{masterData: &fakeMasterDataSource{}}

	def := &model.FieldDefinition{
		FieldName: "terminal",
		FieldType: model.FieldTypeDropdown,
		DataType:  "terminal",
	}

	opts, err := svc.ResolveOptions(def)
	if err != nil {
		t.Fatalf("未知主数据类型应返回空列表而非错误: %v", err)
	}
	if len(opts) != 0 {
		t.Errorf("选项数 = %d, want 0", len(opts))
	}
}

func TestResolveOptionsNonChoice(t *testing.T) {
	svc := &CatalogService{masterData: &fakeMasterDataSource{}}

	def := &model.FieldDefinition{FieldName: "note", FieldType: model.FieldTypeText}
	opts, err := svc.ResolveOptions(def)
	if err != nil {
		t.Fatalf("非选项类字段不应报错: %v", err)
	}
	if opts != nil {
		t.Errorf("非选项类字段不应有选项，实际 %v", opts)
	}
}
