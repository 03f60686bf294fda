package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yanryp/servicedesk-sub002/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

// ValidateField 校验单个字段值并返回规范化后的存储形式
// options 仅对选项类字段有意义，为归属方解析后的完整选项列表
// 返回值为空错误时，第一个返回值即可直接落库的规范化字符串
func ValidateField(def *model.FieldDefinition, raw interface{}, options []model.FieldOption) (string, *FieldError) {
	if isEmptyValue(raw) {
		if def.IsRequired {
			return "", &FieldError{
				Field:   def.FieldName,
				Code:    ErrCodeRequired,
				Message: fmt.Sprintf("字段 %s 为必填项", def.FieldLabel),
			}
		}
		return "", nil
	}

	rules, err := def.Rules()
	if err != nil {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 的校验规则配置无效", def.FieldLabel),
		}
	}

	switch def.FieldType {
	case model.FieldTypeText, model.FieldTypeTextarea:
		return validateText(def, raw, rules)
	case model.FieldTypeNumber:
		return validateNumber(def, raw, rules)
	case model.FieldTypeDate:
		return validateDate(def, raw, dateLayout, "YYYY-MM-DD")
	case model.FieldTypeDateTime:
		return validateDate(def, raw, dateTimeLayout, "RFC3339")
	case model.FieldTypeDropdown, model.FieldTypeRadio:
		return validateSingleChoice(def, raw, options)
	case model.FieldTypeCheckbox:
		return validateMultiChoice(def, raw, options)
	default:
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 的类型 %s 不受支持", def.FieldLabel, def.FieldType),
		}
	}
}

// isEmptyValue 判断提交值是否视为未填写（纯空白字符串视为空）
func isEmptyValue(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func validateText(def *model.FieldDefinition, raw interface{}, rules model.ValidationRules) (string, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 需要字符串值", def.FieldLabel),
		}
	}
	s = strings.TrimSpace(s)
	if rules.MaxLength > 0 && len([]rune(s)) > rules.MaxLength {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeMaxLength,
			Message: fmt.Sprintf("字段 %s 超过最大长度 %d", def.FieldLabel, rules.MaxLength),
		}
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			return "", &FieldError{
				Field:   def.FieldName,
				Code:    ErrCodePattern,
				Message: fmt.Sprintf("字段 %s 的正则规则配置无效", def.FieldLabel),
			}
		}
		if !re.MatchString(s) {
			return "", &FieldError{
				Field:   def.FieldName,
				Code:    ErrCodePattern,
				Message: fmt.Sprintf("字段 %s 不符合要求的格式", def.FieldLabel),
			}
		}
	}
	return s, nil
}

func validateNumber(def *model.FieldDefinition, raw interface{}, rules model.ValidationRules) (string, *FieldError) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", numberFormatError(def)
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", numberFormatError(def)
		}
		n = f
	default:
		return "", numberFormatError(def)
	}

	if rules.Min != nil && n < *rules.Min {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeOutOfRange,
			Message: fmt.Sprintf("字段 %s 不能小于 %v", def.FieldLabel, *rules.Min),
		}
	}
	if rules.Max != nil && n > *rules.Max {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeOutOfRange,
			Message: fmt.Sprintf("字段 %s 不能大于 %v", def.FieldLabel, *rules.Max),
		}
	}
	return strconv.FormatFloat(n, 'f', -1, 64), nil
}

func numberFormatError(def *model.FieldDefinition) *FieldError {
	return &FieldError{
		Field:   def.FieldName,
		Code:    ErrCodeInvalidFormat,
		Message: fmt.Sprintf("字段 %s 需要数字值", def.FieldLabel),
	}
}

func validateDate(def *model.FieldDefinition, raw interface{}, layout, hint string) (string, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 需要 %s 格式的字符串", def.FieldLabel, hint),
		}
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 需要 %s 格式的日期", def.FieldLabel, hint),
		}
	}
	return t.Format(layout), nil
}

func validateSingleChoice(def *model.FieldDefinition, raw interface{}, options []model.FieldOption) (string, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 需要单个选项值", def.FieldLabel),
		}
	}
	if !optionExists(options, s) {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidOption,
			Message: fmt.Sprintf("字段 %s 的值 %q 不在可选项中", def.FieldLabel, s),
		}
	}
	return s, nil
}

func validateMultiChoice(def *model.FieldDefinition, raw interface{}, options []model.FieldOption) (string, *FieldError) {
	var selected []string
	switch v := raw.(type) {
	case []string:
		selected = v
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", &FieldError{
					Field:   def.FieldName,
					Code:    ErrCodeInvalidFormat,
					Message: fmt.Sprintf("字段 %s 的选项值必须为字符串", def.FieldLabel),
				}
			}
			selected = append(selected, s)
		}
	case string:
		// 单选值也接受，规范化为单元素集合
		selected = []string{v}
	default:
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 需要选项值数组", def.FieldLabel),
		}
	}

	seen := make(map[string]bool, len(selected))
	deduped := make([]string, 0, len(selected))
	for _, s := range selected {
		if !optionExists(options, s) {
			return "", &FieldError{
				Field:   def.FieldName,
				Code:    ErrCodeInvalidOption,
				Message: fmt.Sprintf("字段 %s 的值 %q 不在可选项中", def.FieldLabel, s),
			}
		}
		if !seen[s] {
			seen[s] = true
			deduped = append(deduped, s)
		}
	}

	encoded, err := json.Marshal(deduped)
	if err != nil {
		return "", &FieldError{
			Field:   def.FieldName,
			Code:    ErrCodeInvalidFormat,
			Message: fmt.Sprintf("字段 %s 的值无法序列化", def.FieldLabel),
		}
	}
	return string(encoded), nil
}

func optionExists(options []model.FieldOption, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
