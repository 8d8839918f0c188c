package model

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/keshavmohta09/RosterPulse/pkg/validate"
)

// 注册模型枚举相关的校验规则
// working_day / shift 同时接受展示名（请求 DTO）与整数编码（模型）
func init() {
	validate.RegisterRule("working_day", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.String:
			_, ok := ParseWorkingDay(f.String())
			return ok
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return WorkingDay(f.Int()).Valid()
		}
		return false
	})

	validate.RegisterRule("shift", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.String:
			_, ok := ParseShift(f.String())
			return ok
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Shift(f.Int()).Valid()
		}
		return false
	})

	validate.RegisterRule("clock_value", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Clock(f.Int()).Valid()
		}
		return false
	})

	validate.RegisterRule("role", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Role(f.Int()).Valid()
		}
		return false
	})
}

// Validate 模型保存前的完整校验：字段规则 + 跨字段规则
func Validate(m interface{}) error {
	if err := validate.Struct(m); err != nil {
		return err
	}
	if c, ok := m.(interface{ Clean() error }); ok {
		return c.Clean()
	}
	return nil
}
