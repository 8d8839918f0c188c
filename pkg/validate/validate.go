// Package validate 封装 go-playground/validator，
// 供模型层保存前校验与 gin 请求绑定共用同一套规则。
package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
)

// ImageExtensions 允许上传的图片扩展名
var ImageExtensions = []string{"jpeg", "png", "jpg"}

var (
	mu    sync.Mutex
	rules = map[string]validator.Func{
		"clock":     isClock,
		"image_ext": isImageExt,
	}
	std = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	configure(v)
	return v
}

// configure 注册字段名函数与全部自定义规则
func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("注册校验规则 %s 失败: %v", tag, err))
		}
	}
}

// RegisterRule 注册自定义规则，需在 init 阶段调用
func RegisterRule(tag string, fn validator.Func) {
	mu.Lock()
	defer mu.Unlock()
	rules[tag] = fn
	if err := std.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("注册校验规则 %s 失败: %v", tag, err))
	}
}

// BindGin 把同一套规则注册到 gin 的默认绑定校验器上
func BindGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 绑定校验器不是 validator/v10")
	}
	mu.Lock()
	defer mu.Unlock()
	v.RegisterTagNameFunc(jsonName)
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验规则 %s 失败: %w", tag, err)
		}
	}
	return nil
}

// Struct 校验结构体，失败时返回 *pkgerrors.ValidationError
func Struct(s interface{}) error {
	if err := std.Struct(s); err != nil {
		return pkgerrors.NewValidation(Message(err))
	}
	return nil
}

// Message 把校验错误展开为面向用户的提示
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "email":
		return "Enter a valid email address."
	case "e164":
		return "Enter a valid phone number."
	default:
		return "Invalid " + field
	}
}

// jsonName 使用 json/form 标签作为错误中的字段名
func jsonName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ── 内置规则 ──

// ParseClock 解析 HH:MM 或 HH:MM:SS
func ParseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func isClock(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	_, err := ParseClock(f.String())
	return err == nil
}

// HasImageExt 判断文件名扩展名是否在允许列表中（大小写不敏感）
func HasImageExt(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func isImageExt(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	if f.String() == "" {
		return true
	}
	return HasImageExt(f.String())
}
