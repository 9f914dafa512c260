package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/tama/internal/vfs"
)

// Validate checks the configuration against fsys. It reports the first
// invalid field as a *ValidationError.
func (c *Config) Validate(fsys *vfs.FS) error {
	if c == nil {
		return &ValidationError{Field: "config", Message: "configuration cannot be nil", Err: ErrValidationFailed}
	}
	if fsys == nil {
		fsys = vfs.OS()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("fsdir", func(fl validator.FieldLevel) bool {
		return fsys.IsDir(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("registering validators: %w", err)
	}

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Field() == "configPath" {
		return &ValidationError{
			Field:   "configPath",
			Value:   fe.Value(),
			Message: "must be an existing directory",
			Err:     ErrInvalidConfigPath,
		}
	}
	return &ValidationError{
		Field:   field,
		Value:   fe.Value(),
		Message: describe(fe),
		Err:     ErrValidationFailed,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

var multiTaskSettingType = reflect.TypeOf(MultiTaskSetting{})

// multiTaskSettingHook decodes basicAsMultiTask from a bool, a list of names,
// or a string holding either.
func multiTaskSettingHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != multiTaskSettingType {
		return data, nil
	}

	switch v := data.(type) {
	case nil:
		return MultiTaskSetting{}, nil
	case bool:
		return MultiTaskSetting{All: v}, nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return MultiTaskSetting{All: b}, nil
		}
		var names []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return MultiTaskSetting{Names: names}, nil
	case []string:
		return MultiTaskSetting{Names: v}, nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("basicAsMultiTask: expected task name, got %T", item)
			}
			names = append(names, s)
		}
		return MultiTaskSetting{Names: names}, nil
	case MultiTaskSetting:
		return v, nil
	default:
		return nil, fmt.Errorf("basicAsMultiTask: expected bool or list of names, got %s", from)
	}
}
