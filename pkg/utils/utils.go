package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MissingEnvError lists required environment variables that were not set.
type MissingEnvError struct {
	Vars []string
}

func (e *MissingEnvError) Error() string {
	return "Missing ENV Vars:\n" + strings.Join(e.Vars, "\n")
}

// IsEmpty checks if a string is empty.
func IsEmpty(s string) bool {
	return s == ""
}

func GetTraceID(c *gin.Context) (string, error) {
	traceID := c.GetString(pkg.TraceId)
	if IsEmpty(traceID) {
		return "", errors.New("trace id is empty")
	}
	return traceID, nil
}

// ParseStructEnv binds env vars to struct fields using a mapstructure tag
func ParseStructEnv(cfg interface{}) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if IsEmpty(tag) {
			continue
		}
		if err := viper.BindEnv(tag); err != nil {
			return err
		}
	}
	return viper.Unmarshal(cfg)
}

// FormatConfigErrors turns validator errors on a config struct into a readable error.
// Failed "required" rules are reported together as a *MissingEnvError using the env var names;
// any other failure is logged and returned as a combined error.
func FormatConfigErrors(logger *zap.Logger, err error, cfg interface{}, envPrefix string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(cfg)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var missing, invalid []string
	for _, fe := range verrs {
		name := fe.StructField()
		if field, ok := t.FieldByName(fe.StructField()); ok {
			if tag := field.Tag.Get("mapstructure"); !IsEmpty(tag) {
				name = tag
			}
		}
		if !IsEmpty(envPrefix) {
			name = strings.ToUpper(envPrefix) + "_" + name
		}

		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		logger.Error("invalid_config_value",
			zap.String("key", name),
			zap.String("rule", fe.Tag()),
			zap.String("param", fe.Param()),
		)
		invalid = append(invalid, fmt.Sprintf("%s failed '%s' rule", name, fe.Tag()))
	}

	if len(missing) > 0 {
		return &MissingEnvError{Vars: missing}
	}
	return fmt.Errorf("invalid config:\n%s", strings.Join(invalid, "\n"))
}
