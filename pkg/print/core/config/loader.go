package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/labelpress/pkg/print/support/util/exception"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to the .env file, if any.
	EnvFilePath string `name:"envFilePath" optional:"true"`
}

// loadConfig loads configuration from the embedded YAML and environment
// variables. Precedence, lowest first: defaults, YAML, environment.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	var yamlConfig Config
	if err := yaml.Unmarshal(embeddedConfig, &yamlConfig); err != nil {
		return nil, exception.New(moduleName, exception.KindInternal, "failed to unmarshal embedded config", err)
	}
	mergeConfig(cfg, &yamlConfig)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.New(moduleName, exception.KindInternal, "failed to load config from environment variables", err)
	}
	return cfg, nil
}

// NewConfigProvider is the Fx provider for *Config. It loads the
// configuration and applies the configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Labelpress.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Labelpress.System.Logging.Level)
	return cfg, nil
}

// LoadConfig loads configuration from the given sources. It is expected to
// be called once at startup; NewConfigProvider wraps it for Fx.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

// mergeConfig performs a field-wise merge of source into dest, overwriting
// only where source carries a non-zero value.
func mergeConfig(dest, source *Config) {
	d, s := &dest.Labelpress, &source.Labelpress

	if s.Server.Host != "" {
		d.Server.Host = s.Server.Host
	}
	if s.Server.Port != 0 {
		d.Server.Port = s.Server.Port
	}

	if s.Jobs.Workers != 0 {
		d.Jobs.Workers = s.Jobs.Workers
	}
	if s.Jobs.ExecutorConcurrency != 0 {
		d.Jobs.ExecutorConcurrency = s.Jobs.ExecutorConcurrency
	}
	if s.Jobs.QueueCapacity != 0 {
		d.Jobs.QueueCapacity = s.Jobs.QueueCapacity
	}
	if s.Jobs.RenderTimeoutSeconds != 0 {
		d.Jobs.RenderTimeoutSeconds = s.Jobs.RenderTimeoutSeconds
	}
	if s.Jobs.RetentionHours != 0 {
		d.Jobs.RetentionHours = s.Jobs.RetentionHours
	}
	if s.Jobs.SweepIntervalSeconds != 0 {
		d.Jobs.SweepIntervalSeconds = s.Jobs.SweepIntervalSeconds
	}
	// The YAML zero value of a bool is indistinguishable from "unset", so
	// toggles default to false here and are enabled by the shipped
	// application.yaml. Environment variables still override either way.
	d.Jobs.KeepIntermediates = d.Jobs.KeepIntermediates || s.Jobs.KeepIntermediates
	d.Jobs.CleanupArtifacts = d.Jobs.CleanupArtifacts || s.Jobs.CleanupArtifacts

	if s.Renderer.Command != "" {
		d.Renderer.Command = s.Renderer.Command
	}
	if s.Renderer.CaptureLimitBytes != 0 {
		d.Renderer.CaptureLimitBytes = s.Renderer.CaptureLimitBytes
	}

	if s.System.Logging.Level != "" {
		d.System.Logging.Level = s.System.Logging.Level
	}
	if s.Tracing.Endpoint != "" {
		d.Tracing.Endpoint = s.Tracing.Endpoint
	}

	if s.AdapterConfigs != nil {
		if d.AdapterConfigs == nil {
			d.AdapterConfigs = make(map[string]interface{})
		}
		for key, value := range s.AdapterConfigs {
			d.AdapterConfigs[key] = value
		}
	}
}

// loadStructFromEnv recursively loads configuration values into a struct
// from environment variables. The variable name is derived from the yaml
// tags, upper-cased and joined with underscores
// (e.g. LABELPRESS_JOBS_WORKERS).
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		// Adapter maps are decoded by their adapters from the YAML tree;
		// they are not overridable through flat environment variables.
		if field.Kind() == reflect.Map {
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
