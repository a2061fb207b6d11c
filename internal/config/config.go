package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jira-wip/internal/eventlog"
	"jira-wip/internal/jira"
	"jira-wip/internal/stats"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// FileName is the optional YAML configuration looked up in the data path.
const FileName = "jira-wip"

// LimitEntry is one WIP limit in the YAML list form.
type LimitEntry struct {
	Status string `mapstructure:"status" validate:"required"`
	Limit  int    `mapstructure:"limit" validate:"gt=0"`
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// Jira is validated only when a client is built, so offline runs need no credentials.
	Jira       jira.Config `validate:"-"`
	ProjectKey string
	JQL        string

	DataPath string
	CacheDir string

	Limits   []LimitEntry `validate:"dive"`
	Timezone string       `validate:"required,timezone"`

	CacheMaxAge         time.Duration `validate:"gte=0"`
	EnableMermaidCharts bool
}

// DefaultLimits are used when neither the environment nor the config file names any.
var DefaultLimits = []LimitEntry{
	{Status: "In Progress", Limit: 6},
	{Status: "Testing/Review", Limit: 3},
}

// Load loads the configuration from .env files, an optional YAML file and environment
// variables. configFile overrides the YAML lookup in the data path.
func Load(configFile string) (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	v := viper.New()
	setDefaults(v, exeDir)
	v.AutomaticEnv()

	// 3. Optional YAML file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_path"))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("Loaded configuration file")
	}

	return FromViper(v)
}

func setDefaults(v *viper.Viper, exeDir string) {
	dataPath := exeDir
	if dataPath == "" {
		dataPath = "."
	}
	v.SetDefault("data_path", dataPath)
	v.SetDefault("jira_page_size", jira.DefaultPageSize)
	v.SetDefault("jira_request_delay_ms", 0)
	v.SetDefault("analysis_timezone", "UTC")
	v.SetDefault("enable_mermaid_charts", false)
	v.SetDefault("cache_max_age_hours", int(eventlog.DefaultCacheMaxAge/time.Hour))

	// Keys only reachable through the environment must be known to viper for
	// AutomaticEnv lookups through Get.
	for _, key := range []string{"jira_base_url", "jira_email", "jira_api_token", "project_key", "jira_jql", "wip_limits"} {
		v.SetDefault(key, "")
	}
}

// FromViper builds and validates an AppConfig from resolved viper settings.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	limits, err := parseLimits(v.Get("wip_limits"))
	if err != nil {
		return nil, err
	}
	if limits == nil {
		limits = DefaultLimits
	}

	dataPath := v.GetString("data_path")
	projectKey := v.GetString("project_key")

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:      v.GetString("jira_base_url"),
			Email:        v.GetString("jira_email"),
			Token:        v.GetString("jira_api_token"),
			RequestDelay: time.Duration(v.GetInt("jira_request_delay_ms")) * time.Millisecond,
			PageSize:     v.GetInt("jira_page_size"),
		},
		ProjectKey:          projectKey,
		JQL:                 v.GetString("jira_jql"),
		DataPath:            dataPath,
		CacheDir:            filepath.Join(dataPath, "cache"),
		Limits:              limits,
		Timezone:            v.GetString("analysis_timezone"),
		CacheMaxAge:         time.Duration(v.GetFloat64("cache_max_age_hours") * float64(time.Hour)),
		EnableMermaidCharts: v.GetBool("enable_mermaid_charts"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// WIPLimits returns the configured limits keyed by status.
func (c *AppConfig) WIPLimits() stats.WIPLimits {
	limits := make(stats.WIPLimits, len(c.Limits))
	for _, l := range c.Limits {
		limits[l.Status] = l.Limit
	}
	return limits
}

// Location resolves the analysis time zone.
func (c *AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// SearchJQL returns the configured JQL, or the project scope when none is set.
func (c *AppConfig) SearchJQL() (string, error) {
	if c.JQL != "" {
		return c.JQL, nil
	}
	if c.ProjectKey == "" {
		return "", errors.New("set PROJECT_KEY or JIRA_JQL to select the issues to analyze")
	}
	return jira.ProjectJQL(c.ProjectKey), nil
}

// SourceID names the cache partition for the configured scope.
func (c *AppConfig) SourceID() string {
	if c.ProjectKey != "" {
		return c.ProjectKey
	}
	return "default"
}

// parseLimits accepts either the env form "In Progress=6;Testing/Review=3" or the
// YAML list form. A nil result means nothing was configured.
func parseLimits(raw any) ([]LimitEntry, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseLimitString(val)
	case []any:
		var limits []LimitEntry
		for i, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("wip_limits[%d]: expected a {status, limit} entry", i)
			}
			status, _ := m["status"].(string)
			limit, err := toInt(m["limit"])
			if err != nil {
				return nil, fmt.Errorf("wip_limits[%d]: %w", i, err)
			}
			limits = append(limits, LimitEntry{Status: status, Limit: limit})
		}
		return limits, nil
	default:
		return nil, fmt.Errorf("unsupported wip_limits value of type %T", raw)
	}
}

// ParseLimitString parses "Status=N" pairs separated by semicolons.
func ParseLimitString(s string) ([]LimitEntry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var limits []LimitEntry
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid WIP limit %q, expected Status=N", pair)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(pair[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("invalid WIP limit %q: %w", pair, err)
		}
		limits = append(limits, LimitEntry{Status: strings.TrimSpace(pair[:idx]), Limit: limit})
	}
	return limits, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("invalid limit %v", v)
	}
}
