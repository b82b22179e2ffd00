package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sha1n/mcp-statute-server/internal/statute"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// EnvPrefix is the prefix of every environment variable the server reads
const EnvPrefix = "STATUTE_MCP"

// AuthSettings configuration for authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LayoutSettings designates the sections holding derived structures, as section specs ("25-36,38")
type LayoutSettings struct {
	Definitions string `mapstructure:"definitions"`
	Penalties   string `mapstructure:"penalties"`
	Rights      string `mapstructure:"rights"`
	Principles  string `mapstructure:"principles"`
	Functions   string `mapstructure:"functions"`
}

// StatuteSettings configuration for the loaded statute
type StatuteSettings struct {
	Path               string         `mapstructure:"path"`
	Name               string         `mapstructure:"name"`
	MaxFileSize        int64          `mapstructure:"max_file_size"`
	SectionPattern     string         `mapstructure:"section_pattern"`
	EnumerationPattern string         `mapstructure:"enumeration_pattern"`
	Layout             LayoutSettings `mapstructure:"layout"`
	Watch              bool           `mapstructure:"watch"`
	WatchDebounce      time.Duration  `mapstructure:"watch_debounce"`
	MaxResults         int            `mapstructure:"max_results"`
	CacheSize          int            `mapstructure:"cache_size"`
}

// Grammar compiles the configured segmentation patterns
func (s StatuteSettings) Grammar() (*statute.Grammar, error) {
	return statute.NewGrammar(s.SectionPattern, s.EnumerationPattern)
}

// ParsedLayout expands the configured section specs
func (s StatuteSettings) ParsedLayout() (statute.Layout, error) {
	return statute.NewLayout(s.Layout.Definitions, s.Layout.Penalties, s.Layout.Rights, s.Layout.Principles, s.Layout.Functions)
}

// PenaltySettings maps compliance finding types to the sections that penalize them
type PenaltySettings struct {
	UnauthorizedProcessing string `mapstructure:"unauthorized_processing"`
	SensitiveData          string `mapstructure:"sensitive_data"`
	InadequateSecurity     string `mapstructure:"inadequate_security"`
	ExcessiveProcessing    string `mapstructure:"excessive_processing"`
}

// ComplianceSettings designates the sections cited by compliance checks.
// Empty Principles and Rights follow the statute layout.
type ComplianceSettings struct {
	Principles       string          `mapstructure:"principles"`
	LawfulProcessing string          `mapstructure:"lawful_processing"`
	Sensitive        string          `mapstructure:"sensitive"`
	Rights           string          `mapstructure:"rights"`
	Security         string          `mapstructure:"security"`
	Accountability   string          `mapstructure:"accountability"`
	Penalties        PenaltySettings `mapstructure:"penalties"`
}

// Settings application settings
type Settings struct {
	Transport  string             `mapstructure:"transport"`
	Host       string             `mapstructure:"host"`
	Port       int                `mapstructure:"port"`
	Auth       AuthSettings       `mapstructure:"auth"`
	Statute    StatuteSettings    `mapstructure:"statute"`
	Compliance ComplianceSettings `mapstructure:"compliance"`
}

// statuteKeys maps statute setting keys to their CLI flag names
var statuteKeys = map[string]string{
	"statute.path":                "statute-path",
	"statute.name":                "statute-name",
	"statute.max_file_size":       "statute-max-file-size",
	"statute.section_pattern":     "statute-section-pattern",
	"statute.enumeration_pattern": "statute-enumeration-pattern",
	"statute.layout.definitions":  "statute-layout-definitions",
	"statute.layout.penalties":    "statute-layout-penalties",
	"statute.layout.rights":       "statute-layout-rights",
	"statute.layout.principles":   "statute-layout-principles",
	"statute.layout.functions":    "statute-layout-functions",
	"statute.watch":               "statute-watch",
	"statute.watch_debounce":      "statute-watch-debounce",
	"statute.max_results":         "statute-max-results",
	"statute.cache_size":          "statute-cache-size",
}

// complianceKeys maps compliance setting keys to their CLI flag names
var complianceKeys = map[string]string{
	"compliance.principles":                        "compliance-principles",
	"compliance.lawful_processing":                 "compliance-lawful-processing",
	"compliance.sensitive":                         "compliance-sensitive",
	"compliance.rights":                            "compliance-rights",
	"compliance.security":                          "compliance-security",
	"compliance.accountability":                    "compliance-accountability",
	"compliance.penalties.unauthorized_processing": "compliance-penalty-unauthorized-processing",
	"compliance.penalties.sensitive_data":          "compliance-penalty-sensitive-data",
	"compliance.penalties.inadequate_security":     "compliance-penalty-inadequate-security",
	"compliance.penalties.excessive_processing":    "compliance-penalty-excessive-processing",
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("auth.type", AuthTypeNone)

	// Statute defaults
	v.SetDefault("statute.name", "Data Privacy Act of 2012")
	v.SetDefault("statute.max_file_size", int64(8*1024*1024)) // 8MB
	v.SetDefault("statute.layout.definitions", statute.DefaultDefinitionsSpec)
	v.SetDefault("statute.layout.penalties", statute.DefaultPenaltiesSpec)
	v.SetDefault("statute.layout.rights", statute.DefaultRightsSpec)
	v.SetDefault("statute.layout.principles", statute.DefaultPrinciplesSpec)
	v.SetDefault("statute.layout.functions", statute.DefaultFunctionsSpec)
	v.SetDefault("statute.watch", false)
	v.SetDefault("statute.watch_debounce", 500*time.Millisecond)
	v.SetDefault("statute.max_results", 10)
	v.SetDefault("statute.cache_size", 256)

	// Compliance defaults: sections of the Data Privacy Act of 2012
	v.SetDefault("compliance.principles", "")
	v.SetDefault("compliance.lawful_processing", "12")
	v.SetDefault("compliance.sensitive", "13")
	v.SetDefault("compliance.rights", "")
	v.SetDefault("compliance.security", "20")
	v.SetDefault("compliance.accountability", "21")
	v.SetDefault("compliance.penalties.unauthorized_processing", "25")
	v.SetDefault("compliance.penalties.sensitive_data", "25")
	v.SetDefault("compliance.penalties.inadequate_security", "26")
	v.SetDefault("compliance.penalties.excessive_processing", "28")

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("auth.type", EnvPrefix+"_AUTH_TYPE")
	_ = v.BindEnv("auth.basic.username", EnvPrefix+"_AUTH_BASIC_USERNAME")
	_ = v.BindEnv("auth.basic.password", EnvPrefix+"_AUTH_BASIC_PASSWORD")
	_ = v.BindEnv("auth.api_keys", EnvPrefix+"_AUTH_API_KEYS")

	for key := range statuteKeys {
		_ = v.BindEnv(key, envName(key))
	}
	for key := range complianceKeys {
		_ = v.BindEnv(key, envName(key))
	}

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		bindFlag(v, flags, "transport", "transport")
		bindFlag(v, flags, "host", "host")
		bindFlag(v, flags, "port", "port")
		bindFlag(v, flags, "auth.type", "auth-type")
		bindFlag(v, flags, "auth.basic.username", "auth-basic-username")
		bindFlag(v, flags, "auth.basic.password", "auth-basic-password")
		bindFlag(v, flags, "auth.api_keys", "auth-api-keys")

		for key, flag := range statuteKeys {
			bindFlag(v, flags, key, flag)
		}
		for key, flag := range complianceKeys {
			bindFlag(v, flags, key, flag)
		}
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of API keys if provided via env var as comma-separated string
	apiKeysEnv := os.Getenv(EnvPrefix + "_AUTH_API_KEYS")
	if apiKeysEnv != "" {
		if len(settings.Auth.APIKeys) == 0 || (len(settings.Auth.APIKeys) == 1 && strings.Contains(settings.Auth.APIKeys[0], ",")) {
			settings.Auth.APIKeys = strings.Split(apiKeysEnv, ",")
		}
	}

	// Trim spaces from API keys
	for i := range settings.Auth.APIKeys {
		settings.Auth.APIKeys[i] = strings.TrimSpace(settings.Auth.APIKeys[i])
	}
	settings.Auth.APIKeys = filterEmptyStrings(settings.Auth.APIKeys)

	settings.Statute.Path = expandHomeDir(strings.TrimSpace(settings.Statute.Path))

	return &settings, nil
}

// bindFlag binds a flag when the flag set defines it. Subcommands only define a subset.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

// envName returns the environment variable for a settings key
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for conflicting configurations.
// Returns an error if the settings contain mutually exclusive or incomplete auth config,
// or an unusable statute configuration.
func ValidateSettings(s *Settings) error {
	// Validate transport type
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	if err := validateAuthSettings(&s.Auth); err != nil {
		return err
	}

	return ValidateStatuteSettings(&s.Statute)
}

// validateAuthSettings validates the auth configuration
func validateAuthSettings(a *AuthSettings) error {
	hasBasicCreds := a.Basic.Username != "" || a.Basic.Password != ""
	hasAPIKeys := len(a.APIKeys) > 0

	switch a.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if a.Basic.Username == "" || a.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + a.Type)
	}
	return nil
}

// ValidateStatuteSettings validates the statute configuration
func ValidateStatuteSettings(s *StatuteSettings) error {
	if s.Path == "" {
		return errors.New("statute-path is required")
	}

	if s.MaxFileSize <= 0 {
		return errors.New("statute-max-file-size must be positive")
	}

	if s.MaxResults <= 0 {
		return errors.New("statute-max-results must be positive")
	}

	if s.CacheSize < 0 {
		return errors.New("statute-cache-size cannot be negative")
	}

	if s.Watch && s.WatchDebounce <= 0 {
		return errors.New("statute-watch-debounce must be positive when statute-watch is enabled")
	}

	if _, err := s.Grammar(); err != nil {
		return fmt.Errorf("statute grammar: %w", err)
	}

	if _, err := s.ParsedLayout(); err != nil {
		return fmt.Errorf("statute layout: %w", err)
	}

	return nil
}
