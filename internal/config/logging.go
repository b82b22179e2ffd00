package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: transport", "value", s.Transport)
	if s.Transport == "sse" {
		logger.InfoContext(ctx, "Config: host", "value", s.Host)
		logger.InfoContext(ctx, "Config: port", "value", s.Port)
	}

	logger.InfoContext(ctx, "Config: auth.type", "value", s.Auth.Type)
	switch s.Auth.Type {
	case AuthTypeBasic:
		logger.InfoContext(ctx, "Config: auth.basic.username", "value", s.Auth.Basic.Username)
		logger.InfoContext(ctx, "Config: auth.basic.password", "value", "****")
	case AuthTypeAPIKey:
		logger.InfoContext(ctx, "Config: auth.api_keys", "count", len(s.Auth.APIKeys))
	}

	logger.InfoContext(ctx, "Config: statute", slog.Any("statute", StatuteSettingsLogValue(s.Statute)))
	logger.InfoContext(ctx, "Config: compliance", slog.Any("compliance", ComplianceSettingsLogValue(s.Compliance)))
}

// AuthSettingsLogValue returns a slog.Value for AuthSettings with masked data
func AuthSettingsLogValue(s AuthSettings) slog.Value {
	keys := make([]string, len(s.APIKeys))
	for i := range s.APIKeys {
		keys[i] = "****"
	}
	return slog.GroupValue(
		slog.String("type", s.Type),
		slog.Any("basic", BasicAuthSettingsLogValue(s.Basic)),
		slog.Any("api_keys", keys),
	)
}

// BasicAuthSettingsLogValue returns a slog.Value for BasicAuthSettings with masked data
func BasicAuthSettingsLogValue(s BasicAuthSettings) slog.Value {
	return slog.GroupValue(
		slog.String("username", s.Username),
		slog.String("password", "****"),
	)
}

// StatuteSettingsLogValue returns a slog.Value for StatuteSettings.
// Custom patterns are reported as set or default only.
func StatuteSettingsLogValue(s StatuteSettings) slog.Value {
	return slog.GroupValue(
		slog.String("path", s.Path),
		slog.String("name", s.Name),
		slog.Int64("max_file_size", s.MaxFileSize),
		slog.Bool("custom_section_pattern", s.SectionPattern != ""),
		slog.Bool("custom_enumeration_pattern", s.EnumerationPattern != ""),
		slog.Group("layout",
			slog.String("definitions", s.Layout.Definitions),
			slog.String("penalties", s.Layout.Penalties),
			slog.String("rights", s.Layout.Rights),
			slog.String("principles", s.Layout.Principles),
			slog.String("functions", s.Layout.Functions),
		),
		slog.Bool("watch", s.Watch),
		slog.Duration("watch_debounce", s.WatchDebounce),
		slog.Int("max_results", s.MaxResults),
		slog.Int("cache_size", s.CacheSize),
	)
}

// SettingsLogValue returns a slog.Value for Settings with masked data
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("transport", s.Transport),
		slog.String("host", s.Host),
		slog.Int("port", s.Port),
		slog.Any("auth", AuthSettingsLogValue(s.Auth)),
		slog.Any("statute", StatuteSettingsLogValue(s.Statute)),
	)
}

// ComplianceSettingsLogValue returns a slog.Value for ComplianceSettings
func ComplianceSettingsLogValue(s ComplianceSettings) slog.Value {
	return slog.GroupValue(
		slog.String("principles", s.Principles),
		slog.String("lawful_processing", s.LawfulProcessing),
		slog.String("sensitive", s.Sensitive),
		slog.String("rights", s.Rights),
		slog.String("security", s.Security),
		slog.String("accountability", s.Accountability),
		slog.Group("penalties",
			slog.String("unauthorized_processing", s.Penalties.UnauthorizedProcessing),
			slog.String("sensitive_data", s.Penalties.SensitiveData),
			slog.String("inadequate_security", s.Penalties.InadequateSecurity),
			slog.String("excessive_processing", s.Penalties.ExcessiveProcessing),
		),
	)
}
