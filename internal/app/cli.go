package app

import "github.com/spf13/pflag"

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
	RegisterStatuteFlags(flags)
	RegisterComplianceFlags(flags)
}

// RegisterStatuteFlags registers the flags that control how the statute is loaded.
// Defaults live in the config layer so env vars apply when a flag is unset.
func RegisterStatuteFlags(flags *pflag.FlagSet) {
	flags.StringP("statute-path", "s", "", "Path to the statute text file")
	flags.String("statute-name", "", "Display name of the statute")
	flags.Int64("statute-max-file-size", 0, "Maximum statute file size in bytes")
	flags.String("statute-section-pattern", "", "Regex matching section headings (groups: number, rest of line)")
	flags.String("statute-enumeration-pattern", "", "Regex matching enumeration markers at line start (group: marker)")
	flags.String("statute-layout-definitions", "", "Section(s) holding term definitions")
	flags.String("statute-layout-penalties", "", "Section range holding penalties (e.g. 25-36)")
	flags.String("statute-layout-rights", "", "Section holding the data subject rights")
	flags.String("statute-layout-principles", "", "Section holding the processing principles")
	flags.String("statute-layout-functions", "", "Section holding the commission functions")
	flags.Bool("statute-watch", false, "Reload the statute when the file changes")
	flags.Duration("statute-watch-debounce", 0, "Delay between a file change and the reload")
	flags.Int("statute-max-results", 0, "Maximum number of search results")
	flags.Int("statute-cache-size", 0, "Number of cached full-text queries (0 disables)")
}

// RegisterComplianceFlags registers the section numbers cited by compliance checks.
func RegisterComplianceFlags(flags *pflag.FlagSet) {
	flags.String("compliance-principles", "", "Section cited for processing principles (default: first statute-layout-principles section)")
	flags.String("compliance-lawful-processing", "", "Section cited for lawful processing criteria")
	flags.String("compliance-sensitive", "", "Section cited for sensitive personal information")
	flags.String("compliance-rights", "", "Section cited for data subject rights (default: first statute-layout-rights section)")
	flags.String("compliance-security", "", "Section cited for security of personal information")
	flags.String("compliance-accountability", "", "Section cited for accountability")
	flags.String("compliance-penalty-unauthorized-processing", "", "Penalty section for processing without a lawful basis")
	flags.String("compliance-penalty-sensitive-data", "", "Penalty section for unprotected sensitive personal information")
	flags.String("compliance-penalty-inadequate-security", "", "Penalty section for inadequate security")
	flags.String("compliance-penalty-excessive-processing", "", "Penalty section for excessive processing")
}
