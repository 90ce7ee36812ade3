package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/quantmind-br/gitzip-go/internal/config"
)

func CreateGitHubForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("api_url").
				Title("API URL").
				Description("Base URL of the hosting API").
				Value(&values.APIURL).
				Placeholder(config.DefaultAPIURL).
				Validate(ValidateURL),

			huh.NewInput().
				Key("web_url").
				Title("Web URL").
				Description("Base URL of repository pages").
				Value(&values.WebURL).
				Placeholder(config.DefaultWebURL).
				Validate(ValidateURL),

			huh.NewInput().
				Key("raw_url").
				Title("Raw URL").
				Description("Base URL of raw file downloads").
				Value(&values.RawURL).
				Placeholder(config.DefaultRawURL).
				Validate(ValidateURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("token").
				Title("Access Token").
				Description("Sent as a bearer token (leave empty for anonymous access)").
				Value(&values.Token).
				EchoMode(huh.EchoModePassword),

			huh.NewInput().
				Key("default_branch").
				Title("Default Branch").
				Description("Used when a URL has no ref and detection is off or fails").
				Value(&values.DefaultBranch).
				Placeholder(config.DefaultBranch),

			huh.NewConfirm().
				Key("detect_default_branch").
				Title("Detect Default Branch").
				Description("Ask the remote for its HEAD branch").
				Value(&values.DetectDefaultBranch),
		),
	).WithTheme(GetTheme())
}

func CreateNetworkForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("timeout").
				Title("Request Timeout").
				Description("HTTP request timeout (e.g., 30s, 1m)").
				Value(&values.Timeout).
				Placeholder("60s").
				Validate(ValidateDuration),

			huh.NewInput().
				Key("max_retries").
				Title("Max Retries").
				Description("Retries for transient failures (0-10)").
				Value(&values.MaxRetries).
				Placeholder("0").
				Validate(ValidateIntRange(0, 10)),

			huh.NewInput().
				Key("user_agent").
				Title("User Agent").
				Description("Custom User-Agent header (leave empty for default)").
				Value(&values.UserAgent),
		),
	).WithTheme(GetTheme())
}

func CreateListingForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("workers").
				Title("Workers").
				Description("Concurrent listing and fetch requests (1-64)").
				Value(&values.Workers).
				Placeholder("8").
				Validate(ValidateIntRange(1, 64)),

			huh.NewSelect[string]().
				Key("strategy").
				Title("Tree Strategy").
				Description("How directories are listed").
				Options(
					huh.NewOption("Descent (contents, then one tree per child)", config.TreeStrategyDescent),
					huh.NewOption("Flat (one recursive tree)", config.TreeStrategyFlat),
				).
				Value(&values.TreeStrategy),

			huh.NewConfirm().
				Key("strict_probing").
				Title("Strict Branch Probing").
				Description("Stop probing branch candidates on the first non-404 error").
				Value(&values.StrictProbing),
		),
	).WithTheme(GetTheme())
}

func CreateArchiveForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("compression_level").
				Title("Compression Level").
				Description("-2 (huffman only), -1 (default), 0 (store) to 9 (best)").
				Value(&values.CompressionLevel).
				Placeholder("-1").
				Validate(ValidateIntRange(-2, 9)),

			huh.NewInput().
				Key("memory_limit").
				Title("Memory Limit").
				Description("Archives above this size are spooled to a temp file").
				Value(&values.MemoryLimit).
				Placeholder(config.DefaultArchiveMemoryLimit).
				Validate(ValidateSize),
		),
	).WithTheme(GetTheme())
}

func CreateCacheForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("enabled").
				Title("Enable Cache").
				Description("Keep fetched blobs to skip repeated downloads").
				Value(&values.CacheEnabled),

			huh.NewInput().
				Key("ttl").
				Title("Cache TTL").
				Description("How long to keep cached blobs (e.g., 24h, 168h)").
				Value(&values.CacheTTL).
				Placeholder("168h").
				Validate(ValidateDuration),

			huh.NewInput().
				Key("directory").
				Title("Cache Directory").
				Description("Directory for cache storage").
				Value(&values.CacheDirectory).
				Placeholder("~/.gitzip/cache"),
		),
	).WithTheme(GetTheme())
}

func CreateOutputForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("directory").
				Title("Output Directory").
				Description("Where to save downloads").
				Value(&values.OutputDirectory).
				Placeholder("."),

			huh.NewConfirm().
				Key("overwrite").
				Title("Overwrite Existing").
				Description("Replace files that already exist").
				Value(&values.OutputOverwrite),

			huh.NewConfirm().
				Key("manifest").
				Title("Download Manifest").
				Description("Record every saved download in gitzip-manifest.json").
				Value(&values.OutputManifest),
		),
	).WithTheme(GetTheme())
}

func CreateLoggingForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("level").
				Title("Log Level").
				Description("Minimum log level to display").
				Options(
					huh.NewOption("Trace", "trace"),
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&values.LogLevel),

			huh.NewSelect[string]().
				Key("format").
				Title("Log Format").
				Description("Output format for logs").
				Options(
					huh.NewOption("Pretty (human-readable)", "pretty"),
					huh.NewOption("JSON (structured)", "json"),
					huh.NewOption("Text (plain)", "text"),
				).
				Value(&values.LogFormat),
		),
	).WithTheme(GetTheme())
}

func GetFormForCategory(category string, values *ConfigValues) *huh.Form {
	switch category {
	case "github":
		return CreateGitHubForm(values)
	case "network":
		return CreateNetworkForm(values)
	case "listing":
		return CreateListingForm(values)
	case "archive":
		return CreateArchiveForm(values)
	case "cache":
		return CreateCacheForm(values)
	case "output":
		return CreateOutputForm(values)
	case "logging":
		return CreateLoggingForm(values)
	default:
		return nil
	}
}
