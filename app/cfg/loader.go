package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath    string `long:"db" env:"DB_PATH" default:"./archives.db" description:"Path of the SQLite database holding posts"`
	CacheSize int    `long:"cache-size" env:"CACHE_SIZE" default:"1024" description:"Maximum number of cached archive queries"`

	// Import configuration
	Import         string   `long:"import" env:"IMPORT" description:"RSS or Atom file to import as posts before rendering"`
	ImportIncludes []string `long:"import-include" description:"Only import items whose FIELD contains TEXT (field:text, repeatable)"`
	ImportExcludes []string `long:"import-exclude" description:"Skip items whose FIELD contains TEXT (field:text, repeatable)"`

	// Site configuration
	RequestsDir        string `long:"requests-dir" env:"REQUESTS_DIR" default:"./requests" description:"Directory containing archive request files"`
	HomeURL            string `long:"home-url" env:"HOME_URL" default:"http://localhost" description:"Site home URL archive links are built from"`
	PermalinkStructure string `long:"permalink-structure" env:"PERMALINK_STRUCTURE" description:"Post permalink structure (e.g., /%year%/%monthnum%/%postname%/); empty for plain links"`
	Locale             string `long:"locale" env:"LOCALE" default:"en" description:"Language for month and weekday names (BCP 47 tag)"`
	DateFormat         string `long:"date-format" env:"DATE_FORMAT" default:"F j, Y" description:"Site date format used by daily and weekly archives"`
	StartOfWeek        int    `long:"start-of-week" env:"START_OF_WEEK" default:"1" description:"First day of the week (0 = Sunday ... 6 = Saturday)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone imported post dates are stored in (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Request rawRequest `group:"Request Options"`
}

// rawRequest describes an ad-hoc archive request given on the command line
type rawRequest struct {
	Type          string `long:"type" default:"monthly" description:"Archive grouping: daily, weekly, monthly, yearly, postbypost or alpha"`
	Limit         string `long:"limit" description:"Maximum number of links; empty or 0 for no limit"`
	Format        string `long:"format" default:"html" description:"Link format: html, option, link or custom"`
	Before        string `long:"before" description:"Markup placed before each link"`
	After         string `long:"after" description:"Markup placed after each link"`
	ShowPostCount bool   `long:"show-post-count" description:"Append the number of posts to date archive links"`
	Order         string `long:"order" default:"DESC" description:"Sort order of date archives: ASC or DESC"`
	Image         string `long:"image" description:"Image template; %1$s is replaced by the archive key and %2$s by its label"`
	NoEcho        bool   `long:"no-echo" description:"Build the archive without printing it"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. Positional arguments name the
// request files to render. A help request yields a nil config and no error.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] [REQUEST...]"

	names, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		CacheSize:          raw.CacheSize,
		Import:             raw.Import,
		ImportIncludes:     raw.ImportIncludes,
		ImportExcludes:     raw.ImportExcludes,
		RequestsDir:        raw.RequestsDir,
		HomeURL:            raw.HomeURL,
		PermalinkStructure: raw.PermalinkStructure,
		Locale:             raw.Locale,
		DateFormat:         raw.DateFormat,
		StartOfWeek:        raw.StartOfWeek,
		Timezone:           raw.Timezone,
		Location:           time.UTC,
		Debug:              raw.Debug,
		Version:            GetVersion(),
		RequestNames:       names,
		Request: Request{
			Type:          raw.Request.Type,
			Limit:         raw.Request.Limit,
			Format:        raw.Request.Format,
			Before:        raw.Request.Before,
			After:         raw.Request.After,
			ShowPostCount: raw.Request.ShowPostCount,
			Order:         raw.Request.Order,
			Image:         raw.Request.Image,
			Echo:          !raw.Request.NoEcho,
		},
	}

	if cfg.StartOfWeek < 0 || cfg.StartOfWeek > 6 {
		return nil, fmt.Errorf("start of week must be between 0 and 6, got %d", cfg.StartOfWeek)
	}

	if loc, err := loadLocation(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
	} else {
		cfg.Location = loc
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	slog.Debug("Timezone configured", "timezone", timezone)
	return loc, nil
}
