package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath    string
	CacheSize int

	// Import configuration
	Import         string
	ImportIncludes []string
	ImportExcludes []string

	// Site configuration
	RequestsDir        string
	HomeURL            string
	PermalinkStructure string
	Locale             string
	DateFormat         string
	StartOfWeek        int

	// Application metadata
	Timezone string
	Location *time.Location
	Debug    bool
	Version  string

	// Requests to render: named request files, or the ad-hoc Request when
	// no names are given
	RequestNames []string
	Request      Request
}

// Request holds the ad-hoc archive request taken from the command line
type Request struct {
	Type          string
	Limit         string
	Format        string
	Before        string
	After         string
	ShowPostCount bool
	Order         string
	Image         string
	Echo          bool
}
