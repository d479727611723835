package constants

import "time"

const (
	// DefaultConnectTimeout and DefaultReadTimeout bound every remote download
	DefaultConnectTimeout = 5000 * time.Millisecond
	DefaultReadTimeout    = 5000 * time.Millisecond

	// DefaultMaxConcurrentDownloads is the number of downloads a fetcher runs at once
	DefaultMaxConcurrentDownloads = 4
	// DefaultMaxConcurrentExtractors is the number of extractors run at once by the manager
	DefaultMaxConcurrentExtractors = 4

	// DefaultMetadataTimeout bounds the best-effort data source metadata update
	DefaultMetadataTimeout = 10 * time.Second

	// StoreBatchSize is the number of records a store writes to a data source at once
	StoreBatchSize = 1000
)

// TimestampLayout is the layout of the lastExecution and updated timestamps (second resolution)
const TimestampLayout = "2006-01-02 15:04:05"

const (
	// RemoteFileName is the name given to a downloaded artifact inside the staging workspace
	RemoteFileName = "tempFile"

	// MetadataRegistryName is the name of the auxiliary registry holding data source metadata
	MetadataRegistryName = "DBDataSource"
)

const (
	EnvLogLevel = "TAILPIPE_EXTRACTOR_LOG_LEVEL"
	EnvAppRoot  = "TAILPIPE_EXTRACTOR_APP_ROOT"
	EnvPrefix   = "TAILPIPE_EXTRACTOR"
	LogLevelOff = "off"
	ProcessName = "tailpipe-extractor"
)
