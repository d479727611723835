package constants

// enrichment columns added to every record written by a store
const (
	TpExecutionId     = "tp_execution_id"
	TpSourceLocation  = "tp_source_location"
	TpIngestTimestamp = "tp_ingest_timestamp"
)
