package types

// StagedArtifact is what the pipeline hands to a store
type StagedArtifact struct {
	// the staging workspace of the run
	Dir string
	// the file (or directory) the store should read
	// - for an archive, the expanded zip path inside Dir
	// - for a downloaded file, the file inside Dir
	// - for a local file, the file itself (outside Dir)
	Path string
	// the location the artifact was fetched from
	SourceLocation string
}
