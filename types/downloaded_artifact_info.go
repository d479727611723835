package types

// DownloadedArtifactInfo contains information about an artifact which is available on the local file system
// for a remote artifact this is the downloaded copy, for a local artifact it is the file itself
type DownloadedArtifactInfo struct {
	ArtifactInfo
	// the local path of the artifact
	LocalName string `json:"local_name"`

	Size int64 `json:"size"`
}

func NewDownloadedArtifactInfo(artifactInfo *ArtifactInfo, localName string, size int64) *DownloadedArtifactInfo {
	res := &DownloadedArtifactInfo{
		ArtifactInfo: *artifactInfo,
		LocalName:    localName,
		Size:         size,
	}

	return res
}
