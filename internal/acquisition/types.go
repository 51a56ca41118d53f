package acquisition

// AssetKind names one of the four downloadable artifacts.
type AssetKind string

const (
	AssetVideo     AssetKind = "video"
	AssetAudio     AssetKind = "audio"
	AssetSubtitle  AssetKind = "subtitle"
	AssetThumbnail AssetKind = "thumbnail"
)

// Asset is one requested artifact. Path is empty when Present is false.
type Asset struct {
	Kind    AssetKind `json:"kind"`
	Path    string    `json:"path,omitempty"`
	Present bool      `json:"present"`
}

// Options selects which assets Acquire downloads. The thumbnail is fetched
// whenever any asset is requested.
type Options struct {
	DownloadVideo     bool `json:"download_video"`
	DownloadAudio     bool `json:"download_audio"`
	DownloadSubtitles bool `json:"download_subtitles"`
}

// DefaultOptions requests every asset.
func DefaultOptions() Options {
	return Options{DownloadVideo: true, DownloadAudio: true, DownloadSubtitles: true}
}

func (o Options) any() bool {
	return o.DownloadVideo || o.DownloadAudio || o.DownloadSubtitles
}

// Result aggregates the downloaded assets and descriptive metadata of one
// Acquire call.
type Result struct {
	RequestID        string  `json:"request_id"`
	VideoID          string  `json:"video_id"`
	Title            string  `json:"title"`
	Channel          string  `json:"channel"`
	DurationSeconds  float64 `json:"duration_seconds"`
	UploadDate       string  `json:"upload_date"`
	Description      string  `json:"description"`
	SourceURL        string  `json:"source_url"`
	WorkingDirectory string  `json:"working_directory"`
	Assets           []Asset `json:"assets"`
	// Warning is set when some requested assets are missing.
	Warning string `json:"warning,omitempty"`
	// MetadataOnly marks results built without the downloader.
	MetadataOnly bool `json:"metadata_only,omitempty"`
}

// Asset returns the asset of the given kind, if it was requested.
func (r Result) Asset(kind AssetKind) (Asset, bool) {
	for _, asset := range r.Assets {
		if asset.Kind == kind {
			return asset, true
		}
	}
	return Asset{}, false
}

// Missing lists the requested kinds that were not produced, in asset order.
func (r Result) Missing() []AssetKind {
	var missing []AssetKind
	for _, asset := range r.Assets {
		if !asset.Present {
			missing = append(missing, asset.Kind)
		}
	}
	return missing
}
