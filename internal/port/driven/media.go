package driven

// The media decode engines and the media sink are external collaborators:
// the playback state machine drives them through these contracts and reacts
// to the events they emit. Their internal segment-fetch/buffering logic is
// out of scope.

// EngineErrorType tags engine error events.
type EngineErrorType int

const (
	// EngineErrorNetwork is a manifest/segment fetch failure.
	EngineErrorNetwork EngineErrorType = iota
	// EngineErrorMedia is a decode failure; one in-place recovery is
	// attempted before giving up.
	EngineErrorMedia
	// EngineErrorOther covers everything else.
	EngineErrorOther
)

func (t EngineErrorType) String() string {
	switch t {
	case EngineErrorNetwork:
		return "network"
	case EngineErrorMedia:
		return "media"
	default:
		return "other"
	}
}

// EngineEventKind discriminates engine events.
type EngineEventKind int

const (
	// EngineReady signals the manifest was parsed / the stream was
	// initialized and playback may be attempted.
	EngineReady EngineEventKind = iota
	// EngineErrored signals an engine error; Fatal and ErrorType qualify it.
	EngineErrored
)

// EngineEvent is one signal emitted by a media engine.
type EngineEvent struct {
	Kind      EngineEventKind
	Fatal     bool
	ErrorType EngineErrorType
}

// MediaEngine is an adaptive (HLS-style) or manifest-based (DASH-style)
// decode engine. An engine emits exactly one ready signal and zero or more
// error signals on its event channel; Destroy releases all engine resources
// and closes the channel.
type MediaEngine interface {
	Load(url string) error
	Attach(sink MediaSink)
	Events() <-chan EngineEvent
	// Recover asks the engine to attempt in-place recovery from a fatal
	// media error.
	Recover() error
	Destroy()
}

// AdaptiveOptions configure the adaptive engine's fetch policy.
type AdaptiveOptions struct {
	// MaxBufferSeconds bounds forward buffering.
	MaxBufferSeconds int
	// WithCredentials controls the credential policy of segment fetches.
	WithCredentials bool
}

// EngineFactory builds engine instances. A new engine is created per
// playback session; the session owns it exclusively until Destroy.
type EngineFactory interface {
	NewAdaptiveEngine(opts AdaptiveOptions) MediaEngine
	NewManifestEngine() MediaEngine
}

// CrossOriginMode is the sink's cross-origin fetch policy.
type CrossOriginMode int

const (
	// CrossOriginNone requests media without CORS credentials or headers.
	CrossOriginNone CrossOriginMode = iota
	// CrossOriginAnonymous requests media in anonymous cross-origin mode
	// (CORS headers, no credentials), the retry path for direct files
	// behind stricter CDNs.
	CrossOriginAnonymous
)

// SinkEventKind discriminates media-sink events.
type SinkEventKind int

const (
	// SinkCanPlay signals the sink buffered enough to begin.
	SinkCanPlay SinkEventKind = iota
	// SinkPlaying signals actual playback started. The first such event
	// marks the session started and silences pending failure paths.
	SinkPlaying
	// SinkErrored signals a sink-level failure.
	SinkErrored
)

// SinkEvent is one signal emitted by the media sink.
type SinkEvent struct {
	Kind SinkEventKind
}

// MediaSink is the single media output. It is owned exclusively by the
// current playback session; teardown must detach it before the next session
// may touch it.
type MediaSink interface {
	SetSource(url string)
	SetCrossOrigin(mode CrossOriginMode)
	// Play attempts to start playback. An error models synchronous refusal
	// (the autoplay-rejection analog); asynchronous failures arrive as
	// SinkErrored events.
	Play() error
	// Detach stops output and releases the sink for the next session.
	Detach()
	Events() <-chan SinkEvent
}
