package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaiserbh/webiptv/internal/manifest"
	"github.com/kaiserbh/webiptv/internal/playback"
	"github.com/kaiserbh/webiptv/internal/port/driven"
	"github.com/kaiserbh/webiptv/metrics"
)

// ErrStreamOffline is returned when the channel's manifest points at a known
// offline placeholder and playback was not attempted.
var ErrStreamOffline = errors.New("stream is offline")

const (
	adaptiveMaxBufferSeconds = 30
	sniffTimeout             = 5 * time.Second

	noticeOffline     = "Stream is offline"
	noticeFailed      = "Playback failed. Try another channel."
	noticeUnsupported = "Unsupported stream format"

	// Failure notices are transient; the session status stays queryable.
	noticeTTL = 5 * time.Second
)

// Terminal failure reasons, used as metric labels and log fields.
const (
	reasonTimeout     = "timeout"
	reasonNetwork     = "network"
	reasonMedia       = "media"
	reasonEngine      = "engine"
	reasonSink        = "sink"
	reasonAutoplay    = "autoplay"
	reasonOffline     = "offline"
	reasonUnsupported = "unsupported"
)

// PlaybackStatus is a snapshot of the current playback session.
type PlaybackStatus struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	Attempt   string `json:"attempt"`
	State     string `json:"state"`
}

// PlaybackService selects a playback strategy per stream URL and supervises
// the resulting session. At most one session exists at a time; starting a new
// one tears the previous one down completely before any new setup runs.
type PlaybackService struct {
	engines  driven.EngineFactory
	sink     driven.MediaSink
	fetcher  driven.Fetcher
	notifier driven.Notifier
	logger   *slog.Logger
	timings  playback.Timings

	mu      sync.Mutex
	session *session
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	engines driven.EngineFactory,
	sink driven.MediaSink,
	fetcher driven.Fetcher,
	notifier driven.Notifier,
	logger *slog.Logger,
	timings playback.Timings,
) *PlaybackService {
	return &PlaybackService{
		engines:  engines,
		sink:     sink,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
		timings:  timings,
	}
}

// session is the mutable record of one playback attempt chain. URL and
// attempt change when the session falls back to the raw-segment variant.
type session struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	url     string
	format  playback.Format
	attempt playback.Attempt
	state   playback.State
}

func (s *session) snapshot() PlaybackStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PlaybackStatus{
		SessionID: s.id,
		URL:       s.url,
		Format:    s.format.String(),
		Attempt:   s.attempt.String(),
		State:     s.state.String(),
	}
}

func (s *session) setState(st playback.State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *session) setTarget(url string, attempt playback.Attempt) {
	s.mu.Lock()
	s.url = url
	s.attempt = attempt
	s.mu.Unlock()
}

func (s *session) target() (string, playback.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, s.attempt
}

// Play starts playback of the given URL, replacing any active session. The
// previous session is fully torn down before the new one touches the engine
// factory or the sink.
func (s *PlaybackService) Play(ctx context.Context, url string) (PlaybackStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	format := playback.Classify(url)
	if format == playback.FormatUnsupported {
		s.logger.Warn("unsupported stream format", "url", url)
		metrics.PlaybackFailures.WithLabelValues(reasonUnsupported).Inc()
		s.notifier.Notify(noticeUnsupported, noticeTTL)
		return PlaybackStatus{}, playback.ErrUnsupportedFormat
	}

	target := url
	attempt := playback.AttemptPrimary

	// Closed manifests wrapping a single file are played directly; offline
	// placeholders never reach the sink at all.
	if format == playback.FormatAdaptive && strings.Contains(url, ".m3u8") {
		if res, ok := s.sniff(ctx, url); ok {
			switch res.Kind {
			case manifest.KindOffline:
				s.logger.Info("channel is offline", "url", url, "placeholder", res.MediaURL)
				metrics.PlaybackFailures.WithLabelValues(reasonOffline).Inc()
				s.notifier.Notify(noticeOffline, noticeTTL)
				return PlaybackStatus{}, ErrStreamOffline
			case manifest.KindDirect:
				s.logger.Info("manifest wraps a direct file", "url", url, "media_url", res.MediaURL)
				target = res.MediaURL
				format = playback.FormatProgressive
				attempt = playback.AttemptDirect
			}
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:      uuid.New().String(),
		cancel:  cancel,
		done:    make(chan struct{}),
		url:     target,
		format:  format,
		attempt: attempt,
		state:   playback.StateLoading,
	}
	s.session = sess

	s.logger.Info("starting playback session",
		"session", sess.id,
		"url", target,
		"format", format.String(),
		"attempt", attempt.String(),
	)
	metrics.PlaybackAttempts.WithLabelValues(format.String(), attempt.String()).Inc()
	metrics.SessionsActive.Set(1)

	go s.run(runCtx, sess)

	return sess.snapshot(), nil
}

// Stop tears down the active session, if any.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return playback.ErrNoActiveSession
	}
	s.teardownLocked()
	return nil
}

// Status returns a snapshot of the most recent session. The second return is
// false when no session was ever started.
func (s *PlaybackService) Status() (PlaybackStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return PlaybackStatus{}, false
	}
	return s.session.snapshot(), true
}

// teardownLocked cancels the current session and blocks until its goroutine
// has destroyed the engine and detached the sink.
func (s *PlaybackService) teardownLocked() {
	if s.session == nil {
		return
	}
	s.session.cancel()
	<-s.session.done
	s.session = nil
}

func (s *PlaybackService) sniff(ctx context.Context, url string) (manifest.Result, bool) {
	sniffCtx, cancel := context.WithTimeout(ctx, sniffTimeout)
	defer cancel()

	body, err := s.fetcher.Fetch(sniffCtx, url)
	if err != nil {
		// Leave unreachable manifests to the adaptive engine, which has its
		// own retry behavior.
		s.logger.Debug("manifest sniff skipped", "url", url, "error", err)
		return manifest.Result{}, false
	}
	return manifest.Sniff(url, string(body)), true
}

// run supervises one session until it plays, fails terminally or is cancelled.
func (s *PlaybackService) run(ctx context.Context, sess *session) {
	defer close(sess.done)
	defer metrics.SessionsActive.Set(0)

	r := &sessionRun{svc: s, sess: sess}
	defer func() {
		if r.engine != nil {
			r.engine.Destroy()
		}
		s.sink.Detach()
	}()

	if terminal := r.setup(); terminal {
		return
	}
	r.loop(ctx)
}

// sessionRun holds the in-flight state of one session's supervision loop.
// All fields are owned by the run goroutine.
type sessionRun struct {
	svc  *PlaybackService
	sess *session

	engine       driven.MediaEngine
	engineEvents <-chan driven.EngineEvent
	sinkEvents   <-chan driven.SinkEvent

	loadC     <-chan time.Time
	settleC   <-chan time.Time
	failC     <-chan time.Time
	fallbackC <-chan time.Time

	failReason  string
	fallbackURL string

	started     bool
	recovered   bool
	fellBack    bool
	corsRetried bool
}

// setup builds the engine (or assigns the sink directly) for the session's
// current target. Returns true when setup failed terminally.
func (r *sessionRun) setup() bool {
	url, _ := r.sess.target()
	t := r.svc.timings

	if r.engine != nil {
		r.engine.Destroy()
		r.engine = nil
		r.engineEvents = nil
	}

	switch r.sess.format {
	case playback.FormatAdaptive:
		r.engine = r.svc.engines.NewAdaptiveEngine(driven.AdaptiveOptions{
			MaxBufferSeconds: adaptiveMaxBufferSeconds,
			WithCredentials:  false,
		})
	case playback.FormatDASH:
		r.engine = r.svc.engines.NewManifestEngine()
	}

	r.sinkEvents = r.svc.sink.Events()
	r.loadC = time.After(t.LoadTimeout)

	if r.engine != nil {
		r.engineEvents = r.engine.Events()
		r.engine.Attach(r.svc.sink)
		if err := r.engine.Load(url); err != nil {
			r.svc.logger.Warn("engine load failed", "session", r.sess.id, "url", url, "error", err)
			return r.conclude(reasonEngine)
		}
		return false
	}

	// Progressive and direct files go straight to the sink; there is no
	// readiness signal, so the settle delay starts immediately.
	r.svc.sink.SetCrossOrigin(driven.CrossOriginNone)
	r.svc.sink.SetSource(url)
	r.settleC = time.After(t.SettleDelay)
	return false
}

func (r *sessionRun) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-r.engineEvents:
			if !ok {
				r.engineEvents = nil
				continue
			}
			if r.handleEngineEvent(ev) {
				return
			}

		case ev, ok := <-r.sinkEvents:
			if !ok {
				r.sinkEvents = nil
				continue
			}
			if r.handleSinkEvent(ev) {
				return
			}

		case <-r.loadC:
			r.loadC = nil
			if r.started {
				continue
			}
			r.svc.logger.Warn("load timeout expired", "session", r.sess.id)
			if r.conclude(reasonTimeout) {
				return
			}

		case <-r.settleC:
			r.settleC = nil
			if r.started {
				continue
			}
			if err := r.svc.sink.Play(); err != nil {
				r.svc.logger.Warn("sink refused to play", "session", r.sess.id, "error", err)
				if r.retryDirectCrossOrigin() {
					continue
				}
				if r.conclude(reasonAutoplay) {
					return
				}
			}

		case <-r.failC:
			r.failC = nil
			if r.started {
				continue
			}
			if r.conclude(r.failReason) {
				return
			}

		case <-r.fallbackC:
			r.fallbackC = nil
			if r.started {
				continue
			}
			if r.startFallback() {
				return
			}
		}
	}
}

func (r *sessionRun) handleEngineEvent(ev driven.EngineEvent) bool {
	// The first playing signal silences every failure path for good.
	if r.started {
		return false
	}

	switch ev.Kind {
	case driven.EngineReady:
		r.settleC = time.After(r.svc.timings.SettleDelay)

	case driven.EngineErrored:
		if !ev.Fatal {
			r.svc.logger.Debug("transient engine error",
				"session", r.sess.id, "type", ev.ErrorType.String())
			return false
		}

		switch ev.ErrorType {
		case driven.EngineErrorNetwork:
			r.svc.logger.Warn("fatal engine network error", "session", r.sess.id)
			// A network failure on a manifest URL is exactly the case the
			// raw-segment fallback exists for; don't wait out the grace.
			if r.fallbackEligible() {
				return r.conclude(reasonNetwork)
			}
			r.requestFailure(reasonNetwork, r.svc.timings.GraceEngine)

		case driven.EngineErrorMedia:
			if !r.recovered {
				r.recovered = true
				if err := r.engine.Recover(); err == nil {
					r.svc.logger.Info("attempting media error recovery", "session", r.sess.id)
					return false
				}
			}
			r.svc.logger.Warn("fatal engine media error", "session", r.sess.id)
			r.requestFailure(reasonMedia, r.svc.timings.GraceEngine)

		default:
			r.svc.logger.Warn("fatal engine error", "session", r.sess.id)
			r.requestFailure(reasonEngine, r.svc.timings.GraceEngine)
		}
	}
	return false
}

func (r *sessionRun) handleSinkEvent(ev driven.SinkEvent) bool {
	switch ev.Kind {
	case driven.SinkCanPlay:
		r.svc.logger.Debug("sink buffered enough to play", "session", r.sess.id)

	case driven.SinkPlaying:
		if r.started {
			return false
		}
		r.started = true
		r.loadC, r.settleC, r.failC, r.fallbackC = nil, nil, nil, nil
		r.sess.setState(playback.StatePlaying)
		metrics.PlaybackStarted.Inc()
		url, attempt := r.sess.target()
		r.svc.logger.Info("playback started",
			"session", r.sess.id, "url", url, "attempt", attempt.String())

	case driven.SinkErrored:
		if r.started {
			return false
		}
		if r.retryDirectCrossOrigin() {
			return false
		}
		r.svc.logger.Warn("sink error", "session", r.sess.id)
		r.requestFailure(reasonSink, r.svc.timings.GraceSink)
	}
	return false
}

// retryDirectCrossOrigin reassigns a direct file in anonymous cross-origin
// mode, once per session. Some CDNs refuse non-CORS media fetches; one retry
// covers them whether the failure surfaced as a sink error or as a refused
// play call. Returns false when the session is not on a direct file or the
// retry is spent.
func (r *sessionRun) retryDirectCrossOrigin() bool {
	url, attempt := r.sess.target()
	if attempt != playback.AttemptDirect || r.corsRetried {
		return false
	}
	r.corsRetried = true
	r.svc.logger.Info("retrying direct file in cross-origin mode",
		"session", r.sess.id, "url", url)
	r.svc.sink.SetCrossOrigin(driven.CrossOriginAnonymous)
	r.svc.sink.SetSource(url)
	r.settleC = time.After(r.svc.timings.SettleDelay)
	return true
}

// requestFailure arms the failure timer unless one is already pending.
// Reaching playback before it fires cancels it.
func (r *sessionRun) requestFailure(reason string, grace time.Duration) {
	if r.failC != nil {
		return
	}
	r.failReason = reason
	r.failC = time.After(grace)
}

func (r *sessionRun) fallbackEligible() bool {
	url, attempt := r.sess.target()
	if attempt != playback.AttemptPrimary || r.fellBack {
		return false
	}
	_, ok := playback.FallbackURL(url)
	return ok
}

// conclude resolves a confirmed failure: schedule the one automatic fallback
// if it is still available, otherwise fail terminally. Returns true when the
// session is over.
func (r *sessionRun) conclude(reason string) bool {
	url, _ := r.sess.target()
	if fb, ok := playback.FallbackURL(url); ok && r.fallbackEligible() {
		r.fellBack = true
		r.fallbackURL = fb
		r.failC = nil
		r.fallbackC = time.After(r.svc.timings.FallbackDelay)
		r.sess.setState(playback.StateFailedRecoverable)
		metrics.PlaybackFallbacks.Inc()
		r.svc.logger.Info("scheduling raw-segment fallback",
			"session", r.sess.id, "from", url, "to", fb, "reason", reason)
		return false
	}
	return r.terminal(reason)
}

// terminal fails the session for good. Exactly one user-facing notice is
// emitted per session.
func (r *sessionRun) terminal(reason string) bool {
	r.sess.setState(playback.StateFailedTerminal)
	metrics.PlaybackFailures.WithLabelValues(reason).Inc()
	r.svc.notifier.Notify(noticeFailed, noticeTTL)
	url, attempt := r.sess.target()
	r.svc.logger.Warn("playback failed",
		"session", r.sess.id, "url", url, "attempt", attempt.String(), "reason", reason)
	return true
}

// startFallback replaces the session's target with the raw-segment variant
// and rebuilds the engine. Returns true when the session is over.
func (r *sessionRun) startFallback() bool {
	r.sess.setTarget(r.fallbackURL, playback.AttemptFallback)
	r.sess.setState(playback.StateLoading)
	metrics.PlaybackAttempts.WithLabelValues(
		r.sess.format.String(), playback.AttemptFallback.String()).Inc()
	return r.setup()
}
