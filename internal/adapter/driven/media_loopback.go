package driven

import (
	"sync"
	"time"

	"github.com/kaiserbh/webiptv/internal/port/driven"
)

// The loopback media adapters stand in for a real decode pipeline: they
// acknowledge load/play requests by emitting the corresponding readiness
// and playing signals after a short delay, without fetching or decoding
// anything. They let the full playback state machine run end to end when no
// engine integration is attached.

// LoopbackEngineFactory builds loopback engines.
type LoopbackEngineFactory struct {
	// Delay before the ready signal is emitted.
	Delay time.Duration
}

// NewAdaptiveEngine returns a loopback engine; the adaptive options are
// accepted and ignored.
func (f *LoopbackEngineFactory) NewAdaptiveEngine(_ driven.AdaptiveOptions) driven.MediaEngine {
	return newLoopbackEngine(f.Delay)
}

// NewManifestEngine returns a loopback engine.
func (f *LoopbackEngineFactory) NewManifestEngine() driven.MediaEngine {
	return newLoopbackEngine(f.Delay)
}

type loopbackEngine struct {
	delay  time.Duration
	events chan driven.EngineEvent
	done   chan struct{}
	once   sync.Once
}

func newLoopbackEngine(delay time.Duration) *loopbackEngine {
	return &loopbackEngine{
		delay:  delay,
		events: make(chan driven.EngineEvent, 4),
		done:   make(chan struct{}),
	}
}

func (e *loopbackEngine) Load(_ string) error {
	go func() {
		select {
		case <-time.After(e.delay):
		case <-e.done:
			return
		}
		select {
		case e.events <- driven.EngineEvent{Kind: driven.EngineReady}:
		case <-e.done:
		}
	}()
	return nil
}

func (e *loopbackEngine) Attach(_ driven.MediaSink) {}

func (e *loopbackEngine) Events() <-chan driven.EngineEvent { return e.events }

func (e *loopbackEngine) Recover() error { return nil }

func (e *loopbackEngine) Destroy() {
	e.once.Do(func() { close(e.done) })
}

// LoopbackSink is a media sink that reports can-play after a source is set
// and playing after Play.
type LoopbackSink struct {
	Delay time.Duration

	mu     sync.Mutex
	source string
	mode   driven.CrossOriginMode
	events chan driven.SinkEvent
}

// NewLoopbackSink creates a loopback sink.
func NewLoopbackSink(delay time.Duration) *LoopbackSink {
	return &LoopbackSink{
		Delay:  delay,
		events: make(chan driven.SinkEvent, 4),
	}
}

func (s *LoopbackSink) SetSource(url string) {
	s.mu.Lock()
	s.source = url
	s.mu.Unlock()

	go func() {
		time.Sleep(s.Delay)
		s.emit(driven.SinkEvent{Kind: driven.SinkCanPlay})
	}()
}

func (s *LoopbackSink) SetCrossOrigin(mode driven.CrossOriginMode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

func (s *LoopbackSink) Play() error {
	go func() {
		time.Sleep(s.Delay)
		s.emit(driven.SinkEvent{Kind: driven.SinkPlaying})
	}()
	return nil
}

func (s *LoopbackSink) Detach() {
	s.mu.Lock()
	s.source = ""
	s.mu.Unlock()

	// Drain anything buffered so the next session starts clean.
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

func (s *LoopbackSink) Events() <-chan driven.SinkEvent { return s.events }

func (s *LoopbackSink) emit(ev driven.SinkEvent) {
	select {
	case s.events <- ev:
	default:
	}
}
