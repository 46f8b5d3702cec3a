// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package mediatest provides in-memory media surfaces and streamers for tests.
package mediatest

import (
	"sync"

	"github.com/ManuGH/branchplay/internal/media"
)

var (
	_ media.Surface  = (*FakeSurface)(nil)
	_ media.Streamer = (*FakeStreamer)(nil)
	_ media.Stream   = (*FakeStream)(nil)
)

// FakeSurface is an in-memory media.Surface for tests. It records every call and
// lets the test raise media events.
type FakeSurface struct {
	mu        sync.Mutex
	Calls     []string
	Src       string
	Poster    string
	paused    bool
	time      float64
	duration  float64
	rejectErr error
	nextID    int
	listeners map[media.EventKind]map[int]func()
}

// NewFakeSurface returns a paused surface with no source.
func NewFakeSurface() *FakeSurface {
	return &FakeSurface{paused: true, listeners: make(map[media.EventKind]map[int]func())}
}

func (f *FakeSurface) record(call string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	f.mu.Unlock()
}

func (f *FakeSurface) SetSource(locator string) {
	f.mu.Lock()
	f.Src = locator
	f.mu.Unlock()
	f.record("source:" + locator)
}

func (f *FakeSurface) SetPoster(locator string) {
	f.mu.Lock()
	f.Poster = locator
	f.mu.Unlock()
	f.record("poster:" + locator)
}

func (f *FakeSurface) Load() {
	f.mu.Lock()
	f.time, f.duration, f.paused = 0, 0, true
	f.mu.Unlock()
	f.record("load")
}

func (f *FakeSurface) Play() error {
	f.record("play")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectErr != nil {
		return f.rejectErr
	}
	f.paused = false
	return nil
}

func (f *FakeSurface) Pause() {
	f.mu.Lock()
	f.paused = true
	f.mu.Unlock()
	f.record("pause")
}

func (f *FakeSurface) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *FakeSurface) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.time
}

func (f *FakeSurface) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *FakeSurface) Listen(kind media.EventKind, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners[kind] == nil {
		f.listeners[kind] = make(map[int]func())
	}
	id := f.nextID
	f.nextID++
	f.listeners[kind][id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners[kind], id)
			f.mu.Unlock()
		})
	}
}

// RejectPlay makes subsequent Play calls fail with err; nil accepts again.
func (f *FakeSurface) RejectPlay(err error) {
	f.mu.Lock()
	f.rejectErr = err
	f.mu.Unlock()
}

// Listeners returns the number of registered listeners for kind.
func (f *FakeSurface) Listeners(kind media.EventKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[kind])
}

// Emit invokes every listener registered for kind.
func (f *FakeSurface) Emit(kind media.EventKind) {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.listeners[kind]))
	for _, fn := range f.listeners[kind] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// LoadMetadata sets the duration and raises loadedmetadata.
func (f *FakeSurface) LoadMetadata(duration float64) {
	f.mu.Lock()
	f.duration = duration
	f.mu.Unlock()
	f.Emit(media.EventLoadedMetadata)
}

// Tick moves the playhead to t and raises timeupdate.
func (f *FakeSurface) Tick(t float64) {
	f.mu.Lock()
	f.time = t
	f.mu.Unlock()
	f.Emit(media.EventTimeUpdate)
}

// End moves the playhead to the duration and raises ended.
func (f *FakeSurface) End() {
	f.mu.Lock()
	f.time = f.duration
	f.paused = true
	f.mu.Unlock()
	f.Emit(media.EventEnded)
}

// CallLog returns a copy of the recorded calls.
func (f *FakeSurface) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// ResetCalls clears the call log.
func (f *FakeSurface) ResetCalls() {
	f.mu.Lock()
	f.Calls = nil
	f.mu.Unlock()
}

// FakeStreamer hands out FakeStreams and records them.
type FakeStreamer struct {
	Unsupported bool
	NewErr      error
	DestroyErr  error
	Streams     []*FakeStream
}

func (s *FakeStreamer) Supported() bool { return !s.Unsupported }

func (s *FakeStreamer) New() (media.Stream, error) {
	if s.NewErr != nil {
		return nil, s.NewErr
	}
	st := &FakeStream{destroyErr: s.DestroyErr}
	s.Streams = append(s.Streams, st)
	return st, nil
}

// Live returns how many handed-out streams have not been destroyed.
func (s *FakeStreamer) Live() int {
	n := 0
	for _, st := range s.Streams {
		if !st.Destroyed {
			n++
		}
	}
	return n
}

// FakeStream is a media.Stream that records its lifecycle.
type FakeStream struct {
	Manifest   string
	Surface    media.Surface
	Destroyed  bool
	destroyErr error
}

func (s *FakeStream) LoadSource(manifest string) error {
	s.Manifest = manifest
	return nil
}

func (s *FakeStream) Attach(surface media.Surface) error {
	s.Surface = surface
	return nil
}

func (s *FakeStream) Destroy() error {
	s.Destroyed = true
	return s.destroyErr
}
