package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"voicebridge/internal/mediastore"
	"voicebridge/internal/speech"
)

type stubTranslator struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string
}

func (s *stubTranslator) Translate(ctx context.Context, text, source, target, tone string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, target)
	s.mu.Unlock()
	if err := s.fail[target]; err != nil {
		return "", err
	}
	return "[" + target + "] " + text, nil
}

func (s *stubTranslator) called() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type stubSynthesizer struct {
	mu       sync.Mutex
	fail     map[string]error
	requests []speech.SynthesisRequest
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, req speech.SynthesisRequest) ([]byte, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if err := s.fail[req.Language]; err != nil {
		return nil, err
	}
	return []byte("RIFF:" + req.Language), nil
}

type stubTranscriber struct {
	text     string
	err      error
	audio    []byte
	filename string
	language string
	calls    int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	s.calls++
	s.audio = audio
	s.filename = filename
	s.language = language
	return s.text, s.err
}

type stubTranscoder struct {
	out   []byte
	err   error
	calls int
}

func (s *stubTranscoder) Transcode(ctx context.Context, data []byte, contentType string) ([]byte, error) {
	s.calls++
	return s.out, s.err
}

// memStore is an in-memory AudioStore. Names containing a key of fail are
// rejected with its error.
type memStore struct {
	mu      sync.Mutex
	fail    map[string]error
	objects map[string][]byte
	removed []string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Store(ctx context.Context, name string, data []byte, baseURL string) (mediastore.Object, error) {
	for lang, err := range m.fail {
		if strings.Contains(name, "_"+lang+"_") {
			return mediastore.Object{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return mediastore.Object{Name: name, URL: baseURL + "/media/" + name, Tier: mediastore.TierLocal}, nil
}

func (m *memStore) Remove(ctx context.Context, obj mediastore.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[obj.Name]; !ok {
		return errors.New("no such object")
	}
	delete(m.objects, obj.Name)
	m.removed = append(m.removed, obj.Name)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
