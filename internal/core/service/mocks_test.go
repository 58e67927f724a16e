package service

import (
	"context"
	"detectbot/internal/core/domain"
	"image"
	"sync"
	"time"
)

type sentReply struct {
	Text      string
	Filename  string
	InReplyTo int64
	File      []byte
	WithMedia bool
}

// MockPlatform records replies in the order they were sent.
type MockPlatform struct {
	posts       []domain.Post
	mentions    []domain.Mention
	homeErr     error
	mentionsErr error
	sendErr     error

	homeCalls int
	sinceIDs  []int64
	Replies   []sentReply
}

func (m *MockPlatform) HomeTimeline(_ context.Context, count int) ([]domain.Post, error) {
	m.homeCalls++
	if m.homeErr != nil {
		return nil, m.homeErr
	}
	if count < len(m.posts) {
		return m.posts[:count], nil
	}
	return m.posts, nil
}

func (m *MockPlatform) MentionsTimeline(_ context.Context, sinceID int64) ([]domain.Mention, error) {
	m.sinceIDs = append(m.sinceIDs, sinceID)
	return m.mentions, m.mentionsErr
}

func (m *MockPlatform) UpdateStatus(_ context.Context, text string, inReplyTo int64) error {
	m.Replies = append(m.Replies, sentReply{Text: text, InReplyTo: inReplyTo})
	return m.sendErr
}

func (m *MockPlatform) UpdateStatusWithMedia(_ context.Context, text, filename string, inReplyTo int64,
	file []byte) error {
	m.Replies = append(m.Replies, sentReply{Text: text, Filename: filename, InReplyTo: inReplyTo, File: file,
		WithMedia: true})
	return m.sendErr
}

type MockDetector struct {
	detections map[string][]domain.Detection
	errs       map[string]error
	delay      time.Duration
	Calls      []string
}

func (m *MockDetector) Detect(ctx context.Context, photoURL string) (image.Image, []domain.Detection, error) {
	m.Calls = append(m.Calls, photoURL)

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	if err := m.errs[photoURL]; err != nil {
		return nil, nil, err
	}

	return image.NewRGBA(image.Rect(0, 0, 2, 2)), m.detections[photoURL], nil
}

type MockEncoder struct {
	err error
}

func (m *MockEncoder) Encode(_ image.Image) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("jpeg"), nil
}

type MockCursor struct {
	id      int64
	ok      bool
	loadErr error
	saveErr error
	Saved   []int64
}

func (m *MockCursor) Load(_ context.Context) (int64, bool, error) {
	return m.id, m.ok, m.loadErr
}

func (m *MockCursor) Save(_ context.Context, id int64) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.Saved = append(m.Saved, id)
	if id > m.id {
		m.id = id
	}
	m.ok = true
	return nil
}

type MockRecorder struct {
	mu         sync.Mutex
	Outcomes   []string
	Failures   []string
	Detections int
	Cycles     int
}

func (m *MockRecorder) MentionHandled(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, outcome)
}

func (m *MockRecorder) MentionFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, kind)
}

func (m *MockRecorder) DetectionObserved(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Detections++
}

func (m *MockRecorder) CycleCompleted(_ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles++
}

func photoMention(id int64, user, url string) domain.Mention {
	return domain.Mention{ID: id, ScreenName: user, Media: []domain.Media{{Type: "photo", URL: url}}}
}
