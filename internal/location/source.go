// File: internal/location/source.go
package location

import (
	"errors"
	"sync"

	"roadassist_backend/internal/domain"
)

// ChannelSource is a Source fed by explicit position reports, typically
// relayed from a device over HTTP. Reports arriving while no watch is
// active are dropped.
type ChannelSource struct {
	mu       sync.Mutex
	onUpdate func(domain.Coordinates)
	onErr    func(error)
}

// NewChannelSource creates an idle source.
func NewChannelSource() *ChannelSource {
	return &ChannelSource{}
}

// Watch attaches callbacks for subsequent reports. Only one watch may be
// active at a time.
func (s *ChannelSource) Watch(onUpdate func(domain.Coordinates), onErr func(error)) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onUpdate != nil {
		return nil, errors.New("source is already being watched")
	}
	s.onUpdate = onUpdate
	s.onErr = onErr
	return &channelHandle{source: s}, nil
}

// Report delivers a position to the active watch, if any. Returns whether
// the report was consumed.
func (s *ChannelSource) Report(coords domain.Coordinates) bool {
	s.mu.Lock()
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate == nil {
		return false
	}
	onUpdate(coords)
	return true
}

// ReportError delivers a source error to the active watch, if any.
func (s *ChannelSource) ReportError(err error) {
	s.mu.Lock()
	onErr := s.onErr
	s.mu.Unlock()

	if onErr != nil {
		onErr(err)
	}
}

type channelHandle struct {
	source *ChannelSource
	once   sync.Once
}

func (h *channelHandle) Stop() {
	h.once.Do(func() {
		h.source.mu.Lock()
		h.source.onUpdate = nil
		h.source.onErr = nil
		h.source.mu.Unlock()
	})
}
