package ordering

import "sync"

// DragSession tracks one drag gesture. Over is advisory and never changes
// the order; only Drop and DropOnTimeline produce a plan.
type DragSession struct {
	mu      sync.Mutex
	subject string
	over    int
	hasOver bool
}

func NewDragSession() *DragSession { return &DragSession{} }

// Start records id as the active drag subject.
func (s *DragSession) Start(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = id
	s.hasOver = false
}

// Over records the index currently under the pointer.
func (s *DragSession) Over(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject == "" {
		return
	}
	s.over = index
	s.hasOver = true
}

// Hover returns the last index recorded by Over.
func (s *DragSession) Hover() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.over, s.hasOver
}

func (s *DragSession) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subject, s.subject != ""
}

func (s *DragSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = ""
	s.hasOver = false
}

func (s *DragSession) take() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.subject
	s.subject = ""
	s.hasOver = false
	return id
}

// Drop ends the gesture over a list slot.
func Drop[T Item](s *DragSession, items []T, targetIndex int) Plan {
	id := s.take()
	if id == "" {
		return Plan{Order: keys(Sort(items)), Ignored: true}
	}
	return PlanReorder(items, id, targetIndex)
}

// DropOnTimeline ends the gesture over a continuous timeline surface.
func DropOnTimeline[T Item](s *DragSession, items []T, dropPercentage float64) Plan {
	id := s.take()
	if id == "" {
		return Plan{Order: keys(Sort(items)), Ignored: true}
	}
	return PlanTimelineDrop(items, id, dropPercentage)
}
