package parser

// frame is an in-flight rule invocation.
type frame struct {
	rule   rule
	start  int // memo position
	pos    int // current position
	state  int // 0 on first entry
	values []any
	value  any
}

type frameStack struct {
	frames []frame
}

func newFrameStack() *frameStack {
	return &frameStack{frames: make([]frame, 0, 64)}
}

func (s *frameStack) IsEmpty() bool {
	return len(s.frames) == 0
}

func (s *frameStack) Len() int {
	return len(s.frames)
}

func (s *frameStack) Push(r rule, pos int) {
	s.frames = append(s.frames, frame{rule: r, start: pos, pos: pos})
}

func (s *frameStack) Drop() {
	if len(s.frames) != 0 {
		s.frames[len(s.frames)-1] = frame{}
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Top returns the topmost frame. The pointer is valid until the next Push.
func (s *frameStack) Top() *frame {
	if len(s.frames) == 0 {
		return nil
	}

	return &s.frames[len(s.frames)-1]
}
