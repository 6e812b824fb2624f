package browse

import "github.com/skyjuke/skyjuke/internal/api"

// Token identifies one issued request. Only the latest token of each
// operation is accepted back.
type Token struct {
	Op  api.Op
	Seq uint64
}

// Sequencer issues request tokens per operation kind.
type Sequencer struct {
	next   uint64
	latest map[api.Op]uint64
}

// Issue returns a new token for op, making every earlier one stale.
func (s *Sequencer) Issue(op api.Op) Token {
	if s.latest == nil {
		s.latest = make(map[api.Op]uint64)
	}

	s.next++
	s.latest[op] = s.next

	return Token{Op: op, Seq: s.next}
}

// Invalidate makes every issued token of op stale.
func (s *Sequencer) Invalidate(op api.Op) {
	s.Issue(op)
}

// Latest returns true if tok is the last one issued for its operation.
func (s *Sequencer) Latest(tok Token) bool {
	return tok.Seq != 0 && s.latest[tok.Op] == tok.Seq
}
