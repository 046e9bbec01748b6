package vault

// Sinks lets a caller observe engine activity without the engine importing
// any particular logging library (spec.md §9 "observability is a host
// concern"). Each field is optional; nil fields are simply not called. A
// panic inside a hook is recovered and swallowed so a misbehaving sink
// can never break a persistence operation.
type Sinks struct {
	OnStatus func(msg string)
	OnSync   func()
	OnFault  func(chunk string, err error)
}

// NoopSinks returns a Sinks with every hook absent.
func NoopSinks() *Sinks { return &Sinks{} }

func (s *Sinks) onStatus(msg string) {
	if s == nil || s.OnStatus == nil {
		return
	}
	defer func() { recover() }()
	s.OnStatus(msg)
}

func (s *Sinks) onSync() {
	if s == nil || s.OnSync == nil {
		return
	}
	defer func() { recover() }()
	s.OnSync()
}

func (s *Sinks) onFault(chunk string, err error) {
	if s == nil || s.OnFault == nil {
		return
	}
	defer func() { recover() }()
	s.OnFault(chunk, err)
}
