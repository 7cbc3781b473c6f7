package reactor

import "errors"

// ErrSubjectTerminated is returned by PassthroughSubject.TrySend once a subject has
// already delivered a terminal event.
var ErrSubjectTerminated = errors.New("reactor: subject already terminated")
