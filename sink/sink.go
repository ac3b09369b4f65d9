// Package sink abstracts where generated artifacts are written. Generation
// fully succeeds before a sink is invoked, so no partial artifact is ever
// persisted.
package sink

import "context"

// Kind classifies an artifact so sinks can route it to the right location.
type Kind int

const (
	KindSpec Kind = iota
	KindBody
	KindTrigger
	KindView
)

func (k Kind) String() string {
	switch k {
	case KindSpec:
		return "spec"
	case KindBody:
		return "body"
	case KindTrigger:
		return "trigger"
	case KindView:
		return "view"
	}
	return "unknown"
}

// Sink receives finished artifacts. Implementations must be safe for
// concurrent use; the generation workers share one sink.
type Sink interface {
	WriteArtifact(ctx context.Context, kind Kind, name string, content []byte) error
}
