package transcript

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSegment marks a segment whose timing violates 0 <= start <= end.
	ErrInvalidSegment = errors.New("invalid segment")
	// ErrMalformedResponse marks a transcription payload missing a textual "text" field
	// or carrying segments of the wrong shape.
	ErrMalformedResponse = errors.New("malformed transcription response")
)

// ValidateSegments checks every segment's timing. The formatter does not call
// it; producers that cannot vouch for their input should.
func ValidateSegments(segments []Segment) error {
	for i, seg := range segments {
		switch {
		case math.IsNaN(seg.Start) || math.IsInf(seg.Start, 0):
			return fmt.Errorf("%w: segment %d: start is not finite", ErrInvalidSegment, i)
		case math.IsNaN(seg.End) || math.IsInf(seg.End, 0):
			return fmt.Errorf("%w: segment %d: end is not finite", ErrInvalidSegment, i)
		case seg.Start < 0:
			return fmt.Errorf("%w: segment %d: start %.3f is negative", ErrInvalidSegment, i, seg.Start)
		case seg.End < seg.Start:
			return fmt.Errorf("%w: segment %d: end %.3f precedes start %.3f", ErrInvalidSegment, i, seg.End, seg.Start)
		}
	}
	return nil
}
