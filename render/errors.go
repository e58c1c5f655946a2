package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/admrender/adm"
)

var (
	// ErrUnsupported is the parent of every unsupported-configuration error.
	ErrUnsupported = errors.New("unsupported configuration")

	ErrUnsupportedType     = fmt.Errorf("%w: pack type is not DirectSpeakers", ErrUnsupported)
	ErrUnsupportedPack     = fmt.Errorf("%w: pack format", ErrUnsupported)
	ErrTrackCountMismatch  = fmt.Errorf("%w: track count does not match pack format", ErrUnsupported)
	ErrMultiplePackFormats = fmt.Errorf("%w: more than one pack format per object", ErrUnsupported)

	// ErrTrackOutOfRange is returned when a track UID addresses a channel the
	// input file doesn't have.
	ErrTrackOutOfRange = errors.New("track index out of range")

	// ErrElementNotFound is returned for a selector matching no programme or
	// object when strict selection is enabled.
	ErrElementNotFound = adm.ErrElementNotFound

	// ErrInvalidGain is returned for malformed gain mappings.
	ErrInvalidGain = errors.New("invalid gain mapping")

	errBadState = errors.New("renderer is streaming")
)

// ResolutionError reports a track whose speaker label could not be derived.
type ResolutionError struct {
	TrackUID string
	// Objects lists the objects referencing the track, for diagnostics.
	Objects []string
	Msg     string
}

func (e *ResolutionError) Error() string {
	if len(e.Objects) == 0 {
		return fmt.Sprintf("%s: %s", e.TrackUID, e.Msg)
	}

	return fmt.Sprintf("%s (%s): %s", e.TrackUID, strings.Join(e.Objects, ", "), e.Msg)
}
