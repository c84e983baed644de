package release

import (
	"fmt"
	"time"
)

// Release is a normalized catalogue entry. Every field has a total default:
// nullable values are pointers, sequences are never nil.
type Release struct {
	ID          int64
	Code        string
	Year        string
	Type        string
	Names       Names
	Poster      Poster
	Datetime    Datetime
	Episodes    []Episode
	Voices      []string
	Genres      []string
	Description *string
}

type Names struct {
	RU       *string // localized name, raw names[0]
	Original *string // raw names[1]
}

type Poster struct {
	Path  *string
	Image []byte // filled by enrichment; may stay nil
}

type Datetime struct {
	Timestamp *int64
	System    *time.Time
	Human     *string
}

type Episode struct {
	ID      int64
	Title   *string
	Sources []Source
}

type Source struct {
	Quality string
	URL     string
}

// TransformError wraps a failure to build a Release from one raw record.
type TransformError struct {
	ID  int64
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform release %d: %v", e.ID, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
