// Package fetch runs the feature operations: it issues remote calls through
// request slots, transforms and enriches the results, commits them to shared
// state and decides which failures reach the user.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/libria-client/app/notify"
	"github.com/lysyi3m/libria-client/app/slots"
)

const (
	SlotReleases  = "releases"
	SlotRelease   = "release"
	SlotFavorites = "favorites"
)

type OutcomeKind int

const (
	Committed OutcomeKind = iota
	Cancelled
	Reported
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	case Reported:
		return "reported"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of one operation run. Err is set only for Reported.
type Outcome struct {
	Kind OutcomeKind
	Err  *ReportedError
}

// ReportedError is a failure that was forwarded to the notification sink.
type ReportedError struct {
	Message string
	Err     error
}

func (e *ReportedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

func (o Outcome) log(operation string) {
	if o.Kind == Reported {
		slog.Debug("Operation finished", "operation", operation, "outcome", o.Kind, "error", o.Err)
		return
	}
	slog.Debug("Operation finished", "operation", operation, "outcome", o.Kind)
}

// readResult maps an outcome to the error a read operation returns.
func readResult(outcome Outcome) error {
	switch outcome.Kind {
	case Reported:
		return outcome.Err
	default:
		return nil
	}
}

// settle classifies a failed slot run: cancellations are swallowed, anything
// else is reported once.
func settle(sink notify.Sink, token *slots.Token, message string, err error) Outcome {
	if slots.IsCancellation(token, err) {
		return Outcome{Kind: Cancelled}
	}
	return report(sink, message, err)
}

// settleWrite classifies a failed write, which runs outside any slot.
func settleWrite(ctx context.Context, sink notify.Sink, message string, err error) Outcome {
	if errors.Is(ctx.Err(), context.Canceled) && errors.Is(err, context.Canceled) {
		return Outcome{Kind: Cancelled}
	}
	return report(sink, message, err)
}

func report(sink notify.Sink, message string, err error) Outcome {
	sink.Notify(message, err)
	return Outcome{Kind: Reported, Err: &ReportedError{Message: message, Err: err}}
}
