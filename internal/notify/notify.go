// Package notify renders and delivers approval notifications. Delivery happens
// after the approval change is committed; a failed delivery is reported to the
// caller but never undoes the change.
package notify

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// Kind identifies the event a notification reports.
type Kind string

const (
	KindSubmit   Kind = "submit"
	KindUnsubmit Kind = "unsubmit"
	KindApprove  Kind = "approve"
	KindReject   Kind = "reject"
	KindWithdraw Kind = "withdraw"
	KindRemind   Kind = "remind"
)

// Kinds lists every notification kind.
var Kinds = []Kind{KindSubmit, KindUnsubmit, KindApprove, KindReject, KindWithdraw, KindRemind}

// Request describes one notification fan-out.
type Request struct {
	Recipients   []string
	Kind         Kind
	PeriodLabel  string
	ActorName    string
	SubjectNames []string
	EntryCount   int
	Link         string
}

// Dispatcher delivers notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) error
}

// Recipients returns the deduplicated, sorted email addresses of profiles.
func Recipients(profiles []domain.Profile) []string {
	var emails []string
	for _, p := range profiles {
		email := strings.TrimSpace(p.Email)
		if email == "" {
			continue
		}
		emails = append(emails, strings.ToLower(email))
	}
	slices.Sort(emails)
	return slices.Compact(emails)
}

// Names returns the sorted display names of profiles.
func Names(profiles []domain.Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func validate(req Request) error {
	if len(req.Recipients) == 0 {
		return errors.NewNotFoundError("notification recipients", string(req.Kind))
	}
	if !slices.Contains(Kinds, req.Kind) {
		return errors.NewInvalidInputError("kind", string(req.Kind), "unknown notification kind")
	}
	return nil
}

// Multi fans a request out to several dispatchers, attempting every one.
type Multi []Dispatcher

// Dispatch implements Dispatcher.
func (m Multi) Dispatch(ctx context.Context, req Request) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Discard drops every notification.
type Discard struct{}

// Dispatch implements Dispatcher.
func (Discard) Dispatch(context.Context, Request) error { return nil }
