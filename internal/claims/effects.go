package claims

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/aidanjnn/lost-found-app/internal/activity"
	"github.com/aidanjnn/lost-found-app/internal/notifications"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

const autoRejectNote = "Automatically rejected because another claimant was verified for this item."

type emailJob struct {
	to   string
	data emailData
}

// effects collects deliveries decided inside a transaction. Nothing in it is
// sent until the transaction has committed.
type effects struct {
	notices  []notifications.Message
	emails   []emailJob
	activity []activity.Entry
}

func (e *effects) notify(msg notifications.Message) {
	e.notices = append(e.notices, msg)
}

func (e *effects) email(to string, data emailData) {
	if strings.TrimSpace(to) == "" {
		return
	}
	e.emails = append(e.emails, emailJob{to: to, data: data})
}

func (e *effects) record(entry activity.Entry) {
	e.activity = append(e.activity, entry)
}

// dispatch delivers queued side effects. Failures are logged and counted but
// never surface to the caller.
func (s *service) dispatch(ctx context.Context, queued *effects) {
	if queued == nil {
		return
	}

	var errs error
	for _, msg := range queued.notices {
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.metrics.IncSideEffectFailure("notification")
			errs = multierr.Append(errs, fmt.Errorf("notify user %s: %w", msg.UserID, err))
		}
	}
	for _, job := range queued.emails {
		msg, err := renderEmail(job.to, job.data)
		if err == nil {
			err = s.mailer.Send(ctx, msg)
		}
		if err != nil {
			s.metrics.IncSideEffectFailure("email")
			errs = multierr.Append(errs, fmt.Errorf("email %s for claim %s: %w", job.data.Kind, job.data.ClaimID, err))
		}
	}
	for _, entry := range queued.activity {
		s.activity.Record(ctx, entry)
	}

	if errs != nil {
		ctx = s.logg.WithField(ctx, "failures", len(multierr.Errors(errs)))
		s.logg.Error(ctx, "claims.side_effects_failed", errs)
	}
}

func submittedNotice(claim models.Claim, item models.Item) notifications.Message {
	return notifications.Message{
		UserID: claim.ClaimantUserID,
		Title:  "Claim Submitted",
		Body:   fmt.Sprintf("Your claim for %s was submitted and is pending review.", item.DisplayName()),
		Kind:   enums.NotificationKindInfo,
		Metadata: map[string]any{
			"claim_id": claim.ID.String(),
			"item_id":  item.ID.String(),
			"status":   string(enums.ClaimStatusPending),
		},
	}
}

// statusNotice builds the primary claimant's notification for a transition.
func statusNotice(claim models.Claim, item models.Item, status enums.ClaimStatus) (notifications.Message, bool) {
	name := item.DisplayName()
	msg := notifications.Message{
		UserID: claim.ClaimantUserID,
		Metadata: map[string]any{
			"claim_id": claim.ID.String(),
			"item_id":  item.ID.String(),
			"status":   string(status),
		},
	}
	switch status {
	case enums.ClaimStatusApproved:
		msg.Title = "Claim Approved"
		msg.Body = fmt.Sprintf("Great news! Your claim for %s was approved.", name)
		msg.Kind = enums.NotificationKindSuccess
	case enums.ClaimStatusRejected:
		msg.Title = "Claim Rejected"
		msg.Body = fmt.Sprintf("Your claim for %s was not approved. Please review staff notes for details.", name)
		msg.Kind = enums.NotificationKindWarning
	case enums.ClaimStatusPickedUp:
		msg.Title = "Claim Completed"
		msg.Body = fmt.Sprintf("%s has been marked as picked up. Thank you!", upperFirst(name))
		msg.Kind = enums.NotificationKindSuccess
	default:
		return notifications.Message{}, false
	}
	return msg, true
}

func autoRejectedNotice(claim models.Claim, item models.Item) notifications.Message {
	return notifications.Message{
		UserID: claim.ClaimantUserID,
		Title:  "Claim Update",
		Body:   fmt.Sprintf("Another claimant was approved for %s, so your claim was automatically rejected.", item.DisplayName()),
		Kind:   enums.NotificationKindWarning,
		Metadata: map[string]any{
			"claim_id": claim.ID.String(),
			"item_id":  item.ID.String(),
			"status":   string(enums.ClaimStatusRejected),
			"auto":     true,
		},
	}
}

func upperFirst(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}
