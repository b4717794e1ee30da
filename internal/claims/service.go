package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/internal/activity"
	"github.com/aidanjnn/lost-found-app/internal/items"
	"github.com/aidanjnn/lost-found-app/internal/notifications"
	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/db"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/mailer"
	"github.com/aidanjnn/lost-found-app/pkg/metrics"
	"github.com/aidanjnn/lost-found-app/pkg/pagination"
)

// Service is the claim resolution engine.
type Service interface {
	Submit(ctx context.Context, actor auth.Actor, input SubmitInput) (*models.Claim, error)
	Transition(ctx context.Context, actor auth.Actor, input TransitionInput) (*TransitionResult, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ClaimDTO, error)
	List(ctx context.Context, actor auth.Actor, params ListParams) (*ClaimPage, error)
	ListArchived(ctx context.Context, actor auth.Actor, limit int) (*ArchivedList, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Deps wires the collaborators of the claims service.
type Deps struct {
	Tx       txRunner
	Repo     Repository
	Items    items.Repository
	Users    userLookup
	Notifier notifications.Notifier
	Mailer   mailer.Mailer
	Activity activity.Recorder
	Metrics  *metrics.ClaimMetrics
	Logger   *logger.Logger
}

type service struct {
	tx       txRunner
	repo     Repository
	items    items.Repository
	users    userLookup
	notifier notifications.Notifier
	mailer   mailer.Mailer
	activity activity.Recorder
	metrics  *metrics.ClaimMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case deps.Repo == nil:
		return nil, fmt.Errorf("claims repository required")
	case deps.Items == nil:
		return nil, fmt.Errorf("items repository required")
	case deps.Users == nil:
		return nil, fmt.Errorf("user lookup required")
	case deps.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case deps.Mailer == nil:
		return nil, fmt.Errorf("mailer required")
	case deps.Activity == nil:
		return nil, fmt.Errorf("activity recorder required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       deps.Tx,
		repo:     deps.Repo,
		items:    deps.Items,
		users:    deps.Users,
		notifier: deps.Notifier,
		mailer:   deps.Mailer,
		activity: deps.Activity,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Submit(ctx context.Context, actor auth.Actor, input SubmitInput) (claim *models.Claim, err error) {
	defer func() { s.metrics.IncSubmission(resultLabel(err)) }()

	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required").
			WithDetails(map[string]any{"fields": []string{"item_id"}})
	}
	verification := strings.TrimSpace(input.VerificationText)
	if verification == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification text required").
			WithDetails(map[string]any{"fields": []string{"verification_text"}})
	}

	claimant, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "claimant account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load claimant")
	}

	phone := trimmedOrNil(input.Phone)
	if phone == nil {
		phone = claimant.Phone
	}

	queued := &effects{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.lockItem(ctx, s.items.WithTx(tx), input.ItemID)
		if err != nil {
			return err
		}

		resolved, err := repo.FindResolvedForItem(ctx, item.ID, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check item resolution")
		}
		if resolved != nil || item.Status == enums.ItemStatusClaimed {
			details := map[string]any{"item_id": item.ID}
			if resolved != nil {
				details["claim_status"] = resolved.Status
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "item already resolved").WithDetails(details)
		}

		existing, err := repo.FindOpenForClaimant(ctx, item.ID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check existing claim")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "you already have an open claim for this item").
				WithDetails(map[string]any{"claim_id": existing.ID, "claim_status": existing.Status})
		}

		row := &models.Claim{
			ID:               uuid.New(),
			ItemID:           item.ID,
			ClaimantUserID:   claimant.ID,
			ClaimantName:     claimant.Name,
			ClaimantEmail:    claimant.Email,
			ClaimantPhone:    phone,
			VerificationText: verification,
			Status:           enums.ClaimStatusPending,
		}
		if err := repo.Create(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "you already have an open claim for this item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create claim")
		}
		claim = row

		queued.notify(submittedNotice(*row, *item))
		queued.email(row.ClaimantEmail, emailData{
			Kind:         emailSubmitted,
			ClaimantName: row.ClaimantName,
			ClaimID:      row.ID,
			Item:         item.DisplayName(),
		})
		queued.record(activity.Entry{
			Actor:      actor,
			Action:     enums.ActivityClaimCreated,
			EntityType: activity.EntityClaim,
			EntityID:   row.ID,
			Details:    fmt.Sprintf("Claim submitted for item: %s", item.Name),
		})
		return nil
	})
	if err != nil {
		return nil, storageOr(err, "submit claim")
	}

	ctx = s.logg.WithClaimID(ctx, claim.ID.String())
	ctx = s.logg.WithItemID(ctx, claim.ItemID.String())
	s.logg.Info(ctx, "claims.submitted")

	s.dispatch(ctx, queued)
	return claim, nil
}

func (s *service) Transition(ctx context.Context, actor auth.Actor, input TransitionInput) (result *TransitionResult, err error) {
	label := "invalid"
	if parsed, perr := enums.ParseClaimStatus(input.Status); perr == nil {
		label = parsed.String()
	}
	defer func() { s.metrics.IncTransition(label, resultLabel(err)) }()

	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}
	if input.ClaimID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim id required")
	}
	target, err := enums.ParseClaimStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"allowed": enums.ClaimStatuses()})
	}
	notes := trimmedOrNil(input.StaffNotes)

	// The item id is needed to take the item lock before the claim set is read.
	current, err := s.repo.FindByID(ctx, input.ClaimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load claim")
	}

	started := time.Now()
	queued := &effects{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemsRepo := s.items.WithTx(tx)

		item, err := itemsRepo.LockByID(ctx, current.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "lock item")
		}

		claim, err := repo.FindByID(ctx, input.ClaimID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reload claim")
		}

		if claim.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "claim is final").
				WithDetails(map[string]any{"from": claim.Status, "to": target})
		}
		if claim.Status == target {
			result = &TransitionResult{ClaimID: claim.ID, NewStatus: target, AutoRejected: []uuid.UUID{}}
			return nil
		}
		if !CanTransition(claim.Status, target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move claim from %s to %s", claim.Status, target)).
				WithDetails(map[string]any{"from": claim.Status, "to": target})
		}

		if target == enums.ClaimStatusApproved {
			existing, err := repo.FindResolvedForItem(ctx, item.ID, claim.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check item resolution")
			}
			if existing != nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "another claim already holds this item").
					WithDetails(map[string]any{"existing_claim_id": existing.ID, "existing_status": existing.Status})
			}
		}

		now := s.now()
		result = &TransitionResult{ClaimID: claim.ID, NewStatus: target, AutoRejected: []uuid.UUID{}}

		// Competitors are closed before the winner is written: the claimant's
		// own refiled claim would otherwise collide with the winner on the
		// one-open-claim-per-claimant index.
		if target == enums.ClaimStatusApproved {
			rejected, err := s.rejectCompetitors(ctx, repo, actor, *claim, *item, now, queued)
			if err != nil {
				return err
			}
			result.AutoRejected = rejected
		}

		err = repo.UpdateStatus(ctx, claim.ID, statusUpdate{
			Status:      target,
			StaffNotes:  notes,
			ProcessedBy: actor.UserID,
			At:          now,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "another claim already holds this item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update claim status")
		}
		claim.Status = target
		if notes != nil {
			claim.StaffNotes = notes
		}

		if target == enums.ClaimStatusPickedUp {
			if err := itemsRepo.MarkClaimed(ctx, item.ID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "mark item claimed")
			}
			result.ItemUpdated = true
		}

		s.queueStatusChange(queued, actor, *claim, *item)
		return nil
	})
	s.metrics.ObserveTransition(label, time.Since(started))
	if err != nil {
		return nil, storageOr(err, "transition claim")
	}

	ctx = s.logg.WithClaimID(ctx, result.ClaimID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"status":        result.NewStatus,
		"auto_rejected": len(result.AutoRejected),
		"item_updated":  result.ItemUpdated,
	})
	s.logg.Info(ctx, "claims.transitioned")

	s.metrics.AddAutoRejected(len(result.AutoRejected))
	s.dispatch(ctx, queued)
	return result, nil
}

// rejectCompetitors closes every other open claim on the item once one is
// approved and queues the losing claimants' notices.
func (s *service) rejectCompetitors(ctx context.Context, repo Repository, actor auth.Actor, winner models.Claim, item models.Item, now time.Time, queued *effects) ([]uuid.UUID, error) {
	competitors, err := repo.ListOpenCompetitors(ctx, item.ID, winner.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list competing claims")
	}
	ids := make([]uuid.UUID, 0, len(competitors))
	for _, c := range competitors {
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := repo.RejectCompetitors(ctx, ids, actor.UserID, autoRejectNote, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reject competing claims")
	}

	for _, c := range competitors {
		queued.notify(autoRejectedNotice(c, item))
		queued.email(c.ClaimantEmail, emailData{
			Kind:         emailRejected,
			ClaimantName: c.ClaimantName,
			ClaimID:      c.ID,
			Item:         item.DisplayName(),
			StaffNotes:   autoRejectNote,
		})
		queued.record(activity.Entry{
			Actor:      actor,
			Action:     enums.ActivityClaimRejected,
			EntityType: activity.EntityClaim,
			EntityID:   c.ID,
			Details:    fmt.Sprintf("Claim automatically rejected after claim %s was approved", winner.ID),
		})
	}
	return ids, nil
}

func (s *service) queueStatusChange(queued *effects, actor auth.Actor, claim models.Claim, item models.Item) {
	if msg, ok := statusNotice(claim, item, claim.Status); ok {
		queued.notify(msg)
	}
	if kind, ok := emailKindFor(claim.Status); ok {
		data := emailData{
			Kind:         kind,
			ClaimantName: claim.ClaimantName,
			ClaimID:      claim.ID,
			Item:         item.DisplayName(),
		}
		if kind == emailApproved {
			data.PickupLocation = item.PickupAt.DisplayName()
		}
		if claim.StaffNotes != nil {
			data.StaffNotes = *claim.StaffNotes
		}
		queued.email(claim.ClaimantEmail, data)
	}
	if action := enums.ActivityActionForClaimStatus(claim.Status); action != "" {
		queued.record(activity.Entry{
			Actor:      actor,
			Action:     action,
			EntityType: activity.EntityClaim,
			EntityID:   claim.ID,
			Details:    fmt.Sprintf("Claim for %s marked %s", item.Name, claim.Status),
		})
	}
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ClaimDTO, error) {
	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim id required")
	}

	row, err := s.repo.FindByIDWithItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load claim")
	}
	if !actor.IsStaff() && row.Claim.ClaimantUserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "claim belongs to another user")
	}
	dto := FromJoined(*row)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, params ListParams) (*ClaimPage, error) {
	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	query := listQuery{ItemID: params.ItemID, Limit: params.Limit}
	if actor.IsStaff() {
		query.ClaimantUserID = params.ClaimantUserID
	} else {
		own := actor.UserID
		query.ClaimantUserID = &own
	}
	if params.Status != "" {
		status, err := enums.ParseClaimStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = status
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list claims")
	}
	page := pagination.Trim(rows, params.Limit, func(row ClaimWithItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.Claim.CreatedAt, ID: row.Claim.ID}
	})

	out := &ClaimPage{Items: make([]ClaimDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, row := range page.Items {
		out.Items = append(out.Items, FromJoined(row))
	}
	return out, nil
}

// ListArchived is the staff view of items already picked up.
func (s *service) ListArchived(ctx context.Context, actor auth.Actor, limit int) (*ArchivedList, error) {
	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}
	rows, err := s.repo.ListArchived(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list archived items")
	}
	return &ArchivedList{Items: rows, TotalCount: len(rows)}, nil
}

func (s *service) lockItem(ctx context.Context, repo items.Repository, id uuid.UUID) (*models.Item, error) {
	item, err := repo.LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "lock item")
	}
	if item.Status == enums.ItemStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return item, nil
}

// storageOr keeps typed errors and treats anything else (commit failures,
// driver errors) as a storage fault.
func storageOr(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, msg)
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(pkgerrors.CodeOf(err))
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
