package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aidanjnn/lost-found-app/internal/activity"
	"github.com/aidanjnn/lost-found-app/internal/claims"
	"github.com/aidanjnn/lost-found-app/internal/items"
	"github.com/aidanjnn/lost-found-app/internal/notifications"
	"github.com/aidanjnn/lost-found-app/internal/users"
	"github.com/aidanjnn/lost-found-app/pkg/config"
	"github.com/aidanjnn/lost-found-app/pkg/db"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/mailer"
	"github.com/aidanjnn/lost-found-app/pkg/metrics"
)

// Services holds every domain service built over one database client.
type Services struct {
	Users         users.Service
	Items         items.Service
	Claims        claims.Service
	Notifications notifications.Service
	Activity      activity.Service
}

// NewServices wires repositories, the mailer and claim metrics into the
// domain services. A nil registerer leaves claim metrics unregistered.
func NewServices(cfg *config.Config, logg *logger.Logger, client *db.Client, registerer prometheus.Registerer) (*Services, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	conn := client.DB()

	usersRepo := users.NewRepository(conn)
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		return nil, fmt.Errorf("users service: %w", err)
	}

	activityService, err := activity.NewService(activity.NewRepository(conn), logg)
	if err != nil {
		return nil, fmt.Errorf("activity service: %w", err)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("notifications service: %w", err)
	}

	itemsRepo := items.NewRepository(conn)
	itemsService, err := items.NewService(itemsRepo, activityService)
	if err != nil {
		return nil, fmt.Errorf("items service: %w", err)
	}

	claimsService, err := claims.NewService(claims.Deps{
		Tx:       client,
		Repo:     claims.NewRepository(conn),
		Items:    itemsRepo,
		Users:    usersRepo,
		Notifier: notificationsService,
		Mailer:   mailer.New(cfg.SMTP, logg),
		Activity: activityService,
		Metrics:  metrics.NewClaimMetrics(registerer),
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("claims service: %w", err)
	}

	return &Services{
		Users:         usersService,
		Items:         itemsService,
		Claims:        claimsService,
		Notifications: notificationsService,
		Activity:      activityService,
	}, nil
}
