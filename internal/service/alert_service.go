package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/observability"
	"github.com/resqnet/resq-go-api/internal/repository"
)

const alertBufferSize = 16

var (
	// ErrAlertNotFound indicates no alert matches the public id within the
	// actor's region.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrNotResponder rejects feed access for principals that are neither
	// admins nor approved supervisors.
	ErrNotResponder = errors.New("principal may not access the alert feed")
	// ErrEmptyMessage is returned when an SOS message is empty after
	// sanitization.
	ErrEmptyMessage = errors.New("alert message empty after sanitization")
)

// AlertService ingests public SOS alerts and streams them to the responders
// of the affected region.
type AlertService interface {
	Raise(ctx context.Context, payload dto.AlertCreateRequest) (dto.AlertResponse, error)
	ListByRegion(ctx context.Context, actor models.Principal, status string) ([]dto.AlertResponse, error)
	UpdateStatus(ctx context.Context, actor models.Principal, publicID string, payload dto.AlertStatusUpdateRequest) (dto.AlertResponse, error)
	Subscribe(region string) (<-chan dto.AlertResponse, func())
	Start(ctx context.Context)
}

type alertService struct {
	repo         repository.AlertRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	broker       *alertBroker
	nodeID       string
}

type alertEvent struct {
	Source string            `json:"source"`
	Alert  dto.AlertResponse `json:"alert"`
	SentAt time.Time         `json:"sent_at"`
}

type alertBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.AlertResponse]struct{}
}

// NewAlertService constructs the alert service. Redis and NATS are optional;
// when configured they fan alerts out across nodes.
func NewAlertService(repo repository.AlertRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) AlertService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":alerts"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".alerts"
	}

	return &alertService{
		repo:         repo,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "alert_service").Logger(),
		tracer:       otel.Tracer("github.com/resqnet/resq-go-api/internal/service/alert"),
		sanitizer:    bluemonday.StrictPolicy(),
		broker: &alertBroker{
			subscribers: make(map[string]map[chan dto.AlertResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *alertService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *alertService) Raise(ctx context.Context, payload dto.AlertCreateRequest) (dto.AlertResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlertResponse{}, err
	}

	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if cleanMessage == "" {
		return dto.AlertResponse{}, ErrEmptyMessage
	}

	region := strings.TrimSpace(payload.Region)

	attrs := []attribute.KeyValue{
		attribute.String("alert.region", region),
	}
	spanCtx, span := s.tracer.Start(ctx, "alerts.raise", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.Alert{
		PublicID:        uuid.NewString(),
		Region:          region,
		Message:         cleanMessage,
		Location:        payload.Location,
		Status:          models.AlertStatusOpen,
		ReporterContact: strings.TrimSpace(payload.ReporterContact),
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.AlertResponse{}, err
	}

	response := dto.NewAlertResponse(model)
	s.broker.broadcast(region, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish alert to broker")
	}

	observability.AlertsPublishedTotal().WithLabelValues(region).Inc()

	return response, nil
}

func (s *alertService) ListByRegion(ctx context.Context, actor models.Principal, status string) ([]dto.AlertResponse, error) {
	if err := requireResponder(actor); err != nil {
		return nil, err
	}

	alerts, err := s.repo.ListByRegion(ctx, actor.Region, strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}

	return dto.NewAlertResponseSlice(alerts), nil
}

func (s *alertService) UpdateStatus(ctx context.Context, actor models.Principal, publicID string, payload dto.AlertStatusUpdateRequest) (dto.AlertResponse, error) {
	if err := requireResponder(actor); err != nil {
		return dto.AlertResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AlertResponse{}, err
	}

	// The region guard lives in the UPDATE itself: an alert outside the
	// actor's region is indistinguishable from a missing one.
	alert, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(publicID), actor.Region, payload.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlertResponse{}, ErrAlertNotFound
		}
		return dto.AlertResponse{}, err
	}

	response := dto.NewAlertResponse(alert)
	s.broker.broadcast(alert.Region, response)
	if err := s.publish(ctx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish alert update to broker")
	}

	return response, nil
}

// Subscribe registers a live-feed subscriber for a region. The returned
// cancel func must be called when the consumer disconnects.
func (s *alertService) Subscribe(region string) (<-chan dto.AlertResponse, func()) {
	channel := make(chan dto.AlertResponse, alertBufferSize)

	s.broker.subscribe(region, channel)
	observability.AlertSubscribersActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(region, channel)
		observability.AlertSubscribersActive().Dec()
	}

	return channel, cleanup
}

func requireResponder(actor models.Principal) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == models.RoleSupervisor && actor.IsApproved && actor.Region != "" {
		return nil
	}
	return ErrNotResponder
}

func (s *alertService) publish(ctx context.Context, alert dto.AlertResponse) error {
	event := alertEvent{
		Source: s.nodeID,
		Alert:  alert,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *alertService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("alert redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *alertService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "resq-alerts", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats alerts subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain alert nats subscription")
		}
	}()
}

func (s *alertService) handleEvent(payload []byte) {
	var event alertEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid alert event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.broker.broadcast(event.Alert.Region, event.Alert)
}

func (b *alertBroker) subscribe(region string, channel chan dto.AlertResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[region] == nil {
		b.subscribers[region] = make(map[chan dto.AlertResponse]struct{})
	}
	b.subscribers[region][channel] = struct{}{}
}

func (b *alertBroker) unsubscribe(region string, channel chan dto.AlertResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if channels, ok := b.subscribers[region]; ok {
		delete(channels, channel)
		if len(channels) == 0 {
			delete(b.subscribers, region)
		}
	}
	close(channel)
}

func (b *alertBroker) broadcast(region string, alert dto.AlertResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[region] {
		select {
		case channel <- alert:
		default:
			// Slow consumers drop events rather than block intake.
		}
	}
}
