package orders

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
)

// Service реализует размещение заказов, смену статусов и проекции для ролей.
type Service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	history  domain.HistoryRepository
	outbox   domain.OutboxRepository
	metrics  *metrics.OrderMetrics
	logger   *log.Entry
	now      func() time.Time
	newID    func() string
}

// Options задаёт необязательные зависимости Service.
type Options struct {
	Logger  *log.Entry
	Metrics *metrics.OrderMetrics
	Now     func() time.Time
	NewID   func() string
}

// Option настраивает Service.
type Option func(*Options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithClock задаёт источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Now = now
	}
}

// WithIDGenerator задаёт генератор идентификаторов (для тестов).
func WithIDGenerator(newID func() string) Option {
	return func(opts *Options) {
		opts.NewID = newID
	}
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	history domain.HistoryRepository,
	outbox domain.OutboxRepository,
	options ...Option,
) *Service {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewOrderMetrics()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Service{
		orders:   orders,
		products: products,
		history:  history,
		outbox:   outbox,
		metrics:  m,
		logger:   logger,
		now:      now,
		newID:    newID,
	}
}
