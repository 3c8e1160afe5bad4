package hub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sunmobiir/meetsync/pkg/state"
	"github.com/sunmobiir/meetsync/pkg/wire"
)

// Dispatcher decodes server publications and applies them to a session
// state store. Publications are applied in the order they arrive; the
// transport delivers them sequentially, so the dispatcher holds no locks
// of its own.
type Dispatcher struct {
	store   *state.Store
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metricsSet
}

// New creates a dispatcher applying publications to store. The logger may
// be nil.
func New(store *state.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:   store,
		logger:  logger,
		tracer:  otel.Tracer("meetsync/hub"),
		metrics: getMetrics(),
	}
}

// HandleFrame decodes one publication payload and applies it. Decode
// failures and unknown kinds drop the payload without touching the store.
func (d *Dispatcher) HandleFrame(ctx context.Context, payload []byte) {
	_, span := d.tracer.Start(ctx, "hub.dispatch",
		trace.WithAttributes(attribute.Int("payload.size", len(payload))))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			d.metrics.panics.Inc()
			d.logger.Error("recovered panic while applying publication", "panic", r)
			span.SetStatus(codes.Error, "handler panic")
		}
	}()

	if len(payload) == 0 {
		d.logger.Debug("empty publication payload")
		return
	}

	env, err := wire.DecodeEnvelope(payload)
	if err != nil {
		d.metrics.decodeFailures.Inc()
		d.logger.Error("publication decode failed", "error", err, "size", len(payload))
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return
	}
	span.SetAttributes(attribute.String("message.kind", env.Kind.String()))
	d.metrics.dispatches.WithLabelValues(env.Kind.String()).Inc()

	switch env.Kind {
	case wire.KindMeetStatus:
		d.store.ApplyMeetStatus(env.MeetStatus)
		d.logger.Debug("applied meet status",
			"users", len(env.MeetStatus.Users),
			"chats", len(env.MeetStatus.Chats))

	case wire.KindChatMessage:
		d.store.ApplyChatMessage(env.Chat)
		d.logger.Debug("applied chat message", "id", env.Chat.ID)

	default:
		d.metrics.unknownKinds.Inc()
		d.logger.Debug("skipping unknown message kind", "kind", env.Kind, "size", len(env.Raw))
	}
}
