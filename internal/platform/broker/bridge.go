package broker

import (
	"context"
	"log/slog"

	"storeAdminWs/internal/modules/sync/application/port"
)

// StartKafkaBridge runs one consumer per topic and republishes backend
// change events as refresh signals on the bus. Broker-originated signals
// carry an empty origin so every connected tab receives them.
func StartKafkaBridge(
	ctx context.Context,
	bus port.Bus,
	brokers []string,
	groupID string,
	topics []string,
) {
	if len(brokers) == 0 {
		// No brokers configured; refresh signals then come only from
		// mutations performed through this service.
		slog.Info("kafka bridge disabled, no brokers configured")
		return
	}
	for _, topic := range topics {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			defer consumer.Close()
			err := consumer.Consume(ctx, func(entity string) error {
				bus.Publish(ctx, entity, "")
				return nil
			})
			if err != nil && ctx.Err() == nil {
				slog.Error("kafka consumer stopped", slog.String("topic", tp), slog.Any("error", err))
			}
		}(topic)
	}
}
