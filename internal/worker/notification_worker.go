package worker

import (
	"go.uber.org/zap"
)

// Subscriber attaches its event handlers to a dispatcher.
type Subscriber interface {
	RegisterHandlers()
}

// StartNotificationWorker registers every subscriber. Delivery runs inline on
// the publishing request; there is no queue or retry.
func StartNotificationWorker(logger *zap.Logger, subscribers ...Subscriber) int {
	started := 0
	for _, s := range subscribers {
		if s == nil {
			continue
		}
		s.RegisterHandlers()
		started++
	}
	logger.Info("notification handlers registered", zap.Int("subscribers", started))
	return started
}
