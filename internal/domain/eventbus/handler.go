package eventbus

import (
	"vibibay-client-go/internal/platform/logging"
)

// LogHandler mirrors every notification into the structured log so headless
// runs (CLI scripts, the local web facade) keep a trace of what was surfaced.
type LogHandler struct {
	logger *logging.Logger
}

func NewLogHandler(logger *logging.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// Attach subscribes the handler to the notification topics.
func (h *LogHandler) Attach(bus *Bus) error {
	if err := bus.Subscribe(TopicNotifySuccess, h.handleSuccess); err != nil {
		return err
	}
	if err := bus.Subscribe(TopicNotifyError, h.handleError); err != nil {
		return err
	}
	if err := bus.Subscribe(TopicSessionStepUp, h.handleStepUp); err != nil {
		return err
	}
	return bus.Subscribe(TopicCacheInvalidated, h.handleInvalidated)
}

func (h *LogHandler) handleSuccess(n Notification) {
	h.logger.InfoTag("notify", "%s: %s", n.Operation, n.Message)
}

func (h *LogHandler) handleError(n Notification) {
	if n.Code != "" {
		h.logger.WarnTag("notify", "%s failed (%s): %s", n.Operation, n.Code, n.Message)
		return
	}
	h.logger.WarnTag("notify", "%s failed: %s", n.Operation, n.Message)
}

func (h *LogHandler) handleStepUp(n Notification) {
	h.logger.InfoTag("notify", "%s: one-time code required", n.Operation)
}

func (h *LogHandler) handleInvalidated(key string) {
	h.logger.Debug("cache invalidated: %s", key)
}
