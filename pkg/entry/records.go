package entry

import (
	"context"
	"strconv"

	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/painel-financeiro/painel/pkg/auth"
	log "github.com/sirupsen/logrus"
)

// PublishDeleted announces a deleted record on behalf of the current user.
func PublishDeleted(ctx context.Context, eventBus *event_bus.EventBus, kind string, id int) {
	if eventBus == nil {
		return
	}
	userId := ""
	if session, err := auth.CurrentSession(ctx); err == nil {
		userId = session.UserId
	}
	err := eventBus.Publish(event_bus.NewEvent(ctx, event_bus.EntryDeletedEvent, event_bus.EntryDeleted{
		Kind:   kind,
		Id:     strconv.Itoa(id),
		UserId: userId,
	}))
	if err != nil {
		log.Errorf("failed to publish %s for %s %d: %v", event_bus.EntryDeletedEvent, kind, id, err)
	}
}
