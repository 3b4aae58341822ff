package projection

import (
	"context"
	"encoding/json"
)

// LocalPublisher hands events straight to a Projector in the calling
// goroutine. It stands in for Kafka when no broker is configured.
type LocalPublisher struct {
	projector *Projector
}

func NewLocalPublisher(projector *Projector) *LocalPublisher {
	return &LocalPublisher{projector: projector}
}

func (lp *LocalPublisher) Publish(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return lp.projector.HandleEvent(ctx, []byte(key), data)
}
