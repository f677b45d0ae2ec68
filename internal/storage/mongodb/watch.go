package mongodb

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengol30/patifon-events-management-sub000/internal/roster"
)

// Watch streams task and volunteer collection changes into the roster
// aggregator's invalidation channel until the context is cancelled.
// Requires a replica set (change streams).
func Watch(ctx context.Context, db *mongo.Database, out chan<- roster.Change, log lgr.L) error {
	for _, name := range []string{"tasks", "volunteers"} {
		cs, err := db.Collection(name).Watch(ctx, mongo.Pipeline{},
			options.ChangeStream().SetFullDocument(options.UpdateLookup))
		if err != nil {
			return fmt.Errorf("could not watch %s: %w", name, err)
		}
		go pump(ctx, name, cs, out, log)
	}
	return nil
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	FullDocument  struct {
		EventID string `bson:"eventId"`
	} `bson:"fullDocument"`
	DocumentKey struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// eventIndex remembers which event each streamed document belonged to,
// so a delete, which carries no document body, still resolves to the
// affected event. An empty result means the document was never seen on
// this stream; the consumer then refreshes every roster it knows.
type eventIndex map[string]string

func (ix eventIndex) eventFor(c changeEvent) string {
	if c.OperationType == "delete" {
		id := ix[c.DocumentKey.ID]
		delete(ix, c.DocumentKey.ID)
		return id
	}
	if c.FullDocument.EventID != "" {
		ix[c.DocumentKey.ID] = c.FullDocument.EventID
	}
	return c.FullDocument.EventID
}

func pump(ctx context.Context, name string, cs *mongo.ChangeStream, out chan<- roster.Change, log lgr.L) {
	defer cs.Close(context.Background())

	index := make(eventIndex)

	for cs.Next(ctx) {
		var change changeEvent
		if err := cs.Decode(&change); err != nil {
			log.Logf("[WARN] could not decode %s change: %v", name, err)
			continue
		}
		select {
		case out <- roster.Change{EventID: index.eventFor(change)}:
		case <-ctx.Done():
			return
		}
	}
	if err := cs.Err(); err != nil && ctx.Err() == nil {
		log.Logf("[WARN] %s change stream closed: %v", name, err)
	}
}
