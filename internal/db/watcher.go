package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// WatchFleet follows the vehicle collection's change stream and invokes
// onChange after every insert, update, replace or delete, regardless of
// which fields changed. The alert engine recomputes the whole batch
// from a fresh snapshot each time, so no event payload is needed.
//
// Blocks until ctx is cancelled or the stream fails. Change streams
// need a replica set; on standalone deployments Watch returns an error
// and the caller falls back to in-process recompute triggers only.
func WatchFleet(ctx context.Context, collection *mongo.Collection, onChange func()) error {
	stream, err := collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("watch vehicles: %w", err)
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		onChange()
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("vehicle change stream: %w", err)
	}
	return nil
}
