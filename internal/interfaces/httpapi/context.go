package httpapi

import "context"

type contextKey string

const actorContextKey contextKey = "actor_id"

func withActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey, actorID)
}

func actorFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(actorContextKey).(string)
	return actorID, ok && actorID != ""
}
