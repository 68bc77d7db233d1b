package utils

import (
	"context"
)

type contextKey string

const ContextRequestIDKey contextKey = "requestID"
const ContextAdminKey contextKey = "admin"

func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextRequestIDKey).(string)
	return id, ok
}

func IsAdminContext(ctx context.Context) bool {
	admin, ok := ctx.Value(ContextAdminKey).(bool)
	return ok && admin
}
