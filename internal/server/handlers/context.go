package handlers

import "context"

// contextKey type for request context keys
type contextKey string

const (
	// TenantIDKey holds the authenticated tenant (clinic) id
	TenantIDKey contextKey = "tenant_id"
	// UserIDKey holds the authenticated user (actor) id
	UserIDKey contextKey = "user_id"
)

// GetTenantID extracts the tenant id from the request context
func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(string)
	return tenantID, ok
}

// GetUserID extracts the acting user id from the request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
