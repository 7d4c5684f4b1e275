package analyses

import "context"

type requestIDKey struct{}

// WithRequestID tags the context with the request ID that created or is
// polling a job, so worker-side status events line up with API access
// logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// backgroundWithRequestID detaches job execution from the request
// context while keeping the request ID for correlation. The HTTP
// response returns before the job runs, so the job must not inherit the
// request's cancellation.
func backgroundWithRequestID(ctx context.Context) context.Context {
	return WithRequestID(context.Background(), requestIDFromContext(ctx))
}
