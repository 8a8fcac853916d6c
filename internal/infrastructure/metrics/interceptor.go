package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// RequestRecorder receives per-method gRPC request metrics.
// Both Collector and PrometheusExporter implement it.
type RequestRecorder interface {
	RecordRequest(method string)
	RecordDuration(method string, durationSeconds float64)
	RecordError(method string)
}

// UnaryServerInterceptor returns a gRPC interceptor that reports every request to each recorder.
// Nil recorders are ignored.
func UnaryServerInterceptor(recorders ...RequestRecorder) grpc.UnaryServerInterceptor {
	active := make([]RequestRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			active = append(active, r)
		}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		method := info.FullMethod
		for _, r := range active {
			r.RecordRequest(method)
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start).Seconds()

		for _, r := range active {
			r.RecordDuration(method, elapsed)
			if err != nil {
				r.RecordError(method)
			}
		}

		return resp, err
	}
}
