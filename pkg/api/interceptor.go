package api

import (
	"context"
	"strings"

	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor creates a gRPC unary interceptor that logs every call
// at debug level and failures at warn level.
func LoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		timer := metrics.NewTimer()
		resp, err := handler(ctx, req)

		if err != nil {
			logger.Warn().
				Err(err).
				Str("method", info.FullMethod).
				Dur("duration", timer.Duration()).
				Msg("Request failed")
		} else {
			logger.Debug().
				Str("method", info.FullMethod).
				Dur("duration", timer.Duration()).
				Msg("Request served")
		}
		return resp, err
	}
}

// MetricsInterceptor creates a gRPC unary interceptor that counts and times
// every call by method name.
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		method := methodName(info.FullMethod)
		timer := metrics.NewTimer()
		resp, err := handler(ctx, req)

		timer.ObserveDurationVec(metrics.APIRequestDuration, method)
		metrics.APIRequestsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
		return resp, err
	}
}

// methodName extracts the method name from a full path
// (e.g., "/dfproto.Reports/GetReports" -> "GetReports")
func methodName(fullMethod string) string {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return fullMethod
	}
	return parts[len(parts)-1]
}
