package middleware

import (
	"context"

	cn "github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/pkg"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor creates a gRPC unary server interceptor that rejects
// calls with PermissionDenied while the license is not valid
func (g *Guard) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	g.Start(context.Background())

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if err := g.check(info.FullMethod); err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

// StreamServerInterceptor creates a gRPC stream server interceptor that rejects
// streams with PermissionDenied while the license is not valid
func (g *Guard) StreamServerInterceptor() grpc.StreamServerInterceptor {
	g.Start(context.Background())

	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := g.check(info.FullMethod); err != nil {
			return err
		}

		return handler(srv, ss)
	}
}

func (g *Guard) check(method string) error {
	if g.Valid() {
		return nil
	}

	g.logger.Warnf("Rejected gRPC call %s: license status %q", method, g.LastResult().Status)

	return status.Error(codes.PermissionDenied, pkg.ValidateBusinessError(cn.ErrLicenseInactive, cn.EntityLicense).Error())
}
