package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/variant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const VariantServiceName = "omnipos.storefront.v1.VariantService"

// VariantServiceServer exchanges google.protobuf.Struct messages so clients
// need no generated stubs. Requests carry "product" (id or slug) and, for
// ResolveVariant, a "selection" object.
type VariantServiceServer interface {
	ResolveVariant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPriceMatrix(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetAttributeCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var VariantServiceDesc = grpc.ServiceDesc{
	ServiceName: VariantServiceName,
	HandlerType: (*VariantServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ResolveVariant",
			Handler:    unaryHandler("ResolveVariant", VariantServiceServer.ResolveVariant),
		},
		{
			MethodName: "GetPriceMatrix",
			Handler:    unaryHandler("GetPriceMatrix", VariantServiceServer.GetPriceMatrix),
		},
		{
			MethodName: "GetAttributeCatalog",
			Handler:    unaryHandler("GetAttributeCatalog", VariantServiceServer.GetAttributeCatalog),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/storefront/v1/variant.proto",
}

func RegisterVariantServiceServer(s grpc.ServiceRegistrar, srv VariantServiceServer) {
	s.RegisterService(&VariantServiceDesc, srv)
}

func unaryHandler(method string, call func(VariantServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + VariantServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VariantServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VariantServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type VariantHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewVariantHandler(uc product.UseCase, log logger.ZapLogger) *VariantHandler {
	return &VariantHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *VariantHandler) ResolveVariant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ref, err := productRef(ctx, req)
	if err != nil {
		return nil, err
	}

	sel := variant.NewSelection(req.GetFields()["selection"].GetStructValue().AsMap())
	v, err := h.uc.ResolveVariant(ctx, ref, sel)
	if err != nil {
		return nil, h.toStatus(ctx, ref, err)
	}

	return toStruct(map[string]any{
		"variant":  variant.EntryOf(*v),
		"options":  variant.OptionsOf(*v),
		"in_stock": v.InStock(),
	})
}

func (h *VariantHandler) GetPriceMatrix(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ref, err := productRef(ctx, req)
	if err != nil {
		return nil, err
	}

	matrix, err := h.uc.GetPriceMatrix(ctx, ref)
	if err != nil {
		return nil, h.toStatus(ctx, ref, err)
	}
	return toStruct(map[string]any{"price_matrix": matrix})
}

func (h *VariantHandler) GetAttributeCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ref, err := productRef(ctx, req)
	if err != nil {
		return nil, err
	}

	catalog, err := h.uc.GetAttributeCatalog(ctx, ref)
	if err != nil {
		return nil, h.toStatus(ctx, ref, err)
	}
	return toStruct(map[string]any{"attributes": catalog})
}

func productRef(ctx context.Context, req *structpb.Struct) (string, error) {
	ref := req.GetFields()["product"].GetStringValue()
	if ref == "" {
		return "", status.Error(codes.InvalidArgument, i18n.T(middleware.GetLocale(ctx), "InvalidRequest", nil))
	}
	return ref, nil
}

func (h *VariantHandler) toStatus(ctx context.Context, ref string, err error) error {
	locale := middleware.GetLocale(ctx)

	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return status.Error(codes.NotFound, i18n.T(locale, "ProductNotFound", map[string]any{"Product": ref}))
	case errors.Is(err, product.ErrVariantNotFound):
		return status.Error(codes.NotFound, i18n.T(locale, "VariantNotFound", nil))
	case errors.Is(err, product.ErrEmptySelection):
		return status.Error(codes.InvalidArgument, i18n.T(locale, "EmptySelection", nil))
	}

	h.logger.Error("variant rpc failed",
		zap.String("ref", ref),
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.Error(err),
	)
	return status.Error(codes.Internal, i18n.T(locale, "InternalError", nil))
}

// toStruct goes through JSON so decimals and ordered options keep their wire form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
