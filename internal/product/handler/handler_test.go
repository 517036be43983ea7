package handler

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestConn(t *testing.T, uc *fakeUseCase) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(middleware.ContextInterceptor()))
	RegisterVariantServiceServer(s, NewVariantHandler(uc, logger.NewNop()))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/"+VariantServiceName+"/"+method, in, out, opts...)
	return out, err
}

func TestGRPC_ResolveVariant(t *testing.T) {
	conn := newTestConn(t, newFakeUseCase())

	var header metadata.MD
	out, err := invoke(context.Background(), conn, "ResolveVariant", map[string]any{
		"product":   "oud-noir",
		"selection": map[string]any{"Size": " 10ml ", "Concentration": "edp"},
	}, grpc.Header(&header))
	require.NoError(t, err)

	res := out.AsMap()
	assert.Equal(t, "v10", res["variant"].(map[string]any)["id"])
	assert.Equal(t, "120000", res["variant"].(map[string]any)["price"])
	assert.Equal(t, true, res["in_stock"])
	assert.NotEmpty(t, header.Get(middleware.HeaderRequestID))
}

func TestGRPC_ResolveVariant_NumericSelection(t *testing.T) {
	uc := newFakeUseCase()
	conn := newTestConn(t, uc)

	_, err := invoke(context.Background(), conn, "ResolveVariant", map[string]any{
		"product":   "oud-noir",
		"selection": map[string]any{"Size": 10},
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "10", uc.lastSel["Size"])
}

func TestGRPC_Errors(t *testing.T) {
	conn := newTestConn(t, newFakeUseCase())

	tests := []struct {
		name   string
		method string
		req    map[string]any
		code   codes.Code
	}{
		{"missing product", "GetPriceMatrix", map[string]any{}, codes.InvalidArgument},
		{"unknown product", "GetAttributeCatalog", map[string]any{"product": "rose"}, codes.NotFound},
		{"no selection", "ResolveVariant", map[string]any{"product": "oud-noir"}, codes.InvalidArgument},
		{"no match", "ResolveVariant", map[string]any{"product": "oud-noir", "selection": map[string]any{"Size": "100ml"}}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoke(context.Background(), conn, tt.method, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGRPC_LocalizedStatus(t *testing.T) {
	conn := newTestConn(t, newFakeUseCase())

	ctx := metadata.AppendToOutgoingContext(context.Background(), middleware.HeaderAcceptLanguage, "id")
	_, err := invoke(ctx, conn, "ResolveVariant", map[string]any{"product": "oud-noir", "selection": map[string]any{}})
	require.Error(t, err)
	assert.Equal(t, "Pilih setidaknya satu opsi.", status.Convert(err).Message())
}

func TestGRPC_CatalogAndMatrix(t *testing.T) {
	conn := newTestConn(t, newFakeUseCase())

	out, err := invoke(context.Background(), conn, "GetAttributeCatalog", map[string]any{"product": "p1"})
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"name": "Size", "values": []any{"10ml", "50ml"}},
		map[string]any{"name": "Concentration", "values": []any{"EDP"}},
	}, out.AsMap()["attributes"])

	out, err = invoke(context.Background(), conn, "GetPriceMatrix", map[string]any{"product": "p1"})
	require.NoError(t, err)
	matrix := out.AsMap()["price_matrix"].(map[string]any)
	assert.Len(t, matrix, 2)
	assert.Equal(t, "v50", matrix["Concentration:EDP|Size:50ml"].(map[string]any)["id"])
}
