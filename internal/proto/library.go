package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const LibraryServiceName = "tunekeeper.library.v1.LibraryService"

const (
	MethodAddSong    = "/" + LibraryServiceName + "/AddSong"
	MethodGetSong    = "/" + LibraryServiceName + "/GetSong"
	MethodListSongs  = "/" + LibraryServiceName + "/ListSongs"
	MethodUpdateSong = "/" + LibraryServiceName + "/UpdateSong"
	MethodDeleteSong = "/" + LibraryServiceName + "/DeleteSong"
	MethodPlaySong   = "/" + LibraryServiceName + "/PlaySong"
)

// LibraryServiceServer is implemented by the server side. Every method acts
// on the songs of the account behind the session token.
type LibraryServiceServer interface {
	AddSong(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSong(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSongs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSong(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteSong(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlaySong(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var LibraryServiceDesc = grpc.ServiceDesc{
	ServiceName: LibraryServiceName,
	HandlerType: (*LibraryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddSong", Handler: unary(MethodAddSong, LibraryServiceServer.AddSong)},
		{MethodName: "GetSong", Handler: unary(MethodGetSong, LibraryServiceServer.GetSong)},
		{MethodName: "ListSongs", Handler: unary(MethodListSongs, LibraryServiceServer.ListSongs)},
		{MethodName: "UpdateSong", Handler: unary(MethodUpdateSong, LibraryServiceServer.UpdateSong)},
		{MethodName: "DeleteSong", Handler: unary(MethodDeleteSong, LibraryServiceServer.DeleteSong)},
		{MethodName: "PlaySong", Handler: unary(MethodPlaySong, LibraryServiceServer.PlaySong)},
	},
	Metadata: "tunekeeper/library/v1/library.proto",
}

func RegisterLibraryServiceServer(s grpc.ServiceRegistrar, srv LibraryServiceServer) {
	s.RegisterService(&LibraryServiceDesc, srv)
}

// LibraryServiceClient is the client stub.
type LibraryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLibraryServiceClient(cc grpc.ClientConnInterface) *LibraryServiceClient {
	return &LibraryServiceClient{cc: cc}
}

func (c *LibraryServiceClient) AddSong(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodAddSong, in, opts...)
}

func (c *LibraryServiceClient) GetSong(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodGetSong, in, opts...)
}

func (c *LibraryServiceClient) ListSongs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodListSongs, in, opts...)
}

func (c *LibraryServiceClient) UpdateSong(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodUpdateSong, in, opts...)
}

func (c *LibraryServiceClient) DeleteSong(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodDeleteSong, in, opts...)
}

func (c *LibraryServiceClient) PlaySong(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodPlaySong, in, opts...)
}
