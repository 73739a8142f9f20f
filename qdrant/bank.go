package qdrant

import (
	"context"
	"fmt"
	"sort"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/viant/embedknn/knn"
	"github.com/viant/embedknn/vector"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// LabelKey is the payload key holding a sample's label.
const LabelKey = "label"

const uploadBatch = 256

// Bank is a reference set stored in one Qdrant collection. Point ids are the
// reference indexes.
type Bank struct {
	conn        *grpc.ClientConn
	owned       bool
	collections pb.CollectionsClient
	points      pb.PointsClient
	collection  string
	logger      *zap.Logger
}

// New creates a Bank over an existing connection. The caller keeps ownership
// of conn.
func New(conn *grpc.ClientConn, collection string, logger *zap.Logger) *Bank {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bank{
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
		collection:  collection,
		logger:      logger,
	}
}

// Dial connects to the Qdrant gRPC endpoint at addr.
func Dial(addr, collection string, logger *zap.Logger) (*Bank, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	b := New(conn, collection, logger)
	b.owned = true
	return b, nil
}

// Close closes the connection when the Bank opened it with Dial.
func (b *Bank) Close() error {
	if !b.owned {
		return nil
	}
	return b.conn.Close()
}

// EnsureCollection creates the collection with Euclid distance if it does
// not exist yet.
func (b *Bank) EnsureCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("qdrant: ensure collection: %w", vector.ErrEmptyInput)
	}
	list, err := b.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == b.collection {
			return nil
		}
	}
	_, err = b.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: b.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dim),
					Distance: pb.Distance_Euclid,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", b.collection, err)
	}
	b.logger.Info("collection created", zap.String("collection", b.collection), zap.Int("dim", dim))
	return nil
}

// Drop deletes the collection. A collection that does not exist is not an
// error.
func (b *Bank) Drop(ctx context.Context) error {
	_, err := b.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: b.collection})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("qdrant: delete collection %s: %w", b.collection, err)
	}
	return nil
}

// Replace makes the collection hold exactly ref: it drops any earlier
// points, recreates the collection for ref's dimensionality and uploads.
func (b *Bank) Replace(ctx context.Context, ref *knn.ReferenceSet) error {
	if ref.Len() == 0 {
		return fmt.Errorf("qdrant: replace: %w", vector.ErrEmptyInput)
	}
	if err := b.Drop(ctx); err != nil {
		return err
	}
	if err := b.EnsureCollection(ctx, ref.Dim()); err != nil {
		return err
	}
	return b.Upload(ctx, ref)
}

// Upload upserts every sample of ref, using its reference index as point id
// and its label as payload.
func (b *Bank) Upload(ctx context.Context, ref *knn.ReferenceSet) error {
	if ref.Len() == 0 {
		return fmt.Errorf("qdrant: upload: %w", vector.ErrEmptyInput)
	}
	wait := true
	for start := 0; start < ref.Len(); start += uploadBatch {
		end := min(start+uploadBatch, ref.Len())
		points := make([]*pb.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			s := ref.Sample(i)
			points = append(points, &pb.PointStruct{
				Id:      &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: uint64(i)}},
				Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: s.Embedding}}},
				Payload: map[string]*pb.Value{
					LabelKey: {Kind: &pb.Value_StringValue{StringValue: s.Label}},
				},
			})
		}
		if _, err := b.points.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: b.collection,
			Wait:           &wait,
			Points:         points,
		}); err != nil {
			return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
		}
	}
	b.logger.Info("reference set uploaded", zap.String("collection", b.collection), zap.Int("samples", ref.Len()))
	return nil
}

// Rank returns the limit closest points to query. Qdrant's Euclid scores are
// squared so distances are comparable with the local SSD ranking.
func (b *Bank) Rank(ctx context.Context, query vector.Embedding, limit int) (knn.Ranking, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("qdrant: rank: %w", vector.ErrEmptyInput)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("qdrant: rank: limit must be positive, got %d", limit)
	}
	resp, err := b.points.Search(ctx, &pb.SearchPoints{
		CollectionName: b.collection,
		Vector:         query,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}
	out := make(knn.Ranking, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		d := float64(p.GetScore())
		out = append(out, knn.Neighbor{
			Index:    int(p.GetId().GetNum()),
			Label:    p.GetPayload()[LabelKey].GetStringValue(),
			Distance: d * d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}
