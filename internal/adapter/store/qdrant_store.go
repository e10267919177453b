package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const scrollPageSize = 256

// QdrantGreetingStore keeps greeting history as Qdrant points. Each point's
// vector is the embedding of the greeting title and message, which is what
// Similar searches against.
type QdrantGreetingStore struct {
	client         *qdrant.Client
	embedder       repository.Embedder
	collectionName string
	log            *zap.Logger
}

func NewQdrantGreetingStore(client *qdrant.Client, embedder repository.Embedder, collectionName string, log *zap.Logger) *QdrantGreetingStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &QdrantGreetingStore{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		log:            log.Named("qdrant"),
	}
}

func (s *QdrantGreetingStore) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if ok && st.Code() == codes.NotFound {
			err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
				CollectionName: s.collectionName,
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     dim,
					Distance: qdrant.Distance_Cosine,
				}),
			})
			if err != nil {
				return fmt.Errorf("failed to create collection: %w", err)
			}
		} else {
			return err
		}
	}

	// Owner lookups filter on this field.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "owner",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		s.log.Warn("could not create owner index (might already exist)", zap.Error(err))
	}
	return nil
}

func (s *QdrantGreetingStore) Save(ctx context.Context, rec *entity.GreetingRecord) error {
	vector, err := s.embedder.CreateEmbedding(ctx, embeddingText(rec))
	if err != nil {
		return fmt.Errorf("embed greeting: %w", err)
	}
	payload, err := toPayload(rec)
	if err != nil {
		return err
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(rec.ID),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	return err
}

func (s *QdrantGreetingStore) ListByOwner(ctx context.Context, owner string) ([]entity.GreetingRecord, error) {
	req := &qdrant.ScrollPoints{
		CollectionName: s.collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("owner", strings.ToLower(owner))},
		},
		Limit:       qdrant.PtrOf(uint32(scrollPageSize)),
		WithPayload: qdrant.NewWithPayload(true),
	}

	out := []entity.GreetingRecord{}
	for {
		points, next, err := s.client.ScrollAndOffset(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			rec, err := fromPayload(p.Payload)
			if err != nil {
				s.log.Warn("skipping unreadable greeting point", zap.String("id", p.GetId().GetUuid()), zap.Error(err))
				continue
			}
			out = append(out, rec)
		}
		if next == nil {
			break
		}
		req.Offset = next
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *QdrantGreetingStore) get(ctx context.Context, id string) (*entity.GreetingRecord, error) {
	// Point ids are UUIDs; anything else cannot name a stored greeting.
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrResourceNotFound
	}
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, entity.ErrResourceNotFound
	}
	rec, err := fromPayload(points[0].Payload)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *QdrantGreetingStore) UpdateStatus(ctx context.Context, id string, st entity.GreetingStatus, txHash string) (*entity.GreetingRecord, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Status = st
	if txHash != "" {
		rec.TxHash = txHash
	}
	rec.UpdatedAt = time.Now().UTC()

	payload, err := toPayload(rec)
	if err != nil {
		return nil, err
	}
	_, err = s.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Payload:        qdrant.NewValueMap(payload),
		PointsSelector: qdrant.NewPointsSelector(qdrant.NewIDUUID(id)),
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *QdrantGreetingStore) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(id)),
	})
	return err
}

func (s *QdrantGreetingStore) Similar(ctx context.Context, text string, limit int) ([]entity.SimilarGreeting, error) {
	vector, err := s.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]entity.SimilarGreeting, 0, len(res))
	for _, hit := range res {
		rec, err := fromPayload(hit.Payload)
		if err != nil {
			continue
		}
		out = append(out, entity.SimilarGreeting{Record: rec, Score: hit.Score})
	}
	return out, nil
}

func embeddingText(rec *entity.GreetingRecord) string {
	return rec.Title + "\n" + rec.Message
}

// The full record rides along as JSON in "record"; "owner" and "created_at"
// are copied out so Qdrant can filter on them.
func toPayload(rec *entity.GreetingRecord) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"owner":      strings.ToLower(rec.Owner),
		"created_at": rec.CreatedAt.Unix(),
		"record":     string(raw),
	}, nil
}

func fromPayload(payload map[string]*qdrant.Value) (entity.GreetingRecord, error) {
	var rec entity.GreetingRecord
	raw := payload["record"].GetStringValue()
	if raw == "" {
		return rec, fmt.Errorf("point has no record payload")
	}
	err := json.Unmarshal([]byte(raw), &rec)
	return rec, err
}
