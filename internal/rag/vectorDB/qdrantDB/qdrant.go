package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.DocumentsCollection

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(context.Background(), client, collectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Upsert(ctx context.Context, records []docModel.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		if len(rec.Vector) == 0 {
			return fmt.Errorf("chunk %s has no vector", rec.Id)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(rec.Id),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":            rec.Text,
				"chunk_id":        rec.Id,
				"chunk_index":     rec.Meta.ChunkIndex,
				"document_id":     rec.Meta.DocumentId,
				"filename":        rec.Meta.Filename,
				"confidentiality": string(rec.Meta.Confidentiality),
				"department":      rec.Meta.Department,
				"client":          rec.Meta.Client,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentId)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by document failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) DeleteAll(ctx context.Context) error {
	if err := db.QObj.DeleteCollection(ctx, collectionName); err != nil {
		return fmt.Errorf("qdrant wipe failed: %w", err)
	}
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, k int, filter vectorDB.Filter) ([]docModel.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	// An empty non-nil id set must match nothing; skip the round trip.
	if filter.DocumentIDs != nil && len(filter.DocumentIDs) == 0 {
		return nil, nil
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildFilter(filter),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	chunks := make([]docModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		chunkIndex, _ := strconv.Atoi(hit.Payload["chunk_index"].GetStringValue())
		if v := hit.Payload["chunk_index"].GetIntegerValue(); v != 0 {
			chunkIndex = int(v)
		}
		chunks = append(chunks, docModel.ScoredChunk{
			Id:    hit.Payload["chunk_id"].GetStringValue(),
			Text:  hit.Payload["text"].GetStringValue(),
			Score: clampScore(float64(hit.Score)),
			Meta: docModel.ChunkMeta{
				DocumentId:      hit.Payload["document_id"].GetStringValue(),
				Filename:        hit.Payload["filename"].GetStringValue(),
				Confidentiality: docModel.ParseConfidentiality(hit.Payload["confidentiality"].GetStringValue()),
				Department:      hit.Payload["department"].GetStringValue(),
				Client:          hit.Payload["client"].GetStringValue(),
				ChunkIndex:      chunkIndex,
			},
		})
	}

	// Qdrant already orders by score; the chunk-id tiebreak keeps equal
	// scores deterministic.
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score == chunks[j].Score {
			return chunks[i].Id < chunks[j].Id
		}
		return chunks[i].Score > chunks[j].Score
	})
	return chunks, nil
}

func buildFilter(filter vectorDB.Filter) *qdrant.Filter {
	var must []*qdrant.Condition
	if len(filter.DocumentIDs) > 0 {
		must = append(must, qdrant.NewMatchKeywords("document_id", filter.DocumentIDs...))
	}
	if filter.MaxConfidentiality == docModel.Public {
		must = append(must, qdrant.NewMatch("confidentiality", string(docModel.Public)))
	}
	if must == nil {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// Cosine similarity from qdrant lands in [-1, 1]; the contract promises
// scores in [0, 1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
