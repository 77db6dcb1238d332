package mongo

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
	"mlpipe/internal"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Source implements ports.DocumentSource over a MongoDB deployment
type Source struct {
	client *mongo.Client
	logger *internal.Logger
}

// NewSource connects to the deployment at uri and pings it
func NewSource(ctx context.Context, uri string, logger *internal.Logger) (*Source, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Source{client: client, logger: logger.With("mongo")}, nil
}

// ExportCollection reads every document of database.collection into a table
func (s *Source) ExportCollection(ctx context.Context, database, collection string) (*dataset.Table, error) {
	cursor, err := s.client.Database(database).Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find on %s.%s failed: %w", database, collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading %s.%s failed: %w", database, collection, err)
	}
	s.logger.Debug("Fetched %d documents from %s.%s", len(docs), database, collection)

	return DocumentsToTable(docs)
}

// Close disconnects the client
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// DocumentsToTable builds columns from document keys in first-seen order.
// A column is numeric when every present value is a number, boolean when every
// present value is a bool, and categorical otherwise. Absent keys and nulls are missing.
func DocumentsToTable(docs []bson.D) (*dataset.Table, error) {
	if len(docs) == 0 {
		return nil, core.ErrEmptyDataset
	}

	var order []string
	cells := make(map[string][]interface{})
	for i, doc := range docs {
		for _, elem := range doc {
			col, ok := cells[elem.Key]
			if !ok {
				order = append(order, elem.Key)
				col = make([]interface{}, len(docs))
			}
			col[i] = elem.Value
			cells[elem.Key] = col
		}
	}

	table := dataset.NewTable()
	for _, name := range order {
		if err := table.Add(toColumn(name, cells[name])); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func toColumn(name string, values []interface{}) *dataset.Column {
	numeric, boolean := true, true
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := toFloat(v); !ok {
			numeric = false
		}
		if _, ok := v.(bool); !ok {
			boolean = false
		}
	}

	switch {
	case numeric:
		out := make([]float64, len(values))
		for i, v := range values {
			if f, ok := toFloat(v); ok {
				out[i] = f
			} else {
				out[i] = math.NaN()
			}
		}
		return dataset.NewNumericColumn(name, out)
	case boolean:
		out := make([]float64, len(values))
		for i, v := range values {
			switch b := v.(type) {
			case bool:
				if b {
					out[i] = 1
				}
			default:
				out[i] = math.NaN()
			}
		}
		return &dataset.Column{Name: name, Kind: dataset.KindBoolean, Num: out}
	default:
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = toString(v)
		}
		return dataset.NewCategoricalColumn(name, out)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case primitive.ObjectID:
		return s.Hex()
	case bool:
		if s {
			return "True"
		}
		return "False"
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
