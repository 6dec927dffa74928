// Package programs is the assistant's second tool: a thin query layer over
// the study-programs catalog in MongoDB. Direct aggregation queries, no
// business logic.
package programs

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Program struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	University   string             `bson:"university" json:"university"`
	Country      string             `bson:"country" json:"country"`
	City         string             `bson:"city,omitempty" json:"city,omitempty"`
	DegreeType   string             `bson:"degree_type" json:"degree_type"`
	Field        string             `bson:"field,omitempty" json:"field,omitempty"`
	TuitionUSD   float64            `bson:"tuition_usd" json:"tuition_usd"`
	DurationMo   int                `bson:"duration_months,omitempty" json:"duration_months,omitempty"`
	IntakeMonths []string           `bson:"intake_months,omitempty" json:"intake_months,omitempty"`
}

type Query struct {
	Text       string
	Country    string
	DegreeType string
	MaxBudget  float64
	Limit      int
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(client *mongo.Client, database string) *Repository {
	return &Repository{collection: client.Database(database).Collection("programs")}
}

// Connect dials MongoDB with a bounded timeout and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// Search runs the catalog query as an aggregation pipeline: optional
// name/university match, country and degree equality, tuition ceiling,
// cheapest first.
func (r *Repository) Search(ctx context.Context, q Query) ([]Program, error) {
	match := bson.M{}

	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := primitive.Regex{Pattern: regexQuote(text), Options: "i"}
		match["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"university": pattern},
			bson.M{"field": pattern},
		}
	}
	if q.Country != "" {
		match["country"] = primitive.Regex{Pattern: "^" + regexQuote(q.Country) + "$", Options: "i"}
	}
	if q.DegreeType != "" {
		match["degree_type"] = primitive.Regex{Pattern: "^" + regexQuote(q.DegreeType) + "$", Options: "i"}
	}
	if q.MaxBudget > 0 {
		match["tuition_usd"] = bson.M{"$lte": q.MaxBudget}
	}

	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "tuition_usd", Value: 1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	programs := make([]Program, 0, limit)
	if err := cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// regexQuote escapes regex metacharacters in user input.
func regexQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
