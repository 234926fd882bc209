package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casino-dashboard/internal/domain/transaction"
)

// substringMatch builds a case-insensitive literal substring matcher. The
// user-supplied text is escaped so regex metacharacters match themselves;
// attacker-controlled input can never become a pattern.
func substringMatch(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// filterDocument translates a domain filter into a MongoDB filter document.
// All active predicates AND together. Guild scope is always present.
func filterDocument(f transaction.Filter) bson.M {
	query := bson.M{"guildId": f.GuildID}
	var and []bson.M

	if f.Search != "" {
		and = append(and, bson.M{"userId": substringMatch(f.Search)})
	}

	if f.AdminSearch != "" {
		re := substringMatch(f.AdminSearch)
		and = append(and, bson.M{"$or": []bson.M{
			{"handledBy": re},
			{"betId": re},
		}})
	}

	if len(f.Types) > 0 {
		and = append(and, bson.M{"type": bson.M{"$in": f.Types}})
	}
	if len(f.Sources) > 0 {
		and = append(and, bson.M{"source": bson.M{"$in": f.Sources}})
	}

	if f.DateFrom != nil && f.DateTo != nil {
		query["createdAt"] = bson.M{"$gte": *f.DateFrom, "$lte": *f.DateTo}
	}

	if len(and) > 0 {
		query["$and"] = and
	}

	return query
}

// sortDocument translates a sort spec into an ordered sort document. A
// descending _id tie-break is appended when the caller's spec lacks one, so
// records sharing a sort value paginate deterministically.
func sortDocument(sort []transaction.SortField) bson.D {
	doc := make(bson.D, 0, len(sort)+1)
	hasID := false
	for _, s := range sort {
		dir := 1
		if s.Descending {
			dir = -1
		}
		if s.Field == "_id" {
			hasID = true
		}
		doc = append(doc, bson.E{Key: s.Field, Value: dir})
	}
	if !hasID {
		doc = append(doc, bson.E{Key: "_id", Value: -1})
	}
	return doc
}
