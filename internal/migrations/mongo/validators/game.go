package validators

import "go.mongodb.org/mongo-driver/bson"

var GameValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"game_type",
			"players_needed",
			"creator_id",
			"rental_id",
			"date",
			"joined_players",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"game_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},
			// A join never takes players_needed below zero.
			"players_needed": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},
			"creator_id": bson.M{
				"bsonType": "string",
			},
			"rental_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"date": bson.M{
				"bsonType": "date",
			},
			"duration": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},
			"joined_players": bson.M{
				"bsonType":    "array",
				"uniqueItems": true,
				"items": bson.M{
					"bsonType": "string",
				},
			},
			"version": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
			},
		},
	},
}
