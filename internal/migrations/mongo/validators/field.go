package validators

import "go.mongodb.org/mongo-driver/bson"

var number = bson.A{"double", "int", "long", "decimal"}

var FieldValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"location",
			"hourly_price",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},
			"hourly_price": bson.M{
				"bsonType":         number,
				"minimum":          0,
				"exclusiveMinimum": true,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},
			"image_url": bson.M{
				"bsonType": "string",
			},
			"version": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
