package validators

import "go.mongodb.org/mongo-driver/bson"

var RentalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"field_id",
			"renter_id",
			"start_time",
			"end_time",
			"hours",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"field_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"renter_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"renter_email": bson.M{
				"bsonType": "string",
			},
			"start_time": bson.M{
				"bsonType": "date",
			},
			"end_time": bson.M{
				"bsonType": "date",
			},
			"hours": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
			},
			"hourly_price": bson.M{
				"bsonType": number,
			},
			"price": bson.M{
				"bsonType": number,
				"minimum":  0,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RentalLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "token", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"token": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
