package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"role",
			"provider",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"owner", "player"},
			},
			"provider": bson.M{
				"bsonType": "string",
				"enum":     []string{"password", "google", "facebook"},
			},
			"password_hash": bson.M{
				"bsonType": "string",
			},
			"provider_subject": bson.M{
				"bsonType": "string",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SubscriberValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"email", "created_at"},
		"properties": bson.M{
			"email": bson.M{
				"bsonType": "string",
				"pattern":  `^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
