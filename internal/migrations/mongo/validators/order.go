package validators

import "go.mongodb.org/mongo-driver/bson"

var OrderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"store_id",
			"items",
			"total_cents",
			"currency",
			"status",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"store_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"customer_cpf": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{11}$",
			},

			"items": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 100,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "quantity", "unit_price_cents"},
					"properties": bson.M{
						"name": bson.M{
							"bsonType":  "string",
							"minLength": 1,
							"maxLength": 100,
						},
						"quantity": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  1,
							"maximum":  100,
						},
						"unit_price_cents": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  0,
						},
					},
				},
			},

			"total_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-Z]{3}$",
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "preparing", "ready", "delivered", "cancelled"},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
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
