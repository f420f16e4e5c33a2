package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. "cancelled" is reserved; no operation currently
// transitions an order into it.
const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderCancelled = "cancelled"
)

// Every order costs exactly one token.
const OrderCostTokens = 1

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MealID        primitive.ObjectID `bson:"meal_id" json:"mealId"`
	BeneficiaryID primitive.ObjectID `bson:"beneficiary_id" json:"beneficiaryId"`
	MemberID      primitive.ObjectID `bson:"member_id" json:"memberId"`
	Status        string             `bson:"status" json:"status"`
	CostTokens    int                `bson:"cost_tokens" json:"costTokens"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
