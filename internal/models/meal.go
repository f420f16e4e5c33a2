package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Meal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID     primitive.ObjectID `bson:"member_id" json:"memberId"`
	Title        string             `bson:"title" json:"title" validate:"required,min=2"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Dietary      []string           `bson:"dietary" json:"dietary"`
	QtyAvailable int                `bson:"qty_available" json:"qtyAvailable"`
	PhotoObject  string             `bson:"photo_object,omitempty" json:"-"`
	PhotoURL     string             `bson:"-" json:"photoUrl,omitempty"` // presigned, filled at read time
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
