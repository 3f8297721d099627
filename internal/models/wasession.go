package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const WaSessionConnected = "connected"

// WaSession is a transport connection document written by the instance
// manager (QR pairing, reconnects). The pipeline only reads it to bind an
// inbound instance id to its owning merchant.
type WaSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InstanceID string             `bson:"instance_id" json:"instance_id"`
	MerchantID string             `bson:"merchant_id" json:"merchant_id"`

	Status      string `bson:"status" json:"status"` // connected|connecting|disconnected
	PhoneNumber string `bson:"phone_number,omitempty" json:"phone_number,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
