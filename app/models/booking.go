package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a buyer's reservation of a product. Created unpaid; Paid and
// TransactionID are set exactly once when the payment completes, which is
// the terminal state.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ProductID     string             `bson:"productId" json:"productId" validate:"required"`
	ProductName   string             `bson:"productName" json:"productName"`
	Email         string             `bson:"email" json:"email" validate:"required,email"`
	BuyerName     string             `bson:"buyerName" json:"buyerName"`
	Price         float64            `bson:"price" json:"price"`
	MeetingPoint  string             `bson:"meetingPoint,omitempty" json:"meetingPoint,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Paid          bool               `bson:"paid" json:"paid"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// Payment is the monetary record of truth, one document per completed
// payment. Append-only; the only delete path is saga compensation when a
// later cascade step fails.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	BookingID     string             `bson:"bookingId" json:"bookingId" validate:"required"`
	ProductID     string             `bson:"productId" json:"productId" validate:"required"`
	TransactionID string             `bson:"transactionId" json:"transactionId" validate:"required"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Amount        float64            `bson:"amount" json:"amount"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
