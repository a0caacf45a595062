package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product status values.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Category is a flat catalog bucket, looked up by name.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name string             `bson:"name" json:"name" validate:"required"`
}

// Product is a listed secondhand device. Category and seller are referenced
// by name/email, not object id, matching how the filters are built.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Category      string             `bson:"category" json:"category" validate:"required"`
	SellerName    string             `bson:"sellerName" json:"sellerName"`
	SellerEmail   string             `bson:"sellerEmail" json:"sellerEmail" validate:"required,email"`
	OriginalPrice float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	ResalePrice   float64            `bson:"resalePrice" json:"resalePrice" validate:"required,gt=0"`
	Condition     string             `bson:"condition,omitempty" json:"condition,omitempty"`
	Location      string             `bson:"location,omitempty" json:"location,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	YearsOfUse    string             `bson:"yearsOfUse,omitempty" json:"yearsOfUse,omitempty"`
	ImageURL      string             `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Advertised    bool               `bson:"advertised" json:"advertised"`
	Reported      bool               `bson:"reported" json:"reported"`
	Verified      bool               `bson:"verified" json:"verified"`
	PostedAt      time.Time          `bson:"postedAt" json:"postedAt"`
}

// ReportedItem records a buyer flagging a product. Deleted when moderation
// resolves the report.
type ReportedItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ProductID     string             `bson:"productId" json:"productId" validate:"required"`
	ProductName   string             `bson:"productName" json:"productName"`
	ReporterEmail string             `bson:"reporterEmail" json:"reporterEmail"`
	Reason        string             `bson:"reason,omitempty" json:"reason,omitempty"`
	ReportedAt    time.Time          `bson:"reportedAt" json:"reportedAt"`
}
