package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//User represents a user in the system

type User struct {
	ID       interface{} `json:"id" bson:"_id,omitempty"`
	Name     string      `json:"name" bson:"name"`
	Email    string      `json:"email" bson:"email"`
	Password string      `json:"password" bson:"password"`
}

type SingleUser struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Product is a catalog entry owned by the backend. Price is kept as the
// raw decoded value because stored documents carry either a number or a
// currency-prefixed string such as "৳120"; use utils.NormalizePrice
// before doing arithmetic with it.
type Product struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	Price       interface{}        `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Rating      float64            `json:"rating" bson:"rating"`
	Image       string             `json:"image" bson:"image"`
	Tag         string             `json:"tag,omitempty" bson:"tag,omitempty"`
}

// CartItem is a product snapshot plus a quantity. A cart holds at most
// one CartItem per product id; adding an existing product increments
// the quantity instead of appending.
type CartItem struct {
	ProductID string      `json:"_id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Category  string      `json:"category" bson:"category"`
	Price     interface{} `json:"price" bson:"price"`
	Image     string      `json:"image" bson:"image"`
	Quantity  int         `json:"quantity" bson:"quantity"`
}

// Snapshot copies the fields of a product that travel into a cart.
func (p Product) Snapshot() CartItem {
	return CartItem{
		ProductID: p.ID.Hex(),
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
	}
}

// ShippingAddress is scoped to a single checkout attempt and echoed
// into the persisted order. Every field is required.
type ShippingAddress struct {
	FullName string `json:"fullName" bson:"fullName"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address" bson:"address"`
	City     string `json:"city" bson:"city"`
	ZipCode  string `json:"zipCode" bson:"zipCode"`
}

// Complete reports whether every shipping field is non-blank.
func (a ShippingAddress) Complete() bool {
	for _, field := range []string{a.FullName, a.Email, a.Phone, a.Address, a.City, a.ZipCode} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Order statuses are mutated by backend-side transitions only.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID          string             `json:"userId" bson:"userId"`
	Items           []CartItem         `json:"items" bson:"items"`
	TotalAmount     int64              `json:"totalAmount" bson:"totalAmount"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shippingAddress"`
	PaymentID       string             `json:"paymentId" bson:"paymentId"`
	PaymentStatus   string             `json:"paymentStatus" bson:"paymentStatus"`
	OrderStatus     string             `json:"orderStatus" bson:"orderStatus"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

type Review struct {
	ID         primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	FoodID     string             `json:"foodId" bson:"foodId"`
	UserID     string             `json:"userId" bson:"userId"`
	UserName   string             `json:"userName" bson:"userName"`
	UserEmail  string             `json:"userEmail" bson:"userEmail"`
	Rating     int                `json:"rating" bson:"rating"`
	ReviewText string             `json:"reviewText" bson:"reviewText"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// AverageRating is the arithmetic mean over the full review list. It is
// recomputed on demand, never stored.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
