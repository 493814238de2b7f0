package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "checkout_orders"

type lineItemDocument struct {
	ProductID string               `bson:"product_id"`
	Variant   *string              `bson:"variant"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Name      string               `bson:"name,omitempty"`
	ImageURL  string               `bson:"image_url,omitempty"`
}

type customerDocument struct {
	FullName string `bson:"full_name"`
	Email    string `bson:"email"`
	Phone    string `bson:"phone"`
	Address  string `bson:"address"`
}

type orderDocument struct {
	ID            string               `bson:"_id"`
	Reference     string               `bson:"reference"`
	Cart          []lineItemDocument   `bson:"cart"`
	Subtotal      primitive.Decimal128 `bson:"subtotal"`
	ShippingFee   primitive.Decimal128 `bson:"waybill"`
	Total         primitive.Decimal128 `bson:"total"`
	Currency      string               `bson:"currency"`
	Customer      customerDocument     `bson:"customer"`
	Status        string               `bson:"status"`
	PaymentMethod string               `bson:"payment_method"`
	CreatedAt     time.Time            `bson:"created_at"`
}

type MongoOrderStore struct {
	collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{collection: db.Collection(ordersCollection)}
}

// CreateIndexes installs the unique reference index that makes Create atomic.
func (m *MongoOrderStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoOrderStore) FindByReference(ctx context.Context, reference string) (*domain.CheckoutOrder, error) {
	var doc orderDocument
	err := m.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return doc.toDomain()
}

func (m *MongoOrderStore) Create(ctx context.Context, order *domain.CheckoutOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *MongoOrderStore) List(ctx context.Context, limit int) ([]*domain.CheckoutOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.CheckoutOrder
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		order, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return orders, nil
}

func (m *MongoOrderStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}

func newOrderDocument(o *domain.CheckoutOrder) (*orderDocument, error) {
	doc := &orderDocument{
		ID:        o.ID,
		Reference: o.Reference,
		Currency:  o.Currency,
		Customer: customerDocument{
			FullName: o.Customer.FullName,
			Email:    o.Customer.Email,
			Phone:    o.Customer.Phone,
			Address:  o.Customer.Address,
		},
		Status:        o.Status.String(),
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
	}

	var err error
	if doc.Subtotal, err = toDecimal128(o.Subtotal); err != nil {
		return nil, err
	}
	if doc.ShippingFee, err = toDecimal128(o.ShippingFee); err != nil {
		return nil, err
	}
	if doc.Total, err = toDecimal128(o.Total); err != nil {
		return nil, err
	}

	doc.Cart = make([]lineItemDocument, 0, len(o.Cart))
	for _, item := range o.Cart {
		price, err := toDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		doc.Cart = append(doc.Cart, lineItemDocument{
			ProductID: item.ProductID,
			Variant:   domain.NormalizeVariant(item.Variant),
			Quantity:  item.Quantity,
			UnitPrice: price,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
		})
	}
	return doc, nil
}

func (d *orderDocument) toDomain() (*domain.CheckoutOrder, error) {
	order := &domain.CheckoutOrder{
		ID:        d.ID,
		Reference: d.Reference,
		Currency:  d.Currency,
		Customer: domain.Customer{
			FullName: d.Customer.FullName,
			Email:    d.Customer.Email,
			Phone:    d.Customer.Phone,
			Address:  d.Customer.Address,
		},
		Status:        domain.OrderStatus(d.Status),
		PaymentMethod: d.PaymentMethod,
		CreatedAt:     d.CreatedAt,
	}

	var err error
	if order.Subtotal, err = fromDecimal128(d.Subtotal); err != nil {
		return nil, err
	}
	if order.ShippingFee, err = fromDecimal128(d.ShippingFee); err != nil {
		return nil, err
	}
	if order.Total, err = fromDecimal128(d.Total); err != nil {
		return nil, err
	}

	order.Cart = make([]domain.LineItem, 0, len(d.Cart))
	for _, item := range d.Cart {
		price, err := fromDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		order.Cart = append(order.Cart, domain.LineItem{
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
		})
	}
	return order, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert decimal128 %s: %w", v, err)
	}
	return d, nil
}
