package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/internal/stores"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

func setupReviewsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  email TEXT,
  phone TEXT,
  address TEXT,
  city TEXT,
  state TEXT,
  country TEXT NOT NULL DEFAULT 'Nigeria',
  is_verified INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  rating NUMERIC NOT NULL DEFAULT 0,
  total_reviews INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT,
  short_description TEXT,
  sku TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  compare_price_cents INTEGER,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  tags TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  views INTEGER NOT NULL DEFAULT 0,
  total_sales INTEGER NOT NULL DEFAULT 0,
  rating NUMERIC NOT NULL DEFAULT 0,
  total_reviews INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  url TEXT NOT NULL,
  alt_text TEXT,
  is_primary INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  price_cents INTEGER,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  size TEXT,
  color TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  subtotal_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  shipping_name TEXT NOT NULL,
  shipping_email TEXT NOT NULL,
  shipping_phone TEXT,
  shipping_address TEXT NOT NULL,
  shipping_city TEXT NOT NULL,
  shipping_state TEXT NOT NULL,
  shipping_country TEXT NOT NULL DEFAULT 'Nigeria',
  shipping_postal_code TEXT,
  notes TEXT,
  tracking_number TEXT,
  paid_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  variant_id TEXT,
  product_name TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  order_id TEXT,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  title TEXT,
  comment TEXT,
  is_verified_purchase INTEGER NOT NULL DEFAULT 0,
  is_approved INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type reviewsFixture struct {
	svc        Service
	db         *gorm.DB
	customerID uuid.UUID
	store      *models.Store
	product    *models.Product
}

func setupReviewsFixture(t *testing.T) *reviewsFixture {
	t.Helper()
	conn := setupReviewsTestDB(t)

	store := &models.Store{OwnerID: uuid.New(), Name: "Okafor Farms", Slug: "okafor-farms", Country: "Nigeria", IsActive: true}
	require.NoError(t, conn.Create(store).Error)

	product := &models.Product{
		StoreID:       store.ID,
		CategoryID:    uuid.New(),
		Name:          "Yellow Yam",
		Slug:          "yellow-yam",
		SKU:           "YAM-001",
		PriceCents:    150000,
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(product).Error)

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Products: products.NewRepository(conn),
		Stores:   stores.NewRepository(conn),
		Orders:   orders.NewRepository(conn),
	})
	require.NoError(t, err)

	return &reviewsFixture{svc: svc, db: conn, customerID: uuid.New(), store: store, product: product}
}

func (fx *reviewsFixture) seedDeliveredOrder(t *testing.T) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:     "AGC-20260901-" + uuid.NewString()[:6],
		CustomerID:      fx.customerID,
		StoreID:         fx.store.ID,
		Status:          enums.OrderStatusDelivered,
		PaymentStatus:   enums.PaymentStatusPaid,
		SubtotalCents:   150000,
		TotalCents:      150000,
		ShippingName:    "Ada Obi",
		ShippingEmail:   "ada@example.com",
		ShippingAddress: "12 Market Road",
		ShippingCity:    "Umuahia",
		ShippingState:   "Abia",
		ShippingCountry: "Nigeria",
		Items: []models.OrderItem{{
			ProductID:     &fx.product.ID,
			ProductName:   fx.product.Name,
			ProductSKU:    fx.product.SKU,
			PriceCents:    fx.product.PriceCents,
			Quantity:      1,
			SubtotalCents: fx.product.PriceCents,
		}},
	}
	require.NoError(t, fx.db.Create(order).Error)
	return order
}

func TestCreateReviewWithoutPurchase(t *testing.T) {
	fx := setupReviewsFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.customerID, CreateReviewRequest{
		ProductID: fx.product.ID,
		Rating:    4,
	})
	require.NoError(t, err)
	require.False(t, created.IsVerifiedPurchase)
	require.True(t, created.IsApproved)

	var product models.Product
	require.NoError(t, fx.db.First(&product, "id = ?", fx.product.ID).Error)
	require.InDelta(t, 4.0, product.Rating, 0.001)
	require.Equal(t, 1, product.TotalReviews)

	var store models.Store
	require.NoError(t, fx.db.First(&store, "id = ?", fx.store.ID).Error)
	require.InDelta(t, 4.0, store.Rating, 0.001)
	require.Equal(t, 1, store.TotalReviews)
}

func TestCreateReviewVerifiedPurchase(t *testing.T) {
	fx := setupReviewsFixture(t)
	order := fx.seedDeliveredOrder(t)

	created, err := fx.svc.Create(context.Background(), fx.customerID, CreateReviewRequest{
		ProductID: fx.product.ID,
		OrderID:   &order.ID,
		Rating:    5,
	})
	require.NoError(t, err)
	require.True(t, created.IsVerifiedPurchase)
}

func TestCreateReviewDuplicate(t *testing.T) {
	fx := setupReviewsFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.customerID, CreateReviewRequest{ProductID: fx.product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, fx.customerID, CreateReviewRequest{ProductID: fx.product.ID, Rating: 2})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestCreateReviewRatingBounds(t *testing.T) {
	fx := setupReviewsFixture(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := fx.svc.Create(context.Background(), fx.customerID, CreateReviewRequest{
			ProductID: fx.product.ID,
			Rating:    rating,
		})
		coded := pkgerrors.As(err)
		require.NotNil(t, coded)
		require.Equal(t, pkgerrors.CodeValidation, coded.Code())
	}
}

func TestCreateReviewUndeliveredOrder(t *testing.T) {
	fx := setupReviewsFixture(t)
	order := fx.seedDeliveredOrder(t)
	require.NoError(t, fx.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", "processing").Error)

	_, err := fx.svc.Create(context.Background(), fx.customerID, CreateReviewRequest{
		ProductID: fx.product.ID,
		OrderID:   &order.ID,
		Rating:    5,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestModerationRemovesFromAggregates(t *testing.T) {
	fx := setupReviewsFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.customerID, CreateReviewRequest{ProductID: fx.product.ID, Rating: 2})
	require.NoError(t, err)

	other := uuid.New()
	_, err = fx.svc.Create(ctx, other, CreateReviewRequest{ProductID: fx.product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = fx.svc.SetApproval(ctx, enums.UserRoleCustomer, created.ID, false)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	_, err = fx.svc.SetApproval(ctx, enums.UserRoleAdmin, created.ID, false)
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, fx.db.First(&product, "id = ?", fx.product.ID).Error)
	require.InDelta(t, 4.0, product.Rating, 0.001)
	require.Equal(t, 1, product.TotalReviews)

	listed, err := fx.svc.ListForProduct(ctx, fx.product.ID, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, listed.Total)
	require.Equal(t, 4, listed.Reviews[0].Rating)
}

func TestDeleteReviewOwnership(t *testing.T) {
	fx := setupReviewsFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.customerID, CreateReviewRequest{ProductID: fx.product.ID, Rating: 3})
	require.NoError(t, err)

	err = fx.svc.Delete(ctx, uuid.New(), enums.UserRoleCustomer, created.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	require.NoError(t, fx.svc.Delete(ctx, fx.customerID, enums.UserRoleCustomer, created.ID))

	var product models.Product
	require.NoError(t, fx.db.First(&product, "id = ?", fx.product.ID).Error)
	require.Zero(t, product.TotalReviews)
}
