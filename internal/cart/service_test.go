package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
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
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  added_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type cartFixture struct {
	svc        Service
	db         *gorm.DB
	customerID uuid.UUID
	product    *models.Product
	variant    *models.ProductVariant
}

func setupCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	conn := setupCartTestDB(t)

	product := &models.Product{
		StoreID:       uuid.New(),
		CategoryID:    uuid.New(),
		Name:          "Yellow Yam",
		Slug:          "yellow-yam",
		SKU:           "YAM-001",
		PriceCents:    150000,
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(product).Error)

	variantPrice := 120000
	variant := &models.ProductVariant{
		ProductID:     product.ID,
		Name:          "5kg bag",
		SKU:           "YAM-001-5KG",
		PriceCents:    &variantPrice,
		StockQuantity: 3,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(variant).Error)

	svc, err := NewService(ServiceParams{
		DB:       db.NewFromGorm(conn),
		Repo:     NewRepository(conn),
		Products: products.NewRepository(conn),
	})
	require.NoError(t, err)

	return &cartFixture{svc: svc, db: conn, customerID: uuid.New(), product: product, variant: variant}
}

func TestGetCreatesEmptyCart(t *testing.T) {
	fx := setupCartFixture(t)

	cart, err := fx.svc.Get(context.Background(), fx.customerID)
	require.NoError(t, err)
	require.Equal(t, fx.customerID, cart.CustomerID)
	require.Empty(t, cart.Items)
	require.Zero(t, cart.SubtotalCents)

	again, err := fx.svc.Get(context.Background(), fx.customerID)
	require.NoError(t, err)
	require.Equal(t, cart.ID, again.ID)
}

func TestAddItemMergesLines(t *testing.T) {
	fx := setupCartFixture(t)
	ctx := context.Background()

	_, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.Items[0].Quantity)
	require.Equal(t, 150000, cart.Items[0].UnitPrice)
	require.Equal(t, 750000, cart.SubtotalCents)
}

func TestAddItemVariantKeepsSeparateLine(t *testing.T) {
	fx := setupCartFixture(t)
	ctx := context.Background()

	_, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{
		ProductID: fx.product.ID,
		VariantID: &fx.variant.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	// 1 x 150000 base + 2 x 120000 variant override
	require.Equal(t, 390000, cart.SubtotalCents)
	require.Equal(t, 3, cart.TotalItems)
}

func TestAddItemRejectsOverStock(t *testing.T) {
	fx := setupCartFixture(t)

	_, err := fx.svc.AddItem(context.Background(), fx.customerID, AddItemRequest{
		ProductID: fx.product.ID,
		VariantID: &fx.variant.ID,
		Quantity:  4, // variant holds 3
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	fx := setupCartFixture(t)
	require.NoError(t, fx.db.Model(&models.Product{}).Where("id = ?", fx.product.ID).Update("is_active", false).Error)

	_, err := fx.svc.AddItem(context.Background(), fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 1})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestUpdateItemQuantity(t *testing.T) {
	fx := setupCartFixture(t)
	ctx := context.Background()

	cart, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 2})
	require.NoError(t, err)

	updated, err := fx.svc.UpdateItem(ctx, fx.customerID, cart.Items[0].ID, UpdateItemRequest{Quantity: 7})
	require.NoError(t, err)
	require.Equal(t, 7, updated.Items[0].Quantity)

	_, err = fx.svc.UpdateItem(ctx, fx.customerID, cart.Items[0].ID, UpdateItemRequest{Quantity: 0})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())

	_, err = fx.svc.UpdateItem(ctx, fx.customerID, uuid.New(), UpdateItemRequest{Quantity: 1})
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestRemoveItemAndClear(t *testing.T) {
	fx := setupCartFixture(t)
	ctx := context.Background()

	cart, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 2})
	require.NoError(t, err)

	after, err := fx.svc.RemoveItem(ctx, fx.customerID, cart.Items[0].ID)
	require.NoError(t, err)
	require.Empty(t, after.Items)

	_, err = fx.svc.RemoveItem(ctx, fx.customerID, uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	_, err = fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, fx.svc.Clear(ctx, fx.customerID))

	reloaded, err := fx.svc.Get(ctx, fx.customerID)
	require.NoError(t, err)
	require.Empty(t, reloaded.Items)
}

func TestCartTotalsTrackPriceChanges(t *testing.T) {
	fx := setupCartFixture(t)
	ctx := context.Background()

	_, err := fx.svc.AddItem(ctx, fx.customerID, AddItemRequest{ProductID: fx.product.ID, Quantity: 2})
	require.NoError(t, err)

	// vendor reprices the product after the line was added
	require.NoError(t, fx.db.Model(&models.Product{}).Where("id = ?", fx.product.ID).Update("price_cents", 200000).Error)

	cart, err := fx.svc.Get(ctx, fx.customerID)
	require.NoError(t, err)
	require.Equal(t, 200000, cart.Items[0].UnitPrice)
	require.Equal(t, 400000, cart.SubtotalCents)
}
