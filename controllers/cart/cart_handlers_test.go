package cartControllers_test

import (
	"net/http"
	"testing"

	"github.com/buzcart/buzcart-api/routes"
	"github.com/buzcart/buzcart-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := testutil.OpenDB(t)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, routes.Services{DB: db, JWTSecret: testutil.JWTSecret})
	return r, db
}

type cartBody struct {
	ID    uuid.UUID `json:"id"`
	Items []struct {
		ID       uuid.UUID `json:"id"`
		Product  uuid.UUID `json:"product"`
		Quantity int       `json:"quantity"`
	} `json:"items"`
}

func TestCartHandlers(t *testing.T) {
	router, db := setupCartTestRouter(t)
	userID := uuid.New()
	product := testutil.SeedProduct(t, db, "Scarf", "15.00", 5)

	t.Run("requires a token", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodGet, "/carts/active", nil, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("empty cart on first view", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodGet, "/carts/active", nil, userID)
		require.Equal(t, http.StatusOK, recorder.Code)

		var cart cartBody
		testutil.Decode(t, recorder, &cart)
		assert.NotEqual(t, uuid.Nil, cart.ID)
		assert.Empty(t, cart.Items)
	})

	t.Run("add defaults quantity to one", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPost, "/carts/active", gin.H{"product": product.ID}, userID)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		var cart cartBody
		testutil.Decode(t, recorder, &cart)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].Quantity)
	})

	t.Run("add beyond stock", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPost, "/carts/active", gin.H{"product": product.ID, "quantity": 5}, userID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Scarf")
	})

	t.Run("add validates quantity", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPost, "/carts/active", gin.H{"product": product.ID, "quantity": 0}, userID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var body struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		}
		testutil.Decode(t, recorder, &body)
		require.Len(t, body.Fields, 1)
		assert.Equal(t, "quantity", body.Fields[0].Field)
	})

	t.Run("patch sets quantity", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPatch, "/carts/active", gin.H{"product": product.ID, "quantity": 5}, userID)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		var item struct {
			Quantity int `json:"quantity"`
		}
		testutil.Decode(t, recorder, &item)
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("patch unknown line", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPatch, "/carts/active", gin.H{"product": uuid.New(), "quantity": 1}, userID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("delete needs cart_id", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodDelete, "/carts/active", nil, userID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "cart_id")

		recorder = testutil.Do(t, router, http.MethodDelete, "/carts/active?cart_id=nope", nil, userID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("delete removes line", func(t *testing.T) {
		view := testutil.Do(t, router, http.MethodGet, "/carts/active", nil, userID)
		var cart cartBody
		testutil.Decode(t, view, &cart)
		require.Len(t, cart.Items, 1)

		recorder := testutil.Do(t, router, http.MethodDelete, "/carts/active?cart_id="+cart.Items[0].ID.String(), nil, userID)
		require.Equal(t, http.StatusOK, recorder.Code)
		testutil.Decode(t, recorder, &cart)
		assert.Empty(t, cart.Items)

		recorder = testutil.Do(t, router, http.MethodDelete, "/carts/active?cart_id="+uuid.NewString(), nil, userID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestDraftCheckoutIsMarkedDeprecated(t *testing.T) {
	router, db := setupCartTestRouter(t)
	userID := uuid.New()
	product := testutil.SeedProduct(t, db, "Socks", "2.00", 3)

	add := testutil.Do(t, router, http.MethodPost, "/carts/active", gin.H{"product": product.ID, "quantity": 3}, userID)
	require.Equal(t, http.StatusCreated, add.Code)

	recorder := testutil.Do(t, router, http.MethodPost, "/carts/checkout", nil, userID)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "true", recorder.Header().Get("Deprecation"))
	assert.Contains(t, recorder.Header().Get("Link"), "</orders>")

	var draft struct {
		Status string `json:"status"`
		Items  []struct {
			Qty int `json:"qty"`
		} `json:"items"`
	}
	testutil.Decode(t, recorder, &draft)
	assert.Equal(t, "pending_payment", draft.Status)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 3, draft.Items[0].Qty)
}
