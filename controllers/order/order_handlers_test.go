package orderControllers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	orderControllers "github.com/buzcart/buzcart-api/controllers/order"
	"github.com/buzcart/buzcart-api/models"
	"github.com/buzcart/buzcart-api/routes"
	"github.com/buzcart/buzcart-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []uuid.UUID
	err    error
}

func (n *recordingNotifier) OrderCreated(_ context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
	return n.err
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (c *recordingCache) Get(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, errors.New("miss")
}

func (c *recordingCache) Set(context.Context, *models.Product) error { return nil }

func (c *recordingCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

func orderBody(lines ...gin.H) gin.H {
	return gin.H{
		"full_name": "Grace Hopper",
		"phone":     "+1 555 0100",
		"street":    "1 Compiler Way",
		"city":      "Arlington",
		"zip_code":  "22201",
		"items":     lines,
	}
}

func TestCreateOrderHandler(t *testing.T) {
	db := testutil.OpenDB(t)
	notifier := &recordingNotifier{err: errors.New("broker down")}
	products := &recordingCache{}
	router := gin.New()
	routes.SetupRoutes(router, routes.Services{DB: db, Products: products, Notifier: notifier, JWTSecret: testutil.JWTSecret})

	userID := uuid.New()
	p := testutil.SeedProduct(t, db, "Desk", "120.00", 2)

	t.Run("created", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPost, "/orders", orderBody(gin.H{"product": p.ID, "quantity": 2}), userID)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		var order struct {
			ID     uuid.UUID       `json:"id"`
			Status string          `json:"status"`
			Total  decimal.Decimal `json:"total"`
			Items  []struct {
				Product        uuid.UUID `json:"product"`
				ProductDetails struct {
					Name string `json:"name"`
				} `json:"product_details"`
			} `json:"items"`
		}
		testutil.Decode(t, recorder, &order)
		assert.Equal(t, "pending", order.Status)
		assert.True(t, order.Total.Equal(decimal.NewFromInt(240)), order.Total.String())
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Desk", order.Items[0].ProductDetails.Name)

		// A failing notifier never fails the request.
		assert.Equal(t, []uuid.UUID{order.ID}, notifier.orders)
		assert.Equal(t, []uuid.UUID{p.ID}, products.invalidated)
	})

	t.Run("out of stock", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPost, "/orders", orderBody(gin.H{"product": p.ID, "quantity": 1}), userID)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var body struct {
			Error     string    `json:"error"`
			Product   uuid.UUID `json:"product"`
			Available int       `json:"available"`
		}
		testutil.Decode(t, recorder, &body)
		assert.Contains(t, body.Error, "Desk")
		assert.Equal(t, p.ID, body.Product)
		assert.Equal(t, 0, body.Available)
	})

	t.Run("empty", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodPost, "/orders", orderBody(), userID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "at least one item")
	})

	t.Run("field errors use json names", func(t *testing.T) {
		body := orderBody(gin.H{"product": p.ID, "quantity": 0})
		delete(body, "city")
		body["payment_method"] = "barter"

		recorder := testutil.Do(t, router, http.MethodPost, "/orders", body, userID)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var resp struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		}
		testutil.Decode(t, recorder, &resp)
		var fields []string
		for _, f := range resp.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"city", "payment_method", "items[0].quantity"}, fields)
	})

	t.Run("list and fetch", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodGet, "/orders", nil, userID)
		require.Equal(t, http.StatusOK, recorder.Code)
		var orders []struct {
			ID uuid.UUID `json:"id"`
		}
		testutil.Decode(t, recorder, &orders)
		require.Len(t, orders, 1)

		recorder = testutil.Do(t, router, http.MethodGet, "/orders/"+orders[0].ID.String(), nil, userID)
		assert.Equal(t, http.StatusOK, recorder.Code)

		recorder = testutil.Do(t, router, http.MethodGet, "/orders/"+orders[0].ID.String(), nil, uuid.New())
		assert.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = testutil.Do(t, router, http.MethodGet, "/orders/not-a-uuid", nil, userID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		recorder := testutil.Do(t, router, http.MethodGet, "/orders", nil, uuid.New())
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "[]", strings.TrimSpace(recorder.Body.String()))
	})
}

func TestOrderFeedPushesCreatedOrders(t *testing.T) {
	db := testutil.OpenDB(t)
	hub := orderControllers.NewHub()
	router := gin.New()
	routes.SetupRoutes(router, routes.Services{DB: db, Hub: hub, JWTSecret: testutil.JWTSecret})
	server := httptest.NewServer(router)
	defer server.Close()

	userID := uuid.New()
	p := testutil.SeedProduct(t, db, "Poster", "9.00", 3)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/orders/ws?token=" + testutil.Token(t, userID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	recorder := testutil.Do(t, router, http.MethodPost, "/orders", orderBody(gin.H{"product": p.ID, "quantity": 1}), userID)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.OrderEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventOrderCreated, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(9)))
}

func TestOrderFeedRequiresToken(t *testing.T) {
	router := gin.New()
	routes.SetupRoutes(router, routes.Services{DB: testutil.OpenDB(t), JWTSecret: testutil.JWTSecret})
	server := httptest.NewServer(router)
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/orders/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubDropsClosedSockets(t *testing.T) {
	hub := orderControllers.NewHub()
	router := gin.New()
	routes.SetupRoutes(router, routes.Services{DB: testutil.OpenDB(t), Hub: hub, JWTSecret: testutil.JWTSecret})
	server := httptest.NewServer(router)
	defer server.Close()

	userID := uuid.New()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/orders/ws?token=" + testutil.Token(t, userID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubBroadcastsConcurrently(t *testing.T) {
	hub := orderControllers.NewHub()
	router := gin.New()
	routes.SetupRoutes(router, routes.Services{DB: testutil.OpenDB(t), Hub: hub, JWTSecret: testutil.JWTSecret})
	server := httptest.NewServer(router)
	defer server.Close()

	dial := func(userID uuid.UUID) *websocket.Conn {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/orders/ws?token=" + testutil.Token(t, userID)
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)
		return conn
	}
	alice, bob := uuid.New(), uuid.New()
	aliceConn := dial(alice)
	defer aliceConn.Close()
	bobConn := dial(bob)
	defer bobConn.Close()

	const perUser = 5
	var wg sync.WaitGroup
	for i := 0; i < perUser; i++ {
		for _, userID := range []uuid.UUID{alice, bob} {
			wg.Add(1)
			go func(userID uuid.UUID) {
				defer wg.Done()
				hub.Broadcast(userID, models.OrderEvent{UserID: userID, Type: models.EventOrderCreated})
			}(userID)
		}
	}

	for userID, conn := range map[uuid.UUID]*websocket.Conn{alice: aliceConn, bob: bobConn} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		for i := 0; i < perUser; i++ {
			var event models.OrderEvent
			require.NoError(t, conn.ReadJSON(&event))
			assert.Equal(t, userID, event.UserID, "events only reach their owner")
		}
	}
	wg.Wait()
}
