package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/agrimarket-api/internal/application/auth"
	"github.com/jhoicas/agrimarket-api/internal/application/cart"
	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/checkout"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/application/messaging"
	"github.com/jhoicas/agrimarket-api/internal/application/order"
	"github.com/jhoicas/agrimarket-api/internal/application/profile"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	infrapdf "github.com/jhoicas/agrimarket-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/agrimarket-api/internal/interfaces/http"
	"github.com/jhoicas/agrimarket-api/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/agrimarket-api/pkg/jwt"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
)

type apiFixture struct {
	app   *fiber.App
	store *memstore.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memstore.New()
	log := logger.Nop()
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	app.Get("/health", apphttp.HealthHandler("agrimarket-test", nil))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}).WithHashCost(bcrypt.MinCost),
		ProfileUC:  profile.NewProfileUseCase(store.Users()),
		ProductUC:  catalog.NewProductUseCase(store.Products(), nil, log),
		CartUC:     cart.NewCartUseCase(store.Carts(), store.Products()),
		CheckoutUC: checkout.NewCheckoutUseCase(store.Users(), store.TxRunner(), log),
		OrderUC:    order.NewOrderUseCase(store.OrdersRepo(), store.Products(), infrapdf.NewMarotoReceiptGenerator("AgriMarket")),
		MessageUC:  messaging.NewMessageUseCase(store.Users(), store.Messages()),
		JWTSecret:  testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) token(t *testing.T, u *entity.User) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, u.ID, u.Role.String(), testIssuer, testExpMin)
	require.NoError(t, err)
	return tok
}

// call ejecuta la petición y decodifica la respuesta JSON en out (si no es nil).
func (f *apiFixture) call(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	f := newAPI(t)

	var user dto.UserResponse
	resp := f.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username: "finca", Email: "finca@example.com", Password: "secreto1", Role: "seller",
	}, &user)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "seller", user.Role)

	var dup dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username: "finca", Email: "otra@example.com", Password: "secreto1", Role: "buyer",
	}, &dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", dup.Code)

	var invalid dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "root", "email": "no-es-email", "password": "secreto1", "role": "admin",
	}, &invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", invalid.Code)
	assert.Equal(t, "email", invalid.Fields["email"])
	assert.Contains(t, invalid.Fields, "role")

	var login dto.LoginResponse
	resp = f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "finca@example.com", Password: "secreto1"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)

	var denied dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "finca", Password: "mal"}, &denied)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", denied.Code)
}

func TestAPI_CheckoutFlow(t *testing.T) {
	f := newAPI(t)
	seller := f.store.SeedUser("finca", entity.RoleSeller, "")
	buyer := f.store.SeedUser("ana", entity.RoleBuyer, "")
	sellerTok, buyerTok := f.token(t, seller), f.token(t, buyer)

	var product dto.ProductResponse
	resp := f.call(t, http.MethodPost, "/api/seller/products", sellerTok, map[string]any{
		"name": "Café", "price": "10.00", "quantity": 5,
	}, &product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	qty := 3
	var line dto.CartItemResponse
	resp = f.call(t, http.MethodPost, "/api/cart/items", buyerTok, dto.AddToCartRequest{ProductID: product.ID, Quantity: &qty}, &line)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "30.00", line.LineTotal.StringFixed(2))

	var cartResp dto.CartResponse
	f.call(t, http.MethodGet, "/api/cart", buyerTok, nil, &cartResp)
	assert.Equal(t, "30.00", cartResp.Total.StringFixed(2))

	var noAddress dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/cart/checkout", buyerTok, nil, &noAddress)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "MISSING_ADDRESS", noAddress.Code)

	address := "Vereda El Placer"
	resp = f.call(t, http.MethodPut, "/api/profile", buyerTok, dto.UpdateProfileRequest{DeliveryAddress: &address}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result dto.CheckoutResponse
	resp = f.call(t, http.MethodPost, "/api/cart/checkout", buyerTok, nil, &result)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, "30.00", result.Total.StringFixed(2))
	assert.Equal(t, "Pending", result.Orders[0].Status)
	assert.Equal(t, 2, f.store.Product(product.ID).Quantity)
	assert.Empty(t, f.store.CartLines(buyer.ID))

	var empty dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/cart/checkout", buyerTok, nil, &empty)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", empty.Code)

	orderID := result.Orders[0].ID
	var sold dto.OrderListResponse
	f.call(t, http.MethodGet, "/api/seller/orders", sellerTok, nil, &sold)
	require.Len(t, sold.Items, 1)
	assert.Equal(t, "Vereda El Placer", sold.Items[0].DeliveryAddress)

	var skip dto.ErrorResponse
	resp = f.call(t, http.MethodPatch, "/api/seller/orders/"+itoa(orderID)+"/status", sellerTok, dto.UpdateOrderStatusRequest{Status: "Shipped"}, &skip)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", skip.Code)

	var bogus dto.ErrorResponse
	resp = f.call(t, http.MethodPatch, "/api/seller/orders/"+itoa(orderID)+"/status", sellerTok, dto.UpdateOrderStatusRequest{Status: "Lost"}, &bogus)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", bogus.Code)

	var approved dto.OrderResponse
	resp = f.call(t, http.MethodPatch, "/api/seller/orders/"+itoa(orderID)+"/status", sellerTok, dto.UpdateOrderStatusRequest{Status: "Approved"}, &approved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Shipped"}, approved.NextStatuses)

	resp = f.call(t, http.MethodPatch, "/api/seller/orders/"+itoa(orderID)+"/status", buyerTok, dto.UpdateOrderStatusRequest{Status: "Shipped"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var history dto.OrderListResponse
	f.call(t, http.MethodGet, "/api/orders", buyerTok, nil, &history)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "Approved", history.Items[0].Status)

	resp = f.call(t, http.MethodGet, "/api/orders/"+itoa(orderID)+"/receipt", buyerTok, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestAPI_InsufficientStockNamesProduct(t *testing.T) {
	f := newAPI(t)
	seller := f.store.SeedUser("finca", entity.RoleSeller, "")
	buyer := f.store.SeedUser("ana", entity.RoleBuyer, "Calle 1")
	p := f.store.SeedProduct(seller.ID, "Miel de abejas", "8.00", 1)
	tok := f.token(t, buyer)

	qty := 2
	resp := f.call(t, http.MethodPost, "/api/cart/items", tok, dto.AddToCartRequest{ProductID: p.ID, Quantity: &qty}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var errResp dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/cart/checkout", tok, nil, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	assert.Contains(t, errResp.Message, "Miel de abejas")
	assert.Len(t, f.store.CartLines(buyer.ID), 1)
	assert.Equal(t, 1, f.store.Product(p.ID).Quantity)
}

func TestAPI_CartErrors(t *testing.T) {
	f := newAPI(t)
	seller := f.store.SeedUser("finca", entity.RoleSeller, "")
	buyer := f.store.SeedUser("ana", entity.RoleBuyer, "")
	p := f.store.SeedProduct(seller.ID, "Café", "10.00", 5)
	tok := f.token(t, buyer)

	var notFound dto.ErrorResponse
	resp := f.call(t, http.MethodDelete, "/api/cart/items/999", tok, nil, &notFound)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", notFound.Code)

	zero := 0
	var badQty dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/cart/items", tok, dto.AddToCartRequest{ProductID: p.ID, Quantity: &zero}, &badQty)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", badQty.Code)

	huge := entity.MaxCartQuantity + 1
	var tooMany dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/cart/items", tok, dto.AddToCartRequest{ProductID: p.ID, Quantity: &huge}, &tooMany)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", tooMany.Code)

	var badAction dto.ErrorResponse
	resp = f.call(t, http.MethodPatch, "/api/cart/items/1", tok, map[string]string{"action": "double"}, &badAction)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, badAction.Fields, "action")

	resp = f.call(t, http.MethodGet, "/api/cart", f.token(t, seller), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "los vendedores no tienen carrito")

	resp = f.call(t, http.MethodGet, "/api/cart", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_PublicCatalog(t *testing.T) {
	f := newAPI(t)
	seller := f.store.SeedUser("finca", entity.RoleSeller, "")
	f.store.SeedProduct(seller.ID, "Café", "10.00", 5)
	cheap := f.store.SeedProduct(seller.ID, "Panela", "2.50", 5)

	var list dto.ProductListResponse
	resp := f.call(t, http.MethodGet, "/api/products?max=5", "", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Items, 1)
	assert.Equal(t, cheap.ID, list.Items[0].ID)

	var bad dto.ErrorResponse
	resp = f.call(t, http.MethodGet, "/api/products?min=barato", "", nil, &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", bad.Code)

	resp = f.call(t, http.MethodGet, "/api/products/"+itoa(cheap.ID), "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.call(t, http.MethodGet, "/api/products/9999", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = f.call(t, http.MethodGet, "/api/products/abc", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_AdminDeletesButCannotEdit(t *testing.T) {
	f := newAPI(t)
	seller := f.store.SeedUser("finca", entity.RoleSeller, "")
	admin := f.store.SeedUser("root", entity.RoleAdmin, "")
	p := f.store.SeedProduct(seller.ID, "Spam", "1.00", 1)
	tok := f.token(t, admin)

	resp := f.call(t, http.MethodPut, "/api/seller/products/"+itoa(p.ID), tok, map[string]string{"name": "x"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.call(t, http.MethodDelete, "/api/seller/products/"+itoa(p.ID), tok, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, f.store.Product(p.ID))
}

func TestAPI_HealthAndRequestID(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp = f.call(t, http.MethodGet, "/health", "", nil, nil)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestAPI_Messages(t *testing.T) {
	f := newAPI(t)
	seller := f.store.SeedUser("finca", entity.RoleSeller, "")
	buyer := f.store.SeedUser("ana", entity.RoleBuyer, "Calle 1")
	path := "/api/messages/" + itoa(seller.ID)

	var sent dto.MessageResponse
	resp := f.call(t, http.MethodPost, path, f.token(t, buyer), dto.SendMessageRequest{Content: "¿Envían a Tunja?"}, &sent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, buyer.ID, sent.SenderID)
	assert.Equal(t, seller.ID, sent.ReceiverID)

	resp = f.call(t, http.MethodPost, "/api/messages/"+itoa(buyer.ID), f.token(t, seller), dto.SendMessageRequest{Content: "Sí"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var conv dto.ConversationResponse
	resp = f.call(t, http.MethodGet, path, f.token(t, buyer), nil, &conv)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "finca", conv.With.Username)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "¿Envían a Tunja?", conv.Messages[0].Content)
	assert.Equal(t, "Sí", conv.Messages[1].Content)

	var blank dto.ErrorResponse
	resp = f.call(t, http.MethodPost, path, f.token(t, buyer), dto.SendMessageRequest{Content: "   "}, &blank)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", blank.Code)

	var missing dto.ErrorResponse
	resp = f.call(t, http.MethodPost, "/api/messages/9999", f.token(t, buyer), dto.SendMessageRequest{Content: "hola"}, &missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", missing.Code)

	var badID dto.ErrorResponse
	resp = f.call(t, http.MethodGet, "/api/messages/abc", f.token(t, buyer), nil, &badID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", badID.Code)

	resp = f.call(t, http.MethodGet, path, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
