// Package memstore implementa los puertos de repositorio en memoria para tests de casos de uso y HTTP.
// El TxRunner toma una copia del estado al iniciar y la restaura si la función devuelve error.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	nextID   int64
	users    map[int64]*entity.User
	products map[int64]*entity.Product
	cart     map[int64]*entity.CartItem
	orders   map[int64]*entity.Order
	messages map[int64]*entity.Message
	failures map[string]*failure
	clock    time.Time
}

type failure struct {
	call int
	err  error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:    map[int64]*entity.User{},
		products: map[int64]*entity.Product{},
		cart:     map[int64]*entity.CartItem{},
		orders:   map[int64]*entity.Order{},
		messages: map[int64]*entity.Message{},
		failures: map[string]*failure{},
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// FailOn hace que la llamada número call (desde 1) a op devuelva err.
// op tiene la forma "orders.Create", "products.DecrementStock", "carts.Delete", etc.
func (s *Store) FailOn(op string, call int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{call: call, err: err}
}

// check se llama con s.mu tomado.
func (s *Store) check(op string) error {
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	f.call--
	if f.call == 0 {
		delete(s.failures, op)
		return f.err
	}
	return nil
}

// tick avanza el reloj un segundo para que el orden temporal sea determinista.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ── Seeds y consultas para tests ──────────────────────────────────────────────

// SeedUser crea un usuario con el rol y la dirección indicados.
func (s *Store) SeedUser(username string, role entity.Role, address string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	u := &entity.User{
		ID:              s.id(),
		Username:        username,
		Email:           strings.ToLower(username) + "@example.com",
		Role:            role,
		Name:            username,
		DeliveryAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

// SeedProduct publica un producto del vendedor con precio (texto decimal) y stock.
func (s *Store) SeedProduct(sellerID int64, name, price string, qty int) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	p := &entity.Product{
		ID:        s.id(),
		SellerID:  sellerID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.products[p.ID] = p
	cp := *p
	return &cp
}

// SeedOrder registra un pedido directamente (sin checkout).
func (s *Store) SeedOrder(buyerID, productID int64, qty int, total string, status entity.OrderStatus) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	o := &entity.Order{
		ID:         s.id(),
		CheckoutID: "seed",
		BuyerID:    buyerID,
		ProductID:  productID,
		Quantity:   qty,
		TotalPrice: decimal.RequireFromString(total),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.orders[o.ID] = o
	cp := *o
	return &cp
}

// Product devuelve una copia del producto o nil.
func (s *Store) Product(id int64) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// User devuelve una copia del usuario o nil.
func (s *Store) User(id int64) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// Order devuelve una copia del pedido o nil.
func (s *Store) Order(id int64) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

// CartLines líneas del comprador ordenadas por id.
func (s *Store) CartLines(userID int64) []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.CartItem
	for _, c := range s.cart {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Orders todos los pedidos ordenados por id.
func (s *Store) Orders() []entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ── snapshot ──────────────────────────────────────────────────────────────────

type snapshot struct {
	nextID   int64
	users    map[int64]entity.User
	products map[int64]entity.Product
	cart     map[int64]entity.CartItem
	orders   map[int64]entity.Order
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		nextID:   s.nextID,
		users:    make(map[int64]entity.User, len(s.users)),
		products: make(map[int64]entity.Product, len(s.products)),
		cart:     make(map[int64]entity.CartItem, len(s.cart)),
		orders:   make(map[int64]entity.Order, len(s.orders)),
	}
	for k, v := range s.users {
		snap.users[k] = *v
	}
	for k, v := range s.products {
		snap.products[k] = *v
	}
	for k, v := range s.cart {
		snap.cart[k] = *v
	}
	for k, v := range s.orders {
		snap.orders[k] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.users = make(map[int64]*entity.User, len(snap.users))
	for k, v := range snap.users {
		v := v
		s.users[k] = &v
	}
	s.products = make(map[int64]*entity.Product, len(snap.products))
	for k, v := range snap.products {
		v := v
		s.products[k] = &v
	}
	s.cart = make(map[int64]*entity.CartItem, len(snap.cart))
	for k, v := range snap.cart {
		v := v
		s.cart[k] = &v
	}
	s.orders = make(map[int64]*entity.Order, len(snap.orders))
	for k, v := range snap.orders {
		v := v
		s.orders[k] = &v
	}
}
