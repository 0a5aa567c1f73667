package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.CartRepository    = (*CartRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
	_ repository.MessageRepository = (*MessageRepo)(nil)
)

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Carts devuelve el repositorio del carrito.
func (s *Store) Carts() *CartRepo { return &CartRepo{s: s} }

// OrdersRepo devuelve el repositorio de pedidos.
func (s *Store) OrdersRepo() *OrderRepo { return &OrderRepo{s: s} }

// Messages devuelve el repositorio de mensajes (fuera del TxRunner).
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s: s} }

// TxRunner devuelve un runner con semántica todo o nada.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// ── TxRunner ──────────────────────────────────────────────────────────────────

// TxRunner serializa las transacciones y restaura el estado si fn falla.
type TxRunner struct{ s *Store }

func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	snap := r.s.snapshot()
	if err := fn(r.s.Products(), r.s.Carts(), r.s.OrdersRepo()); err != nil {
		r.s.restore(snap)
		return err
	}
	r.s.mu.Lock()
	err := r.s.check("tx.Commit")
	r.s.mu.Unlock()
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// ── Users ─────────────────────────────────────────────────────────────────────

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.Create"); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	user.ID = r.s.id()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByLogin(_ context.Context, login string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = user.Name
	u.DeliveryAddress = user.DeliveryAddress
	u.Location = user.Location
	u.Background = user.Background
	u.ProfileImageURL = user.ProfileImageURL
	u.BackgroundImageURL = user.BackgroundImageURL
	u.UpdatedAt = user.UpdatedAt
	return nil
}

// ── Products ──────────────────────────────────────────────────────────────────

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.Create"); err != nil {
		return err
	}
	product.ID = r.s.id()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = r.s.tick()
		product.UpdatedAt = product.CreatedAt
	}
	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetManyForUpdate(_ context.Context, ids []int64) (map[int64]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.GetManyForUpdate"); err != nil {
		return nil, err
	}
	out := make(map[int64]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.Update"); err != nil {
		return err
	}
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	if product.Quantity < 0 || product.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) DecrementStock(_ context.Context, productID int64, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.DecrementStock"); err != nil {
		return err
	}
	p, ok := r.s.products[productID]
	if !ok || p.Quantity < qty {
		return domain.ErrInsufficientStock
	}
	p.Quantity -= qty
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.orders {
		if o.ProductID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.products, id)
	for cid, c := range r.s.cart {
		if c.ProductID == id {
			delete(r.s.cart, cid)
		}
	}
	return nil
}

func (r *ProductRepo) ListBySeller(_ context.Context, sellerID int64) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.SellerID == sellerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortNewestProducts(out)
	return out, nil
}

func (r *ProductRepo) Search(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(f.Query)
	var out []*entity.Product
	for _, p := range r.s.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sortNewestProducts(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func sortNewestProducts(list []*entity.Product) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// ── Cart ──────────────────────────────────────────────────────────────────────

type CartRepo struct{ s *Store }

func (r *CartRepo) AddOrIncrement(_ context.Context, userID, productID int64, qty int) (*entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("carts.AddOrIncrement"); err != nil {
		return nil, err
	}
	if _, ok := r.s.products[productID]; !ok {
		return nil, domain.ErrNotFound
	}
	now := r.s.tick()
	for _, c := range r.s.cart {
		if c.UserID == userID && c.ProductID == productID {
			if c.Quantity+qty > entity.MaxCartQuantity {
				return nil, domain.ErrInvalidQuantity
			}
			c.Quantity += qty
			c.UpdatedAt = now
			cp := *c
			return &cp, nil
		}
	}
	c := &entity.CartItem{ID: r.s.id(), UserID: userID, ProductID: productID, Quantity: qty, AddedAt: now, UpdatedAt: now}
	r.s.cart[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *CartRepo) GetByID(_ context.Context, id int64) (*entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cart[id]
	if !ok {
		return nil, nil
	}
	return r.withProduct(c), nil
}

func (r *CartRepo) AdjustQuantity(_ context.Context, id int64, delta int) (*entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cart[id]
	if !ok {
		return nil, nil
	}
	next := c.Quantity + delta
	if next > entity.MaxCartQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if next < 1 {
		next = 1
	}
	c.Quantity = next
	c.UpdatedAt = r.s.tick()
	cp := *c
	return &cp, nil
}

func (r *CartRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("carts.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.cart[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r *CartRepo) ListByUser(_ context.Context, userID int64) ([]*entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CartItem
	for _, c := range r.s.cart {
		if c.UserID == userID {
			out = append(out, r.withProduct(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CartRepo) ListByUserForUpdate(_ context.Context, userID int64) ([]*entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("carts.ListByUserForUpdate"); err != nil {
		return nil, err
	}
	var out []*entity.CartItem
	for _, c := range r.s.cart {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// withProduct se llama con s.mu tomado.
func (r *CartRepo) withProduct(c *entity.CartItem) *entity.CartItem {
	cp := *c
	if p, ok := r.s.products[c.ProductID]; ok {
		pc := *p
		cp.Product = &pc
		cp.PriceKnown = true
	}
	return &cp
}

// ── Orders ────────────────────────────────────────────────────────────────────

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("orders.Create"); err != nil {
		return err
	}
	order.ID = r.s.id()
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id int64) (*entity.OrderView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.view(o), nil
}

func (r *OrderRepo) ListByBuyer(_ context.Context, buyerID int64) ([]*entity.OrderView, error) {
	return r.list(func(o *entity.Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *OrderRepo) ListBySeller(_ context.Context, sellerID int64) ([]*entity.OrderView, error) {
	return r.list(func(o *entity.Order) bool {
		p, ok := r.s.products[o.ProductID]
		return ok && p.SellerID == sellerID
	}), nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id int64, from, to entity.OrderStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("orders.UpdateStatus"); err != nil {
		return err
	}
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return domain.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (r *OrderRepo) list(match func(*entity.Order) bool) []*entity.OrderView {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderView
	for _, o := range r.s.orders {
		if match(o) {
			out = append(out, r.view(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// view se llama con s.mu tomado.
func (r *OrderRepo) view(o *entity.Order) *entity.OrderView {
	v := &entity.OrderView{Order: *o}
	if p, ok := r.s.products[o.ProductID]; ok {
		v.ProductName = p.Name
		v.SellerID = p.SellerID
	}
	if u, ok := r.s.users[o.BuyerID]; ok {
		v.BuyerUsername = u.Username
		v.DeliveryAddress = u.DeliveryAddress
	}
	return v
}

// ── Messages ──────────────────────────────────────────────────────────────────

type MessageRepo struct{ s *Store }

func (r *MessageRepo) Create(_ context.Context, msg *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("messages.Create"); err != nil {
		return err
	}
	_, okSender := r.s.users[msg.SenderID]
	_, okReceiver := r.s.users[msg.ReceiverID]
	if !okSender || !okReceiver {
		return domain.ErrNotFound
	}
	msg.ID = r.s.id()
	cp := *msg
	r.s.messages[msg.ID] = &cp
	return nil
}

func (r *MessageRepo) ListConversation(_ context.Context, a, b int64) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("messages.ListConversation"); err != nil {
		return nil, err
	}
	var out []*entity.Message
	for _, m := range r.s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
