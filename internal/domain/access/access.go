// Package access concentra las verificaciones de capacidad (actor, recurso) → permitir/denegar.
// Cada caso de uso del núcleo llama a una sola de estas funciones al entrar.
package access

import (
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// Actor es la identidad autenticada que ejecuta una operación.
type Actor struct {
	UserID int64
	Role   entity.Role
}

// NewActor construye el actor a partir de los datos del token.
func NewActor(userID int64, role entity.Role) Actor {
	return Actor{UserID: userID, Role: role}
}

func (a Actor) is(role entity.Role) bool {
	return a.UserID > 0 && a.Role == role
}

func allow(ok bool) error {
	if ok {
		return nil
	}
	return domain.ErrForbidden
}

// CanUseCart: solo compradores tienen carrito.
func CanUseCart(a Actor) error {
	return allow(a.is(entity.RoleBuyer))
}

// CanAddToCart: comprador y no dueño del producto.
func CanAddToCart(a Actor, p *entity.Product) error {
	if err := CanUseCart(a); err != nil {
		return err
	}
	return allow(p != nil && p.SellerID != a.UserID)
}

// CanTouchCartItem: la línea debe pertenecer al comprador.
func CanTouchCartItem(a Actor, item *entity.CartItem) error {
	if err := CanUseCart(a); err != nil {
		return err
	}
	return allow(item != nil && item.UserID == a.UserID)
}

// CanCheckout: solo compradores.
func CanCheckout(a Actor) error {
	return allow(a.is(entity.RoleBuyer))
}

// CanManageProducts: solo vendedores publican y listan sus productos.
func CanManageProducts(a Actor) error {
	return allow(a.is(entity.RoleSeller))
}

// CanEditProduct: vendedor dueño del producto.
func CanEditProduct(a Actor, p *entity.Product) error {
	return allow(p != nil && a.is(entity.RoleSeller) && p.SellerID == a.UserID)
}

// CanDeleteProduct: vendedor dueño o administrador (moderación).
func CanDeleteProduct(a Actor, p *entity.Product) error {
	if a.is(entity.RoleAdmin) && p != nil {
		return nil
	}
	return CanEditProduct(a, p)
}

// CanListSellerOrders: solo vendedores ven pedidos de sus productos.
func CanListSellerOrders(a Actor) error {
	return allow(a.is(entity.RoleSeller))
}

// CanListBuyerOrders: solo compradores ven su historial.
func CanListBuyerOrders(a Actor) error {
	return allow(a.is(entity.RoleBuyer))
}

// CanUpdateOrderStatus: solo el vendedor del producto del pedido.
func CanUpdateOrderStatus(a Actor, p *entity.Product) error {
	return allow(p != nil && a.is(entity.RoleSeller) && p.SellerID == a.UserID)
}

// CanReadOrder: el comprador del pedido o el vendedor de su producto.
func CanReadOrder(a Actor, o *entity.OrderView) error {
	if o == nil || a.UserID <= 0 {
		return domain.ErrForbidden
	}
	switch a.Role {
	case entity.RoleBuyer:
		return allow(o.BuyerID == a.UserID)
	case entity.RoleSeller:
		return allow(o.SellerID == a.UserID)
	}
	return domain.ErrForbidden
}

// CanMessage: cualquier usuario autenticado con rol válido conversa con otro usuario.
func CanMessage(a Actor) error {
	return allow(a.UserID > 0 && a.Role.Valid())
}
