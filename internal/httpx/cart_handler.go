package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	Cart      *market.CartRepo
	Favorites *market.FavoriteRepo
	Purchases *market.PurchaseRepo
	Prod      bool
}

func (h *CartHandler) RegisterProtected(r chi.Router) {
	r.Get("/cart", h.listCart)
	r.Post("/cart", h.addCart)
	r.Delete("/cart/{productID}", h.removeCart)

	r.Get("/favorites", h.listFavorites)
	r.Post("/favorites", h.addFavorite)
	r.Delete("/favorites/{productID}", h.removeFavorite)

	r.Get("/purchases", h.listPurchases)
	r.Get("/sales", h.listSales)
}

type productIDReq struct {
	ProductID string `json:"product_id"`
}

func decodeProductID(r *http.Request) (string, *market.Error) {
	var req productIDReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", market.NewError(market.CodeValidation, "invalid json")
	}
	if req.ProductID == "" {
		return "", market.NewError(market.CodeValidation, "product_id is required")
	}
	return req.ProductID, nil
}

func (h *CartHandler) listCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Cart.List(ctx, UserID(r))
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CartHandler) addCart(w http.ResponseWriter, r *http.Request) {
	pid, verr := decodeProductID(r)
	if verr != nil {
		writeError(w, verr, h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.Add(ctx, UserID(r), pid); err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "added to cart"})
}

func (h *CartHandler) removeCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.Remove(ctx, UserID(r), chi.URLParam(r, "productID")); err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "removed from cart"})
}

func (h *CartHandler) listFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Favorites.List(ctx, UserID(r))
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CartHandler) addFavorite(w http.ResponseWriter, r *http.Request) {
	pid, verr := decodeProductID(r)
	if verr != nil {
		writeError(w, verr, h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Favorites.Add(ctx, UserID(r), pid); err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "added to favorites"})
}

func (h *CartHandler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Favorites.Remove(ctx, UserID(r), chi.URLParam(r, "productID")); err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "removed from favorites"})
}

func (h *CartHandler) listPurchases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Purchases.ListByBuyer(ctx, UserID(r))
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CartHandler) listSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Purchases.ListBySeller(ctx, UserID(r))
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
