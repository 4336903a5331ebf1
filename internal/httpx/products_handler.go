package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type ProductsHandler struct {
	Repo     *market.ProductRepo
	Producer *kafkax.Producer // product.viewed
	Redis    *redis.Client
	Service  string
	Prod     bool
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Get("/categories", h.categories)
}

func (h *ProductsHandler) RegisterProtected(r chi.Router) {
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := market.ListFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		OwnerID:  q.Get("owner_id"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.IncludeSold, _ = strconv.ParseBool(q.Get("include_sold"))
	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, market.NewError(market.CodeValidation, "invalid min_price"), h.Prod)
			return
		}
		f.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, market.NewError(market.CodeValidation, "invalid max_price"), h.Prod)
			return
		}
		f.MaxPrice = &d
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.List(ctx, f)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.Get(ctx, id)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}

	h.publishViewed(p.ID, UserID(r), r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusOK, p)
}

// publishViewed fire-and-forget; view count di-update oleh analytics consumer.
func (h *ProductsHandler) publishViewed(productID, viewerID, trace string) {
	if h.Producer == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventProductViewed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: productID,
		Payload:       kafkax.MustMarshal(market.ProductViewedPayload{ProductID: productID, ViewerID: viewerID}),
	}
	h.Producer.Publish(market.PartitionKey(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventProductViewed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *ProductsHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyCategories).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) fallback DB
	cats, err := h.Repo.ListCategories(ctx)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	b, _ := json.Marshal(cats)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisx.KeyCategories, b, redisx.TTLCategories).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in market.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, market.NewError(market.CodeValidation, "invalid json"), h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Repo.Create(ctx, UserID(r), in)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in market.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, market.NewError(market.CodeValidation, "invalid json"), h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), UserID(r), in)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, chi.URLParam(r, "id"), UserID(r)); err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("product %s deleted", chi.URLParam(r, "id"))})
}
