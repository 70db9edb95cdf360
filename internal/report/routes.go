package report

import (
	"net/http"
	"restaurant_chat/src/model"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Register mounts the snapshot endpoints on r
func (s *Service) Register(r chi.Router) {
	r.Get("/api/orders/total", s.handleOrdersTotal)
	r.Get("/api/orders/revenue", s.handleRevenue)
	r.Get("/api/orders/most-ordered", s.handleMostOrdered)
	r.Get("/api/feedbacks/average", s.handleFeedbackAverage)
	r.Get("/api/store", s.handleStore)
}

func (s *Service) handleOrdersTotal(w http.ResponseWriter, r *http.Request) {
	window, ok := queryWindow(w, r)
	if !ok {
		return
	}
	result, err := s.OrdersTotal(r.Context(), window)
	respond(w, r, result, err, "Failed to count orders")
}

func (s *Service) handleRevenue(w http.ResponseWriter, r *http.Request) {
	window, ok := queryWindow(w, r)
	if !ok {
		return
	}
	result, err := s.Revenue(r.Context(), window)
	respond(w, r, result, err, "Failed to sum revenue")
}

func (s *Service) handleMostOrdered(w http.ResponseWriter, r *http.Request) {
	window, ok := queryWindow(w, r)
	if !ok {
		return
	}
	result, err := s.MostOrdered(r.Context(), window)
	respond(w, r, result, err, "Failed to get most ordered products")
}

func (s *Service) handleFeedbackAverage(w http.ResponseWriter, r *http.Request) {
	window, ok := queryWindow(w, r)
	if !ok {
		return
	}
	result, err := s.FeedbackAverage(r.Context(), r.URL.Query().Get("storeId"), window)
	respond(w, r, result, err, "Failed to compute feedback average")
}

func (s *Service) handleStore(w http.ResponseWriter, r *http.Request) {
	result, err := s.StoreInfo(r.Context())
	respond(w, r, result, err, "Failed to load store information")
}

func queryWindow(w http.ResponseWriter, r *http.Request) (Window, bool) {
	q := r.URL.Query()
	window, err := ParseWindow(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Error: err.Error()})
		return Window{}, false
	}
	return window, true
}

func respond(w http.ResponseWriter, r *http.Request, data any, err error, failure string) {
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(failure)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Success: false, Error: failure})
		return
	}
	writeJSON(w, http.StatusOK, model.DataResponse{Success: true, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
