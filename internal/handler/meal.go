package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/service"
)

// MealHandler serves meal creation and the query surface. Every route is
// protected; a meal is only ever visible to its owner.
type MealHandler struct {
	meals  *service.MealService
	logger *slog.Logger
}

func NewMealHandler(meals *service.MealService, logger *slog.Logger) *MealHandler {
	return &MealHandler{meals: meals, logger: logger}
}

// mealDetail is the get-by-id projection of a meal.
type mealDetail struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Icon      string           `json:"icon"`
	Status    model.MealStatus `json:"status"`
	Foods     model.FoodList   `json:"foods"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newMealDetail(m *model.Meal) mealDetail {
	foods := m.Foods
	if foods == nil {
		foods = model.FoodList{}
	}
	return mealDetail{
		ID:        m.ID,
		Name:      m.Name,
		Icon:      m.Icon,
		Status:    m.Status,
		Foods:     foods,
		CreatedAt: m.CreatedAt,
	}
}

type mealResponse struct {
	Meal mealDetail `json:"meal"`
}

type mealsResponse struct {
	Meals []model.Meal `json:"meals"`
}

type summaryResponse struct {
	Summary *service.DailySummary `json:"summary"`
}

// HandleCreate registers a meal.
//
// HTTP: POST /meals
// REQUEST BODY: {"fileType": "audio/m4a"|"image/jpeg"|"text/plain", "description"?: "...", "text"?: "..."}
// 201 {"mealId": "...", "uploadURL": "..."}; uploadURL is "" for text meals.
func (h *MealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := parseAuthed[service.CreateMealInput](r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.meals.Create(r.Context(), req.UserID, req.Body)
	if err != nil {
		if !errorIsClient(err) {
			h.logger.Error("creating meal failed",
				slog.String("user_id", req.UserID),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleGet returns one meal.
//
// HTTP: GET /meals/{mealId}
func (h *MealHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, err := parseAuthed[NoBody](r, "mealId")
	if err != nil {
		writeError(w, err)
		return
	}

	mealID := req.Params["mealId"]
	if _, err := xid.FromString(mealID); err != nil {
		writeError(w, apperror.ValidationFailed("mealId", "mealId must be a valid id"))
		return
	}

	meal, err := h.meals.Get(r.Context(), req.UserID, mealID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mealResponse{Meal: newMealDetail(meal)})
}

// HandleList returns the day's successfully processed meals.
//
// HTTP: GET /meals?date=YYYY-MM-DD
func (h *MealHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, err := parseAuthed[NoBody](r)
	if err != nil {
		writeError(w, err)
		return
	}

	meals, err := h.meals.ListByDay(r.Context(), req.UserID, req.Query.Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mealsResponse{Meals: meals})
}

// HandleSummary returns the day's totals and per-slot targets.
//
// HTTP: GET /meals/summary?date=YYYY-MM-DD
func (h *MealHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseAuthed[NoBody](r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.meals.DailySummary(r.Context(), req.UserID, req.Query.Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

// errorIsClient reports whether err maps to a 4xx response.
func errorIsClient(err error) bool {
	status, _ := errorStatus(err)
	return status >= 400 && status < 500
}
