package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/model"
)

// Pointer fields tell a missing key apart from a zero value.
type detailsDTO struct {
	Name  *string         `json:"name"`
	Icon  *string         `json:"icon"`
	Key   *model.MealSlot `json:"key"`
	Foods *[]foodDTO      `json:"foods"`
}

type foodDTO struct {
	Name          *string  `json:"name"`
	Quantity      *string  `json:"quantity"`
	Calories      *float64 `json:"calories"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Proteins      *float64 `json:"proteins"`
	Fats          *float64 `json:"fats"`
}

// ParseDetails decodes one extraction reply. It accepts exactly one JSON
// object with the fields name, icon, key and foods and nothing else. No
// repair is attempted.
func ParseDetails(content string) (model.MealDetails, error) {
	if strings.TrimSpace(content) == "" {
		return model.MealDetails{}, apperror.AnalysisEmpty()
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var dto detailsDTO
	if err := dec.Decode(&dto); err != nil {
		return model.MealDetails{}, apperror.AnalysisMalformed(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return model.MealDetails{}, apperror.AnalysisMalformed("unexpected data after JSON object")
	}

	switch {
	case dto.Name == nil || strings.TrimSpace(*dto.Name) == "":
		return model.MealDetails{}, apperror.AnalysisMalformed(`missing "name"`)
	case dto.Icon == nil:
		return model.MealDetails{}, apperror.AnalysisMalformed(`missing "icon"`)
	case dto.Key == nil:
		return model.MealDetails{}, apperror.AnalysisMalformed(`missing "key"`)
	case !dto.Key.Valid():
		return model.MealDetails{}, apperror.AnalysisMalformed(fmt.Sprintf("unknown meal slot %q", *dto.Key))
	case dto.Foods == nil:
		return model.MealDetails{}, apperror.AnalysisMalformed(`missing "foods"`)
	}

	foods := make(model.FoodList, 0, len(*dto.Foods))
	for i, f := range *dto.Foods {
		food, err := f.toFood()
		if err != nil {
			return model.MealDetails{}, apperror.AnalysisMalformed(fmt.Sprintf("foods[%d]: %s", i, err))
		}
		foods = append(foods, food)
	}

	return model.MealDetails{
		Name:  strings.TrimSpace(*dto.Name),
		Icon:  strings.TrimSpace(*dto.Icon),
		Slot:  *dto.Key,
		Foods: foods,
	}, nil
}

func (f foodDTO) toFood() (model.Food, error) {
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return model.Food{}, errors.New(`missing "name"`)
	}
	if f.Quantity == nil {
		return model.Food{}, errors.New(`missing "quantity"`)
	}
	nums := []struct {
		name string
		v    *float64
	}{
		{"calories", f.Calories},
		{"carbohydrates", f.Carbohydrates},
		{"proteins", f.Proteins},
		{"fats", f.Fats},
	}
	for _, n := range nums {
		if n.v == nil {
			return model.Food{}, fmt.Errorf("missing %q", n.name)
		}
		if *n.v < 0 {
			return model.Food{}, fmt.Errorf("negative %q", n.name)
		}
	}
	return model.Food{
		Name:          strings.TrimSpace(*f.Name),
		Quantity:      *f.Quantity,
		Calories:      *f.Calories,
		Carbohydrates: *f.Carbohydrates,
		Proteins:      *f.Proteins,
		Fats:          *f.Fats,
	}, nil
}
