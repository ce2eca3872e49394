package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MealStatus is the lifecycle state of a Meal.
//
//	uploading -> processing -> success
//	                        -> failed
//
// success and failed are terminal.
type MealStatus string

const (
	StatusUploading  MealStatus = "uploading"
	StatusProcessing MealStatus = "processing"
	StatusSuccess    MealStatus = "success"
	StatusFailed     MealStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s MealStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// InputType is the modality a meal was captured with.
type InputType string

const (
	InputAudio   InputType = "audio"
	InputPicture InputType = "picture"
	InputText    InputType = "text"
)

// MealSlot is the daily eating occasion a meal belongs to.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotSnack     MealSlot = "snack"
	SlotDinner    MealSlot = "dinner"
	SlotExtra     MealSlot = "extra"
)

// Slots lists every slot in the order a day is displayed.
var Slots = []MealSlot{SlotBreakfast, SlotLunch, SlotSnack, SlotDinner, SlotExtra}

// Valid reports whether s is one of the five known slots.
func (s MealSlot) Valid() bool {
	for _, v := range Slots {
		if s == v {
			return true
		}
	}
	return false
}

// Food is one structured item extracted from a meal.
type Food struct {
	Name          string  `json:"name"`
	Quantity      string  `json:"quantity"`
	Calories      float64 `json:"calories"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

// FoodList is stored as a JSON array in a single column.
type FoodList []Food

// Value implements driver.Valuer. A nil list is stored as "[]".
func (f FoodList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("model: encoding foods: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for TEXT (sqlite) and json/bytea (postgres) columns.
func (f *FoodList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*f = FoodList{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("model: cannot scan %T into FoodList", src)
	}
	if len(b) == 0 {
		*f = FoodList{}
		return nil
	}
	var out FoodList
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("model: decoding foods: %w", err)
	}
	if out == nil {
		out = FoodList{}
	}
	*f = out
	return nil
}

// Meal is one logged eating event.
//
// InputFileKey is set for audio and picture meals and nil for text meals.
// Name, Icon, Slot and Foods keep their defaults until processing succeeds.
type Meal struct {
	ID           string     `json:"id"           db:"id"`
	UserID       string     `json:"-"            db:"user_id"`
	Status       MealStatus `json:"status"       db:"status"`
	InputType    InputType  `json:"inputType"    db:"input_type"`
	InputFileKey *string    `json:"-"            db:"input_file_key"`
	Name         string     `json:"name"         db:"name"`
	Icon         string     `json:"icon"         db:"icon"`
	Slot         MealSlot   `json:"key"          db:"slot"`
	Description  *string    `json:"description"  db:"description"`
	Foods        FoodList   `json:"foods"        db:"foods"`
	CreatedAt    time.Time  `json:"createdAt"    db:"created_at"`
}

// FileKey returns the input file key or "" for text meals.
func (m *Meal) FileKey() string {
	if m.InputFileKey == nil {
		return ""
	}
	return *m.InputFileKey
}

// DescriptionText returns the description or "".
func (m *Meal) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}

// MealDetails is what a successful analysis writes onto a Meal.
type MealDetails struct {
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Slot  MealSlot `json:"key"`
	Foods FoodList `json:"foods"`
}

// Nutrients is a sum of food values.
type Nutrients struct {
	Calories      float64 `json:"calories"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

// Add accumulates one food.
func (n *Nutrients) Add(f Food) {
	n.Calories += f.Calories
	n.Proteins += f.Proteins
	n.Carbohydrates += f.Carbohydrates
	n.Fats += f.Fats
}

// Merge accumulates another total.
func (n *Nutrients) Merge(o Nutrients) {
	n.Calories += o.Calories
	n.Proteins += o.Proteins
	n.Carbohydrates += o.Carbohydrates
	n.Fats += o.Fats
}

// Totals sums every food in the list.
func (f FoodList) Totals() Nutrients {
	var n Nutrients
	for _, food := range f {
		n.Add(food)
	}
	return n
}
