package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealStatus_Terminal(t *testing.T) {
	assert.False(t, StatusUploading.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestMealSlot_Valid(t *testing.T) {
	for _, s := range Slots {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, MealSlot("brunch").Valid())
	assert.False(t, MealSlot("").Valid())
}

func TestFoodList_ValueAndScan(t *testing.T) {
	foods := FoodList{{Name: "Pão francês", Quantity: "1 unidade", Calories: 135, Proteins: 4.5, Carbohydrates: 28, Fats: 1.2}}

	v, err := foods.Value()
	require.NoError(t, err)

	var fromString FoodList
	require.NoError(t, fromString.Scan(v))
	assert.Equal(t, foods, fromString)

	var fromBytes FoodList
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.Equal(t, foods, fromBytes)
}

func TestFoodList_NilAndEmpty(t *testing.T) {
	v, err := FoodList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var f FoodList
	require.NoError(t, f.Scan(nil))
	assert.NotNil(t, f)
	assert.Empty(t, f)

	require.NoError(t, f.Scan("null"))
	assert.NotNil(t, f)

	assert.Error(t, f.Scan(42))
	assert.Error(t, f.Scan("{not json"))
}

func TestFoodList_Totals(t *testing.T) {
	foods := FoodList{
		{Calories: 100, Proteins: 10, Carbohydrates: 5, Fats: 1},
		{Calories: 50, Proteins: 2, Carbohydrates: 7, Fats: 3},
	}
	assert.Equal(t, Nutrients{Calories: 150, Proteins: 12, Carbohydrates: 12, Fats: 4}, foods.Totals())

	day := Nutrients{Calories: 10, Fats: 1}
	day.Merge(foods.Totals())
	assert.Equal(t, Nutrients{Calories: 160, Proteins: 12, Carbohydrates: 12, Fats: 5}, day)
}

func TestMeal_Accessors(t *testing.T) {
	m := &Meal{}
	assert.Equal(t, "", m.FileKey())
	assert.Equal(t, "", m.DescriptionText())

	key, desc := "abc.jpeg", "almoço"
	m.InputFileKey, m.Description = &key, &desc
	assert.Equal(t, "abc.jpeg", m.FileKey())
	assert.Equal(t, "almoço", m.DescriptionText())
}

func TestSlotForTime(t *testing.T) {
	tests := []struct {
		hour int
		want MealSlot
	}{
		{4, SlotExtra},
		{5, SlotBreakfast},
		{10, SlotBreakfast},
		{11, SlotLunch},
		{14, SlotLunch},
		{15, SlotSnack},
		{17, SlotSnack},
		{18, SlotDinner},
		{22, SlotDinner},
		{23, SlotExtra},
		{0, SlotExtra},
	}
	for _, tt := range tests {
		at := time.Date(2024, 3, 1, tt.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tt.want, SlotForTime(at, nil), "hour %d", tt.hour)
	}
}

func TestSlotForTime_ConvertsZone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 12:00 UTC is 09:00 at UTC-3.
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, SlotLunch, SlotForTime(at, nil))
	assert.Equal(t, SlotLunch, SlotForTime(at, time.UTC))
	assert.Equal(t, SlotBreakfast, SlotForTime(at, loc))
}

func TestSlotTargets_NothingEaten(t *testing.T) {
	got := SlotTargets(2000, GoalMaintain, nil)

	assert.Equal(t, map[MealSlot]int{
		SlotBreakfast: 500,
		SlotLunch:     700,
		SlotSnack:     200,
		SlotDinner:    600,
		SlotExtra:     0,
	}, got)
}

func TestSlotTargets_RedistributesRemaining(t *testing.T) {
	// Breakfast ate 800 of 2000; 1200 left over lunch/snack/dinner (0.35/0.10/0.25 of 0.70).
	got := SlotTargets(2000, GoalLose, map[MealSlot]float64{SlotBreakfast: 800})

	assert.Equal(t, 800, got[SlotBreakfast])
	assert.Equal(t, 600, got[SlotLunch])
	assert.Equal(t, 171, got[SlotSnack])
	assert.Equal(t, 429, got[SlotDinner])
	assert.Equal(t, 0, got[SlotExtra])
}

func TestSlotTargets_OverEatenFloorsAtZero(t *testing.T) {
	got := SlotTargets(1000, GoalGain, map[MealSlot]float64{SlotLunch: 1500})

	assert.Equal(t, 1500, got[SlotLunch])
	assert.Equal(t, 0, got[SlotBreakfast])
	assert.Equal(t, 0, got[SlotDinner])
}

func TestSlotTargets_UnknownGoalUsesMaintain(t *testing.T) {
	assert.Equal(t, SlotTargets(2000, GoalMaintain, nil), SlotTargets(2000, Goal("bulk"), nil))
}
