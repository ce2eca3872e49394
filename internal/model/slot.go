package model

import (
	"math"
	"time"
)

// SlotForTime buckets a local clock time into a slot:
// 05-11 breakfast, 11-15 lunch, 15-18 snack, 18-23 dinner, otherwise extra.
// The time is converted to loc first; a nil loc keeps t's own location.
func SlotForTime(t time.Time, loc *time.Location) MealSlot {
	if loc != nil {
		t = t.In(loc)
	}
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return SlotBreakfast
	case h >= 11 && h < 15:
		return SlotLunch
	case h >= 15 && h < 18:
		return SlotSnack
	case h >= 18 && h < 23:
		return SlotDinner
	default:
		return SlotExtra
	}
}

// slotShares is the base calorie distribution per goal.
var slotShares = map[Goal]map[MealSlot]float64{
	GoalGain:     {SlotBreakfast: 0.25, SlotLunch: 0.35, SlotSnack: 0.15, SlotDinner: 0.25, SlotExtra: 0},
	GoalLose:     {SlotBreakfast: 0.30, SlotLunch: 0.35, SlotSnack: 0.10, SlotDinner: 0.25, SlotExtra: 0},
	GoalMaintain: {SlotBreakfast: 0.25, SlotLunch: 0.35, SlotSnack: 0.10, SlotDinner: 0.30, SlotExtra: 0},
}

// SlotTargets splits a daily calorie goal across slots.
//
// Slots present in eaten get exactly what was consumed. The calories left
// (never below zero) are shared among the remaining slots in proportion to
// the goal's base distribution. Unknown goals use the maintain distribution.
func SlotTargets(dailyCalories int, goal Goal, eaten map[MealSlot]float64) map[MealSlot]int {
	shares, ok := slotShares[goal]
	if !ok {
		shares = slotShares[GoalMaintain]
	}

	var consumed float64
	for _, c := range eaten {
		consumed += c
	}
	remaining := math.Max(0, float64(dailyCalories)-consumed)

	var weight float64
	for _, s := range Slots {
		if _, done := eaten[s]; !done {
			weight += shares[s]
		}
	}
	if weight == 0 {
		weight = 1
	}

	targets := make(map[MealSlot]int, len(Slots))
	for _, s := range Slots {
		if c, done := eaten[s]; done {
			targets[s] = int(math.Round(c))
			continue
		}
		targets[s] = int(math.Round(remaining * shares[s] / weight))
	}
	return targets
}
