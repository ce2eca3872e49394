package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/brenowss/foodiary/internal/model"
)

// mealTimeLayout renders times the way pt-BR locales print them.
const mealTimeLayout = "02/01/2006, 15:04:05"

const resultShape = `Reply with a single JSON object and nothing else:
{
  "name": string,    // short meal name in Portuguese, e.g. "Almoço completo"
  "icon": string,    // one emoji for the main food
  "key": "breakfast" | "lunch" | "snack" | "dinner" | "extra",
  "foods": [
    {
      "name": string,          // specific food name in Portuguese, e.g. "Pão francês"
      "quantity": string,      // with unit, e.g. "100g", "1 unidade", "200ml"
      "calories": number,      // kcal, integer
      "carbohydrates": number, // grams, one decimal
      "proteins": number,      // grams, one decimal
      "fats": number           // grams, one decimal
    }
  ]
}`

const slotRules = `Choose "key" by priority:
1. The meal the user names explicitly ("café da manhã", "almoço", "lanche", "jantar", "ceia").
2. The kind of food (bread and coffee suggest breakfast, rice and beans suggest lunch or dinner, drinks and desserts alone suggest extra).
3. The local time: 05-11 breakfast, 11-15 lunch, 15-18 snack, 18-23 dinner, otherwise extra.`

// TextSystemPrompt instructs extraction from a written or transcribed description.
const TextSystemPrompt = `You are a nutritionist logging a patient's meal from their description.
Name the meal, pick an emoji, identify every food and estimate realistic quantities and nutrition values from standard food composition tables.

` + slotRules + `

` + resultShape

// ImageSystemPrompt instructs extraction from a meal photo.
const ImageSystemPrompt = `You are a nutritionist logging a patient's meal from a photo they took.
Name the meal, pick an emoji, identify every visible food and estimate quantities from the visible portion sizes. When the exact variety is unclear, assume the most common one.

` + slotRules + `
For photos, the visual context (breakfast table, lunch plate) counts as the kind of food.

` + resultShape

// FormatMealTime renders t in loc, or UTC when loc is nil.
func FormatMealTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(mealTimeLayout)
}

func timeContext(createdAt time.Time, loc *time.Location) string {
	return fmt.Sprintf("Data e horário: %s\nFaixa de horário: %s",
		FormatMealTime(createdAt, loc), model.SlotForTime(createdAt, loc))
}

// TextUserPrompt is the user message for FromText.
func TextUserPrompt(in TextInput, loc *time.Location) string {
	return timeContext(in.CreatedAt, loc) + "\nRefeição: " + in.Text
}

// ImageUserPrompt is the text part that accompanies the photo.
func ImageUserPrompt(in ImageInput, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(timeContext(in.CreatedAt, loc))
	if d := strings.TrimSpace(in.Description); d != "" {
		fmt.Fprintf(&b, "\n\nDescrição do usuário: %q", d)
	}
	return b.String()
}
