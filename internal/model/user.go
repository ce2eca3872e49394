// Package model defines the data structures used throughout the application.
package model

import "time"

// Goal is the user's declared objective.
type Goal string

const (
	GoalGain     Goal = "gain"
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
)

// Goals lists every valid Goal, in display order.
var Goals = []Goal{GoalGain, GoalLose, GoalMaintain}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var Genders = []Gender{GenderMale, GenderFemale}

// Targets are the four daily nutrition goals stored with the account.
// They are inputs: nothing in the meal pipeline recomputes them.
type Targets struct {
	Calories      int `json:"calories"      db:"calories"`
	Proteins      int `json:"proteins"      db:"proteins"`
	Carbohydrates int `json:"carbohydrates" db:"carbohydrates"`
	Fats          int `json:"fats"          db:"fats"`
}

// User represents a registered account.
//
// BirthDate is a calendar date; only the YYYY-MM-DD part is meaningful.
// PasswordHash is never serialised.
type User struct {
	ID            string `json:"id"            db:"id"`
	Name          string `json:"name"          db:"name"`
	Email         string `json:"email"         db:"email"`
	PasswordHash  string `json:"-"             db:"password_hash"`
	Goal          Goal   `json:"goal"          db:"goal"`
	Gender        Gender `json:"gender"        db:"gender"`
	BirthDate     string `json:"birthDate"     db:"birth_date"`
	Height        int    `json:"height"        db:"height"`
	Weight        int    `json:"weight"        db:"weight"`
	ActivityLevel int    `json:"activityLevel" db:"activity_level"`
	Targets
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
