package rg

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// foodFactoids are keyed by canonical entity name.
var foodFactoids = map[string]string{
	"Pizza":     "Did you know that the first pizzeria opened in Naples in 1830?",
	"Sushi":     "Did you know that sushi started out as a way of preserving fish in fermented rice?",
	"Pasta":     "Did you know that there are more than three hundred shapes of pasta?",
	"Avocado":   "Did you know that avocados are technically a kind of berry?",
	"Chocolate": "Did you know that chocolate was once used as money by the Aztecs?",
	"Ice cream": "Did you know that it takes about fifty licks to finish a single scoop of ice cream?",
	"Tacos":     "Did you know that tacos were probably first eaten by silver miners in Mexico?",
	"Apple":     "Did you know that there are over seven thousand varieties of apples?",
	"Coffee":    "Did you know that coffee beans are actually the seeds of a cherry-like fruit?",
}

// foodOpinion praises e with the verb agreeing in number.
func foodOpinion(e *models.Entity) string {
	verb := "is"
	if e.IsPlural() {
		verb = "are"
	}
	name := e.Talkable()
	return fmt.Sprintf("Oh, %s %s delicious!", strings.ToLower(name[:1])+name[1:], verb)
}

// FoodFactoid is what FOOD says about a food the user named.
func FoodFactoid(e *models.Entity) string {
	if e == nil || e.Talkable() == "" {
		return "That sounds delicious!"
	}
	opinion := foodOpinion(e)
	if f, ok := foodFactoids[e.Name]; ok {
		return opinion + " " + f
	}
	return opinion + " I'd love to try it sometime."
}
