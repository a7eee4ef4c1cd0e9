package kg

import "github.com/BTreeMap/DialogCore/internal/models"

func entry(name string, types []string, plural bool, pageview int, aliases ...string) Entry {
	return Entry{Entity: models.NewEntity(name, types, plural, pageview), Aliases: aliases}
}

// DefaultCatalog is a small built-in catalog for running without a graph
// database. It covers the topics the bundled RGs talk about.
func DefaultCatalog() []Entry {
	return []Entry{
		entry("Music", []string{"topic"}, false, 500000),
		entry("Food", []string{"food", "topic"}, false, 500000),
		entry("Taylor Swift", []string{"musician", "singer", "human"}, false, 900000, "taylor"),
		entry("The Beatles", []string{"musical group", "band"}, true, 800000, "beatles"),
		entry("Queen (band)", []string{"musical group", "band"}, true, 600000),
		entry("Drake (musician)", []string{"rapper", "musician", "human"}, false, 700000, "drake"),
		entry("Billie Eilish", []string{"singer", "musician", "human"}, false, 650000, "billie"),
		entry("Yesterday (song)", []string{"song", "musical work"}, false, 80000),
		entry("Bohemian Rhapsody", []string{"song", "musical work"}, false, 300000),
		entry("Shake It Off", []string{"song", "musical work", "single"}, false, 120000),
		entry("Jazz", []string{"musical genre", "genre"}, false, 200000),
		entry("Rock music", []string{"musical genre", "genre"}, false, 250000, "rock"),
		entry("Guitar", []string{"musical instrument"}, false, 150000, "guitars"),
		entry("Piano", []string{"musical instrument"}, false, 140000, "pianos"),
		entry("Violin", []string{"musical instrument"}, false, 90000),
		entry("Pizza", []string{"food", "dish"}, false, 300000, "pizzas"),
		entry("Sushi", []string{"food", "dish"}, false, 200000),
		entry("Pasta", []string{"food", "dish"}, false, 180000, "spaghetti"),
		entry("Avocado", []string{"fruit"}, false, 90000, "avocados"),
		entry("Chocolate", []string{"food", "dessert"}, false, 160000),
		entry("Ice cream", []string{"food", "dessert"}, false, 150000),
		entry("Tacos", []string{"food", "dish"}, true, 110000, "taco"),
		entry("Apple", []string{"fruit"}, false, 210000, "apples"),
		entry("Coffee", []string{"beverage"}, false, 260000),
		entry("Cat", []string{"animal", "mammal"}, false, 400000, "cats", "kitten"),
		entry("Dog", []string{"animal", "mammal"}, false, 420000, "dogs", "puppy"),
		entry("Basketball", []string{"sport", "team sport"}, false, 300000),
		entry("Soccer", []string{"sport", "team sport"}, false, 310000, "football"),
		entry("Harry Potter", []string{"book", "novel", "film series"}, false, 700000),
		entry("Inception", []string{"film"}, false, 250000),
	}
}
