package domain

// Categorias de comidas soportadas por el catalogo.
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategorySnacks    = "snacks"
	CategoryDrinks    = "drinks"
	CategoryVitamins  = "vitamins"
)

type Disease struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	DidYouKnow  []string `json:"did_you_know"`
}

type Nutrients struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fats     string `json:"fats"`
}

type Meal struct {
	ID               string    `json:"id"`
	DiseaseID        string    `json:"disease_id"`
	Category         string    `json:"category"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Image            string    `json:"image,omitempty"`
	PreparationSteps []string  `json:"preparation_steps"`
	Nutrients        Nutrients `json:"nutrients"`
	Benefits         []string  `json:"benefits"`
}
