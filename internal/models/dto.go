package models

type CategoryView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ImageView struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type ReviewView struct {
	ID        int    `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	UserID    int    `json:"user_id"`
	ProductID int    `json:"product_id"`
}

type SellerProductView struct {
	ID        int     `json:"id"`
	SellerID  int     `json:"seller_id"`
	ProductID int     `json:"product_id"`
	Price     float64 `json:"price"`
}

// ProductView is a product with its expanded graph and the average of its
// review ratings.
type ProductView struct {
	ID             int                 `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	CategoryID     int                 `json:"category_id"`
	Category       *CategoryView       `json:"category,omitempty"`
	Images         []ImageView         `json:"images"`
	Reviews        []ReviewView        `json:"reviews"`
	SellerProducts []SellerProductView `json:"seller_products"`
	AverageRating  float64             `json:"average_rating"`
}

type ProductRating struct {
	ProductID     int     `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type SellerView struct {
	ID             int                 `json:"id"`
	Name           string              `json:"name"`
	SellerProducts []SellerProductView `json:"seller_products"`
}

type ProductRequest struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int    `json:"category_id"`
}

type CompareRequest struct {
	ProductIDs []int `json:"product_ids"`
}

type ImageRequest struct {
	URL string `json:"url"`
}

type AssignSellerRequest struct {
	SellerID int     `json:"seller_id"`
	Price    float64 `json:"price"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type CategoryRequest struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

type SellerRequest struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}
