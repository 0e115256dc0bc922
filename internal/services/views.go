package services

import (
	"cmp"
	"slices"

	"product-review/internal/models"
)

// AverageRating is the arithmetic mean of the ratings, or 0 when there
// are none.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// SortByPrice orders listings by ascending price. Equal prices keep their
// relative order.
func SortByPrice(listings []models.SellerProduct) []models.SellerProduct {
	sorted := slices.Clone(listings)
	slices.SortStableFunc(sorted, func(a, b models.SellerProduct) int {
		return cmp.Compare(a.Price, b.Price)
	})
	return sorted
}

func newProductView(p models.Product) models.ProductView {
	view := models.ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		Images:         make([]models.ImageView, 0, len(p.Images)),
		Reviews:        newReviewViews(p.Reviews),
		SellerProducts: newListingViews(SortByPrice(p.SellerProducts)),
		AverageRating:  AverageRating(p.Reviews),
	}
	if p.Category != nil {
		view.Category = &models.CategoryView{ID: p.Category.ID, Name: p.Category.Name}
	}
	for _, img := range p.Images {
		view.Images = append(view.Images, models.ImageView{ID: img.ID, URL: img.URL})
	}
	return view
}

func newProductViews(products []models.Product) []models.ProductView {
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

func newReviewView(r models.Review) models.ReviewView {
	return models.ReviewView{
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		UserID:    r.UserID,
		ProductID: r.ProductID,
	}
}

func newReviewViews(reviews []models.Review) []models.ReviewView {
	views := make([]models.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, newReviewView(r))
	}
	return views
}

func newListingViews(listings []models.SellerProduct) []models.SellerProductView {
	views := make([]models.SellerProductView, 0, len(listings))
	for _, sp := range listings {
		views = append(views, models.SellerProductView{
			ID:        sp.ID,
			SellerID:  sp.SellerID,
			ProductID: sp.ProductID,
			Price:     sp.Price,
		})
	}
	return views
}

func newSellerView(s models.Seller) models.SellerView {
	return models.SellerView{
		ID:             s.ID,
		Name:           s.Name,
		SellerProducts: newListingViews(SortByPrice(s.SellerProducts)),
	}
}
