package handlers

import (
	"time"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

type companyProfileView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	IsVerified    bool    `json:"is_verified"`
	IsActive      bool    `json:"is_active"`
}

func newCompanyProfileView(c *entities.Company) companyProfileView {
	return companyProfileView{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Category:      c.Category,
		Description:   c.Description,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		Country:       c.Country,
		AverageRating: c.AverageRating,
		TotalReviews:  c.TotalReviews,
		IsVerified:    c.IsVerified,
		IsActive:      c.IsActive,
	}
}

type companyDetailView struct {
	companyProfileView
	ReputationScore     float64 `json:"reputation_score"`
	RecommendationScore float64 `json:"recommendation_score"`
}

type companySummaryView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

func newCompanySummaryView(c *entities.Company) companySummaryView {
	return companySummaryView{ID: c.ID, Name: c.Name, AverageRating: c.AverageRating, TotalReviews: c.TotalReviews}
}

type searchResultView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

type topEntryView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

type recommendationView struct {
	topEntryView
	ReputationScore float64 `json:"reputation_score"`
}

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type commentCustomerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type commentView struct {
	Comment   string              `json:"comment"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Customer  commentCustomerView `json:"customer"`
}
