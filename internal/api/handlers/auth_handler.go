package handlers

import (
	"net/http"

	"github.com/zatekoja/businesstrust/backend/internal/api/middleware"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// AuthHandler handles signup, login and logout for companies and customers
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type companySignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type customerSignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type companyAuthResponse struct {
	Token   string             `json:"token"`
	Company companyProfileView `json:"company"`
}

type customerAuthResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// CompanySignup handles POST /api/company/signup
func (h *AuthHandler) CompanySignup(w http.ResponseWriter, r *http.Request) {
	var req companySignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.SignupCompany(r.Context(), services.CompanySignup{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, companyAuthResponse{
		Token:   res.Token,
		Company: newCompanyProfileView(res.Company),
	})
}

// CompanyLogin handles POST /api/company/login
func (h *AuthHandler) CompanyLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.LoginCompany(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, companyAuthResponse{
		Token:   res.Token,
		Company: newCompanyProfileView(res.Company),
	})
}

// CustomerSignup handles POST /api/customer/signup
func (h *AuthHandler) CustomerSignup(w http.ResponseWriter, r *http.Request) {
	var req customerSignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.SignupCustomer(r.Context(), services.CustomerSignup{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, customerAuthResponse{Token: res.Token, User: newUserView(res.User)})
}

// CustomerLogin handles POST /api/customer/login
func (h *AuthHandler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.LoginCustomer(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, customerAuthResponse{Token: res.Token, User: newUserView(res.User)})
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), middleware.TokenFromContext(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func newUserView(u *entities.User) userView {
	return userView{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
