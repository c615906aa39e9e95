package models

import (
	"strings"
	"time"
)

// Customer is a registry record as the duplicate engine sees it.
// Address, email, town and postal code are display fields: they are
// carried through to callers but never scored.
type Customer struct {
	ID          string     `json:"id" db:"id"`
	CompanyName string     `json:"company_name" db:"company_name"`
	Phone       string     `json:"phone" db:"phone"`
	TaxID       string     `json:"tax_id" db:"tax_id"`
	Address     string     `json:"address" db:"address"`
	Email       string     `json:"email" db:"email"`
	Town        string     `json:"town" db:"town"`
	PostalCode  string     `json:"postal_code" db:"postal_code"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DuplicateSearchInput is the record being checked before it is committed
// to the registry. All fields are optional; a search needs at least one
// non-blank field.
type DuplicateSearchInput struct {
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	TaxID       string `json:"tax_id"`
}

// Cleaned returns a copy with every field trimmed.
func (in DuplicateSearchInput) Cleaned() DuplicateSearchInput {
	return DuplicateSearchInput{
		CompanyName: strings.TrimSpace(in.CompanyName),
		Phone:       strings.TrimSpace(in.Phone),
		TaxID:       strings.TrimSpace(in.TaxID),
	}
}

// IsBlank reports whether no field carries a value.
func (in DuplicateSearchInput) IsBlank() bool {
	c := in.Cleaned()
	return c.CompanyName == "" && c.Phone == "" && c.TaxID == ""
}

// MatchReasons flags which fields crossed their individual significance
// thresholds for a scored candidate.
type MatchReasons struct {
	CompanyName bool `json:"company_name"`
	Phone       bool `json:"phone"`
	TaxID       bool `json:"tax_id"`
}

// DuplicateMatch is a candidate record augmented with its combined
// confidence score (0-100) and the reasons it matched. It is built once
// per search and never persisted.
type DuplicateMatch struct {
	Customer
	Score        int          `json:"score"`
	MatchReasons MatchReasons `json:"match_reasons"`
}

// UpsertCustomerRequest is the request body for creating or updating a
// customer record
type UpsertCustomerRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	TaxID       string `json:"tax_id" validate:"omitempty,max=16"`
	Address     string `json:"address" validate:"omitempty,max=255"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Town        string `json:"town" validate:"omitempty,max=128"`
	PostalCode  string `json:"postal_code" validate:"omitempty,max=16"`
}

// CheckDuplicatesRequest is the request for the duplicate check endpoint
type CheckDuplicatesRequest struct {
	CompanyName string `json:"company_name" validate:"omitempty,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	TaxID       string `json:"tax_id" validate:"omitempty,max=16"`
	Threshold   *int   `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// CheckDuplicatesResponse is the response for duplicate searches
type CheckDuplicatesResponse struct {
	Items      []DuplicateMatch `json:"items"`
	TotalCount int              `json:"total_count"`
}
