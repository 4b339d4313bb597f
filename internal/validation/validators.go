// Package validation holds the field rules for citizen records.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLength = 2
	maxNameLength = 50

	// MaxPhotoBytes is the largest accepted decoded photo size.
	MaxPhotoBytes = 5 * 1024 * 1024
)

var (
	nciPattern   = regexp.MustCompile(`^[0-9]{13}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s\-']+$`)
	photoPattern = regexp.MustCompile(`^data:image/(jpeg|jpg|png|gif);base64,`)
)

// Result is the outcome of a single field check. Value holds the cleaned input when Valid.
type Result struct {
	Valid bool
	Value string
	Error string
}

func invalid(msg string) Result {
	return Result{Error: msg}
}

// ValidateNCI reports whether value is exactly 13 digits once trimmed.
func ValidateNCI(value string) bool {
	return nciPattern.MatchString(strings.TrimSpace(value))
}

// ValidateName checks a last, first or parent name.
func ValidateName(value string) Result {
	name := strings.TrimSpace(value)
	if name == "" {
		return invalid("name is required")
	}

	length := utf8.RuneCountInString(name)
	if length < minNameLength {
		return invalid(fmt.Sprintf("name must contain at least %d characters", minNameLength))
	}
	if length > maxNameLength {
		return invalid(fmt.Sprintf("name cannot exceed %d characters", maxNameLength))
	}
	if !namePattern.MatchString(name) {
		return invalid("name may only contain letters, spaces, hyphens and apostrophes")
	}

	return Result{Valid: true, Value: name}
}

// ValidatePhoto accepts an empty photo or a base64 image data URI of at most MaxPhotoBytes.
// The size is estimated from the encoded length, the payload is not decoded.
func ValidatePhoto(value string) Result {
	if value == "" {
		return Result{Valid: true}
	}
	if !photoPattern.MatchString(value) {
		return invalid("photo must be a base64 data URI (JPEG, PNG, GIF)")
	}
	// len*3/4 > max, kept in integers
	if len(value)*3 > MaxPhotoBytes*4 {
		return invalid("photo cannot exceed 5MB")
	}
	return Result{Valid: true, Value: value}
}

// Payload is the set of citizen fields subject to validation.
type Payload struct {
	LastName   string
	FirstName  string
	FatherName string
	MotherName string
	NCI        string
	Photo      string
}

// ValidateCitizenPayload checks the name fields and returns one message per failing field.
// Parent names are only checked when present.
func ValidateCitizenPayload(p Payload) []string {
	var errs []string

	if r := ValidateName(p.LastName); !r.Valid {
		errs = append(errs, "nom: "+r.Error)
	}
	if r := ValidateName(p.FirstName); !r.Valid {
		errs = append(errs, "prenom: "+r.Error)
	}
	if strings.TrimSpace(p.FatherName) != "" {
		if r := ValidateName(p.FatherName); !r.Valid {
			errs = append(errs, "pere: "+r.Error)
		}
	}
	if strings.TrimSpace(p.MotherName) != "" {
		if r := ValidateName(p.MotherName); !r.Valid {
			errs = append(errs, "mere: "+r.Error)
		}
	}

	return errs
}

// ValidateCitizen runs ValidateCitizenPayload plus the NCI and photo rules.
func ValidateCitizen(p Payload) []string {
	errs := ValidateCitizenPayload(p)

	if !ValidateNCI(p.NCI) {
		errs = append(errs, "nci: must contain exactly 13 digits")
	}
	if r := ValidatePhoto(p.Photo); !r.Valid {
		errs = append(errs, "photo: "+r.Error)
	}

	return errs
}
