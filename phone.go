package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is the region used to parse phone numbers that carry no
// country prefix.
var DefaultPhoneRegion = "US"

// NormalizePhoneNumber parses a raw phone number and returns it in E.164
// format. An empty input is passed through, the field is optional.
func NormalizePhoneNumber(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "invalid phone number").
			WithTextCode(TextCodeInvalidPhone).
			WithCode(errors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid phone number", errors.CategoryValidation).
			WithTextCode(TextCodeInvalidPhone).
			WithCode(errors.CodeBadRequest)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
