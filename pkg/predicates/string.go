package predicates

import (
	"encoding/csv"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/funvibe/refined/internal/typesystem"
)

// DefaultCsvSeparator is used by Csv when no separator is given.
const DefaultCsvSeparator = ","

func trimmed(value string, _ ...any) bool {
	return strings.TrimSpace(value) == value
}

// unsigned strips one leading sign.
func unsigned(s string) string {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// validInt accepts an optionally signed decimal digit string of any length.
// Leading zeros are allowed.
func validInt(value string, _ ...any) bool {
	return isDigits(unsigned(strings.TrimSpace(value)))
}

func validFloat(value string, _ ...any) bool {
	s := strings.TrimSpace(value)
	if digits := unsigned(s); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return true
	}
	// Out-of-range literals still denote a float (±Inf).
	return errors.Is(err, strconv.ErrRange)
}

// wellFormedXML accepts a document with exactly one root element. Outside the
// root only whitespace, comments, processing instructions and a doctype may
// appear. An XML declaration must be the very first token.
func wellFormedXML(value string, _ ...any) bool {
	dec := xml.NewDecoder(strings.NewReader(value))
	depth, roots := 0, 0
	for first := true; ; first = false {
		tok, err := dec.Token()
		if err == io.EOF {
			return roots == 1 && depth == 0
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" && !first {
				return false
			}
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return false
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return false
			}
		}
	}
}

func wellFormedCSV(value string, aux ...any) bool {
	sep := DefaultCsvSeparator
	if len(aux) > 0 {
		s, ok := aux[0].(string)
		if !ok {
			return false
		}
		sep = s
	}
	if utf8.RuneCountInString(sep) != 1 {
		return false
	}
	r := csv.NewReader(strings.NewReader(value))
	r.Comma, _ = utf8.DecodeRuneInString(sep)
	r.FieldsPerRecord = -1
	for {
		_, err := r.Read()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// ipv4 rejects IPv4-mapped IPv6 forms, which govalidator reports as IPv4.
func ipv4(value string, _ ...any) bool {
	return govalidator.IsIPv4(value) && !strings.Contains(value, ":")
}

// ipv6 accepts an optional non-empty zone after '%'.
func ipv6(value string, _ ...any) bool {
	addr, zone, hasZone := strings.Cut(value, "%")
	if hasZone && zone == "" {
		return false
	}
	return govalidator.IsIPv6(addr)
}

func email(value string, _ ...any) bool {
	return govalidator.IsEmail(value)
}

func validURL(value string, _ ...any) bool {
	return govalidator.IsURL(value)
}

var (
	tagValidator     *validator.Validate
	tagValidatorOnce sync.Once
)

func tags() *validator.Validate {
	tagValidatorOnce.Do(func() {
		tagValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return tagValidator
}

// satisfiesTag runs validator's Var with the tag in aux[0]. An unknown tag
// panics inside validator, which Evaluate reports as false.
func satisfiesTag(value any, aux ...any) bool {
	if len(aux) < 1 {
		return false
	}
	tag, ok := aux[0].(string)
	if !ok {
		return false
	}
	return tags().Var(value, tag) == nil
}

func validUUID(value string, _ ...any) bool {
	return uuid.Validate(value) == nil
}

// Trimmed holds when the string has no leading or trailing whitespace.
func Trimmed() Predicate { return Typed[string]("Trimmed", trimmed) }

// ValidInt holds when the string parses as an integer of any size.
func ValidInt() Predicate { return Typed[string]("ValidInt", validInt) }

// ValidFloat holds when the string parses as a float.
func ValidFloat() Predicate { return Typed[string]("ValidFloat", validFloat) }

// Xml holds when the string is a well-formed XML document.
func Xml() Predicate { return Typed[string]("Xml", wellFormedXML) }

// Csv holds when every row parses with the given single-character separator
// (DefaultCsvSeparator when omitted). Rows may differ in field count.
func Csv(separator ...string) Predicate {
	if len(separator) == 0 {
		return Typed[string]("Csv", wellFormedCSV)
	}
	return Typed[string]("Csv", wellFormedCSV, separator[0])
}

// IPv4 holds for a textual IPv4 address.
func IPv4() Predicate { return Typed[string]("IPv4", ipv4) }

// IPv6 holds for a textual IPv6 address, including IPv4-mapped forms and
// zones such as fe80::1%eth0.
func IPv6() Predicate { return Typed[string]("IPv6", ipv6) }

// Email holds for an address accepted by govalidator.IsEmail.
func Email() Predicate { return Typed[string]("Email", email) }

// URL holds for a URL accepted by govalidator.IsURL.
func URL() Predicate { return Typed[string]("URL", validURL) }

// Tag holds when the value passes the go-playground/validator tag, e.g.
// "hostname_rfc1123" or "min=3,max=20". Malformed tags never hold.
func Tag[T any](tag string) Predicate {
	return New("Tag", typesystem.Of[T](), satisfiesTag, tag)
}

// UUID holds for the textual forms accepted by uuid.Parse.
func UUID() Predicate { return Typed[string]("UUID", validUUID) }

// Matches holds when the string matches pattern. The pattern is compiled once
// here; an invalid pattern makes the predicate always fail.
func Matches(pattern string) Predicate {
	re, err := regexp.Compile(pattern)
	return Typed[string]("Matches", func(value string, _ ...any) bool {
		return err == nil && re.MatchString(value)
	}, pattern)
}
