// Package validation turns a raw calculate-balance body into a domain request,
// reporting every invalid field at once.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gobalance/internal/core/domain"
)

// ErrValidationFailed is wrapped by every *Error.
var ErrValidationFailed = errors.New("validation failed")

// FieldError describes one rejected field. Field uses the JSON path of the
// request, e.g. "transactions[2].amount".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error lists every violation found in a request.
type Error struct {
	Details []FieldError
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Field)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(fields, ", "))
}

func (e *Error) Unwrap() error {
	return ErrValidationFailed
}

const maxEchoLength = 1024

// payload mirrors the request body with every scalar kept as text so that
// type mistakes are reported per field instead of aborting the decode.
type payload struct {
	InitialBalance string               `json:"initialBalance" validate:"required,decimal_amount,bounded_amount"`
	Transactions   []transactionPayload `json:"transactions" validate:"required,min=1,dive"`
}

type transactionPayload struct {
	Type   string `json:"type" validate:"required,oneof=credit debit"`
	Amount string `json:"amount" validate:"required,decimal_amount,bounded_amount,nonnegative_amount"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New()

	vld.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Empty strings pass every amount rule and are left to required.
	amountRules := map[string]func(d decimal.Decimal, err error) bool{
		"decimal_amount": func(_ decimal.Decimal, err error) bool {
			return !errors.Is(err, domain.ErrInvalidAmount)
		},
		"bounded_amount": func(_ decimal.Decimal, err error) bool {
			return err == nil
		},
		"nonnegative_amount": func(d decimal.Decimal, err error) bool {
			return err == nil && !d.IsNegative()
		},
	}
	for tag, rule := range amountRules {
		rule := rule
		if err := vld.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			str := fl.Field().String()
			if str == "" {
				return true
			}
			return rule(domain.ParseAmount(str))
		}); err != nil {
			return nil, fmt.Errorf("register '%s': %w", tag, err)
		}
	}

	return vld, nil
}

func getValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	return validate, errValidate
}

var boundedMessage = fmt.Sprintf("must have at most %d integer digits and %d decimal places",
	domain.MaxIntegerDigits, domain.MaxScale)

var messages = map[string]func(param string) string{
	"required":           func(string) string { return "is required" },
	"decimal_amount":     func(string) string { return "must be a number" },
	"bounded_amount":     func(string) string { return boundedMessage },
	"nonnegative_amount": func(string) string { return "must be greater than or equal to 0" },
	"oneof":              func(p string) string { return fmt.Sprintf("must be one of [%s]", p) },
	"min":                func(p string) string { return fmt.Sprintf("must contain at least %s item(s)", p) },
}

func message(fe validator.FieldError) string {
	if format, ok := messages[fe.Tag()]; ok {
		return format(fe.Param())
	}
	return fmt.Sprintf("failed '%s' check", fe.Tag())
}

// collector accumulates field errors in document order.
type collector struct {
	details []FieldError
	values  map[string]any
	rank    map[string]int
	shaped  map[string]bool
}

func newCollector() *collector {
	return &collector{
		values: make(map[string]any),
		rank:   make(map[string]int),
		shaped: make(map[string]bool),
	}
}

func (c *collector) visit(path string, raw json.RawMessage) {
	if _, ok := c.rank[path]; !ok {
		c.rank[path] = len(c.rank)
	}
	c.values[path] = rawValue(raw)
}

// reject records a structural error; validator output for the same path and
// its children is dropped afterwards.
func (c *collector) reject(path, msg string) {
	c.shaped[path] = true
	c.details = append(c.details, FieldError{Field: path, Message: msg, Value: c.values[path]})
}

func (c *collector) add(fe validator.FieldError) {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	for shaped := range c.shaped {
		if path == shaped || strings.HasPrefix(path, shaped+".") {
			return
		}
	}
	c.details = append(c.details, FieldError{Field: path, Message: message(fe), Value: c.values[path]})
}

func (c *collector) err() error {
	if len(c.details) == 0 {
		return nil
	}
	slices.SortStableFunc(c.details, func(a, b FieldError) int {
		return c.rank[a.Field] - c.rank[b.Field]
	})
	return &Error{Details: c.details}
}

// Parse validates body and converts it into a domain.BalanceRequest.
// On failure the returned error is an *Error carrying every violation; no
// partial request is returned.
func Parse(body []byte) (domain.BalanceRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return domain.BalanceRequest{}, &Error{Details: []FieldError{{Field: "body", Message: "must be a JSON object"}}}
	}

	c := newCollector()

	// 1. Flatten the body into text fields
	var p payload
	c.visit("initialBalance", fields["initialBalance"])
	p.InitialBalance = number(fields["initialBalance"])

	c.visit("transactions", fields["transactions"])
	if raw, ok := present(fields, "transactions"); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			c.reject("transactions", "must be an array")
		} else {
			p.Transactions = make([]transactionPayload, len(items))
			for i, item := range items {
				path := fmt.Sprintf("transactions[%d]", i)
				c.visit(path, item)

				var tx map[string]json.RawMessage
				if err := json.Unmarshal(item, &tx); err != nil || tx == nil {
					c.reject(path, "must be an object")
					continue
				}

				c.visit(path+".type", tx["type"])
				c.visit(path+".amount", tx["amount"])
				p.Transactions[i] = transactionPayload{Type: text(tx["type"]), Amount: number(tx["amount"])}
			}
		}
	}

	// 2. Run the field rules
	vld, err := getValidator()
	if err != nil {
		return domain.BalanceRequest{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if err := vld.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.BalanceRequest{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		for _, fe := range verrs {
			c.add(fe)
		}
	}
	if err := c.err(); err != nil {
		return domain.BalanceRequest{}, err
	}

	// 3. Normalize
	return toDomain(p)
}

// toDomain runs after the amount rules passed, so a parse failure here is a
// bug rather than bad input.
func toDomain(p payload) (domain.BalanceRequest, error) {
	initial, err := domain.ParseAmount(p.InitialBalance)
	if err != nil {
		return domain.BalanceRequest{}, fmt.Errorf("normalize initialBalance: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(p.Transactions))
	for i, t := range p.Transactions {
		amount, err := domain.ParseAmount(t.Amount)
		if err != nil {
			return domain.BalanceRequest{}, fmt.Errorf("normalize transactions[%d].amount: %w", i, err)
		}
		txs = append(txs, domain.Transaction{Type: domain.TransactionType(t.Type), Amount: amount})
	}

	return domain.BalanceRequest{InitialBalance: initial, Transactions: txs}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// present returns the raw value for key; null counts as absent.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// text renders a JSON value verbatim: strings are unquoted, anything else
// keeps its literal form so enum checks reject it.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// number is text with surrounding whitespace removed from numeric strings.
func number(raw json.RawMessage) string {
	return strings.TrimSpace(text(raw))
}

// rawValue decodes raw for echoing in a detail; oversized values are not echoed.
func rawValue(raw json.RawMessage) any {
	if len(raw) == 0 || len(raw) > maxEchoLength {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}
