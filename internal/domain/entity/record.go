package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is one of the fixed purchase categories shown to users.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryClothing       Category = "Clothing"
	CategoryFuelGas        Category = "Fuel/Gas"
	CategoryHousing        Category = "Housing"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategorySavings        Category = "Savings"
	CategoryOther          Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryClothing,
	CategoryFuelGas,
	CategoryHousing,
	CategoryTransportation,
	CategoryEntertainment,
	CategorySavings,
	CategoryOther,
}

// IsValid reports whether c belongs to the fixed category set.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// RecordKind distinguishes spending from income entries.
type RecordKind string

const (
	RecordKindExpense RecordKind = "expense"
	RecordKindIncome  RecordKind = "income"
)

// IsValid reports whether k is a known record kind.
func (k RecordKind) IsValid() bool {
	return k == RecordKindExpense || k == RecordKindIncome
}

// MaxRating is the highest subjective score a purchase can receive.
const MaxRating = 5

var unsignedDecimalPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// Money columns hold 13 integer digits and 2 decimal places.
const (
	MaxAmountIntegerDigits = 13
	MaxAmountDecimalPlaces = 2
)

var maxAmount = decimal.New(1, MaxAmountIntegerDigits)

// Record is a single financial event owned by one user. Records are written once and never changed.
type Record struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Category    Category
	Kind        RecordKind
	Timestamp   time.Time
	Rating      int
	Description string
}

// IsIncome returns true for income entries.
func (r Record) IsIncome() bool {
	return r.Kind == RecordKindIncome
}

// NewRecord validates the user-entered values and creates a Record stamped with createdAt.
func NewRecord(
	userID uuid.UUID,
	description string,
	amount string,
	category Category,
	kind RecordKind,
	rating int,
	createdAt time.Time,
) (*Record, error) {
	parsed, err := ParseMoney(amount)
	if err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if kind == "" {
		kind = RecordKindExpense
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	if rating < 0 || rating > MaxRating {
		return nil, fmt.Errorf("rating must be between 0 and %d", MaxRating)
	}

	return &Record{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      parsed,
		Category:    category,
		Kind:        kind,
		Timestamp:   createdAt.UTC(),
		Rating:      rating,
		Description: strings.TrimSpace(description),
	}, nil
}

// ParseAmount converts an unsigned decimal string such as "12", "12.5" or ".5" into a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "." || !unsignedDecimalPattern.MatchString(value) {
		return decimal.Zero, fmt.Errorf("amount %q is not an unsigned decimal", raw)
	}
	if strings.HasPrefix(value, ".") {
		value = "0" + value
	}
	value = strings.TrimSuffix(value, ".")
	return decimal.NewFromString(value)
}

// ParseMoney parses an amount a user enters. On top of ParseAmount it rejects values with
// more than MaxAmountDecimalPlaces decimals or MaxAmountIntegerDigits integer digits.
func ParseMoney(raw string) (decimal.Decimal, error) {
	amount, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.Equal(amount.Truncate(MaxAmountDecimalPlaces)) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimal places", raw, MaxAmountDecimalPlaces)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d integer digits", raw, MaxAmountIntegerDigits)
	}
	return amount, nil
}

// RawRecord is a record exactly as persisted. The store does not enforce a schema, so any
// field may be missing or malformed.
type RawRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      string
	Category    string
	Kind        *string
	Timestamp   *time.Time
	Rating      int
	Description string
}

// RecordDecodeError describes why a persisted record could not be turned into a Record.
type RecordDecodeError struct {
	RecordID uuid.UUID
	Reason   string
}

// Error implements the error interface.
func (e *RecordDecodeError) Error() string {
	return fmt.Sprintf("record %s: %s", e.RecordID, e.Reason)
}

// DecodeRecord validates a persisted record. It returns either a usable Record or a
// *RecordDecodeError, never both.
func DecodeRecord(raw RawRecord) (Record, error) {
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return Record{}, &RecordDecodeError{RecordID: raw.ID, Reason: err.Error()}
	}
	if raw.Timestamp == nil || raw.Timestamp.IsZero() {
		return Record{}, &RecordDecodeError{RecordID: raw.ID, Reason: "missing timestamp"}
	}

	kind := RecordKindExpense
	if raw.Kind != nil && *raw.Kind != "" {
		kind = RecordKind(*raw.Kind)
		if !kind.IsValid() {
			return Record{}, &RecordDecodeError{RecordID: raw.ID, Reason: fmt.Sprintf("unknown kind %q", *raw.Kind)}
		}
	}

	// Unknown labels from older clients still count as spending.
	category := Category(raw.Category)
	if !category.IsValid() {
		category = CategoryOther
	}

	return Record{
		ID:          raw.ID,
		UserID:      raw.UserID,
		Amount:      amount,
		Category:    category,
		Kind:        kind,
		Timestamp:   raw.Timestamp.UTC(),
		Rating:      raw.Rating,
		Description: raw.Description,
	}, nil
}

// DecodeRecords splits persisted records into valid ones and the decode failures.
func DecodeRecords(raws []RawRecord) ([]Record, []*RecordDecodeError) {
	records := make([]Record, 0, len(raws))
	var failures []*RecordDecodeError
	for _, raw := range raws {
		record, err := DecodeRecord(raw)
		if err != nil {
			failures = append(failures, err.(*RecordDecodeError))
			continue
		}
		records = append(records, record)
	}
	return records, failures
}

// RecordSnapshot is the complete record set of one user at a point in time.
type RecordSnapshot struct {
	UserID   uuid.UUID
	Records  []Record
	Skipped  int
	LoadedAt time.Time
}
