package dialogue

import "strings"

// Service categories.
const (
	CategoryDomestic   = "domestic"
	CategoryCommercial = "commercial"
)

// Job types.
const (
	JobTypeOneTime = "one_time"
	JobTypeRegular = "regular"
)

// Normalized domestic service types.
const (
	ServiceRegularDomestic  = "Regular Domestic Cleaning"
	ServiceDeepClean        = "Deep Clean"
	ServiceEndOfTenancy     = "End of Tenancy Clean"
	ServicePostConstruction = "Post-construction Clean"
	ServiceDisinfection     = "Disinfection Clean"
)

// Normalized commercial service types.
const (
	ServiceRegularCommercial      = "Regular Commercial Cleaning"
	ServiceCommercialDeepClean    = "One-off Commercial Deep Clean"
	ServiceCommercialPostBuild    = "Post-construction Commercial Clean"
	ServiceCommercialDisinfection = "Commercial Disinfection Clean"
)

// flatFeeDomesticServices are priced per job rather than per hour. Toilets
// are counted separately from bathrooms only for these (and for commercial).
var flatFeeDomesticServices = map[string]bool{
	ServiceEndOfTenancy:     true,
	ServicePostConstruction: true,
}

// ExtrasAllowList is the fixed set of bookable extras. Extras mentioned by a
// caller are normalized onto these names and never stored raw.
var ExtrasAllowList = []string{
	"Oven cleaning",
	"Internal windows",
	"Fridge cleaning",
	"Freezer cleaning",
	"Carpet cleaning",
	"Upholstery cleaning",
	"Ironing",
	"Balcony cleaning",
	"Blinds cleaning",
}

// Extra is a single add-on service. Identity is Name; a draft holds at most
// one entry per name. Quantity stays 0 until the caller confirms a number.
type Extra struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// QuoteDraft is the priceable record built up across the call. Fields for the
// opposite service category are always empty: SetCategory and the merge rule
// both enforce the exclusivity.
type QuoteDraft struct {
	ServiceCategory       string  `json:"service_category,omitempty"`
	DomesticServiceType   string  `json:"domestic_service_type,omitempty"`
	CommercialServiceType string  `json:"commercial_service_type,omitempty"`
	DomesticPropertyType  string  `json:"domestic_property_type,omitempty"`
	CommercialProperty    string  `json:"commercial_property_type,omitempty"`
	JobType               string  `json:"job_type,omitempty"`
	Bedrooms              int     `json:"bedrooms,omitempty"`
	Bathrooms             int     `json:"bathrooms,omitempty"`
	Toilets               int     `json:"toilets,omitempty"`
	Kitchens              int     `json:"kitchens,omitempty"`
	Postcode              string  `json:"postcode,omitempty"`
	PreferredHours        float64 `json:"preferred_hours,omitempty"`
	VisitsPerWeek         float64 `json:"visit_frequency_per_week,omitempty"`
	AreasScope            string  `json:"areas_scope,omitempty"`
	Extras                []Extra `json:"extras,omitempty"`
	Notes                 string  `json:"notes,omitempty"`

	// Submitted marks the draft as priced; further mutation requires an
	// explicit correction, which clears the flag and forces re-pricing.
	Submitted bool `json:"submitted,omitempty"`
}

// SetCategory records the service category and clears every field belonging
// to the opposite branch, keeping the category axes mutually exclusive.
func (q *QuoteDraft) SetCategory(category string) {
	if category != CategoryDomestic && category != CategoryCommercial {
		return
	}
	q.ServiceCategory = category
	if category == CategoryDomestic {
		q.CommercialServiceType = ""
		q.CommercialProperty = ""
	} else {
		q.DomesticServiceType = ""
		q.DomesticPropertyType = ""
	}
}

// ServiceType returns the populated service type for the draft's category.
func (q *QuoteDraft) ServiceType() string {
	if q.ServiceCategory == CategoryCommercial {
		return q.CommercialServiceType
	}
	return q.DomesticServiceType
}

// PropertyType returns the populated property type for the draft's category.
func (q *QuoteDraft) PropertyType() string {
	if q.ServiceCategory == CategoryCommercial {
		return q.CommercialProperty
	}
	return q.DomesticPropertyType
}

// IsHourly reports whether this job is priced by the hour. All commercial
// work is hourly; domestic work is hourly unless the service carries a flat
// fee (end of tenancy, post-construction).
func (q *QuoteDraft) IsHourly() bool {
	if q.ServiceCategory == CategoryCommercial {
		return true
	}
	return q.DomesticServiceType != "" && !flatFeeDomesticServices[q.DomesticServiceType]
}

// CountsToiletsSeparately reports whether toilets are collected as their own
// count rather than folded into bathrooms.
func (q *QuoteDraft) CountsToiletsSeparately() bool {
	if q.ServiceCategory == CategoryCommercial {
		return true
	}
	return flatFeeDomesticServices[q.DomesticServiceType]
}

// UpsertExtra records a mention or confirmed quantity for an extra. Identity
// is the canonical name; a repeated mention updates the existing entry.
// Returns true if the extra was newly added.
func (q *QuoteDraft) UpsertExtra(name string, quantity int) bool {
	if quantity < 0 {
		quantity = 0
	}
	for i := range q.Extras {
		if strings.EqualFold(q.Extras[i].Name, name) {
			if quantity > 0 {
				q.Extras[i].Quantity = quantity
			}
			return false
		}
	}
	q.Extras = append(q.Extras, Extra{Name: name, Quantity: quantity})
	return true
}

// ExtraQuantity returns the confirmed quantity for a named extra.
func (q *QuoteDraft) ExtraQuantity(name string) (int, bool) {
	for _, e := range q.Extras {
		if strings.EqualFold(e.Name, name) {
			return e.Quantity, true
		}
	}
	return 0, false
}

// RemoveExtra drops an extra the caller decided against (quantity zero).
func (q *QuoteDraft) RemoveExtra(name string) {
	for i := range q.Extras {
		if strings.EqualFold(q.Extras[i].Name, name) {
			q.Extras = append(q.Extras[:i], q.Extras[i+1:]...)
			return
		}
	}
}

// Quote-critical fields, in the order the completeness gate reports them.
const (
	FieldCategory     = "service_category"
	FieldServiceType  = "service_type"
	FieldPropertyType = "property_type"
	FieldJobType      = "job_type"
	FieldPostcode     = "postcode"
	FieldRooms        = "rooms"
	FieldHours        = "preferred_hours"
	FieldFrequency    = "visit_frequency"
	FieldExtraQty     = "extra_quantity"
)

// MissingQuoteField returns the first quote-critical field that blocks
// pricing submission, or "" when the draft is complete. The postcode check
// accepts the fallback path: a draft without a postcode passes provided the
// notes carry the captured location.
func (q *QuoteDraft) MissingQuoteField() string {
	return q.missingQuoteField(false, false)
}

// missingQuoteField takes flags for room counts the caller has explicitly
// answered, so a truthful zero (a studio flat with no separate bedroom)
// does not read as an unasked question.
func (q *QuoteDraft) missingQuoteField(bedroomsAnswered, bathroomsAnswered bool) string {
	switch q.ServiceCategory {
	case CategoryDomestic, CategoryCommercial:
	default:
		return FieldCategory
	}
	if q.ServiceType() == "" {
		return FieldServiceType
	}
	if q.PropertyType() == "" {
		return FieldPropertyType
	}
	if q.needsJobType() && q.JobType == "" {
		return FieldJobType
	}
	if q.Postcode == "" && q.Notes == "" {
		return FieldPostcode
	}
	if q.ServiceCategory == CategoryDomestic {
		if (q.Bedrooms == 0 && !bedroomsAnswered) || (q.Bathrooms == 0 && !bathroomsAnswered) {
			return FieldRooms
		}
	} else if q.Kitchens == 0 && q.Toilets == 0 && q.AreasScope == "" && q.Notes == "" {
		return FieldRooms
	}
	if q.IsHourly() && q.PreferredHours == 0 {
		return FieldHours
	}
	if q.JobType == JobTypeRegular && q.VisitsPerWeek == 0 {
		return FieldFrequency
	}
	for _, e := range q.Extras {
		if e.Quantity == 0 {
			return FieldExtraQty
		}
	}
	return ""
}

func (q *QuoteDraft) needsJobType() bool {
	if q.ServiceCategory == CategoryCommercial {
		return true
	}
	return q.IsHourly()
}

// ApplyMinimumHours raises PreferredHours to the floor for the job's branch.
// Applied once, immediately before pricing submission; idempotent.
func (q *QuoteDraft) ApplyMinimumHours() {
	if !q.IsHourly() {
		return
	}
	floor := 3.0
	switch {
	case q.ServiceCategory == CategoryDomestic && q.JobType == JobTypeRegular:
		floor = 3
	case q.ServiceCategory == CategoryDomestic:
		floor = 5
	case q.JobType == JobTypeOneTime:
		floor = 5
	case q.VisitsPerWeek >= 3:
		floor = 1
	}
	if q.PreferredHours < floor {
		q.PreferredHours = floor
	}
}

// AppendNote accumulates fallback information (failed postcode capture,
// size or rooms descriptions) as free text.
func (q *QuoteDraft) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if q.Notes == "" {
		q.Notes = note
		return
	}
	q.Notes += "; " + note
}

// BookingDraft is collected only after the caller accepts the quoted price.
type BookingDraft struct {
	FullName      string `json:"full_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
}

// Complete reports whether every booking field is present. Postcode is not
// required here: a missing one falls back to the quote postcode at
// submission time.
func (b *BookingDraft) Complete() bool {
	return b.FullName != "" && b.Phone != "" && b.Email != "" &&
		b.Address != "" && b.PreferredDate != "" && b.PreferredTime != ""
}
