package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCategoryClearsOppositeBranch(t *testing.T) {
	q := QuoteDraft{}
	q.SetCategory(CategoryDomestic)
	q.DomesticServiceType = ServiceDeepClean
	q.DomesticPropertyType = PropertySemiDetached

	q.SetCategory(CategoryCommercial)
	assert.Equal(t, CategoryCommercial, q.ServiceCategory)
	assert.Empty(t, q.DomesticServiceType)
	assert.Empty(t, q.DomesticPropertyType)

	q.CommercialServiceType = ServiceRegularCommercial
	q.SetCategory(CategoryDomestic)
	assert.Empty(t, q.CommercialServiceType)

	// unknown category is a no-op
	q.SetCategory("industrial")
	assert.Equal(t, CategoryDomestic, q.ServiceCategory)
}

func TestUpsertExtra(t *testing.T) {
	q := QuoteDraft{}

	added := q.UpsertExtra("Oven cleaning", 0)
	assert.True(t, added)
	require.Len(t, q.Extras, 1)

	// repeated mention does not duplicate
	added = q.UpsertExtra("Oven cleaning", 0)
	assert.False(t, added)
	require.Len(t, q.Extras, 1)

	// confirming a quantity updates in place
	q.UpsertExtra("Oven cleaning", 1)
	qty, ok := q.ExtraQuantity("Oven cleaning")
	assert.True(t, ok)
	assert.Equal(t, 1, qty)

	// a later zero does not wipe a confirmed quantity
	q.UpsertExtra("Oven cleaning", 0)
	qty, _ = q.ExtraQuantity("Oven cleaning")
	assert.Equal(t, 1, qty)

	q.RemoveExtra("Oven cleaning")
	assert.Empty(t, q.Extras)
}

func TestIsHourly(t *testing.T) {
	tests := []struct {
		name  string
		draft QuoteDraft
		want  bool
	}{
		{"domestic regular", QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceRegularDomestic}, true},
		{"domestic deep", QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceDeepClean}, true},
		{"end of tenancy flat fee", QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceEndOfTenancy}, false},
		{"post construction flat fee", QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServicePostConstruction}, false},
		{"commercial always hourly", QuoteDraft{ServiceCategory: CategoryCommercial, CommercialServiceType: ServiceRegularCommercial}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.draft.IsHourly())
		})
	}
}

func TestCountsToiletsSeparately(t *testing.T) {
	q := QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceRegularDomestic}
	assert.False(t, q.CountsToiletsSeparately())

	q.DomesticServiceType = ServiceEndOfTenancy
	assert.True(t, q.CountsToiletsSeparately())

	q = QuoteDraft{ServiceCategory: CategoryCommercial}
	assert.True(t, q.CountsToiletsSeparately())
}

func TestMissingQuoteFieldOrder(t *testing.T) {
	q := QuoteDraft{}
	assert.Equal(t, FieldCategory, q.MissingQuoteField())

	q.SetCategory(CategoryDomestic)
	assert.Equal(t, FieldServiceType, q.MissingQuoteField())

	q.DomesticServiceType = ServiceRegularDomestic
	assert.Equal(t, FieldPropertyType, q.MissingQuoteField())

	q.DomesticPropertyType = PropertyFlat
	assert.Equal(t, FieldJobType, q.MissingQuoteField())

	q.JobType = JobTypeRegular
	assert.Equal(t, FieldPostcode, q.MissingQuoteField())

	q.Postcode = "SW1A 1AA"
	assert.Equal(t, FieldRooms, q.MissingQuoteField())

	q.Bedrooms = 2
	q.Bathrooms = 1
	assert.Equal(t, FieldHours, q.MissingQuoteField())

	q.PreferredHours = 3
	assert.Equal(t, FieldFrequency, q.MissingQuoteField())

	q.VisitsPerWeek = 1
	assert.Empty(t, q.MissingQuoteField())

	// an unconfirmed extra blocks submission
	q.UpsertExtra("Oven cleaning", 0)
	assert.Equal(t, FieldExtraQty, q.MissingQuoteField())
	q.UpsertExtra("Oven cleaning", 1)
	assert.Empty(t, q.MissingQuoteField())
}

func TestMissingQuoteFieldPostcodeFallback(t *testing.T) {
	q := QuoteDraft{}
	q.SetCategory(CategoryDomestic)
	q.DomesticServiceType = ServiceEndOfTenancy
	q.DomesticPropertyType = PropertyTerraced
	q.Bedrooms = 3
	q.Bathrooms = 1

	// no postcode, but a captured location note stands in for it
	assert.Equal(t, FieldPostcode, q.MissingQuoteField())
	q.AppendNote("location: Leeds, near the town hall")
	assert.Empty(t, q.MissingQuoteField())
}

func TestMissingQuoteFieldAnsweredZeroRooms(t *testing.T) {
	s := NewCallSession("call-1")
	s.Quote.SetCategory(CategoryDomestic)
	s.Quote.DomesticServiceType = ServiceRegularDomestic
	s.Quote.DomesticPropertyType = PropertyStudio
	s.Quote.JobType = JobTypeRegular
	s.Quote.Postcode = "SW1A 1AA"
	s.Quote.Bathrooms = 1
	s.Quote.PreferredHours = 3
	s.Quote.VisitsPerWeek = 1

	// an unasked zero still blocks
	assert.Equal(t, FieldRooms, s.MissingQuoteField())

	// a studio caller who answered "none" passes the gate
	s.MarkAnswered(StageBedrooms)
	assert.Empty(t, s.MissingQuoteField())
}

func TestApplyMinimumHours(t *testing.T) {
	tests := []struct {
		name  string
		draft QuoteDraft
		want  float64
	}{
		{
			"domestic regular floor of three",
			QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceRegularDomestic, JobType: JobTypeRegular, PreferredHours: 2},
			3,
		},
		{
			"domestic one-off floor of five",
			QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceDeepClean, JobType: JobTypeOneTime, PreferredHours: 2},
			5,
		},
		{
			"commercial one-time floor of five",
			QuoteDraft{ServiceCategory: CategoryCommercial, CommercialServiceType: ServiceCommercialDeepClean, JobType: JobTypeOneTime, PreferredHours: 1},
			5,
		},
		{
			"commercial frequent visits floor of one",
			QuoteDraft{ServiceCategory: CategoryCommercial, CommercialServiceType: ServiceRegularCommercial, JobType: JobTypeRegular, VisitsPerWeek: 5, PreferredHours: 0.5},
			1,
		},
		{
			"commercial infrequent visits floor of three",
			QuoteDraft{ServiceCategory: CategoryCommercial, CommercialServiceType: ServiceRegularCommercial, JobType: JobTypeRegular, VisitsPerWeek: 1, PreferredHours: 2},
			3,
		},
		{
			"above floor untouched",
			QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceRegularDomestic, JobType: JobTypeRegular, PreferredHours: 6},
			6,
		},
		{
			"flat fee jobs untouched",
			QuoteDraft{ServiceCategory: CategoryDomestic, DomesticServiceType: ServiceEndOfTenancy, PreferredHours: 0},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.draft.ApplyMinimumHours()
			assert.Equal(t, tt.want, tt.draft.PreferredHours)

			// idempotent
			tt.draft.ApplyMinimumHours()
			assert.Equal(t, tt.want, tt.draft.PreferredHours)
		})
	}
}

func TestAppendNote(t *testing.T) {
	q := QuoteDraft{}
	q.AppendNote("  ")
	assert.Empty(t, q.Notes)

	q.AppendNote("location: Leeds")
	q.AppendNote("callback requested: +447700900982")
	assert.Equal(t, "location: Leeds; callback requested: +447700900982", q.Notes)
}

func TestBookingDraftComplete(t *testing.T) {
	b := BookingDraft{
		FullName:      "John Smith",
		Phone:         "+447700900982",
		Email:         "john@example.org",
		Address:       "12 Baker Street",
		PreferredDate: "14 March",
		PreferredTime: "2pm",
	}
	assert.True(t, b.Complete())

	b.Phone = ""
	assert.False(t, b.Complete())
}
