package dialogue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// DraftProposer asks an extraction service for a complete proposed
// QuoteDraft given the current draft and the latest utterance. Any failure
// (timeout, malformed response, schema violation) is returned as an error;
// the engine treats every error identically: no change, no retry, never a
// word to the caller.
type DraftProposer interface {
	Propose(ctx context.Context, current QuoteDraft, utterance string) (QuoteDraft, error)
}

// draftSchemaJSON constrains AI responses to exactly the QuoteDraft field
// set. Responses with unknown fields or wrong types are discarded whole;
// a collaborator that improvises schema gets no vote.
const draftSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"service_category": {"type": "string", "enum": ["", "domestic", "commercial"]},
		"domestic_service_type": {"type": "string"},
		"commercial_service_type": {"type": "string"},
		"domestic_property_type": {"type": "string"},
		"commercial_property_type": {"type": "string"},
		"job_type": {"type": "string", "enum": ["", "one_time", "regular"]},
		"bedrooms": {"type": "integer", "minimum": 0},
		"bathrooms": {"type": "integer", "minimum": 0},
		"toilets": {"type": "integer", "minimum": 0},
		"kitchens": {"type": "integer", "minimum": 0},
		"postcode": {"type": "string"},
		"preferred_hours": {"type": "number", "minimum": 0},
		"visit_frequency_per_week": {"type": "number", "minimum": 0},
		"areas_scope": {"type": "string"},
		"extras": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["name"],
				"properties": {
					"name": {"type": "string"},
					"quantity": {"type": "integer", "minimum": 0}
				}
			}
		},
		"notes": {"type": "string"}
	}
}`

var draftSchema = mustCompileDraftSchema()

func mustCompileDraftSchema() *jsonschema.Schema {
	schema, err := jsonschema.NewCompiler().Compile([]byte(draftSchemaJSON))
	if err != nil {
		panic("dialogue: draft schema does not compile: " + err.Error())
	}
	return schema
}

// ParseProposedDraft validates raw collaborator output against the draft
// schema and decodes it. Strict: any shape mismatch rejects the whole
// proposal.
func ParseProposedDraft(raw []byte) (QuoteDraft, error) {
	result := draftSchema.ValidateJSON(raw)
	if !result.IsValid() {
		return QuoteDraft{}, fmt.Errorf("dialogue: proposed draft failed schema validation: %v", result.Errors)
	}
	var draft QuoteDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return QuoteDraft{}, fmt.Errorf("dialogue: proposed draft decode: %w", err)
	}
	draft.Submitted = false
	return draft, nil
}

// MergeDrafts combines the current draft with an AI-proposed one. A
// populated current value always wins: the deterministic extractors and
// guardrails take precedence over inference, and the AI only backfills
// fields the caller stated in passing. Category exclusivity is re-applied
// after the merge so a proposal can never smuggle in the opposite branch.
func MergeDrafts(current, proposed QuoteDraft) QuoteDraft {
	merged := current

	if merged.ServiceCategory == "" {
		merged.ServiceCategory = proposed.ServiceCategory
	}
	if merged.DomesticServiceType == "" {
		merged.DomesticServiceType = proposed.DomesticServiceType
	}
	if merged.CommercialServiceType == "" {
		merged.CommercialServiceType = proposed.CommercialServiceType
	}
	if merged.DomesticPropertyType == "" {
		merged.DomesticPropertyType = proposed.DomesticPropertyType
	}
	if merged.CommercialProperty == "" {
		merged.CommercialProperty = proposed.CommercialProperty
	}
	if merged.JobType == "" {
		merged.JobType = proposed.JobType
	}
	if merged.Bedrooms == 0 {
		merged.Bedrooms = proposed.Bedrooms
	}
	if merged.Bathrooms == 0 {
		merged.Bathrooms = proposed.Bathrooms
	}
	if merged.Toilets == 0 {
		merged.Toilets = proposed.Toilets
	}
	if merged.Kitchens == 0 {
		merged.Kitchens = proposed.Kitchens
	}
	if merged.Postcode == "" {
		// Only a value that survives the decoder's shape check is accepted;
		// the AI does not get to invent postcodes.
		if formatted, ok := DecodePostcode(proposed.Postcode); ok {
			merged.Postcode = formatted
		}
	}
	if merged.PreferredHours == 0 {
		merged.PreferredHours = proposed.PreferredHours
	}
	if merged.VisitsPerWeek == 0 {
		merged.VisitsPerWeek = proposed.VisitsPerWeek
	}
	if merged.AreasScope == "" {
		merged.AreasScope = proposed.AreasScope
	}
	if len(merged.Extras) == 0 {
		for _, e := range proposed.Extras {
			if allowedExtra(e.Name) {
				merged.UpsertExtra(e.Name, e.Quantity)
			}
		}
	}
	if merged.Notes == "" {
		merged.Notes = proposed.Notes
	}

	if merged.ServiceCategory != "" {
		merged.SetCategory(merged.ServiceCategory)
	}
	return merged
}

func allowedExtra(name string) bool {
	for _, allowed := range ExtrasAllowList {
		if name == allowed {
			return true
		}
	}
	return false
}
