package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Benefit is a free-text post gated to holders of one tier in one tribe.
// Stored one document per (tribe, tier); never edited or deleted.
type Benefit struct {
	ID          string `json:"id" db:"id"`
	Tribe       string `json:"tribe" db:"tribe"`
	BenefitText string `json:"benefit_text" db:"benefit_text"`
	Tier        Tier   `json:"tier" db:"tier"`
}

// BenefitDocument is the document store layout of a Benefit.
type BenefitDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Tribe       string             `bson:"tribe"`
	BenefitText string             `bson:"benefit_text"`
	Tier        int32              `bson:"tier"`
}

// ToBenefit converts a stored document to the API model. A stored tier
// outside {0,1,2} is an error rather than being truncated into range.
func (d BenefitDocument) ToBenefit() (Benefit, error) {
	tier, err := ParseTier(int64(d.Tier))
	if err != nil {
		return Benefit{}, err
	}
	return Benefit{
		ID:          d.ID.Hex(),
		Tribe:       d.Tribe,
		BenefitText: d.BenefitText,
		Tier:        tier,
	}, nil
}

// BenefitsByTier groups benefit texts by tier key. All three keys are
// always present; locked or empty tiers carry an empty slice.
type BenefitsByTier map[string][]string

// NewBenefitsByTier returns a map with an empty slice under every tier key.
func NewBenefitsByTier() BenefitsByTier {
	out := make(BenefitsByTier, TierCount)
	for _, t := range AllTiers {
		out[t.Key()] = []string{}
	}
	return out
}

// TribeRef identifies the tribe a benefit response is about.
type TribeRef struct {
	Address string `json:"address"`
}

// BenefitsResponse is the body of GET /api/benefits.
type BenefitsResponse struct {
	Tribe      TribeRef       `json:"tribe"`
	TierCounts []string       `json:"tierCounts"`
	Benefits   BenefitsByTier `json:"benefits"`
}

// MultiBenefitRequest is the body of POST /api/benefit/multi. Tiers are kept
// raw so that non-integer values can be rejected instead of coerced.
type MultiBenefitRequest struct {
	Tribe       string            `json:"tribe"`
	BenefitText string            `json:"benefit_text"`
	Tiers       []json.RawMessage `json:"tiers"`
}

// InsertResult reports one inserted benefit record.
type InsertResult struct {
	Tier       Tier   `json:"tier"`
	InsertedID string `json:"insertedId"`
}

// MultiBenefitResponse is the body returned after inserting benefits.
type MultiBenefitResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Results []InsertResult `json:"results"`
}
