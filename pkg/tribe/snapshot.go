package tribe

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/models"
)

// FieldKey names one independent read of a tribe.
type FieldKey string

const (
	KeyName          FieldKey = "name"
	KeyDescription   FieldKey = "description"
	KeyOwner         FieldKey = "owner"
	KeyMaxSupply     FieldKey = "maxSupplies"
	KeyCurrentSupply FieldKey = "currentSupplies"
	KeyPrice         FieldKey = "prices"
	KeyMemberTiers   FieldKey = "memberTiers"
	KeyBalance       FieldKey = "balance"
	KeyListings      FieldKey = "listings"
	KeyHoldings      FieldKey = "holdings"
)

// Update is the outcome of one read, delivered as soon as it resolves.
type Update struct {
	Generation uint64
	Key        FieldKey
	Tier       models.Tier
	Value      interface{}
	Err        error
}

func (u Update) String() string {
	switch u.Key {
	case KeyMaxSupply, KeyCurrentSupply, KeyPrice:
		return fmt.Sprintf("%s[%d]", u.Key, u.Tier)
	}
	return string(u.Key)
}

// Snapshot is the display state of one tribe. Fields fill in
// independently in whatever order their reads resolve.
type Snapshot struct {
	Address common.Address
	// Generation is the newest generation applied to any field.
	Generation uint64

	Name          Field[string]
	Description   Field[string]
	Owner         Field[common.Address]
	MaxSupply     [models.TierCount]Field[*big.Int]
	CurrentSupply [models.TierCount]Field[*big.Int]
	Price         [models.TierCount]Field[*big.Int]
	MemberTiers   Field[models.TierCounts]
	Balance       Field[*big.Int]
	Listings      Field[[]models.Listing]
	Holdings      Field[[]models.Token]
}

// NewSnapshot returns a snapshot with every field loading.
func NewSnapshot(address common.Address) Snapshot {
	return Snapshot{Address: address}
}

// Apply merges u into the snapshot. Generations are tracked per field: an
// update older than the last one written to the same field is a stale
// response and is dropped, while other fields are unaffected. It reports
// whether u was applied.
func (s *Snapshot) Apply(u Update) bool {
	var applied bool
	switch u.Key {
	case KeyName:
		s.Name, applied = applyField(s.Name, u)
	case KeyDescription:
		s.Description, applied = applyField(s.Description, u)
	case KeyOwner:
		s.Owner, applied = applyField(s.Owner, u)
	case KeyMaxSupply, KeyCurrentSupply, KeyPrice:
		if !u.Tier.Valid() {
			return false
		}
		switch u.Key {
		case KeyMaxSupply:
			s.MaxSupply[u.Tier], applied = applyField(s.MaxSupply[u.Tier], u)
		case KeyCurrentSupply:
			s.CurrentSupply[u.Tier], applied = applyField(s.CurrentSupply[u.Tier], u)
		default:
			s.Price[u.Tier], applied = applyField(s.Price[u.Tier], u)
		}
	case KeyMemberTiers:
		s.MemberTiers, applied = applyField(s.MemberTiers, u)
	case KeyBalance:
		s.Balance, applied = applyField(s.Balance, u)
	case KeyListings:
		s.Listings, applied = applyField(s.Listings, u)
	case KeyHoldings:
		s.Holdings, applied = applyField(s.Holdings, u)
	default:
		return false
	}
	if applied && u.Generation > s.Generation {
		s.Generation = u.Generation
	}
	return applied
}

func applyField[T any](prev Field[T], u Update) (Field[T], bool) {
	if u.Generation < prev.gen {
		return prev, false
	}
	var next Field[T]
	if u.Err != nil {
		next = failedField(prev, u.Err)
	} else if v, ok := u.Value.(T); ok {
		next = readyField(v)
	} else {
		next = failedField(prev, fmt.Errorf("%s: unexpected value type %T", u, u.Value))
	}
	next.gen = u.Generation
	return next, true
}

// Stats derives per-tier statistics once supply reads for t have landed.
func (s Snapshot) Stats(t models.Tier) (TierStats, bool) {
	if !t.Valid() {
		return TierStats{}, false
	}
	max, ok1 := s.MaxSupply[t].Get()
	cur, ok2 := s.CurrentSupply[t].Get()
	if !ok1 || !ok2 {
		return TierStats{}, false
	}
	price, _ := s.Price[t].Get()
	return Derive(t, max, cur, price), true
}

// Access evaluates the tier gate from the snapshot's member tier counts.
func (s Snapshot) Access(connected bool) GateView {
	return Evaluate(connected, s.MemberTiers)
}
