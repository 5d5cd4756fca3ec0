package chain

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/models"
)

// single enforces the arity of a one-output call.
func single(values []interface{}) (interface{}, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("expected 1 return value, got %d", len(values))
	}
	return values[0], nil
}

func decodeBigInt(values []interface{}) (*big.Int, error) {
	v, err := single(values)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("expected uint256, got %T", v)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative uint256 %s", n)
	}
	return n, nil
}

func decodeString(values []interface{}) (string, error) {
	v, err := single(values)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func decodeAddress(values []interface{}) (common.Address, error) {
	v, err := single(values)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("expected address, got %T", v)
	}
	return a, nil
}

func decodeAddresses(values []interface{}) ([]common.Address, error) {
	v, err := single(values)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]common.Address)
	if !ok {
		return nil, fmt.Errorf("expected address[], got %T", v)
	}
	return list, nil
}

func decodeBigInts(values []interface{}) ([]*big.Int, error) {
	v, err := single(values)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected uint256[], got %T", v)
	}
	for i, n := range list {
		if n == nil || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid uint256 at index %d", i)
		}
	}
	return list, nil
}

func decodeTierCounts(values []interface{}) (models.TierCounts, error) {
	var counts models.TierCounts
	v, err := single(values)
	if err != nil {
		return counts, err
	}
	arr, ok := v.([models.TierCount]*big.Int)
	if !ok {
		return counts, fmt.Errorf("expected uint256[%d], got %T", models.TierCount, v)
	}
	for i, n := range arr {
		if n == nil || n.Sign() < 0 {
			return counts, fmt.Errorf("invalid tier count at index %d", i)
		}
		counts[i] = n
	}
	return counts, nil
}

func decodeTier(values []interface{}) (models.Tier, error) {
	n, err := decodeBigInt(values)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("tier %s out of range", n)
	}
	return models.ParseTier(n.Int64())
}

// decodeListing reads the getListing tuple by field name so that a
// differently shaped tuple fails here instead of downstream.
func decodeListing(tokenID *big.Int, values []interface{}) (models.Listing, error) {
	v, err := single(values)
	if err != nil {
		return models.Listing{}, err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return models.Listing{}, fmt.Errorf("expected listing tuple, got %T", v)
	}
	field := func(name string) (interface{}, error) {
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil, fmt.Errorf("listing tuple missing field %s", name)
		}
		return f.Interface(), nil
	}

	listing := models.Listing{TokenID: new(big.Int).Set(tokenID)}
	raw, err := field("Seller")
	if err != nil {
		return models.Listing{}, err
	}
	if listing.Seller, err = expectType[common.Address](raw, "seller"); err != nil {
		return models.Listing{}, err
	}
	if raw, err = field("Price"); err != nil {
		return models.Listing{}, err
	}
	if listing.Price, err = expectType[*big.Int](raw, "price"); err != nil {
		return models.Listing{}, err
	}
	if raw, err = field("Expiration"); err != nil {
		return models.Listing{}, err
	}
	if listing.Expiration, err = expectType[*big.Int](raw, "expiration"); err != nil {
		return models.Listing{}, err
	}
	if raw, err = field("Active"); err != nil {
		return models.Listing{}, err
	}
	if listing.Active, err = expectType[bool](raw, "active"); err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

func expectType[T any](v interface{}, name string) (T, error) {
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("listing field %s: unexpected type %T", name, v)
	}
	return out, nil
}
