package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDecoding(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantSet   bool
		wantNull  bool
		wantValue int64
	}{
		{name: "absent", body: `{}`},
		{name: "explicit null", body: `{"discountedPriceCents":null}`, wantSet: true, wantNull: true},
		{name: "value", body: `{"discountedPriceCents":900}`, wantSet: true, wantValue: 900},
		{name: "zero value", body: `{"discountedPriceCents":0}`, wantSet: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var in UpdateProductInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))
			assert.Equal(t, tc.wantSet, in.DiscountedPriceCents.Set)
			assert.Equal(t, tc.wantNull, in.DiscountedPriceCents.Null)
			assert.Equal(t, tc.wantValue, in.DiscountedPriceCents.Value)
		})
	}
}

func TestOptionalRelationPresence(t *testing.T) {
	var in UpdateProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"colors":[],"name":"X"}`), &in))

	assert.True(t, in.Colors.HasValue())
	assert.Empty(t, in.Colors.Value)
	assert.False(t, in.Sizes.Set)
	assert.True(t, in.TouchesRelations())
	assert.False(t, in.Patch().Empty())
}

func TestOptionalEncodingKeepsAbsentKeysAbsent(t *testing.T) {
	in := UpdateProductInput{
		Name:       Some("X"),
		CategoryID: Null[string](),
	}
	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"X","categoryId":null}`, string(out))
}

func TestOptionalPtr(t *testing.T) {
	assert.Nil(t, Optional[int]{}.Ptr())
	assert.Nil(t, Null[int]().Ptr())
	require.NotNil(t, Some(3).Ptr())
	assert.Equal(t, 3, *Some(3).Ptr())
}

func TestVariantUnitPrice(t *testing.T) {
	discount := int64(800)
	higher := int64(1200)
	assert.Equal(t, int64(800), Variant{PriceCents: 1000, DiscountedPriceCents: &discount}.UnitPriceCents())
	assert.Equal(t, int64(1000), Variant{PriceCents: 1000, DiscountedPriceCents: &higher}.UnitPriceCents())
	assert.Equal(t, int64(1000), Variant{PriceCents: 1000}.UnitPriceCents())
}
