package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListRoundTrip(t *testing.T) {
	items := []string{"2 cups flour", "1 tsp salt", "3 eggs"}
	encoded := EncodeList(items)
	require.Equal(t, items, DecodeList(encoded))
}

func TestListEmpty(t *testing.T) {
	require.Equal(t, "[]", EncodeList(nil))
	require.Equal(t, []string{}, DecodeList(""))
	require.Equal(t, []string{}, DecodeList("[]"))
	require.Equal(t, []string{}, DecodeList("null"))
	require.Equal(t, []string{}, DecodeList("not json"))
}
