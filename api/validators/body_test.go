package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

type tierLine struct {
	UnitType string `json:"unit_type" validate:"max=4"`
}

type tierBatch struct {
	Name  string     `json:"name" validate:"required"`
	Tiers []tierLine `json:"tiers" validate:"required,dive"`
}

func decode(t *testing.T, body string) (*tierBatch, *pkgerrors.Error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest tierBatch
	if err := DecodeJSONBody(req, &dest); err != nil {
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		return nil, typed
	}
	return &dest, nil
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(t, `{"name":"bulk","tiers":[{"unit_type":"kg"}]}`)
	require.Nil(t, err)
	require.Equal(t, "bulk", got.Name)
	require.Len(t, got.Tiers, 1)
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := map[string]struct {
		body      string
		detailKey string
	}{
		"empty":         {body: ""},
		"unknown field": {body: `{"name":"x","tiers":[],"extra":1}`, detailKey: "extra"},
		"wrong type":    {body: `{"name":5,"tiers":[]}`, detailKey: "name"},
		"trailing data": {body: `{"name":"x","tiers":[]} {"name":"y"}`},
		"missing name":  {body: `{"tiers":[]}`, detailKey: "name"},
		"nested field":  {body: `{"name":"x","tiers":[{"unit_type":"kg"},{"unit_type":"pound"}]}`, detailKey: "tiers[1].unit_type"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, tc.body)
			require.NotNil(t, err)
			require.Equal(t, pkgerrors.CodeValidation, err.Code())
			if tc.detailKey != "" {
				details, ok := err.Details().(map[string]any)
				require.True(t, ok, "details %#v", err.Details())
				require.Contains(t, details, tc.detailKey)
			}
		})
	}
}
