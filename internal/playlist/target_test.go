// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTarget_DecodeYAML(t *testing.T) {
	tests := []struct {
		in   string
		want Target
	}{
		{in: `goTo: autoNext`, want: AutoNext()},
		{in: `goTo: home`, want: Home()},
		{in: `goTo: 2`, want: Index(2)},
		{in: `goTo: "2"`, want: ClipID("2")},
		{in: `goTo: arm-03`, want: ClipID("arm-03")},
		{in: `goTo: 1.0`, want: Index(1)},
		{in: `goTo: 1.5`, want: Target{}},
		{in: `goTo: ~`, want: Target{}},
		{in: `goTo: [1, 2]`, want: Target{}},
		{in: `label: only`, want: Target{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var cta CTA
			require.NoError(t, yaml.Unmarshal([]byte(tt.in), &cta))
			require.Equal(t, tt.want, cta.GoTo)
		})
	}
}

func TestTarget_DecodeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Target
	}{
		{in: `{"goTo":"autoNext"}`, want: AutoNext()},
		{in: `{"goTo":"home"}`, want: Home()},
		{in: `{"goTo":3}`, want: Index(3)},
		{in: `{"goTo":"dun-04"}`, want: ClipID("dun-04")},
		{in: `{"goTo":null}`, want: Target{}},
		{in: `{"goTo":true}`, want: Target{}},
		{in: `{"goTo":""}`, want: Target{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var cta CTA
			require.NoError(t, json.Unmarshal([]byte(tt.in), &cta))
			require.Equal(t, tt.want, cta.GoTo)
		})
	}
}

func TestTarget_EncodeJSON(t *testing.T) {
	out, err := json.Marshal([]Target{AutoNext(), Home(), Index(4), ClipID("x"), {}})
	require.NoError(t, err)
	require.JSONEq(t, `["autoNext","home",4,"x",null]`, string(out))
}

func TestTarget_Accessors(t *testing.T) {
	i, ok := Index(7).IndexValue()
	require.True(t, ok)
	require.Equal(t, 7, i)

	_, ok = ClipID("a").IndexValue()
	require.False(t, ok)

	id, ok := ClipID("a").ClipIDValue()
	require.True(t, ok)
	require.Equal(t, "a", id)

	require.Equal(t, TargetNone, Target{}.Kind())
	require.Equal(t, "none", Target{}.Kind().String())
}
