package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"single", []string{"shared=True"}, map[string]string{"shared": "True"}, false},
		{"dotted key", []string{"compiler.runtime=MD"}, map[string]string{"compiler.runtime": "MD"}, false},
		{"later wins", []string{"cxx=True", "cxx=False"}, map[string]string{"cxx": "False"}, false},
		{"value with equals", []string{"flags=a=b"}, map[string]string{"flags": "a=b"}, false},
		{"empty value", []string{"generator="}, map[string]string{"generator": ""}, false},
		{"trims spaces", []string{" os = Linux "}, map[string]string{"os": "Linux"}, false},
		{"missing equals", []string{"shared"}, nil, true},
		{"missing key", []string{"=True"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeyValues(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"True", "true", "1", "ON", "yes"} {
		got, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}

	for _, s := range []string{"False", "false", "0", "off", "No"} {
		got, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}

	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestOnOff(t *testing.T) {
	assert.Equal(t, "ON", OnOff(true))
	assert.Equal(t, "OFF", OnOff(false))
}
