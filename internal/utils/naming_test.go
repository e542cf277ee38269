package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerCamelCase(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"x":          "x",
		"X":          "x",
		"Name":       "name",
		"name":       "name",
		"ID":         "id",
		"UserID":     "userID",
		"URL":        "url",
		"URLPath":    "urlPath",
		"HTTPServer": "httpServer",
		"SHA256Hash": "sha256Hash",
		"APIKey":     "apiKey",
		"A_B":        "a_B",
		"Équipe":     "équipe",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, LowerCamelCase(input))
		})
	}
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "", UpperFirst(""))
	assert.Equal(t, "Executable", UpperFirst("executable"))
	assert.Equal(t, "Executable", UpperFirst("Executable"))
	assert.Equal(t, "ID", UpperFirst("iD"))
}

func TestSafeIdent(t *testing.T) {
	assert.Equal(t, "typeVal", SafeIdent("type"))
	assert.Equal(t, "rangeVal", SafeIdent("range"))
	assert.Equal(t, "name", SafeIdent("name"))
	assert.Equal(t, "string", SafeIdent("string"))
}
